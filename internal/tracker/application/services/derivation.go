package services

import (
	"math"

	"github.com/felixgeelhaar/taskglitch/internal/tracker/domain/task"
)

// GradeThresholds maps average ROI to performance grades.
type GradeThresholds struct {
	Excellent float64 // strictly above
	Good      float64 // at or above
}

// DefaultGradeThresholds returns the standard grading bands.
func DefaultGradeThresholds() GradeThresholds {
	return GradeThresholds{
		Excellent: 500,
		Good:      200,
	}
}

// DerivationEngine computes ROI and aggregate metrics. It holds no task
// state; every result is a pure function of its input.
type DerivationEngine struct {
	thresholds GradeThresholds
}

// NewDerivationEngine creates a new engine with the given grading bands.
func NewDerivationEngine(thresholds GradeThresholds) *DerivationEngine {
	return &DerivationEngine{thresholds: thresholds}
}

// ROI returns revenue earned per hour invested. A non-positive or
// non-finite duration counts as one hour and non-finite revenue as zero,
// so the result is always finite.
func ROI(revenue, timeTaken float64) float64 {
	if math.IsNaN(revenue) || math.IsInf(revenue, 0) {
		revenue = 0
	}
	return revenue / task.SanitizeTimeTaken(timeTaken)
}

// Derive attaches the computed ROI to a task.
func (e *DerivationEngine) Derive(t task.Task) task.DerivedTask {
	return task.DerivedTask{
		Task: t.Clone(),
		ROI:  ROI(t.Revenue, t.TimeTaken),
	}
}

// DeriveAll derives every task, preserving input order.
func (e *DerivationEngine) DeriveAll(tasks []task.Task) []task.DerivedTask {
	derived := make([]task.DerivedTask, len(tasks))
	for i, t := range tasks {
		derived[i] = e.Derive(t)
	}
	return derived
}

// TotalRevenue sums the revenue of completed tasks.
func (e *DerivationEngine) TotalRevenue(tasks []task.Task) float64 {
	total := 0.0
	for _, t := range tasks {
		if t.IsDone() {
			total += task.SanitizeRevenue(t.Revenue)
		}
	}
	return total
}

// TotalTimeTaken sums hours across all tasks.
func (e *DerivationEngine) TotalTimeTaken(tasks []task.Task) float64 {
	total := 0.0
	for _, t := range tasks {
		total += task.SanitizeTimeTaken(t.TimeTaken)
	}
	return total
}

// TimeEfficiency returns the percentage of tasks that are done.
func (e *DerivationEngine) TimeEfficiency(tasks []task.Task) float64 {
	if len(tasks) == 0 {
		return 0
	}
	done := 0
	for _, t := range tasks {
		if t.IsDone() {
			done++
		}
	}
	return float64(done) / float64(len(tasks)) * 100
}

// RevenuePerHour divides realised revenue by total hours.
func (e *DerivationEngine) RevenuePerHour(tasks []task.Task) float64 {
	hours := e.TotalTimeTaken(tasks)
	if hours <= 0 {
		return 0
	}
	return e.TotalRevenue(tasks) / hours
}

// AverageROI returns the mean ROI across all tasks.
func (e *DerivationEngine) AverageROI(tasks []task.Task) float64 {
	if len(tasks) == 0 {
		return 0
	}
	sum := 0.0
	for _, t := range tasks {
		sum += ROI(t.Revenue, t.TimeTaken)
	}
	return sum / float64(len(tasks))
}

// PerformanceGrade buckets an average ROI.
func (e *DerivationEngine) PerformanceGrade(averageROI float64) task.Grade {
	switch {
	case averageROI > e.thresholds.Excellent:
		return task.GradeExcellent
	case averageROI >= e.thresholds.Good:
		return task.GradeGood
	default:
		return task.GradeNeedsImprovement
	}
}

// ComputeMetrics aggregates the whole task set. An empty set yields
// task.EmptyMetrics.
func (e *DerivationEngine) ComputeMetrics(tasks []task.Task) task.Metrics {
	if len(tasks) == 0 {
		return task.EmptyMetrics()
	}

	avg := e.AverageROI(tasks)
	return task.Metrics{
		TotalRevenue:      e.TotalRevenue(tasks),
		TotalTimeTaken:    e.TotalTimeTaken(tasks),
		TimeEfficiencyPct: e.TimeEfficiency(tasks),
		RevenuePerHour:    e.RevenuePerHour(tasks),
		AverageROI:        avg,
		PerformanceGrade:  e.PerformanceGrade(avg),
	}
}

// ComputeBreakdown counts tasks per status and priority. Every known
// status and priority is present in the maps, even at zero.
func (e *DerivationEngine) ComputeBreakdown(tasks []task.Task) task.Breakdown {
	b := task.Breakdown{
		Total:      len(tasks),
		ByStatus:   make(map[task.Status]int),
		ByPriority: make(map[task.Priority]int),
	}
	for _, s := range task.Statuses() {
		b.ByStatus[s] = 0
	}
	for _, p := range task.Priorities() {
		b.ByPriority[p] = 0
	}
	for _, t := range tasks {
		b.ByStatus[t.Status]++
		b.ByPriority[t.Priority]++
	}
	return b
}
