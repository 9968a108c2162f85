package task

// DerivedTask is a Task augmented with its computed ROI. It is produced on
// every read and never persisted.
type DerivedTask struct {
	Task
	ROI float64 `json:"roi"`
}

// Grade buckets average ROI into qualitative tiers.
type Grade string

const (
	GradeExcellent        Grade = "Excellent"
	GradeGood             Grade = "Good"
	GradeNeedsImprovement Grade = "Needs Improvement"
)

// Metrics aggregates a task set.
type Metrics struct {
	TotalRevenue      float64 `json:"totalRevenue"`
	TotalTimeTaken    float64 `json:"totalTimeTaken"`
	TimeEfficiencyPct float64 `json:"timeEfficiencyPct"`
	RevenuePerHour    float64 `json:"revenuePerHour"`
	AverageROI        float64 `json:"averageROI"`
	PerformanceGrade  Grade   `json:"performanceGrade"`
}

// EmptyMetrics is the result for an empty task set.
func EmptyMetrics() Metrics {
	return Metrics{PerformanceGrade: GradeNeedsImprovement}
}

// Breakdown counts tasks per status and per priority.
type Breakdown struct {
	Total      int              `json:"total"`
	ByStatus   map[Status]int   `json:"byStatus"`
	ByPriority map[Priority]int `json:"byPriority"`
}
