package mcp

import (
	"bytes"
	"context"
	"errors"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/taskglitch/internal/tracker/application/queries"
	"github.com/felixgeelhaar/taskglitch/internal/tracker/domain/task"
	"github.com/felixgeelhaar/taskglitch/internal/tracker/infrastructure/export"
)

type taskAddInput struct {
	ID        string  `json:"id,omitempty"`
	Title     string  `json:"title" jsonschema:"required"`
	Revenue   float64 `json:"revenue,omitempty"`
	TimeTaken float64 `json:"time_taken,omitempty"`
	Priority  string  `json:"priority,omitempty"`
	Status    string  `json:"status,omitempty"`
	Notes     string  `json:"notes,omitempty"`
}

type taskUpdateInput struct {
	TaskID    string   `json:"task_id" jsonschema:"required"`
	Title     *string  `json:"title,omitempty"`
	Revenue   *float64 `json:"revenue,omitempty"`
	TimeTaken *float64 `json:"time_taken,omitempty"`
	Priority  *string  `json:"priority,omitempty"`
	Status    *string  `json:"status,omitempty"`
	Notes     *string  `json:"notes,omitempty"`
}

type taskIDInput struct {
	TaskID string `json:"task_id" jsonschema:"required"`
}

type taskListInput struct {
	Search   string `json:"search,omitempty"`
	Status   string `json:"status,omitempty"`
	Priority string `json:"priority,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

type metricsResult struct {
	task.Metrics
	Breakdown task.Breakdown `json:"breakdown"`
}

type exportResult struct {
	Format string `json:"format"`
	Count  int    `json:"count"`
	Data   string `json:"data"`
}

func registerTaskTools(srv *mcp.Server, h *handlers) {
	srv.Tool("task.add").
		Description("Add a sales task. time_taken is in hours; non-positive values become 1.").
		Handler(h.addTask)

	srv.Tool("task.update").
		Description("Update fields of a task by id. Omitted fields are unchanged.").
		Handler(h.updateTask)

	srv.Tool("task.delete").
		Description("Delete a task. It can be restored with task.undo_delete until the next delete or task.clear_deleted.").
		Handler(h.deleteTask)

	srv.Tool("task.undo_delete").
		Description("Restore the most recently deleted task").
		Handler(h.undoDelete)

	srv.Tool("task.clear_deleted").
		Description("Discard the undo buffer").
		Handler(h.clearDeleted)

	srv.Tool("task.list").
		Description("List tasks sorted by ROI, priority and title, with optional filters").
		Handler(h.listTasks)

	srv.Tool("task.metrics").
		Description("Revenue, efficiency, average ROI, grade and per-status counts").
		Handler(h.taskMetrics)

	srv.Tool("task.export").
		Description("Export the filtered, sorted task list as CSV").
		Handler(h.exportTasks)
}

func (h *handlers) addTask(ctx context.Context, input taskAddInput) (*task.DerivedTask, error) {
	app, err := h.requireApp()
	if err != nil {
		return nil, err
	}
	if input.Title == "" {
		return nil, errors.New("title is required")
	}
	priority, err := parsePriority(input.Priority, task.PriorityMedium)
	if err != nil {
		return nil, err
	}
	status, err := parseStatus(input.Status, task.StatusTodo)
	if err != nil {
		return nil, err
	}

	added := app.Store.Add(requestContext(ctx), task.NewTask{
		ID:        input.ID,
		Title:     input.Title,
		Revenue:   input.Revenue,
		TimeTaken: input.TimeTaken,
		Priority:  priority,
		Status:    status,
		Notes:     input.Notes,
	})
	return &added, nil
}

func (h *handlers) updateTask(ctx context.Context, input taskUpdateInput) (*task.DerivedTask, error) {
	app, err := h.requireApp()
	if err != nil {
		return nil, err
	}
	if input.TaskID == "" {
		return nil, errors.New("task_id is required")
	}

	patch := task.Patch{
		Title:     input.Title,
		Revenue:   input.Revenue,
		TimeTaken: input.TimeTaken,
		Notes:     input.Notes,
	}
	if input.Priority != nil {
		p, err := parsePriority(*input.Priority, "")
		if err != nil {
			return nil, err
		}
		patch.Priority = &p
	}
	if input.Status != nil {
		s, err := parseStatus(*input.Status, "")
		if err != nil {
			return nil, err
		}
		patch.Status = &s
	}

	updated, ok := app.Store.Update(requestContext(ctx), input.TaskID, patch)
	if !ok {
		return nil, notFound(input.TaskID)
	}
	return &updated, nil
}

func (h *handlers) deleteTask(ctx context.Context, input taskIDInput) (map[string]any, error) {
	app, err := h.requireApp()
	if err != nil {
		return nil, err
	}
	if !app.Store.Delete(requestContext(ctx), input.TaskID) {
		return nil, notFound(input.TaskID)
	}
	return map[string]any{"deleted": input.TaskID, "undo_available": true}, nil
}

func (h *handlers) undoDelete(ctx context.Context, input struct{}) (map[string]any, error) {
	app, err := h.requireApp()
	if err != nil {
		return nil, err
	}
	restored, ok := app.Store.UndoDelete(requestContext(ctx))
	if !ok {
		return map[string]any{"restored": false}, nil
	}
	return map[string]any{"restored": true, "task_id": restored.ID, "title": restored.Title}, nil
}

func (h *handlers) clearDeleted(ctx context.Context, input struct{}) (map[string]any, error) {
	app, err := h.requireApp()
	if err != nil {
		return nil, err
	}
	app.Store.ClearLastDeleted(requestContext(ctx))
	return map[string]any{"cleared": true}, nil
}

func (h *handlers) listTasks(ctx context.Context, input taskListInput) ([]task.DerivedTask, error) {
	app, err := h.requireApp()
	if err != nil {
		return nil, err
	}
	filter, err := parseFilter(input.Search, input.Status, input.Priority)
	if err != nil {
		return nil, err
	}
	return app.ListTasksHandler.Handle(ctx, queries.ListTasksQuery{
		Filter: filter,
		Limit:  input.Limit,
	})
}

func (h *handlers) taskMetrics(ctx context.Context, input struct{}) (*metricsResult, error) {
	app, err := h.requireApp()
	if err != nil {
		return nil, err
	}
	return &metricsResult{
		Metrics:   app.Store.Metrics(),
		Breakdown: app.Store.Breakdown(),
	}, nil
}

func (h *handlers) exportTasks(ctx context.Context, input taskListInput) (*exportResult, error) {
	tasks, err := h.listTasks(ctx, input)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, tasks); err != nil {
		return nil, err
	}
	return &exportResult{Format: "csv", Count: len(tasks), Data: buf.String()}, nil
}
