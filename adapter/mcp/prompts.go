package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
)

// RegisterPrompts registers MCP prompts for common pipeline workflows.
func RegisterPrompts(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return errors.New("server is required")
	}

	srv.Prompt("pipeline_review").
		Description("Review the task pipeline: revenue, ROI leaders and stalled work.").
		Handler(pipelineReview)

	srv.Prompt("prioritize_day").
		Description("Pick the tasks to work on today by ROI and priority. Optional arg: hours.").
		Handler(prioritizeDay)

	return nil
}

func pipelineReview(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
	return userPrompt("Pipeline Review", `Review my sales pipeline.

1. Read taskglitch://metrics for total revenue, time efficiency and the performance grade
2. Read taskglitch://tasks for the full list in ROI order

Then:
- Name the three open tasks with the highest ROI
- Flag tasks that have sat In Progress or Todo with low ROI and suggest dropping or re-scoping them
- Explain what would move the grade up one tier

Use task.update to change status or priority once I agree.`), nil
}

func prioritizeDay(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
	hours := args["hours"]
	if hours == "" {
		hours = "8"
	}
	return userPrompt("Daily Prioritization", fmt.Sprintf(`I have %s hours today.

Call task.list with status "Todo" and again with status "In Progress". Fill my hours
with the tasks that return the most revenue per hour, breaking ties by priority.
Keep the total estimated time within my hours and list the order to work them in.`, hours)), nil
}

func userPrompt(description, text string) *mcp.PromptResult {
	return &mcp.PromptResult{
		Description: description,
		Messages: []mcp.PromptMessage{
			{
				Role: string(mcp.RoleUser),
				Content: mcp.TextContent{
					Type: "text",
					Text: text,
				},
			},
		},
	}
}
