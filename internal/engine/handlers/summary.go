package handlers

import (
	"context"
	"errors"
	"fmt"

	"go-dash/internal/engine/backend"
	"go-dash/internal/engine/bus"
	"go-dash/internal/engine/events"
	"go-dash/internal/engine/store"
)

func generateSummary(deps Deps) bus.HandlerFunc {
	return func(ctx context.Context, tx *bus.Tx) error {
		dash, err := requireDashboard(tx)
		if err != nil {
			return err
		}
		if tx.View().Summary().Status == store.SummaryRunning {
			return bus.UserErrorf("a summary workflow is already running")
		}

		workflowID, err := deps.Backend.StartSummaryWorkflow(ctx, dash.Ref)
		if err != nil {
			if errors.Is(err, backend.ErrNotSupported) {
				return bus.UserErrorf("summaries are not supported by this backend")
			}
			return fmt.Errorf("starting summary workflow: %w", err)
		}

		tx.Commit(store.SetSummaryStatus{
			Status:     store.SummaryRunning,
			WorkflowID: workflowID,
		})
		tx.Emit(events.TypeSummaryStarted, events.SummaryStarted{WorkflowID: workflowID})

		// The watch outlives this handler; completion and failure arrive on
		// the dispatcher's internal queue.
		deps.Workflow.Watch(tx.Command(), dash.Ref, workflowID)
		return nil
	}
}
