// Package workflow polls server-side summary workflows to completion. The
// coordinator runs each watch on its own goroutine and pushes every state
// transition back through the dispatcher's internal queue, so workflow
// progress never interleaves with a running command handler.
package workflow

import (
	"context"
	"time"

	"go.uber.org/zap"

	"go-dash/internal/engine/backend"
	"go-dash/internal/engine/bus"
	"go-dash/internal/engine/cmds"
	"go-dash/internal/engine/events"
	"go-dash/internal/engine/model"
	"go-dash/internal/engine/store"
)

type Coordinator struct {
	backend backend.Service
	bus     *bus.Dispatcher
	log     *zap.Logger

	poll    time.Duration
	timeout time.Duration
}

func New(svc backend.Service, d *bus.Dispatcher, log *zap.Logger, poll, timeout time.Duration) *Coordinator {
	if poll <= 0 {
		poll = 3 * time.Second
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Coordinator{
		backend: svc,
		bus:     d,
		log:     log,
		poll:    poll,
		timeout: timeout,
	}
}

// Watch polls the workflow until it reaches a terminal state or the timeout
// elapses. It returns immediately; outcomes arrive as summary events carrying
// the originating command's correlation id. The watch is bounded: no matter
// what the backend reports, the summary status returns to idle eventually.
func (c *Coordinator) Watch(cmd cmds.Command, dashboard model.ObjRef, workflowID string) {
	go c.watch(cmd, dashboard, workflowID)
}

func (c *Coordinator) watch(cmd cmds.Command, dashboard model.ObjRef, workflowID string) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	ticker := time.NewTicker(c.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.log.Warn("summary workflow timed out",
				zap.String("workflowId", workflowID),
				zap.Duration("timeout", c.timeout))
			c.fail(cmd, workflowID, "summary workflow timed out")
			return
		case <-ticker.C:
		}

		status, err := c.backend.GetWorkflowStatus(ctx, workflowID)
		if err != nil {
			if ctx.Err() != nil {
				c.fail(cmd, workflowID, "summary workflow timed out")
				return
			}
			c.log.Warn("summary workflow poll failed",
				zap.String("workflowId", workflowID),
				zap.Error(err))
			c.fail(cmd, workflowID, "summary workflow poll failed: "+err.Error())
			return
		}

		switch status.State {
		case backend.WorkflowRunning:
			// keep polling
		case backend.WorkflowFailed:
			c.fail(cmd, workflowID, "summary workflow reported failure")
			return
		case backend.WorkflowCompleted:
			c.complete(ctx, cmd, dashboard, workflowID, status.SummaryID)
			return
		}
	}
}

// complete refreshes the summary list before announcing completion, so
// listeners of the completed event always observe the new summary in state.
func (c *Coordinator) complete(ctx context.Context, cmd cmds.Command, dashboard model.ObjRef, workflowID, summaryID string) {
	summaries, err := c.backend.ListSummaries(ctx, dashboard)
	if err != nil {
		c.log.Warn("summary list refresh failed",
			zap.String("workflowId", workflowID),
			zap.Error(err))
		c.fail(cmd, workflowID, "summary list refresh failed: "+err.Error())
		return
	}

	c.bus.EnqueueInternal(context.Background(), cmd, func(ctx context.Context, tx *bus.Tx) {
		tx.Commit(
			store.SetSummaries{Summaries: summaries},
			store.SetSummaryStatus{Status: store.SummaryIdle},
		)
		tx.Emit(events.TypeSummaryCompleted, events.SummaryCompleted{
			WorkflowID: workflowID,
			SummaryID:  summaryID,
		})
	})
}

func (c *Coordinator) fail(cmd cmds.Command, workflowID, message string) {
	c.bus.EnqueueInternal(context.Background(), cmd, func(ctx context.Context, tx *bus.Tx) {
		tx.Commit(store.SetSummaryStatus{Status: store.SummaryIdle})
		tx.Emit(events.TypeSummaryFailed, events.SummaryFailed{
			WorkflowID: workflowID,
			Message:    message,
		})
	})
}
