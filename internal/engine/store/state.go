// Package store owns the document model. Reducers in this package are the
// only code path that mutates dashboard state; everything else reads
// immutable snapshots.
package store

import "go-dash/internal/engine/model"

// SummaryStatus tracks the lifecycle of the summary workflow.
type SummaryStatus string

const (
	SummaryIdle    SummaryStatus = "IDLE"
	SummaryRunning SummaryStatus = "RUNNING"
)

type SummaryState struct {
	Status     SummaryStatus   `json:"status"`
	WorkflowID string          `json:"workflowId,omitempty"`
	Summaries  []model.Summary `json:"summaries,omitempty"`
}

// State is one immutable snapshot of everything the engine manages. The
// Dashboard pointer and the stash contents must never be mutated by
// readers; commits clone before touching anything.
type State struct {
	Dashboard *model.Dashboard
	Alerts    []model.Alert
	Stash     map[string][]model.Item
	Summary   SummaryState
}

func newState() State {
	return State{
		Stash:   map[string][]model.Item{},
		Summary: SummaryState{Status: SummaryIdle},
	}
}

// copyForCommit makes a shallow-plus structure copy deep enough that
// reducers can mutate freely without invalidating snapshots handed out
// before the commit.
func (s State) copyForCommit() State {
	c := s
	c.Dashboard = s.Dashboard.Clone()
	c.Alerts = append([]model.Alert(nil), s.Alerts...)
	c.Stash = make(map[string][]model.Item, len(s.Stash))
	for k, v := range s.Stash {
		c.Stash[k] = v
	}
	c.Summary.Summaries = append([]model.Summary(nil), s.Summary.Summaries...)
	return c
}
