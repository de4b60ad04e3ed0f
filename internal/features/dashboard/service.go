package dashboard

import (
	"context"
	"time"

	"go-dash/internal/engine"
	"go-dash/internal/engine/backend"
	"go-dash/internal/engine/events"
	"go-dash/internal/engine/model"
	"go-dash/internal/engine/store"
)

// dispatchTimeout bounds how long an HTTP caller waits for a command's
// terminal event. Commands keep processing after the timeout; only the wait
// is abandoned.
const dispatchTimeout = 30 * time.Second

// SessionState is the read surface returned to clients: the current
// document plus everything that lives next to it.
type SessionState struct {
	Dashboard *backend.StoredDashboard `json:"dashboard,omitempty"`
	Alerts    []model.Alert            `json:"alerts"`
	Summary   store.SummaryState       `json:"summary"`
	UndoDepth int                      `json:"undoDepth"`
}

type DashboardService interface {
	// Dispatch decodes and dispatches one command, blocking until its
	// terminal event arrives.
	Dispatch(ctx context.Context, session string, envelope CommandEnvelope) (events.Event, error)
	State(session string) SessionState
	ResolveWidgetFilters(ctx context.Context, session string, ref model.ObjRef) ([]backend.StoredFilter, error)
	Engine(session string) *engine.Engine
	Release(session string)
}

type DashboardServiceImpl struct {
	registry *engine.Registry
}

func NewDashboardService(registry *engine.Registry) DashboardService {
	return &DashboardServiceImpl{registry: registry}
}

func (s *DashboardServiceImpl) Dispatch(ctx context.Context, session string, envelope CommandEnvelope) (events.Event, error) {
	cmd, err := DecodeCommand(envelope)
	if err != nil {
		return events.Event{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, dispatchTimeout)
	defer cancel()
	return s.registry.Get(session).Dispatcher.DispatchAndWait(ctx, cmd)
}

func (s *DashboardServiceImpl) State(session string) SessionState {
	eng := s.registry.Get(session)

	state := SessionState{
		Alerts:    eng.View.Alerts(),
		Summary:   eng.View.Summary(),
		UndoDepth: eng.Store.UndoDepth(),
	}
	if dash := eng.View.Dashboard(); dash != nil {
		state.Dashboard = backend.ToStored(dash)
	}
	if state.Alerts == nil {
		state.Alerts = []model.Alert{}
	}
	return state
}

func (s *DashboardServiceImpl) ResolveWidgetFilters(ctx context.Context, session string, ref model.ObjRef) ([]backend.StoredFilter, error) {
	filters, err := s.registry.Get(session).ResolveWidgetFilters(ctx, ref)
	if err != nil {
		return nil, err
	}

	out := make([]backend.StoredFilter, 0, len(filters))
	for _, f := range filters {
		out = append(out, backend.FilterToStored(f))
	}
	return out, nil
}

func (s *DashboardServiceImpl) Engine(session string) *engine.Engine {
	return s.registry.Get(session)
}

func (s *DashboardServiceImpl) Release(session string) {
	s.registry.Release(session)
}
