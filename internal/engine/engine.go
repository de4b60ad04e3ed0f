// Package engine assembles the dashboard command engine: store, selectors,
// event bus, dispatcher, handlers and the summary workflow coordinator. One
// engine instance serves one loaded dashboard document.
package engine

import (
	"context"

	"go.uber.org/zap"

	"go-dash/internal/config"
	"go-dash/internal/engine/backend"
	"go-dash/internal/engine/bus"
	"go-dash/internal/engine/filterres"
	"go-dash/internal/engine/handlers"
	"go-dash/internal/engine/model"
	"go-dash/internal/engine/selectors"
	"go-dash/internal/engine/store"
	"go-dash/internal/engine/workflow"
)

type Engine struct {
	Store      *store.Store
	View       *selectors.View
	Events     *bus.EventBus
	Dispatcher *bus.Dispatcher
	Backend    backend.Service

	cancel context.CancelFunc
}

// New builds a fully wired engine and starts its worker goroutine. The
// engine processes commands until Close is called.
func New(svc backend.Service, cfg *config.Config, log *zap.Logger) *Engine {
	st := store.New()
	view := selectors.New(st)
	eventBus := bus.NewEventBus()
	dispatcher := bus.NewDispatcher(st, view, eventBus, log)

	coordinator := workflow.New(svc, dispatcher, log,
		cfg.SummaryPollInterval, cfg.SummaryTimeout)
	handlers.RegisterAll(dispatcher, handlers.Deps{
		Backend:  svc,
		Workflow: coordinator,
		Log:      log,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go dispatcher.Run(ctx)

	return &Engine{
		Store:      st,
		View:       view,
		Events:     eventBus,
		Dispatcher: dispatcher,
		Backend:    svc,
		cancel:     cancel,
	}
}

// Close stops the worker goroutine. Commands dispatched after Close queue up
// but are never processed.
func (e *Engine) Close() {
	e.cancel()
}

// ResolveWidgetFilters computes the filters effective for the given widget
// under the current filter context.
func (e *Engine) ResolveWidgetFilters(ctx context.Context, ref model.ObjRef) ([]model.Filter, error) {
	w, ok := e.View.WidgetByRef(ref)
	if !ok {
		return nil, bus.UserErrorf("widget %s does not exist", ref.Key())
	}
	return filterres.ResolveWidgetFilters(ctx, w, e.View.Filters(), e.Backend)
}
