package handlers

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"go-dash/internal/engine/backend"
	"go-dash/internal/engine/bus"
	"go-dash/internal/engine/cmds"
	"go-dash/internal/engine/events"
	"go-dash/internal/engine/model"
	"go-dash/internal/engine/selectors"
	"go-dash/internal/engine/store"
	"go-dash/internal/engine/workflow"
)

// fakeBackend satisfies backend.Service with overridable behavior per test.
// Unset hooks fall back to ErrNotSupported so a test only wires what it
// exercises.
type fakeBackend struct {
	getDashboard    func(ctx context.Context, ref model.ObjRef) (*model.Dashboard, error)
	saveDashboard   func(ctx context.Context, dashboard *model.Dashboard) error
	getDisplayForms func(ctx context.Context, refs []model.ObjRef) ([]model.DisplayForm, error)
	startWorkflow   func(ctx context.Context, dashboard model.ObjRef) (string, error)
	workflowStatus  func(ctx context.Context, workflowID string) (*backend.WorkflowStatus, error)
	listSummaries   func(ctx context.Context, dashboard model.ObjRef) ([]model.Summary, error)
}

func (f *fakeBackend) GetDashboard(ctx context.Context, ref model.ObjRef) (*model.Dashboard, error) {
	if f.getDashboard == nil {
		return nil, backend.ErrNotFound
	}
	return f.getDashboard(ctx, ref)
}

func (f *fakeBackend) SaveDashboard(ctx context.Context, dashboard *model.Dashboard) error {
	if f.saveDashboard == nil {
		return nil
	}
	return f.saveDashboard(ctx, dashboard)
}

func (f *fakeBackend) GetAttributeDisplayForms(ctx context.Context, refs []model.ObjRef) ([]model.DisplayForm, error) {
	if f.getDisplayForms == nil {
		forms := make([]model.DisplayForm, len(refs))
		for i, ref := range refs {
			forms[i] = model.DisplayForm{Ref: ref}
		}
		return forms, nil
	}
	return f.getDisplayForms(ctx, refs)
}

func (f *fakeBackend) ResolveObjRefs(ctx context.Context, refs []model.ObjRef) (map[string]string, error) {
	out := make(map[string]string, len(refs))
	for _, ref := range refs {
		out[ref.Key()] = ref.Key()
	}
	return out, nil
}

func (f *fakeBackend) StartSummaryWorkflow(ctx context.Context, dashboard model.ObjRef) (string, error) {
	if f.startWorkflow == nil {
		return "", backend.ErrNotSupported
	}
	return f.startWorkflow(ctx, dashboard)
}

func (f *fakeBackend) GetWorkflowStatus(ctx context.Context, workflowID string) (*backend.WorkflowStatus, error) {
	if f.workflowStatus == nil {
		return nil, backend.ErrNotSupported
	}
	return f.workflowStatus(ctx, workflowID)
}

func (f *fakeBackend) ListSummaries(ctx context.Context, dashboard model.ObjRef) ([]model.Summary, error) {
	if f.listSummaries == nil {
		return nil, nil
	}
	return f.listSummaries(ctx, dashboard)
}

func (f *fakeBackend) ListAutomations(ctx context.Context, req backend.PageRequest) (*backend.Page[backend.Automation], error) {
	return nil, backend.ErrNotSupported
}

func (f *fakeBackend) ListNotificationChannels(ctx context.Context, req backend.PageRequest) (*backend.Page[backend.NotificationChannel], error) {
	return nil, backend.ErrNotSupported
}

type harness struct {
	store *store.Store
	view  *selectors.View
	bus   *bus.EventBus
	d     *bus.Dispatcher
}

func newHarness(t *testing.T, svc backend.Service) *harness {
	return newHarnessWithTimeout(t, svc, time.Second)
}

func newHarnessWithTimeout(t *testing.T, svc backend.Service, timeout time.Duration) *harness {
	t.Helper()
	log := zap.NewNop()
	st := store.New()
	view := selectors.New(st)
	eb := bus.NewEventBus()
	d := bus.NewDispatcher(st, view, eb, log)

	wf := workflow.New(svc, d, log, 5*time.Millisecond, timeout)
	RegisterAll(d, Deps{Backend: svc, Workflow: wf, Log: log})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go d.Run(ctx)

	return &harness{store: st, view: view, bus: eb, d: d}
}

func (h *harness) dispatchWait(t *testing.T, cmd cmds.Command) events.Event {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	e, err := h.d.DispatchAndWait(ctx, cmd)
	if err != nil {
		t.Fatalf("DispatchAndWait(%s) error = %v", cmd.CommandType(), err)
	}
	return e
}

func (h *harness) mustInitialize(t *testing.T) {
	t.Helper()
	e := h.dispatchWait(t, cmds.InitializeDashboard{
		Meta:  cmds.Meta{CorrelationID: "init"},
		Title: "Test dashboard",
	})
	if e.Type != events.TypeDashboardInitialized {
		t.Fatalf("initialize outcome = %s, want %s", e.Type, events.TypeDashboardInitialized)
	}
}

func kpiItem(id string) model.Item {
	return model.Item{
		Widget: &model.KpiWidget{
			WidgetBase: model.WidgetBase{Ref: model.NewRef(id), Title: id},
			Measure:    model.NewRef("measure-" + id),
		},
		Size: model.ItemSize{GridWidth: 2, GridHeight: 2},
	}
}

func failReason(t *testing.T, e events.Event) events.FailReason {
	t.Helper()
	if e.Type != events.TypeCommandFailed {
		t.Fatalf("event = %s, want %s", e.Type, events.TypeCommandFailed)
	}
	payload, ok := e.Payload.(events.CommandFailed)
	if !ok {
		t.Fatalf("payload type = %T, want CommandFailed", e.Payload)
	}
	return payload.Reason
}

func TestInitializeCreatesEmptyDashboard(t *testing.T) {
	h := newHarness(t, &fakeBackend{})

	e := h.dispatchWait(t, cmds.InitializeDashboard{
		Meta:  cmds.Meta{CorrelationID: "c1"},
		Title: "Revenue overview",
	})

	if e.Type != events.TypeDashboardInitialized {
		t.Fatalf("outcome = %s, want initialized", e.Type)
	}
	dash := h.view.Dashboard()
	if dash == nil {
		t.Fatal("no dashboard in state")
	}
	if dash.Title != "Revenue overview" {
		t.Errorf("title = %q, want Revenue overview", dash.Title)
	}
	if dash.Version != 1 {
		t.Errorf("version = %d, want 1", dash.Version)
	}
}

func TestInitializeMissingDashboardIsUserError(t *testing.T) {
	h := newHarness(t, &fakeBackend{})

	e := h.dispatchWait(t, cmds.InitializeDashboard{
		Meta: cmds.Meta{CorrelationID: "c1"},
		Ref:  model.NewRef("missing"),
	})

	if reason := failReason(t, e); reason != events.ReasonUserError {
		t.Errorf("reason = %s, want USER_ERROR", reason)
	}
	if h.view.Dashboard() != nil {
		t.Error("failed initialize left a dashboard in state")
	}
}

func TestSaveDashboardBumpsVersion(t *testing.T) {
	var savedVersion int
	svc := &fakeBackend{
		saveDashboard: func(ctx context.Context, dashboard *model.Dashboard) error {
			savedVersion = dashboard.Version
			return nil
		},
	}
	h := newHarness(t, svc)
	h.mustInitialize(t)

	e := h.dispatchWait(t, cmds.SaveDashboard{Meta: cmds.Meta{CorrelationID: "c1"}})

	if e.Type != events.TypeDashboardSaved {
		t.Fatalf("outcome = %s, want saved", e.Type)
	}
	if savedVersion != 2 {
		t.Errorf("backend received version %d, want 2", savedVersion)
	}
	if got := h.view.Dashboard().Version; got != 2 {
		t.Errorf("state version = %d, want 2", got)
	}
}

func TestRenameRejectsEmptyTitle(t *testing.T) {
	h := newHarness(t, &fakeBackend{})
	h.mustInitialize(t)

	e := h.dispatchWait(t, cmds.RenameDashboard{Meta: cmds.Meta{CorrelationID: "c1"}, Title: "   "})

	if reason := failReason(t, e); reason != events.ReasonUserError {
		t.Errorf("reason = %s, want USER_ERROR", reason)
	}
	if got := h.view.Dashboard().Title; got != "Test dashboard" {
		t.Errorf("title = %q, want unchanged", got)
	}
}

func TestFailedCommandNeverMutatesState(t *testing.T) {
	h := newHarness(t, &fakeBackend{})
	h.mustInitialize(t)
	_, before := h.store.Snapshot()

	e := h.dispatchWait(t, cmds.AddLayoutSection{
		Meta:  cmds.Meta{CorrelationID: "c1"},
		Index: 5, // out of range on an empty layout
	})

	if reason := failReason(t, e); reason != events.ReasonUserError {
		t.Errorf("reason = %s, want USER_ERROR", reason)
	}
	if _, after := h.store.Snapshot(); after != before {
		t.Errorf("revision moved on failed command: %d -> %d", before, after)
	}
}

func TestAddSectionRejectsDuplicateWidget(t *testing.T) {
	h := newHarness(t, &fakeBackend{})
	h.mustInitialize(t)

	e := h.dispatchWait(t, cmds.AddLayoutSection{
		Meta:  cmds.Meta{CorrelationID: "c1"},
		Index: -1,
		Items: []model.Item{kpiItem("w1")},
	})
	if e.Type != events.TypeLayoutSectionAdded {
		t.Fatalf("outcome = %s, want section added", e.Type)
	}

	e = h.dispatchWait(t, cmds.AddLayoutSection{
		Meta:  cmds.Meta{CorrelationID: "c2"},
		Index: -1,
		Items: []model.Item{kpiItem("w1")},
	})
	if reason := failReason(t, e); reason != events.ReasonUserError {
		t.Errorf("reason = %s, want USER_ERROR", reason)
	}
}

func TestEagerRemoveEmitsItemThenSection(t *testing.T) {
	h := newHarness(t, &fakeBackend{})
	h.mustInitialize(t)
	h.dispatchWait(t, cmds.AddLayoutSection{
		Meta:  cmds.Meta{CorrelationID: "c1"},
		Index: -1,
		Items: []model.Item{kpiItem("w1")},
	})

	var mu sync.Mutex
	var order []events.Type
	done := make(chan struct{})
	unsub := h.bus.Subscribe(events.ForCorrelation("c2"), func(e events.Event) {
		mu.Lock()
		order = append(order, e.Type)
		mu.Unlock()
		if e.Type == events.TypeLayoutSectionRemoved {
			close(done)
		}
	})
	defer unsub()

	h.d.Dispatch(context.Background(), cmds.EagerRemoveSectionItem(0, 0, "c2"))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for eager removal events")
	}

	mu.Lock()
	defer mu.Unlock()
	want := []events.Type{events.TypeCommandStarted, events.TypeSectionItemRemoved, events.TypeLayoutSectionRemoved}
	if len(order) != len(want) {
		t.Fatalf("events = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("events = %v, want %v", order, want)
		}
	}
	if got := h.view.SectionCount(); got != 0 {
		t.Errorf("sections = %d, want 0", got)
	}
}

func TestUndoRestoresEagerRemoval(t *testing.T) {
	h := newHarness(t, &fakeBackend{})
	h.mustInitialize(t)
	h.dispatchWait(t, cmds.AddLayoutSection{
		Meta:  cmds.Meta{CorrelationID: "c1"},
		Index: -1,
		Items: []model.Item{kpiItem("w1")},
	})
	h.dispatchWait(t, cmds.EagerRemoveSectionItem(0, 0, "c2"))

	e := h.dispatchWait(t, cmds.UndoLayoutChanges{Meta: cmds.Meta{CorrelationID: "c3"}, Count: 1})

	if e.Type != events.TypeLayoutChangesUndone {
		t.Fatalf("outcome = %s, want undone", e.Type)
	}
	section, ok := h.view.Section(0)
	if !ok {
		t.Fatal("section not restored")
	}
	if len(section.Items) != 1 {
		t.Fatalf("restored items = %d, want 1", len(section.Items))
	}
	if _, ok := h.view.WidgetByRef(model.NewRef("w1")); !ok {
		t.Error("widget w1 not restored")
	}
}

func TestUndoRestoresMoveToEnd(t *testing.T) {
	h := newHarness(t, &fakeBackend{})
	h.mustInitialize(t)
	h.dispatchWait(t, cmds.AddLayoutSection{
		Meta:  cmds.Meta{CorrelationID: "c1"},
		Index: -1,
		Items: []model.Item{kpiItem("w1")},
	})
	h.dispatchWait(t, cmds.AddLayoutSection{
		Meta:  cmds.Meta{CorrelationID: "c2"},
		Index: -1,
		Items: []model.Item{kpiItem("w2")},
	})

	e := h.dispatchWait(t, cmds.MoveSectionItem{
		Meta:           cmds.Meta{CorrelationID: "c3"},
		SectionIndex:   0,
		ItemIndex:      0,
		ToSectionIndex: 1,
		ToItemIndex:    -1, // append
	})
	if e.Type != events.TypeSectionItemMoved {
		t.Fatalf("outcome = %s, want item moved", e.Type)
	}

	e = h.dispatchWait(t, cmds.UndoLayoutChanges{Meta: cmds.Meta{CorrelationID: "c4"}, Count: 1})
	if e.Type != events.TypeLayoutChangesUndone {
		t.Fatalf("outcome = %s, want undone", e.Type)
	}

	first, ok := h.view.Section(0)
	if !ok || len(first.Items) != 1 {
		t.Fatalf("section 0 after undo = %+v, want its item back", first)
	}
	if ref := first.Items[0].Widget.Common().Ref; ref.Identifier != "w1" {
		t.Errorf("section 0 item = %q, want w1", ref.Identifier)
	}
	second, _ := h.view.Section(1)
	if len(second.Items) != 1 {
		t.Errorf("section 1 after undo has %d items, want 1", len(second.Items))
	}
}

func TestUndoWithNothingToUndoIsUserError(t *testing.T) {
	h := newHarness(t, &fakeBackend{})
	h.mustInitialize(t)

	e := h.dispatchWait(t, cmds.UndoLayoutChanges{Meta: cmds.Meta{CorrelationID: "c1"}})
	if reason := failReason(t, e); reason != events.ReasonUserError {
		t.Errorf("reason = %s, want USER_ERROR", reason)
	}
}

func TestAddAttributeFilterValidatesDisplayForm(t *testing.T) {
	svc := &fakeBackend{
		getDisplayForms: func(ctx context.Context, refs []model.ObjRef) ([]model.DisplayForm, error) {
			return nil, nil // no such display form
		},
	}
	h := newHarness(t, svc)
	h.mustInitialize(t)

	e := h.dispatchWait(t, cmds.AddAttributeFilter{
		Meta:   cmds.Meta{CorrelationID: "c1"},
		Filter: model.AttributeFilter{DisplayForm: model.NewRef("df-ghost")},
		Index:  -1,
	})

	if reason := failReason(t, e); reason != events.ReasonUserError {
		t.Errorf("reason = %s, want USER_ERROR", reason)
	}
	if got := len(h.view.Filters()); got != 0 {
		t.Errorf("filters = %d, want 0", got)
	}
}

func TestAddAttributeFilterRejectsDuplicateDisplayForm(t *testing.T) {
	h := newHarness(t, &fakeBackend{})
	h.mustInitialize(t)

	e := h.dispatchWait(t, cmds.AddAttributeFilter{
		Meta:   cmds.Meta{CorrelationID: "c1"},
		Filter: model.AttributeFilter{LocalID: "f1", DisplayForm: model.NewRef("df-region")},
		Index:  -1,
	})
	if e.Type != events.TypeAttributeFilterAdded {
		t.Fatalf("outcome = %s, want filter added", e.Type)
	}

	e = h.dispatchWait(t, cmds.AddAttributeFilter{
		Meta:   cmds.Meta{CorrelationID: "c2"},
		Filter: model.AttributeFilter{LocalID: "f2", DisplayForm: model.NewRef("df-region")},
		Index:  -1,
	})
	if reason := failReason(t, e); reason != events.ReasonUserError {
		t.Errorf("reason = %s, want USER_ERROR", reason)
	}
	if got := len(h.view.Filters()); got != 1 {
		t.Errorf("filters = %d, want 1", got)
	}
}

func TestChangeDateFilterRejectsUnknownType(t *testing.T) {
	h := newHarness(t, &fakeBackend{})
	h.mustInitialize(t)

	e := h.dispatchWait(t, cmds.ChangeDateFilterSelection{
		Meta:   cmds.Meta{CorrelationID: "c1"},
		Filter: model.DateFilter{DataSet: model.NewRef("ds-date"), Type: "fuzzy"},
	})
	if reason := failReason(t, e); reason != events.ReasonUserError {
		t.Errorf("reason = %s, want USER_ERROR", reason)
	}
}

func TestGenerateSummaryNotSupportedIsUserError(t *testing.T) {
	h := newHarness(t, &fakeBackend{}) // startWorkflow unset -> ErrNotSupported
	h.mustInitialize(t)

	e := h.dispatchWait(t, cmds.GenerateSummary{Meta: cmds.Meta{CorrelationID: "c1"}})

	if reason := failReason(t, e); reason != events.ReasonUserError {
		t.Errorf("reason = %s, want USER_ERROR", reason)
	}
	if got := h.view.Summary().Status; got != store.SummaryIdle {
		t.Errorf("summary status = %s, want idle", got)
	}
}

func TestGenerateSummaryCompletes(t *testing.T) {
	svc := &fakeBackend{
		startWorkflow: func(ctx context.Context, dashboard model.ObjRef) (string, error) {
			return "wf-1", nil
		},
		workflowStatus: func(ctx context.Context, workflowID string) (*backend.WorkflowStatus, error) {
			return &backend.WorkflowStatus{ID: workflowID, State: backend.WorkflowCompleted, SummaryID: "sum-1"}, nil
		},
		listSummaries: func(ctx context.Context, dashboard model.ObjRef) ([]model.Summary, error) {
			return []model.Summary{{ID: "sum-1", Dashboard: dashboard, Content: "all good"}}, nil
		},
	}
	h := newHarness(t, svc)
	h.mustInitialize(t)

	completed := make(chan events.Event, 1)
	unsub := h.bus.Subscribe(events.TypeForCorrelation(events.TypeSummaryCompleted, "c1"), func(e events.Event) {
		select {
		case completed <- e:
		default:
		}
	})
	defer unsub()

	e := h.dispatchWait(t, cmds.GenerateSummary{Meta: cmds.Meta{CorrelationID: "c1"}})
	if e.Type != events.TypeSummaryStarted {
		t.Fatalf("first outcome = %s, want summary started", e.Type)
	}

	select {
	case e = <-completed:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for summary completion")
	}
	payload := e.Payload.(events.SummaryCompleted)
	if payload.SummaryID != "sum-1" {
		t.Errorf("summary id = %q, want sum-1", payload.SummaryID)
	}

	summary := h.view.Summary()
	if summary.Status != store.SummaryIdle {
		t.Errorf("summary status = %s, want idle after completion", summary.Status)
	}
	if len(summary.Summaries) != 1 || summary.Summaries[0].ID != "sum-1" {
		t.Errorf("summaries = %+v, want the refreshed list", summary.Summaries)
	}
}

func TestGenerateSummaryWorkflowFailure(t *testing.T) {
	svc := &fakeBackend{
		startWorkflow: func(ctx context.Context, dashboard model.ObjRef) (string, error) {
			return "wf-1", nil
		},
		workflowStatus: func(ctx context.Context, workflowID string) (*backend.WorkflowStatus, error) {
			return &backend.WorkflowStatus{ID: workflowID, State: backend.WorkflowFailed}, nil
		},
	}
	h := newHarness(t, svc)
	h.mustInitialize(t)

	failed := make(chan events.Event, 1)
	unsub := h.bus.Subscribe(events.TypeForCorrelation(events.TypeSummaryFailed, "c1"), func(e events.Event) {
		select {
		case failed <- e:
		default:
		}
	})
	defer unsub()

	h.dispatchWait(t, cmds.GenerateSummary{Meta: cmds.Meta{CorrelationID: "c1"}})

	select {
	case <-failed:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for summary failure")
	}
	if got := h.view.Summary().Status; got != store.SummaryIdle {
		t.Errorf("summary status = %s, want idle after failure", got)
	}
}

func TestGenerateSummaryTimesOut(t *testing.T) {
	svc := &fakeBackend{
		startWorkflow: func(ctx context.Context, dashboard model.ObjRef) (string, error) {
			return "wf-1", nil
		},
		workflowStatus: func(ctx context.Context, workflowID string) (*backend.WorkflowStatus, error) {
			return &backend.WorkflowStatus{ID: workflowID, State: backend.WorkflowRunning}, nil
		},
	}
	h := newHarnessWithTimeout(t, svc, 30*time.Millisecond)
	h.mustInitialize(t)

	failed := make(chan events.Event, 1)
	unsub := h.bus.Subscribe(events.TypeForCorrelation(events.TypeSummaryFailed, "c1"), func(e events.Event) {
		select {
		case failed <- e:
		default:
		}
	})
	defer unsub()

	h.dispatchWait(t, cmds.GenerateSummary{Meta: cmds.Meta{CorrelationID: "c1"}})

	select {
	case <-failed:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the summary timeout to surface")
	}
	// The watch gave up, so a new summary run must be possible again.
	if got := h.view.Summary().Status; got != store.SummaryIdle {
		t.Errorf("summary status = %s, want idle after timeout", got)
	}
}

func TestGenerateSummaryRejectsConcurrentRun(t *testing.T) {
	release := make(chan struct{})
	svc := &fakeBackend{
		startWorkflow: func(ctx context.Context, dashboard model.ObjRef) (string, error) {
			return "wf-1", nil
		},
		workflowStatus: func(ctx context.Context, workflowID string) (*backend.WorkflowStatus, error) {
			select {
			case <-release:
				return &backend.WorkflowStatus{ID: workflowID, State: backend.WorkflowCompleted}, nil
			default:
				return &backend.WorkflowStatus{ID: workflowID, State: backend.WorkflowRunning}, nil
			}
		},
	}
	h := newHarness(t, svc)
	h.mustInitialize(t)

	h.dispatchWait(t, cmds.GenerateSummary{Meta: cmds.Meta{CorrelationID: "c1"}})

	e := h.dispatchWait(t, cmds.GenerateSummary{Meta: cmds.Meta{CorrelationID: "c2"}})
	if reason := failReason(t, e); reason != events.ReasonUserError {
		t.Errorf("reason = %s, want USER_ERROR for concurrent summary", reason)
	}
	close(release)
}
