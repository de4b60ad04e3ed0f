// Package selectors provides pure, memoized read projections over the
// store. Derived values are cached per state revision: as long as no commit
// happened, repeated reads return the cached projection without recompute.
package selectors

import (
	"sync"

	"go-dash/internal/engine/model"
	"go-dash/internal/engine/store"
)

type View struct {
	st *store.Store

	mu          sync.Mutex
	rev         uint64
	state       store.State
	primed      bool
	widgetIndex map[string]model.Widget
	widgetPaths map[string]model.ItemPath
}

func New(st *store.Store) *View {
	return &View{st: st}
}

// snapshot refreshes the cached state when the store moved on and drops all
// derived caches keyed to the old revision.
func (v *View) snapshot() store.State {
	state, rev := v.st.Snapshot()
	if !v.primed || rev != v.rev {
		v.state = state
		v.rev = rev
		v.primed = true
		v.widgetIndex = nil
		v.widgetPaths = nil
	}
	return v.state
}

func (v *View) Dashboard() *model.Dashboard {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshot().Dashboard
}

func (v *View) Filters() []model.Filter {
	v.mu.Lock()
	defer v.mu.Unlock()
	st := v.snapshot()
	if st.Dashboard == nil || st.Dashboard.FilterContext == nil {
		return nil
	}
	return st.Dashboard.FilterContext.Filters
}

func (v *View) SectionCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	st := v.snapshot()
	if st.Dashboard == nil {
		return 0
	}
	return len(st.Dashboard.Layout.Sections)
}

func (v *View) Section(index int) (model.Section, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	st := v.snapshot()
	if st.Dashboard == nil || index < 0 || index >= len(st.Dashboard.Layout.Sections) {
		return model.Section{}, false
	}
	return st.Dashboard.Layout.Sections[index], true
}

// buildWidgetIndex walks the layout once per revision. A widget ref that
// resolves to more than one layout entry violates the document invariant
// and panics: that state can only be produced by broken reducer code.
func (v *View) buildWidgetIndex(st store.State) {
	if v.widgetIndex != nil {
		return
	}
	v.widgetIndex = map[string]model.Widget{}
	v.widgetPaths = map[string]model.ItemPath{}
	if st.Dashboard == nil {
		return
	}
	st.Dashboard.Layout.WalkWidgets(func(w model.Widget, path model.ItemPath) bool {
		key := w.Common().Ref.Key()
		if _, dup := v.widgetIndex[key]; dup {
			panic("selectors: duplicate widget ref " + key)
		}
		v.widgetIndex[key] = w
		v.widgetPaths[key] = path
		return true
	})
}

func (v *View) WidgetByRef(ref model.ObjRef) (model.Widget, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	st := v.snapshot()
	v.buildWidgetIndex(st)
	w, ok := v.widgetIndex[ref.Key()]
	return w, ok
}

// WidgetPath returns the item path of a widget. Paths are derived from the
// current revision only and must not be cached across structural edits by
// the caller.
func (v *View) WidgetPath(ref model.ObjRef) (model.ItemPath, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	st := v.snapshot()
	v.buildWidgetIndex(st)
	p, ok := v.widgetPaths[ref.Key()]
	return p, ok
}

func (v *View) Widgets() []model.Widget {
	v.mu.Lock()
	defer v.mu.Unlock()
	st := v.snapshot()
	v.buildWidgetIndex(st)
	out := make([]model.Widget, 0, len(v.widgetIndex))
	if st.Dashboard != nil {
		st.Dashboard.Layout.WalkWidgets(func(w model.Widget, _ model.ItemPath) bool {
			out = append(out, w)
			return true
		})
	}
	return out
}

func (v *View) Alerts() []model.Alert {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshot().Alerts
}

func (v *View) AlertByRef(ref model.ObjRef) (model.Alert, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, a := range v.snapshot().Alerts {
		if model.RefsEqual(a.Ref, ref) {
			return a, true
		}
	}
	return model.Alert{}, false
}

func (v *View) Stash(identifier string) ([]model.Item, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	items, ok := v.snapshot().Stash[identifier]
	return items, ok
}

func (v *View) Summary() store.SummaryState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshot().Summary
}
