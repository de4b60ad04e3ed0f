package store

import (
	"fmt"
	"slices"

	"go-dash/internal/engine/model"
)

// invariant panics with the given message when cond is false. Reducers run
// after handler validation, so a failing check here means a programmer
// error, not bad user input.
func invariant(cond bool, format string, args ...interface{}) {
	if !cond {
		panic("store: invariant violation: " + fmt.Sprintf(format, args...))
	}
}

// resolveIndex maps the relative index convention (-1 appends) onto a
// concrete position.
func resolveIndex(idx, length int) int {
	if idx == -1 {
		return length
	}
	return idx
}

// apply is the reducer: it applies one committed action to the state copy
// being built during a commit. It is the only place dashboard state changes.
func apply(st *State, a Action) {
	switch act := a.(type) {
	case SetDashboard:
		st.Dashboard = act.Dashboard
		st.Stash = map[string][]model.Item{}

	case SetTitle:
		invariant(st.Dashboard != nil, "no dashboard loaded")
		st.Dashboard.Title = act.Title

	case MarkSaved:
		invariant(st.Dashboard != nil, "no dashboard loaded")
		st.Dashboard.Version = act.Version

	case AddSection:
		sections := st.Dashboard.Layout.Sections
		idx := resolveIndex(act.Index, len(sections))
		invariant(idx >= 0 && idx <= len(sections), "section index %d out of range", act.Index)
		st.Dashboard.Layout.Sections = slices.Insert(sections, idx, act.Section)
		for _, stash := range act.UsedStashes {
			delete(st.Stash, stash)
		}

	case RemoveSection:
		sections := st.Dashboard.Layout.Sections
		invariant(act.Index >= 0 && act.Index < len(sections), "section index %d out of range", act.Index)
		if act.StashIdentifier != "" {
			st.Stash[act.StashIdentifier] = sections[act.Index].Items
		}
		st.Dashboard.Layout.Sections = slices.Delete(sections, act.Index, act.Index+1)

	case MoveSection:
		sections := st.Dashboard.Layout.Sections
		invariant(act.FromIndex >= 0 && act.FromIndex < len(sections), "section index %d out of range", act.FromIndex)
		moved := sections[act.FromIndex]
		sections = slices.Delete(sections, act.FromIndex, act.FromIndex+1)
		idx := resolveIndex(act.ToIndex, len(sections))
		invariant(idx >= 0 && idx <= len(sections), "target index %d out of range", act.ToIndex)
		st.Dashboard.Layout.Sections = slices.Insert(sections, idx, moved)

	case SetSectionHeader:
		sections := st.Dashboard.Layout.Sections
		invariant(act.Index >= 0 && act.Index < len(sections), "section index %d out of range", act.Index)
		sections[act.Index].Header = act.Header

	case AddItems:
		sections := st.Dashboard.Layout.Sections
		invariant(act.SectionIndex >= 0 && act.SectionIndex < len(sections), "section index %d out of range", act.SectionIndex)
		items := sections[act.SectionIndex].Items
		idx := resolveIndex(act.ItemIndex, len(items))
		invariant(idx >= 0 && idx <= len(items), "item index %d out of range", act.ItemIndex)
		sections[act.SectionIndex].Items = slices.Insert(items, idx, act.Items...)
		for _, stash := range act.UsedStashes {
			delete(st.Stash, stash)
		}

	case RemoveItem:
		sections := st.Dashboard.Layout.Sections
		invariant(act.SectionIndex >= 0 && act.SectionIndex < len(sections), "section index %d out of range", act.SectionIndex)
		items := sections[act.SectionIndex].Items
		invariant(act.ItemIndex >= 0 && act.ItemIndex < len(items), "item index %d out of range", act.ItemIndex)
		if act.StashIdentifier != "" {
			st.Stash[act.StashIdentifier] = []model.Item{items[act.ItemIndex]}
		}
		sections[act.SectionIndex].Items = slices.Delete(items, act.ItemIndex, act.ItemIndex+1)

	case removeItemsRange:
		sections := st.Dashboard.Layout.Sections
		items := sections[act.SectionIndex].Items
		invariant(act.StartIndex >= 0 && act.StartIndex+act.Count <= len(items), "item range out of range")
		sections[act.SectionIndex].Items = slices.Delete(items, act.StartIndex, act.StartIndex+act.Count)

	case MoveItem:
		sections := st.Dashboard.Layout.Sections
		invariant(act.From.SectionIndex >= 0 && act.From.SectionIndex < len(sections), "section index %d out of range", act.From.SectionIndex)
		fromItems := sections[act.From.SectionIndex].Items
		invariant(act.From.ItemIndex >= 0 && act.From.ItemIndex < len(fromItems), "item index %d out of range", act.From.ItemIndex)
		moved := fromItems[act.From.ItemIndex]
		sections[act.From.SectionIndex].Items = slices.Delete(fromItems, act.From.ItemIndex, act.From.ItemIndex+1)
		invariant(act.To.SectionIndex >= 0 && act.To.SectionIndex < len(sections), "target section %d out of range", act.To.SectionIndex)
		toItems := sections[act.To.SectionIndex].Items
		idx := resolveIndex(act.To.ItemIndex, len(toItems))
		invariant(idx >= 0 && idx <= len(toItems), "target item index %d out of range", act.To.ItemIndex)
		sections[act.To.SectionIndex].Items = slices.Insert(toItems, idx, moved)

	case SetWidgetHeader:
		w := mustFindWidget(st, act.Ref)
		w.Common().Title = act.Title

	case SetWidgetFilterSettings:
		w := mustFindWidget(st, act.Ref)
		w.Common().IgnoredFilters = act.IgnoredFilters
		w.Common().DateDataSet = act.DateDataSet

	case SetKpiMeasure:
		w := mustFindWidget(st, act.Ref)
		kpi, ok := w.(*model.KpiWidget)
		invariant(ok, "widget %s is not a KPI widget", act.Ref.Key())
		kpi.Measure = act.Measure

	case SetKpiComparison:
		w := mustFindWidget(st, act.Ref)
		kpi, ok := w.(*model.KpiWidget)
		invariant(ok, "widget %s is not a KPI widget", act.Ref.Key())
		kpi.ComparisonType = act.ComparisonType
		kpi.ComparisonDirection = act.ComparisonDirection

	case UpsertDateFilter:
		fc := st.Dashboard.FilterContext
		filter := act.Filter
		for i, f := range fc.Filters {
			if df, ok := f.(*model.DateFilter); ok && model.RefsEqual(df.DataSet, filter.DataSet) {
				fc.Filters[i] = &filter
				return
			}
		}
		fc.Filters = append(fc.Filters, &filter)

	case AddAttributeFilter:
		fc := st.Dashboard.FilterContext
		idx := resolveIndex(act.Index, len(fc.Filters))
		invariant(idx >= 0 && idx <= len(fc.Filters), "filter index %d out of range", act.Index)
		filter := act.Filter
		fc.Filters = slices.Insert(fc.Filters, idx, model.Filter(&filter))

	case RemoveAttributeFilters:
		fc := st.Dashboard.FilterContext
		fc.Filters = slices.DeleteFunc(fc.Filters, func(f model.Filter) bool {
			af, ok := f.(*model.AttributeFilter)
			return ok && slices.Contains(act.LocalIDs, af.LocalID)
		})

	case MoveAttributeFilter:
		fc := st.Dashboard.FilterContext
		from := attributeFilterIndex(fc.Filters, act.LocalID)
		invariant(from >= 0, "attribute filter %s not found", act.LocalID)
		moved := fc.Filters[from]
		filters := slices.Delete(fc.Filters, from, from+1)
		idx := resolveIndex(act.ToIndex, len(filters))
		invariant(idx >= 0 && idx <= len(filters), "target index %d out of range", act.ToIndex)
		fc.Filters = slices.Insert(filters, idx, moved)

	case SetAttributeFilterSelection:
		fc := st.Dashboard.FilterContext
		idx := attributeFilterIndex(fc.Filters, act.LocalID)
		invariant(idx >= 0, "attribute filter %s not found", act.LocalID)
		af := fc.Filters[idx].(*model.AttributeFilter)
		af.Elements = act.Elements
		af.Negative = act.Negative

	case SetFilters:
		st.Dashboard.FilterContext.Filters = act.Filters

	case PutAlert:
		for i, alert := range st.Alerts {
			if model.RefsEqual(alert.Ref, act.Alert.Ref) {
				st.Alerts[i] = act.Alert
				return
			}
		}
		st.Alerts = append(st.Alerts, act.Alert)

	case DeleteAlerts:
		st.Alerts = slices.DeleteFunc(st.Alerts, func(a model.Alert) bool {
			return slices.ContainsFunc(act.Refs, func(r model.ObjRef) bool {
				return model.RefsEqual(a.Ref, r)
			})
		})

	case SetSummaryStatus:
		st.Summary.Status = act.Status
		st.Summary.WorkflowID = act.WorkflowID

	case SetSummaries:
		st.Summary.Summaries = act.Summaries

	default:
		panic(fmt.Sprintf("store: unknown action %T", a))
	}
}

func mustFindWidget(st *State, ref model.ObjRef) model.Widget {
	invariant(st.Dashboard != nil, "no dashboard loaded")
	w, _, ok := st.Dashboard.Layout.FindWidget(ref)
	invariant(ok, "widget %s not found", ref.Key())
	return w
}

func attributeFilterIndex(filters []model.Filter, localID string) int {
	for i, f := range filters {
		if af, ok := f.(*model.AttributeFilter); ok && af.LocalID == localID {
			return i
		}
	}
	return -1
}

// invert computes the action that rolls back a, evaluated against the state
// a is about to be applied to. Only layout actions are invertible; commits
// that want undo support may contain invertible actions only.
func invert(st *State, a Action) (Action, bool) {
	switch act := a.(type) {
	case AddSection:
		idx := resolveIndex(act.Index, len(st.Dashboard.Layout.Sections))
		return RemoveSection{Index: idx}, true

	case RemoveSection:
		section := st.Dashboard.Layout.Sections[act.Index].Clone()
		// Restoring the section also consumes any stash the removal
		// created, so the items never exist in both places.
		var stashes []string
		if act.StashIdentifier != "" {
			stashes = []string{act.StashIdentifier}
		}
		return AddSection{Index: act.Index, Section: section, UsedStashes: stashes}, true

	case MoveSection:
		idx := resolveIndex(act.ToIndex, len(st.Dashboard.Layout.Sections)-1)
		return MoveSection{FromIndex: idx, ToIndex: act.FromIndex}, true

	case SetSectionHeader:
		old := st.Dashboard.Layout.Sections[act.Index].Header
		return SetSectionHeader{Index: act.Index, Header: old}, true

	case AddItems:
		idx := resolveIndex(act.ItemIndex, len(st.Dashboard.Layout.Sections[act.SectionIndex].Items))
		return removeItemsRange{SectionIndex: act.SectionIndex, StartIndex: idx, Count: len(act.Items)}, true

	case RemoveItem:
		item := st.Dashboard.Layout.Sections[act.SectionIndex].Items[act.ItemIndex].Clone()
		var stashes []string
		if act.StashIdentifier != "" {
			stashes = []string{act.StashIdentifier}
		}
		return AddItems{
			SectionIndex: act.SectionIndex,
			ItemIndex:    act.ItemIndex,
			Items:        []model.Item{item},
			UsedStashes:  stashes,
		}, true

	case MoveItem:
		// The -1 append sentinel must be pinned to the concrete landing
		// slot here: the inverse moves FROM that slot, where -1 is not a
		// valid source. The source item leaves its section before the
		// insert, so a same-section move lands in a list one shorter.
		toLen := len(st.Dashboard.Layout.Sections[act.To.SectionIndex].Items)
		if act.To.SectionIndex == act.From.SectionIndex {
			toLen--
		}
		landed := model.Coordinate{
			SectionIndex: act.To.SectionIndex,
			ItemIndex:    resolveIndex(act.To.ItemIndex, toLen),
		}
		return MoveItem{From: landed, To: act.From}, true

	default:
		return nil, false
	}
}
