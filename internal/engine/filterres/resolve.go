// Package filterres computes the effective filter set a widget's query
// should use, applying the widget's ignore-list and date-dataset binding to
// the dashboard's filter context.
package filterres

import (
	"context"

	"go-dash/internal/engine/model"
)

// Resolver resolves symbolic object refs to canonical URIs in one batched
// call. The backend service satisfies this.
type Resolver interface {
	ResolveObjRefs(ctx context.Context, refs []model.ObjRef) (map[string]string, error)
}

// ResolveWidgetFilters returns the filters that actually apply to the given
// widget. The function is pure apart from the single batched ref-resolution
// call: inputs are never mutated and the relative order of kept filters is
// preserved. When the input contains neither date nor attribute filters the
// input slice itself is returned.
func ResolveWidgetFilters(ctx context.Context, w model.Widget, filters []model.Filter, res Resolver) ([]model.Filter, error) {
	base := w.Common()

	var (
		dateFilters []*model.DateFilter
		attrFilters []*model.AttributeFilter
	)
	for _, f := range filters {
		switch typed := f.(type) {
		case *model.DateFilter:
			dateFilters = append(dateFilters, typed)
		case *model.AttributeFilter:
			attrFilters = append(attrFilters, typed)
		case *model.MeasureValueFilter:
			// passes through untouched
		default:
			panic("filterres: unknown filter variant")
		}
	}

	if len(dateFilters) == 0 && len(attrFilters) == 0 {
		return filters, nil
	}

	keys, err := resolveKeys(ctx, res, base, dateFilters, attrFilters)
	if err != nil {
		return nil, err
	}

	ignored := map[string]bool{}
	if len(base.IgnoredFilters) > 0 {
		for _, ref := range base.IgnoredFilters {
			ignored[keys.of(ref)] = true
		}
	}

	effectiveDate := pickEffectiveDateFilter(base, dateFilters, keys)

	// Reassemble preserving original relative order: stable filter, not a
	// re-sort.
	out := make([]model.Filter, 0, len(filters))
	for _, f := range filters {
		switch typed := f.(type) {
		case *model.DateFilter:
			if typed == effectiveDate {
				out = append(out, f)
			}
		case *model.AttributeFilter:
			if len(base.IgnoredFilters) == 0 || !ignored[keys.of(typed.DisplayForm)] {
				out = append(out, f)
			}
		default:
			out = append(out, f)
		}
	}
	return out, nil
}

// pickEffectiveDateFilter implements the last-wins precedence: of the date
// filters bound to the widget's date dimension, the latest in original
// order is the sole effective one; an all-time winner (or an unbound
// widget) means no date filter applies at all.
func pickEffectiveDateFilter(base *model.WidgetBase, dateFilters []*model.DateFilter, keys refKeys) *model.DateFilter {
	if base.DateDataSet.IsEmpty() || len(dateFilters) == 0 {
		return nil
	}
	allTime := true
	for _, df := range dateFilters {
		if !df.IsAllTime() {
			allTime = false
			break
		}
	}
	if allTime {
		return nil
	}

	widgetKey := keys.of(base.DateDataSet)
	var last *model.DateFilter
	for _, df := range dateFilters {
		if keys.of(df.DataSet) == widgetKey {
			last = df
		}
	}
	if last == nil || last.IsAllTime() {
		return nil
	}
	return last
}

// refKeys maps ref comparison keys to canonical resolved values.
type refKeys map[string]string

func (k refKeys) of(ref model.ObjRef) string {
	if resolved, ok := k[ref.Key()]; ok && resolved != "" {
		return resolved
	}
	return ref.Key()
}

// resolveKeys gathers every ref the resolution needs into one batched
// resolver call: ignore-list entries, attribute filter display forms, date
// filter datasets and the widget's own date dataset.
func resolveKeys(ctx context.Context, res Resolver, base *model.WidgetBase, dateFilters []*model.DateFilter, attrFilters []*model.AttributeFilter) (refKeys, error) {
	var refs []model.ObjRef
	seen := map[string]bool{}
	add := func(ref model.ObjRef) {
		if ref.IsEmpty() || seen[ref.Key()] {
			return
		}
		seen[ref.Key()] = true
		refs = append(refs, ref)
	}

	if len(attrFilters) > 0 {
		for _, ref := range base.IgnoredFilters {
			add(ref)
		}
		for _, af := range attrFilters {
			add(af.DisplayForm)
		}
	}
	if !base.DateDataSet.IsEmpty() && len(dateFilters) > 0 {
		add(base.DateDataSet)
		for _, df := range dateFilters {
			add(df.DataSet)
		}
	}

	if len(refs) == 0 {
		return refKeys{}, nil
	}
	resolved, err := res.ResolveObjRefs(ctx, refs)
	if err != nil {
		return nil, err
	}
	keys := make(refKeys, len(resolved))
	for k, v := range resolved {
		keys[k] = v
	}
	return keys, nil
}
