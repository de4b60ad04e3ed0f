package model

import "fmt"

// Filter is the closed set of dashboard filter variants. Consumers are
// expected to type-switch over the concrete types and panic on anything
// else; a new variant must be handled everywhere the switch appears.
type Filter interface {
	filterVariant()
	// CloneFilter returns a deep copy of the filter.
	CloneFilter() Filter
}

// AttributeFilter selects (or excludes) elements of one attribute display
// form. LocalID identifies the filter within its filter context.
type AttributeFilter struct {
	LocalID     string   `json:"localId" bson:"local_id"`
	DisplayForm ObjRef   `json:"displayForm" bson:"display_form"`
	Negative    bool     `json:"negative" bson:"negative"`
	Elements    []string `json:"elements" bson:"elements"`
}

func (f *AttributeFilter) filterVariant() {}

func (f *AttributeFilter) CloneFilter() Filter {
	c := *f
	c.Elements = append([]string(nil), f.Elements...)
	return &c
}

// DateFilterType discriminates relative from absolute date ranges.
type DateFilterType string

const (
	DateFilterRelative DateFilterType = "relative"
	DateFilterAbsolute DateFilterType = "absolute"
)

// DateFilter restricts one date dimension. A relative filter with neither
// bound set is the "all time" sentinel: it matches everything and, when it
// is the effective filter for a widget, suppresses date filtering entirely.
type DateFilter struct {
	DataSet     ObjRef         `json:"dataSet" bson:"data_set"`
	Type        DateFilterType `json:"type" bson:"type"`
	Granularity string         `json:"granularity,omitempty" bson:"granularity,omitempty"`
	From        *int           `json:"from,omitempty" bson:"from,omitempty"`
	To          *int           `json:"to,omitempty" bson:"to,omitempty"`
	FromDate    string         `json:"fromDate,omitempty" bson:"from_date,omitempty"`
	ToDate      string         `json:"toDate,omitempty" bson:"to_date,omitempty"`
}

func (f *DateFilter) filterVariant() {}

func (f *DateFilter) IsAllTime() bool {
	return f.Type == DateFilterRelative && f.From == nil && f.To == nil
}

func (f *DateFilter) CloneFilter() Filter {
	c := *f
	if f.From != nil {
		v := *f.From
		c.From = &v
	}
	if f.To != nil {
		v := *f.To
		c.To = &v
	}
	return &c
}

// MeasureValueFilter restricts results by a numeric condition on a measure.
// It is never subject to ignore-list or date-dataset resolution.
type MeasureValueFilter struct {
	Measure  ObjRef  `json:"measure" bson:"measure"`
	Operator string  `json:"operator" bson:"operator"`
	Value    float64 `json:"value" bson:"value"`
}

func (f *MeasureValueFilter) filterVariant() {}

func (f *MeasureValueFilter) CloneFilter() Filter {
	c := *f
	return &c
}

// CloneFilters deep-copies a filter list.
func CloneFilters(filters []Filter) []Filter {
	if filters == nil {
		return nil
	}
	out := make([]Filter, len(filters))
	for i, f := range filters {
		out[i] = f.CloneFilter()
	}
	return out
}

// FilterKindOf names a filter variant, mostly for diagnostics and wire tags.
func FilterKindOf(f Filter) string {
	switch f.(type) {
	case *AttributeFilter:
		return "attribute"
	case *DateFilter:
		return "date"
	case *MeasureValueFilter:
		return "measureValue"
	default:
		panic(fmt.Sprintf("unknown filter variant %T", f))
	}
}

// FilterContext is the ordered list of dashboard-level filters. Order is
// meaningful: for date filters of the same dimension the later entry wins.
type FilterContext struct {
	Ref     ObjRef   `json:"ref" bson:"ref"`
	Filters []Filter `json:"filters" bson:"-"`
}

func (fc *FilterContext) Clone() *FilterContext {
	if fc == nil {
		return nil
	}
	return &FilterContext{
		Ref:     fc.Ref,
		Filters: CloneFilters(fc.Filters),
	}
}
