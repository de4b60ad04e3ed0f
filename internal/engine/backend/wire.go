package backend

import (
	"fmt"
	"time"

	"go-dash/internal/engine/model"
)

// Stored* types are the persisted shape of a dashboard document. Both
// adapters share them: bear stores them as BSON documents, tiger as JSON
// columns. The layout and filter context serialize as sub-documents under
// the root so they can be versioned independently of it.
type StoredDashboard struct {
	ID            string              `json:"id" bson:"_id"`
	Title         string              `json:"title" bson:"title"`
	Description   string              `json:"description,omitempty" bson:"description,omitempty"`
	Layout        StoredLayout        `json:"layout" bson:"layout"`
	FilterContext StoredFilterContext `json:"filterContext" bson:"filter_context"`
	Locked        bool                `json:"locked" bson:"locked"`
	Shared        bool                `json:"shared" bson:"shared"`
	Version       int                 `json:"version" bson:"version"`
	Created       time.Time           `json:"created" bson:"created"`
	Updated       time.Time           `json:"updated" bson:"updated"`
}

type StoredLayout struct {
	Sections []StoredSection `json:"sections" bson:"sections"`
}

type StoredSection struct {
	Title       string       `json:"title,omitempty" bson:"title,omitempty"`
	Description string       `json:"description,omitempty" bson:"description,omitempty"`
	Items       []StoredItem `json:"items" bson:"items"`
}

type StoredItem struct {
	Widget StoredWidget `json:"widget" bson:"widget"`
	Width  int          `json:"width" bson:"width"`
	Height int          `json:"height" bson:"height"`
}

// StoredWidget flattens the widget sum type into one record discriminated
// by Type. Unknown types surface as conversion errors, not panics: a
// document written by a newer product version is malformed input here.
type StoredWidget struct {
	Type           string                  `json:"type" bson:"type"`
	Ref            model.ObjRef            `json:"ref" bson:"ref"`
	Title          string                  `json:"title" bson:"title"`
	Description    string                  `json:"description,omitempty" bson:"description,omitempty"`
	IgnoredFilters []model.ObjRef          `json:"ignoredFilters,omitempty" bson:"ignored_filters,omitempty"`
	DateDataSet    model.ObjRef            `json:"dateDataSet,omitempty" bson:"date_data_set,omitempty"`
	Drills         []model.DrillDefinition `json:"drills,omitempty" bson:"drills,omitempty"`

	Insight        model.ObjRef            `json:"insight,omitempty" bson:"insight,omitempty"`
	Properties     map[string]interface{}  `json:"properties,omitempty" bson:"properties,omitempty"`
	Measure        model.ObjRef            `json:"measure,omitempty" bson:"measure,omitempty"`
	ComparisonType string                  `json:"comparisonType,omitempty" bson:"comparison_type,omitempty"`
	ComparisonDir  string                  `json:"comparisonDirection,omitempty" bson:"comparison_direction,omitempty"`
	Content        string                  `json:"content,omitempty" bson:"content,omitempty"`
	Visualizations []model.ObjRef          `json:"visualizations,omitempty" bson:"visualizations,omitempty"`
	Active         model.ObjRef            `json:"active,omitempty" bson:"active,omitempty"`
	Layout         *StoredLayout           `json:"layout,omitempty" bson:"layout,omitempty"`
}

type StoredFilterContext struct {
	Ref     model.ObjRef   `json:"ref" bson:"ref"`
	Filters []StoredFilter `json:"filters" bson:"filters"`
}

type StoredFilter struct {
	Kind string `json:"kind" bson:"kind"`

	LocalID     string       `json:"localId,omitempty" bson:"local_id,omitempty"`
	DisplayForm model.ObjRef `json:"displayForm,omitempty" bson:"display_form,omitempty"`
	Negative    bool         `json:"negative,omitempty" bson:"negative,omitempty"`
	Elements    []string     `json:"elements,omitempty" bson:"elements,omitempty"`

	DataSet     model.ObjRef `json:"dataSet,omitempty" bson:"data_set,omitempty"`
	DateType    string       `json:"dateType,omitempty" bson:"date_type,omitempty"`
	Granularity string       `json:"granularity,omitempty" bson:"granularity,omitempty"`
	From        *int         `json:"from,omitempty" bson:"from,omitempty"`
	To          *int         `json:"to,omitempty" bson:"to,omitempty"`
	FromDate    string       `json:"fromDate,omitempty" bson:"from_date,omitempty"`
	ToDate      string       `json:"toDate,omitempty" bson:"to_date,omitempty"`

	Measure  model.ObjRef `json:"measure,omitempty" bson:"measure,omitempty"`
	Operator string       `json:"operator,omitempty" bson:"operator,omitempty"`
	Value    float64      `json:"value,omitempty" bson:"value,omitempty"`
}

// ToStored converts the in-memory document into its persisted shape.
func ToStored(d *model.Dashboard) *StoredDashboard {
	sd := &StoredDashboard{
		ID:          dashboardID(d.Ref),
		Title:       d.Title,
		Description: d.Description,
		Layout:      toStoredLayout(d.Layout),
		Locked:      d.Locked,
		Shared:      d.Shared,
		Version:     d.Version,
		Created:     d.Created,
		Updated:     d.Updated,
	}
	if d.FilterContext != nil {
		sd.FilterContext.Ref = d.FilterContext.Ref
		for _, f := range d.FilterContext.Filters {
			sd.FilterContext.Filters = append(sd.FilterContext.Filters, toStoredFilter(f))
		}
	}
	return sd
}

func dashboardID(ref model.ObjRef) string {
	if ref.Identifier != "" {
		return ref.Identifier
	}
	return ref.URI
}

func toStoredLayout(l *model.Layout) StoredLayout {
	var sl StoredLayout
	if l == nil {
		return sl
	}
	for _, sec := range l.Sections {
		ss := StoredSection{
			Title:       sec.Header.Title,
			Description: sec.Header.Description,
		}
		for _, item := range sec.Items {
			ss.Items = append(ss.Items, StoredItem{
				Widget: toStoredWidget(item.Widget),
				Width:  item.Size.GridWidth,
				Height: item.Size.GridHeight,
			})
		}
		sl.Sections = append(sl.Sections, ss)
	}
	return sl
}

func toStoredWidget(w model.Widget) StoredWidget {
	base := w.Common()
	sw := StoredWidget{
		Type:           string(w.Type()),
		Ref:            base.Ref,
		Title:          base.Title,
		Description:    base.Description,
		IgnoredFilters: base.IgnoredFilters,
		DateDataSet:    base.DateDataSet,
		Drills:         base.Drills,
	}
	switch typed := w.(type) {
	case *model.InsightWidget:
		sw.Insight = typed.Insight
		sw.Properties = typed.Properties
	case *model.KpiWidget:
		sw.Measure = typed.Measure
		sw.ComparisonType = typed.ComparisonType
		sw.ComparisonDir = typed.ComparisonDirection
	case *model.RichTextWidget:
		sw.Content = typed.Content
	case *model.SwitcherWidget:
		sw.Visualizations = typed.Visualizations
		sw.Active = typed.Active
	case *model.NestedLayoutWidget:
		nested := toStoredLayout(typed.Layout)
		sw.Layout = &nested
	default:
		panic(fmt.Sprintf("backend: unknown widget variant %T", w))
	}
	return sw
}

// FilterToStored converts one filter into its persisted shape. Exposed for
// callers that move filters across a wire outside full dashboard documents.
func FilterToStored(f model.Filter) StoredFilter {
	return toStoredFilter(f)
}

// FilterFromStored is the inverse of FilterToStored.
func FilterFromStored(sf StoredFilter) (model.Filter, error) {
	return fromStoredFilter(sf)
}

func toStoredFilter(f model.Filter) StoredFilter {
	switch typed := f.(type) {
	case *model.AttributeFilter:
		return StoredFilter{
			Kind:        "attribute",
			LocalID:     typed.LocalID,
			DisplayForm: typed.DisplayForm,
			Negative:    typed.Negative,
			Elements:    typed.Elements,
		}
	case *model.DateFilter:
		return StoredFilter{
			Kind:        "date",
			DataSet:     typed.DataSet,
			DateType:    string(typed.Type),
			Granularity: typed.Granularity,
			From:        typed.From,
			To:          typed.To,
			FromDate:    typed.FromDate,
			ToDate:      typed.ToDate,
		}
	case *model.MeasureValueFilter:
		return StoredFilter{
			Kind:     "measureValue",
			Measure:  typed.Measure,
			Operator: typed.Operator,
			Value:    typed.Value,
		}
	default:
		panic(fmt.Sprintf("backend: unknown filter variant %T", f))
	}
}

// FromStored converts a persisted document back into the in-memory model.
func FromStored(sd *StoredDashboard) (*model.Dashboard, error) {
	layout, err := fromStoredLayout(sd.Layout)
	if err != nil {
		return nil, err
	}
	fc := &model.FilterContext{Ref: sd.FilterContext.Ref}
	for _, sf := range sd.FilterContext.Filters {
		f, err := fromStoredFilter(sf)
		if err != nil {
			return nil, err
		}
		fc.Filters = append(fc.Filters, f)
	}
	return &model.Dashboard{
		Ref:           model.ObjRef{Identifier: sd.ID},
		Title:         sd.Title,
		Description:   sd.Description,
		Layout:        layout,
		FilterContext: fc,
		Locked:        sd.Locked,
		Shared:        sd.Shared,
		Version:       sd.Version,
		Created:       sd.Created,
		Updated:       sd.Updated,
	}, nil
}

func fromStoredLayout(sl StoredLayout) (*model.Layout, error) {
	l := &model.Layout{}
	for _, ss := range sl.Sections {
		sec := model.Section{
			Header: model.SectionHeader{Title: ss.Title, Description: ss.Description},
		}
		for _, si := range ss.Items {
			w, err := fromStoredWidget(si.Widget)
			if err != nil {
				return nil, err
			}
			sec.Items = append(sec.Items, model.Item{
				Widget: w,
				Size:   model.ItemSize{GridWidth: si.Width, GridHeight: si.Height},
			})
		}
		l.Sections = append(l.Sections, sec)
	}
	return l, nil
}

func fromStoredWidget(sw StoredWidget) (model.Widget, error) {
	base := model.WidgetBase{
		Ref:            sw.Ref,
		Title:          sw.Title,
		Description:    sw.Description,
		IgnoredFilters: sw.IgnoredFilters,
		DateDataSet:    sw.DateDataSet,
		Drills:         sw.Drills,
	}
	switch model.WidgetType(sw.Type) {
	case model.WidgetTypeInsight:
		return &model.InsightWidget{WidgetBase: base, Insight: sw.Insight, Properties: sw.Properties}, nil
	case model.WidgetTypeKpi:
		return &model.KpiWidget{
			WidgetBase:          base,
			Measure:             sw.Measure,
			ComparisonType:      sw.ComparisonType,
			ComparisonDirection: sw.ComparisonDir,
		}, nil
	case model.WidgetTypeRichText:
		return &model.RichTextWidget{WidgetBase: base, Content: sw.Content}, nil
	case model.WidgetTypeSwitcher:
		return &model.SwitcherWidget{WidgetBase: base, Visualizations: sw.Visualizations, Active: sw.Active}, nil
	case model.WidgetTypeNestedLayout:
		var nested *model.Layout
		if sw.Layout != nil {
			var err error
			nested, err = fromStoredLayout(*sw.Layout)
			if err != nil {
				return nil, err
			}
		}
		return &model.NestedLayoutWidget{WidgetBase: base, Layout: nested}, nil
	default:
		return nil, fmt.Errorf("backend: unknown widget type %q", sw.Type)
	}
}

func fromStoredFilter(sf StoredFilter) (model.Filter, error) {
	switch sf.Kind {
	case "attribute":
		return &model.AttributeFilter{
			LocalID:     sf.LocalID,
			DisplayForm: sf.DisplayForm,
			Negative:    sf.Negative,
			Elements:    sf.Elements,
		}, nil
	case "date":
		return &model.DateFilter{
			DataSet:     sf.DataSet,
			Type:        model.DateFilterType(sf.DateType),
			Granularity: sf.Granularity,
			From:        sf.From,
			To:          sf.To,
			FromDate:    sf.FromDate,
			ToDate:      sf.ToDate,
		}, nil
	case "measureValue":
		return &model.MeasureValueFilter{
			Measure:  sf.Measure,
			Operator: sf.Operator,
			Value:    sf.Value,
		}, nil
	default:
		return nil, fmt.Errorf("backend: unknown filter kind %q", sf.Kind)
	}
}
