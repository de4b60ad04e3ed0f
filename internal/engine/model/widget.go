package model

import "fmt"

// WidgetType tags the closed set of widget variants.
type WidgetType string

const (
	WidgetTypeInsight      WidgetType = "insight"
	WidgetTypeKpi          WidgetType = "kpi"
	WidgetTypeRichText     WidgetType = "richText"
	WidgetTypeSwitcher     WidgetType = "visualizationSwitcher"
	WidgetTypeNestedLayout WidgetType = "nestedLayout"
)

// Widget is the closed sum of dashboard widget variants. Every consumer
// must handle all five concrete types; an unknown implementation is a
// programmer error and panics at the point of dispatch.
type Widget interface {
	Common() *WidgetBase
	Type() WidgetType
	CloneWidget() Widget
	widgetVariant()
}

// WidgetBase carries the attributes shared by all widget variants.
type WidgetBase struct {
	Ref         ObjRef `json:"ref" bson:"ref"`
	Title       string `json:"title" bson:"title"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`

	// IgnoredFilters lists attribute display forms whose dashboard filters
	// this widget opts out of.
	IgnoredFilters []ObjRef `json:"ignoredFilters,omitempty" bson:"ignored_filters,omitempty"`

	// DateDataSet binds the widget to a date dimension. Empty means the
	// widget does not react to dashboard date filters at all.
	DateDataSet ObjRef `json:"dateDataSet,omitempty" bson:"date_data_set,omitempty"`

	Drills []DrillDefinition `json:"drills,omitempty" bson:"drills,omitempty"`
}

func (b *WidgetBase) Common() *WidgetBase { return b }

func (b *WidgetBase) cloneBase() WidgetBase {
	c := *b
	c.IgnoredFilters = append([]ObjRef(nil), b.IgnoredFilters...)
	c.Drills = append([]DrillDefinition(nil), b.Drills...)
	return c
}

// DrillDefinition describes one drill interaction configured on a widget.
type DrillDefinition struct {
	Origin ObjRef `json:"origin" bson:"origin"`
	Target ObjRef `json:"target" bson:"target"`
	Kind   string `json:"kind" bson:"kind"`
}

// InsightWidget renders a stored visualization.
type InsightWidget struct {
	WidgetBase `bson:",inline"`
	Insight    ObjRef                 `json:"insight" bson:"insight"`
	Properties map[string]interface{} `json:"properties,omitempty" bson:"properties,omitempty"`
}

func (w *InsightWidget) Type() WidgetType { return WidgetTypeInsight }
func (w *InsightWidget) widgetVariant()   {}

func (w *InsightWidget) CloneWidget() Widget {
	c := *w
	c.WidgetBase = w.cloneBase()
	if w.Properties != nil {
		c.Properties = make(map[string]interface{}, len(w.Properties))
		for k, v := range w.Properties {
			c.Properties[k] = v
		}
	}
	return &c
}

// KpiWidget renders a single measure headline with optional comparison.
type KpiWidget struct {
	WidgetBase          `bson:",inline"`
	Measure             ObjRef `json:"measure" bson:"measure"`
	ComparisonType      string `json:"comparisonType,omitempty" bson:"comparison_type,omitempty"`
	ComparisonDirection string `json:"comparisonDirection,omitempty" bson:"comparison_direction,omitempty"`
}

func (w *KpiWidget) Type() WidgetType { return WidgetTypeKpi }
func (w *KpiWidget) widgetVariant()   {}

func (w *KpiWidget) CloneWidget() Widget {
	c := *w
	c.WidgetBase = w.cloneBase()
	return &c
}

// RichTextWidget renders markdown content.
type RichTextWidget struct {
	WidgetBase `bson:",inline"`
	Content    string `json:"content" bson:"content"`
}

func (w *RichTextWidget) Type() WidgetType { return WidgetTypeRichText }
func (w *RichTextWidget) widgetVariant()   {}

func (w *RichTextWidget) CloneWidget() Widget {
	c := *w
	c.WidgetBase = w.cloneBase()
	return &c
}

// SwitcherWidget cycles between several insight visualizations.
type SwitcherWidget struct {
	WidgetBase     `bson:",inline"`
	Visualizations []ObjRef `json:"visualizations" bson:"visualizations"`
	Active         ObjRef   `json:"active" bson:"active"`
}

func (w *SwitcherWidget) Type() WidgetType { return WidgetTypeSwitcher }
func (w *SwitcherWidget) widgetVariant()   {}

func (w *SwitcherWidget) CloneWidget() Widget {
	c := *w
	c.WidgetBase = w.cloneBase()
	c.Visualizations = append([]ObjRef(nil), w.Visualizations...)
	return &c
}

// NestedLayoutWidget embeds a child layout, making the layout a tree.
type NestedLayoutWidget struct {
	WidgetBase `bson:",inline"`
	Layout     *Layout `json:"layout" bson:"layout"`
}

func (w *NestedLayoutWidget) Type() WidgetType { return WidgetTypeNestedLayout }
func (w *NestedLayoutWidget) widgetVariant()   {}

func (w *NestedLayoutWidget) CloneWidget() Widget {
	c := *w
	c.WidgetBase = w.cloneBase()
	c.Layout = w.Layout.Clone()
	return &c
}

// MustWidgetType returns the tag of a widget, panicking on an unknown
// implementation. Used by code that needs the exhaustiveness guarantee.
func MustWidgetType(w Widget) WidgetType {
	switch w.(type) {
	case *InsightWidget:
		return WidgetTypeInsight
	case *KpiWidget:
		return WidgetTypeKpi
	case *RichTextWidget:
		return WidgetTypeRichText
	case *SwitcherWidget:
		return WidgetTypeSwitcher
	case *NestedLayoutWidget:
		return WidgetTypeNestedLayout
	default:
		panic(fmt.Sprintf("unknown widget variant %T", w))
	}
}
