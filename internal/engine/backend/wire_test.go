package backend

import (
	"reflect"
	"testing"

	"go-dash/internal/engine/model"
)

func TestDashboardSurvivesStorageRoundTrip(t *testing.T) {
	dash := model.NewDashboard(model.NewRef("dash-1"), "Revenue")
	dash.Description = "Quarterly revenue overview"
	dash.Version = 3
	dash.Layout.Sections = []model.Section{
		{
			Header: model.SectionHeader{Title: "KPIs"},
			Items: []model.Item{
				{
					Widget: &model.KpiWidget{
						WidgetBase: model.WidgetBase{
							Ref:         model.NewRef("w-kpi"),
							Title:       "Total revenue",
							DateDataSet: model.NewRef("ds-date"),
						},
						Measure:        model.NewRef("m-revenue"),
						ComparisonType: "previousPeriod",
					},
					Size: model.ItemSize{GridWidth: 4, GridHeight: 2},
				},
				{
					Widget: &model.NestedLayoutWidget{
						WidgetBase: model.WidgetBase{Ref: model.NewRef("w-nested")},
						Layout: &model.Layout{Sections: []model.Section{
							{Items: []model.Item{{
								Widget: &model.RichTextWidget{
									WidgetBase: model.WidgetBase{Ref: model.NewRef("w-text")},
									Content:    "## Notes",
								},
								Size: model.ItemSize{GridWidth: 12, GridHeight: 1},
							}}},
						}},
					},
					Size: model.ItemSize{GridWidth: 8, GridHeight: 4},
				},
			},
		},
	}
	from := -30
	dash.FilterContext.Filters = []model.Filter{
		&model.AttributeFilter{LocalID: "f1", DisplayForm: model.NewRef("df-region"), Elements: []string{"west"}},
		&model.DateFilter{DataSet: model.NewRef("ds-date"), Type: model.DateFilterRelative, Granularity: "GDC.time.date", From: &from},
		&model.MeasureValueFilter{Measure: model.NewRef("m-revenue"), Operator: "GREATER_THAN", Value: 1000},
	}

	restored, err := FromStored(ToStored(dash))
	if err != nil {
		t.Fatalf("FromStored() error = %v", err)
	}

	if restored.Title != dash.Title || restored.Description != dash.Description || restored.Version != dash.Version {
		t.Errorf("header fields differ: got %q/%q/v%d", restored.Title, restored.Description, restored.Version)
	}
	if !model.RefsEqual(restored.Ref, dash.Ref) {
		t.Errorf("ref = %+v, want %+v", restored.Ref, dash.Ref)
	}
	if !reflect.DeepEqual(restored.Layout, dash.Layout) {
		t.Errorf("layout differs after round trip:\ngot  %#v\nwant %#v", restored.Layout, dash.Layout)
	}
	if !reflect.DeepEqual(restored.FilterContext.Filters, dash.FilterContext.Filters) {
		t.Errorf("filters differ after round trip:\ngot  %#v\nwant %#v", restored.FilterContext.Filters, dash.FilterContext.Filters)
	}
}

func TestFromStoredRejectsUnknownWidgetType(t *testing.T) {
	sd := &StoredDashboard{
		ID:    "dash-1",
		Title: "broken",
		Layout: StoredLayout{Sections: []StoredSection{
			{Items: []StoredItem{{Widget: StoredWidget{Type: "hologram", Ref: model.NewRef("w1")}}}},
		}},
	}

	if _, err := FromStored(sd); err == nil {
		t.Error("expected error for unknown widget type")
	}
}

func TestFromStoredRejectsUnknownFilterKind(t *testing.T) {
	sd := &StoredDashboard{
		ID:    "dash-1",
		Title: "broken",
		FilterContext: StoredFilterContext{Filters: []StoredFilter{
			{Kind: "ranking"},
		}},
	}

	if _, err := FromStored(sd); err == nil {
		t.Error("expected error for unknown filter kind")
	}
}

func TestFilterFromStoredIsInverseOfFilterToStored(t *testing.T) {
	to := 0
	tests := []struct {
		name   string
		filter model.Filter
	}{
		{
			name:   "attribute",
			filter: &model.AttributeFilter{LocalID: "f1", DisplayForm: model.NewRef("df1"), Negative: true, Elements: []string{"a", "b"}},
		},
		{
			name:   "date",
			filter: &model.DateFilter{DataSet: model.NewRef("ds1"), Type: model.DateFilterAbsolute, FromDate: "2026-01-01", ToDate: "2026-12-31", To: &to},
		},
		{
			name:   "measure value",
			filter: &model.MeasureValueFilter{Measure: model.NewRef("m1"), Operator: "BETWEEN", Value: 42},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			restored, err := FilterFromStored(FilterToStored(tt.filter))
			if err != nil {
				t.Fatalf("FilterFromStored() error = %v", err)
			}
			if !reflect.DeepEqual(restored, tt.filter) {
				t.Errorf("round trip = %#v, want %#v", restored, tt.filter)
			}
		})
	}
}

func TestStoredWidgetKeepsNestedLayoutDepth(t *testing.T) {
	sw := toStoredWidget(&model.NestedLayoutWidget{
		WidgetBase: model.WidgetBase{Ref: model.NewRef("outer")},
		Layout: &model.Layout{Sections: []model.Section{
			{Items: []model.Item{{
				Widget: &model.NestedLayoutWidget{
					WidgetBase: model.WidgetBase{Ref: model.NewRef("inner")},
					Layout:     &model.Layout{},
				},
			}}},
		}},
	})

	if sw.Layout == nil || len(sw.Layout.Sections) != 1 {
		t.Fatalf("outer stored layout = %+v, want one section", sw.Layout)
	}
	innerWidget := sw.Layout.Sections[0].Items[0].Widget
	if innerWidget.Type != string(model.WidgetTypeNestedLayout) || innerWidget.Layout == nil {
		t.Errorf("inner widget = %+v, want nested layout preserved", innerWidget)
	}
}
