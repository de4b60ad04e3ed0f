package cmds

import "go-dash/internal/engine/model"

// ChangeWidgetHeader retitles any widget variant.
type ChangeWidgetHeader struct {
	Meta
	Ref   model.ObjRef `json:"ref"`
	Title string       `json:"title"`
}

func (ChangeWidgetHeader) CommandType() Type { return TypeChangeWidgetHeader }

// ChangeInsightWidgetFilterSettings rewires which dashboard filters an
// insight widget reacts to. Ignored display form refs are validated against
// the catalog before any state is touched.
type ChangeInsightWidgetFilterSettings struct {
	Meta
	Ref            model.ObjRef   `json:"ref"`
	IgnoredFilters []model.ObjRef `json:"ignoredFilters"`
	DateDataSet    model.ObjRef   `json:"dateDataSet"`
}

func (ChangeInsightWidgetFilterSettings) CommandType() Type {
	return TypeChangeInsightWidgetFilterConfig
}

// ChangeKpiWidgetMeasure swaps the measure of a KPI widget. The target must
// be a KPI widget; pointing this at an insight widget is a user error.
type ChangeKpiWidgetMeasure struct {
	Meta
	Ref     model.ObjRef `json:"ref"`
	Measure model.ObjRef `json:"measure"`
}

func (ChangeKpiWidgetMeasure) CommandType() Type { return TypeChangeKpiWidgetMeasure }

type ChangeKpiWidgetComparison struct {
	Meta
	Ref                 model.ObjRef `json:"ref"`
	ComparisonType      string       `json:"comparisonType"`
	ComparisonDirection string       `json:"comparisonDirection"`
}

func (ChangeKpiWidgetComparison) CommandType() Type { return TypeChangeKpiWidgetComparison }
