package store

import "go-dash/internal/engine/model"

// Action is a committed state delta. Actions are applied by reducers only;
// handlers build them during the commit phase and hand them to the store in
// one atomic batch.
type Action interface {
	isAction()
}

// Dashboard-level actions.

type SetDashboard struct {
	Dashboard *model.Dashboard
}

type SetTitle struct {
	Title string
}

type MarkSaved struct {
	Version int
}

// Layout actions. These are the undoable set; the ledger records their
// inverses at commit time.

type AddSection struct {
	// Index is zero-based; -1 appends.
	Index       int
	Section     model.Section
	UsedStashes []string
}

type RemoveSection struct {
	Index int
	// StashIdentifier preserves the removed section's items for later
	// resurrection when non-empty.
	StashIdentifier string
}

type MoveSection struct {
	FromIndex int
	ToIndex   int
}

type SetSectionHeader struct {
	Index  int
	Header model.SectionHeader
}

type AddItems struct {
	SectionIndex int
	// ItemIndex is zero-based; -1 appends.
	ItemIndex   int
	Items       []model.Item
	UsedStashes []string
}

type RemoveItem struct {
	SectionIndex    int
	ItemIndex       int
	StashIdentifier string
}

// removeItemsRange exists only as the computed inverse of AddItems.
type removeItemsRange struct {
	SectionIndex int
	StartIndex   int
	Count        int
}

type MoveItem struct {
	From model.Coordinate
	To   model.Coordinate
}

// Widget actions.

type SetWidgetHeader struct {
	Ref   model.ObjRef
	Title string
}

type SetWidgetFilterSettings struct {
	Ref            model.ObjRef
	IgnoredFilters []model.ObjRef
	DateDataSet    model.ObjRef
}

type SetKpiMeasure struct {
	Ref     model.ObjRef
	Measure model.ObjRef
}

type SetKpiComparison struct {
	Ref                 model.ObjRef
	ComparisonType      string
	ComparisonDirection string
}

// Filter context actions.

type UpsertDateFilter struct {
	Filter model.DateFilter
}

type AddAttributeFilter struct {
	Filter model.AttributeFilter
	// Index is zero-based; -1 appends.
	Index int
}

type RemoveAttributeFilters struct {
	LocalIDs []string
}

type MoveAttributeFilter struct {
	LocalID string
	ToIndex int
}

type SetAttributeFilterSelection struct {
	LocalID  string
	Elements []string
	Negative bool
}

type SetFilters struct {
	Filters []model.Filter
}

// Alert actions.

type PutAlert struct {
	Alert model.Alert
}

type DeleteAlerts struct {
	Refs []model.ObjRef
}

// Summary workflow actions.

type SetSummaryStatus struct {
	Status     SummaryStatus
	WorkflowID string
}

type SetSummaries struct {
	Summaries []model.Summary
}

func (SetDashboard) isAction()                {}
func (SetTitle) isAction()                    {}
func (MarkSaved) isAction()                   {}
func (AddSection) isAction()                  {}
func (RemoveSection) isAction()               {}
func (MoveSection) isAction()                 {}
func (SetSectionHeader) isAction()            {}
func (AddItems) isAction()                    {}
func (RemoveItem) isAction()                  {}
func (removeItemsRange) isAction()            {}
func (MoveItem) isAction()                    {}
func (SetWidgetHeader) isAction()             {}
func (SetWidgetFilterSettings) isAction()     {}
func (SetKpiMeasure) isAction()               {}
func (SetKpiComparison) isAction()            {}
func (UpsertDateFilter) isAction()            {}
func (AddAttributeFilter) isAction()          {}
func (RemoveAttributeFilters) isAction()      {}
func (MoveAttributeFilter) isAction()         {}
func (SetAttributeFilterSelection) isAction() {}
func (SetFilters) isAction()                  {}
func (PutAlert) isAction()                    {}
func (DeleteAlerts) isAction()                {}
func (SetSummaryStatus) isAction()            {}
func (SetSummaries) isAction()                {}
