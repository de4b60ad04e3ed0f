// Package events defines the immutable fact records emitted after state
// changes. The event stream is the only way external code observes command
// outcomes; dispatch itself is fire-and-forget.
package events

import (
	"time"

	"go-dash/internal/engine/model"
)

type Type string

const (
	TypeCommandStarted Type = "DASH/EVT.COMMAND.STARTED"
	TypeCommandFailed  Type = "DASH/EVT.COMMAND.FAILED"

	TypeDashboardInitialized Type = "DASH/EVT.INITIALIZED"
	TypeDashboardSaved       Type = "DASH/EVT.SAVED"
	TypeDashboardRenamed     Type = "DASH/EVT.RENAMED"
	TypeDashboardReset       Type = "DASH/EVT.RESET"

	TypeLayoutSectionAdded   Type = "DASH/EVT.LAYOUT.SECTION_ADDED"
	TypeLayoutSectionMoved   Type = "DASH/EVT.LAYOUT.SECTION_MOVED"
	TypeLayoutSectionRemoved Type = "DASH/EVT.LAYOUT.SECTION_REMOVED"
	TypeSectionHeaderChanged Type = "DASH/EVT.LAYOUT.SECTION_HEADER_CHANGED"
	TypeSectionItemsAdded    Type = "DASH/EVT.LAYOUT.ITEMS_ADDED"
	TypeSectionItemMoved     Type = "DASH/EVT.LAYOUT.ITEM_MOVED"
	TypeSectionItemRemoved   Type = "DASH/EVT.LAYOUT.ITEM_REMOVED"
	TypeLayoutChangesUndone  Type = "DASH/EVT.LAYOUT.UNDONE"

	TypeDateFilterSelectionChanged      Type = "DASH/EVT.FILTERS.DATE.SELECTION_CHANGED"
	TypeAttributeFilterAdded            Type = "DASH/EVT.FILTERS.ATTRIBUTE.ADDED"
	TypeAttributeFilterRemoved          Type = "DASH/EVT.FILTERS.ATTRIBUTE.REMOVED"
	TypeAttributeFilterMoved            Type = "DASH/EVT.FILTERS.ATTRIBUTE.MOVED"
	TypeAttributeFilterSelectionChanged Type = "DASH/EVT.FILTERS.ATTRIBUTE.SELECTION_CHANGED"
	TypeFilterContextChanged            Type = "DASH/EVT.FILTERS.CONTEXT_CHANGED"

	TypeWidgetHeaderChanged         Type = "DASH/EVT.WIDGET.HEADER_CHANGED"
	TypeWidgetFilterSettingsChanged Type = "DASH/EVT.WIDGET.FILTER_SETTINGS_CHANGED"
	TypeKpiMeasureChanged           Type = "DASH/EVT.WIDGET.KPI.MEASURE_CHANGED"
	TypeKpiComparisonChanged        Type = "DASH/EVT.WIDGET.KPI.COMPARISON_CHANGED"

	TypeAlertCreated  Type = "DASH/EVT.ALERT.CREATED"
	TypeAlertUpdated  Type = "DASH/EVT.ALERT.UPDATED"
	TypeAlertsRemoved Type = "DASH/EVT.ALERT.REMOVED"

	TypeSummaryStarted   Type = "DASH/EVT.SUMMARY.STARTED"
	TypeSummaryCompleted Type = "DASH/EVT.SUMMARY.COMPLETED"
	TypeSummaryFailed    Type = "DASH/EVT.SUMMARY.FAILED"
)

// FailReason distinguishes recoverable failures. USER_ERROR means the
// command payload was invalid against current state and can be retried with
// corrected input; INTERNAL covers backend collaboration failures.
type FailReason string

const (
	ReasonUserError FailReason = "USER_ERROR"
	ReasonInternal  FailReason = "INTERNAL"
)

// Event is an append-only fact record. Once emitted it is never mutated;
// payloads carry clones or value copies of model data.
type Event struct {
	Type          Type        `json:"type"`
	CorrelationID string      `json:"correlationId,omitempty"`
	Timestamp     time.Time   `json:"timestamp"`
	Payload       interface{} `json:"payload,omitempty"`
}

// Payload types. One struct per event type that carries data.

type CommandStarted struct {
	CommandType string `json:"commandType"`
}

type CommandFailed struct {
	CommandType string     `json:"commandType"`
	Reason      FailReason `json:"reason"`
	Message     string     `json:"message"`
}

type DashboardInitialized struct {
	Ref   model.ObjRef `json:"ref"`
	Title string       `json:"title"`
}

type DashboardSaved struct {
	Ref     model.ObjRef `json:"ref"`
	Version int          `json:"version"`
}

type DashboardRenamed struct {
	Title string `json:"title"`
}

type DashboardReset struct {
	Ref model.ObjRef `json:"ref"`
}

type LayoutSectionAdded struct {
	Index   int           `json:"index"`
	Section model.Section `json:"section"`
}

type LayoutSectionMoved struct {
	FromIndex int `json:"fromIndex"`
	ToIndex   int `json:"toIndex"`
}

type LayoutSectionRemoved struct {
	Index           int           `json:"index"`
	Section         model.Section `json:"section"`
	StashIdentifier string        `json:"stashIdentifier,omitempty"`
}

type SectionHeaderChanged struct {
	Index  int                 `json:"index"`
	Header model.SectionHeader `json:"header"`
}

type SectionItemsAdded struct {
	SectionIndex int          `json:"sectionIndex"`
	StartIndex   int          `json:"startIndex"`
	Items        []model.Item `json:"items"`
}

type SectionItemMoved struct {
	From model.Coordinate `json:"from"`
	To   model.Coordinate `json:"to"`
}

type SectionItemRemoved struct {
	SectionIndex    int        `json:"sectionIndex"`
	ItemIndex       int        `json:"itemIndex"`
	Item            model.Item `json:"item"`
	StashIdentifier string     `json:"stashIdentifier,omitempty"`
}

type LayoutChangesUndone struct {
	UndoneCommands []string `json:"undoneCommands"`
}

type DateFilterSelectionChanged struct {
	Filter model.DateFilter `json:"filter"`
}

type AttributeFilterAdded struct {
	Filter model.AttributeFilter `json:"filter"`
	Index  int                   `json:"index"`
}

type AttributeFilterRemoved struct {
	LocalIDs []string `json:"localIds"`
}

type AttributeFilterMoved struct {
	LocalID   string `json:"localId"`
	FromIndex int    `json:"fromIndex"`
	ToIndex   int    `json:"toIndex"`
}

type AttributeFilterSelectionChanged struct {
	Filter model.AttributeFilter `json:"filter"`
}

type FilterContextChanged struct {
	FilterCount int `json:"filterCount"`
}

type WidgetHeaderChanged struct {
	Ref   model.ObjRef `json:"ref"`
	Title string       `json:"title"`
}

type WidgetFilterSettingsChanged struct {
	Ref            model.ObjRef   `json:"ref"`
	IgnoredFilters []model.ObjRef `json:"ignoredFilters"`
	DateDataSet    model.ObjRef   `json:"dateDataSet"`
}

type KpiMeasureChanged struct {
	Ref     model.ObjRef `json:"ref"`
	Measure model.ObjRef `json:"measure"`
}

type KpiComparisonChanged struct {
	Ref                 model.ObjRef `json:"ref"`
	ComparisonType      string       `json:"comparisonType"`
	ComparisonDirection string       `json:"comparisonDirection"`
}

type AlertCreated struct {
	Alert model.Alert `json:"alert"`
}

type AlertUpdated struct {
	Alert model.Alert `json:"alert"`
}

type AlertsRemoved struct {
	Refs []model.ObjRef `json:"refs"`
}

type SummaryStarted struct {
	WorkflowID string `json:"workflowId"`
}

type SummaryCompleted struct {
	WorkflowID string `json:"workflowId"`
	SummaryID  string `json:"summaryId"`
}

type SummaryFailed struct {
	WorkflowID string `json:"workflowId,omitempty"`
	Message    string `json:"message"`
}
