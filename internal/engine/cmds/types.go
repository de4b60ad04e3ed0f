// Package cmds defines the typed intent records accepted by the dispatcher.
// A command describes what the caller wants to happen; whether it happens,
// and what exactly changed, is only observable through the event stream.
package cmds

// Type discriminates commands. Exactly one handler is registered per type.
type Type string

const (
	TypeInitializeDashboard Type = "DASH/CMD.INITIALIZE"
	TypeSaveDashboard       Type = "DASH/CMD.SAVE"
	TypeRenameDashboard     Type = "DASH/CMD.RENAME"
	TypeResetDashboard      Type = "DASH/CMD.RESET"

	TypeAddLayoutSection    Type = "DASH/CMD.LAYOUT.ADD_SECTION"
	TypeMoveLayoutSection   Type = "DASH/CMD.LAYOUT.MOVE_SECTION"
	TypeRemoveLayoutSection Type = "DASH/CMD.LAYOUT.REMOVE_SECTION"
	TypeChangeSectionHeader Type = "DASH/CMD.LAYOUT.CHANGE_SECTION_HEADER"
	TypeAddSectionItems     Type = "DASH/CMD.LAYOUT.ADD_ITEMS"
	TypeMoveSectionItem     Type = "DASH/CMD.LAYOUT.MOVE_ITEM"
	TypeRemoveSectionItem   Type = "DASH/CMD.LAYOUT.REMOVE_ITEM"
	TypeUndoLayoutChanges   Type = "DASH/CMD.LAYOUT.UNDO"

	TypeChangeDateFilterSelection      Type = "DASH/CMD.FILTERS.DATE.CHANGE_SELECTION"
	TypeAddAttributeFilter             Type = "DASH/CMD.FILTERS.ATTRIBUTE.ADD"
	TypeRemoveAttributeFilters         Type = "DASH/CMD.FILTERS.ATTRIBUTE.REMOVE"
	TypeMoveAttributeFilter            Type = "DASH/CMD.FILTERS.ATTRIBUTE.MOVE"
	TypeChangeAttributeFilterSelection Type = "DASH/CMD.FILTERS.ATTRIBUTE.CHANGE_SELECTION"
	TypeChangeFilterContextSelection   Type = "DASH/CMD.FILTERS.CHANGE_SELECTION"

	TypeChangeWidgetHeader               Type = "DASH/CMD.WIDGET.CHANGE_HEADER"
	TypeChangeInsightWidgetFilterConfig  Type = "DASH/CMD.WIDGET.INSIGHT.CHANGE_FILTER_SETTINGS"
	TypeChangeKpiWidgetMeasure           Type = "DASH/CMD.WIDGET.KPI.CHANGE_MEASURE"
	TypeChangeKpiWidgetComparison        Type = "DASH/CMD.WIDGET.KPI.CHANGE_COMPARISON"

	TypeCreateAlert  Type = "DASH/CMD.ALERT.CREATE"
	TypeUpdateAlert  Type = "DASH/CMD.ALERT.UPDATE"
	TypeRemoveAlerts Type = "DASH/CMD.ALERT.REMOVE"

	TypeGenerateSummary Type = "DASH/CMD.SUMMARY.GENERATE"
)

// Command is implemented by every intent record. Commands are immutable
// once dispatched.
type Command interface {
	CommandType() Type
	Correlation() string
}

// Meta is embedded by every command. CorrelationID, when set, is copied to
// every event emitted while the command is processed so callers can pair
// requests with outcomes.
type Meta struct {
	CorrelationID string `json:"correlationId,omitempty"`
}

func (m Meta) Correlation() string { return m.CorrelationID }
