package dashboard

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"go-dash/internal/engine/backend"
	"go-dash/internal/engine/cmds"
	"go-dash/internal/engine/model"
)

// CommandEnvelope is the wire shape of a dispatched command: the command
// type plus its type-specific payload.
type CommandEnvelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// filterContextPayload is the wire shape of ChangeFilterContextSelection,
// whose filter list cannot be decoded polymorphically from plain JSON.
type filterContextPayload struct {
	CorrelationID string                 `json:"correlationId,omitempty"`
	Filters       []backend.StoredFilter `json:"filters"`
}

// DecodeCommand turns an envelope into a typed command. Unknown command
// types and malformed payloads are client errors. Every decoded command
// gets a correlation id so callers can always pair the outcome event.
func DecodeCommand(envelope CommandEnvelope) (cmds.Command, error) {
	var cmd cmds.Command
	var err error

	switch cmds.Type(envelope.Type) {
	case cmds.TypeInitializeDashboard:
		cmd, err = decodeInto[cmds.InitializeDashboard](envelope.Payload)
	case cmds.TypeSaveDashboard:
		cmd, err = decodeInto[cmds.SaveDashboard](envelope.Payload)
	case cmds.TypeRenameDashboard:
		cmd, err = decodeInto[cmds.RenameDashboard](envelope.Payload)
	case cmds.TypeResetDashboard:
		cmd, err = decodeInto[cmds.ResetDashboard](envelope.Payload)

	case cmds.TypeAddLayoutSection:
		cmd, err = decodeInto[cmds.AddLayoutSection](envelope.Payload)
	case cmds.TypeMoveLayoutSection:
		cmd, err = decodeInto[cmds.MoveLayoutSection](envelope.Payload)
	case cmds.TypeRemoveLayoutSection:
		cmd, err = decodeInto[cmds.RemoveLayoutSection](envelope.Payload)
	case cmds.TypeChangeSectionHeader:
		cmd, err = decodeInto[cmds.ChangeSectionHeader](envelope.Payload)
	case cmds.TypeAddSectionItems:
		cmd, err = decodeInto[cmds.AddSectionItems](envelope.Payload)
	case cmds.TypeMoveSectionItem:
		cmd, err = decodeInto[cmds.MoveSectionItem](envelope.Payload)
	case cmds.TypeRemoveSectionItem:
		cmd, err = decodeInto[cmds.RemoveSectionItem](envelope.Payload)
	case cmds.TypeUndoLayoutChanges:
		cmd, err = decodeInto[cmds.UndoLayoutChanges](envelope.Payload)

	case cmds.TypeChangeDateFilterSelection:
		cmd, err = decodeInto[cmds.ChangeDateFilterSelection](envelope.Payload)
	case cmds.TypeAddAttributeFilter:
		cmd, err = decodeInto[cmds.AddAttributeFilter](envelope.Payload)
	case cmds.TypeRemoveAttributeFilters:
		cmd, err = decodeInto[cmds.RemoveAttributeFilters](envelope.Payload)
	case cmds.TypeMoveAttributeFilter:
		cmd, err = decodeInto[cmds.MoveAttributeFilter](envelope.Payload)
	case cmds.TypeChangeAttributeFilterSelection:
		cmd, err = decodeInto[cmds.ChangeAttributeFilterSelection](envelope.Payload)
	case cmds.TypeChangeFilterContextSelection:
		cmd, err = decodeFilterContextSelection(envelope.Payload)

	case cmds.TypeChangeWidgetHeader:
		cmd, err = decodeInto[cmds.ChangeWidgetHeader](envelope.Payload)
	case cmds.TypeChangeInsightWidgetFilterConfig:
		cmd, err = decodeInto[cmds.ChangeInsightWidgetFilterSettings](envelope.Payload)
	case cmds.TypeChangeKpiWidgetMeasure:
		cmd, err = decodeInto[cmds.ChangeKpiWidgetMeasure](envelope.Payload)
	case cmds.TypeChangeKpiWidgetComparison:
		cmd, err = decodeInto[cmds.ChangeKpiWidgetComparison](envelope.Payload)

	case cmds.TypeCreateAlert:
		cmd, err = decodeInto[cmds.CreateAlert](envelope.Payload)
	case cmds.TypeUpdateAlert:
		cmd, err = decodeInto[cmds.UpdateAlert](envelope.Payload)
	case cmds.TypeRemoveAlerts:
		cmd, err = decodeInto[cmds.RemoveAlerts](envelope.Payload)

	case cmds.TypeGenerateSummary:
		cmd, err = decodeInto[cmds.GenerateSummary](envelope.Payload)

	default:
		return nil, fmt.Errorf("unknown command type %q", envelope.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("malformed %s payload: %w", envelope.Type, err)
	}
	return withCorrelation(cmd), nil
}

func decodeInto[T cmds.Command](payload json.RawMessage) (cmds.Command, error) {
	var cmd T
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &cmd); err != nil {
			return nil, err
		}
	}
	return cmd, nil
}

func decodeFilterContextSelection(payload json.RawMessage) (cmds.Command, error) {
	var wire filterContextPayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &wire); err != nil {
			return nil, err
		}
	}

	filters := make([]model.Filter, 0, len(wire.Filters))
	for _, sf := range wire.Filters {
		f, err := backend.FilterFromStored(sf)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return cmds.ChangeFilterContextSelection{
		Meta:    cmds.Meta{CorrelationID: wire.CorrelationID},
		Filters: filters,
	}, nil
}

// withCorrelation stamps a fresh correlation id onto commands dispatched
// without one. Commands are value types, so the stamped copy must be
// rebuilt per concrete type.
func withCorrelation(cmd cmds.Command) cmds.Command {
	if cmd.Correlation() != "" {
		return cmd
	}
	id := uuid.NewString()

	switch typed := cmd.(type) {
	case cmds.InitializeDashboard:
		typed.CorrelationID = id
		return typed
	case cmds.SaveDashboard:
		typed.CorrelationID = id
		return typed
	case cmds.RenameDashboard:
		typed.CorrelationID = id
		return typed
	case cmds.ResetDashboard:
		typed.CorrelationID = id
		return typed
	case cmds.AddLayoutSection:
		typed.CorrelationID = id
		return typed
	case cmds.MoveLayoutSection:
		typed.CorrelationID = id
		return typed
	case cmds.RemoveLayoutSection:
		typed.CorrelationID = id
		return typed
	case cmds.ChangeSectionHeader:
		typed.CorrelationID = id
		return typed
	case cmds.AddSectionItems:
		typed.CorrelationID = id
		return typed
	case cmds.MoveSectionItem:
		typed.CorrelationID = id
		return typed
	case cmds.RemoveSectionItem:
		typed.CorrelationID = id
		return typed
	case cmds.UndoLayoutChanges:
		typed.CorrelationID = id
		return typed
	case cmds.ChangeDateFilterSelection:
		typed.CorrelationID = id
		return typed
	case cmds.AddAttributeFilter:
		typed.CorrelationID = id
		return typed
	case cmds.RemoveAttributeFilters:
		typed.CorrelationID = id
		return typed
	case cmds.MoveAttributeFilter:
		typed.CorrelationID = id
		return typed
	case cmds.ChangeAttributeFilterSelection:
		typed.CorrelationID = id
		return typed
	case cmds.ChangeFilterContextSelection:
		typed.CorrelationID = id
		return typed
	case cmds.ChangeWidgetHeader:
		typed.CorrelationID = id
		return typed
	case cmds.ChangeInsightWidgetFilterSettings:
		typed.CorrelationID = id
		return typed
	case cmds.ChangeKpiWidgetMeasure:
		typed.CorrelationID = id
		return typed
	case cmds.ChangeKpiWidgetComparison:
		typed.CorrelationID = id
		return typed
	case cmds.CreateAlert:
		typed.CorrelationID = id
		return typed
	case cmds.UpdateAlert:
		typed.CorrelationID = id
		return typed
	case cmds.RemoveAlerts:
		typed.CorrelationID = id
		return typed
	case cmds.GenerateSummary:
		typed.CorrelationID = id
		return typed
	default:
		return cmd
	}
}
