package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"go-dash/internal/engine/bus"
	"go-dash/internal/engine/cmds"
	"go-dash/internal/engine/events"
	"go-dash/internal/engine/model"
	"go-dash/internal/engine/store"
)

func validateAlertCondition(cond model.AlertCondition) error {
	switch cond.Operator {
	case "gt", "lt", "gte", "lte":
		return nil
	default:
		return bus.UserErrorf("unknown alert operator %q", cond.Operator)
	}
}

func createAlert(deps Deps) bus.HandlerFunc {
	return func(ctx context.Context, tx *bus.Tx) error {
		cmd := tx.Command().(cmds.CreateAlert)
		dash, err := requireDashboard(tx)
		if err != nil {
			return err
		}
		if _, err := requireKpiWidget(tx, cmd.Widget); err != nil {
			return err
		}
		if err := validateAlertCondition(cmd.Condition); err != nil {
			return err
		}

		alert := model.Alert{
			Ref:       model.NewRef(uuid.NewString()),
			Widget:    cmd.Widget,
			Dashboard: dash.Ref,
			Condition: cmd.Condition,
			Created:   time.Now().UTC(),
		}
		tx.Commit(store.PutAlert{Alert: alert})
		tx.Emit(events.TypeAlertCreated, events.AlertCreated{Alert: alert})
		return nil
	}
}

func updateAlert(deps Deps) bus.HandlerFunc {
	return func(ctx context.Context, tx *bus.Tx) error {
		cmd := tx.Command().(cmds.UpdateAlert)
		if _, err := requireDashboard(tx); err != nil {
			return err
		}

		existing, ok := tx.View().AlertByRef(cmd.Ref)
		if !ok {
			return bus.UserErrorf("alert %s does not exist", cmd.Ref.Key())
		}
		if err := validateAlertCondition(cmd.Condition); err != nil {
			return err
		}

		updated := existing
		updated.Condition = cmd.Condition
		tx.Commit(store.PutAlert{Alert: updated})
		tx.Emit(events.TypeAlertUpdated, events.AlertUpdated{Alert: updated})
		return nil
	}
}

func removeAlerts(deps Deps) bus.HandlerFunc {
	return func(ctx context.Context, tx *bus.Tx) error {
		cmd := tx.Command().(cmds.RemoveAlerts)
		if _, err := requireDashboard(tx); err != nil {
			return err
		}
		if len(cmd.Refs) == 0 {
			return bus.UserErrorf("no alerts to remove")
		}
		for _, ref := range cmd.Refs {
			if _, ok := tx.View().AlertByRef(ref); !ok {
				return bus.UserErrorf("alert %s does not exist", ref.Key())
			}
		}

		tx.Commit(store.DeleteAlerts{Refs: cmd.Refs})
		tx.Emit(events.TypeAlertsRemoved, events.AlertsRemoved{Refs: cmd.Refs})
		return nil
	}
}
