package handlers

import (
	"context"
	"fmt"

	"go-dash/internal/engine/bus"
	"go-dash/internal/engine/cmds"
	"go-dash/internal/engine/events"
	"go-dash/internal/engine/model"
	"go-dash/internal/engine/store"
)

func requireWidget(tx *bus.Tx, ref model.ObjRef) (model.Widget, error) {
	w, ok := tx.View().WidgetByRef(ref)
	if !ok {
		return nil, bus.UserErrorf("widget %s does not exist", ref.Key())
	}
	return w, nil
}

func requireKpiWidget(tx *bus.Tx, ref model.ObjRef) (*model.KpiWidget, error) {
	w, err := requireWidget(tx, ref)
	if err != nil {
		return nil, err
	}
	kpi, ok := w.(*model.KpiWidget)
	if !ok {
		return nil, bus.UserErrorf("widget %s is a %s, not a KPI widget", ref.Key(), w.Type())
	}
	return kpi, nil
}

func changeWidgetHeader(deps Deps) bus.HandlerFunc {
	return func(ctx context.Context, tx *bus.Tx) error {
		cmd := tx.Command().(cmds.ChangeWidgetHeader)
		if _, err := requireDashboard(tx); err != nil {
			return err
		}
		if _, err := requireWidget(tx, cmd.Ref); err != nil {
			return err
		}

		tx.Commit(store.SetWidgetHeader{Ref: cmd.Ref, Title: cmd.Title})
		tx.Emit(events.TypeWidgetHeaderChanged, events.WidgetHeaderChanged{
			Ref:   cmd.Ref,
			Title: cmd.Title,
		})
		return nil
	}
}

func changeInsightWidgetFilterSettings(deps Deps) bus.HandlerFunc {
	return func(ctx context.Context, tx *bus.Tx) error {
		cmd := tx.Command().(cmds.ChangeInsightWidgetFilterSettings)
		if _, err := requireDashboard(tx); err != nil {
			return err
		}
		w, err := requireWidget(tx, cmd.Ref)
		if err != nil {
			return err
		}
		if _, ok := w.(*model.InsightWidget); !ok {
			return bus.UserErrorf("widget %s is a %s, not an insight widget", cmd.Ref.Key(), w.Type())
		}

		// Every ignored ref must name an existing display form; partial
		// matches mean the command references stale catalog objects.
		if len(cmd.IgnoredFilters) > 0 {
			forms, err := deps.Backend.GetAttributeDisplayForms(ctx, cmd.IgnoredFilters)
			if err != nil {
				return fmt.Errorf("validating ignored display forms: %w", err)
			}
			for _, ref := range cmd.IgnoredFilters {
				found := false
				for _, form := range forms {
					if model.RefsEqual(form.Ref, ref) {
						found = true
						break
					}
				}
				if !found {
					return bus.UserErrorf("display form %s does not exist", ref.Key())
				}
			}
		}

		tx.Commit(store.SetWidgetFilterSettings{
			Ref:            cmd.Ref,
			IgnoredFilters: cmd.IgnoredFilters,
			DateDataSet:    cmd.DateDataSet,
		})
		tx.Emit(events.TypeWidgetFilterSettingsChanged, events.WidgetFilterSettingsChanged{
			Ref:            cmd.Ref,
			IgnoredFilters: cmd.IgnoredFilters,
			DateDataSet:    cmd.DateDataSet,
		})
		return nil
	}
}

func changeKpiWidgetMeasure(deps Deps) bus.HandlerFunc {
	return func(ctx context.Context, tx *bus.Tx) error {
		cmd := tx.Command().(cmds.ChangeKpiWidgetMeasure)
		if _, err := requireDashboard(tx); err != nil {
			return err
		}
		if _, err := requireKpiWidget(tx, cmd.Ref); err != nil {
			return err
		}
		if cmd.Measure.IsEmpty() {
			return bus.UserErrorf("measure ref must not be empty")
		}

		tx.Commit(store.SetKpiMeasure{Ref: cmd.Ref, Measure: cmd.Measure})
		tx.Emit(events.TypeKpiMeasureChanged, events.KpiMeasureChanged{
			Ref:     cmd.Ref,
			Measure: cmd.Measure,
		})
		return nil
	}
}

func changeKpiWidgetComparison(deps Deps) bus.HandlerFunc {
	return func(ctx context.Context, tx *bus.Tx) error {
		cmd := tx.Command().(cmds.ChangeKpiWidgetComparison)
		if _, err := requireDashboard(tx); err != nil {
			return err
		}
		if _, err := requireKpiWidget(tx, cmd.Ref); err != nil {
			return err
		}

		tx.Commit(store.SetKpiComparison{
			Ref:                 cmd.Ref,
			ComparisonType:      cmd.ComparisonType,
			ComparisonDirection: cmd.ComparisonDirection,
		})
		tx.Emit(events.TypeKpiComparisonChanged, events.KpiComparisonChanged{
			Ref:                 cmd.Ref,
			ComparisonType:      cmd.ComparisonType,
			ComparisonDirection: cmd.ComparisonDirection,
		})
		return nil
	}
}
