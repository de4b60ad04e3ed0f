package handlers

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"go-dash/internal/engine/bus"
	"go-dash/internal/engine/cmds"
	"go-dash/internal/engine/events"
	"go-dash/internal/engine/model"
	"go-dash/internal/engine/store"
)

func changeDateFilterSelection(deps Deps) bus.HandlerFunc {
	return func(ctx context.Context, tx *bus.Tx) error {
		cmd := tx.Command().(cmds.ChangeDateFilterSelection)
		if _, err := requireDashboard(tx); err != nil {
			return err
		}
		if cmd.Filter.DataSet.IsEmpty() {
			return bus.UserErrorf("date filter must reference a date dataset")
		}
		switch cmd.Filter.Type {
		case model.DateFilterRelative, model.DateFilterAbsolute:
		default:
			return bus.UserErrorf("unknown date filter type %q", cmd.Filter.Type)
		}

		tx.Commit(store.UpsertDateFilter{Filter: cmd.Filter})
		tx.Emit(events.TypeDateFilterSelectionChanged, events.DateFilterSelectionChanged{
			Filter: cmd.Filter,
		})
		return nil
	}
}

// findAttributeFilter scans the current filter context for the filter with
// the given local id.
func findAttributeFilter(tx *bus.Tx, localID string) (*model.AttributeFilter, int, bool) {
	for i, f := range tx.View().Filters() {
		if af, ok := f.(*model.AttributeFilter); ok && af.LocalID == localID {
			return af, i, true
		}
	}
	return nil, -1, false
}

func addAttributeFilter(deps Deps) bus.HandlerFunc {
	return func(ctx context.Context, tx *bus.Tx) error {
		cmd := tx.Command().(cmds.AddAttributeFilter)
		if _, err := requireDashboard(tx); err != nil {
			return err
		}

		filter := cmd.Filter
		if filter.DisplayForm.IsEmpty() {
			return bus.UserErrorf("attribute filter must reference a display form")
		}
		if filter.LocalID == "" {
			filter.LocalID = uuid.NewString()
		}
		if _, _, exists := findAttributeFilter(tx, filter.LocalID); exists {
			return bus.UserErrorf("attribute filter %s already exists", filter.LocalID)
		}
		for _, f := range tx.View().Filters() {
			if af, ok := f.(*model.AttributeFilter); ok && model.RefsEqual(af.DisplayForm, filter.DisplayForm) {
				return bus.UserErrorf("a filter for display form %s already exists", filter.DisplayForm.Key())
			}
		}

		forms, err := deps.Backend.GetAttributeDisplayForms(ctx, []model.ObjRef{filter.DisplayForm})
		if err != nil {
			return fmt.Errorf("validating display form: %w", err)
		}
		if len(forms) == 0 {
			return bus.UserErrorf("display form %s does not exist", filter.DisplayForm.Key())
		}

		filterCount := len(tx.View().Filters())
		if cmd.Index != -1 && (cmd.Index < 0 || cmd.Index > filterCount) {
			return bus.UserErrorf("filter index %d out of range [0, %d]", cmd.Index, filterCount)
		}

		tx.Commit(store.AddAttributeFilter{Filter: filter, Index: cmd.Index})

		index := cmd.Index
		if index == -1 {
			index = filterCount
		}
		tx.Emit(events.TypeAttributeFilterAdded, events.AttributeFilterAdded{
			Filter: filter,
			Index:  index,
		})
		return nil
	}
}

func removeAttributeFilters(deps Deps) bus.HandlerFunc {
	return func(ctx context.Context, tx *bus.Tx) error {
		cmd := tx.Command().(cmds.RemoveAttributeFilters)
		if _, err := requireDashboard(tx); err != nil {
			return err
		}
		if len(cmd.LocalIDs) == 0 {
			return bus.UserErrorf("no filters to remove")
		}
		for _, localID := range cmd.LocalIDs {
			if _, _, ok := findAttributeFilter(tx, localID); !ok {
				return bus.UserErrorf("attribute filter %s does not exist", localID)
			}
		}

		tx.Commit(store.RemoveAttributeFilters{LocalIDs: cmd.LocalIDs})
		tx.Emit(events.TypeAttributeFilterRemoved, events.AttributeFilterRemoved{
			LocalIDs: cmd.LocalIDs,
		})
		return nil
	}
}

func moveAttributeFilter(deps Deps) bus.HandlerFunc {
	return func(ctx context.Context, tx *bus.Tx) error {
		cmd := tx.Command().(cmds.MoveAttributeFilter)
		if _, err := requireDashboard(tx); err != nil {
			return err
		}

		_, fromIndex, ok := findAttributeFilter(tx, cmd.LocalID)
		if !ok {
			return bus.UserErrorf("attribute filter %s does not exist", cmd.LocalID)
		}

		filterCount := len(tx.View().Filters())
		if cmd.ToIndex != -1 && (cmd.ToIndex < 0 || cmd.ToIndex >= filterCount) {
			return bus.UserErrorf("target index %d out of range [0, %d)", cmd.ToIndex, filterCount)
		}

		tx.Commit(store.MoveAttributeFilter{LocalID: cmd.LocalID, ToIndex: cmd.ToIndex})

		toIndex := cmd.ToIndex
		if toIndex == -1 {
			toIndex = filterCount - 1
		}
		tx.Emit(events.TypeAttributeFilterMoved, events.AttributeFilterMoved{
			LocalID:   cmd.LocalID,
			FromIndex: fromIndex,
			ToIndex:   toIndex,
		})
		return nil
	}
}

func changeAttributeFilterSelection(deps Deps) bus.HandlerFunc {
	return func(ctx context.Context, tx *bus.Tx) error {
		cmd := tx.Command().(cmds.ChangeAttributeFilterSelection)
		if _, err := requireDashboard(tx); err != nil {
			return err
		}

		existing, _, ok := findAttributeFilter(tx, cmd.LocalID)
		if !ok {
			return bus.UserErrorf("attribute filter %s does not exist", cmd.LocalID)
		}

		tx.Commit(store.SetAttributeFilterSelection{
			LocalID:  cmd.LocalID,
			Elements: cmd.Elements,
			Negative: cmd.Negative,
		})

		updated := *existing
		updated.Elements = cmd.Elements
		updated.Negative = cmd.Negative
		tx.Emit(events.TypeAttributeFilterSelectionChanged, events.AttributeFilterSelectionChanged{
			Filter: updated,
		})
		return nil
	}
}

func changeFilterContextSelection(deps Deps) bus.HandlerFunc {
	return func(ctx context.Context, tx *bus.Tx) error {
		cmd := tx.Command().(cmds.ChangeFilterContextSelection)
		if _, err := requireDashboard(tx); err != nil {
			return err
		}

		filters := model.CloneFilters(cmd.Filters)
		tx.Commit(store.SetFilters{Filters: filters})
		tx.Emit(events.TypeFilterContextChanged, events.FilterContextChanged{
			FilterCount: len(filters),
		})
		return nil
	}
}
