package handlers

import (
	"context"

	"go-dash/internal/engine/bus"
	"go-dash/internal/engine/cmds"
	"go-dash/internal/engine/events"
	"go-dash/internal/engine/model"
	"go-dash/internal/engine/store"
)

// resolveStashes splices previously stashed items in front of the explicit
// ones. Unknown stash identifiers are user errors; items are cloned so the
// stash snapshot stays untouched if a later validation step fails.
func resolveStashes(tx *bus.Tx, usedStashes []string, explicit []model.Item) ([]model.Item, error) {
	var items []model.Item
	for _, stash := range usedStashes {
		stashed, ok := tx.View().Stash(stash)
		if !ok {
			return nil, bus.UserErrorf("stash %s does not exist", stash)
		}
		for _, item := range stashed {
			items = append(items, item.Clone())
		}
	}
	return append(items, explicit...), nil
}

// validateNewItems rejects items whose widget would collide with a widget
// already placed in the layout, or with another widget in the same batch.
func validateNewItems(tx *bus.Tx, items []model.Item) error {
	seen := map[string]bool{}
	for _, item := range items {
		if item.Widget == nil {
			return bus.UserErrorf("layout item without a widget")
		}
		ref := item.Widget.Common().Ref
		if ref.IsEmpty() {
			return bus.UserErrorf("layout item widget has no ref")
		}
		if seen[ref.Key()] {
			return bus.UserErrorf("duplicate widget %s in item batch", ref.Key())
		}
		seen[ref.Key()] = true
		if _, exists := tx.View().WidgetByRef(ref); exists {
			return bus.UserErrorf("widget %s is already placed in the layout", ref.Key())
		}
	}
	return nil
}

func addLayoutSection(deps Deps) bus.HandlerFunc {
	return func(ctx context.Context, tx *bus.Tx) error {
		cmd := tx.Command().(cmds.AddLayoutSection)
		if _, err := requireDashboard(tx); err != nil {
			return err
		}

		count := tx.View().SectionCount()
		if cmd.Index != -1 && (cmd.Index < 0 || cmd.Index > count) {
			return bus.UserErrorf("section index %d out of range [0, %d]", cmd.Index, count)
		}

		items, err := resolveStashes(tx, cmd.UsedStashes, cmd.Items)
		if err != nil {
			return err
		}
		if err := validateNewItems(tx, items); err != nil {
			return err
		}

		section := model.Section{Header: cmd.Header, Items: items}
		tx.CommitUndoable(store.AddSection{
			Index:       cmd.Index,
			Section:     section,
			UsedStashes: cmd.UsedStashes,
		})

		index := cmd.Index
		if index == -1 {
			index = count
		}
		tx.Emit(events.TypeLayoutSectionAdded, events.LayoutSectionAdded{
			Index:   index,
			Section: section.Clone(),
		})
		return nil
	}
}

func moveLayoutSection(deps Deps) bus.HandlerFunc {
	return func(ctx context.Context, tx *bus.Tx) error {
		cmd := tx.Command().(cmds.MoveLayoutSection)
		if _, err := requireDashboard(tx); err != nil {
			return err
		}

		count := tx.View().SectionCount()
		if cmd.SectionIndex < 0 || cmd.SectionIndex >= count {
			return bus.UserErrorf("section index %d out of range [0, %d)", cmd.SectionIndex, count)
		}
		if cmd.ToIndex != -1 && (cmd.ToIndex < 0 || cmd.ToIndex >= count) {
			return bus.UserErrorf("target index %d out of range [0, %d)", cmd.ToIndex, count)
		}

		tx.CommitUndoable(store.MoveSection{
			FromIndex: cmd.SectionIndex,
			ToIndex:   cmd.ToIndex,
		})

		toIndex := cmd.ToIndex
		if toIndex == -1 {
			toIndex = count - 1
		}
		tx.Emit(events.TypeLayoutSectionMoved, events.LayoutSectionMoved{
			FromIndex: cmd.SectionIndex,
			ToIndex:   toIndex,
		})
		return nil
	}
}

func removeLayoutSection(deps Deps) bus.HandlerFunc {
	return func(ctx context.Context, tx *bus.Tx) error {
		cmd := tx.Command().(cmds.RemoveLayoutSection)
		if _, err := requireDashboard(tx); err != nil {
			return err
		}

		section, ok := tx.View().Section(cmd.SectionIndex)
		if !ok {
			return bus.UserErrorf("section index %d out of range", cmd.SectionIndex)
		}

		tx.CommitUndoable(store.RemoveSection{
			Index:           cmd.SectionIndex,
			StashIdentifier: cmd.StashIdentifier,
		})
		tx.Emit(events.TypeLayoutSectionRemoved, events.LayoutSectionRemoved{
			Index:           cmd.SectionIndex,
			Section:         section.Clone(),
			StashIdentifier: cmd.StashIdentifier,
		})
		return nil
	}
}

func changeSectionHeader(deps Deps) bus.HandlerFunc {
	return func(ctx context.Context, tx *bus.Tx) error {
		cmd := tx.Command().(cmds.ChangeSectionHeader)
		if _, err := requireDashboard(tx); err != nil {
			return err
		}
		if _, ok := tx.View().Section(cmd.SectionIndex); !ok {
			return bus.UserErrorf("section index %d out of range", cmd.SectionIndex)
		}

		tx.CommitUndoable(store.SetSectionHeader{
			Index:  cmd.SectionIndex,
			Header: cmd.Header,
		})
		tx.Emit(events.TypeSectionHeaderChanged, events.SectionHeaderChanged{
			Index:  cmd.SectionIndex,
			Header: cmd.Header,
		})
		return nil
	}
}

func addSectionItems(deps Deps) bus.HandlerFunc {
	return func(ctx context.Context, tx *bus.Tx) error {
		cmd := tx.Command().(cmds.AddSectionItems)
		if _, err := requireDashboard(tx); err != nil {
			return err
		}

		section, ok := tx.View().Section(cmd.SectionIndex)
		if !ok {
			return bus.UserErrorf("section index %d out of range", cmd.SectionIndex)
		}
		if cmd.ItemIndex != -1 && (cmd.ItemIndex < 0 || cmd.ItemIndex > len(section.Items)) {
			return bus.UserErrorf("item index %d out of range [0, %d]", cmd.ItemIndex, len(section.Items))
		}

		items, err := resolveStashes(tx, cmd.UsedStashes, cmd.Items)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return bus.UserErrorf("no items to add")
		}
		if err := validateNewItems(tx, items); err != nil {
			return err
		}

		tx.CommitUndoable(store.AddItems{
			SectionIndex: cmd.SectionIndex,
			ItemIndex:    cmd.ItemIndex,
			Items:        items,
			UsedStashes:  cmd.UsedStashes,
		})

		start := cmd.ItemIndex
		if start == -1 {
			start = len(section.Items)
		}
		tx.Emit(events.TypeSectionItemsAdded, events.SectionItemsAdded{
			SectionIndex: cmd.SectionIndex,
			StartIndex:   start,
			Items:        items,
		})
		return nil
	}
}

func moveSectionItem(deps Deps) bus.HandlerFunc {
	return func(ctx context.Context, tx *bus.Tx) error {
		cmd := tx.Command().(cmds.MoveSectionItem)
		if _, err := requireDashboard(tx); err != nil {
			return err
		}

		from, ok := tx.View().Section(cmd.SectionIndex)
		if !ok {
			return bus.UserErrorf("section index %d out of range", cmd.SectionIndex)
		}
		if cmd.ItemIndex < 0 || cmd.ItemIndex >= len(from.Items) {
			return bus.UserErrorf("item index %d out of range [0, %d)", cmd.ItemIndex, len(from.Items))
		}
		to, ok := tx.View().Section(cmd.ToSectionIndex)
		if !ok {
			return bus.UserErrorf("target section %d out of range", cmd.ToSectionIndex)
		}

		// The source item leaves its slot before the insert, so a same
		// section move has one slot less to aim at.
		targetLen := len(to.Items)
		if cmd.ToSectionIndex == cmd.SectionIndex {
			targetLen--
		}
		if cmd.ToItemIndex != -1 && (cmd.ToItemIndex < 0 || cmd.ToItemIndex > targetLen) {
			return bus.UserErrorf("target item index %d out of range [0, %d]", cmd.ToItemIndex, targetLen)
		}

		fromCoord := model.Coordinate{SectionIndex: cmd.SectionIndex, ItemIndex: cmd.ItemIndex}
		toCoord := model.Coordinate{SectionIndex: cmd.ToSectionIndex, ItemIndex: cmd.ToItemIndex}
		tx.CommitUndoable(store.MoveItem{From: fromCoord, To: toCoord})

		if toCoord.ItemIndex == -1 {
			toCoord.ItemIndex = targetLen
		}
		tx.Emit(events.TypeSectionItemMoved, events.SectionItemMoved{
			From: fromCoord,
			To:   toCoord,
		})
		return nil
	}
}

func removeSectionItem(deps Deps) bus.HandlerFunc {
	return func(ctx context.Context, tx *bus.Tx) error {
		cmd := tx.Command().(cmds.RemoveSectionItem)
		if _, err := requireDashboard(tx); err != nil {
			return err
		}

		section, ok := tx.View().Section(cmd.SectionIndex)
		if !ok {
			return bus.UserErrorf("section index %d out of range", cmd.SectionIndex)
		}
		if cmd.ItemIndex < 0 || cmd.ItemIndex >= len(section.Items) {
			return bus.UserErrorf("item index %d out of range [0, %d)", cmd.ItemIndex, len(section.Items))
		}
		removed := section.Items[cmd.ItemIndex].Clone()

		// Eager removal of the last item takes the emptied section with it
		// in the same commit; observers never see a section with no items.
		eager := cmd.Eager && len(section.Items) == 1
		if eager {
			tx.CommitUndoable(
				store.RemoveItem{
					SectionIndex:    cmd.SectionIndex,
					ItemIndex:       cmd.ItemIndex,
					StashIdentifier: cmd.StashIdentifier,
				},
				store.RemoveSection{Index: cmd.SectionIndex},
			)
		} else {
			tx.CommitUndoable(store.RemoveItem{
				SectionIndex:    cmd.SectionIndex,
				ItemIndex:       cmd.ItemIndex,
				StashIdentifier: cmd.StashIdentifier,
			})
		}

		tx.Emit(events.TypeSectionItemRemoved, events.SectionItemRemoved{
			SectionIndex:    cmd.SectionIndex,
			ItemIndex:       cmd.ItemIndex,
			Item:            removed,
			StashIdentifier: cmd.StashIdentifier,
		})
		if eager {
			tx.Emit(events.TypeLayoutSectionRemoved, events.LayoutSectionRemoved{
				Index:   cmd.SectionIndex,
				Section: model.Section{Header: section.Header},
			})
		}
		return nil
	}
}

func undoLayoutChanges(deps Deps) bus.HandlerFunc {
	return func(ctx context.Context, tx *bus.Tx) error {
		cmd := tx.Command().(cmds.UndoLayoutChanges)
		if _, err := requireDashboard(tx); err != nil {
			return err
		}

		undone := tx.Undo(cmd.Count)
		if len(undone) == 0 {
			return bus.UserErrorf("nothing to undo")
		}

		commands := make([]string, 0, len(undone))
		for _, entry := range undone {
			commands = append(commands, entry.CommandType)
		}
		tx.Emit(events.TypeLayoutChangesUndone, events.LayoutChangesUndone{
			UndoneCommands: commands,
		})
		return nil
	}
}
