package store

import (
	"testing"

	"go-dash/internal/engine/model"
)

func kpiItem(id string) model.Item {
	return model.Item{
		Widget: &model.KpiWidget{
			WidgetBase: model.WidgetBase{Ref: model.NewRef(id), Title: id},
			Measure:    model.NewRef("measure-" + id),
		},
		Size: model.ItemSize{GridWidth: 2, GridHeight: 2},
	}
}

func sectionWith(title string, items ...model.Item) model.Section {
	return model.Section{
		Header: model.SectionHeader{Title: title},
		Items:  items,
	}
}

func newLoadedStore() *Store {
	s := New()
	s.Commit(SetDashboard{Dashboard: model.NewDashboard(model.NewRef("dash-1"), "Dashboard")})
	return s
}

func sectionCount(t *testing.T, s *Store) int {
	t.Helper()
	state, _ := s.Snapshot()
	if state.Dashboard == nil {
		t.Fatal("no dashboard loaded")
	}
	return len(state.Dashboard.Layout.Sections)
}

func TestCommitBatchIsOneRevision(t *testing.T) {
	s := newLoadedStore()
	_, before := s.Snapshot()

	s.Commit(
		AddSection{Index: -1, Section: sectionWith("a", kpiItem("w1"))},
		AddSection{Index: -1, Section: sectionWith("b", kpiItem("w2"))},
	)

	_, after := s.Snapshot()
	if after != before+1 {
		t.Errorf("revision = %d, want %d", after, before+1)
	}
	if got := sectionCount(t, s); got != 2 {
		t.Errorf("sections = %d, want 2", got)
	}
}

func TestEmptyCommitIsNoOp(t *testing.T) {
	s := newLoadedStore()
	_, before := s.Snapshot()
	s.Commit()
	if _, after := s.Snapshot(); after != before {
		t.Errorf("revision moved on empty commit: %d -> %d", before, after)
	}
}

func TestUndoLIFO(t *testing.T) {
	s := newLoadedStore()
	s.CommitUndoable("first", "c1", AddSection{Index: -1, Section: sectionWith("a")})
	s.CommitUndoable("second", "c2", AddSection{Index: -1, Section: sectionWith("b")})

	if depth := s.UndoDepth(); depth != 2 {
		t.Fatalf("UndoDepth() = %d, want 2", depth)
	}

	undone := s.Undo(1)
	if len(undone) != 1 || undone[0].CommandType != "second" {
		t.Fatalf("Undo(1) = %+v, want the most recent entry", undone)
	}
	state, _ := s.Snapshot()
	if len(state.Dashboard.Layout.Sections) != 1 || state.Dashboard.Layout.Sections[0].Header.Title != "a" {
		t.Errorf("unexpected sections after undo: %+v", state.Dashboard.Layout.Sections)
	}

	undone = s.Undo(1)
	if len(undone) != 1 || undone[0].CommandType != "first" {
		t.Fatalf("second Undo(1) = %+v, want the first entry", undone)
	}
	if got := sectionCount(t, s); got != 0 {
		t.Errorf("sections = %d, want 0", got)
	}

	if got := s.Undo(1); got != nil {
		t.Errorf("Undo on empty ledger = %+v, want nil", got)
	}
}

func TestUndoCountClamped(t *testing.T) {
	s := newLoadedStore()
	s.CommitUndoable("a", "c1", AddSection{Index: -1, Section: sectionWith("a")})
	s.CommitUndoable("b", "c2", AddSection{Index: -1, Section: sectionWith("b")})

	undone := s.Undo(10)
	if len(undone) != 2 {
		t.Fatalf("Undo(10) undid %d entries, want 2", len(undone))
	}
	if undone[0].CommandType != "b" || undone[1].CommandType != "a" {
		t.Errorf("undo order = %q,%q, want most recent first", undone[0].CommandType, undone[1].CommandType)
	}
}

// Removing the last item of a section eagerly removes the section too, in
// one commit. A single undo must restore both the section and its item.
func TestEagerRemovalUndoneAtomically(t *testing.T) {
	s := newLoadedStore()
	s.CommitUndoable("add", "c1",
		AddSection{Index: -1, Section: sectionWith("only", kpiItem("w1"))})

	_, before := s.Snapshot()
	s.CommitUndoable("remove", "c2",
		RemoveItem{SectionIndex: 0, ItemIndex: 0},
		RemoveSection{Index: 0},
	)

	_, after := s.Snapshot()
	if after != before+1 {
		t.Errorf("eager removal took %d revisions, want 1", after-before)
	}
	if got := sectionCount(t, s); got != 0 {
		t.Fatalf("sections = %d, want 0", got)
	}

	s.Undo(1)
	state, _ := s.Snapshot()
	sections := state.Dashboard.Layout.Sections
	if len(sections) != 1 {
		t.Fatalf("sections after undo = %d, want 1", len(sections))
	}
	if sections[0].Header.Title != "only" || len(sections[0].Items) != 1 {
		t.Errorf("restored section = %+v, want header and item back", sections[0])
	}
	if ref := sections[0].Items[0].Widget.Common().Ref; ref.Identifier != "w1" {
		t.Errorf("restored widget ref = %q, want w1", ref.Identifier)
	}
}

func TestMoveSectionInverse(t *testing.T) {
	s := newLoadedStore()
	s.Commit(
		AddSection{Index: -1, Section: sectionWith("a")},
		AddSection{Index: -1, Section: sectionWith("b")},
		AddSection{Index: -1, Section: sectionWith("c")},
	)

	s.CommitUndoable("move", "c1", MoveSection{FromIndex: 0, ToIndex: 2})
	state, _ := s.Snapshot()
	if got := state.Dashboard.Layout.Sections[2].Header.Title; got != "a" {
		t.Fatalf("section 2 = %q, want a", got)
	}

	s.Undo(1)
	state, _ = s.Snapshot()
	titles := make([]string, 0, 3)
	for _, sec := range state.Dashboard.Layout.Sections {
		titles = append(titles, sec.Header.Title)
	}
	if titles[0] != "a" || titles[1] != "b" || titles[2] != "c" {
		t.Errorf("order after undo = %v, want [a b c]", titles)
	}
}

func TestMoveItemToEndInverse(t *testing.T) {
	tests := []struct {
		name string
		move MoveItem
	}{
		{
			name: "append within same section",
			move: MoveItem{
				From: model.Coordinate{SectionIndex: 0, ItemIndex: 0},
				To:   model.Coordinate{SectionIndex: 0, ItemIndex: -1},
			},
		},
		{
			name: "append into other section",
			move: MoveItem{
				From: model.Coordinate{SectionIndex: 0, ItemIndex: 0},
				To:   model.Coordinate{SectionIndex: 1, ItemIndex: -1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newLoadedStore()
			s.Commit(
				AddSection{Index: -1, Section: sectionWith("first", kpiItem("w1"), kpiItem("w2"))},
				AddSection{Index: -1, Section: sectionWith("second", kpiItem("w3"))},
			)

			s.CommitUndoable("move", "c1", tt.move)
			s.Undo(1)

			state, _ := s.Snapshot()
			first := state.Dashboard.Layout.Sections[0]
			second := state.Dashboard.Layout.Sections[1]
			if len(first.Items) != 2 || len(second.Items) != 1 {
				t.Fatalf("item counts after undo = %d/%d, want 2/1", len(first.Items), len(second.Items))
			}
			if ref := first.Items[0].Widget.Common().Ref; ref.Identifier != "w1" {
				t.Errorf("first item = %q, want w1 back at its slot", ref.Identifier)
			}
		})
	}
}

func TestSetDashboardResetsLedger(t *testing.T) {
	s := newLoadedStore()
	s.CommitUndoable("add", "c1", AddSection{Index: -1, Section: sectionWith("a")})
	if s.UndoDepth() != 1 {
		t.Fatalf("UndoDepth() = %d, want 1", s.UndoDepth())
	}

	s.Commit(SetDashboard{Dashboard: model.NewDashboard(model.NewRef("dash-2"), "Other")})
	if s.UndoDepth() != 0 {
		t.Errorf("UndoDepth() after SetDashboard = %d, want 0", s.UndoDepth())
	}
}

func TestRemoveItemStashes(t *testing.T) {
	s := newLoadedStore()
	s.Commit(AddSection{Index: -1, Section: sectionWith("a", kpiItem("w1"), kpiItem("w2"))})

	s.Commit(RemoveItem{SectionIndex: 0, ItemIndex: 0, StashIdentifier: "stash-1"})

	state, _ := s.Snapshot()
	items, ok := state.Stash["stash-1"]
	if !ok || len(items) != 1 {
		t.Fatalf("stash-1 = %+v, want one item", items)
	}
	if ref := items[0].Widget.Common().Ref; ref.Identifier != "w1" {
		t.Errorf("stashed widget = %q, want w1", ref.Identifier)
	}

	// Resurrecting through AddItems consumes the stash.
	s.Commit(AddItems{SectionIndex: 0, ItemIndex: -1, Items: items, UsedStashes: []string{"stash-1"}})
	state, _ = s.Snapshot()
	if _, ok := state.Stash["stash-1"]; ok {
		t.Error("stash survived resurrection")
	}
	if got := len(state.Dashboard.Layout.Sections[0].Items); got != 2 {
		t.Errorf("items = %d, want 2", got)
	}
}

func TestUndoStashingRemovalConsumesStash(t *testing.T) {
	s := newLoadedStore()
	s.Commit(AddSection{Index: -1, Section: sectionWith("a", kpiItem("w1"), kpiItem("w2"))})

	s.CommitUndoable("remove", "c1", RemoveItem{SectionIndex: 0, ItemIndex: 0, StashIdentifier: "stash-1"})
	s.Undo(1)

	state, _ := s.Snapshot()
	if got := len(state.Dashboard.Layout.Sections[0].Items); got != 2 {
		t.Fatalf("items = %d, want the removed item back", got)
	}
	// The item lives in the layout again; leaving it in the stash too
	// would let a later resurrection duplicate the widget.
	if _, ok := state.Stash["stash-1"]; ok {
		t.Error("stash survived the undo of its removal")
	}
}

func TestUndoStashingSectionRemovalConsumesStash(t *testing.T) {
	s := newLoadedStore()
	s.Commit(AddSection{Index: -1, Section: sectionWith("a", kpiItem("w1"))})

	s.CommitUndoable("remove", "c1", RemoveSection{Index: 0, StashIdentifier: "stash-1"})
	s.Undo(1)

	state, _ := s.Snapshot()
	if got := len(state.Dashboard.Layout.Sections); got != 1 {
		t.Fatalf("sections = %d, want the removed section back", got)
	}
	if _, ok := state.Stash["stash-1"]; ok {
		t.Error("stash survived the undo of its removal")
	}
}
