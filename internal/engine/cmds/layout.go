package cmds

import "go-dash/internal/engine/model"

// AddLayoutSection inserts a new section. Index is relative: zero-based
// position, or -1 to append after the last section. Items may reference
// previously stashed items through UsedStashes; stashed items are spliced
// in front of the explicitly provided ones.
type AddLayoutSection struct {
	Meta
	Index       int                 `json:"index"`
	Header      model.SectionHeader `json:"header"`
	Items       []model.Item        `json:"items,omitempty"`
	UsedStashes []string            `json:"usedStashes,omitempty"`
}

func (AddLayoutSection) CommandType() Type { return TypeAddLayoutSection }

type MoveLayoutSection struct {
	Meta
	SectionIndex int `json:"sectionIndex"`
	ToIndex      int `json:"toIndex"`
}

func (MoveLayoutSection) CommandType() Type { return TypeMoveLayoutSection }

// RemoveLayoutSection removes a whole section. When StashIdentifier is set
// the section's items survive in the stash and can be resurrected by a
// later AddLayoutSection or AddSectionItems.
type RemoveLayoutSection struct {
	Meta
	SectionIndex    int    `json:"sectionIndex"`
	StashIdentifier string `json:"stashIdentifier,omitempty"`
}

func (RemoveLayoutSection) CommandType() Type { return TypeRemoveLayoutSection }

type ChangeSectionHeader struct {
	Meta
	SectionIndex int                 `json:"sectionIndex"`
	Header       model.SectionHeader `json:"header"`
}

func (ChangeSectionHeader) CommandType() Type { return TypeChangeSectionHeader }

// AddSectionItems inserts items into an existing section. ItemIndex is
// relative: zero-based position within the section, or -1 to append.
type AddSectionItems struct {
	Meta
	SectionIndex int          `json:"sectionIndex"`
	ItemIndex    int          `json:"itemIndex"`
	Items        []model.Item `json:"items,omitempty"`
	UsedStashes  []string     `json:"usedStashes,omitempty"`
}

func (AddSectionItems) CommandType() Type { return TypeAddSectionItems }

type MoveSectionItem struct {
	Meta
	SectionIndex   int `json:"sectionIndex"`
	ItemIndex      int `json:"itemIndex"`
	ToSectionIndex int `json:"toSectionIndex"`
	ToItemIndex    int `json:"toItemIndex"`
}

func (MoveSectionItem) CommandType() Type { return TypeMoveSectionItem }

// RemoveSectionItem removes one item. With Eager set, removing the only
// item of a section also removes the now-empty section in the same commit,
// so no observer ever sees a section with zero items.
type RemoveSectionItem struct {
	Meta
	SectionIndex    int    `json:"sectionIndex"`
	ItemIndex       int    `json:"itemIndex"`
	StashIdentifier string `json:"stashIdentifier,omitempty"`
	Eager           bool   `json:"eager,omitempty"`
}

func (RemoveSectionItem) CommandType() Type { return TypeRemoveSectionItem }

// EagerRemoveSectionItem builds a RemoveSectionItem preconfigured for eager
// removal. Prefer this constructor for any interactive removal path.
func EagerRemoveSectionItem(sectionIndex, itemIndex int, correlationID string) RemoveSectionItem {
	return RemoveSectionItem{
		Meta:         Meta{CorrelationID: correlationID},
		SectionIndex: sectionIndex,
		ItemIndex:    itemIndex,
		Eager:        true,
	}
}

// UndoLayoutChanges rolls back the most recent layout commits in LIFO
// order. Count defaults to 1 when zero.
type UndoLayoutChanges struct {
	Meta
	Count int `json:"count,omitempty"`
}

func (UndoLayoutChanges) CommandType() Type { return TypeUndoLayoutChanges }
