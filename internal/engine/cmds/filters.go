package cmds

import "go-dash/internal/engine/model"

// ChangeDateFilterSelection replaces the selection of the date filter bound
// to DataSet; if no date filter for that dimension exists yet, one is
// appended to the filter context.
type ChangeDateFilterSelection struct {
	Meta
	Filter model.DateFilter `json:"filter"`
}

func (ChangeDateFilterSelection) CommandType() Type { return TypeChangeDateFilterSelection }

// AddAttributeFilter appends (or inserts at Index when >= 0) a new
// attribute filter. The display form must exist in the catalog.
type AddAttributeFilter struct {
	Meta
	Filter model.AttributeFilter `json:"filter"`
	Index  int                   `json:"index"`
}

func (AddAttributeFilter) CommandType() Type { return TypeAddAttributeFilter }

type RemoveAttributeFilters struct {
	Meta
	LocalIDs []string `json:"localIds"`
}

func (RemoveAttributeFilters) CommandType() Type { return TypeRemoveAttributeFilters }

type MoveAttributeFilter struct {
	Meta
	LocalID string `json:"localId"`
	ToIndex int    `json:"toIndex"`
}

func (MoveAttributeFilter) CommandType() Type { return TypeMoveAttributeFilter }

type ChangeAttributeFilterSelection struct {
	Meta
	LocalID  string   `json:"localId"`
	Elements []string `json:"elements"`
	Negative bool     `json:"negative"`
}

func (ChangeAttributeFilterSelection) CommandType() Type {
	return TypeChangeAttributeFilterSelection
}

// ChangeFilterContextSelection replaces the whole filter context selection
// in one commit. Used when a host application applies a saved filter view.
type ChangeFilterContextSelection struct {
	Meta
	Filters []model.Filter `json:"-"`
}

func (ChangeFilterContextSelection) CommandType() Type { return TypeChangeFilterContextSelection }
