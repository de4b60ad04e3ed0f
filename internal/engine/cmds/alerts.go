package cmds

import "go-dash/internal/engine/model"

// CreateAlert attaches a threshold alert to a KPI widget.
type CreateAlert struct {
	Meta
	Widget    model.ObjRef         `json:"widget"`
	Condition model.AlertCondition `json:"condition"`
}

func (CreateAlert) CommandType() Type { return TypeCreateAlert }

type UpdateAlert struct {
	Meta
	Ref       model.ObjRef         `json:"ref"`
	Condition model.AlertCondition `json:"condition"`
}

func (UpdateAlert) CommandType() Type { return TypeUpdateAlert }

type RemoveAlerts struct {
	Meta
	Refs []model.ObjRef `json:"refs"`
}

func (RemoveAlerts) CommandType() Type { return TypeRemoveAlerts }

// GenerateSummary starts the server-side summary workflow for the loaded
// dashboard. The command completes long before the workflow does; progress
// and the terminal outcome arrive as summary events.
type GenerateSummary struct {
	Meta
}

func (GenerateSummary) CommandType() Type { return TypeGenerateSummary }
