package cmds

import "go-dash/internal/engine/model"

// InitializeDashboard loads a dashboard from the backend into the engine.
// With an empty Ref a fresh empty dashboard is created instead.
type InitializeDashboard struct {
	Meta
	Ref   model.ObjRef `json:"ref"`
	Title string       `json:"title,omitempty"`
}

func (InitializeDashboard) CommandType() Type { return TypeInitializeDashboard }

// SaveDashboard persists the current document through the backend and
// records the saved snapshot version.
type SaveDashboard struct {
	Meta
}

func (SaveDashboard) CommandType() Type { return TypeSaveDashboard }

type RenameDashboard struct {
	Meta
	Title string `json:"title"`
}

func (RenameDashboard) CommandType() Type { return TypeRenameDashboard }

// ResetDashboard discards unsaved edits by reloading the last saved
// snapshot from the backend.
type ResetDashboard struct {
	Meta
}

func (ResetDashboard) CommandType() Type { return TypeResetDashboard }
