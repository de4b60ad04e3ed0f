// Package handlers binds command types to their processing logic. Every
// handler follows the same shape: validate against current state (user
// errors), run backend side effects, commit one atomic action batch, then
// announce what changed. Validation never mutates state, so a failed command
// leaves the document exactly as it was.
package handlers

import (
	"go.uber.org/zap"

	"go-dash/internal/engine/backend"
	"go-dash/internal/engine/bus"
	"go-dash/internal/engine/cmds"
	"go-dash/internal/engine/workflow"
)

type Deps struct {
	Backend  backend.Service
	Workflow *workflow.Coordinator
	Log      *zap.Logger
}

// RegisterAll wires every known command type. The dispatcher panics on a
// duplicate registration, so calling this twice on one dispatcher is a
// programmer error.
func RegisterAll(d *bus.Dispatcher, deps Deps) {
	d.Register(cmds.TypeInitializeDashboard, initializeDashboard(deps))
	d.Register(cmds.TypeSaveDashboard, saveDashboard(deps))
	d.Register(cmds.TypeRenameDashboard, renameDashboard(deps))
	d.Register(cmds.TypeResetDashboard, resetDashboard(deps))

	d.Register(cmds.TypeAddLayoutSection, addLayoutSection(deps))
	d.Register(cmds.TypeMoveLayoutSection, moveLayoutSection(deps))
	d.Register(cmds.TypeRemoveLayoutSection, removeLayoutSection(deps))
	d.Register(cmds.TypeChangeSectionHeader, changeSectionHeader(deps))
	d.Register(cmds.TypeAddSectionItems, addSectionItems(deps))
	d.Register(cmds.TypeMoveSectionItem, moveSectionItem(deps))
	d.Register(cmds.TypeRemoveSectionItem, removeSectionItem(deps))
	d.Register(cmds.TypeUndoLayoutChanges, undoLayoutChanges(deps))

	d.Register(cmds.TypeChangeDateFilterSelection, changeDateFilterSelection(deps))
	d.Register(cmds.TypeAddAttributeFilter, addAttributeFilter(deps))
	d.Register(cmds.TypeRemoveAttributeFilters, removeAttributeFilters(deps))
	d.Register(cmds.TypeMoveAttributeFilter, moveAttributeFilter(deps))
	d.Register(cmds.TypeChangeAttributeFilterSelection, changeAttributeFilterSelection(deps))
	d.Register(cmds.TypeChangeFilterContextSelection, changeFilterContextSelection(deps))

	d.Register(cmds.TypeChangeWidgetHeader, changeWidgetHeader(deps))
	d.Register(cmds.TypeChangeInsightWidgetFilterConfig, changeInsightWidgetFilterSettings(deps))
	d.Register(cmds.TypeChangeKpiWidgetMeasure, changeKpiWidgetMeasure(deps))
	d.Register(cmds.TypeChangeKpiWidgetComparison, changeKpiWidgetComparison(deps))

	d.Register(cmds.TypeCreateAlert, createAlert(deps))
	d.Register(cmds.TypeUpdateAlert, updateAlert(deps))
	d.Register(cmds.TypeRemoveAlerts, removeAlerts(deps))

	d.Register(cmds.TypeGenerateSummary, generateSummary(deps))
}
