package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"go-dash/internal/engine/backend"
	"go-dash/internal/engine/bus"
	"go-dash/internal/engine/cmds"
	"go-dash/internal/engine/events"
	"go-dash/internal/engine/model"
	"go-dash/internal/engine/store"
)

// requireDashboard is the common precondition of every command that edits
// the loaded document.
func requireDashboard(tx *bus.Tx) (*model.Dashboard, error) {
	dash := tx.View().Dashboard()
	if dash == nil {
		return nil, bus.UserErrorf("no dashboard loaded")
	}
	return dash, nil
}

func initializeDashboard(deps Deps) bus.HandlerFunc {
	return func(ctx context.Context, tx *bus.Tx) error {
		cmd := tx.Command().(cmds.InitializeDashboard)

		var dash *model.Dashboard
		if cmd.Ref.IsEmpty() {
			title := cmd.Title
			if strings.TrimSpace(title) == "" {
				title = "Untitled dashboard"
			}
			dash = model.NewDashboard(model.NewRef(uuid.NewString()), title)
		} else {
			loaded, err := deps.Backend.GetDashboard(ctx, cmd.Ref)
			if err != nil {
				if errors.Is(err, backend.ErrNotFound) {
					return bus.UserErrorf("dashboard %s does not exist", cmd.Ref.Key())
				}
				return fmt.Errorf("loading dashboard: %w", err)
			}
			dash = loaded
		}

		tx.Commit(store.SetDashboard{Dashboard: dash})
		tx.Emit(events.TypeDashboardInitialized, events.DashboardInitialized{
			Ref:   dash.Ref,
			Title: dash.Title,
		})
		return nil
	}
}

func saveDashboard(deps Deps) bus.HandlerFunc {
	return func(ctx context.Context, tx *bus.Tx) error {
		dash, err := requireDashboard(tx)
		if err != nil {
			return err
		}

		// Persist a bumped clone; state only changes after the backend
		// accepted the document.
		saved := dash.Clone()
		saved.Version = dash.Version + 1
		if err := deps.Backend.SaveDashboard(ctx, saved); err != nil {
			return fmt.Errorf("saving dashboard: %w", err)
		}

		tx.Commit(store.MarkSaved{Version: saved.Version})
		tx.Emit(events.TypeDashboardSaved, events.DashboardSaved{
			Ref:     saved.Ref,
			Version: saved.Version,
		})
		return nil
	}
}

func renameDashboard(deps Deps) bus.HandlerFunc {
	return func(ctx context.Context, tx *bus.Tx) error {
		cmd := tx.Command().(cmds.RenameDashboard)
		if _, err := requireDashboard(tx); err != nil {
			return err
		}
		if strings.TrimSpace(cmd.Title) == "" {
			return bus.UserErrorf("dashboard title must not be empty")
		}

		tx.Commit(store.SetTitle{Title: cmd.Title})
		tx.Emit(events.TypeDashboardRenamed, events.DashboardRenamed{Title: cmd.Title})
		return nil
	}
}

func resetDashboard(deps Deps) bus.HandlerFunc {
	return func(ctx context.Context, tx *bus.Tx) error {
		dash, err := requireDashboard(tx)
		if err != nil {
			return err
		}

		loaded, err := deps.Backend.GetDashboard(ctx, dash.Ref)
		if err != nil {
			if errors.Is(err, backend.ErrNotFound) {
				return bus.UserErrorf("dashboard %s has never been saved", dash.Ref.Key())
			}
			return fmt.Errorf("reloading dashboard: %w", err)
		}

		tx.Commit(store.SetDashboard{Dashboard: loaded})
		tx.Emit(events.TypeDashboardReset, events.DashboardReset{Ref: loaded.Ref})
		return nil
	}
}
