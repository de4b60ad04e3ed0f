// Package backend defines the service interface the engine's handlers
// collaborate with for persistence and metadata. Two adapters satisfy it:
// "bear" (MongoDB) and "tiger" (PostgreSQL). The engine depends only on
// this contract, never on a concrete wire protocol.
package backend

import (
	"context"
	"errors"
	"time"

	"go-dash/internal/engine/model"
)

// ErrNotSupported is returned by adapters for operations the underlying
// product does not offer. Handlers must degrade gracefully on it.
var ErrNotSupported = errors.New("backend: operation not supported")

// ErrNotFound is returned when a requested object does not exist.
var ErrNotFound = errors.New("backend: object not found")

type WorkflowState string

const (
	WorkflowRunning   WorkflowState = "RUNNING"
	WorkflowCompleted WorkflowState = "COMPLETED"
	WorkflowFailed    WorkflowState = "FAILED"
)

// WorkflowStatus is one poll result of a server-side summary workflow.
type WorkflowStatus struct {
	ID        string        `json:"id"`
	State     WorkflowState `json:"state"`
	SummaryID string        `json:"summaryId,omitempty"`
}

// Automation is a server-side scheduled export or alert definition.
type Automation struct {
	ID         string       `json:"id" bson:"_id"`
	Title      string       `json:"title" bson:"title"`
	Type       string       `json:"type" bson:"type"` // schedule or trigger
	Dashboard  model.ObjRef `json:"dashboard" bson:"dashboard"`
	Schedule   string       `json:"schedule,omitempty" bson:"schedule,omitempty"`
	Recipients []string     `json:"recipients,omitempty" bson:"recipients,omitempty"`
	Created    time.Time    `json:"created" bson:"created"`
}

// NotificationChannel is a server-side delivery target (webhook, email…).
type NotificationChannel struct {
	ID          string    `json:"id" bson:"_id"`
	Title       string    `json:"title" bson:"title"`
	Type        string    `json:"type" bson:"type"`
	Destination string    `json:"destination" bson:"destination"`
	Created     time.Time `json:"created" bson:"created"`
}

// PageRequest describes one page fetch. Filter uses the expression syntax
// produced by the query builders (see filterexpr.go). IncludeTotal asks the
// adapter to also count matching records; callers set it only when they do
// not already know the total.
type PageRequest struct {
	Offset       int
	Size         int
	Filter       string
	Sort         string
	IncludeTotal bool
}

// Page is one page of records. TotalCount is set only when the request
// asked for it.
type Page[T any] struct {
	Items      []T
	TotalCount *int
}

// Service is the Backend Collaborator contract. All calls may block on I/O
// and may fail; none of them touch engine state.
type Service interface {
	GetDashboard(ctx context.Context, ref model.ObjRef) (*model.Dashboard, error)
	SaveDashboard(ctx context.Context, dashboard *model.Dashboard) error

	GetAttributeDisplayForms(ctx context.Context, refs []model.ObjRef) ([]model.DisplayForm, error)
	// ResolveObjRefs resolves refs to canonical URIs in one batch. The
	// result maps ObjRef.Key() to the canonical value.
	ResolveObjRefs(ctx context.Context, refs []model.ObjRef) (map[string]string, error)

	StartSummaryWorkflow(ctx context.Context, dashboard model.ObjRef) (string, error)
	GetWorkflowStatus(ctx context.Context, workflowID string) (*WorkflowStatus, error)
	ListSummaries(ctx context.Context, dashboard model.ObjRef) ([]model.Summary, error)

	ListAutomations(ctx context.Context, req PageRequest) (*Page[Automation], error)
	ListNotificationChannels(ctx context.Context, req PageRequest) (*Page[NotificationChannel], error)
}
