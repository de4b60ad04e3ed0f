package automation

import (
	"time"

	"go-dash/internal/engine/model"
)

const (
	RuleTypeSchedule = "schedule"
	RuleTypeTrigger  = "trigger"
)

// AutomationRule is a stored automation definition. Schedule rules run on a
// cron expression; trigger rules run on demand. The bson field names line up
// with the automations collection read by the listing backend.
type AutomationRule struct {
	ID         string       `json:"id" bson:"_id"`
	Title      string       `json:"title" bson:"title"`
	Type       string       `json:"type" bson:"type"`
	Dashboard  model.ObjRef `json:"dashboard" bson:"dashboard"`
	Schedule   string       `json:"schedule,omitempty" bson:"schedule,omitempty"`
	Recipients []string     `json:"recipients,omitempty" bson:"recipients,omitempty"`
	Script     string       `json:"script,omitempty" bson:"script,omitempty"`
	Active     bool         `json:"active" bson:"active"`
	Created    time.Time    `json:"created" bson:"created"`
	Updated    time.Time    `json:"updated" bson:"updated"`
}

// ListOptions narrows and pages a rule listing.
type ListOptions struct {
	Title     string
	Type      string
	Dashboard model.ObjRef
	Page      int
	Size      int
	Sort      string
}
