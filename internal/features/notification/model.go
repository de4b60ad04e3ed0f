package notification

import "time"

const (
	ChannelTypeWebhook = "webhook"
	ChannelTypeEmail   = "email"
)

// Channel is a stored notification delivery target. The bson field names
// line up with the notification_channels collection read by the listing
// backend.
type Channel struct {
	ID          string    `json:"id" bson:"_id"`
	Title       string    `json:"title" bson:"title"`
	Type        string    `json:"type" bson:"type"`
	Destination string    `json:"destination" bson:"destination"`
	Created     time.Time `json:"created" bson:"created"`
	Updated     time.Time `json:"updated" bson:"updated"`
}

// ListOptions narrows and pages a channel listing.
type ListOptions struct {
	Title string
	Type  string
	Page  int
	Size  int
	Sort  string
}
