package model

import "time"

// Dashboard is the root aggregate of the document model. Instances held by
// the store are treated as immutable; reducers mutate a fresh clone and swap
// it in, so read-phase snapshots stay valid for their holders.
type Dashboard struct {
	Ref           ObjRef         `json:"ref" bson:"ref"`
	Title         string         `json:"title" bson:"title"`
	Description   string         `json:"description,omitempty" bson:"description,omitempty"`
	Layout        *Layout        `json:"layout" bson:"-"`
	FilterContext *FilterContext `json:"filterContext" bson:"-"`
	Locked        bool           `json:"locked" bson:"locked"`
	Shared        bool           `json:"shared" bson:"shared"`
	Version       int            `json:"version" bson:"version"`
	Created       time.Time      `json:"created" bson:"created"`
	Updated       time.Time      `json:"updated" bson:"updated"`
}

func NewDashboard(ref ObjRef, title string) *Dashboard {
	now := time.Now().UTC()
	return &Dashboard{
		Ref:           ref,
		Title:         title,
		Layout:        &Layout{},
		FilterContext: &FilterContext{},
		Version:       1,
		Created:       now,
		Updated:       now,
	}
}

func (d *Dashboard) Clone() *Dashboard {
	if d == nil {
		return nil
	}
	c := *d
	c.Layout = d.Layout.Clone()
	c.FilterContext = d.FilterContext.Clone()
	return &c
}
