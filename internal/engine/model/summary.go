package model

import "time"

// Summary is a server-generated narrative summary of a dashboard. Summaries
// are produced by an asynchronous backend workflow and only listed here.
type Summary struct {
	ID        string    `json:"id" bson:"id"`
	Dashboard ObjRef    `json:"dashboard" bson:"dashboard"`
	Content   string    `json:"content" bson:"content"`
	Created   time.Time `json:"created" bson:"created"`
}
