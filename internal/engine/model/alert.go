package model

import "time"

// AlertCondition is the numeric trigger of an alert.
type AlertCondition struct {
	Operator  string  `json:"operator" bson:"operator"` // gt, lt, gte, lte
	Threshold float64 `json:"threshold" bson:"threshold"`
}

// Alert watches one KPI widget and fires when its measure crosses the
// configured threshold. Alerts live alongside the dashboard, not inside
// its layout tree.
type Alert struct {
	Ref       ObjRef         `json:"ref" bson:"ref"`
	Widget    ObjRef         `json:"widget" bson:"widget"`
	Dashboard ObjRef         `json:"dashboard" bson:"dashboard"`
	Condition AlertCondition `json:"condition" bson:"condition"`
	Triggered bool           `json:"triggered" bson:"triggered"`
	Created   time.Time      `json:"created" bson:"created"`
}

func (a Alert) Clone() Alert {
	return a
}
