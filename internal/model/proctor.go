package model

import "time"

// ProctorEventType enumerates live monitor events.
type ProctorEventType string

const (
	ProctorEventJoined    ProctorEventType = "joined"
	ProctorEventWarning   ProctorEventType = "warning"
	ProctorEventLeft      ProctorEventType = "left"
	ProctorEventSubmitted ProctorEventType = "submitted"
)

// ProctorEvent is streamed to admins watching the monitor. Never persisted.
type ProctorEvent struct {
	Type         ProctorEventType `json:"type"`
	ConnID       string           `json:"connId,omitempty"`
	UserName     string           `json:"userName"`
	Email        string           `json:"email"`
	Reason       string           `json:"reason,omitempty"`
	WarningCount int              `json:"warningCount,omitempty"`
	Percentage   *float64         `json:"percentage,omitempty"`
	At           time.Time        `json:"at"`
}
