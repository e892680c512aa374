package models

import "time"

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusDone     Status = "done"
)

var transitions = map[Status]Status{
	StatusPending:  StatusAccepted,
	StatusAccepted: StatusDone,
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusDone:
		return true
	default:
		return false
	}
}

// Next returns the only status a record in from may move to. Status only
// moves forward, one step at a time, and done is terminal.
func Next(from Status) (Status, bool) {
	to, ok := transitions[from]
	return to, ok
}
