package appointments

import "errors"

var (
	ErrNotFound   = errors.New("appointment not found")
	ErrDateInPast = errors.New("requested date is in the past")
)

// ListOrder selects the sort applied by Repository.ListByStatus.
type ListOrder int

const (
	// OrderNewestFirst sorts by creation time, newest first.
	OrderNewestFirst ListOrder = iota
	// OrderSchedule sorts by requested date then time, soonest first.
	OrderSchedule
	// OrderRecent is OrderNewestFirst capped at RecentLimit records.
	OrderRecent
)

const RecentLimit = 50

// CreateRequest is the public submission payload.
type CreateRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Phone   string `json:"phone" validate:"required,max=32"`
	Service string `json:"service" validate:"required,max=120"`
	Date    string `json:"date" validate:"required,date"`
	Time    string `json:"time" validate:"required,clock"`
}
