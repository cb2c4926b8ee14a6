package models

import "time"

// CursorPage describes a page of a time-ordered listing; NextBefore and NextBeforeID feed the following request.
type CursorPage struct {
	Limit        int        `json:"limit"`
	NextBefore   *time.Time `json:"next_before,omitempty"`
	NextBeforeID string     `json:"next_before_id,omitempty"`
}
