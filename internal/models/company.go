package models

import "time"

// Company is a client organisation, optionally part of a holding.
type Company struct {
	ID        string  `db:"id" json:"id"`
	Name      string  `db:"name" json:"name"`
	HoldingID *string `db:"holding_id" json:"holding_id,omitempty"`
}

// UserCompany is one membership window of a user in a company. EndDate is nil while open.
type UserCompany struct {
	UserID    string     `db:"user_id" json:"user_id"`
	CompanyID string     `db:"company_id" json:"company_id"`
	StartDate time.Time  `db:"start_date" json:"start_date"`
	EndDate   *time.Time `db:"end_date" json:"end_date,omitempty"`
}

// ActiveAt reports whether the window covers the instant.
func (u UserCompany) ActiveAt(at time.Time) bool {
	if u.StartDate.After(at) {
		return false
	}
	return u.EndDate == nil || u.EndDate.After(at)
}

// Overlaps reports whether the window intersects [from, to). A nil to means still open.
func (u UserCompany) Overlaps(from time.Time, to *time.Time) bool {
	if to != nil && !u.StartDate.Before(*to) {
		return false
	}
	return u.EndDate == nil || u.EndDate.After(from)
}
