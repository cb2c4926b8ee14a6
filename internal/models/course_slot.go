package models

import "time"

// CourseSlot is one scheduled session of a course. Slots without dates are still to plan.
type CourseSlot struct {
	ID          string     `db:"id" json:"id"`
	CourseID    string     `db:"course_id" json:"course_id"`
	StartDate   *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate     *time.Time `db:"end_date" json:"end_date,omitempty"`
	Address     *string    `db:"address" json:"address,omitempty"`
	MeetingLink *string    `db:"meeting_link" json:"meeting_link,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// IsPlanned reports whether the slot has dates.
func (s *CourseSlot) IsPlanned() bool {
	return s.StartDate != nil && s.EndDate != nil
}

// CreateSlotRequest schedules a new slot on a course.
type CreateSlotRequest struct {
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Address     *string    `json:"address" validate:"omitempty,max=500"`
	MeetingLink *string    `json:"meeting_link" validate:"omitempty,url"`
}

// UpdateSlotRequest replaces the dates and location of a slot.
type UpdateSlotRequest struct {
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Address     *string    `json:"address" validate:"omitempty,max=500"`
	MeetingLink *string    `json:"meeting_link" validate:"omitempty,url"`
}
