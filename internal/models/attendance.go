package models

import "time"

// Attendance records that a trainee was present at a course slot.
// CompanyID is the trainee's company resolved at creation and never rewritten.
type Attendance struct {
	ID           string    `db:"id" json:"id"`
	TraineeID    string    `db:"trainee_id" json:"trainee_id"`
	CourseSlotID string    `db:"course_slot_id" json:"course_slot_id"`
	CompanyID    *string   `db:"company_id" json:"company_id,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// CreateAttendanceRequest marks one trainee present at a slot.
type CreateAttendanceRequest struct {
	CourseSlotID string `json:"course_slot" validate:"required"`
	TraineeID    string `json:"trainee" validate:"required"`
}

// DeleteAttendanceFilter targets one record when TraineeID is set, otherwise the slot's enrolled trainees.
type DeleteAttendanceFilter struct {
	CourseSlotID string `validate:"required"`
	TraineeID    string
}

// UnsubscribedAttendanceFilter narrows the unsubscribed attendance listing.
type UnsubscribedAttendanceFilter struct {
	TraineeID string
	CompanyID string
}

// AttendanceDetail joins an attendance with its slot and course for cross-course views.
type AttendanceDetail struct {
	AttendanceID string     `db:"attendance_id" json:"attendance_id"`
	TraineeID    string     `db:"trainee_id" json:"trainee_id"`
	CompanyID    *string    `db:"company_id" json:"company_id,omitempty"`
	SlotID       string     `db:"slot_id" json:"slot_id"`
	StartDate    *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate      *time.Time `db:"end_date" json:"end_date,omitempty"`
	CourseSummary
}

// UnsubscribedAttendance is an attendance of a trainee not enrolled in the slot's course.
type UnsubscribedAttendance struct {
	AttendanceID string        `json:"attendance_id"`
	TraineeID    string        `json:"trainee_id"`
	CompanyID    *string       `json:"company_id,omitempty"`
	Slot         SlotSummary   `json:"slot"`
	Course       CourseSummary `json:"course"`
}

// SlotSummary is the slot part of an unsubscribed attendance.
type SlotSummary struct {
	ID        string     `json:"id"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}
