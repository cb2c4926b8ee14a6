package models

import "time"

// CourseType is the organisational shape of a course.
type CourseType string

const (
	// CourseTypeIntra serves exactly one company.
	CourseTypeIntra CourseType = "intra"
	// CourseTypeInterB2B gathers trainees from independent companies.
	CourseTypeInterB2B CourseType = "inter_b2b"
	// CourseTypeIntraHolding serves several companies of one holding.
	CourseTypeIntraHolding CourseType = "intra_holding"
)

// Valid returns true when the type is a supported topology.
func (t CourseType) Valid() bool {
	switch t {
	case CourseTypeIntra, CourseTypeInterB2B, CourseTypeIntraHolding:
		return true
	default:
		return false
	}
}

// Archivable reports whether courses of this type can be archived and unarchived.
func (t CourseType) Archivable() bool {
	switch t {
	case CourseTypeIntra, CourseTypeInterB2B:
		return true
	case CourseTypeIntraHolding:
		return false
	default:
		return false
	}
}

// Course is a training offering with its current membership sets.
type Course struct {
	ID                    string     `db:"id" json:"id"`
	Type                  CourseType `db:"type" json:"type"`
	SubProgramID          string     `db:"sub_program_id" json:"sub_program_id"`
	HoldingID             *string    `db:"holding_id" json:"holding_id,omitempty"`
	Misc                  *string    `db:"misc" json:"misc,omitempty"`
	ArchivedAt            *time.Time `db:"archived_at" json:"archived_at,omitempty"`
	ExpectedBillsCount    *int       `db:"expected_bills_count" json:"expected_bills_count,omitempty"`
	MaxTrainees           *int       `db:"max_trainees" json:"max_trainees,omitempty"`
	SalesRepresentativeID *string    `db:"sales_representative_id" json:"sales_representative_id,omitempty"`
	CreatedAt             time.Time  `db:"created_at" json:"created_at"`

	Trainees  []string `db:"-" json:"trainees"`
	Companies []string `db:"-" json:"companies"`
	Trainers  []string `db:"-" json:"trainers"`
}

// IsArchived reports whether the course has been archived.
func (c *Course) IsArchived() bool {
	return c.ArchivedAt != nil
}

// HasTrainee reports whether the user is currently enrolled.
func (c *Course) HasTrainee(userID string) bool {
	return contains(c.Trainees, userID)
}

// HasCompany reports whether the company is currently served by the course.
func (c *Course) HasCompany(companyID string) bool {
	return contains(c.Companies, companyID)
}

// HasTrainer reports whether the user is listed among the course trainers.
func (c *Course) HasTrainer(userID string) bool {
	return contains(c.Trainers, userID)
}

// CourseSummary is the short course description attached to cross-course attendance views.
type CourseSummary struct {
	ID           string     `db:"course_id" json:"id"`
	Type         CourseType `db:"course_type" json:"type"`
	Misc         *string    `db:"course_misc" json:"misc,omitempty"`
	SubProgramID string     `db:"sub_program_id" json:"sub_program_id"`
	ProgramID    string     `db:"program_id" json:"program_id"`
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
