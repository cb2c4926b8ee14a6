package models

import "time"

// CourseHistoryAction identifies the kind of lifecycle event recorded for a course.
type CourseHistoryAction string

const (
	HistorySlotCreation    CourseHistoryAction = "slot_creation"
	HistorySlotEdition     CourseHistoryAction = "slot_edition"
	HistorySlotDeletion    CourseHistoryAction = "slot_deletion"
	HistoryTraineeAddition CourseHistoryAction = "trainee_addition"
	HistoryTraineeDeletion CourseHistoryAction = "trainee_deletion"
	HistoryCompanyAddition CourseHistoryAction = "company_addition"
	HistoryCompanyDeletion CourseHistoryAction = "company_deletion"
)

// Valid returns true when the action is known.
func (a CourseHistoryAction) Valid() bool {
	switch a {
	case HistorySlotCreation, HistorySlotEdition, HistorySlotDeletion,
		HistoryTraineeAddition, HistoryTraineeDeletion,
		HistoryCompanyAddition, HistoryCompanyDeletion:
		return true
	default:
		return false
	}
}

// HistoryDateChange is a from/to pair of an edited slot date.
type HistoryDateChange struct {
	From time.Time `bson:"from" json:"from"`
	To   time.Time `bson:"to" json:"to"`
}

// HistorySlotUpdate holds the notable part of a slot edition.
type HistorySlotUpdate struct {
	StartDate *HistoryDateChange `bson:"startDate,omitempty" json:"start_date,omitempty"`
	StartHour *HistoryDateChange `bson:"startHour,omitempty" json:"start_hour,omitempty"`
	EndHour   *HistoryDateChange `bson:"endHour,omitempty" json:"end_hour,omitempty"`
}

// Empty reports whether nothing notable changed.
func (u HistorySlotUpdate) Empty() bool {
	return u.StartDate == nil && u.StartHour == nil && u.EndHour == nil
}

// HistorySlot is the snapshot of a slot carried by slot events.
type HistorySlot struct {
	StartDate   time.Time `bson:"startDate" json:"start_date"`
	EndDate     time.Time `bson:"endDate" json:"end_date"`
	Address     *string   `bson:"address,omitempty" json:"address,omitempty"`
	MeetingLink *string   `bson:"meetingLink,omitempty" json:"meeting_link,omitempty"`
}

// CourseHistory is one immutable ledger entry.
type CourseHistory struct {
	ID        string              `json:"id"`
	CourseID  string              `json:"course_id"`
	Action    CourseHistoryAction `json:"action"`
	CreatedBy string              `json:"created_by"`
	CreatedAt time.Time           `json:"created_at"`
	Slot      *HistorySlot        `json:"slot,omitempty"`
	Update    *HistorySlotUpdate  `json:"update,omitempty"`
	TraineeID *string             `json:"trainee_id,omitempty"`
	CompanyID *string             `json:"company_id,omitempty"`
}

// CourseHistoryFilter selects ledger entries of one course.
// BeforeID breaks ties on Before and is ignored without it.
type CourseHistoryFilter struct {
	CourseID   string
	Before     *time.Time
	BeforeID   string
	Limit      int
	Actions    []CourseHistoryAction
	TraineeIDs []string
	Ascending  bool
}
