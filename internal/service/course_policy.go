package service

import (
	"github.com/sophiemoustard/compani-api-sub005/internal/models"
)

// CourseScope is what a decision needs to know about the target course.
// TraineeCompanies lists the resolved companies of enrolled trainees and is only consulted for inter_b2b courses.
type CourseScope struct {
	Course           *models.Course
	TraineeCompanies []string
}

var (
	adminOnlyCapabilities = capabilitySet(
		models.CapabilityEditBillingCounts,
		models.CapabilityEditSalesRepresentative,
		models.CapabilityManageBilling,
		models.CapabilityArchive,
	)
	trainerCapabilities = capabilitySet(
		models.CapabilityRead,
		models.CapabilityReadHistory,
		models.CapabilityEdit,
		models.CapabilityManageSlots,
		models.CapabilityManageAttendances,
	)
	clientCapabilities = capabilitySet(
		models.CapabilityRead,
		models.CapabilityReadHistory,
		models.CapabilityEdit,
		models.CapabilityManageTrainees,
	)
	holdingCapabilities = capabilitySet(
		models.CapabilityRead,
		models.CapabilityReadHistory,
		models.CapabilityEdit,
		models.CapabilityManageTrainees,
		models.CapabilityManageCompanies,
	)
)

// Decide evaluates whether the actor may exercise the capability on the course.
// Rules apply in order: unknown capability, missing course, unarchive transition, archived course,
// topology restrictions, administrator-only capabilities, then the role grant clauses.
func Decide(actor models.Actor, scope CourseScope, capability models.Capability) models.Decision {
	if !capability.Valid() {
		return invalid("unknown capability")
	}
	course := scope.Course
	if course == nil {
		return models.Decision{Outcome: models.DecisionNotFound, Reason: "course not found"}
	}

	if capability == models.CapabilityUnarchive {
		if !actor.IsVendorAdmin() {
			return denied("only administrators can unarchive a course")
		}
		if !course.Type.Archivable() {
			return invalid("this course type cannot be archived")
		}
		return granted()
	}

	if course.IsArchived() && capability.Mutating() {
		return denied("course is archived")
	}

	switch capability {
	case models.CapabilityManageCompanies:
		if course.Type == models.CourseTypeIntra {
			return invalid("companies of an intra course cannot change")
		}
	case models.CapabilityArchive:
		if !course.Type.Archivable() {
			return invalid("this course type cannot be archived")
		}
	}

	if adminOnlyCapabilities[capability] {
		if actor.IsVendorAdmin() {
			return granted()
		}
		return denied("reserved to administrators")
	}

	inScope := false
	if actor.IsVendorAdmin() {
		return granted()
	}
	if actor.IsTrainer() && course.HasTrainer(actor.UserID) {
		if trainerCapabilities[capability] {
			return granted()
		}
		inScope = true
	}
	if actor.HasClientRole() && clientCompanyMatches(actor, scope) {
		if clientCapabilities[capability] {
			return granted()
		}
		inScope = true
	}
	if actor.IsHoldingAdmin() && holdingMatches(actor, course) {
		if holdingCapabilities[capability] {
			return granted()
		}
		inScope = true
	}

	if inScope {
		return denied("role does not allow " + string(capability))
	}
	return denied("course is outside the actor's scope")
}

func clientCompanyMatches(actor models.Actor, scope CourseScope) bool {
	switch scope.Course.Type {
	case models.CourseTypeIntra, models.CourseTypeIntraHolding:
		return scope.Course.HasCompany(actor.CompanyID)
	case models.CourseTypeInterB2B:
		for _, companyID := range scope.TraineeCompanies {
			if companyID == actor.CompanyID {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func holdingMatches(actor models.Actor, course *models.Course) bool {
	switch course.Type {
	case models.CourseTypeIntraHolding:
		return course.HoldingID != nil && *course.HoldingID == actor.HoldingID
	case models.CourseTypeIntra, models.CourseTypeInterB2B:
		return false
	default:
		return false
	}
}

func capabilitySet(capabilities ...models.Capability) map[models.Capability]bool {
	set := make(map[models.Capability]bool, len(capabilities))
	for _, c := range capabilities {
		set[c] = true
	}
	return set
}

func granted() models.Decision {
	return models.Decision{Outcome: models.DecisionGranted}
}

func denied(reason string) models.Decision {
	return models.Decision{Outcome: models.DecisionDenied, Reason: reason}
}

func invalid(reason string) models.Decision {
	return models.Decision{Outcome: models.DecisionInvalidRequest, Reason: reason}
}
