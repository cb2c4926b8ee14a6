package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sophiemoustard/compani-api-sub005/internal/models"
)

func TestDecide(t *testing.T) {
	intra := &models.Course{
		ID:        "c-intra",
		Type:      models.CourseTypeIntra,
		Companies: []string{"A"},
		Trainers:  []string{"trainer-1"},
	}
	inter := &models.Course{
		ID:        "c-inter",
		Type:      models.CourseTypeInterB2B,
		Companies: []string{"A", "B"},
		Trainees:  []string{"t1"},
	}
	holding := &models.Course{
		ID:        "c-holding",
		Type:      models.CourseTypeIntraHolding,
		HoldingID: strPtr("H"),
		Companies: []string{"A"},
	}
	archived := &models.Course{
		ID:         "c-archived",
		Type:       models.CourseTypeIntra,
		Companies:  []string{"A"},
		Trainers:   []string{"trainer-1"},
		ArchivedAt: timePtr(testNow),
	}
	archivedHolding := &models.Course{
		ID:         "c-archived-holding",
		Type:       models.CourseTypeIntraHolding,
		HoldingID:  strPtr("H"),
		ArchivedAt: timePtr(testNow),
	}
	otherTrainer := models.Actor{UserID: "trainer-2", VendorRole: models.VendorRoleTrainer}
	tom := models.Actor{UserID: "tom-1", VendorRole: models.VendorRoleTrainingOrganisationManager}

	tests := []struct {
		name       string
		actor      models.Actor
		scope      CourseScope
		capability models.Capability
		outcome    models.DecisionOutcome
	}{
		{"unknown capability", adminActor, CourseScope{Course: intra}, models.Capability("teleport"), models.DecisionInvalidRequest},
		{"missing course", adminActor, CourseScope{}, models.CapabilityRead, models.DecisionNotFound},
		{"admin edits", adminActor, CourseScope{Course: intra}, models.CapabilityEdit, models.DecisionGranted},
		{"training organisation manager edits billing counts", tom, CourseScope{Course: intra}, models.CapabilityEditBillingCounts, models.DecisionGranted},
		{"course trainer manages slots", trainerActor, CourseScope{Course: intra}, models.CapabilityManageSlots, models.DecisionGranted},
		{"course trainer cannot edit billing counts", trainerActor, CourseScope{Course: intra}, models.CapabilityEditBillingCounts, models.DecisionDenied},
		{"course trainer cannot change sales representative", trainerActor, CourseScope{Course: intra}, models.CapabilityEditSalesRepresentative, models.DecisionDenied},
		{"course trainer cannot manage trainees", trainerActor, CourseScope{Course: intra}, models.CapabilityManageTrainees, models.DecisionDenied},
		{"other trainer is out of scope", otherTrainer, CourseScope{Course: intra}, models.CapabilityRead, models.DecisionDenied},
		{"client of serving company edits intra", clientActor("A"), CourseScope{Course: intra}, models.CapabilityEdit, models.DecisionGranted},
		{"client of another company cannot edit intra", clientActor("B"), CourseScope{Course: intra}, models.CapabilityEdit, models.DecisionDenied},
		{"client cannot manage attendances", clientActor("A"), CourseScope{Course: intra}, models.CapabilityManageAttendances, models.DecisionDenied},
		{"client with enrolled trainee reads inter", clientActor("B"), CourseScope{Course: inter, TraineeCompanies: []string{"B"}}, models.CapabilityRead, models.DecisionGranted},
		{"client without enrolled trainee cannot read inter", clientActor("A"), CourseScope{Course: inter, TraineeCompanies: []string{"B"}}, models.CapabilityRead, models.DecisionDenied},
		{"holding admin manages companies of own holding", holdingActor("H"), CourseScope{Course: holding}, models.CapabilityManageCompanies, models.DecisionGranted},
		{"holding admin of another holding", holdingActor("X"), CourseScope{Course: holding}, models.CapabilityRead, models.DecisionDenied},
		{"holding admin has no grant on intra", holdingActor("H"), CourseScope{Course: intra}, models.CapabilityRead, models.DecisionDenied},
		{"companies are fixed on intra", adminActor, CourseScope{Course: intra}, models.CapabilityManageCompanies, models.DecisionInvalidRequest},
		{"intra holding cannot be archived", adminActor, CourseScope{Course: holding}, models.CapabilityArchive, models.DecisionInvalidRequest},
		{"archived course rejects edit by admin", adminActor, CourseScope{Course: archived}, models.CapabilityEdit, models.DecisionDenied},
		{"archived course rejects slot changes by trainer", trainerActor, CourseScope{Course: archived}, models.CapabilityManageSlots, models.DecisionDenied},
		{"archived course rejects re-archiving", adminActor, CourseScope{Course: archived}, models.CapabilityArchive, models.DecisionDenied},
		{"archived course stays readable", clientActor("A"), CourseScope{Course: archived}, models.CapabilityRead, models.DecisionGranted},
		{"admin unarchives", adminActor, CourseScope{Course: archived}, models.CapabilityUnarchive, models.DecisionGranted},
		{"trainer cannot unarchive", trainerActor, CourseScope{Course: archived}, models.CapabilityUnarchive, models.DecisionDenied},
		{"unarchive on a type that cannot be archived", adminActor, CourseScope{Course: archivedHolding}, models.CapabilityUnarchive, models.DecisionInvalidRequest},
		{"actor without roles", models.Actor{UserID: "u"}, CourseScope{Course: intra}, models.CapabilityRead, models.DecisionDenied},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			decision := Decide(tc.actor, tc.scope, tc.capability)
			assert.Equal(t, tc.outcome, decision.Outcome, decision.Reason)
			if tc.outcome != models.DecisionGranted {
				assert.NotEmpty(t, decision.Reason)
			}
		})
	}
}

func TestDecideDistinguishesOutcomes(t *testing.T) {
	course := &models.Course{ID: "c", Type: models.CourseTypeIntra, Companies: []string{"A"}}

	notFound := Decide(adminActor, CourseScope{}, models.CapabilityEdit)
	denied := Decide(clientActor("B"), CourseScope{Course: course}, models.CapabilityEdit)
	invalid := Decide(adminActor, CourseScope{Course: course}, models.CapabilityManageCompanies)

	assert.Equal(t, models.DecisionNotFound, notFound.Outcome)
	assert.Equal(t, models.DecisionDenied, denied.Outcome)
	assert.Equal(t, models.DecisionInvalidRequest, invalid.Outcome)
	assert.False(t, denied.Granted())
}
