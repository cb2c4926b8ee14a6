package models

// Capability is an operation an actor may request on a course.
type Capability string

const (
	CapabilityRead                    Capability = "read"
	CapabilityReadHistory             Capability = "read_history"
	CapabilityEdit                    Capability = "edit"
	CapabilityEditBillingCounts       Capability = "edit_billing_counts"
	CapabilityEditSalesRepresentative Capability = "edit_sales_representative"
	CapabilityManageSlots             Capability = "manage_slots"
	CapabilityManageAttendances       Capability = "manage_attendances"
	CapabilityManageTrainees          Capability = "manage_trainees"
	CapabilityManageCompanies         Capability = "manage_companies"
	CapabilityManageBilling           Capability = "manage_billing"
	CapabilityArchive                 Capability = "archive"
	CapabilityUnarchive               Capability = "unarchive"
)

// Valid returns true when the capability is known.
func (c Capability) Valid() bool {
	switch c {
	case CapabilityRead, CapabilityReadHistory, CapabilityEdit, CapabilityEditBillingCounts,
		CapabilityEditSalesRepresentative, CapabilityManageSlots, CapabilityManageAttendances,
		CapabilityManageTrainees, CapabilityManageCompanies, CapabilityManageBilling,
		CapabilityArchive, CapabilityUnarchive:
		return true
	default:
		return false
	}
}

// Mutating reports whether the capability changes course state.
func (c Capability) Mutating() bool {
	return c != CapabilityRead && c != CapabilityReadHistory
}

// DecisionOutcome is the typed result of an authorization decision.
type DecisionOutcome string

const (
	DecisionGranted        DecisionOutcome = "granted"
	DecisionDenied         DecisionOutcome = "denied"
	DecisionNotFound       DecisionOutcome = "not_found"
	DecisionInvalidRequest DecisionOutcome = "invalid_request"
)

// Decision is the outcome of evaluating a capability against a course.
type Decision struct {
	Outcome DecisionOutcome `json:"outcome"`
	Reason  string          `json:"reason,omitempty"`
}

// Granted reports whether access is allowed.
func (d Decision) Granted() bool {
	return d.Outcome == DecisionGranted
}
