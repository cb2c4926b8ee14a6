package models

// VendorRole is the actor's role inside the training organisation.
type VendorRole string

const (
	VendorRoleAdmin                       VendorRole = "vendor_admin"
	VendorRoleTrainingOrganisationManager VendorRole = "training_organisation_manager"
	VendorRoleTrainer                     VendorRole = "trainer"
)

// ClientRole is the actor's role inside their own company.
type ClientRole string

const (
	ClientRoleAdmin ClientRole = "client_admin"
	ClientRoleCoach ClientRole = "coach"
)

// HoldingRole is the actor's role over a holding.
type HoldingRole string

const (
	HoldingRoleAdmin HoldingRole = "holding_admin"
)

// Actor is the authenticated caller. Each role dimension is independent and may be empty.
type Actor struct {
	UserID      string      `json:"user_id"`
	VendorRole  VendorRole  `json:"vendor_role,omitempty"`
	ClientRole  ClientRole  `json:"client_role,omitempty"`
	HoldingRole HoldingRole `json:"holding_role,omitempty"`
	CompanyID   string      `json:"company_id,omitempty"`
	HoldingID   string      `json:"holding_id,omitempty"`
}

// IsVendorAdmin reports whether the actor operates the whole training organisation.
func (a Actor) IsVendorAdmin() bool {
	return a.VendorRole == VendorRoleAdmin || a.VendorRole == VendorRoleTrainingOrganisationManager
}

// IsTrainer reports whether the actor holds the vendor trainer role.
func (a Actor) IsTrainer() bool {
	return a.VendorRole == VendorRoleTrainer
}

// HasVendorRole reports whether the actor sees every company.
func (a Actor) HasVendorRole() bool {
	return a.IsVendorAdmin() || a.IsTrainer()
}

// HasClientRole reports whether the actor coordinates their company.
func (a Actor) HasClientRole() bool {
	return (a.ClientRole == ClientRoleAdmin || a.ClientRole == ClientRoleCoach) && a.CompanyID != ""
}

// IsHoldingAdmin reports whether the actor administers a holding.
func (a Actor) IsHoldingAdmin() bool {
	return a.HoldingRole == HoldingRoleAdmin && a.HoldingID != ""
}
