package models

// AddTraineeRequest enrolls a trainee in a course.
type AddTraineeRequest struct {
	TraineeID string `json:"trainee" validate:"required"`
}

// AddCompanyRequest adds a served company to a course.
type AddCompanyRequest struct {
	CompanyID string `json:"company" validate:"required"`
}

// UpdateCourseRequest carries the editable course fields. Nil fields are left untouched.
type UpdateCourseRequest struct {
	Misc                  *string `json:"misc" validate:"omitempty,max=255"`
	ExpectedBillsCount    *int    `json:"expected_bills_count" validate:"omitempty,min=0"`
	MaxTrainees           *int    `json:"max_trainees" validate:"omitempty,min=1"`
	SalesRepresentativeID *string `json:"sales_representative" validate:"omitempty"`
}

// TouchesBillingCounts reports whether administrator-only count fields are present.
func (r UpdateCourseRequest) TouchesBillingCounts() bool {
	return r.ExpectedBillsCount != nil || r.MaxTrainees != nil
}

// Empty reports whether the request changes nothing.
func (r UpdateCourseRequest) Empty() bool {
	return r.Misc == nil && r.ExpectedBillsCount == nil && r.MaxTrainees == nil && r.SalesRepresentativeID == nil
}
