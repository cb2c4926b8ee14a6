package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// BillingRepository answers existence checks on billing and attendance sheet records.
type BillingRepository struct {
	db *sqlx.DB
}

// NewBillingRepository constructs the repository.
func NewBillingRepository(db *sqlx.DB) *BillingRepository {
	return &BillingRepository{db: db}
}

// CompanyHasBills reports whether a non-cancelled bill of the course is addressed to the company.
func (r *BillingRepository) CompanyHasBills(ctx context.Context, courseID, companyID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM course_bills WHERE course_id = $1 AND company_id = $2 AND canceled_at IS NULL)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, courseID, companyID); err != nil {
		return false, fmt.Errorf("check course bills: %w", err)
	}
	return exists, nil
}

// CompanyHasAttendanceSheets reports whether an attendance sheet of the course references the company.
func (r *BillingRepository) CompanyHasAttendanceSheets(ctx context.Context, courseID, companyID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM attendance_sheets WHERE course_id = $1 AND company_id = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, courseID, companyID); err != nil {
		return false, fmt.Errorf("check attendance sheets: %w", err)
	}
	return exists, nil
}
