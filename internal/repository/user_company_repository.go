package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sophiemoustard/compani-api-sub005/internal/models"
)

// UserCompanyRepository reads company membership windows of users.
type UserCompanyRepository struct {
	db *sqlx.DB
}

// NewUserCompanyRepository constructs the repository.
func NewUserCompanyRepository(db *sqlx.DB) *UserCompanyRepository {
	return &UserCompanyRepository{db: db}
}

// ListByUsers returns the membership windows of the users ordered by start date.
func (r *UserCompanyRepository) ListByUsers(ctx context.Context, userIDs []string) ([]models.UserCompany, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	const query = `SELECT user_id, company_id, start_date, end_date FROM user_companies WHERE user_id = ANY($1) ORDER BY user_id, start_date`
	var windows []models.UserCompany
	if err := r.db.SelectContext(ctx, &windows, query, pq.Array(userIDs)); err != nil {
		return nil, fmt.Errorf("list user companies: %w", err)
	}
	return windows, nil
}
