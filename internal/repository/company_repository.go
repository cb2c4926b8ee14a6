package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sophiemoustard/compani-api-sub005/internal/models"
)

// CompanyRepository reads client companies.
type CompanyRepository struct {
	db *sqlx.DB
}

// NewCompanyRepository constructs the repository.
func NewCompanyRepository(db *sqlx.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

// FindByID returns a company by its ID.
func (r *CompanyRepository) FindByID(ctx context.Context, id string) (*models.Company, error) {
	const query = `SELECT id, name, holding_id FROM companies WHERE id = $1`
	var company models.Company
	if err := r.db.GetContext(ctx, &company, query, id); err != nil {
		return nil, err
	}
	return &company, nil
}

// ListIDsByHolding returns the IDs of the holding's companies.
func (r *CompanyRepository) ListIDsByHolding(ctx context.Context, holdingID string) ([]string, error) {
	const query = `SELECT id FROM companies WHERE holding_id = $1 ORDER BY name`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, holdingID); err != nil {
		return nil, fmt.Errorf("list holding companies: %w", err)
	}
	return ids, nil
}
