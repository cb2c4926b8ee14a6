package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// UserRepository answers identity lookups on users.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository constructs the repository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Exists reports whether a user with the id is known.
func (r *UserRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id); err != nil {
		return false, fmt.Errorf("check user: %w", err)
	}
	return exists, nil
}
