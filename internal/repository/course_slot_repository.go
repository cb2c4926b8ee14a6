package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sophiemoustard/compani-api-sub005/internal/models"
)

const slotColumns = `id, course_id, start_date, end_date, address, meeting_link, created_at`

// CourseSlotRepository handles persistence of course slots.
type CourseSlotRepository struct {
	db *sqlx.DB
}

// NewCourseSlotRepository constructs the repository.
func NewCourseSlotRepository(db *sqlx.DB) *CourseSlotRepository {
	return &CourseSlotRepository{db: db}
}

// FindByID returns a slot by its ID.
func (r *CourseSlotRepository) FindByID(ctx context.Context, id string) (*models.CourseSlot, error) {
	query := `SELECT ` + slotColumns + ` FROM course_slots WHERE id = $1`
	var slot models.CourseSlot
	if err := r.db.GetContext(ctx, &slot, query, id); err != nil {
		return nil, err
	}
	return &slot, nil
}

// ListByCourse returns the slots of a course, slots to plan last.
func (r *CourseSlotRepository) ListByCourse(ctx context.Context, courseID string) ([]models.CourseSlot, error) {
	query := `SELECT ` + slotColumns + ` FROM course_slots WHERE course_id = $1 ORDER BY start_date ASC NULLS LAST`
	var slots []models.CourseSlot
	if err := r.db.SelectContext(ctx, &slots, query, courseID); err != nil {
		return nil, fmt.Errorf("list course slots: %w", err)
	}
	return slots, nil
}

// Create inserts a slot.
func (r *CourseSlotRepository) Create(ctx context.Context, slot *models.CourseSlot) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO course_slots (id, course_id, start_date, end_date, address, meeting_link, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.ExecContext(ctx, query, slot.ID, slot.CourseID, slot.StartDate, slot.EndDate, slot.Address, slot.MeetingLink, slot.CreatedAt); err != nil {
		return fmt.Errorf("create course slot: %w", err)
	}
	return nil
}

// Update stores the dates and location of a slot.
func (r *CourseSlotRepository) Update(ctx context.Context, slot *models.CourseSlot) error {
	const query = `UPDATE course_slots SET start_date = $1, end_date = $2, address = $3, meeting_link = $4 WHERE id = $5`
	if _, err := r.db.ExecContext(ctx, query, slot.StartDate, slot.EndDate, slot.Address, slot.MeetingLink, slot.ID); err != nil {
		return fmt.Errorf("update course slot: %w", err)
	}
	return nil
}

// Delete removes a slot.
func (r *CourseSlotRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM course_slots WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete course slot: %w", err)
	}
	return nil
}
