package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sophiemoustard/compani-api-sub005/internal/models"
	appErrors "github.com/sophiemoustard/compani-api-sub005/pkg/errors"
)

// ErrAttendanceExists is returned when a (trainee, slot) attendance is already stored.
var ErrAttendanceExists = appErrors.Clone(appErrors.ErrConflict, "attendance already exists for this trainee and slot")

const attendanceDetailSelect = `SELECT a.id AS attendance_id, a.trainee_id, a.company_id,
        cs.id AS slot_id, cs.start_date, cs.end_date,
        c.id AS course_id, c.type AS course_type, c.misc AS course_misc, c.sub_program_id, sp.program_id
        FROM attendances a
        JOIN course_slots cs ON cs.id = a.course_slot_id
        JOIN courses c ON c.id = cs.course_id
        JOIN sub_programs sp ON sp.id = c.sub_program_id`

// AttendanceRepository handles persistence of attendances.
// Uniqueness of (trainee_id, course_slot_id) is enforced by the table's unique index.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Create inserts one attendance, returning ErrAttendanceExists on a duplicate.
func (r *AttendanceRepository) Create(ctx context.Context, attendance *models.Attendance) error {
	if attendance.ID == "" {
		attendance.ID = uuid.NewString()
	}
	if attendance.CreatedAt.IsZero() {
		attendance.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO attendances (id, trainee_id, course_slot_id, company_id, created_at) VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.db.ExecContext(ctx, query, attendance.ID, attendance.TraineeID, attendance.CourseSlotID, attendance.CompanyID, attendance.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrAttendanceExists
		}
		return fmt.Errorf("create attendance: %w", err)
	}
	return nil
}

// BulkCreate inserts the records in one transaction, skipping pairs that already exist.
// It returns the records actually inserted.
func (r *AttendanceRepository) BulkCreate(ctx context.Context, records []models.Attendance) ([]models.Attendance, error) {
	if len(records) == 0 {
		return nil, nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin bulk attendance: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			_ = tx.Rollback()
		}
	}()

	const query = `INSERT INTO attendances (id, trainee_id, course_slot_id, company_id, created_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (trainee_id, course_slot_id) DO NOTHING RETURNING id`
	now := time.Now().UTC()
	inserted := make([]models.Attendance, 0, len(records))
	for i := range records {
		rec := records[i]
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
		}
		var insertedID string
		if err := tx.QueryRowxContext(ctx, query, rec.ID, rec.TraineeID, rec.CourseSlotID, rec.CompanyID, rec.CreatedAt).Scan(&insertedID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return nil, fmt.Errorf("bulk insert attendance: %w", err)
		}
		inserted = append(inserted, rec)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit bulk attendance: %w", err)
	}
	commit = true
	return inserted, nil
}

// ListBySlots returns attendances of the slots. A nil companyIDs disables company scoping;
// a non-nil one keeps only attendances attributed to those companies.
func (r *AttendanceRepository) ListBySlots(ctx context.Context, slotIDs []string, companyIDs []string) ([]models.Attendance, error) {
	query := `SELECT id, trainee_id, course_slot_id, company_id, created_at FROM attendances WHERE course_slot_id = ANY($1)`
	args := []interface{}{pq.Array(slotIDs)}
	if companyIDs != nil {
		query += ` AND company_id = ANY($2)`
		args = append(args, pq.Array(companyIDs))
	}
	query += ` ORDER BY created_at`
	var attendances []models.Attendance
	if err := r.db.SelectContext(ctx, &attendances, query, args...); err != nil {
		return nil, fmt.Errorf("list attendances by slots: %w", err)
	}
	return attendances, nil
}

// ListDetailsBySubProgram returns attendances on slots of every course built on the sub-program.
func (r *AttendanceRepository) ListDetailsBySubProgram(ctx context.Context, subProgramID string) ([]models.AttendanceDetail, error) {
	query := attendanceDetailSelect + ` WHERE c.sub_program_id = $1 ORDER BY cs.start_date`
	var details []models.AttendanceDetail
	if err := r.db.SelectContext(ctx, &details, query, subProgramID); err != nil {
		return nil, fmt.Errorf("list attendances by sub program: %w", err)
	}
	return details, nil
}

// ListDetailsByTrainee returns every attendance of a trainee with slot and course context.
func (r *AttendanceRepository) ListDetailsByTrainee(ctx context.Context, traineeID string) ([]models.AttendanceDetail, error) {
	query := attendanceDetailSelect + ` WHERE a.trainee_id = $1 ORDER BY cs.start_date`
	var details []models.AttendanceDetail
	if err := r.db.SelectContext(ctx, &details, query, traineeID); err != nil {
		return nil, fmt.Errorf("list attendances by trainee: %w", err)
	}
	return details, nil
}

// DeleteOne removes the attendance of a trainee at a slot and reports how many rows went.
func (r *AttendanceRepository) DeleteOne(ctx context.Context, slotID, traineeID string) (int64, error) {
	const query = `DELETE FROM attendances WHERE course_slot_id = $1 AND trainee_id = $2`
	res, err := r.db.ExecContext(ctx, query, slotID, traineeID)
	if err != nil {
		return 0, fmt.Errorf("delete attendance: %w", err)
	}
	return res.RowsAffected()
}

// DeleteBySlotForTrainees removes the slot's attendances belonging to the listed trainees only.
func (r *AttendanceRepository) DeleteBySlotForTrainees(ctx context.Context, slotID string, traineeIDs []string) (int64, error) {
	if len(traineeIDs) == 0 {
		return 0, nil
	}
	const query = `DELETE FROM attendances WHERE course_slot_id = $1 AND trainee_id = ANY($2)`
	res, err := r.db.ExecContext(ctx, query, slotID, pq.Array(traineeIDs))
	if err != nil {
		return 0, fmt.Errorf("delete slot attendances: %w", err)
	}
	return res.RowsAffected()
}

// CountBySlotExcludingTrainees counts the slot's attendances of trainees outside the list.
func (r *AttendanceRepository) CountBySlotExcludingTrainees(ctx context.Context, slotID string, traineeIDs []string) (int, error) {
	query := `SELECT COUNT(*) FROM attendances WHERE course_slot_id = $1 AND NOT (trainee_id = ANY($2))`
	args := []interface{}{slotID, pq.Array(traineeIDs)}
	if len(traineeIDs) == 0 {
		query = `SELECT COUNT(*) FROM attendances WHERE course_slot_id = $1`
		args = args[:1]
	}
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count unsubscribed slot attendances: %w", err)
	}
	return count, nil
}
