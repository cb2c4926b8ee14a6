package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sophiemoustard/compani-api-sub005/internal/models"
)

const courseColumns = `id, type, sub_program_id, holding_id, misc, archived_at, expected_bills_count, max_trainees, sales_representative_id, created_at`

// CourseRepository handles persistence of courses and their membership sets.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// FindByID returns a course with its trainees, companies and trainers.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	if err := r.loadMembers(ctx, []*models.Course{&course}); err != nil {
		return nil, err
	}
	return &course, nil
}

// ListBySubProgram returns every course built on the sub-program, members included.
func (r *CourseRepository) ListBySubProgram(ctx context.Context, subProgramID string) ([]models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE sub_program_id = $1 ORDER BY created_at`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, subProgramID); err != nil {
		return nil, fmt.Errorf("list courses by sub program: %w", err)
	}
	ptrs := make([]*models.Course, len(courses))
	for i := range courses {
		ptrs[i] = &courses[i]
	}
	if err := r.loadMembers(ctx, ptrs); err != nil {
		return nil, err
	}
	return courses, nil
}

type courseMemberRow struct {
	CourseID string `db:"course_id"`
	MemberID string `db:"member_id"`
}

func (r *CourseRepository) loadMembers(ctx context.Context, courses []*models.Course) error {
	if len(courses) == 0 {
		return nil
	}
	ids := make([]string, len(courses))
	byID := make(map[string]*models.Course, len(courses))
	for i, c := range courses {
		ids[i] = c.ID
		c.Trainees, c.Companies, c.Trainers = []string{}, []string{}, []string{}
		byID[c.ID] = c
	}

	sets := []struct {
		name   string
		query  string
		assign func(c *models.Course, member string)
	}{
		{"trainees", `SELECT course_id, trainee_id AS member_id FROM course_trainees WHERE course_id = ANY($1) ORDER BY created_at`,
			func(c *models.Course, m string) { c.Trainees = append(c.Trainees, m) }},
		{"companies", `SELECT course_id, company_id AS member_id FROM course_companies WHERE course_id = ANY($1) ORDER BY created_at`,
			func(c *models.Course, m string) { c.Companies = append(c.Companies, m) }},
		{"trainers", `SELECT course_id, trainer_id AS member_id FROM course_trainers WHERE course_id = ANY($1)`,
			func(c *models.Course, m string) { c.Trainers = append(c.Trainers, m) }},
	}
	for _, set := range sets {
		var rows []courseMemberRow
		if err := r.db.SelectContext(ctx, &rows, set.query, pq.Array(ids)); err != nil {
			return fmt.Errorf("load course %s: %w", set.name, err)
		}
		for _, row := range rows {
			if c, ok := byID[row.CourseID]; ok {
				set.assign(c, row.MemberID)
			}
		}
	}
	return nil
}

// AddTrainee enrolls a trainee. It returns false when the trainee was already enrolled.
func (r *CourseRepository) AddTrainee(ctx context.Context, courseID, traineeID string) (bool, error) {
	const query = `INSERT INTO course_trainees (course_id, trainee_id, created_at) VALUES ($1, $2, $3)
ON CONFLICT (course_id, trainee_id) DO NOTHING`
	res, err := r.db.ExecContext(ctx, query, courseID, traineeID, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("add course trainee: %w", err)
	}
	return affected(res)
}

// RemoveTrainee unenrolls a trainee. It returns false when the trainee was not enrolled.
func (r *CourseRepository) RemoveTrainee(ctx context.Context, courseID, traineeID string) (bool, error) {
	const query = `DELETE FROM course_trainees WHERE course_id = $1 AND trainee_id = $2`
	res, err := r.db.ExecContext(ctx, query, courseID, traineeID)
	if err != nil {
		return false, fmt.Errorf("remove course trainee: %w", err)
	}
	return affected(res)
}

// AddCompany adds a served company. It returns false when the company was already served.
func (r *CourseRepository) AddCompany(ctx context.Context, courseID, companyID string) (bool, error) {
	const query = `INSERT INTO course_companies (course_id, company_id, created_at) VALUES ($1, $2, $3)
ON CONFLICT (course_id, company_id) DO NOTHING`
	res, err := r.db.ExecContext(ctx, query, courseID, companyID, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("add course company: %w", err)
	}
	return affected(res)
}

// RemoveCompany removes a served company. It returns false when the company was not served.
func (r *CourseRepository) RemoveCompany(ctx context.Context, courseID, companyID string) (bool, error) {
	const query = `DELETE FROM course_companies WHERE course_id = $1 AND company_id = $2`
	res, err := r.db.ExecContext(ctx, query, courseID, companyID)
	if err != nil {
		return false, fmt.Errorf("remove course company: %w", err)
	}
	return affected(res)
}

// Update applies the non-nil fields of the request.
func (r *CourseRepository) Update(ctx context.Context, courseID string, req models.UpdateCourseRequest) error {
	var sets []string
	var args []interface{}
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if req.Misc != nil {
		add("misc", *req.Misc)
	}
	if req.ExpectedBillsCount != nil {
		add("expected_bills_count", *req.ExpectedBillsCount)
	}
	if req.MaxTrainees != nil {
		add("max_trainees", *req.MaxTrainees)
	}
	if req.SalesRepresentativeID != nil {
		add("sales_representative_id", *req.SalesRepresentativeID)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, courseID)
	query := fmt.Sprintf("UPDATE courses SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return nil
}

// SetArchivedAt archives the course, or unarchives it when at is nil. It reports false when
// the course was already in the requested state.
func (r *CourseRepository) SetArchivedAt(ctx context.Context, courseID string, at *time.Time) (bool, error) {
	query := `UPDATE courses SET archived_at = $1 WHERE id = $2 AND archived_at IS NULL`
	if at == nil {
		query = `UPDATE courses SET archived_at = $1 WHERE id = $2 AND archived_at IS NOT NULL`
	}
	res, err := r.db.ExecContext(ctx, query, at, courseID)
	if err != nil {
		return false, fmt.Errorf("set course archived_at: %w", err)
	}
	return affected(res)
}
