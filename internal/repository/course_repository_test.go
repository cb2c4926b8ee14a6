package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sophiemoustard/compani-api-sub005/internal/models"
)

var courseTestColumns = []string{"id", "type", "sub_program_id", "holding_id", "misc", "archived_at", "expected_bills_count", "max_trainees", "sales_representative_id", "created_at"}

func TestCourseRepositoryFindByIDLoadsMembers(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM courses WHERE id = $1`)).
		WithArgs("course-1").
		WillReturnRows(sqlmock.NewRows(courseTestColumns).
			AddRow("course-1", "intra", "sp-1", nil, "group A", nil, 2, 12, nil, now))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM course_trainees WHERE course_id = ANY($1)`)).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"course_id", "member_id"}).
			AddRow("course-1", "t1").
			AddRow("course-1", "t2"))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM course_companies WHERE course_id = ANY($1)`)).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"course_id", "member_id"}).AddRow("course-1", "company-A"))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM course_trainers WHERE course_id = ANY($1)`)).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"course_id", "member_id"}))

	course, err := repo.FindByID(context.Background(), "course-1")
	require.NoError(t, err)
	assert.Equal(t, models.CourseTypeIntra, course.Type)
	assert.Equal(t, []string{"t1", "t2"}, course.Trainees)
	assert.Equal(t, []string{"company-A"}, course.Companies)
	assert.NotNil(t, course.Trainers)
	assert.Empty(t, course.Trainers)
	require.NotNil(t, course.MaxTrainees)
	assert.Equal(t, 12, *course.MaxTrainees)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM courses WHERE id = $1`)).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestCourseRepositoryMembershipChangesReportNoOps(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO course_trainees`)).
		WithArgs("course-1", "t1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM course_companies WHERE course_id = $1 AND company_id = $2`)).
		WithArgs("course-1", "company-A").
		WillReturnResult(sqlmock.NewResult(0, 1))

	added, err := repo.AddTrainee(context.Background(), "course-1", "t1")
	require.NoError(t, err)
	assert.False(t, added)

	removed, err := repo.RemoveCompany(context.Background(), "course-1", "company-A")
	require.NoError(t, err)
	assert.True(t, removed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryUpdateSetsOnlyProvidedFields(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)
	misc := "group B"
	max := 8

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE courses SET misc = $1, max_trainees = $2 WHERE id = $3`)).
		WithArgs("group B", 8, "course-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Update(context.Background(), "course-1", models.UpdateCourseRequest{Misc: &misc, MaxTrainees: &max}))
	require.NoError(t, repo.Update(context.Background(), "course-1", models.UpdateCourseRequest{}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositorySetArchivedAt(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)
	now := time.Now()

	mock.ExpectExec(regexp.QuoteMeta(`WHERE id = $2 AND archived_at IS NULL`)).
		WithArgs(now, "course-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`WHERE id = $2 AND archived_at IS NOT NULL`)).
		WithArgs(nil, "course-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	archived, err := repo.SetArchivedAt(context.Background(), "course-1", &now)
	require.NoError(t, err)
	assert.False(t, archived)

	unarchived, err := repo.SetArchivedAt(context.Background(), "course-1", nil)
	require.NoError(t, err)
	assert.True(t, unarchived)
	require.NoError(t, mock.ExpectationsWereMet())
}
