package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sophiemoustard/compani-api-sub005/internal/models"
	appErrors "github.com/sophiemoustard/compani-api-sub005/pkg/errors"
)

func TestAuthorizeMapsOutcomesToErrors(t *testing.T) {
	env := newTestEnv(t)
	env.addCourse(&models.Course{ID: "C", Type: models.CourseTypeIntra, Companies: []string{"A"}})
	ctx := context.Background()

	course, err := env.authz.Authorize(ctx, clientActor("A"), "C", models.CapabilityEdit)
	require.NoError(t, err)
	assert.Equal(t, "C", course.ID)

	_, err = env.authz.Authorize(ctx, clientActor("B"), "C", models.CapabilityEdit)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	_, err = env.authz.Authorize(ctx, adminActor, "missing", models.CapabilityRead)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = env.authz.Authorize(ctx, adminActor, "C", models.CapabilityManageCompanies)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidRequest))
}

func TestAuthorizeSurfacesStoreFailures(t *testing.T) {
	env := newTestEnv(t)
	env.courses.err = errors.New("timeout")

	_, err := env.authz.Authorize(context.Background(), adminActor, "C", models.CapabilityRead)
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
}

func TestDecideResolvesTraineeCompaniesOnInterCourses(t *testing.T) {
	env := newTestEnv(t)
	course := env.addCourse(&models.Course{ID: "C", Type: models.CourseTypeInterB2B, Companies: []string{"A", "B"}, Trainees: []string{"t1"}})
	env.userCompanies.add("t1", "B", testNow.AddDate(-1, 0, 0), nil)
	ctx := context.Background()

	decision, err := env.authz.Decide(ctx, clientActor("B"), course, models.CapabilityRead)
	require.NoError(t, err)
	assert.True(t, decision.Granted())

	decision, err = env.authz.Decide(ctx, clientActor("A"), course, models.CapabilityRead)
	require.NoError(t, err)
	assert.Equal(t, models.DecisionDenied, decision.Outcome)
}

func TestDecisionError(t *testing.T) {
	assert.NoError(t, DecisionError(models.Decision{Outcome: models.DecisionGranted}))

	err := DecisionError(models.Decision{Outcome: models.DecisionDenied, Reason: "course is archived"})
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
	assert.Equal(t, "course is archived", appErr.Message)
}
