package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/sophiemoustard/compani-api-sub005/internal/models"
	appErrors "github.com/sophiemoustard/compani-api-sub005/pkg/errors"
)

type courseFinder interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type traineeCompanyResolver interface {
	Resolve(ctx context.Context, course *models.Course, traineeIDs []string) (map[string]*string, error)
}

// AuthorizationService loads what a course decision needs and applies Decide.
type AuthorizationService struct {
	courses  courseFinder
	resolver traineeCompanyResolver
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewAuthorizationService constructs the service.
func NewAuthorizationService(courses courseFinder, resolver traineeCompanyResolver, metrics *MetricsService, logger *zap.Logger) *AuthorizationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthorizationService{courses: courses, resolver: resolver, metrics: metrics, logger: logger}
}

// Authorize loads the course and checks the capability. The loaded course is returned on success.
func (s *AuthorizationService) Authorize(ctx context.Context, actor models.Actor, courseID string, capability models.Capability) (*models.Course, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Internal(err, "failed to load course")
		}
		course = nil
	}
	if err := s.Check(ctx, actor, course, capability); err != nil {
		return nil, err
	}
	return course, nil
}

// Check decides on an already loaded course; a nil course yields NotFound.
func (s *AuthorizationService) Check(ctx context.Context, actor models.Actor, course *models.Course, capability models.Capability) error {
	decision, err := s.Decide(ctx, actor, course, capability)
	if err != nil {
		return err
	}
	if decision.Granted() {
		return nil
	}
	courseID := ""
	if course != nil {
		courseID = course.ID
	}
	s.logger.Info("course access refused",
		zap.String("user_id", actor.UserID),
		zap.String("course_id", courseID),
		zap.String("capability", string(capability)),
		zap.String("outcome", string(decision.Outcome)),
		zap.String("reason", decision.Reason))
	return DecisionError(decision)
}

// Decide builds the course scope and returns the raw decision.
func (s *AuthorizationService) Decide(ctx context.Context, actor models.Actor, course *models.Course, capability models.Capability) (models.Decision, error) {
	scope := CourseScope{Course: course}
	if course != nil && course.Type == models.CourseTypeInterB2B && actor.HasClientRole() && !actor.IsVendorAdmin() {
		companies, err := s.resolver.Resolve(ctx, course, course.Trainees)
		if err != nil {
			return models.Decision{}, err
		}
		for _, traineeID := range course.Trainees {
			if companyID := companies[traineeID]; companyID != nil {
				scope.TraineeCompanies = append(scope.TraineeCompanies, *companyID)
			}
		}
	}
	decision := Decide(actor, scope, capability)
	s.metrics.RecordDecision(capability, decision.Outcome)
	return decision, nil
}

// DecisionError maps a refused decision onto the error taxonomy. It returns nil for a granted one.
func DecisionError(decision models.Decision) error {
	switch decision.Outcome {
	case models.DecisionGranted:
		return nil
	case models.DecisionNotFound:
		return appErrors.Clone(appErrors.ErrNotFound, decision.Reason)
	case models.DecisionInvalidRequest:
		return appErrors.Clone(appErrors.ErrInvalidRequest, decision.Reason)
	case models.DecisionDenied:
		return appErrors.Clone(appErrors.ErrForbidden, decision.Reason)
	default:
		return appErrors.Clone(appErrors.ErrForbidden, "")
	}
}
