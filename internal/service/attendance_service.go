package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sophiemoustard/compani-api-sub005/internal/models"
	appErrors "github.com/sophiemoustard/compani-api-sub005/pkg/errors"
)

type attendanceRepository interface {
	Create(ctx context.Context, attendance *models.Attendance) error
	BulkCreate(ctx context.Context, records []models.Attendance) ([]models.Attendance, error)
	ListBySlots(ctx context.Context, slotIDs []string, companyIDs []string) ([]models.Attendance, error)
	ListDetailsBySubProgram(ctx context.Context, subProgramID string) ([]models.AttendanceDetail, error)
	ListDetailsByTrainee(ctx context.Context, traineeID string) ([]models.AttendanceDetail, error)
	DeleteOne(ctx context.Context, slotID, traineeID string) (int64, error)
	DeleteBySlotForTrainees(ctx context.Context, slotID string, traineeIDs []string) (int64, error)
}

type slotFinder interface {
	FindByID(ctx context.Context, id string) (*models.CourseSlot, error)
}

type siblingCourseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
	ListBySubProgram(ctx context.Context, subProgramID string) ([]models.Course, error)
}

type holdingCompanyReader interface {
	ListIDsByHolding(ctx context.Context, holdingID string) ([]string, error)
}

type attendanceMembershipResolver interface {
	Resolve(ctx context.Context, course *models.Course, traineeIDs []string) (map[string]*string, error)
	CurrentCompanies(ctx context.Context, userIDs []string) (map[string]*string, error)
}

type traineeFinder interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type courseChecker interface {
	Check(ctx context.Context, actor models.Actor, course *models.Course, capability models.Capability) error
}

// AttendanceService records slot attendances and attributes each one to the trainee's company.
type AttendanceService struct {
	attendances attendanceRepository
	slots       slotFinder
	courses     siblingCourseReader
	companies   holdingCompanyReader
	resolver    attendanceMembershipResolver
	users       traineeFinder
	authz       courseChecker
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(
	attendances attendanceRepository,
	slots slotFinder,
	courses siblingCourseReader,
	companies holdingCompanyReader,
	resolver attendanceMembershipResolver,
	users traineeFinder,
	authz courseChecker,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{
		attendances: attendances,
		slots:       slots,
		courses:     courses,
		companies:   companies,
		resolver:    resolver,
		users:       users,
		authz:       authz,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
	}
}

// CreateSingle marks one trainee present. Enrolled trainees get their resolved company,
// anyone else must be a known user and gets the company they belong to today.
func (s *AttendanceService) CreateSingle(ctx context.Context, actor models.Actor, req models.CreateAttendanceRequest) (*models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	slot, course, err := s.loadSlot(ctx, actor, req.CourseSlotID)
	if err != nil {
		return nil, err
	}

	var companies map[string]*string
	if course.HasTrainee(req.TraineeID) {
		companies, err = s.resolver.Resolve(ctx, course, []string{req.TraineeID})
	} else {
		exists, lookupErr := s.users.Exists(ctx, req.TraineeID)
		if lookupErr != nil {
			return nil, appErrors.Internal(lookupErr, "failed to load trainee")
		}
		if !exists {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "trainee not found")
		}
		companies, err = s.resolver.CurrentCompanies(ctx, []string{req.TraineeID})
	}
	if err != nil {
		return nil, err
	}

	attendance := &models.Attendance{
		TraineeID:    req.TraineeID,
		CourseSlotID: slot.ID,
		CompanyID:    companies[req.TraineeID],
	}
	if err := s.attendances.Create(ctx, attendance); err != nil {
		if errors.Is(err, appErrors.ErrConflict) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "attendance already exists for this trainee and slot")
		}
		return nil, appErrors.Internal(err, "failed to create attendance")
	}
	s.metrics.RecordAttendancesCreated("single", 1)
	return attendance, nil
}

// CreateForSlot fills attendances for every enrolled trainee who has none yet on the slot.
// Calling it twice creates nothing the second time.
func (s *AttendanceService) CreateForSlot(ctx context.Context, actor models.Actor, slotID string) ([]models.Attendance, error) {
	slot, course, err := s.loadSlot(ctx, actor, slotID)
	if err != nil {
		return nil, err
	}
	if len(course.Trainees) == 0 {
		return []models.Attendance{}, nil
	}

	companies, err := s.resolver.Resolve(ctx, course, course.Trainees)
	if err != nil {
		return nil, err
	}
	records := make([]models.Attendance, 0, len(course.Trainees))
	for _, traineeID := range course.Trainees {
		records = append(records, models.Attendance{
			TraineeID:    traineeID,
			CourseSlotID: slot.ID,
			CompanyID:    companies[traineeID],
		})
	}

	inserted, err := s.attendances.BulkCreate(ctx, records)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to create slot attendances")
	}
	if inserted == nil {
		inserted = []models.Attendance{}
	}
	s.metrics.RecordAttendancesCreated("bulk", len(inserted))
	s.logger.Debug("slot attendances filled",
		zap.String("slot_id", slot.ID),
		zap.Int("enrolled", len(records)),
		zap.Int("created", len(inserted)),
	)
	return inserted, nil
}

// ListForSlots returns the slots' attendances visible to the actor.
func (s *AttendanceService) ListForSlots(ctx context.Context, actor models.Actor, slotIDs []string) ([]models.Attendance, error) {
	slotIDs = uniqueStrings(slotIDs)
	if len(slotIDs) == 0 {
		return []models.Attendance{}, nil
	}
	scope, err := s.companyScope(ctx, actor)
	if err != nil {
		return nil, err
	}
	if scope != nil && len(scope) == 0 {
		return []models.Attendance{}, nil
	}

	start := time.Now()
	attendances, err := s.attendances.ListBySlots(ctx, slotIDs, scope)
	s.metrics.ObserveDBQuery("attendances_by_slots", time.Since(start))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list attendances")
	}
	if attendances == nil {
		attendances = []models.Attendance{}
	}
	return attendances, nil
}

// ListUnsubscribed finds attendances recorded on courses of the same sub-program by trainees
// who are not enrolled in the reference course but are enrolled in one of its siblings.
func (s *AttendanceService) ListUnsubscribed(ctx context.Context, actor models.Actor, courseID string, filter models.UnsubscribedAttendanceFilter) (map[string][]models.UnsubscribedAttendance, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Internal(err, "failed to load course")
	}
	if err := s.authz.Check(ctx, actor, course, models.CapabilityRead); err != nil {
		return nil, err
	}

	siblings, err := s.courses.ListBySubProgram(ctx, course.SubProgramID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list sibling courses")
	}
	byID := make(map[string]*models.Course, len(siblings))
	enrolledElsewhere := make(map[string]bool)
	for i := range siblings {
		sibling := &siblings[i]
		byID[sibling.ID] = sibling
		if sibling.ID == course.ID {
			continue
		}
		for _, traineeID := range sibling.Trainees {
			enrolledElsewhere[traineeID] = true
		}
	}

	details, err := s.attendances.ListDetailsBySubProgram(ctx, course.SubProgramID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list sub-program attendances")
	}
	scope, err := s.companyScope(ctx, actor)
	if err != nil {
		return nil, err
	}

	result := make(map[string][]models.UnsubscribedAttendance)
	for _, detail := range details {
		if course.HasTrainee(detail.TraineeID) || !enrolledElsewhere[detail.TraineeID] {
			continue
		}
		if owner, ok := byID[detail.CourseSummary.ID]; ok && owner.HasTrainee(detail.TraineeID) {
			continue
		}
		if filter.TraineeID != "" && detail.TraineeID != filter.TraineeID {
			continue
		}
		if filter.CompanyID != "" && (detail.CompanyID == nil || *detail.CompanyID != filter.CompanyID) {
			continue
		}
		if !inCompanyScope(scope, detail.CompanyID) {
			continue
		}
		result[detail.TraineeID] = append(result[detail.TraineeID], unsubscribedAttendance(detail))
	}
	return result, nil
}

// GetTraineeUnsubscribedAttendances returns the trainee's attendances on courses they are not
// enrolled in, grouped by program.
func (s *AttendanceService) GetTraineeUnsubscribedAttendances(ctx context.Context, actor models.Actor, traineeID string) (map[string][]models.UnsubscribedAttendance, error) {
	if traineeID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "trainee is required")
	}
	details, err := s.attendances.ListDetailsByTrainee(ctx, traineeID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list trainee attendances")
	}
	scope, err := s.companyScope(ctx, actor)
	if err != nil {
		return nil, err
	}

	enrolled := make(map[string]bool)
	result := make(map[string][]models.UnsubscribedAttendance)
	for _, detail := range details {
		if !inCompanyScope(scope, detail.CompanyID) {
			continue
		}
		isEnrolled, seen := enrolled[detail.CourseSummary.ID]
		if !seen {
			course, err := s.courses.FindByID(ctx, detail.CourseSummary.ID)
			switch {
			case errors.Is(err, sql.ErrNoRows):
				isEnrolled = false
			case err != nil:
				return nil, appErrors.Internal(err, "failed to load course")
			default:
				isEnrolled = course.HasTrainee(traineeID)
			}
			enrolled[detail.CourseSummary.ID] = isEnrolled
		}
		if isEnrolled {
			continue
		}
		result[detail.ProgramID] = append(result[detail.ProgramID], unsubscribedAttendance(detail))
	}
	return result, nil
}

// Delete removes one trainee's attendance, or every enrolled trainee's attendance on the slot.
// Attendances of trainees outside the roster are kept.
func (s *AttendanceService) Delete(ctx context.Context, actor models.Actor, filter models.DeleteAttendanceFilter) (int64, error) {
	if err := s.validator.Struct(filter); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid filter")
	}
	slot, course, err := s.loadSlot(ctx, actor, filter.CourseSlotID)
	if err != nil {
		return 0, err
	}

	if filter.TraineeID != "" {
		deleted, err := s.attendances.DeleteOne(ctx, slot.ID, filter.TraineeID)
		if err != nil {
			return 0, appErrors.Internal(err, "failed to delete attendance")
		}
		if deleted == 0 {
			return 0, appErrors.Clone(appErrors.ErrNotFound, "attendance not found")
		}
		return deleted, nil
	}

	deleted, err := s.attendances.DeleteBySlotForTrainees(ctx, slot.ID, course.Trainees)
	if err != nil {
		return 0, appErrors.Internal(err, "failed to delete slot attendances")
	}
	return deleted, nil
}

// loadSlot fetches a planned slot and its course, then checks the actor may manage attendances.
func (s *AttendanceService) loadSlot(ctx context.Context, actor models.Actor, slotID string) (*models.CourseSlot, *models.Course, error) {
	slot, err := s.slots.FindByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "course slot not found")
		}
		return nil, nil, appErrors.Internal(err, "failed to load course slot")
	}
	course, err := s.courses.FindByID(ctx, slot.CourseID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, nil, appErrors.Internal(err, "failed to load course")
	}
	if errors.Is(err, sql.ErrNoRows) {
		course = nil
	}
	if err := s.authz.Check(ctx, actor, course, models.CapabilityManageAttendances); err != nil {
		return nil, nil, err
	}
	if !slot.IsPlanned() {
		return nil, nil, appErrors.Clone(appErrors.ErrInvalidRequest, "course slot has no dates")
	}
	return slot, course, nil
}

// companyScope returns nil when the actor sees every company, otherwise the visible company IDs.
func (s *AttendanceService) companyScope(ctx context.Context, actor models.Actor) ([]string, error) {
	if actor.HasVendorRole() {
		return nil, nil
	}
	ids := make([]string, 0, 1)
	if actor.IsHoldingAdmin() {
		holdingCompanies, err := s.companies.ListIDsByHolding(ctx, actor.HoldingID)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to list holding companies")
		}
		ids = append(ids, holdingCompanies...)
	}
	if actor.HasClientRole() {
		ids = append(ids, actor.CompanyID)
	}
	return uniqueStrings(ids), nil
}

func inCompanyScope(scope []string, companyID *string) bool {
	if scope == nil {
		return true
	}
	if companyID == nil {
		return false
	}
	for _, id := range scope {
		if id == *companyID {
			return true
		}
	}
	return false
}

func unsubscribedAttendance(detail models.AttendanceDetail) models.UnsubscribedAttendance {
	return models.UnsubscribedAttendance{
		AttendanceID: detail.AttendanceID,
		TraineeID:    detail.TraineeID,
		CompanyID:    detail.CompanyID,
		Slot: models.SlotSummary{
			ID:        detail.SlotID,
			StartDate: detail.StartDate,
			EndDate:   detail.EndDate,
		},
		Course: detail.CourseSummary,
	}
}
