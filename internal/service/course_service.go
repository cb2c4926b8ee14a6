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

type courseRepository interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
	AddTrainee(ctx context.Context, courseID, traineeID string) (bool, error)
	RemoveTrainee(ctx context.Context, courseID, traineeID string) (bool, error)
	AddCompany(ctx context.Context, courseID, companyID string) (bool, error)
	RemoveCompany(ctx context.Context, courseID, companyID string) (bool, error)
	Update(ctx context.Context, courseID string, req models.UpdateCourseRequest) error
	SetArchivedAt(ctx context.Context, courseID string, at *time.Time) (bool, error)
}

type courseSlotRepository interface {
	FindByID(ctx context.Context, id string) (*models.CourseSlot, error)
	ListByCourse(ctx context.Context, courseID string) ([]models.CourseSlot, error)
	Create(ctx context.Context, slot *models.CourseSlot) error
	Update(ctx context.Context, slot *models.CourseSlot) error
	Delete(ctx context.Context, id string) error
}

type companyFinder interface {
	FindByID(ctx context.Context, id string) (*models.Company, error)
}

type billingReader interface {
	CompanyHasBills(ctx context.Context, courseID, companyID string) (bool, error)
	CompanyHasAttendanceSheets(ctx context.Context, courseID, companyID string) (bool, error)
}

type slotAttendanceRepository interface {
	DeleteBySlotForTrainees(ctx context.Context, slotID string, traineeIDs []string) (int64, error)
	CountBySlotExcludingTrainees(ctx context.Context, slotID string, traineeIDs []string) (int, error)
}

type courseHistoryWriter interface {
	AppendSlotCreation(ctx context.Context, slot *models.CourseSlot, actorID string) (*models.CourseHistory, error)
	AppendSlotEdition(ctx context.Context, before, after *models.CourseSlot, actorID string) (*models.CourseHistory, error)
	AppendSlotDeletion(ctx context.Context, slot *models.CourseSlot, actorID string) (*models.CourseHistory, error)
	AppendTraineeAddition(ctx context.Context, courseID, traineeID string, companyID *string, actorID string) (*models.CourseHistory, error)
	AppendTraineeDeletion(ctx context.Context, courseID, traineeID string, companyID *string, actorID string) (*models.CourseHistory, error)
	AppendCompanyAddition(ctx context.Context, courseID, companyID, actorID string) (*models.CourseHistory, error)
	AppendCompanyDeletion(ctx context.Context, courseID, companyID, actorID string) (*models.CourseHistory, error)
	TraineesEverEnrolled(ctx context.Context, courseID string) ([]string, error)
}

type courseAuthorizer interface {
	Authorize(ctx context.Context, actor models.Actor, courseID string, capability models.Capability) (*models.Course, error)
	Check(ctx context.Context, actor models.Actor, course *models.Course, capability models.Capability) error
}

// CourseService applies course mutations. Every mutation is authorized first and recorded in the
// course history afterwards.
type CourseService struct {
	courses     courseRepository
	slots       courseSlotRepository
	companies   companyFinder
	billing     billingReader
	attendances slotAttendanceRepository
	history     courseHistoryWriter
	resolver    attendanceMembershipResolver
	authz       courseAuthorizer
	validator   *validator.Validate
	logger      *zap.Logger
	location    *time.Location
	now         func() time.Time
}

// CourseServiceDeps groups the collaborators of CourseService.
type CourseServiceDeps struct {
	Courses     courseRepository
	Slots       courseSlotRepository
	Companies   companyFinder
	Billing     billingReader
	Attendances slotAttendanceRepository
	History     courseHistoryWriter
	Resolver    attendanceMembershipResolver
	Authz       courseAuthorizer
	Validator   *validator.Validate
	Logger      *zap.Logger
	Location    *time.Location
}

// NewCourseService constructs the course service.
func NewCourseService(deps CourseServiceDeps) *CourseService {
	if deps.Validator == nil {
		deps.Validator = validator.New()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	return &CourseService{
		courses:     deps.Courses,
		slots:       deps.Slots,
		companies:   deps.Companies,
		billing:     deps.Billing,
		attendances: deps.Attendances,
		history:     deps.History,
		resolver:    deps.Resolver,
		authz:       deps.Authz,
		validator:   deps.Validator,
		logger:      deps.Logger,
		location:    deps.Location,
		now:         time.Now,
	}
}

// AddTrainee enrolls a trainee whose current company already takes part in the course.
func (s *CourseService) AddTrainee(ctx context.Context, actor models.Actor, courseID string, req models.AddTraineeRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	course, err := s.authz.Authorize(ctx, actor, courseID, models.CapabilityManageTrainees)
	if err != nil {
		return err
	}
	if course.HasTrainee(req.TraineeID) {
		return appErrors.Clone(appErrors.ErrConflict, "trainee is already registered to the course")
	}
	if course.Type == models.CourseTypeIntra && course.MaxTrainees != nil && len(course.Trainees) >= *course.MaxTrainees {
		return appErrors.Clone(appErrors.ErrConflict, "course has reached its maximum number of trainees")
	}

	current, err := s.resolver.CurrentCompanies(ctx, []string{req.TraineeID})
	if err != nil {
		return err
	}
	companyID := current[req.TraineeID]
	if companyID == nil {
		return appErrors.Clone(appErrors.ErrInvalidRequest, "trainee has no current company")
	}
	if !course.HasCompany(*companyID) {
		return appErrors.Clone(appErrors.ErrInvalidRequest, "trainee's company is not attached to the course")
	}
	if err := s.ensureCompanyInActorScope(ctx, actor, companyID); err != nil {
		return err
	}

	added, err := s.courses.AddTrainee(ctx, course.ID, req.TraineeID)
	if err != nil {
		return appErrors.Internal(err, "failed to add trainee")
	}
	if !added {
		return appErrors.Clone(appErrors.ErrConflict, "trainee is already registered to the course")
	}
	_, err = s.history.AppendTraineeAddition(ctx, course.ID, req.TraineeID, companyID, actor.UserID)
	return s.recordFailure(err, course.ID, "trainee addition")
}

// RemoveTrainee unregisters a trainee, recording the company they were enrolled under.
func (s *CourseService) RemoveTrainee(ctx context.Context, actor models.Actor, courseID, traineeID string) error {
	course, err := s.authz.Authorize(ctx, actor, courseID, models.CapabilityManageTrainees)
	if err != nil {
		return err
	}
	if !course.HasTrainee(traineeID) {
		return appErrors.Clone(appErrors.ErrNotFound, "trainee is not registered to the course")
	}
	resolved, err := s.resolver.Resolve(ctx, course, []string{traineeID})
	if err != nil {
		return err
	}
	companyID := resolved[traineeID]
	if err := s.ensureCompanyInActorScope(ctx, actor, companyID); err != nil {
		return err
	}

	removed, err := s.courses.RemoveTrainee(ctx, course.ID, traineeID)
	if err != nil {
		return appErrors.Internal(err, "failed to remove trainee")
	}
	if !removed {
		return appErrors.Clone(appErrors.ErrNotFound, "trainee is not registered to the course")
	}
	_, err = s.history.AppendTraineeDeletion(ctx, course.ID, traineeID, companyID, actor.UserID)
	return s.recordFailure(err, course.ID, "trainee deletion")
}

// AddCompany attaches a company to a multi-company course.
func (s *CourseService) AddCompany(ctx context.Context, actor models.Actor, courseID string, req models.AddCompanyRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	course, err := s.authz.Authorize(ctx, actor, courseID, models.CapabilityManageCompanies)
	if err != nil {
		return err
	}
	company, err := s.companies.FindByID(ctx, req.CompanyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "company not found")
		}
		return appErrors.Internal(err, "failed to load company")
	}
	if course.HasCompany(company.ID) {
		return appErrors.Clone(appErrors.ErrConflict, "company is already attached to the course")
	}
	if course.Type == models.CourseTypeIntraHolding && !sameHolding(course.HoldingID, company.HoldingID) {
		return appErrors.Clone(appErrors.ErrInvalidRequest, "company does not belong to the course holding")
	}

	added, err := s.courses.AddCompany(ctx, course.ID, company.ID)
	if err != nil {
		return appErrors.Internal(err, "failed to add company")
	}
	if !added {
		return appErrors.Clone(appErrors.ErrConflict, "company is already attached to the course")
	}
	_, err = s.history.AppendCompanyAddition(ctx, course.ID, company.ID, actor.UserID)
	return s.recordFailure(err, course.ID, "company addition")
}

// RemoveCompany detaches a company nothing in the course still refers to.
func (s *CourseService) RemoveCompany(ctx context.Context, actor models.Actor, courseID, companyID string) error {
	course, err := s.authz.Authorize(ctx, actor, courseID, models.CapabilityManageCompanies)
	if err != nil {
		return err
	}
	if !course.HasCompany(companyID) {
		return appErrors.Clone(appErrors.ErrNotFound, "company is not attached to the course")
	}
	if err := s.ensureCompanyUnused(ctx, course, companyID); err != nil {
		return err
	}

	removed, err := s.courses.RemoveCompany(ctx, course.ID, companyID)
	if err != nil {
		return appErrors.Internal(err, "failed to remove company")
	}
	if !removed {
		return appErrors.Clone(appErrors.ErrNotFound, "company is not attached to the course")
	}
	_, err = s.history.AppendCompanyDeletion(ctx, course.ID, companyID, actor.UserID)
	return s.recordFailure(err, course.ID, "company deletion")
}

func (s *CourseService) ensureCompanyUnused(ctx context.Context, course *models.Course, companyID string) error {
	former, err := s.history.TraineesEverEnrolled(ctx, course.ID)
	if err != nil {
		return err
	}
	trainees := uniqueStrings(append(append([]string{}, course.Trainees...), former...))
	if len(trainees) > 0 {
		resolved, err := s.resolver.Resolve(ctx, course, trainees)
		if err != nil {
			return err
		}
		for _, traineeID := range trainees {
			if id := resolved[traineeID]; id != nil && *id == companyID {
				return appErrors.Clone(appErrors.ErrConflict, "trainees of this company are registered to the course")
			}
		}
	}

	hasBills, err := s.billing.CompanyHasBills(ctx, course.ID, companyID)
	if err != nil {
		return appErrors.Internal(err, "failed to check course bills")
	}
	if hasBills {
		return appErrors.Clone(appErrors.ErrConflict, "company has bills on this course")
	}
	hasSheets, err := s.billing.CompanyHasAttendanceSheets(ctx, course.ID, companyID)
	if err != nil {
		return appErrors.Internal(err, "failed to check attendance sheets")
	}
	if hasSheets {
		return appErrors.Clone(appErrors.ErrConflict, "company has attendance sheets on this course")
	}
	return nil
}

// CreateSlot adds a slot to the course, planned or not.
func (s *CourseService) CreateSlot(ctx context.Context, actor models.Actor, courseID string, req models.CreateSlotRequest) (*models.CourseSlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	course, err := s.authz.Authorize(ctx, actor, courseID, models.CapabilityManageSlots)
	if err != nil {
		return nil, err
	}
	if err := s.validateSlotDates(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}

	slot := &models.CourseSlot{
		CourseID:    course.ID,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Address:     req.Address,
		MeetingLink: req.MeetingLink,
	}
	if err := s.slots.Create(ctx, slot); err != nil {
		return nil, appErrors.Internal(err, "failed to create course slot")
	}
	_, err = s.history.AppendSlotCreation(ctx, slot, actor.UserID)
	if err := s.recordFailure(err, course.ID, "slot creation"); err != nil {
		return nil, err
	}
	return slot, nil
}

// UpdateSlot replaces the slot's dates and location.
func (s *CourseService) UpdateSlot(ctx context.Context, actor models.Actor, slotID string, req models.UpdateSlotRequest) (*models.CourseSlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	before, err := s.findSlot(ctx, slotID)
	if err != nil {
		return nil, err
	}
	course, err := s.authz.Authorize(ctx, actor, before.CourseID, models.CapabilityManageSlots)
	if err != nil {
		return nil, err
	}
	if err := s.validateSlotDates(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}

	after := *before
	after.StartDate = req.StartDate
	after.EndDate = req.EndDate
	after.Address = req.Address
	after.MeetingLink = req.MeetingLink

	if before.IsPlanned() && !after.IsPlanned() {
		count, err := s.attendances.CountBySlotExcludingTrainees(ctx, before.ID, nil)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to count slot attendances")
		}
		if count > 0 {
			return nil, appErrors.Clone(appErrors.ErrConflict, "slot dates cannot be removed while attendances exist")
		}
	}

	if err := s.slots.Update(ctx, &after); err != nil {
		return nil, appErrors.Internal(err, "failed to update course slot")
	}
	_, err = s.history.AppendSlotEdition(ctx, before, &after, actor.UserID)
	if err := s.recordFailure(err, course.ID, "slot edition"); err != nil {
		return nil, err
	}
	return &after, nil
}

// DeleteSlot removes a slot and the attendances of its enrolled trainees. Attendances of other
// trainees block the deletion.
func (s *CourseService) DeleteSlot(ctx context.Context, actor models.Actor, slotID string) error {
	slot, err := s.findSlot(ctx, slotID)
	if err != nil {
		return err
	}
	course, err := s.authz.Authorize(ctx, actor, slot.CourseID, models.CapabilityManageSlots)
	if err != nil {
		return err
	}

	unsubscribed, err := s.attendances.CountBySlotExcludingTrainees(ctx, slot.ID, course.Trainees)
	if err != nil {
		return appErrors.Internal(err, "failed to count slot attendances")
	}
	if unsubscribed > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "slot has attendances of trainees not registered to the course")
	}
	if _, err := s.attendances.DeleteBySlotForTrainees(ctx, slot.ID, course.Trainees); err != nil {
		return appErrors.Internal(err, "failed to delete slot attendances")
	}
	if err := s.slots.Delete(ctx, slot.ID); err != nil {
		return appErrors.Internal(err, "failed to delete course slot")
	}
	_, err = s.history.AppendSlotDeletion(ctx, slot, actor.UserID)
	return s.recordFailure(err, course.ID, "slot deletion")
}

// Update edits general course fields. Billing counts and the sales representative need
// administrator rights on top of the edit capability.
func (s *CourseService) Update(ctx context.Context, actor models.Actor, courseID string, req models.UpdateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if req.Empty() {
		return nil, appErrors.Clone(appErrors.ErrInvalidRequest, "nothing to update")
	}
	course, err := s.authz.Authorize(ctx, actor, courseID, models.CapabilityEdit)
	if err != nil {
		return nil, err
	}
	if req.TouchesBillingCounts() {
		if err := s.authz.Check(ctx, actor, course, models.CapabilityEditBillingCounts); err != nil {
			return nil, err
		}
		if course.Type != models.CourseTypeIntra {
			return nil, appErrors.Clone(appErrors.ErrInvalidRequest, "expected bills count and max trainees only apply to intra courses")
		}
		if req.MaxTrainees != nil && *req.MaxTrainees < len(course.Trainees) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "course already has more trainees than the requested maximum")
		}
	}
	if req.SalesRepresentativeID != nil {
		if err := s.authz.Check(ctx, actor, course, models.CapabilityEditSalesRepresentative); err != nil {
			return nil, err
		}
	}

	if err := s.courses.Update(ctx, course.ID, req); err != nil {
		return nil, appErrors.Internal(err, "failed to update course")
	}
	if req.Misc != nil {
		course.Misc = req.Misc
	}
	if req.ExpectedBillsCount != nil {
		course.ExpectedBillsCount = req.ExpectedBillsCount
	}
	if req.MaxTrainees != nil {
		course.MaxTrainees = req.MaxTrainees
	}
	if req.SalesRepresentativeID != nil {
		course.SalesRepresentativeID = req.SalesRepresentativeID
	}
	return course, nil
}

// Archive freezes a course once every slot is planned and at least one has started.
func (s *CourseService) Archive(ctx context.Context, actor models.Actor, courseID string) (*models.Course, error) {
	course, err := s.authz.Authorize(ctx, actor, courseID, models.CapabilityArchive)
	if err != nil {
		return nil, err
	}
	slots, err := s.slots.ListByCourse(ctx, course.ID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list course slots")
	}
	now := s.now()
	started := false
	for i := range slots {
		if !slots[i].IsPlanned() {
			return nil, appErrors.Clone(appErrors.ErrConflict, "course has slots to plan")
		}
		if !slots[i].StartDate.After(now) {
			started = true
		}
	}
	if !started {
		return nil, appErrors.Clone(appErrors.ErrConflict, "course has not started")
	}

	archived, err := s.courses.SetArchivedAt(ctx, course.ID, &now)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to archive course")
	}
	if !archived {
		return nil, appErrors.Clone(appErrors.ErrConflict, "course is already archived")
	}
	course.ArchivedAt = &now
	s.logger.Info("course archived", zap.String("course_id", course.ID), zap.String("actor_id", actor.UserID))
	return course, nil
}

// Unarchive reopens an archived course.
func (s *CourseService) Unarchive(ctx context.Context, actor models.Actor, courseID string) (*models.Course, error) {
	course, err := s.authz.Authorize(ctx, actor, courseID, models.CapabilityUnarchive)
	if err != nil {
		return nil, err
	}
	if !course.IsArchived() {
		return nil, appErrors.Clone(appErrors.ErrConflict, "course is not archived")
	}
	unarchived, err := s.courses.SetArchivedAt(ctx, course.ID, nil)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to unarchive course")
	}
	if !unarchived {
		return nil, appErrors.Clone(appErrors.ErrConflict, "course is not archived")
	}
	course.ArchivedAt = nil
	s.logger.Info("course unarchived", zap.String("course_id", course.ID), zap.String("actor_id", actor.UserID))
	return course, nil
}

func (s *CourseService) findSlot(ctx context.Context, slotID string) (*models.CourseSlot, error) {
	slot, err := s.slots.FindByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course slot not found")
		}
		return nil, appErrors.Internal(err, "failed to load course slot")
	}
	return slot, nil
}

// validateSlotDates accepts no dates at all, or a start and end on the same day with end after start.
func (s *CourseService) validateSlotDates(start, end *time.Time) error {
	if start == nil && end == nil {
		return nil
	}
	if start == nil || end == nil {
		return appErrors.Clone(appErrors.ErrInvalidRequest, "start and end dates must be set together")
	}
	if !end.After(*start) {
		return appErrors.Clone(appErrors.ErrInvalidRequest, "end date must be after start date")
	}
	if !sameDay(start.In(s.location), end.In(s.location)) {
		return appErrors.Clone(appErrors.ErrInvalidRequest, "a slot must start and end on the same day")
	}
	return nil
}

// ensureCompanyInActorScope keeps client and holding actors to trainees of their own companies.
func (s *CourseService) ensureCompanyInActorScope(ctx context.Context, actor models.Actor, companyID *string) error {
	if actor.HasVendorRole() {
		return nil
	}
	if companyID != nil && actor.HasClientRole() && actor.CompanyID == *companyID {
		return nil
	}
	if companyID != nil && actor.IsHoldingAdmin() {
		company, err := s.companies.FindByID(ctx, *companyID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return appErrors.Internal(err, "failed to load company")
		}
		if err == nil && company.HoldingID != nil && *company.HoldingID == actor.HoldingID {
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrForbidden, "trainee belongs to a company outside the actor's scope")
}

// recordFailure logs a history append failure. The mutation itself is already persisted.
func (s *CourseService) recordFailure(err error, courseID, event string) error {
	if err == nil {
		return nil
	}
	s.logger.Error("course history append failed",
		zap.String("course_id", courseID),
		zap.String("event", event),
		zap.Error(err),
	)
	return err
}

func sameHolding(a, b *string) bool {
	return a != nil && b != nil && *a == *b
}
