package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sophiemoustard/compani-api-sub005/internal/models"
	appErrors "github.com/sophiemoustard/compani-api-sub005/pkg/errors"
)

const (
	defaultHistoryPageSize = 20
	maxHistoryPageSize     = 100
	historyCachePrefix     = "course_histories"
)

type courseHistoryStore interface {
	Insert(ctx context.Context, history *models.CourseHistory) error
	List(ctx context.Context, filter models.CourseHistoryFilter) ([]models.CourseHistory, error)
}

// CourseHistoryConfig tunes history listing.
type CourseHistoryConfig struct {
	PageSize int
	Location *time.Location
	CacheTTL time.Duration
}

// CourseHistoryQuery selects a page of a course's history.
type CourseHistoryQuery struct {
	CourseID  string
	Before    *time.Time
	BeforeID  string
	Limit     int
	Actions   []models.CourseHistoryAction
	TraineeID string
}

// CourseHistoryPage is one page of history, newest first.
type CourseHistoryPage struct {
	Histories []models.CourseHistory `json:"histories"`
	Page      models.CursorPage      `json:"page"`
}

// CourseHistoryService is the append-only ledger of course lifecycle events.
type CourseHistoryService struct {
	repo    courseHistoryStore
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
	config  CourseHistoryConfig
	now     func() time.Time
}

// NewCourseHistoryService constructs the ledger service.
func NewCourseHistoryService(repo courseHistoryStore, cache *CacheService, metrics *MetricsService, logger *zap.Logger, config CourseHistoryConfig) *CourseHistoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.PageSize <= 0 {
		config.PageSize = defaultHistoryPageSize
	}
	if config.Location == nil {
		config.Location = time.UTC
	}
	return &CourseHistoryService{repo: repo, cache: cache, metrics: metrics, logger: logger, config: config, now: time.Now}
}

// Append records an entry. The creation time is always set by the ledger.
func (s *CourseHistoryService) Append(ctx context.Context, history models.CourseHistory) (*models.CourseHistory, error) {
	if history.CourseID == "" || history.CreatedBy == "" || !history.Action.Valid() {
		return nil, appErrors.Internal(
			fmt.Errorf("course=%q action=%q createdBy=%q", history.CourseID, history.Action, history.CreatedBy),
			"malformed course history entry")
	}
	history.ID = ""
	history.CreatedAt = s.now().UTC()
	if err := s.repo.Insert(ctx, &history); err != nil {
		return nil, appErrors.Internal(err, "failed to append course history")
	}
	s.metrics.RecordHistoryAppend(history.Action)
	s.cache.Invalidate(ctx, historyCachePattern(history.CourseID))
	s.logger.Debug("course history appended",
		zap.String("course_id", history.CourseID),
		zap.String("action", string(history.Action)),
		zap.String("created_by", history.CreatedBy))
	return &history, nil
}

// AppendSlotCreation records the creation of a dated slot. Slots to plan are not recorded.
func (s *CourseHistoryService) AppendSlotCreation(ctx context.Context, slot *models.CourseSlot, actorID string) (*models.CourseHistory, error) {
	if !slot.IsPlanned() {
		return nil, nil
	}
	return s.Append(ctx, models.CourseHistory{
		CourseID:  slot.CourseID,
		Action:    models.HistorySlotCreation,
		CreatedBy: actorID,
		Slot:      historySlot(slot),
	})
}

// AppendSlotEdition records a notable slot edition, comparing before and after dates:
//   - a slot receiving its first dates is recorded as a slot creation;
//   - a change of start day records a startDate change;
//   - a change of start or end time on the same day records startHour and endHour changes;
//   - anything else records nothing and returns nil.
func (s *CourseHistoryService) AppendSlotEdition(ctx context.Context, before, after *models.CourseSlot, actorID string) (*models.CourseHistory, error) {
	if !after.IsPlanned() {
		return nil, nil
	}
	if before.StartDate == nil {
		return s.AppendSlotCreation(ctx, after, actorID)
	}

	update := s.slotUpdate(before, after)
	if update.Empty() {
		return nil, nil
	}
	return s.Append(ctx, models.CourseHistory{
		CourseID:  after.CourseID,
		Action:    models.HistorySlotEdition,
		CreatedBy: actorID,
		Slot:      historySlot(after),
		Update:    &update,
	})
}

func (s *CourseHistoryService) slotUpdate(before, after *models.CourseSlot) models.HistorySlotUpdate {
	var update models.HistorySlotUpdate
	fromStart, toStart := before.StartDate.In(s.config.Location), after.StartDate.In(s.config.Location)
	if !sameDay(fromStart, toStart) {
		update.StartDate = &models.HistoryDateChange{From: *before.StartDate, To: *after.StartDate}
		return update
	}

	endChanged := before.EndDate == nil || !before.EndDate.Equal(*after.EndDate)
	if clock(fromStart) != clock(toStart) || endChanged {
		update.StartHour = &models.HistoryDateChange{From: *before.StartDate, To: *after.StartDate}
		from := *after.EndDate
		if before.EndDate != nil {
			from = *before.EndDate
		}
		update.EndHour = &models.HistoryDateChange{From: from, To: *after.EndDate}
	}
	return update
}

// AppendSlotDeletion records the deletion of a dated slot. Slots to plan are not recorded.
func (s *CourseHistoryService) AppendSlotDeletion(ctx context.Context, slot *models.CourseSlot, actorID string) (*models.CourseHistory, error) {
	if !slot.IsPlanned() {
		return nil, nil
	}
	return s.Append(ctx, models.CourseHistory{
		CourseID:  slot.CourseID,
		Action:    models.HistorySlotDeletion,
		CreatedBy: actorID,
		Slot:      historySlot(slot),
	})
}

// AppendTraineeAddition records an enrollment with the trainee's company at that time.
func (s *CourseHistoryService) AppendTraineeAddition(ctx context.Context, courseID, traineeID string, companyID *string, actorID string) (*models.CourseHistory, error) {
	return s.Append(ctx, models.CourseHistory{
		CourseID:  courseID,
		Action:    models.HistoryTraineeAddition,
		CreatedBy: actorID,
		TraineeID: &traineeID,
		CompanyID: companyID,
	})
}

// AppendTraineeDeletion records an unenrollment with the trainee's resolved company.
func (s *CourseHistoryService) AppendTraineeDeletion(ctx context.Context, courseID, traineeID string, companyID *string, actorID string) (*models.CourseHistory, error) {
	return s.Append(ctx, models.CourseHistory{
		CourseID:  courseID,
		Action:    models.HistoryTraineeDeletion,
		CreatedBy: actorID,
		TraineeID: &traineeID,
		CompanyID: companyID,
	})
}

// AppendCompanyAddition records a served company being added.
func (s *CourseHistoryService) AppendCompanyAddition(ctx context.Context, courseID, companyID, actorID string) (*models.CourseHistory, error) {
	return s.Append(ctx, models.CourseHistory{
		CourseID:  courseID,
		Action:    models.HistoryCompanyAddition,
		CreatedBy: actorID,
		CompanyID: &companyID,
	})
}

// AppendCompanyDeletion records a served company being removed.
func (s *CourseHistoryService) AppendCompanyDeletion(ctx context.Context, courseID, companyID, actorID string) (*models.CourseHistory, error) {
	return s.Append(ctx, models.CourseHistory{
		CourseID:  courseID,
		Action:    models.HistoryCompanyDeletion,
		CreatedBy: actorID,
		CompanyID: &companyID,
	})
}

// ListForCourse returns a page of the course history, newest first, strictly before the (Before, BeforeID) cursor.
// An unknown course yields an empty page.
func (s *CourseHistoryService) ListForCourse(ctx context.Context, query CourseHistoryQuery) (*CourseHistoryPage, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = s.config.PageSize
	}
	if limit > maxHistoryPageSize {
		limit = maxHistoryPageSize
	}
	key := historyCacheKey(query, limit)
	var cached CourseHistoryPage
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	filter := models.CourseHistoryFilter{
		CourseID: query.CourseID,
		Before:   query.Before,
		BeforeID: query.BeforeID,
		Limit:    limit,
		Actions:  query.Actions,
	}
	if query.TraineeID != "" {
		filter.TraineeIDs = []string{query.TraineeID}
	}
	start := time.Now()
	histories, err := s.repo.List(ctx, filter)
	s.metrics.ObserveDBQuery("course_histories_list", time.Since(start))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list course histories")
	}
	if histories == nil {
		histories = []models.CourseHistory{}
	}

	page := &CourseHistoryPage{Histories: histories, Page: models.CursorPage{Limit: limit}}
	if len(histories) == limit {
		last := histories[len(histories)-1]
		page.Page.NextBefore = &last.CreatedAt
		page.Page.NextBeforeID = last.ID
	}
	s.cache.Set(ctx, key, page, s.config.CacheTTL)
	return page, nil
}

// MembershipEvents returns trainee additions and deletions of the course for the trainees, oldest first.
func (s *CourseHistoryService) MembershipEvents(ctx context.Context, courseID string, traineeIDs []string) ([]models.CourseHistory, error) {
	if len(traineeIDs) == 0 {
		return nil, nil
	}
	histories, err := s.repo.List(ctx, models.CourseHistoryFilter{
		CourseID:   courseID,
		Actions:    []models.CourseHistoryAction{models.HistoryTraineeAddition, models.HistoryTraineeDeletion},
		TraineeIDs: traineeIDs,
		Ascending:  true,
	})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to replay course memberships")
	}
	return histories, nil
}

// TraineesEverEnrolled returns every trainee the ledger shows as added to the course, oldest first.
func (s *CourseHistoryService) TraineesEverEnrolled(ctx context.Context, courseID string) ([]string, error) {
	histories, err := s.repo.List(ctx, models.CourseHistoryFilter{
		CourseID:  courseID,
		Actions:   []models.CourseHistoryAction{models.HistoryTraineeAddition},
		Ascending: true,
	})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list enrolled trainees")
	}
	ids := make([]string, 0, len(histories))
	for _, h := range histories {
		if h.TraineeID != nil {
			ids = append(ids, *h.TraineeID)
		}
	}
	return uniqueStrings(ids), nil
}

func historySlot(slot *models.CourseSlot) *models.HistorySlot {
	return &models.HistorySlot{
		StartDate:   *slot.StartDate,
		EndDate:     *slot.EndDate,
		Address:     slot.Address,
		MeetingLink: slot.MeetingLink,
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func clock(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

func historyCachePattern(courseID string) string {
	return fmt.Sprintf("%s:%s:*", historyCachePrefix, courseID)
}

func historyCacheKey(query CourseHistoryQuery, limit int) string {
	before := "none"
	if query.Before != nil {
		before = fmt.Sprintf("%d/%s", query.Before.UnixNano(), query.BeforeID)
	}
	actions := make([]string, len(query.Actions))
	for i, a := range query.Actions {
		actions[i] = string(a)
	}
	return fmt.Sprintf("%s:%s:before=%s:limit=%d:actions=%s:trainee=%s",
		historyCachePrefix, query.CourseID, before, limit, strings.Join(actions, ","), query.TraineeID)
}
