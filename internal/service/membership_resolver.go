package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sophiemoustard/compani-api-sub005/internal/models"
	appErrors "github.com/sophiemoustard/compani-api-sub005/pkg/errors"
)

type userCompanyReader interface {
	ListByUsers(ctx context.Context, userIDs []string) ([]models.UserCompany, error)
}

type membershipEventReader interface {
	MembershipEvents(ctx context.Context, courseID string, traineeIDs []string) ([]models.CourseHistory, error)
}

// MembershipResolver tells which company a trainee belonged to with respect to a course.
// Missing data never fails a resolution: the trainee maps to a nil company instead.
type MembershipResolver struct {
	userCompanies userCompanyReader
	history       membershipEventReader
	metrics       *MetricsService
	logger        *zap.Logger
	now           func() time.Time
}

// NewMembershipResolver constructs the resolver.
func NewMembershipResolver(userCompanies userCompanyReader, history membershipEventReader, metrics *MetricsService, logger *zap.Logger) *MembershipResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MembershipResolver{userCompanies: userCompanies, history: history, metrics: metrics, logger: logger, now: time.Now}
}

// CurrentCompanies returns each user's company as of now.
func (r *MembershipResolver) CurrentCompanies(ctx context.Context, userIDs []string) (map[string]*string, error) {
	ids := uniqueStrings(userIDs)
	windows, err := r.windowsByUser(ctx, ids)
	if err != nil {
		return nil, err
	}
	now := r.now()
	result := make(map[string]*string, len(ids))
	for _, id := range ids {
		result[id] = companyActiveAt(windows[id], now)
	}
	return result, nil
}

// Resolve maps each trainee to the company that applied to their association with the course.
// Enrolled trainees get their current company. Former trainees get the company recorded or active
// when they were added, falling back to a membership overlapping their enrollment. Trainees without
// any enrollment trace get their current company.
func (r *MembershipResolver) Resolve(ctx context.Context, course *models.Course, traineeIDs []string) (map[string]*string, error) {
	ids := uniqueStrings(traineeIDs)
	result := make(map[string]*string, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	windows, err := r.windowsByUser(ctx, ids)
	if err != nil {
		return nil, err
	}
	now := r.now()

	var former []string
	for _, id := range ids {
		if course.HasTrainee(id) {
			result[id] = companyActiveAt(windows[id], now)
			continue
		}
		former = append(former, id)
	}

	if len(former) > 0 {
		events, err := r.history.MembershipEvents(ctx, course.ID, former)
		if err != nil {
			return nil, err
		}
		byTrainee := make(map[string][]models.CourseHistory, len(former))
		for _, e := range events {
			if e.TraineeID != nil {
				byTrainee[*e.TraineeID] = append(byTrainee[*e.TraineeID], e)
			}
		}
		for _, id := range former {
			assoc, traced := lastAssociation(byTrainee[id])
			if !traced {
				r.logger.Debug("no enrollment trace, using current company",
					zap.String("course_id", course.ID), zap.String("trainee_id", id))
				result[id] = companyActiveAt(windows[id], now)
				continue
			}
			result[id] = assoc.company(windows[id])
		}
	}

	unresolved := 0
	for _, company := range result {
		if company == nil {
			unresolved++
		}
	}
	r.metrics.RecordUnresolvedMembership(unresolved)
	return result, nil
}

func (r *MembershipResolver) windowsByUser(ctx context.Context, ids []string) (map[string][]models.UserCompany, error) {
	if len(ids) == 0 {
		return map[string][]models.UserCompany{}, nil
	}
	rows, err := r.userCompanies.ListByUsers(ctx, ids)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load user companies")
	}
	windows := make(map[string][]models.UserCompany, len(ids))
	for _, row := range rows {
		windows[row.UserID] = append(windows[row.UserID], row)
	}
	return windows, nil
}

// association is the latest enrollment window of a former trainee, rebuilt from the ledger.
type association struct {
	addedAt   *time.Time
	removedAt *time.Time
	companyID *string
}

func lastAssociation(events []models.CourseHistory) (association, bool) {
	var current association
	traced := false
	for _, e := range events {
		at := e.CreatedAt
		switch e.Action {
		case models.HistoryTraineeAddition:
			current = association{addedAt: &at, companyID: e.CompanyID}
			traced = true
		case models.HistoryTraineeDeletion:
			current.removedAt = &at
			if current.companyID == nil {
				current.companyID = e.CompanyID
			}
			traced = true
		}
	}
	return current, traced
}

func (a association) company(windows []models.UserCompany) *string {
	if a.companyID != nil {
		return a.companyID
	}
	anchor := a.addedAt
	if anchor == nil {
		anchor = a.removedAt
	}
	if company := companyActiveAt(windows, *anchor); company != nil {
		return company
	}

	var from time.Time
	if a.addedAt != nil {
		from = *a.addedAt
	}
	var best *models.UserCompany
	for i := range windows {
		w := windows[i]
		if !w.Overlaps(from, a.removedAt) {
			continue
		}
		if best == nil || w.StartDate.After(best.StartDate) {
			best = &windows[i]
		}
	}
	if best == nil {
		return nil
	}
	companyID := best.CompanyID
	return &companyID
}

func companyActiveAt(windows []models.UserCompany, at time.Time) *string {
	for i := len(windows) - 1; i >= 0; i-- {
		if windows[i].ActiveAt(at) {
			companyID := windows[i].CompanyID
			return &companyID
		}
	}
	return nil
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
