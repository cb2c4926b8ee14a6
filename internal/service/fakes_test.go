package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/sophiemoustard/compani-api-sub005/internal/models"
	appErrors "github.com/sophiemoustard/compani-api-sub005/pkg/errors"
)

var testNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func timePtr(t time.Time) *time.Time { return &t }

type memHistoryStore struct {
	entries   []models.CourseHistory
	insertErr error
	listErr   error
	seq       int
}

func (m *memHistoryStore) Insert(ctx context.Context, history *models.CourseHistory) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.seq++
	history.ID = fmt.Sprintf("h%03d", m.seq)
	m.entries = append(m.entries, *history)
	return nil
}

func (m *memHistoryStore) List(ctx context.Context, filter models.CourseHistoryFilter) ([]models.CourseHistory, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]models.CourseHistory, 0)
	for _, e := range m.entries {
		if e.CourseID != filter.CourseID {
			continue
		}
		if filter.Before != nil && !e.CreatedAt.Before(*filter.Before) &&
			(filter.BeforeID == "" || !e.CreatedAt.Equal(*filter.Before) || e.ID >= filter.BeforeID) {
			continue
		}
		if len(filter.Actions) > 0 && !containsAction(filter.Actions, e.Action) {
			continue
		}
		if len(filter.TraineeIDs) > 0 && (e.TraineeID == nil || !contains(filter.TraineeIDs, *e.TraineeID)) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			if filter.Ascending {
				return out[i].CreatedAt.Before(out[j].CreatedAt)
			}
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		if filter.Ascending {
			return out[i].ID < out[j].ID
		}
		return out[i].ID > out[j].ID
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *memHistoryStore) byAction(action models.CourseHistoryAction) []models.CourseHistory {
	var out []models.CourseHistory
	for _, e := range m.entries {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

func containsAction(actions []models.CourseHistoryAction, target models.CourseHistoryAction) bool {
	for _, a := range actions {
		if a == target {
			return true
		}
	}
	return false
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

type memUserCompanies struct {
	rows []models.UserCompany
	err  error
}

func (m *memUserCompanies) ListByUsers(ctx context.Context, userIDs []string) ([]models.UserCompany, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.UserCompany
	for _, row := range m.rows {
		if contains(userIDs, row.UserID) {
			out = append(out, row)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].StartDate.Before(out[j].StartDate)
	})
	return out, nil
}

func (m *memUserCompanies) add(userID, companyID string, start time.Time, end *time.Time) {
	m.rows = append(m.rows, models.UserCompany{UserID: userID, CompanyID: companyID, StartDate: start, EndDate: end})
}

type memCourses struct {
	courses map[string]*models.Course
	err     error
}

func newMemCourses(courses ...*models.Course) *memCourses {
	m := &memCourses{courses: make(map[string]*models.Course)}
	for _, c := range courses {
		m.courses[c.ID] = c
	}
	return m
}

func copyCourse(c *models.Course) *models.Course {
	out := *c
	out.Trainees = append([]string{}, c.Trainees...)
	out.Companies = append([]string{}, c.Companies...)
	out.Trainers = append([]string{}, c.Trainers...)
	return &out
}

func (m *memCourses) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return copyCourse(c), nil
}

func (m *memCourses) ListBySubProgram(ctx context.Context, subProgramID string) ([]models.Course, error) {
	var out []models.Course
	for _, c := range m.courses {
		if c.SubProgramID == subProgramID {
			out = append(out, *copyCourse(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memCourses) AddTrainee(ctx context.Context, courseID, traineeID string) (bool, error) {
	c := m.courses[courseID]
	if c.HasTrainee(traineeID) {
		return false, nil
	}
	c.Trainees = append(c.Trainees, traineeID)
	return true, nil
}

func (m *memCourses) RemoveTrainee(ctx context.Context, courseID, traineeID string) (bool, error) {
	c := m.courses[courseID]
	var removed bool
	c.Trainees, removed = without(c.Trainees, traineeID)
	return removed, nil
}

func (m *memCourses) AddCompany(ctx context.Context, courseID, companyID string) (bool, error) {
	c := m.courses[courseID]
	if c.HasCompany(companyID) {
		return false, nil
	}
	c.Companies = append(c.Companies, companyID)
	return true, nil
}

func (m *memCourses) RemoveCompany(ctx context.Context, courseID, companyID string) (bool, error) {
	c := m.courses[courseID]
	var removed bool
	c.Companies, removed = without(c.Companies, companyID)
	return removed, nil
}

func (m *memCourses) Update(ctx context.Context, courseID string, req models.UpdateCourseRequest) error {
	c := m.courses[courseID]
	if req.Misc != nil {
		c.Misc = req.Misc
	}
	if req.ExpectedBillsCount != nil {
		c.ExpectedBillsCount = req.ExpectedBillsCount
	}
	if req.MaxTrainees != nil {
		c.MaxTrainees = req.MaxTrainees
	}
	if req.SalesRepresentativeID != nil {
		c.SalesRepresentativeID = req.SalesRepresentativeID
	}
	return nil
}

func (m *memCourses) SetArchivedAt(ctx context.Context, courseID string, at *time.Time) (bool, error) {
	c := m.courses[courseID]
	if (at == nil) != c.IsArchived() {
		return false, nil
	}
	c.ArchivedAt = at
	return true, nil
}

func without(values []string, target string) ([]string, bool) {
	out := make([]string, 0, len(values))
	removed := false
	for _, v := range values {
		if v == target {
			removed = true
			continue
		}
		out = append(out, v)
	}
	return out, removed
}

type memSlots struct {
	slots map[string]*models.CourseSlot
	seq   int
}

func newMemSlots(slots ...*models.CourseSlot) *memSlots {
	m := &memSlots{slots: make(map[string]*models.CourseSlot)}
	for _, s := range slots {
		m.slots[s.ID] = s
	}
	return m
}

func (m *memSlots) FindByID(ctx context.Context, id string) (*models.CourseSlot, error) {
	s, ok := m.slots[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	out := *s
	return &out, nil
}

func (m *memSlots) ListByCourse(ctx context.Context, courseID string) ([]models.CourseSlot, error) {
	var out []models.CourseSlot
	for _, s := range m.slots {
		if s.CourseID == courseID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memSlots) Create(ctx context.Context, slot *models.CourseSlot) error {
	m.seq++
	slot.ID = fmt.Sprintf("new-slot-%d", m.seq)
	stored := *slot
	m.slots[slot.ID] = &stored
	return nil
}

func (m *memSlots) Update(ctx context.Context, slot *models.CourseSlot) error {
	stored := *slot
	m.slots[slot.ID] = &stored
	return nil
}

func (m *memSlots) Delete(ctx context.Context, id string) error {
	delete(m.slots, id)
	return nil
}

type memAttendances struct {
	records  []models.Attendance
	slots    *memSlots
	courses  *memCourses
	programs map[string]string
	seq      int
}

func (m *memAttendances) find(slotID, traineeID string) int {
	for i, r := range m.records {
		if r.CourseSlotID == slotID && r.TraineeID == traineeID {
			return i
		}
	}
	return -1
}

func (m *memAttendances) Create(ctx context.Context, attendance *models.Attendance) error {
	if m.find(attendance.CourseSlotID, attendance.TraineeID) >= 0 {
		return appErrors.Clone(appErrors.ErrConflict, "attendance already exists")
	}
	m.seq++
	attendance.ID = fmt.Sprintf("att-%d", m.seq)
	attendance.CreatedAt = testNow
	m.records = append(m.records, *attendance)
	return nil
}

func (m *memAttendances) BulkCreate(ctx context.Context, records []models.Attendance) ([]models.Attendance, error) {
	var inserted []models.Attendance
	for i := range records {
		if m.find(records[i].CourseSlotID, records[i].TraineeID) >= 0 {
			continue
		}
		record := records[i]
		if err := m.Create(ctx, &record); err != nil {
			return nil, err
		}
		inserted = append(inserted, record)
	}
	return inserted, nil
}

func (m *memAttendances) ListBySlots(ctx context.Context, slotIDs []string, companyIDs []string) ([]models.Attendance, error) {
	var out []models.Attendance
	for _, r := range m.records {
		if !contains(slotIDs, r.CourseSlotID) {
			continue
		}
		if companyIDs != nil && (r.CompanyID == nil || !contains(companyIDs, *r.CompanyID)) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *memAttendances) details(keep func(models.Attendance, *models.Course) bool) []models.AttendanceDetail {
	var out []models.AttendanceDetail
	for _, r := range m.records {
		slot := m.slots.slots[r.CourseSlotID]
		if slot == nil {
			continue
		}
		course := m.courses.courses[slot.CourseID]
		if course == nil || !keep(r, course) {
			continue
		}
		out = append(out, models.AttendanceDetail{
			AttendanceID: r.ID,
			TraineeID:    r.TraineeID,
			CompanyID:    r.CompanyID,
			SlotID:       slot.ID,
			StartDate:    slot.StartDate,
			EndDate:      slot.EndDate,
			CourseSummary: models.CourseSummary{
				ID:           course.ID,
				Type:         course.Type,
				Misc:         course.Misc,
				SubProgramID: course.SubProgramID,
				ProgramID:    m.programs[course.SubProgramID],
			},
		})
	}
	return out
}

func (m *memAttendances) ListDetailsBySubProgram(ctx context.Context, subProgramID string) ([]models.AttendanceDetail, error) {
	return m.details(func(_ models.Attendance, c *models.Course) bool { return c.SubProgramID == subProgramID }), nil
}

func (m *memAttendances) ListDetailsByTrainee(ctx context.Context, traineeID string) ([]models.AttendanceDetail, error) {
	return m.details(func(a models.Attendance, _ *models.Course) bool { return a.TraineeID == traineeID }), nil
}

func (m *memAttendances) DeleteOne(ctx context.Context, slotID, traineeID string) (int64, error) {
	i := m.find(slotID, traineeID)
	if i < 0 {
		return 0, nil
	}
	m.records = append(m.records[:i], m.records[i+1:]...)
	return 1, nil
}

func (m *memAttendances) DeleteBySlotForTrainees(ctx context.Context, slotID string, traineeIDs []string) (int64, error) {
	kept := m.records[:0]
	var deleted int64
	for _, r := range m.records {
		if r.CourseSlotID == slotID && contains(traineeIDs, r.TraineeID) {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	m.records = kept
	return deleted, nil
}

func (m *memAttendances) CountBySlotExcludingTrainees(ctx context.Context, slotID string, traineeIDs []string) (int, error) {
	count := 0
	for _, r := range m.records {
		if r.CourseSlotID == slotID && !contains(traineeIDs, r.TraineeID) {
			count++
		}
	}
	return count, nil
}

func (m *memAttendances) forSlot(slotID string) []models.Attendance {
	var out []models.Attendance
	for _, r := range m.records {
		if r.CourseSlotID == slotID {
			out = append(out, r)
		}
	}
	return out
}

type memCompanies struct {
	companies map[string]*models.Company
}

func (m *memCompanies) FindByID(ctx context.Context, id string) (*models.Company, error) {
	c, ok := m.companies[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	out := *c
	return &out, nil
}

func (m *memCompanies) ListIDsByHolding(ctx context.Context, holdingID string) ([]string, error) {
	var ids []string
	for _, c := range m.companies {
		if c.HoldingID != nil && *c.HoldingID == holdingID {
			ids = append(ids, c.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

type memBilling struct {
	bills  map[string]bool
	sheets map[string]bool
}

func (m *memBilling) CompanyHasBills(ctx context.Context, courseID, companyID string) (bool, error) {
	return m.bills[courseID+"/"+companyID], nil
}

func (m *memBilling) CompanyHasAttendanceSheets(ctx context.Context, courseID, companyID string) (bool, error) {
	return m.sheets[courseID+"/"+companyID], nil
}

// testEnv wires the real services over in-memory stores.
type memUsers struct {
	unknown map[string]bool
	err     error
}

func (m *memUsers) Exists(ctx context.Context, id string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return !m.unknown[id], nil
}

type testEnv struct {
	courses       *memCourses
	slots         *memSlots
	attendances   *memAttendances
	userCompanies *memUserCompanies
	companies     *memCompanies
	billing       *memBilling
	historyStore  *memHistoryStore
	users         *memUsers

	metrics     *MetricsService
	history     *CourseHistoryService
	resolver    *MembershipResolver
	authz       *AuthorizationService
	attendance  *AttendanceService
	courseSvc   *CourseService
	clockOffset time.Duration
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		courses:       newMemCourses(),
		slots:         newMemSlots(),
		userCompanies: &memUserCompanies{},
		companies:     &memCompanies{companies: make(map[string]*models.Company)},
		billing:       &memBilling{bills: map[string]bool{}, sheets: map[string]bool{}},
		historyStore:  &memHistoryStore{},
		users:         &memUsers{unknown: map[string]bool{}},
		metrics:       NewMetricsService(),
	}
	env.attendances = &memAttendances{slots: env.slots, courses: env.courses, programs: map[string]string{}}

	logger := zap.NewNop()
	env.history = NewCourseHistoryService(env.historyStore, nil, env.metrics, logger, CourseHistoryConfig{Location: time.UTC})
	env.history.now = func() time.Time {
		env.clockOffset += time.Second
		return testNow.Add(env.clockOffset)
	}
	env.resolver = NewMembershipResolver(env.userCompanies, env.history, env.metrics, logger)
	env.resolver.now = func() time.Time { return testNow.Add(time.Hour) }
	env.authz = NewAuthorizationService(env.courses, env.resolver, env.metrics, logger)
	env.attendance = NewAttendanceService(env.attendances, env.slots, env.courses, env.companies, env.resolver, env.users, env.authz, env.metrics, nil, logger)
	env.courseSvc = NewCourseService(CourseServiceDeps{
		Courses:     env.courses,
		Slots:       env.slots,
		Companies:   env.companies,
		Billing:     env.billing,
		Attendances: env.attendances,
		History:     env.history,
		Resolver:    env.resolver,
		Authz:       env.authz,
		Logger:      logger,
		Location:    time.UTC,
	})
	env.courseSvc.now = func() time.Time { return testNow }
	return env
}

func (e *testEnv) addCourse(c *models.Course) *models.Course {
	if c.Trainees == nil {
		c.Trainees = []string{}
	}
	if c.Companies == nil {
		c.Companies = []string{}
	}
	if c.Trainers == nil {
		c.Trainers = []string{}
	}
	e.courses.courses[c.ID] = c
	return c
}

func (e *testEnv) addSlot(id, courseID string, start time.Time, d time.Duration) *models.CourseSlot {
	end := start.Add(d)
	slot := &models.CourseSlot{ID: id, CourseID: courseID, StartDate: &start, EndDate: &end}
	e.slots.slots[id] = slot
	return slot
}

func (e *testEnv) addCompany(id string, holdingID *string) {
	e.companies.companies[id] = &models.Company{ID: id, Name: id, HoldingID: holdingID}
}

var (
	adminActor   = models.Actor{UserID: "admin-1", VendorRole: models.VendorRoleAdmin}
	trainerActor = models.Actor{UserID: "trainer-1", VendorRole: models.VendorRoleTrainer}
)

func clientActor(companyID string) models.Actor {
	return models.Actor{UserID: "client-" + companyID, ClientRole: models.ClientRoleAdmin, CompanyID: companyID}
}

func holdingActor(holdingID string) models.Actor {
	return models.Actor{UserID: "holding-" + holdingID, HoldingRole: models.HoldingRoleAdmin, HoldingID: holdingID}
}
