package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sophiemoustard/compani-api-sub005/internal/models"
	appErrors "github.com/sophiemoustard/compani-api-sub005/pkg/errors"
)

type attendanceServiceMock struct {
	singleReq    models.CreateAttendanceRequest
	singleCalled bool
	bulkSlot     string
	bulkCalled   bool
	listSlots    []string
	unsubCourse  string
	unsubFilter  models.UnsubscribedAttendanceFilter
	traineeID    string
	deleteFilter models.DeleteAttendanceFilter
	deleted      int64
	err          error
}

func (m *attendanceServiceMock) CreateSingle(ctx context.Context, actor models.Actor, req models.CreateAttendanceRequest) (*models.Attendance, error) {
	m.singleCalled = true
	m.singleReq = req
	if m.err != nil {
		return nil, m.err
	}
	return &models.Attendance{ID: "a1", TraineeID: req.TraineeID, CourseSlotID: req.CourseSlotID}, nil
}

func (m *attendanceServiceMock) CreateForSlot(ctx context.Context, actor models.Actor, slotID string) ([]models.Attendance, error) {
	m.bulkCalled = true
	m.bulkSlot = slotID
	return []models.Attendance{}, m.err
}

func (m *attendanceServiceMock) ListForSlots(ctx context.Context, actor models.Actor, slotIDs []string) ([]models.Attendance, error) {
	m.listSlots = slotIDs
	return []models.Attendance{}, m.err
}

func (m *attendanceServiceMock) ListUnsubscribed(ctx context.Context, actor models.Actor, courseID string, filter models.UnsubscribedAttendanceFilter) (map[string][]models.UnsubscribedAttendance, error) {
	m.unsubCourse = courseID
	m.unsubFilter = filter
	return map[string][]models.UnsubscribedAttendance{}, m.err
}

func (m *attendanceServiceMock) GetTraineeUnsubscribedAttendances(ctx context.Context, actor models.Actor, traineeID string) (map[string][]models.UnsubscribedAttendance, error) {
	m.traineeID = traineeID
	return map[string][]models.UnsubscribedAttendance{}, m.err
}

func (m *attendanceServiceMock) Delete(ctx context.Context, actor models.Actor, filter models.DeleteAttendanceFilter) (int64, error) {
	m.deleteFilter = filter
	return m.deleted, m.err
}

func TestAttendanceHandlerCreateSingleOrBulk(t *testing.T) {
	mock := &attendanceServiceMock{}
	h := NewAttendanceHandler(mock)

	c, w := newTestContext(http.MethodPost, "/attendances", `{"course_slot":"s1","trainee":"t1"}`, adminClaims)
	h.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, mock.singleCalled)
	assert.Equal(t, models.CreateAttendanceRequest{CourseSlotID: "s1", TraineeID: "t1"}, mock.singleReq)

	c, w = newTestContext(http.MethodPost, "/attendances", `{"course_slot":"s1"}`, adminClaims)
	h.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, mock.bulkCalled)
	assert.Equal(t, "s1", mock.bulkSlot)
}

func TestAttendanceHandlerCreateRejectsMissingSlot(t *testing.T) {
	mock := &attendanceServiceMock{}
	c, w := newTestContext(http.MethodPost, "/attendances", `{"trainee":"t1"}`, adminClaims)
	NewAttendanceHandler(mock).Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, mock.singleCalled)
	assert.False(t, mock.bulkCalled)
}

func TestAttendanceHandlerCreateMapsConflict(t *testing.T) {
	mock := &attendanceServiceMock{err: appErrors.Clone(appErrors.ErrConflict, "attendance already exists")}
	c, w := newTestContext(http.MethodPost, "/attendances", `{"course_slot":"s1","trainee":"t1"}`, adminClaims)
	NewAttendanceHandler(mock).Create(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAttendanceHandlerRequiresActor(t *testing.T) {
	mock := &attendanceServiceMock{}
	c, w := newTestContext(http.MethodPost, "/attendances", `{"course_slot":"s1"}`, nil)
	NewAttendanceHandler(mock).Create(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, mock.bulkCalled)
}

func TestAttendanceHandlerListSplitsSlots(t *testing.T) {
	mock := &attendanceServiceMock{}
	h := NewAttendanceHandler(mock)

	c, w := newTestContext(http.MethodGet, "/attendances?course_slot=s1,s2&course_slot=s3", "", adminClaims)
	h.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"s1", "s2", "s3"}, mock.listSlots)

	c, w = newTestContext(http.MethodGet, "/attendances", "", adminClaims)
	h.List(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAttendanceHandlerUnsubscribedListings(t *testing.T) {
	mock := &attendanceServiceMock{}
	h := NewAttendanceHandler(mock)

	c, w := newTestContext(http.MethodGet, "/attendances/unsubscribed?course=c1&company=company-A", "", adminClaims)
	h.ListUnsubscribed(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "c1", mock.unsubCourse)
	assert.Equal(t, "company-A", mock.unsubFilter.CompanyID)

	c, w = newTestContext(http.MethodGet, "/attendances/unsubscribed", "", adminClaims)
	h.ListUnsubscribed(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c, w = newTestContext(http.MethodGet, "/trainees/t9/unsubscribed-attendances", "", adminClaims)
	c.Params = gin.Params{{Key: "id", Value: "t9"}}
	h.TraineeUnsubscribed(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "t9", mock.traineeID)
}

func TestAttendanceHandlerDelete(t *testing.T) {
	mock := &attendanceServiceMock{deleted: 2}
	c, w := newTestContext(http.MethodDelete, "/attendances?course_slot=s1", "", adminClaims)
	NewAttendanceHandler(mock).Delete(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.DeleteAttendanceFilter{CourseSlotID: "s1"}, mock.deleteFilter)
	assert.JSONEq(t, `{"data":{"deleted":2}}`, w.Body.String())
}
