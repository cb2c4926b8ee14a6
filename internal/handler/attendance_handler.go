package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sophiemoustard/compani-api-sub005/internal/models"
	appErrors "github.com/sophiemoustard/compani-api-sub005/pkg/errors"
	"github.com/sophiemoustard/compani-api-sub005/pkg/response"
)

type attendanceService interface {
	CreateSingle(ctx context.Context, actor models.Actor, req models.CreateAttendanceRequest) (*models.Attendance, error)
	CreateForSlot(ctx context.Context, actor models.Actor, slotID string) ([]models.Attendance, error)
	ListForSlots(ctx context.Context, actor models.Actor, slotIDs []string) ([]models.Attendance, error)
	ListUnsubscribed(ctx context.Context, actor models.Actor, courseID string, filter models.UnsubscribedAttendanceFilter) (map[string][]models.UnsubscribedAttendance, error)
	GetTraineeUnsubscribedAttendances(ctx context.Context, actor models.Actor, traineeID string) (map[string][]models.UnsubscribedAttendance, error)
	Delete(ctx context.Context, actor models.Actor, filter models.DeleteAttendanceFilter) (int64, error)
}

// createAttendancePayload marks one trainee present, or every enrolled trainee when trainee is omitted.
type createAttendancePayload struct {
	CourseSlotID string `json:"course_slot" binding:"required"`
	TraineeID    string `json:"trainee"`
}

// AttendanceHandler exposes attendance endpoints.
type AttendanceHandler struct {
	service attendanceService
}

// NewAttendanceHandler builds a new handler.
func NewAttendanceHandler(service attendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: service}
}

// Create godoc
// @Summary Record attendances on a course slot
// @Tags Attendances
// @Accept json
// @Produce json
// @Param payload body createAttendancePayload true "Attendance payload"
// @Success 201 {object} response.Envelope
// @Router /attendances [post]
func (h *AttendanceHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var payload createAttendancePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, invalidPayload(err, "invalid attendance payload"))
		return
	}

	if payload.TraineeID == "" {
		created, err := h.service.CreateForSlot(c.Request.Context(), actor, payload.CourseSlotID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Created(c, created)
		return
	}

	attendance, err := h.service.CreateSingle(c.Request.Context(), actor, models.CreateAttendanceRequest{
		CourseSlotID: payload.CourseSlotID,
		TraineeID:    payload.TraineeID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, attendance)
}

// List godoc
// @Summary List attendances of course slots visible to the caller
// @Tags Attendances
// @Produce json
// @Param course_slot query []string true "Course slot IDs"
// @Success 200 {object} response.Envelope
// @Router /attendances [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	slotIDs := queryList(c, "course_slot")
	if len(slotIDs) == 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "course_slot is required"))
		return
	}
	attendances, err := h.service.ListForSlots(c.Request.Context(), actor, slotIDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, attendances)
}

// ListUnsubscribed godoc
// @Summary List attendances of trainees not enrolled in the course, grouped by trainee
// @Tags Attendances
// @Produce json
// @Param course query string true "Course ID"
// @Param trainee query string false "Trainee ID"
// @Param company query string false "Company ID"
// @Success 200 {object} response.Envelope
// @Router /attendances/unsubscribed [get]
func (h *AttendanceHandler) ListUnsubscribed(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	courseID := c.Query("course")
	if courseID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "course is required"))
		return
	}
	grouped, err := h.service.ListUnsubscribed(c.Request.Context(), actor, courseID, models.UnsubscribedAttendanceFilter{
		TraineeID: c.Query("trainee"),
		CompanyID: c.Query("company"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, grouped)
}

// TraineeUnsubscribed godoc
// @Summary List a trainee's attendances on courses they are not enrolled in, grouped by program
// @Tags Attendances
// @Produce json
// @Param id path string true "Trainee ID"
// @Success 200 {object} response.Envelope
// @Router /trainees/{id}/unsubscribed-attendances [get]
func (h *AttendanceHandler) TraineeUnsubscribed(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	grouped, err := h.service.GetTraineeUnsubscribedAttendances(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, grouped)
}

// Delete godoc
// @Summary Delete one attendance, or the slot's attendances of enrolled trainees
// @Tags Attendances
// @Produce json
// @Param course_slot query string true "Course slot ID"
// @Param trainee query string false "Trainee ID"
// @Success 200 {object} response.Envelope
// @Router /attendances [delete]
func (h *AttendanceHandler) Delete(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	deleted, err := h.service.Delete(c.Request.Context(), actor, models.DeleteAttendanceFilter{
		CourseSlotID: c.Query("course_slot"),
		TraineeID:    c.Query("trainee"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"deleted": deleted}, nil)
}
