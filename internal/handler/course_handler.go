package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/sophiemoustard/compani-api-sub005/internal/models"
	"github.com/sophiemoustard/compani-api-sub005/pkg/response"
)

type courseService interface {
	AddTrainee(ctx context.Context, actor models.Actor, courseID string, req models.AddTraineeRequest) error
	RemoveTrainee(ctx context.Context, actor models.Actor, courseID, traineeID string) error
	AddCompany(ctx context.Context, actor models.Actor, courseID string, req models.AddCompanyRequest) error
	RemoveCompany(ctx context.Context, actor models.Actor, courseID, companyID string) error
	CreateSlot(ctx context.Context, actor models.Actor, courseID string, req models.CreateSlotRequest) (*models.CourseSlot, error)
	UpdateSlot(ctx context.Context, actor models.Actor, slotID string, req models.UpdateSlotRequest) (*models.CourseSlot, error)
	DeleteSlot(ctx context.Context, actor models.Actor, slotID string) error
	Update(ctx context.Context, actor models.Actor, courseID string, req models.UpdateCourseRequest) (*models.Course, error)
	Archive(ctx context.Context, actor models.Actor, courseID string) (*models.Course, error)
	Unarchive(ctx context.Context, actor models.Actor, courseID string) (*models.Course, error)
}

// CourseHandler exposes course mutation endpoints.
type CourseHandler struct {
	service courseService
}

// NewCourseHandler builds a new handler.
func NewCourseHandler(service courseService) *CourseHandler {
	return &CourseHandler{service: service}
}

// AddTrainee godoc
// @Summary Enroll a trainee in a course
// @Tags Courses
// @Accept json
// @Param id path string true "Course ID"
// @Param payload body models.AddTraineeRequest true "Trainee payload"
// @Success 204
// @Router /courses/{id}/trainees [post]
func (h *CourseHandler) AddTrainee(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req models.AddTraineeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid trainee payload"))
		return
	}
	if err := h.service.AddTrainee(c.Request.Context(), actor, c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// RemoveTrainee godoc
// @Summary Remove a trainee from a course
// @Tags Courses
// @Param id path string true "Course ID"
// @Param traineeId path string true "Trainee ID"
// @Success 204
// @Router /courses/{id}/trainees/{traineeId} [delete]
func (h *CourseHandler) RemoveTrainee(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	if err := h.service.RemoveTrainee(c.Request.Context(), actor, c.Param("id"), c.Param("traineeId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AddCompany godoc
// @Summary Attach a company to a course
// @Tags Courses
// @Accept json
// @Param id path string true "Course ID"
// @Param payload body models.AddCompanyRequest true "Company payload"
// @Success 204
// @Router /courses/{id}/companies [post]
func (h *CourseHandler) AddCompany(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req models.AddCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid company payload"))
		return
	}
	if err := h.service.AddCompany(c.Request.Context(), actor, c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// RemoveCompany godoc
// @Summary Detach a company from a course
// @Tags Courses
// @Param id path string true "Course ID"
// @Param companyId path string true "Company ID"
// @Success 204
// @Router /courses/{id}/companies/{companyId} [delete]
func (h *CourseHandler) RemoveCompany(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	if err := h.service.RemoveCompany(c.Request.Context(), actor, c.Param("id"), c.Param("companyId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// CreateSlot godoc
// @Summary Add a slot to a course
// @Tags CourseSlots
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body models.CreateSlotRequest true "Slot payload"
// @Success 201 {object} response.Envelope
// @Router /courses/{id}/slots [post]
func (h *CourseHandler) CreateSlot(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req models.CreateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid slot payload"))
		return
	}
	slot, err := h.service.CreateSlot(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, slot)
}

// UpdateSlot godoc
// @Summary Replace the dates and location of a slot
// @Tags CourseSlots
// @Accept json
// @Produce json
// @Param id path string true "Slot ID"
// @Param payload body models.UpdateSlotRequest true "Slot payload"
// @Success 200 {object} response.Envelope
// @Router /courseslots/{id} [put]
func (h *CourseHandler) UpdateSlot(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req models.UpdateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid slot payload"))
		return
	}
	slot, err := h.service.UpdateSlot(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, slot)
}

// DeleteSlot godoc
// @Summary Delete a slot
// @Tags CourseSlots
// @Param id path string true "Slot ID"
// @Success 204
// @Router /courseslots/{id} [delete]
func (h *CourseHandler) DeleteSlot(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	if err := h.service.DeleteSlot(c.Request.Context(), actor, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Update godoc
// @Summary Update course fields
// @Tags Courses
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body models.UpdateCourseRequest true "Course payload"
// @Success 200 {object} response.Envelope
// @Router /courses/{id} [put]
func (h *CourseHandler) Update(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req models.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid course payload"))
		return
	}
	course, err := h.service.Update(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, course)
}

// Archive godoc
// @Summary Archive a course
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/archive [post]
func (h *CourseHandler) Archive(c *gin.Context) {
	h.toggleArchive(c, h.service.Archive)
}

// Unarchive godoc
// @Summary Unarchive a course
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/unarchive [post]
func (h *CourseHandler) Unarchive(c *gin.Context) {
	h.toggleArchive(c, h.service.Unarchive)
}

func (h *CourseHandler) toggleArchive(c *gin.Context, apply func(context.Context, models.Actor, string) (*models.Course, error)) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	course, err := apply(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, course)
}
