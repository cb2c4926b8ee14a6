package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sophiemoustard/compani-api-sub005/internal/middleware"
	"github.com/sophiemoustard/compani-api-sub005/internal/models"
	"github.com/sophiemoustard/compani-api-sub005/internal/service"
	appErrors "github.com/sophiemoustard/compani-api-sub005/pkg/errors"
	"github.com/sophiemoustard/compani-api-sub005/pkg/response"
)

type courseHistoryLister interface {
	ListForCourse(ctx context.Context, query service.CourseHistoryQuery) (*service.CourseHistoryPage, error)
}

// CourseHistoryHandler exposes the course ledger.
type CourseHistoryHandler struct {
	service courseHistoryLister
}

// NewCourseHistoryHandler builds a new handler.
func NewCourseHistoryHandler(service courseHistoryLister) *CourseHistoryHandler {
	return &CourseHistoryHandler{service: service}
}

// List godoc
// @Summary List a course history, newest first
// @Tags CourseHistories
// @Produce json
// @Param id path string true "Course ID"
// @Param before query string false "RFC3339 cursor, exclusive"
// @Param before_id query string false "Entry ID breaking ties on before"
// @Param limit query int false "Page size (max 100)"
// @Param actions query string false "Comma separated actions"
// @Param trainee query string false "Trainee ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/histories [get]
func (h *CourseHistoryHandler) List(c *gin.Context) {
	query := service.CourseHistoryQuery{
		CourseID:  c.Param("id"),
		TraineeID: c.Query("trainee"),
	}
	if course, ok := middleware.CourseFromContext(c); ok {
		query.CourseID = course.ID
	}

	if raw := c.Query("before"); raw != "" {
		before, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Error(c, invalidPayload(err, "before must be an RFC3339 date"))
			return
		}
		query.Before = &before
	}
	if raw := c.Query("before_id"); raw != "" {
		if query.Before == nil || !primitive.IsValidObjectID(raw) {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "before_id must be an entry id given with before"))
			return
		}
		query.BeforeID = raw
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "limit must be a positive integer"))
			return
		}
		query.Limit = limit
	}
	for _, raw := range queryList(c, "actions") {
		action := models.CourseHistoryAction(raw)
		if !action.Valid() {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown history action "+raw))
			return
		}
		query.Actions = append(query.Actions, action)
	}

	page, err := h.service.ListForCourse(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, page.Histories, &page.Page)
}
