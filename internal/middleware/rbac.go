package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/sophiemoustard/compani-api-sub005/internal/models"
	appErrors "github.com/sophiemoustard/compani-api-sub005/pkg/errors"
	"github.com/sophiemoustard/compani-api-sub005/pkg/response"
)

// ContextCourseKey is the gin context key storing the course loaded by RequireCourseCapability.
const ContextCourseKey = "currentCourse"

type courseAuthorizer interface {
	Authorize(ctx context.Context, actor models.Actor, courseID string, capability models.Capability) (*models.Course, error)
}

// RequireCourseCapability rejects the request unless the actor holds the capability on the course named by the :id parameter.
func RequireCourseCapability(authz courseAuthorizer, capability models.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFromContext(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		course, err := authz.Authorize(c.Request.Context(), actor, c.Param("id"), capability)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextCourseKey, course)
		c.Next()
	}
}

// CourseFromContext returns the course authorized earlier in the chain.
func CourseFromContext(c *gin.Context) (*models.Course, bool) {
	value, ok := c.Get(ContextCourseKey)
	if !ok {
		return nil, false
	}
	course, ok := value.(*models.Course)
	return course, ok && course != nil
}
