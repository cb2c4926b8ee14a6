package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sophiemoustard/compani-api-sub005/internal/middleware"
	"github.com/sophiemoustard/compani-api-sub005/internal/models"
	appErrors "github.com/sophiemoustard/compani-api-sub005/pkg/errors"
	"github.com/sophiemoustard/compani-api-sub005/pkg/response"
)

// actorFromContext returns the authenticated actor, answering 401 when the request carries none.
func actorFromContext(c *gin.Context) (models.Actor, bool) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok || actor.UserID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return models.Actor{}, false
	}
	return actor, true
}

// queryList accepts both repeated and comma separated query values.
func queryList(c *gin.Context, key string) []string {
	var values []string
	for _, raw := range c.QueryArray(key) {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
	}
	return values
}

func invalidPayload(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}
