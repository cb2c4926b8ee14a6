package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sophiemoustard/compani-api-sub005/internal/models"
	appErrors "github.com/sophiemoustard/compani-api-sub005/pkg/errors"
	"github.com/sophiemoustard/compani-api-sub005/pkg/response"
)

const (
	// ContextUserKey is the gin context key storing JWT claims.
	ContextUserKey = "currentUser"
	// ContextActorKey is the gin context key storing the request actor.
	ContextActorKey = "currentActor"
)

type tokenValidator interface {
	ValidateToken(token string) (*models.JWTClaims, error)
}

// JWT protects routes by requiring a valid access token.
func JWT(auth tokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := auth.ValidateToken(parts[1])
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		SetActor(c, claims)
		c.Next()
	}
}

// SetActor stores the claims and the actor derived from them on the context.
func SetActor(c *gin.Context, claims *models.JWTClaims) {
	c.Set(ContextUserKey, claims)
	c.Set(ContextActorKey, claims.Actor())
}

// ActorFromContext returns the authenticated actor.
func ActorFromContext(c *gin.Context) (models.Actor, bool) {
	value, exists := c.Get(ContextActorKey)
	if !exists {
		return models.Actor{}, false
	}
	actor, ok := value.(models.Actor)
	return actor, ok
}

// ActorLogFields adds the authenticated user to access logs.
func ActorLogFields(c *gin.Context) []zap.Field {
	actor, ok := ActorFromContext(c)
	if !ok {
		return nil
	}
	return []zap.Field{zap.String("user_id", actor.UserID)}
}
