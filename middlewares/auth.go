package middlewares

import (
	"context"

	"github.com/gin-gonic/gin"

	"propertybooking-backend/models"
	"propertybooking-backend/services"
	"propertybooking-backend/utils"
)

const ctxKeyIdentity = "identity"

type Authenticator interface {
	Authenticate(ctx context.Context, authorization string) (services.Identity, error)
}

// Authenticate resolves the bearer token on every request and stores the
// caller for later handlers.
func Authenticate(auth Authenticator, verbose bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := auth.Authenticate(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			utils.RespondWithAppError(c, err, verbose)
			return
		}
		c.Set(ctxKeyIdentity, id)
		c.Next()
	}
}

func CurrentIdentity(c *gin.Context) (services.Identity, bool) {
	v, ok := c.Get(ctxKeyIdentity)
	if !ok {
		return services.Identity{}, false
	}
	id, ok := v.(services.Identity)
	return id, ok
}

func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := CurrentIdentity(c)
		if !ok {
			utils.RespondWithAppError(c, utils.Unauthenticated("Authentication required"), false)
			return
		}
		if err := services.RequireRole(id, roles...); err != nil {
			utils.RespondWithAppError(c, err, false)
			return
		}
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc { return RequireRole(models.RoleAdmin) }

func RequireLandlord() gin.HandlerFunc { return RequireRole(models.RoleLandlord, models.RoleAdmin) }

func RequireContractor() gin.HandlerFunc { return RequireRole(models.RoleContractor, models.RoleAdmin) }
