package middleware

import (
	"github.com/gin-gonic/gin"

	appctx "enoria/internal/core/context"
)

// HeaderUserID carries the acting user, set by the gateway in front of
// this service. Attribution only; the gateway authenticates.
const HeaderUserID = "X-User-ID"

// Actor middleware propagates the acting user into the request context so
// movements and documents record who created them.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(HeaderUserID)
		if userID != "" {
			ctx := appctx.WithActor(c.Request.Context(), &appctx.Actor{UserID: userID})
			c.Request = c.Request.WithContext(ctx)
			c.Set("user_id", userID)
		}
		c.Next()
	}
}
