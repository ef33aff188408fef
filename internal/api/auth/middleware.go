package auth

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireToken verifies the session cookie and attaches the caller identity
// to the request context. Requests without a valid token stop here with 401.
func RequireToken(tokens *TokenIssuer, cookies CookieConfig, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := tokens.Verify(cookies.Token(c))
		if err != nil {
			logger.Debug("Rejected request token",
				slog.String("path", c.Request.URL.Path),
				slog.String("error", err.Error()),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": ErrUnauthenticated.Error(),
			})
			return
		}

		c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}
