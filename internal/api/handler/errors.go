package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cuongbtq/solosphere-be/internal/api/auth"
	"github.com/cuongbtq/solosphere-be/internal/api/domain"
	"github.com/cuongbtq/solosphere-be/internal/api/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var badRequestErrors = []error{
	domain.ErrDuplicateBid,
	domain.ErrOwnJobBid,
	domain.ErrInvalidPage,
	domain.ErrInvalidCategory,
	domain.ErrInvalidPriceRange,
	domain.ErrEmptyUpdate,
}

// statusFor maps a handler error to its HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrJobNotFound), errors.Is(err, domain.ErrBidNotFound):
		return http.StatusNotFound
	}
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

// respondError writes the error envelope. Internal failures are logged and
// reported with the fallback message so driver details stay server-side.
func respondError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error(fallback,
			slog.String("path", c.Request.URL.Path),
			slog.String("error", err.Error()),
		)
		message = fallback
	}
	c.AbortWithStatusJSON(status, dto.ErrorResponse{Message: message})
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Message: message})
}

// pathID reads the :id parameter and rejects anything that is not a UUID
func pathID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		badRequest(c, "id must be a valid UUID")
		return "", false
	}
	return id, true
}
