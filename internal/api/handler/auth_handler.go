package handler

import (
	"log/slog"
	"net/http"

	"github.com/cuongbtq/solosphere-be/internal/api/auth"
	"github.com/cuongbtq/solosphere-be/internal/api/dto"
	"github.com/gin-gonic/gin"
)

// IssueToken handles POST /jwt
// Signs a token for the posted identity and stores it in the session cookie
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req dto.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid token request", slog.String("error", err.Error()))
		badRequest(c, "email is required")
		return
	}

	token, err := h.tokens.Issue(auth.Identity{
		Email: req.Email,
		Name:  req.Name,
		Photo: req.Photo,
	})
	if err != nil {
		respondError(c, h.logger, err, "Failed to issue token")
		return
	}

	h.cookies.SetToken(c, token)
	h.logger.Info("Token issued", slog.String("email", req.Email))

	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true})
}

// Logout handles GET /logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.cookies.Clear(c)
	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true})
}
