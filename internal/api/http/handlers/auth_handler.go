package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/airo-kpi/redo-service/internal/api/dto"
	"github.com/airo-kpi/redo-service/internal/auth"
	apperrors "github.com/airo-kpi/redo-service/pkg/util/errorutil"
)

// AuthHandler exchanges client credentials for bearer tokens.
type AuthHandler struct {
	clients *auth.ClientRegistry
	tokens  *auth.TokenManager
}

// NewAuthHandler constructs handler.
func NewAuthHandler(clients *auth.ClientRegistry, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{clients: clients, tokens: tokens}
}

// Token POST /auth/token.
func (h *AuthHandler) Token(c *fiber.Ctx) error {
	var req dto.TokenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ClientID == "" || req.ClientSecret == "" {
		return apperrors.NewValidationError("client_id and client_secret required", nil)
	}

	if err := h.clients.Verify(req.ClientID, req.ClientSecret); err != nil {
		return apperrors.NewUnauthorized("invalid client credentials")
	}

	token, expiresAt, err := h.tokens.GenerateToken(req.ClientID)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(dto.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	})
}
