package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/octobees/contact-extractor/api/internal/dto"
	"github.com/octobees/contact-extractor/api/internal/service"
)

// AuthHandler exposes the token endpoint for API clients.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Token handles POST /auth/token requests.
func (h *AuthHandler) Token(c echo.Context) error {
	var req dto.TokenRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid_input", "invalid payload")
	}

	req.ClientID = strings.TrimSpace(req.ClientID)
	if req.ClientID == "" || req.ClientSecret == "" {
		return Error(c, http.StatusBadRequest, "invalid_input", "client_id and client_secret are required")
	}

	token, err := h.authService.IssueToken(c.Request().Context(), req.ClientID, req.ClientSecret)
	if err != nil {
		return serviceError(c, err)
	}

	return Success(c, http.StatusOK, "token issued", dto.TokenResponse{AccessToken: token})
}
