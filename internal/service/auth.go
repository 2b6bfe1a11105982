package service

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/octobees/contact-extractor/api/internal/auth"
	"github.com/octobees/contact-extractor/api/internal/config"
)

// AuthService validates API client credentials and issues tokens.
type AuthService struct {
	clients map[string]config.APIClient
	jwt     *auth.JWTManager
}

// NewAuthService constructs a new AuthService.
func NewAuthService(clients []config.APIClient, jwtManager *auth.JWTManager) *AuthService {
	index := make(map[string]config.APIClient, len(clients))
	for _, c := range clients {
		index[c.ID] = c
	}
	return &AuthService{clients: index, jwt: jwtManager}
}

// IssueToken checks the client secret against its bcrypt hash and returns a JWT.
func (s *AuthService) IssueToken(ctx context.Context, clientID, secret string) (string, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" || secret == "" {
		return "", ErrInvalidInput
	}

	client, ok := s.clients[clientID]
	if !ok {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(client.SecretHash), []byte(secret)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.jwt.GenerateToken(client.ID, client.Role)
}
