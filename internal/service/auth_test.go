package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/octobees/contact-extractor/api/internal/auth"
	"github.com/octobees/contact-extractor/api/internal/config"
)

func TestAuthService_IssueToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash secret: %v", err)
	}
	jwtManager := auth.NewJWTManager("signing-key", time.Hour)
	svc := NewAuthService([]config.APIClient{
		{ID: "dashboard", Role: "client", SecretHash: string(hash)},
	}, jwtManager)

	tests := map[string]struct {
		clientID string
		secret   string
		expect   error
	}{
		"missing client id": {clientID: "  ", secret: "s3cret", expect: ErrInvalidInput},
		"missing secret":    {clientID: "dashboard", expect: ErrInvalidInput},
		"unknown client":    {clientID: "intruder", secret: "s3cret", expect: ErrInvalidCredentials},
		"wrong secret":      {clientID: "dashboard", secret: "guess", expect: ErrInvalidCredentials},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.IssueToken(context.Background(), tt.clientID, tt.secret); !errors.Is(err, tt.expect) {
				t.Fatalf("expected %v, got %v", tt.expect, err)
			}
		})
	}

	token, err := svc.IssueToken(context.Background(), " dashboard ", "s3cret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	claims, err := jwtManager.ParseToken(token)
	if err != nil {
		t.Fatalf("token does not parse: %v", err)
	}
	if claims.Subject != "dashboard" || claims.Role != "client" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}
