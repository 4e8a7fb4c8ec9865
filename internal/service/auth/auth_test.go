package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Temutjin2k/sitetrack/internal/domain/models"
	"github.com/Temutjin2k/sitetrack/internal/domain/types"
	"github.com/golang-jwt/jwt/v5"
)

func TestAuthenticateRoundTrip(t *testing.T) {
	v := NewVerifier("secret")
	token, err := v.Sign(models.Actor{ID: "drv-1", Role: types.DriverRole}, time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	actor, err := v.Authenticate(context.Background(), token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if actor.ID != "drv-1" || actor.Role != types.DriverRole {
		t.Errorf("unexpected actor %+v", actor)
	}
}

func TestAuthenticateRejects(t *testing.T) {
	v := NewVerifier("secret")
	other := NewVerifier("other-secret")

	foreign, _ := other.Sign(models.Actor{ID: "a", Role: types.AdminRole}, time.Minute)
	expired, _ := v.Sign(models.Actor{ID: "a", Role: types.AdminRole}, -time.Minute)
	badRole, _ := v.Sign(models.Actor{ID: "a", Role: "passenger"}, time.Minute)
	noUser, _ := v.Sign(models.Actor{Role: types.AdminRole}, time.Minute)
	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "a", Role: "admin"}).SignedString([]byte("secret"))

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"wrong secret", foreign, ErrInvalidToken},
		{"expired", expired, ErrExpToken},
		{"unknown role", badRole, ErrInvalidToken},
		{"missing user", noUser, ErrInvalidToken},
		{"missing exp", noExp, ErrInvalidToken},
		{"garbage", "not.a.jwt", ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := v.Authenticate(context.Background(), tt.token); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}
