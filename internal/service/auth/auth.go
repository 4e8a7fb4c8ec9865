package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Temutjin2k/sitetrack/internal/domain/models"
	"github.com/Temutjin2k/sitetrack/internal/domain/types"
	wrap "github.com/Temutjin2k/sitetrack/pkg/logger/wrapper"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpToken     = errors.New("token expired")
)

// Claims are the access-token claims issued by the identity service.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	Name   string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Verifier checks HS256 access tokens and turns them into actors.
type Verifier struct {
	secret []byte
	now    func() time.Time
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret), now: time.Now}
}

// Authenticate validates token and returns the actor it names.
func (v *Verifier) Authenticate(ctx context.Context, token string) (models.Actor, error) {
	ctx = wrap.WithAction(ctx, "validate_token")

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return v.secret, nil
	}, jwt.WithTimeFunc(v.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.Actor{}, wrap.Error(ctx, ErrExpToken)
		}
		return models.Actor{}, wrap.Error(ctx, fmt.Errorf("%w: %v", ErrInvalidToken, err))
	}
	if !parsed.Valid {
		return models.Actor{}, wrap.Error(ctx, ErrInvalidToken)
	}

	if claims.UserID == "" {
		return models.Actor{}, wrap.Error(ctx, fmt.Errorf("%w: missing 'user_id'", ErrInvalidToken))
	}
	role := types.UserRole(claims.Role)
	switch role {
	case types.DriverRole, types.AdminRole, types.SupervisorRole:
	default:
		return models.Actor{}, wrap.Error(ctx, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, claims.Role))
	}

	return models.Actor{ID: claims.UserID, Role: role}, nil
}

// Sign issues a token for actor. Tokens are normally issued by the identity
// service; this is used by tests and local tooling.
func (v *Verifier) Sign(actor models.Actor, ttl time.Duration) (string, error) {
	now := v.now()
	claims := Claims{
		UserID: actor.ID,
		Role:   string(actor.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
