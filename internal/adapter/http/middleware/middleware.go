package middleware

import (
	"context"

	"github.com/Temutjin2k/sitetrack/internal/domain/models"
	"github.com/Temutjin2k/sitetrack/pkg/logger"
)

type (
	Authenticator interface {
		Authenticate(ctx context.Context, token string) (models.Actor, error)
	}

	Middleware struct {
		auth Authenticator // nil disables token checks
		log  logger.Logger
	}
)

// NewMiddleware builds the middleware set. With a nil authenticator the
// service runs open, as a single-site deployment behind a trusted proxy.
func NewMiddleware(auth Authenticator, log logger.Logger) *Middleware {
	return &Middleware{
		auth: auth,
		log:  log,
	}
}
