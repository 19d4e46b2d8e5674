package wire

import (
	"time"

	"mediateka/internal/adaptor"
	"mediateka/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"
)

func wireAuth(
	r chi.Router,
	authHandler *adaptor.AuthHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	// Both endpoints are open but rate-limited per client IP
	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(config.Rate.AuthPerMinute, time.Minute))

		r.Post("/api/v1/auth/signup", authHandler.Signup)
		r.Post("/api/v1/auth/token", authHandler.Token)
	})
}
