package wire

import (
	"mediateka/internal/adaptor"
	"mediateka/internal/data/repository"
	"mediateka/pkg/auth"
	"mediateka/pkg/middleware"
	"mediateka/pkg/permission"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireUser(
	r chi.Router,
	userHandler *adaptor.UserHandler,
	tokens auth.TokenManager,
	repo *repository.Repository,
	log *zap.Logger,
) {
	// ==================== SELF-PROFILE ROUTES ====================
	// Any authenticated user can read and edit their own profile
	r.Group(func(r chi.Router) {
		r.Use(middleware.Identify(tokens, repo.User, log))
		r.Use(middleware.Authenticate(log))

		r.Get("/api/v1/users/me", userHandler.GetMe)
		r.Patch("/api/v1/users/me", userHandler.UpdateMe)
	})

	// ==================== ADMIN ROUTES ====================
	// Account management is admin territory, every method included
	r.Group(func(r chi.Router) {
		r.Use(middleware.Identify(tokens, repo.User, log))
		r.Use(middleware.Permission(permission.AdministratorEdit{}, log))

		r.Get("/api/v1/users", userHandler.GetUsers)
		r.Post("/api/v1/users", userHandler.CreateUser)
		r.Get("/api/v1/users/{username}", userHandler.GetUser)
		r.Patch("/api/v1/users/{username}", userHandler.UpdateUser)
		r.Delete("/api/v1/users/{username}", userHandler.DeleteUser)
	})
}
