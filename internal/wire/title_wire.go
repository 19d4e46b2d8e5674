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

func wireTitle(
	r chi.Router,
	titleHandler *adaptor.TitleHandler,
	tokens auth.TokenManager,
	repo *repository.Repository,
	log *zap.Logger,
) {
	// Reads are public, writes are admin only
	r.Group(func(r chi.Router) {
		r.Use(middleware.Identify(tokens, repo.User, log))
		r.Use(middleware.Permission(permission.AdminOrReadOnly{}, log))

		r.Get("/api/v1/titles", titleHandler.GetTitles)
		r.Post("/api/v1/titles", titleHandler.CreateTitle)
		r.Get("/api/v1/titles/{titleID}", titleHandler.GetTitleByID)
		r.Patch("/api/v1/titles/{titleID}", titleHandler.UpdateTitle)
		r.Delete("/api/v1/titles/{titleID}", titleHandler.DeleteTitle)
	})
}
