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

func wireGenre(
	r chi.Router,
	genreHandler *adaptor.GenreHandler,
	tokens auth.TokenManager,
	repo *repository.Repository,
	log *zap.Logger,
) {
	// Reads are public, writes are admin only
	r.Group(func(r chi.Router) {
		r.Use(middleware.Identify(tokens, repo.User, log))
		r.Use(middleware.Permission(permission.AdminOrReadOnly{}, log))

		r.Get("/api/v1/genres", genreHandler.GetGenres)
		r.Post("/api/v1/genres", genreHandler.CreateGenre)
		r.Delete("/api/v1/genres/{slug}", genreHandler.DeleteGenre)
	})
}
