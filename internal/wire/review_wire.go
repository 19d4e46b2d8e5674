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

func wireReview(
	r chi.Router,
	reviewHandler *adaptor.ReviewHandler,
	tokens auth.TokenManager,
	repo *repository.Repository,
	log *zap.Logger,
) {
	// Reads are public, any authenticated user may post; single records are
	// guarded again inside the service against non-authors
	r.Group(func(r chi.Router) {
		r.Use(middleware.Identify(tokens, repo.User, log))
		r.Use(middleware.Permission(permission.AdminModeratorOrAuthor{}, log))

		r.Get("/api/v1/titles/{titleID}/reviews", reviewHandler.GetReviews)
		r.Post("/api/v1/titles/{titleID}/reviews", reviewHandler.CreateReview)
		r.Get("/api/v1/titles/{titleID}/reviews/{reviewID}", reviewHandler.GetReviewByID)
		r.Patch("/api/v1/titles/{titleID}/reviews/{reviewID}", reviewHandler.UpdateReview)
		r.Delete("/api/v1/titles/{titleID}/reviews/{reviewID}", reviewHandler.DeleteReview)
	})
}
