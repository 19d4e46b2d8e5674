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

func wireComment(
	r chi.Router,
	commentHandler *adaptor.CommentHandler,
	tokens auth.TokenManager,
	repo *repository.Repository,
	log *zap.Logger,
) {
	// Same policy as reviews: open reads, authenticated writes, author or
	// staff for a single record
	r.Group(func(r chi.Router) {
		r.Use(middleware.Identify(tokens, repo.User, log))
		r.Use(middleware.Permission(permission.AdminModeratorOrAuthor{}, log))

		r.Get("/api/v1/titles/{titleID}/reviews/{reviewID}/comments", commentHandler.GetComments)
		r.Post("/api/v1/titles/{titleID}/reviews/{reviewID}/comments", commentHandler.CreateComment)
		r.Get("/api/v1/titles/{titleID}/reviews/{reviewID}/comments/{commentID}", commentHandler.GetCommentByID)
		r.Patch("/api/v1/titles/{titleID}/reviews/{reviewID}/comments/{commentID}", commentHandler.UpdateComment)
		r.Delete("/api/v1/titles/{titleID}/reviews/{reviewID}/comments/{commentID}", commentHandler.DeleteComment)
	})
}
