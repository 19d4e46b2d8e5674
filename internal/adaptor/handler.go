package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"mediateka/internal/dto/request"
	"mediateka/internal/dto/response"
	"mediateka/internal/usecase"
	"mediateka/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Auth     *AuthHandler
	User     *UserHandler
	Category *CategoryHandler
	Genre    *GenreHandler
	Title    *TitleHandler
	Review   *ReviewHandler
	Comment  *CommentHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth:     NewAuthHandler(service.Auth, log),
		User:     NewUserHandler(service.User, log),
		Category: NewCategoryHandler(service.Category, log),
		Genre:    NewGenreHandler(service.Genre, log),
		Title:    NewTitleHandler(service.Title, log),
		Review:   NewReviewHandler(service.Review, log),
		Comment:  NewCommentHandler(service.Comment, log),
	}
}

// handleServiceError maps the service sentinels onto HTTP responses. Every
// handler funnels its service errors through here.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	switch {
	case errors.Is(err, usecase.ErrNotFound):
		log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, usecase.ErrValidation):
		log.Warn(operation+" failed - validation", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	case errors.Is(err, usecase.ErrForbidden):
		log.Warn(operation+" denied", zap.Error(err))
		utils.ResponseForbidden(w, "You do not have permission to perform this action")

	default:
		log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}

// responsePaginated writes a list with its pagination block at the top
// level, next to data, rather than nested inside it.
func responsePaginated[T any](w http.ResponseWriter, message string, page *response.PaginatedResponse[T]) {
	resp := map[string]any{
		"status":     true,
		"message":    message,
		"data":       page.Data,
		"pagination": page.Pagination,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

func parsePagination(query url.Values) *request.PaginatedRequest {
	return &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}
}
