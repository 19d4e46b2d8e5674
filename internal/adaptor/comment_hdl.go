package adaptor

import (
	"encoding/json"
	"net/http"

	"mediateka/internal/dto/request"
	"mediateka/internal/usecase"
	"mediateka/pkg/permission"
	"mediateka/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CommentHandler struct {
	service usecase.CommentService
	log     *zap.Logger
}

func NewCommentHandler(service usecase.CommentService, log *zap.Logger) *CommentHandler {
	return &CommentHandler{
		service: service,
		log:     log.With(zap.String("handler", "comment")),
	}
}

// GetComments handles GET /api/v1/titles/{titleID}/reviews/{reviewID}/comments
func (h *CommentHandler) GetComments(w http.ResponseWriter, r *http.Request) {
	titleID := chi.URLParam(r, "titleID")
	reviewID := chi.URLParam(r, "reviewID")
	req := parsePagination(r.URL.Query())

	comments, err := h.service.GetComments(r.Context(), titleID, reviewID, req)
	if err != nil {
		handleServiceError(w, h.log, err, "get comments")
		return
	}

	responsePaginated(w, "Comments retrieved successfully", comments)
}

// GetCommentByID handles GET .../reviews/{reviewID}/comments/{commentID}
func (h *CommentHandler) GetCommentByID(w http.ResponseWriter, r *http.Request) {
	titleID := chi.URLParam(r, "titleID")
	reviewID := chi.URLParam(r, "reviewID")
	commentID := chi.URLParam(r, "commentID")

	comment, err := h.service.GetCommentByID(r.Context(), titleID, reviewID, commentID)
	if err != nil {
		handleServiceError(w, h.log, err, "get comment")
		return
	}

	utils.ResponseSuccess(w, "Comment retrieved successfully", comment)
}

// CreateComment handles POST /api/v1/titles/{titleID}/reviews/{reviewID}/comments
func (h *CommentHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	titleID := chi.URLParam(r, "titleID")
	reviewID := chi.URLParam(r, "reviewID")

	ident, ok := utils.GetIdentityFromContext(r.Context())
	if !ok || !ident.Authenticated {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	comment, err := h.service.CreateComment(r.Context(), titleID, reviewID, ident, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create comment")
		return
	}

	utils.ResponseCreated(w, "Comment created successfully", comment)
}

// UpdateComment handles PATCH .../reviews/{reviewID}/comments/{commentID}
func (h *CommentHandler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	titleID := chi.URLParam(r, "titleID")
	reviewID := chi.URLParam(r, "reviewID")
	commentID := chi.URLParam(r, "commentID")

	ident, _ := utils.GetIdentityFromContext(r.Context())
	authz := permission.Request{Method: r.Method, Identity: ident}

	var req request.UpdateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	comment, err := h.service.UpdateComment(r.Context(), titleID, reviewID, commentID, authz, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update comment")
		return
	}

	utils.ResponseSuccess(w, "Comment updated successfully", comment)
}

// DeleteComment handles DELETE .../reviews/{reviewID}/comments/{commentID}
func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	titleID := chi.URLParam(r, "titleID")
	reviewID := chi.URLParam(r, "reviewID")
	commentID := chi.URLParam(r, "commentID")

	ident, _ := utils.GetIdentityFromContext(r.Context())
	authz := permission.Request{Method: r.Method, Identity: ident}

	if err := h.service.DeleteComment(r.Context(), titleID, reviewID, commentID, authz); err != nil {
		handleServiceError(w, h.log, err, "delete comment")
		return
	}

	utils.ResponseNoContent(w)
}
