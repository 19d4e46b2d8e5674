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

type ReviewHandler struct {
	service usecase.ReviewService
	log     *zap.Logger
}

func NewReviewHandler(service usecase.ReviewService, log *zap.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		log:     log.With(zap.String("handler", "review")),
	}
}

// GetReviews handles GET /api/v1/titles/{titleID}/reviews
func (h *ReviewHandler) GetReviews(w http.ResponseWriter, r *http.Request) {
	titleID := chi.URLParam(r, "titleID")
	req := parsePagination(r.URL.Query())

	reviews, err := h.service.GetReviews(r.Context(), titleID, req)
	if err != nil {
		handleServiceError(w, h.log, err, "get reviews")
		return
	}

	responsePaginated(w, "Reviews retrieved successfully", reviews)
}

// GetReviewByID handles GET /api/v1/titles/{titleID}/reviews/{reviewID}
func (h *ReviewHandler) GetReviewByID(w http.ResponseWriter, r *http.Request) {
	titleID := chi.URLParam(r, "titleID")
	reviewID := chi.URLParam(r, "reviewID")

	review, err := h.service.GetReviewByID(r.Context(), titleID, reviewID)
	if err != nil {
		handleServiceError(w, h.log, err, "get review")
		return
	}

	utils.ResponseSuccess(w, "Review retrieved successfully", review)
}

// CreateReview handles POST /api/v1/titles/{titleID}/reviews
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	titleID := chi.URLParam(r, "titleID")

	ident, ok := utils.GetIdentityFromContext(r.Context())
	if !ok || !ident.Authenticated {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CreateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	review, err := h.service.CreateReview(r.Context(), titleID, ident, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create review")
		return
	}

	utils.ResponseCreated(w, "Review created successfully", review)
}

// UpdateReview handles PATCH /api/v1/titles/{titleID}/reviews/{reviewID}
func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	titleID := chi.URLParam(r, "titleID")
	reviewID := chi.URLParam(r, "reviewID")

	ident, _ := utils.GetIdentityFromContext(r.Context())
	authz := permission.Request{Method: r.Method, Identity: ident}

	var req request.UpdateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	review, err := h.service.UpdateReview(r.Context(), titleID, reviewID, authz, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update review")
		return
	}

	utils.ResponseSuccess(w, "Review updated successfully", review)
}

// DeleteReview handles DELETE /api/v1/titles/{titleID}/reviews/{reviewID}
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	titleID := chi.URLParam(r, "titleID")
	reviewID := chi.URLParam(r, "reviewID")

	ident, _ := utils.GetIdentityFromContext(r.Context())
	authz := permission.Request{Method: r.Method, Identity: ident}

	if err := h.service.DeleteReview(r.Context(), titleID, reviewID, authz); err != nil {
		handleServiceError(w, h.log, err, "delete review")
		return
	}

	utils.ResponseNoContent(w)
}
