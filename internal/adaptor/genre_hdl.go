package adaptor

import (
	"encoding/json"
	"net/http"

	"mediateka/internal/dto/request"
	"mediateka/internal/usecase"
	"mediateka/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type GenreHandler struct {
	service usecase.GenreService
	log     *zap.Logger
}

func NewGenreHandler(service usecase.GenreService, log *zap.Logger) *GenreHandler {
	return &GenreHandler{
		service: service,
		log:     log.With(zap.String("handler", "genre")),
	}
}

// GetGenres handles GET /api/v1/genres
func (h *GenreHandler) GetGenres(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := parsePagination(query)

	genres, err := h.service.GetGenres(r.Context(), req, query.Get("search"))
	if err != nil {
		handleServiceError(w, h.log, err, "get genres")
		return
	}

	responsePaginated(w, "Genres retrieved successfully", genres)
}

// CreateGenre handles POST /api/v1/genres (admin only)
func (h *GenreHandler) CreateGenre(w http.ResponseWriter, r *http.Request) {
	var req request.GenreRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	genre, err := h.service.CreateGenre(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create genre")
		return
	}

	utils.ResponseCreated(w, "Genre created successfully", genre)
}

// DeleteGenre handles DELETE /api/v1/genres/{slug} (admin only)
func (h *GenreHandler) DeleteGenre(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	if err := h.service.DeleteGenre(r.Context(), slug); err != nil {
		handleServiceError(w, h.log, err, "delete genre")
		return
	}

	utils.ResponseNoContent(w)
}
