package adaptor

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"mediateka/internal/data/repository"
	"mediateka/internal/dto/request"
	"mediateka/internal/usecase"
	"mediateka/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type TitleHandler struct {
	service usecase.TitleService
	log     *zap.Logger
}

func NewTitleHandler(service usecase.TitleService, log *zap.Logger) *TitleHandler {
	return &TitleHandler{
		service: service,
		log:     log.With(zap.String("handler", "title")),
	}
}

// GetTitles handles GET /api/v1/titles
func (h *TitleHandler) GetTitles(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := parsePagination(query)
	filter := parseTitleFilter(query)

	titles, err := h.service.GetTitles(r.Context(), req, filter)
	if err != nil {
		handleServiceError(w, h.log, err, "get titles")
		return
	}

	responsePaginated(w, "Titles retrieved successfully", titles)
}

// GetTitleByID handles GET /api/v1/titles/{titleID}
func (h *TitleHandler) GetTitleByID(w http.ResponseWriter, r *http.Request) {
	titleID := chi.URLParam(r, "titleID")

	title, err := h.service.GetTitleByID(r.Context(), titleID)
	if err != nil {
		handleServiceError(w, h.log, err, "get title")
		return
	}

	utils.ResponseSuccess(w, "Title retrieved successfully", title)
}

// CreateTitle handles POST /api/v1/titles (admin only)
func (h *TitleHandler) CreateTitle(w http.ResponseWriter, r *http.Request) {
	var req request.TitleRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	title, err := h.service.CreateTitle(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create title")
		return
	}

	utils.ResponseCreated(w, "Title created successfully", title)
}

// UpdateTitle handles PATCH /api/v1/titles/{titleID} (admin only)
func (h *TitleHandler) UpdateTitle(w http.ResponseWriter, r *http.Request) {
	titleID := chi.URLParam(r, "titleID")

	var req request.TitleUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	title, err := h.service.UpdateTitle(r.Context(), titleID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update title")
		return
	}

	utils.ResponseSuccess(w, "Title updated successfully", title)
}

// DeleteTitle handles DELETE /api/v1/titles/{titleID} (admin only)
func (h *TitleHandler) DeleteTitle(w http.ResponseWriter, r *http.Request) {
	titleID := chi.URLParam(r, "titleID")

	if err := h.service.DeleteTitle(r.Context(), titleID); err != nil {
		handleServiceError(w, h.log, err, "delete title")
		return
	}

	utils.ResponseNoContent(w)
}

// parseTitleFilter reads the catalogue facets from the query string. Unknown
// params and a non-numeric year are ignored.
func parseTitleFilter(query url.Values) repository.TitleFilter {
	filter := repository.TitleFilter{
		Category: query.Get("category"),
		Genre:    query.Get("genre"),
		Name:     query.Get("name"),
	}

	if yearStr := query.Get("year"); yearStr != "" {
		if year, err := strconv.Atoi(yearStr); err == nil {
			filter.Year = &year
		}
	}

	return filter
}
