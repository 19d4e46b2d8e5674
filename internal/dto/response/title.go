package response

import (
	"time"

	"mediateka/internal/data/entity"
)

type TitleResponse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Year        int               `json:"year"`
	Rating      *int              `json:"rating"`
	Description *string           `json:"description,omitempty"`
	Genre       []GenreResponse   `json:"genre"`
	Category    *CategoryResponse `json:"category"`
	CreatedAt   time.Time         `json:"created_at"`
}

// TitleToResponse renders a title with its loaded relations. The rating is
// the review score mean truncated to an integer; nil keeps it null in JSON.
func TitleToResponse(title *entity.Title, rating *float64) TitleResponse {
	resp := TitleResponse{
		ID:          title.ID.String(),
		Name:        title.Name,
		Year:        title.Year,
		Description: title.Description,
		Genre:       make([]GenreResponse, 0, len(title.Genres)),
		CreatedAt:   title.CreatedAt,
	}

	for _, genre := range title.Genres {
		resp.Genre = append(resp.Genre, GenreToResponse(genre))
	}

	if title.Category != nil {
		category := CategoryToResponse(title.Category)
		resp.Category = &category
	}

	if rating != nil {
		score := int(*rating)
		resp.Rating = &score
	}

	return resp
}
