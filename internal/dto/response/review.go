package response

import (
	"time"

	"mediateka/internal/data/entity"
)

type ReviewResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

// Helper converter
func ReviewToResponse(review *entity.Review, titleName string) ReviewResponse {
	return ReviewResponse{
		ID:        review.ID.String(),
		Title:     titleName,
		Author:    review.AuthorName,
		Text:      review.Text,
		Score:     review.Score,
		CreatedAt: review.CreatedAt,
	}
}
