package response

import (
	"time"

	"mediateka/internal/data/entity"
)

type CommentResponse struct {
	ID        string    `json:"id"`
	Review    string    `json:"review"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Helper converter
func CommentToResponse(comment *entity.Comment) CommentResponse {
	return CommentResponse{
		ID:        comment.ID.String(),
		Review:    comment.ReviewText,
		Author:    comment.AuthorName,
		Text:      comment.Text,
		CreatedAt: comment.CreatedAt,
	}
}
