package request

type CreateReviewRequest struct {
	Text  string `json:"text" validate:"required"`
	Score *int   `json:"score" validate:"required,gte=0,lte=10"`
}

type UpdateReviewRequest struct {
	Text  *string `json:"text,omitempty" validate:"omitempty,min=1"`
	Score *int    `json:"score,omitempty" validate:"omitempty,gte=0,lte=10"`
}
