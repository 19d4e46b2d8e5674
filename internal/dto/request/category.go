package request

type CategoryRequest struct {
	Name string `json:"name" validate:"required,max=256"`
	Slug string `json:"slug" validate:"required,slug,max=50"`
}

type CategoryUpdateRequest struct {
	Name *string `json:"name,omitempty" validate:"omitempty,max=256"`
	Slug *string `json:"slug,omitempty" validate:"omitempty,slug,max=50"`
}
