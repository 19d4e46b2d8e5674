package request

type TitleRequest struct {
	Name        string   `json:"name" validate:"required,max=256"`
	Year        int      `json:"year" validate:"required"`
	Description *string  `json:"description,omitempty"`
	Category    string   `json:"category" validate:"required,slug,max=50"`
	Genre       []string `json:"genre,omitempty" validate:"dive,slug"`
}

type TitleUpdateRequest struct {
	Name        *string   `json:"name,omitempty" validate:"omitempty,max=256"`
	Year        *int      `json:"year,omitempty"`
	Description *string   `json:"description,omitempty"`
	Category    *string   `json:"category,omitempty" validate:"omitempty,slug,max=50"`
	Genre       *[]string `json:"genre,omitempty" validate:"omitempty,dive,slug"`
}
