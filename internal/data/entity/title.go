package entity

import (
	"github.com/google/uuid"
)

type Title struct {
	BaseNoDelete
	Name        string     `db:"name"`
	Year        int        `db:"year"`
	Description *string    `db:"description"`
	CategoryID  *uuid.UUID `db:"category_id"`

	// relations, filled by joins
	Category *Category
	Genres   []*Genre
}
