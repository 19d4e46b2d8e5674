package entity

import (
	"github.com/google/uuid"
)

type Comment struct {
	BaseNoDelete
	ReviewID uuid.UUID `db:"review_id"`
	AuthorID uuid.UUID `db:"author_id"`
	Text     string    `db:"text"`

	// filled by the users and reviews joins
	AuthorName string
	ReviewText string
}

func (c *Comment) Author() uuid.UUID {
	return c.AuthorID
}
