package entity

import (
	"github.com/google/uuid"
)

type Review struct {
	BaseNoDelete
	TitleID  uuid.UUID `db:"title_id"`
	AuthorID uuid.UUID `db:"author_id"`
	Text     string    `db:"text"`
	Score    int       `db:"score"` // 0-10

	// filled by the users join
	AuthorName string
}

func (r *Review) Author() uuid.UUID {
	return r.AuthorID
}
