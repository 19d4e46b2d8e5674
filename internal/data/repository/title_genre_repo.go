package repository

import (
	"context"
	"fmt"

	"mediateka/internal/data/entity"
	"mediateka/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TitleGenreRepository interface {
	CreateBatch(ctx context.Context, titleGenres []*entity.TitleGenre) error
	DeleteByTitleID(ctx context.Context, titleID uuid.UUID) error
	DeleteByGenreID(ctx context.Context, genreID uuid.UUID) error
}

type titleGenreRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewTitleGenreRepository(db database.PgxIface, log *zap.Logger) TitleGenreRepository {
	return &titleGenreRepository{
		db:  db,
		log: log.With(zap.String("repository", "title_genre")),
	}
}

func (r *titleGenreRepository) CreateBatch(ctx context.Context, titleGenres []*entity.TitleGenre) error {
	if len(titleGenres) == 0 {
		return nil
	}

	query := `INSERT INTO title_genres (id, title_id, genre_id, created_at) VALUES `
	args := []interface{}{}

	for i, tg := range titleGenres {
		if i > 0 {
			query += ", "
		}
		query += fmt.Sprintf("($%d, $%d, $%d, $%d)",
			i*4+1, i*4+2, i*4+3, i*4+4)

		args = append(args, tg.ID, tg.TitleID, tg.GenreID, tg.CreatedAt)
	}

	_, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to create batch title_genres",
			zap.Error(err),
			zap.Int("count", len(titleGenres)),
		)
		return fmt.Errorf("create batch title_genres: %w", err)
	}

	return nil
}

func (r *titleGenreRepository) DeleteByTitleID(ctx context.Context, titleID uuid.UUID) error {
	query := `DELETE FROM title_genres WHERE title_id = $1`

	_, err := r.db.Exec(ctx, query, titleID)
	if err != nil {
		r.log.Error("Failed to delete title_genres by title ID",
			zap.Error(err),
			zap.String("title_id", titleID.String()),
		)
		return fmt.Errorf("delete title_genres by title: %w", err)
	}

	return nil
}

func (r *titleGenreRepository) DeleteByGenreID(ctx context.Context, genreID uuid.UUID) error {
	query := `DELETE FROM title_genres WHERE genre_id = $1`

	_, err := r.db.Exec(ctx, query, genreID)
	if err != nil {
		r.log.Error("Failed to delete title_genres by genre ID",
			zap.Error(err),
			zap.String("genre_id", genreID.String()),
		)
		return fmt.Errorf("delete title_genres by genre: %w", err)
	}

	return nil
}
