package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mediateka/internal/data/entity"
	"mediateka/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// TitleFilter narrows a title listing. Zero values mean "no constraint";
// all set fields combine with AND.
type TitleFilter struct {
	Category string // category slug, exact
	Genre    string // genre slug, exact
	Name     string // case-insensitive substring
	Year     *int   // exact
}

type TitleRepository interface {
	Create(ctx context.Context, title *entity.Title) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Title, error)
	FindAll(ctx context.Context, filter TitleFilter, limit, offset int) ([]*entity.Title, error)
	CountAll(ctx context.Context, filter TitleFilter) (int64, error)
	Update(ctx context.Context, title *entity.Title) error
	Delete(ctx context.Context, id uuid.UUID) error
	ClearCategory(ctx context.Context, categoryID uuid.UUID) error
}

type titleRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewTitleRepository(db database.PgxIface, log *zap.Logger) TitleRepository {
	return &titleRepository{
		db:  db,
		log: log.With(zap.String("repository", "title")),
	}
}

func (r *titleRepository) Create(ctx context.Context, title *entity.Title) error {
	query := `
		INSERT INTO titles (id, name, year, description, category_id,
		                    created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		title.ID,
		title.Name,
		title.Year,
		title.Description,
		title.CategoryID,
		title.CreatedAt,
		title.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create title",
			zap.Error(err),
			zap.String("name", title.Name),
		)
		return fmt.Errorf("create title %s: %w", title.Name, err)
	}

	return nil
}

func (r *titleRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Title, error) {
	query := `
		SELECT t.id, t.name, t.year, t.description, t.category_id,
		       t.created_at, t.updated_at,
		       c.id, c.name, c.slug, c.created_at, c.updated_at
		FROM titles t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.id = $1
	`

	title, err := scanTitle(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find title by ID",
			zap.Error(err),
			zap.String("title_id", id.String()),
		)
		return nil, fmt.Errorf("find title by id %s: %w", id.String(), err)
	}

	return title, nil
}

// filterConditions renders the filter as "AND ..." clauses with positional
// args starting at $1. FindAll and CountAll share the numbering.
func filterConditions(filter TitleFilter) (string, []interface{}) {
	var conditions strings.Builder
	args := []interface{}{}
	argCount := 1

	if filter.Category != "" {
		conditions.WriteString(fmt.Sprintf(" AND c.slug = $%d", argCount))
		args = append(args, filter.Category)
		argCount++
	}
	if filter.Genre != "" {
		conditions.WriteString(fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM title_genres tg
			INNER JOIN genres g ON g.id = tg.genre_id
			WHERE tg.title_id = t.id AND g.slug = $%d
		)`, argCount))
		args = append(args, filter.Genre)
		argCount++
	}
	if filter.Name != "" {
		conditions.WriteString(fmt.Sprintf(" AND t.name ILIKE '%%' || $%d || '%%'", argCount))
		args = append(args, filter.Name)
		argCount++
	}
	if filter.Year != nil {
		conditions.WriteString(fmt.Sprintf(" AND t.year = $%d", argCount))
		args = append(args, *filter.Year)
	}

	return conditions.String(), args
}

func (r *titleRepository) FindAll(ctx context.Context, filter TitleFilter, limit, offset int) ([]*entity.Title, error) {
	conditions, args := filterConditions(filter)

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT t.id, t.name, t.year, t.description, t.category_id,
		       t.created_at, t.updated_at,
		       c.id, c.name, c.slug, c.created_at, c.updated_at
		FROM titles t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE 1=1
	`)
	queryBuilder.WriteString(conditions)
	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY t.name, t.created_at LIMIT $%d OFFSET $%d",
		len(args)+1, len(args)+2))
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		r.log.Error("Failed to find all titles",
			zap.Error(err),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find all titles: %w", err)
	}
	defer rows.Close()

	var titles []*entity.Title
	for rows.Next() {
		title, err := scanTitle(rows)
		if err != nil {
			r.log.Error("Failed to scan title row", zap.Error(err))
			return nil, fmt.Errorf("scan title row: %w", err)
		}
		titles = append(titles, title)
	}

	if err := rows.Err(); err != nil {
		r.log.Error("Rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("iterate title rows: %w", err)
	}

	r.log.Debug("Titles found",
		zap.Int("count", len(titles)),
		zap.Int("limit", limit),
		zap.Int("offset", offset),
	)

	return titles, nil
}

func (r *titleRepository) CountAll(ctx context.Context, filter TitleFilter) (int64, error) {
	conditions, args := filterConditions(filter)

	query := `
		SELECT COUNT(*)
		FROM titles t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE 1=1
	` + conditions

	var count int64
	err := r.db.QueryRow(ctx, query, args...).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count titles", zap.Error(err))
		return 0, fmt.Errorf("count titles: %w", err)
	}

	return count, nil
}

func (r *titleRepository) Update(ctx context.Context, title *entity.Title) error {
	query := `
		UPDATE titles
		SET name = $2, year = $3, description = $4, category_id = $5,
		    updated_at = $6
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		title.ID,
		title.Name,
		title.Year,
		title.Description,
		title.CategoryID,
		title.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to update title",
			zap.Error(err),
			zap.String("title_id", title.ID.String()),
		)
		return fmt.Errorf("update title %s: %w", title.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("title %s not found", title.ID.String())
	}

	return nil
}

func (r *titleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM titles WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete title",
			zap.Error(err),
			zap.String("title_id", id.String()),
		)
		return fmt.Errorf("delete title %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("title %s not found", id.String())
	}

	r.log.Info("Title deleted", zap.String("title_id", id.String()))
	return nil
}

// ClearCategory detaches every title from a category about to be removed.
func (r *titleRepository) ClearCategory(ctx context.Context, categoryID uuid.UUID) error {
	query := `UPDATE titles SET category_id = NULL WHERE category_id = $1`

	_, err := r.db.Exec(ctx, query, categoryID)
	if err != nil {
		r.log.Error("Failed to clear category from titles",
			zap.Error(err),
			zap.String("category_id", categoryID.String()),
		)
		return fmt.Errorf("clear category %s from titles: %w", categoryID.String(), err)
	}

	return nil
}

// scanTitle reads a joined title row; the category columns may all be NULL.
func scanTitle(row pgx.Row) (*entity.Title, error) {
	var title entity.Title
	var catID *uuid.UUID
	var catName, catSlug *string
	var catCreated, catUpdated *time.Time

	err := row.Scan(
		&title.ID,
		&title.Name,
		&title.Year,
		&title.Description,
		&title.CategoryID,
		&title.CreatedAt,
		&title.UpdatedAt,
		&catID,
		&catName,
		&catSlug,
		&catCreated,
		&catUpdated,
	)
	if err != nil {
		return nil, err
	}

	if catID != nil {
		title.Category = &entity.Category{
			BaseNoDelete: entity.BaseNoDelete{
				ID:        *catID,
				CreatedAt: *catCreated,
				UpdatedAt: *catUpdated,
			},
			Name: *catName,
			Slug: *catSlug,
		}
	}

	return &title, nil
}
