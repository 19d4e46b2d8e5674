package usecase

import (
	"context"
	"fmt"
	"time"

	"mediateka/internal/data/entity"
	"mediateka/internal/data/repository"
	"mediateka/internal/dto/request"
	"mediateka/internal/dto/response"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TitleService interface {
	GetTitles(ctx context.Context, req *request.PaginatedRequest, filter repository.TitleFilter) (*response.PaginatedResponse[response.TitleResponse], error)
	GetTitleByID(ctx context.Context, titleID string) (*response.TitleResponse, error)
	CreateTitle(ctx context.Context, req *request.TitleRequest) (*response.TitleResponse, error)
	UpdateTitle(ctx context.Context, titleID string, req *request.TitleUpdateRequest) (*response.TitleResponse, error)
	DeleteTitle(ctx context.Context, titleID string) error
}

type titleService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewTitleService(
	repo *repository.Repository,
	log *zap.Logger,
) TitleService {
	return &titleService{
		repo: repo,
		log:  log.With(zap.String("service", "title")),
	}
}

func (s *titleService) GetTitles(ctx context.Context, req *request.PaginatedRequest, filter repository.TitleFilter) (*response.PaginatedResponse[response.TitleResponse], error) {
	limit := req.Limit()
	offset := req.Offset()

	titles, err := s.repo.Title.FindAll(ctx, filter, limit, offset)
	if err != nil {
		s.log.Error("Failed to get titles",
			zap.Error(err),
			zap.Int("page", req.Page),
			zap.Int("per_page", req.PerPage),
		)
		return nil, fmt.Errorf("get titles: %w", err)
	}

	total, err := s.repo.Title.CountAll(ctx, filter)
	if err != nil {
		s.log.Error("Failed to count titles", zap.Error(err))
		return nil, fmt.Errorf("count titles: %w", err)
	}

	titleResponses := make([]response.TitleResponse, len(titles))
	for i, title := range titles {
		rating, err := s.enrichTitle(ctx, title)
		if err != nil {
			return nil, err
		}
		titleResponses[i] = response.TitleToResponse(title, rating)
	}

	return response.NewPaginatedResponse(titleResponses, req.Page, req.PerPage, total), nil
}

func (s *titleService) GetTitleByID(ctx context.Context, titleID string) (*response.TitleResponse, error) {
	title, err := s.findTitle(ctx, titleID)
	if err != nil {
		return nil, err
	}

	rating, err := s.enrichTitle(ctx, title)
	if err != nil {
		return nil, err
	}

	resp := response.TitleToResponse(title, rating)
	return &resp, nil
}

func (s *titleService) CreateTitle(ctx context.Context, req *request.TitleRequest) (*response.TitleResponse, error) {
	// 1. The year may be this one, never a later one
	if req.Year > time.Now().Year() {
		return nil, ErrYearInFuture
	}

	// 2. Category and genres come in as slugs and must exist
	category, err := s.repo.Category.FindBySlug(ctx, req.Category)
	if err != nil {
		s.log.Error("Failed to find category", zap.Error(err), zap.String("slug", req.Category))
		return nil, fmt.Errorf("find category: %w", err)
	}
	if category == nil {
		return nil, fmt.Errorf("category %w", ErrNotFound)
	}

	genres, err := s.resolveGenres(ctx, req.Genre)
	if err != nil {
		return nil, err
	}

	// 3. Save the title
	now := time.Now()
	title := &entity.Title{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:        req.Name,
		Year:        req.Year,
		Description: req.Description,
		CategoryID:  &category.ID,
	}

	if err := s.repo.Title.Create(ctx, title); err != nil {
		s.log.Error("Failed to create title", zap.Error(err), zap.String("name", req.Name))
		return nil, fmt.Errorf("create title: %w", err)
	}

	// 4. Attach genres through the join table
	if err := s.attachGenres(ctx, title.ID, genres); err != nil {
		s.log.Error("Failed to attach genres",
			zap.Error(err),
			zap.String("title_id", title.ID.String()),
		)
		// Rollback: drop the title if the genre rows fail
		s.repo.Title.Delete(ctx, title.ID)
		return nil, fmt.Errorf("attach genres: %w", err)
	}

	title.Category = category
	title.Genres = genres

	s.log.Info("Title created",
		zap.String("title_id", title.ID.String()),
		zap.String("name", title.Name),
		zap.Int("genre_count", len(genres)),
	)

	resp := response.TitleToResponse(title, nil)
	return &resp, nil
}

func (s *titleService) UpdateTitle(ctx context.Context, titleID string, req *request.TitleUpdateRequest) (*response.TitleResponse, error) {
	title, err := s.findTitle(ctx, titleID)
	if err != nil {
		return nil, err
	}

	// Apply partial updates only for provided fields
	updated := false

	if req.Name != nil && *req.Name != title.Name {
		title.Name = *req.Name
		updated = true
	}

	if req.Year != nil {
		if *req.Year > time.Now().Year() {
			return nil, ErrYearInFuture
		}
		if *req.Year != title.Year {
			title.Year = *req.Year
			updated = true
		}
	}

	if req.Description != nil {
		title.Description = req.Description
		updated = true
	}

	if req.Category != nil {
		category, err := s.repo.Category.FindBySlug(ctx, *req.Category)
		if err != nil {
			s.log.Error("Failed to find category", zap.Error(err), zap.String("slug", *req.Category))
			return nil, fmt.Errorf("find category: %w", err)
		}
		if category == nil {
			return nil, fmt.Errorf("category %w", ErrNotFound)
		}

		title.CategoryID = &category.ID
		title.Category = category
		updated = true
	}

	// A provided genre list replaces the whole set, empty list included
	if req.Genre != nil {
		genres, err := s.resolveGenres(ctx, *req.Genre)
		if err != nil {
			return nil, err
		}

		if err := s.repo.TitleGenre.DeleteByTitleID(ctx, title.ID); err != nil {
			s.log.Error("Failed to clear genres", zap.Error(err), zap.String("title_id", title.ID.String()))
			return nil, fmt.Errorf("clear genres: %w", err)
		}
		if err := s.attachGenres(ctx, title.ID, genres); err != nil {
			s.log.Error("Failed to attach genres", zap.Error(err), zap.String("title_id", title.ID.String()))
			return nil, fmt.Errorf("attach genres: %w", err)
		}

		title.Genres = genres
		updated = true
	}

	if updated {
		title.UpdatedAt = time.Now()
		if err := s.repo.Title.Update(ctx, title); err != nil {
			s.log.Error("Failed to update title", zap.Error(err), zap.String("title_id", titleID))
			return nil, fmt.Errorf("update title: %w", err)
		}

		s.log.Info("Title updated",
			zap.String("title_id", title.ID.String()),
			zap.String("name", title.Name))
	}

	rating, err := s.enrichTitle(ctx, title)
	if err != nil {
		return nil, err
	}

	resp := response.TitleToResponse(title, rating)
	return &resp, nil
}

func (s *titleService) DeleteTitle(ctx context.Context, titleID string) error {
	title, err := s.findTitle(ctx, titleID)
	if err != nil {
		return err
	}

	// Reviews own comments, titles own reviews; clear from the bottom up
	if err := s.repo.Comment.DeleteByTitleID(ctx, title.ID); err != nil {
		s.log.Error("Failed to delete comments", zap.Error(err), zap.String("title_id", title.ID.String()))
		return fmt.Errorf("delete comments: %w", err)
	}
	if err := s.repo.Review.DeleteByTitleID(ctx, title.ID); err != nil {
		s.log.Error("Failed to delete reviews", zap.Error(err), zap.String("title_id", title.ID.String()))
		return fmt.Errorf("delete reviews: %w", err)
	}
	if err := s.repo.TitleGenre.DeleteByTitleID(ctx, title.ID); err != nil {
		s.log.Error("Failed to clear genres", zap.Error(err), zap.String("title_id", title.ID.String()))
		return fmt.Errorf("clear genres: %w", err)
	}

	if err := s.repo.Title.Delete(ctx, title.ID); err != nil {
		s.log.Error("Failed to delete title", zap.Error(err), zap.String("title_id", title.ID.String()))
		return fmt.Errorf("delete title: %w", err)
	}

	s.log.Info("Title deleted",
		zap.String("title_id", title.ID.String()),
		zap.String("name", title.Name))

	return nil
}

// ==================== HELPER METHODS ====================

// findTitle resolves a path id onto a stored title. A malformed id cannot
// name a record, so it reads as not found rather than a bad request.
func (s *titleService) findTitle(ctx context.Context, titleID string) (*entity.Title, error) {
	id, err := uuid.Parse(titleID)
	if err != nil {
		return nil, fmt.Errorf("title %w", ErrNotFound)
	}

	title, err := s.repo.Title.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to find title", zap.Error(err), zap.String("title_id", titleID))
		return nil, fmt.Errorf("find title: %w", err)
	}
	if title == nil {
		return nil, fmt.Errorf("title %w", ErrNotFound)
	}

	return title, nil
}

// enrichTitle loads the genre set when missing and computes the derived
// rating. The rating is never stored, only calculated from live reviews.
func (s *titleService) enrichTitle(ctx context.Context, title *entity.Title) (*float64, error) {
	if title.Genres == nil {
		genres, err := s.repo.Genre.FindByTitleID(ctx, title.ID)
		if err != nil {
			s.log.Error("Failed to load genres", zap.Error(err), zap.String("title_id", title.ID.String()))
			return nil, fmt.Errorf("load genres: %w", err)
		}
		title.Genres = genres
	}

	rating, err := s.repo.Review.TitleRating(ctx, title.ID)
	if err != nil {
		s.log.Error("Failed to compute rating", zap.Error(err), zap.String("title_id", title.ID.String()))
		return nil, fmt.Errorf("compute rating: %w", err)
	}

	return rating, nil
}

// resolveGenres maps genre slugs onto stored genres, ignoring repeats.
// Every slug must name an existing genre.
func (s *titleService) resolveGenres(ctx context.Context, slugs []string) ([]*entity.Genre, error) {
	if len(slugs) == 0 {
		return []*entity.Genre{}, nil
	}

	unique := make([]string, 0, len(slugs))
	seen := make(map[string]bool, len(slugs))
	for _, slug := range slugs {
		if !seen[slug] {
			seen[slug] = true
			unique = append(unique, slug)
		}
	}

	genres, err := s.repo.Genre.FindBySlugs(ctx, unique)
	if err != nil {
		s.log.Error("Failed to resolve genres", zap.Error(err), zap.Strings("slugs", unique))
		return nil, fmt.Errorf("resolve genres: %w", err)
	}
	if len(genres) != len(unique) {
		return nil, fmt.Errorf("genre %w", ErrNotFound)
	}

	return genres, nil
}

func (s *titleService) attachGenres(ctx context.Context, titleID uuid.UUID, genres []*entity.Genre) error {
	if len(genres) == 0 {
		return nil
	}

	now := time.Now()
	titleGenres := make([]*entity.TitleGenre, len(genres))
	for i, genre := range genres {
		titleGenres[i] = &entity.TitleGenre{
			BaseSimple: entity.BaseSimple{
				ID:        uuid.New(),
				CreatedAt: now,
			},
			TitleID: titleID,
			GenreID: genre.ID,
		}
	}

	return s.repo.TitleGenre.CreateBatch(ctx, titleGenres)
}
