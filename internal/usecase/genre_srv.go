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

type GenreService interface {
	GetGenres(ctx context.Context, req *request.PaginatedRequest, search string) (*response.PaginatedResponse[response.GenreResponse], error)
	CreateGenre(ctx context.Context, req *request.GenreRequest) (*response.GenreResponse, error)
	DeleteGenre(ctx context.Context, slug string) error
}

type genreService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewGenreService(
	repo *repository.Repository,
	log *zap.Logger,
) GenreService {
	return &genreService{
		repo: repo,
		log:  log.With(zap.String("service", "genre")),
	}
}

func (s *genreService) GetGenres(ctx context.Context, req *request.PaginatedRequest, search string) (*response.PaginatedResponse[response.GenreResponse], error) {
	limit := req.Limit()
	offset := req.Offset()

	genres, err := s.repo.Genre.FindAll(ctx, search, limit, offset)
	if err != nil {
		s.log.Error("Failed to get genres",
			zap.Error(err),
			zap.Int("page", req.Page),
			zap.Int("per_page", req.PerPage),
			zap.String("search", search),
		)
		return nil, fmt.Errorf("get genres: %w", err)
	}

	total, err := s.repo.Genre.CountAll(ctx, search)
	if err != nil {
		s.log.Error("Failed to count genres", zap.Error(err))
		return nil, fmt.Errorf("count genres: %w", err)
	}

	genreResponses := make([]response.GenreResponse, len(genres))
	for i, genre := range genres {
		genreResponses[i] = response.GenreToResponse(genre)
	}

	return response.NewPaginatedResponse(genreResponses, req.Page, req.PerPage, total), nil
}

func (s *genreService) CreateGenre(ctx context.Context, req *request.GenreRequest) (*response.GenreResponse, error) {
	existing, err := s.repo.Genre.FindBySlug(ctx, req.Slug)
	if err != nil {
		s.log.Error("Failed to check slug", zap.Error(err), zap.String("slug", req.Slug))
		return nil, fmt.Errorf("check slug: %w", err)
	}
	if existing != nil {
		return nil, ErrSlugTaken
	}

	now := time.Now()
	genre := &entity.Genre{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name: req.Name,
		Slug: req.Slug,
	}

	if err := s.repo.Genre.Create(ctx, genre); err != nil {
		s.log.Error("Failed to create genre", zap.Error(err), zap.String("slug", req.Slug))
		return nil, fmt.Errorf("create genre: %w", err)
	}

	s.log.Info("Genre created",
		zap.String("genre_id", genre.ID.String()),
		zap.String("slug", genre.Slug))

	resp := response.GenreToResponse(genre)
	return &resp, nil
}

func (s *genreService) DeleteGenre(ctx context.Context, slug string) error {
	genre, err := s.repo.Genre.FindBySlug(ctx, slug)
	if err != nil {
		s.log.Error("Failed to find genre", zap.Error(err), zap.String("slug", slug))
		return fmt.Errorf("find genre: %w", err)
	}
	if genre == nil {
		return fmt.Errorf("genre %w", ErrNotFound)
	}

	// Drop the join rows first so titles simply lose the genre
	if err := s.repo.TitleGenre.DeleteByGenreID(ctx, genre.ID); err != nil {
		s.log.Error("Failed to detach titles", zap.Error(err), zap.String("slug", slug))
		return fmt.Errorf("detach titles: %w", err)
	}

	if err := s.repo.Genre.Delete(ctx, genre.ID); err != nil {
		s.log.Error("Failed to delete genre", zap.Error(err), zap.String("slug", slug))
		return fmt.Errorf("delete genre: %w", err)
	}

	s.log.Info("Genre deleted",
		zap.String("genre_id", genre.ID.String()),
		zap.String("slug", genre.Slug))

	return nil
}
