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

type CategoryService interface {
	GetCategories(ctx context.Context, req *request.PaginatedRequest, search string) (*response.PaginatedResponse[response.CategoryResponse], error)
	CreateCategory(ctx context.Context, req *request.CategoryRequest) (*response.CategoryResponse, error)
	UpdateCategory(ctx context.Context, slug string, req *request.CategoryUpdateRequest) (*response.CategoryResponse, error)
	DeleteCategory(ctx context.Context, slug string) error
}

type categoryService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewCategoryService(
	repo *repository.Repository,
	log *zap.Logger,
) CategoryService {
	return &categoryService{
		repo: repo,
		log:  log.With(zap.String("service", "category")),
	}
}

func (s *categoryService) GetCategories(ctx context.Context, req *request.PaginatedRequest, search string) (*response.PaginatedResponse[response.CategoryResponse], error) {
	limit := req.Limit()
	offset := req.Offset()

	categories, err := s.repo.Category.FindAll(ctx, search, limit, offset)
	if err != nil {
		s.log.Error("Failed to get categories",
			zap.Error(err),
			zap.Int("page", req.Page),
			zap.Int("per_page", req.PerPage),
			zap.String("search", search),
		)
		return nil, fmt.Errorf("get categories: %w", err)
	}

	total, err := s.repo.Category.CountAll(ctx, search)
	if err != nil {
		s.log.Error("Failed to count categories", zap.Error(err))
		return nil, fmt.Errorf("count categories: %w", err)
	}

	categoryResponses := make([]response.CategoryResponse, len(categories))
	for i, category := range categories {
		categoryResponses[i] = response.CategoryToResponse(category)
	}

	return response.NewPaginatedResponse(categoryResponses, req.Page, req.PerPage, total), nil
}

func (s *categoryService) CreateCategory(ctx context.Context, req *request.CategoryRequest) (*response.CategoryResponse, error) {
	existing, err := s.repo.Category.FindBySlug(ctx, req.Slug)
	if err != nil {
		s.log.Error("Failed to check slug", zap.Error(err), zap.String("slug", req.Slug))
		return nil, fmt.Errorf("check slug: %w", err)
	}
	if existing != nil {
		return nil, ErrSlugTaken
	}

	now := time.Now()
	category := &entity.Category{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name: req.Name,
		Slug: req.Slug,
	}

	if err := s.repo.Category.Create(ctx, category); err != nil {
		s.log.Error("Failed to create category", zap.Error(err), zap.String("slug", req.Slug))
		return nil, fmt.Errorf("create category: %w", err)
	}

	s.log.Info("Category created",
		zap.String("category_id", category.ID.String()),
		zap.String("slug", category.Slug))

	resp := response.CategoryToResponse(category)
	return &resp, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, slug string, req *request.CategoryUpdateRequest) (*response.CategoryResponse, error) {
	category, err := s.repo.Category.FindBySlug(ctx, slug)
	if err != nil {
		s.log.Error("Failed to find category", zap.Error(err), zap.String("slug", slug))
		return nil, fmt.Errorf("find category: %w", err)
	}
	if category == nil {
		return nil, fmt.Errorf("category %w", ErrNotFound)
	}

	updated := false

	// Resubmitting the current slug is not a conflict; only a slug held by
	// a different category is.
	if req.Slug != nil && *req.Slug != category.Slug {
		existing, err := s.repo.Category.FindBySlug(ctx, *req.Slug)
		if err != nil {
			s.log.Error("Failed to check slug", zap.Error(err), zap.String("slug", *req.Slug))
			return nil, fmt.Errorf("check slug: %w", err)
		}
		if existing != nil && existing.ID != category.ID {
			return nil, ErrSlugTaken
		}

		category.Slug = *req.Slug
		updated = true
	}

	if req.Name != nil && *req.Name != category.Name {
		category.Name = *req.Name
		updated = true
	}

	if updated {
		category.UpdatedAt = time.Now()
		if err := s.repo.Category.Update(ctx, category); err != nil {
			s.log.Error("Failed to update category", zap.Error(err), zap.String("slug", slug))
			return nil, fmt.Errorf("update category: %w", err)
		}

		s.log.Info("Category updated",
			zap.String("category_id", category.ID.String()),
			zap.String("slug", category.Slug))
	}

	resp := response.CategoryToResponse(category)
	return &resp, nil
}

func (s *categoryService) DeleteCategory(ctx context.Context, slug string) error {
	category, err := s.repo.Category.FindBySlug(ctx, slug)
	if err != nil {
		s.log.Error("Failed to find category", zap.Error(err), zap.String("slug", slug))
		return fmt.Errorf("find category: %w", err)
	}
	if category == nil {
		return fmt.Errorf("category %w", ErrNotFound)
	}

	// Titles survive their category; the reference just goes away
	if err := s.repo.Title.ClearCategory(ctx, category.ID); err != nil {
		s.log.Error("Failed to detach titles", zap.Error(err), zap.String("slug", slug))
		return fmt.Errorf("detach titles: %w", err)
	}

	if err := s.repo.Category.Delete(ctx, category.ID); err != nil {
		s.log.Error("Failed to delete category", zap.Error(err), zap.String("slug", slug))
		return fmt.Errorf("delete category: %w", err)
	}

	s.log.Info("Category deleted",
		zap.String("category_id", category.ID.String()),
		zap.String("slug", category.Slug))

	return nil
}
