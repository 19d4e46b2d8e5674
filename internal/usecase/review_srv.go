package usecase

import (
	"context"
	"fmt"
	"time"

	"mediateka/internal/data/entity"
	"mediateka/internal/data/repository"
	"mediateka/internal/dto/request"
	"mediateka/internal/dto/response"
	"mediateka/pkg/permission"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ReviewService interface {
	GetReviews(ctx context.Context, titleID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReviewResponse], error)
	GetReviewByID(ctx context.Context, titleID, reviewID string) (*response.ReviewResponse, error)
	CreateReview(ctx context.Context, titleID string, ident permission.Identity, req *request.CreateReviewRequest) (*response.ReviewResponse, error)
	UpdateReview(ctx context.Context, titleID, reviewID string, authz permission.Request, req *request.UpdateReviewRequest) (*response.ReviewResponse, error)
	DeleteReview(ctx context.Context, titleID, reviewID string, authz permission.Request) error
}

type reviewService struct {
	repo   *repository.Repository
	policy permission.Policy
	log    *zap.Logger
}

func NewReviewService(
	repo *repository.Repository,
	log *zap.Logger,
) ReviewService {
	return &reviewService{
		repo:   repo,
		policy: permission.AdminModeratorOrAuthor{},
		log:    log.With(zap.String("service", "review")),
	}
}

func (s *reviewService) GetReviews(ctx context.Context, titleID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReviewResponse], error) {
	title, err := s.findTitle(ctx, titleID)
	if err != nil {
		return nil, err
	}

	limit := req.Limit()
	offset := req.Offset()

	reviews, err := s.repo.Review.FindByTitleID(ctx, title.ID, limit, offset)
	if err != nil {
		s.log.Error("Failed to get reviews",
			zap.Error(err),
			zap.String("title_id", title.ID.String()),
			zap.Int("page", req.Page),
			zap.Int("per_page", req.PerPage),
		)
		return nil, fmt.Errorf("get reviews: %w", err)
	}

	total, err := s.repo.Review.CountByTitleID(ctx, title.ID)
	if err != nil {
		s.log.Error("Failed to count reviews", zap.Error(err), zap.String("title_id", title.ID.String()))
		return nil, fmt.Errorf("count reviews: %w", err)
	}

	reviewResponses := make([]response.ReviewResponse, len(reviews))
	for i, review := range reviews {
		reviewResponses[i] = response.ReviewToResponse(review, title.Name)
	}

	return response.NewPaginatedResponse(reviewResponses, req.Page, req.PerPage, total), nil
}

func (s *reviewService) GetReviewByID(ctx context.Context, titleID, reviewID string) (*response.ReviewResponse, error) {
	title, review, err := s.findReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}

	resp := response.ReviewToResponse(review, title.Name)
	return &resp, nil
}

func (s *reviewService) CreateReview(ctx context.Context, titleID string, ident permission.Identity, req *request.CreateReviewRequest) (*response.ReviewResponse, error) {
	// 1. The reviewed title comes from the path, never the body
	title, err := s.findTitle(ctx, titleID)
	if err != nil {
		return nil, err
	}

	// 2. One review per author per title
	exists, err := s.repo.Review.ExistsByTitleAndAuthor(ctx, title.ID, ident.UserID)
	if err != nil {
		s.log.Error("Failed to check existing review",
			zap.Error(err),
			zap.String("title_id", title.ID.String()),
			zap.String("author_id", ident.UserID.String()),
		)
		return nil, fmt.Errorf("check existing review: %w", err)
	}
	if exists {
		return nil, ErrReviewExists
	}

	// 3. Author comes from the verified identity
	now := time.Now()
	review := &entity.Review{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		TitleID:    title.ID,
		AuthorID:   ident.UserID,
		Text:       req.Text,
		Score:      *req.Score,
		AuthorName: ident.Username,
	}

	if err := s.repo.Review.Create(ctx, review); err != nil {
		s.log.Error("Failed to create review",
			zap.Error(err),
			zap.String("title_id", title.ID.String()),
			zap.String("author_id", ident.UserID.String()),
		)
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.log.Info("Review created",
		zap.String("review_id", review.ID.String()),
		zap.String("title_id", title.ID.String()),
		zap.String("author", ident.Username),
		zap.Int("score", review.Score),
	)

	resp := response.ReviewToResponse(review, title.Name)
	return &resp, nil
}

func (s *reviewService) UpdateReview(ctx context.Context, titleID, reviewID string, authz permission.Request, req *request.UpdateReviewRequest) (*response.ReviewResponse, error) {
	title, review, err := s.findReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}

	// Only the author, a moderator or an admin may touch the record
	if !s.policy.AuthorizeObject(authz, review) {
		s.log.Warn("Review update denied",
			zap.String("review_id", review.ID.String()),
			zap.String("username", authz.Identity.Username))
		return nil, ErrForbidden
	}

	updated := false

	if req.Text != nil && *req.Text != review.Text {
		review.Text = *req.Text
		updated = true
	}

	if req.Score != nil && *req.Score != review.Score {
		review.Score = *req.Score
		updated = true
	}

	if updated {
		review.UpdatedAt = time.Now()
		if err := s.repo.Review.Update(ctx, review); err != nil {
			s.log.Error("Failed to update review", zap.Error(err), zap.String("review_id", reviewID))
			return nil, fmt.Errorf("update review: %w", err)
		}

		s.log.Info("Review updated",
			zap.String("review_id", review.ID.String()),
			zap.String("title_id", title.ID.String()))
	}

	resp := response.ReviewToResponse(review, title.Name)
	return &resp, nil
}

func (s *reviewService) DeleteReview(ctx context.Context, titleID, reviewID string, authz permission.Request) error {
	title, review, err := s.findReview(ctx, titleID, reviewID)
	if err != nil {
		return err
	}

	if !s.policy.AuthorizeObject(authz, review) {
		s.log.Warn("Review delete denied",
			zap.String("review_id", review.ID.String()),
			zap.String("username", authz.Identity.Username))
		return ErrForbidden
	}

	// Comments go down with their review
	if err := s.repo.Comment.DeleteByReviewID(ctx, review.ID); err != nil {
		s.log.Error("Failed to delete comments", zap.Error(err), zap.String("review_id", reviewID))
		return fmt.Errorf("delete comments: %w", err)
	}

	if err := s.repo.Review.Delete(ctx, review.ID); err != nil {
		s.log.Error("Failed to delete review", zap.Error(err), zap.String("review_id", reviewID))
		return fmt.Errorf("delete review: %w", err)
	}

	s.log.Info("Review deleted",
		zap.String("review_id", review.ID.String()),
		zap.String("title_id", title.ID.String()))

	return nil
}

// ==================== HELPER METHODS ====================

func (s *reviewService) findTitle(ctx context.Context, titleID string) (*entity.Title, error) {
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

// findReview resolves the title/review pair from the path. A review reached
// through the wrong title does not exist as far as the API is concerned.
func (s *reviewService) findReview(ctx context.Context, titleID, reviewID string) (*entity.Title, *entity.Review, error) {
	title, err := s.findTitle(ctx, titleID)
	if err != nil {
		return nil, nil, err
	}

	id, err := uuid.Parse(reviewID)
	if err != nil {
		return nil, nil, fmt.Errorf("review %w", ErrNotFound)
	}

	review, err := s.repo.Review.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to find review", zap.Error(err), zap.String("review_id", reviewID))
		return nil, nil, fmt.Errorf("find review: %w", err)
	}
	if review == nil || review.TitleID != title.ID {
		return nil, nil, fmt.Errorf("review %w", ErrNotFound)
	}

	return title, review, nil
}
