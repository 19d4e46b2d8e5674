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

type CommentService interface {
	GetComments(ctx context.Context, titleID, reviewID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.CommentResponse], error)
	GetCommentByID(ctx context.Context, titleID, reviewID, commentID string) (*response.CommentResponse, error)
	CreateComment(ctx context.Context, titleID, reviewID string, ident permission.Identity, req *request.CreateCommentRequest) (*response.CommentResponse, error)
	UpdateComment(ctx context.Context, titleID, reviewID, commentID string, authz permission.Request, req *request.UpdateCommentRequest) (*response.CommentResponse, error)
	DeleteComment(ctx context.Context, titleID, reviewID, commentID string, authz permission.Request) error
}

type commentService struct {
	repo   *repository.Repository
	policy permission.Policy
	log    *zap.Logger
}

func NewCommentService(
	repo *repository.Repository,
	log *zap.Logger,
) CommentService {
	return &commentService{
		repo:   repo,
		policy: permission.AdminModeratorOrAuthor{},
		log:    log.With(zap.String("service", "comment")),
	}
}

func (s *commentService) GetComments(ctx context.Context, titleID, reviewID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.CommentResponse], error) {
	review, err := s.findReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}

	limit := req.Limit()
	offset := req.Offset()

	comments, err := s.repo.Comment.FindByReviewID(ctx, review.ID, limit, offset)
	if err != nil {
		s.log.Error("Failed to get comments",
			zap.Error(err),
			zap.String("review_id", review.ID.String()),
			zap.Int("page", req.Page),
			zap.Int("per_page", req.PerPage),
		)
		return nil, fmt.Errorf("get comments: %w", err)
	}

	total, err := s.repo.Comment.CountByReviewID(ctx, review.ID)
	if err != nil {
		s.log.Error("Failed to count comments", zap.Error(err), zap.String("review_id", review.ID.String()))
		return nil, fmt.Errorf("count comments: %w", err)
	}

	commentResponses := make([]response.CommentResponse, len(comments))
	for i, comment := range comments {
		commentResponses[i] = response.CommentToResponse(comment)
	}

	return response.NewPaginatedResponse(commentResponses, req.Page, req.PerPage, total), nil
}

func (s *commentService) GetCommentByID(ctx context.Context, titleID, reviewID, commentID string) (*response.CommentResponse, error) {
	_, comment, err := s.findComment(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}

	resp := response.CommentToResponse(comment)
	return &resp, nil
}

func (s *commentService) CreateComment(ctx context.Context, titleID, reviewID string, ident permission.Identity, req *request.CreateCommentRequest) (*response.CommentResponse, error) {
	// 1. The commented review comes from the path, never the body
	review, err := s.findReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}

	// 2. Author comes from the verified identity
	now := time.Now()
	comment := &entity.Comment{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		ReviewID:   review.ID,
		AuthorID:   ident.UserID,
		Text:       req.Text,
		AuthorName: ident.Username,
		ReviewText: review.Text,
	}

	if err := s.repo.Comment.Create(ctx, comment); err != nil {
		s.log.Error("Failed to create comment",
			zap.Error(err),
			zap.String("review_id", review.ID.String()),
			zap.String("author_id", ident.UserID.String()),
		)
		return nil, fmt.Errorf("create comment: %w", err)
	}

	s.log.Info("Comment created",
		zap.String("comment_id", comment.ID.String()),
		zap.String("review_id", review.ID.String()),
		zap.String("author", ident.Username),
	)

	resp := response.CommentToResponse(comment)
	return &resp, nil
}

func (s *commentService) UpdateComment(ctx context.Context, titleID, reviewID, commentID string, authz permission.Request, req *request.UpdateCommentRequest) (*response.CommentResponse, error) {
	review, comment, err := s.findComment(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}

	// Only the author, a moderator or an admin may touch the record
	if !s.policy.AuthorizeObject(authz, comment) {
		s.log.Warn("Comment update denied",
			zap.String("comment_id", comment.ID.String()),
			zap.String("username", authz.Identity.Username))
		return nil, ErrForbidden
	}

	updated := false

	if req.Text != nil && *req.Text != comment.Text {
		comment.Text = *req.Text
		updated = true
	}

	if updated {
		comment.UpdatedAt = time.Now()
		if err := s.repo.Comment.Update(ctx, comment); err != nil {
			s.log.Error("Failed to update comment", zap.Error(err), zap.String("comment_id", commentID))
			return nil, fmt.Errorf("update comment: %w", err)
		}

		s.log.Info("Comment updated",
			zap.String("comment_id", comment.ID.String()),
			zap.String("review_id", review.ID.String()))
	}

	resp := response.CommentToResponse(comment)
	return &resp, nil
}

func (s *commentService) DeleteComment(ctx context.Context, titleID, reviewID, commentID string, authz permission.Request) error {
	review, comment, err := s.findComment(ctx, titleID, reviewID, commentID)
	if err != nil {
		return err
	}

	if !s.policy.AuthorizeObject(authz, comment) {
		s.log.Warn("Comment delete denied",
			zap.String("comment_id", comment.ID.String()),
			zap.String("username", authz.Identity.Username))
		return ErrForbidden
	}

	if err := s.repo.Comment.Delete(ctx, comment.ID); err != nil {
		s.log.Error("Failed to delete comment", zap.Error(err), zap.String("comment_id", commentID))
		return fmt.Errorf("delete comment: %w", err)
	}

	s.log.Info("Comment deleted",
		zap.String("comment_id", comment.ID.String()),
		zap.String("review_id", review.ID.String()))

	return nil
}

// ==================== HELPER METHODS ====================

// findReview resolves the title/review pair from the path; both the title
// and the pairing must hold for the review to exist here.
func (s *commentService) findReview(ctx context.Context, titleID, reviewID string) (*entity.Review, error) {
	tid, err := uuid.Parse(titleID)
	if err != nil {
		return nil, fmt.Errorf("title %w", ErrNotFound)
	}

	title, err := s.repo.Title.FindByID(ctx, tid)
	if err != nil {
		s.log.Error("Failed to find title", zap.Error(err), zap.String("title_id", titleID))
		return nil, fmt.Errorf("find title: %w", err)
	}
	if title == nil {
		return nil, fmt.Errorf("title %w", ErrNotFound)
	}

	rid, err := uuid.Parse(reviewID)
	if err != nil {
		return nil, fmt.Errorf("review %w", ErrNotFound)
	}

	review, err := s.repo.Review.FindByID(ctx, rid)
	if err != nil {
		s.log.Error("Failed to find review", zap.Error(err), zap.String("review_id", reviewID))
		return nil, fmt.Errorf("find review: %w", err)
	}
	if review == nil || review.TitleID != title.ID {
		return nil, fmt.Errorf("review %w", ErrNotFound)
	}

	return review, nil
}

func (s *commentService) findComment(ctx context.Context, titleID, reviewID, commentID string) (*entity.Review, *entity.Comment, error) {
	review, err := s.findReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, nil, err
	}

	id, err := uuid.Parse(commentID)
	if err != nil {
		return nil, nil, fmt.Errorf("comment %w", ErrNotFound)
	}

	comment, err := s.repo.Comment.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to find comment", zap.Error(err), zap.String("comment_id", commentID))
		return nil, nil, fmt.Errorf("find comment: %w", err)
	}
	if comment == nil || comment.ReviewID != review.ID {
		return nil, nil, fmt.Errorf("comment %w", ErrNotFound)
	}

	return review, comment, nil
}
