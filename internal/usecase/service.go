package usecase

import (
	"mediateka/internal/data/repository"
	"mediateka/pkg/auth"
	"mediateka/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth     AuthService
	User     UserService
	Category CategoryService
	Genre    GenreService
	Title    TitleService
	Review   ReviewService
	Comment  CommentService
}

func NewService(repo *repository.Repository, tokens auth.TokenManager, config *utils.Config, log *zap.Logger) *Service {
	return &Service{
		Auth:     NewAuthService(repo, tokens, config, log),
		User:     NewUserService(repo, config, log),
		Category: NewCategoryService(repo, log),
		Genre:    NewGenreService(repo, log),
		Title:    NewTitleService(repo, log),
		Review:   NewReviewService(repo, log),
		Comment:  NewCommentService(repo, log),
	}
}
