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
	"mediateka/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserService interface {
	GetUsers(ctx context.Context, req *request.PaginatedRequest, search string) (*response.PaginatedResponse[response.UserResponse], error)
	CreateUser(ctx context.Context, req *request.CreateUserRequest) (*response.UserResponse, error)
	GetUserByUsername(ctx context.Context, username string) (*response.UserResponse, error)
	UpdateUser(ctx context.Context, username string, req *request.UpdateUserRequest) (*response.UserResponse, error)
	DeleteUser(ctx context.Context, username string) error

	GetMe(ctx context.Context, ident permission.Identity) (*response.UserResponse, error)
	UpdateMe(ctx context.Context, ident permission.Identity, req *request.SelfUpdateRequest) (*response.UserResponse, error)
}

type userService struct {
	repo   *repository.Repository
	config *utils.Config
	log    *zap.Logger
}

func NewUserService(
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) UserService {
	return &userService{
		repo:   repo,
		config: config,
		log:    log.With(zap.String("service", "user")),
	}
}

func (s *userService) GetUsers(ctx context.Context, req *request.PaginatedRequest, search string) (*response.PaginatedResponse[response.UserResponse], error) {
	limit := req.Limit()
	offset := req.Offset()

	users, err := s.repo.User.FindAll(ctx, search, limit, offset)
	if err != nil {
		s.log.Error("Failed to get users",
			zap.Error(err),
			zap.Int("page", req.Page),
			zap.Int("per_page", req.PerPage),
			zap.String("search", search),
		)
		return nil, fmt.Errorf("get users: %w", err)
	}

	total, err := s.repo.User.CountAll(ctx, search)
	if err != nil {
		s.log.Error("Failed to count users", zap.Error(err))
		return nil, fmt.Errorf("count users: %w", err)
	}

	userResponses := make([]response.UserResponse, len(users))
	for i, user := range users {
		userResponses[i] = response.UserToResponse(user)
	}

	return response.NewPaginatedResponse(userResponses, req.Page, req.PerPage, total), nil
}

func (s *userService) CreateUser(ctx context.Context, req *request.CreateUserRequest) (*response.UserResponse, error) {
	// 1. Same name rules as signup
	if req.Username == "me" {
		return nil, ErrReservedUsername
	}

	existing, err := s.repo.User.FindByUsername(ctx, req.Username)
	if err != nil {
		s.log.Error("Failed to check username", zap.Error(err), zap.String("username", req.Username))
		return nil, fmt.Errorf("check username: %w", err)
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	existing, err = s.repo.User.FindByEmail(ctx, req.Email)
	if err != nil {
		s.log.Error("Failed to check email", zap.Error(err), zap.String("email", req.Email))
		return nil, fmt.Errorf("check email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	// 2. Role defaults to the base one when omitted
	role := entity.RoleUser
	if req.Role != nil {
		role = entity.UserRole(*req.Role)
	}

	now := time.Now()
	user := &entity.User{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      role,
	}

	if err := s.repo.User.Create(ctx, user); err != nil {
		s.log.Error("Failed to create user", zap.Error(err), zap.String("username", req.Username))
		return nil, fmt.Errorf("create user: %w", err)
	}

	// 3. Admin-created accounts still log in through the code flow
	if err := issueConfirmationCode(ctx, s.repo, s.config, s.log, user); err != nil {
		s.log.Error("Failed to issue confirmation code", zap.Error(err), zap.String("username", req.Username))
		return nil, err
	}

	s.log.Info("User created",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)))

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (s *userService) GetUserByUsername(ctx context.Context, username string) (*response.UserResponse, error) {
	user, err := s.repo.User.FindByUsername(ctx, username)
	if err != nil {
		s.log.Error("Failed to find user", zap.Error(err), zap.String("username", username))
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %w", ErrNotFound)
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (s *userService) UpdateUser(ctx context.Context, username string, req *request.UpdateUserRequest) (*response.UserResponse, error) {
	user, err := s.repo.User.FindByUsername(ctx, username)
	if err != nil {
		s.log.Error("Failed to find user", zap.Error(err), zap.String("username", username))
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %w", ErrNotFound)
	}

	updated, err := s.applyProfileChanges(ctx, user, req.Username, req.Email, req.FirstName, req.LastName, req.Bio)
	if err != nil {
		return nil, err
	}

	if req.Role != nil {
		role := entity.UserRole(*req.Role)
		if role != user.Role {
			user.Role = role
			updated = true
		}
	}

	if updated {
		user.UpdatedAt = time.Now()
		if err := s.repo.User.Update(ctx, user); err != nil {
			s.log.Error("Failed to update user", zap.Error(err), zap.String("username", username))
			return nil, fmt.Errorf("update user: %w", err)
		}

		s.log.Info("User updated",
			zap.String("user_id", user.ID.String()),
			zap.String("username", user.Username))
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (s *userService) DeleteUser(ctx context.Context, username string) error {
	user, err := s.repo.User.FindByUsername(ctx, username)
	if err != nil {
		s.log.Error("Failed to find user for delete", zap.Error(err), zap.String("username", username))
		return fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return fmt.Errorf("user %w", ErrNotFound)
	}

	if err := s.repo.User.Delete(ctx, user.ID); err != nil {
		s.log.Error("Failed to delete user", zap.Error(err), zap.String("username", username))
		return fmt.Errorf("delete user: %w", err)
	}

	s.log.Info("User deleted",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username))

	return nil
}

func (s *userService) GetMe(ctx context.Context, ident permission.Identity) (*response.UserResponse, error) {
	user, err := s.repo.User.FindByID(ctx, ident.UserID)
	if err != nil {
		s.log.Error("Failed to find user", zap.Error(err), zap.String("user_id", ident.UserID.String()))
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %w", ErrNotFound)
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

// UpdateMe edits the caller's own profile. The request type carries no role
// field, so this path can never change one.
func (s *userService) UpdateMe(ctx context.Context, ident permission.Identity, req *request.SelfUpdateRequest) (*response.UserResponse, error) {
	user, err := s.repo.User.FindByID(ctx, ident.UserID)
	if err != nil {
		s.log.Error("Failed to find user", zap.Error(err), zap.String("user_id", ident.UserID.String()))
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %w", ErrNotFound)
	}

	updated, err := s.applyProfileChanges(ctx, user, req.Username, req.Email, req.FirstName, req.LastName, req.Bio)
	if err != nil {
		return nil, err
	}

	if updated {
		user.UpdatedAt = time.Now()
		if err := s.repo.User.Update(ctx, user); err != nil {
			s.log.Error("Failed to update profile", zap.Error(err), zap.String("user_id", user.ID.String()))
			return nil, fmt.Errorf("update user: %w", err)
		}

		s.log.Info("Profile updated",
			zap.String("user_id", user.ID.String()),
			zap.String("username", user.Username))
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

// ==================== HELPER METHODS ====================

// applyProfileChanges copies the provided fields onto the user, enforcing
// the reserved name and uniqueness rules against everyone but the user
// themselves. Reports whether anything changed.
func (s *userService) applyProfileChanges(
	ctx context.Context,
	user *entity.User,
	username, email, firstName, lastName, bio *string,
) (bool, error) {
	updated := false

	if username != nil && *username != user.Username {
		if *username == "me" {
			return false, ErrReservedUsername
		}

		existing, err := s.repo.User.FindByUsername(ctx, *username)
		if err != nil {
			s.log.Error("Failed to check username", zap.Error(err), zap.String("username", *username))
			return false, fmt.Errorf("check username: %w", err)
		}
		if existing != nil && existing.ID != user.ID {
			return false, ErrUsernameTaken
		}

		user.Username = *username
		updated = true
	}

	if email != nil && *email != user.Email {
		existing, err := s.repo.User.FindByEmail(ctx, *email)
		if err != nil {
			s.log.Error("Failed to check email", zap.Error(err), zap.String("email", *email))
			return false, fmt.Errorf("check email: %w", err)
		}
		if existing != nil && existing.ID != user.ID {
			return false, ErrEmailTaken
		}

		user.Email = *email
		updated = true
	}

	if firstName != nil {
		user.FirstName = firstName
		updated = true
	}
	if lastName != nil {
		user.LastName = lastName
		updated = true
	}
	if bio != nil {
		user.Bio = bio
		updated = true
	}

	return updated, nil
}
