package usecase

import (
	"context"
	"fmt"
	"time"

	"mediateka/internal/data/entity"
	"mediateka/internal/data/repository"
	"mediateka/internal/dto/request"
	"mediateka/internal/dto/response"
	"mediateka/pkg/auth"
	"mediateka/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthService interface {
	Signup(ctx context.Context, req *request.SignupRequest) (*response.SignupResponse, error)
	Token(ctx context.Context, req *request.TokenRequest) (*response.TokenResponse, error)
}

type authService struct {
	repo   *repository.Repository
	tokens auth.TokenManager
	config *utils.Config
	log    *zap.Logger
}

func NewAuthService(
	repo *repository.Repository,
	tokens auth.TokenManager,
	config *utils.Config,
	log *zap.Logger,
) AuthService {
	return &authService{
		repo:   repo,
		tokens: tokens,
		config: config,
		log:    log.With(zap.String("service", "auth")),
	}
}

func (s *authService) Signup(ctx context.Context, req *request.SignupRequest) (*response.SignupResponse, error) {
	// 1. "me" is the self-profile endpoint, never an account name
	if req.Username == "me" {
		s.log.Warn("Signup with reserved username", zap.String("email", req.Email))
		return nil, ErrReservedUsername
	}

	// 2. Username must be free
	existing, err := s.repo.User.FindByUsername(ctx, req.Username)
	if err != nil {
		s.log.Error("Failed to check username", zap.Error(err), zap.String("username", req.Username))
		return nil, fmt.Errorf("check username: %w", err)
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	// 3. Email must be free
	existing, err = s.repo.User.FindByEmail(ctx, req.Email)
	if err != nil {
		s.log.Error("Failed to check email", zap.Error(err), zap.String("email", req.Email))
		return nil, fmt.Errorf("check email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	// 4. Create the account with the base role
	now := time.Now()
	user := &entity.User{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Username: req.Username,
		Email:    req.Email,
		Role:     entity.RoleUser,
	}

	if err := s.repo.User.Create(ctx, user); err != nil {
		s.log.Error("Failed to create user", zap.Error(err), zap.String("username", req.Username))
		return nil, fmt.Errorf("create user: %w", err)
	}

	// 5. Issue the confirmation code the token endpoint will check
	if err := issueConfirmationCode(ctx, s.repo, s.config, s.log, user); err != nil {
		s.log.Error("Failed to issue confirmation code", zap.Error(err), zap.String("username", req.Username))
		return nil, err
	}

	s.log.Info("User signed up",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username))

	return &response.SignupResponse{
		Email:    user.Email,
		Username: user.Username,
	}, nil
}

func (s *authService) Token(ctx context.Context, req *request.TokenRequest) (*response.TokenResponse, error) {
	// 1. An unknown username is a 404, not a 400
	user, err := s.repo.User.FindByUsername(ctx, req.Username)
	if err != nil {
		s.log.Error("Failed to find user", zap.Error(err), zap.String("username", req.Username))
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		s.log.Warn("Token requested for unknown user", zap.String("username", req.Username))
		return nil, fmt.Errorf("user %w", ErrNotFound)
	}

	// 2. Newest unused, unexpired code for the account
	code, err := s.repo.Confirmation.FindActiveByUserID(ctx, user.ID)
	if err != nil {
		s.log.Error("Failed to find confirmation code", zap.Error(err), zap.String("username", req.Username))
		return nil, fmt.Errorf("find confirmation code: %w", err)
	}
	if code == nil {
		return nil, ErrBadConfirmationCode
	}

	// 3. Compare against the stored hash
	if !auth.CheckCode(req.ConfirmationCode, code.CodeHash) {
		s.log.Warn("Confirmation code mismatch", zap.String("username", req.Username))
		return nil, ErrBadConfirmationCode
	}

	// 4. Burn the code
	if err := s.repo.Confirmation.MarkAsUsed(ctx, code.ID); err != nil {
		s.log.Warn("Failed to mark confirmation code as used",
			zap.Error(err), zap.String("code_id", code.ID.String()))
		// Continue anyway
	}

	// 5. Sign the access token
	token, err := s.tokens.Generate(user)
	if err != nil {
		s.log.Error("Failed to sign token", zap.Error(err), zap.String("username", req.Username))
		return nil, fmt.Errorf("sign token: %w", err)
	}

	s.log.Info("Access token issued",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username))

	return &response.TokenResponse{Token: token}, nil
}

// ==================== HELPER METHODS ====================

// issueConfirmationCode generates, hashes and stores a signup code. Shared
// with the user service so admin-created accounts can obtain tokens too.
func issueConfirmationCode(
	ctx context.Context,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
	user *entity.User,
) error {
	code, err := auth.GenerateCode(config.Code.Length)
	if err != nil {
		return fmt.Errorf("generate confirmation code: %w", err)
	}

	hash, err := auth.HashCode(code)
	if err != nil {
		return fmt.Errorf("hash confirmation code: %w", err)
	}

	now := time.Now()
	expiresAt := now.Add(time.Duration(config.Code.ExpiryMinutes) * time.Minute)

	record := &entity.ConfirmationCode{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		UserID:    user.ID,
		Email:     user.Email,
		CodeHash:  hash,
		ExpiresAt: expiresAt,
		IsUsed:    false,
	}

	if err := repo.Confirmation.Create(ctx, record); err != nil {
		return fmt.Errorf("store confirmation code: %w", err)
	}

	// Code delivery is out of scope; the log line stands in for the email.
	log.Info("Confirmation code issued",
		zap.String("email", user.Email),
		zap.String("username", user.Username),
		zap.String("code", code),
		zap.Time("expires_at", expiresAt),
	)

	// Print to console for development
	fmt.Printf("\n📧 Confirmation code for %s: %s (Expires: %s)\n\n",
		user.Email, code, expiresAt.Format("15:04:05"))

	return nil
}
