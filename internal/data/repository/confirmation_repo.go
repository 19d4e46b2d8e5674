package repository

import (
	"context"
	"fmt"

	"mediateka/internal/data/entity"
	"mediateka/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ConfirmationRepository interface {
	Create(ctx context.Context, code *entity.ConfirmationCode) error
	FindActiveByUserID(ctx context.Context, userID uuid.UUID) (*entity.ConfirmationCode, error)
	MarkAsUsed(ctx context.Context, codeID uuid.UUID) error
}

type confirmationRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewConfirmationRepository(db database.PgxIface, log *zap.Logger) ConfirmationRepository {
	return &confirmationRepository{
		db:  db,
		log: log.With(zap.String("repository", "confirmation")),
	}
}

func (r *confirmationRepository) Create(ctx context.Context, code *entity.ConfirmationCode) error {
	query := `
		INSERT INTO confirmation_codes (id, user_id, email, code_hash,
		                                expires_at, is_used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		code.ID,
		code.UserID,
		code.Email,
		code.CodeHash,
		code.ExpiresAt,
		code.IsUsed,
		code.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create confirmation code",
			zap.Error(err),
			zap.String("email", code.Email),
		)
		return fmt.Errorf("create confirmation code for %s: %w", code.Email, err)
	}

	return nil
}

// FindActiveByUserID returns the newest unexpired, unused code for the user.
// The stored value is a hash; the caller compares the presented code against it.
func (r *confirmationRepository) FindActiveByUserID(ctx context.Context, userID uuid.UUID) (*entity.ConfirmationCode, error) {
	query := `
		SELECT id, user_id, email, code_hash, expires_at, is_used, created_at
		FROM confirmation_codes
		WHERE user_id = $1
		  AND is_used = false
		  AND expires_at > NOW()
		ORDER BY created_at DESC
		LIMIT 1
	`

	var code entity.ConfirmationCode
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&code.ID,
		&code.UserID,
		&code.Email,
		&code.CodeHash,
		&code.ExpiresAt,
		&code.IsUsed,
		&code.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find active confirmation code",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find active confirmation code for %s: %w", userID.String(), err)
	}

	return &code, nil
}

func (r *confirmationRepository) MarkAsUsed(ctx context.Context, codeID uuid.UUID) error {
	query := `
		UPDATE confirmation_codes
		SET is_used = true
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, codeID)
	if err != nil {
		r.log.Error("Failed to mark confirmation code as used",
			zap.Error(err),
			zap.String("code_id", codeID.String()),
		)
		return fmt.Errorf("mark confirmation code %s as used: %w", codeID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("confirmation code %s not found", codeID.String())
	}

	return nil
}
