// Package services contains server-side business logic. This file implements
// UserService, which handles registration (with transactional outbox events),
// authentication, and user lookup.
package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aequatio-app/aequatio/internal/common"
	"github.com/aequatio-app/aequatio/internal/dbx"
	"github.com/aequatio-app/aequatio/internal/server/auth"
	"github.com/aequatio-app/aequatio/internal/server/config"
	"github.com/aequatio-app/aequatio/internal/server/models"
	"github.com/aequatio-app/aequatio/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// dummyHash is compared against when the email is unknown so that failed
// logins take the same time regardless of the cause.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// userRegisteredPayload is the body of the user.registered outbox event.
type userRegisteredPayload struct {
	UserID   string            `json:"user_id"`
	Username string            `json:"username"`
	Email    string            `json:"email"`
	Metadata map[string]string `json:"metadata"`
}

// UserService provides account-related operations:
// - Register: validate, hash, and create users plus their outbox event
// - Authenticate: verify credentials and mint an access token
// - GetByID: public user lookup
type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

// Register creates a new user and appends a user.registered event to the
// outbox in the same transaction. Policy violations are returned wrapped in
// common.ErrorValidation, duplicates as common.ErrorAlreadyExists.
func (s *UserService) Register(ctx context.Context, username, email, password string, metadata map[string]string) (*models.User, error) {

	if err := auth.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := auth.ValidatePasswordStrength(password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user := &models.User{Username: username, Email: email, HashedPassword: hash}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		created, err := s.repomanager.Users(tx).Create(ctx, user)
		if err != nil {
			return err
		}
		user = created

		payload, err := json.Marshal(userRegisteredPayload{
			UserID:   user.ID,
			Username: user.Username,
			Email:    user.Email,
			Metadata: metadata,
		})
		if err != nil {
			return err
		}

		event := &models.OutboxEvent{
			ID:            uuid.NewString(),
			AggregateType: "User",
			AggregateID:   user.ID,
			EventType:     "user.registered",
			EventVersion:  1,
			Payload:       payload,
			OccurredAt:    time.Now().UTC(),
		}
		return s.repomanager.Outbox(tx).Add(ctx, event)
	})

	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("error creating user: %v", err)
	}

	return user, nil
}

// Authenticate verifies the email/password pair and returns a signed access
// token. Unknown email, wrong password, and inactive accounts all yield
// common.ErrorUnauthorized so callers cannot distinguish the cases.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (string, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			auth.VerifyPassword(password, dummyHash)
			return "", common.ErrorUnauthorized
		}
		return "", common.ErrorInternal
	}

	if !auth.VerifyPassword(password, user.HashedPassword) {
		return "", common.ErrorUnauthorized
	}
	if !user.IsActive {
		return "", common.ErrorUnauthorized
	}

	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", common.ErrorInternal
	}

	return token, nil
}

// GetByID returns the user with the given id or common.ErrorNotFound.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, id)
}
