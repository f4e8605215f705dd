// Package users implements registration and credential checks for user
// accounts.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/bod9dzys/order-api-mvp/internal/app/domain/user"
	"github.com/bod9dzys/order-api-mvp/internal/app/storage"
	apperrors "github.com/bod9dzys/order-api-mvp/internal/errors"
	"github.com/bod9dzys/order-api-mvp/pkg/logger"
)

// ErrBadCredentials reports a failed email/password check. Handlers must not
// reveal which half was wrong.
var ErrBadCredentials = errors.New("bad credentials")

const minPasswordLength = 4

// Service manages user accounts.
type Service struct {
	store storage.UserStore
	log   *logger.Logger
}

// New constructs a user service.
func New(store storage.UserStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("users")
	}
	return &Service{store: store, log: log}
}

// Register creates a user with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, email, password string) (user.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return user.User{}, apperrors.BadRequest("a valid email is required")
	}
	if len(password) < minPasswordLength {
		return user.User{}, apperrors.BadRequest(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return user.User{}, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.store.CreateUser(ctx, user.User{
		Email:          email,
		HashedPassword: string(hashed),
		Role:           user.RoleClient,
	})
	if err != nil {
		return user.User{}, err
	}
	s.log.WithField("user_id", created.ID).Info("user registered")
	return created, nil
}

// Authenticate verifies the email/password pair and returns the matching user.
func (s *Service) Authenticate(ctx context.Context, email, password string) (user.User, error) {
	u, err := s.store.GetUserByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return user.User{}, ErrBadCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password)) != nil {
		return user.User{}, ErrBadCredentials
	}
	return u, nil
}

// Get returns a user by ID.
func (s *Service) Get(ctx context.Context, id string) (user.User, error) {
	return s.store.GetUser(ctx, id)
}
