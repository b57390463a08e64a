package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dukex/stepflow/pkg/models"
	"github.com/dukex/stepflow/pkg/persistence"
	"github.com/dukex/stepflow/pkg/validation"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	persistence persistence.Persistence
	validator   *validation.Validator
	logger      *slog.Logger
	hashCost    int
}

// NewUser creates a new user service. hashCost is the bcrypt cost; values below
// bcrypt.MinCost use bcrypt.DefaultCost.
func NewUser(persistence persistence.Persistence, validator *validation.Validator, hashCost int) *User {
	if hashCost < bcrypt.MinCost {
		hashCost = bcrypt.DefaultCost
	}

	return &User{
		persistence: persistence,
		validator:   validator,
		logger:      slog.Default().With("module", "user_service"),
		hashCost:    hashCost,
	}
}

// CreateUserInput is the sign-up payload. Passwords are bounded in bytes as
// well as characters because bcrypt rejects inputs longer than 72 bytes.
type CreateUserInput struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72,max_bytes=72"`
}

// Create registers a user. Email and username must not be in use.
func (u *User) Create(ctx context.Context, input CreateUserInput) (*models.User, error) {
	if err := newViolationsError("CreateUser", u.validator.Struct(input)); err != nil {
		return nil, err
	}

	repo := u.persistence.UserRepository()

	existing, err := repo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user by email: %w", err)
	}

	if existing != nil {
		return nil, &ServiceError{Op: "CreateUser", Code: "email_taken", Err: ErrEmailTaken}
	}

	existing, err = repo.GetByUsername(ctx, input.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user by username: %w", err)
	}

	if existing != nil {
		return nil, &ServiceError{Op: "CreateUser", Code: "username_taken", Err: ErrUsernameTaken}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), u.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := repo.Create(ctx, &models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	u.logger.InfoContext(ctx, "User created", slog.Int64("user_id", user.ID))

	return user, nil
}

// FetchByID returns the user with id or persistence.ErrUserNotFound.
func (u *User) FetchByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := u.persistence.UserRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user == nil {
		return nil, fmt.Errorf("user %d: %w", id, persistence.ErrUserNotFound)
	}

	return user, nil
}
