package memory

import (
	"context"
	"slices"

	"github.com/dukex/stepflow/pkg/models"
)

// UserRepository handles user records.
type UserRepository struct {
	store *Persistence
}

func cloneUser(user *models.User) *models.User {
	clone := *user
	clone.PasswordHash = slices.Clone(user.PasswordHash)

	return &clone
}

// Create assigns the next user id and stores a copy of user.
func (r *UserRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored := cloneUser(user)
	stored.ID = r.store.nextUserID
	r.store.nextUserID++

	r.store.users[stored.ID] = stored

	return cloneUser(stored), nil
}

// GetByID returns the user with id, or nil.
func (r *UserRepository) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	user, ok := r.store.users[id]
	if !ok {
		return nil, nil
	}

	return cloneUser(user), nil
}

// GetByUsername returns the first user with username, or nil.
func (r *UserRepository) GetByUsername(_ context.Context, username string) (*models.User, error) {
	return r.find(func(user *models.User) bool { return user.Username == username }), nil
}

// GetByEmail returns the first user with email, or nil.
func (r *UserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(user *models.User) bool { return user.Email == email }), nil
}

func (r *UserRepository) find(match func(*models.User) bool) *models.User {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, id := range sortedIDs(r.store.users) {
		if user := r.store.users[id]; match(user) {
			return cloneUser(user)
		}
	}

	return nil
}
