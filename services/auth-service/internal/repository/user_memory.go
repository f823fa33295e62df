package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vasapolrittideah/credential-auth/services/auth-service/internal/model"
)

type userMemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]*model.User
	byEmail map[string]string
}

// NewUserMemoryRepository creates a process-local UserRepository. State is lost
// on restart, so it only suits local runs and tests.
func NewUserMemoryRepository() UserRepository {
	return &userMemoryRepository{
		byID:    make(map[string]*model.User),
		byEmail: make(map[string]string),
	}
}

func (r *userMemoryRepository) CreateUser(_ context.Context, user *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[user.Email]; exists {
		return nil, ErrDuplicateEmail
	}

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	r.byID[user.ID] = cloneUser(user)
	r.byEmail[user.Email] = user.ID

	return user, nil
}

func (r *userMemoryRepository) GetUser(_ context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}

	return cloneUser(user), nil
}

func (r *userMemoryRepository) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}

	return cloneUser(r.byID[id]), nil
}

func (r *userMemoryRepository) SaveUser(_ context.Context, user *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[user.ID]
	if !ok {
		return nil, ErrUserNotFound
	}

	if existing.Email != user.Email {
		if _, taken := r.byEmail[user.Email]; taken {
			return nil, ErrDuplicateEmail
		}
		delete(r.byEmail, existing.Email)
		r.byEmail[user.Email] = user.ID
	}

	user.UpdatedAt = time.Now()
	r.byID[user.ID] = cloneUser(user)

	return user, nil
}

func (r *userMemoryRepository) ClearActiveSession(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return ErrUserNotFound
	}

	user.ActiveSessionID = nil
	user.UpdatedAt = time.Now()

	return nil
}

func cloneUser(u *model.User) *model.User {
	cp := *u
	if u.LockUntil != nil {
		t := *u.LockUntil
		cp.LockUntil = &t
	}
	if u.ActiveSessionID != nil {
		s := *u.ActiveSessionID
		cp.ActiveSessionID = &s
	}
	if u.MFAChallenge != nil {
		c := *u.MFAChallenge
		cp.MFAChallenge = &c
	}
	if u.ResetChallenge != nil {
		c := *u.ResetChallenge
		cp.ResetChallenge = &c
	}
	return &cp
}
