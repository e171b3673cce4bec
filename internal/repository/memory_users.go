package repository

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/pweat/Opieka-Plus-sub000/internal/domain"

	"github.com/google/uuid"
)

// MemoryUsersRepository: 用于 DB 未就绪时的联测
type MemoryUsersRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User // userID -> User
}

func NewMemoryUsersRepository() *MemoryUsersRepository {
	return &MemoryUsersRepository{
		users: map[string]domain.User{},
	}
}

var _ UsersRepository = (*MemoryUsersRepository)(nil)

func (r *MemoryUsersRepository) GetUser(_ context.Context, userID string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[userID]
	if !ok {
		return nil, fmt.Errorf("user not found: %w", sql.ErrNoRows)
	}
	return &u, nil
}

func (r *MemoryUsersRepository) GetUserByAccountHash(_ context.Context, accountHash []byte) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Status == "active" && bytes.Equal(u.UserAccountHash, accountHash) {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user not found: %w", sql.ErrNoRows)
}

func (r *MemoryUsersRepository) ListCaregiversByOwner(_ context.Context, ownerID string) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.User{}
	for _, u := range r.users {
		if u.Role == domain.RoleCaregiver && u.OwnerID.Valid && u.OwnerID.String == ownerID {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryUsersRepository) CreateUser(_ context.Context, user *domain.User) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if bytes.Equal(u.UserAccountHash, user.UserAccountHash) {
			return "", fmt.Errorf("account already registered")
		}
	}

	u := *user
	if u.UserID == "" {
		u.UserID = uuid.NewString()
	}
	if u.Status == "" {
		u.Status = "active"
	}
	u.CreatedAt = time.Now()
	r.users[u.UserID] = u
	return u.UserID, nil
}

func (r *MemoryUsersRepository) UpdateProfile(_ context.Context, userID string, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("user not found: %w", sql.ErrNoRows)
	}
	u.Nickname = user.Nickname
	u.Email = user.Email
	u.Phone = user.Phone
	u.PhotoURL = user.PhotoURL
	r.users[userID] = u
	return nil
}

func (r *MemoryUsersRepository) SetOwner(_ context.Context, userID, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok || u.Role != domain.RoleCaregiver {
		return fmt.Errorf("caregiver not found: %w", sql.ErrNoRows)
	}
	u.OwnerID = sql.NullString{String: ownerID, Valid: true}
	r.users[userID] = u
	return nil
}

func (r *MemoryUsersRepository) TouchLastLogin(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("user not found: %w", sql.ErrNoRows)
	}
	u.LastLoginAt = sql.NullTime{Time: time.Now(), Valid: true}
	r.users[userID] = u
	return nil
}
