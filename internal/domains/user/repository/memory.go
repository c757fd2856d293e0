package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"newsroom-backend/internal/domains/user"
	"newsroom-backend/internal/domains/workflow"
)

// memoryRepository - user store cho APP_STORAGE=memory
type memoryRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]user.User
}

func NewMemoryRepository() user.Repository {
	return &memoryRepository{users: make(map[uuid.UUID]user.User)}
}

func (r *memoryRepository) Create(ctx context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(u.Email)
	for _, existing := range r.users {
		if existing.Email == email {
			return user.ErrEmailAlreadyExists
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	stored := *u
	stored.Email = email
	r.users[u.ID] = stored
	return nil
}

func (r *memoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return &u, nil
}

func (r *memoryRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *memoryRepository) UpdateLastLogin(ctx context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return user.ErrUserNotFound
	}
	now := time.Now()
	u.LastLoginAt = &now
	r.users[userID] = u
	return nil
}

func (r *memoryRepository) List(ctx context.Context, req user.ListUsersRequest) ([]user.User, int, error) {
	r.mu.RLock()
	all := make([]user.User, 0, len(r.users))
	search := strings.ToLower(req.Search)
	for _, u := range r.users {
		if req.Role != "" && string(u.Role) != strings.ToLower(req.Role) {
			continue
		}
		if search != "" && !strings.Contains(u.Email, search) && !strings.Contains(strings.ToLower(u.FullName), search) {
			continue
		}
		all = append(all, u)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := len(all)
	start := req.Offset()
	if start >= total {
		return []user.User{}, total, nil
	}
	end := start + req.Limit
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (r *memoryRepository) UpdateRole(ctx context.Context, userID uuid.UUID, role workflow.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return user.ErrUserNotFound
	}
	u.Role = role
	u.UpdatedAt = time.Now()
	r.users[userID] = u
	return nil
}

func (r *memoryRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	if err == user.ErrUserNotFound {
		return false, nil
	}
	return err == nil, err
}

func (r *memoryRepository) CountByRole(ctx context.Context, role workflow.Role) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, u := range r.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}
