package checks

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string][]Check // userID -> checks
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string][]Check)}
}

// Create stores a check.
func (r *MemoryRepo) Create(ctx context.Context, check Check) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[check.UserID] = append(r.data[check.UserID], check)
	return nil
}

// Get returns a check by ID for a user.
func (r *MemoryRepo) Get(ctx context.Context, userID, id string) (Check, error) {
	if err := ctx.Err(); err != nil {
		return Check{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.data[userID] {
		if c.ID == id {
			return c, nil
		}
	}
	return Check{}, ErrNotFound
}

// ListByUser returns checks for a user, newest first, honoring limit/offset.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Check, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	offset = max(offset, 0)

	r.mu.RLock()
	out := make([]Check, len(r.data[userID]))
	copy(out, r.data[userID])
	r.mu.RUnlock()

	if offset >= len(out) {
		return []Check{}, nil
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	end := len(out)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return out[offset:end], nil
}

var _ Repo = (*MemoryRepo)(nil)
