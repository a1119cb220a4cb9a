package checks

import "context"

// Repo defines persistence operations for checks.
type Repo interface {
	Create(ctx context.Context, check Check) error
	Get(ctx context.Context, userID, id string) (Check, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Check, error)
}
