package health

import (
	"context"
	"time"
)

const pingTimeout = 2 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Service reports liveness and the state of the check store.
type Service struct {
	db Pinger
}

// NewService constructs a health service. A nil db means checks are kept in memory.
func NewService(db Pinger) *Service {
	return &Service{db: db}
}

// Status returns the health payload. "ok" stays true while the database is down.
func (s *Service) Status(ctx context.Context) map[string]any {
	out := map[string]any{"ok": true, "database": "memory"}
	if s == nil || s.db == nil {
		return out
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := s.db.PingContext(ctx); err != nil {
		out["database"] = "down"
		return out
	}
	out["database"] = "up"
	return out
}
