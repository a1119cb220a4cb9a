package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		svc  *Service
		want string
	}{
		{name: "memory", svc: NewService(nil), want: "memory"},
		{name: "up", svc: NewService(fakePinger{}), want: "up"},
		{name: "down", svc: NewService(fakePinger{err: errors.New("refused")}), want: "down"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.svc.Status(context.Background())
			assert.Equal(t, true, got["ok"])
			assert.Equal(t, tt.want, got["database"])
		})
	}
}
