package numerator

import (
	"context"
	"time"
)

// MockGenerator is a Generator test double. Unset funcs fall back to a
// fixed number or a nil error.
type MockGenerator struct {
	GetNextNumberFunc func(ctx context.Context, cfg Config, opts *Options, period time.Time) (string, error)
	SetNextNumberFunc func(ctx context.Context, cfg Config, period time.Time, value int64) error
}

var _ Generator = (*MockGenerator)(nil)

func (m *MockGenerator) GetNextNumber(ctx context.Context, cfg Config, opts *Options, period time.Time) (string, error) {
	if m.GetNextNumberFunc == nil {
		return "MOCK-2026-00001", nil
	}
	return m.GetNextNumberFunc(ctx, cfg, opts, period)
}

func (m *MockGenerator) SetNextNumber(ctx context.Context, cfg Config, period time.Time, value int64) error {
	if m.SetNextNumberFunc == nil {
		return nil
	}
	return m.SetNextNumberFunc(ctx, cfg, period, value)
}
