package resilience

import (
	"context"
	"fmt"
	"time"
)

// WithTimeout bounds fn by timeout. It returns as soon as the deadline
// passes even if fn ignores its context. A non-positive timeout calls fn
// directly.
func WithTimeout(ctx context.Context, timeout time.Duration, name string, fn func(ctx context.Context) error) error {
	if timeout <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result := make(chan error, 1)
	go func() { result <- fn(ctx) }()

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return fmt.Errorf("%s after %v: %w", name, timeout, ctx.Err())
	}
}
