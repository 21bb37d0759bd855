package api

import (
	"context"
	"time"
)

// healthPath is the backend's unauthenticated liveness endpoint.
const healthPath = "/health"

// Ping checks that the backend answers its health endpoint with a 2xx and
// returns the round-trip time.
func (f *Factory) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := f.NewClient(false, "").Get(ctx, healthPath, nil, nil); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}
