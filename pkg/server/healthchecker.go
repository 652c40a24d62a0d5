package server

import (
	"context"
	"time"
)

type HealthChecker interface {
	Healthy(ctx context.Context) bool
}

// HealthCheckFunc adapts a function to HealthChecker.
type HealthCheckFunc func(ctx context.Context) bool

func (f HealthCheckFunc) Healthy(ctx context.Context) bool {
	return f(ctx)
}

type OkHealthChecker struct {
}

func NewOkHealthChecker() *OkHealthChecker {
	return &OkHealthChecker{}
}

func (hc *OkHealthChecker) Healthy(ctx context.Context) bool {
	return true
}

// WithTimeout bounds a check so a hanging dependency reports unhealthy
// instead of stalling the health endpoint.
func WithTimeout(hc HealthChecker, d time.Duration) HealthChecker {
	return HealthCheckFunc(func(ctx context.Context) bool {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return hc.Healthy(ctx)
	})
}
