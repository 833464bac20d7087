// Package health aggregates dependency liveness for the readiness probe.
package health

import (
	"context"

	"github.com/kailas-cloud/shopsense/internal/db"
	"github.com/kailas-cloud/shopsense/internal/domain"
)

// Status reports per-dependency health.
type Status struct {
	Database  bool `json:"database"`
	Embedding bool `json:"embedding"`
}

// OK reports whether every dependency is healthy.
func (s Status) OK() bool { return s.Database && s.Embedding }

// Service checks the store and the embedding provider.
type Service struct {
	store db.Pinger
	embed domain.HealthChecker
}

// New creates a health service.
func New(store db.Pinger, embed domain.HealthChecker) *Service {
	return &Service{store: store, embed: embed}
}

// Check probes each dependency and never returns an error; failures show
// up as false fields in the status.
func (s *Service) Check(ctx context.Context) Status {
	return Status{
		Database:  s.store.Ping(ctx) == nil,
		Embedding: s.embed.HealthCheck(ctx) == nil,
	}
}
