package core

import (
	"context"
	"time"

	"github.com/JonMunkholm/catalogimport/internal/database"
	"github.com/JonMunkholm/catalogimport/internal/logging"
)

// DefaultImportTimeout bounds one import when ServiceConfig.Timeout is unset.
const DefaultImportTimeout = 10 * time.Minute

// ServiceConfig holds the limits applied around each import.
type ServiceConfig struct {
	MaxConcurrent int
	MaxWait       time.Duration
	Timeout       time.Duration
}

// Service is the entry point used by transports. It bounds concurrency and
// duration of imports and records metrics.
type Service struct {
	importer *Importer
	limiter  *ImportLimiter
	metrics  *Metrics
	timeout  time.Duration
}

// NewService returns a Service committing through gw. metrics may be nil.
func NewService(gw database.Gateway, cfg ServiceConfig, metrics *Metrics) *Service {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultImportTimeout
	}
	return &Service{
		importer: NewImporter(gw),
		limiter:  NewImportLimiter(cfg.MaxConcurrent, cfg.MaxWait),
		metrics:  metrics,
		timeout:  timeout,
	}
}

// Import waits for a free slot and runs the import with the service timeout.
// src is released even when no slot becomes available.
func (s *Service) Import(ctx context.Context, src Source) (*ImportResult, error) {
	start := time.Now()

	if err := s.limiter.Acquire(ctx); err != nil {
		if rel, ok := src.(Releaser); ok {
			if relErr := rel.Release(); relErr != nil {
				logging.FromContext(ctx).Warn("release import file failed", "file", src.Name(), "error", relErr)
			}
		}
		logging.FromContext(ctx).Warn("import rejected", "file", src.Name(), "error", err)
		s.metrics.Observe(nil, err, time.Since(start))
		return nil, err
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.importer.Import(ctx, src)
	s.metrics.Observe(result, err, time.Since(start))
	return result, err
}

// LimiterStatus reports slot usage for health checks.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// WaitForImports blocks until running imports finish or ctx ends.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
