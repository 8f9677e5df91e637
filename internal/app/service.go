// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/landpower/internal/adapters/subgraph"
	"github.com/okian/landpower/internal/domain/batch"
	"github.com/okian/landpower/internal/domain/fetcher"
	"github.com/okian/landpower/internal/domain/model"
	"github.com/okian/landpower/internal/domain/scoring"
	"github.com/okian/landpower/pkg/logger"
	"github.com/okian/landpower/pkg/metrics"
)

// Request is one scoring invocation as supplied by the host platform.
type Request struct {
	Space     string
	Network   string
	Addresses []string
	// Options is the raw options object; fields it omits fall back to the
	// service defaults.
	Options  json.RawMessage
	Snapshot *uint64
}

// Response carries the scores of one invocation.
type Response struct {
	InvocationID string
	Scores       model.Scores
}

// Service implements the API dependencies for the scoring strategy.
type Service struct {
	mu sync.RWMutex

	// Core components
	client   subgraph.Querier
	strategy *scoring.Strategy

	// Configuration
	defaults         model.Options
	batchSize        int
	pageSize         int
	batchConcurrency int

	// State
	started   bool
	succeeded atomic.Int64
	failed    atomic.Int64
	scored    atomic.Int64

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClient sets the subgraph client. Without it Start builds a default
// HTTP client.
func WithClient(q subgraph.Querier) Option {
	return func(s *Service) {
		if q != nil {
			s.client = q
		}
	}
}

// WithBatchSize sets how many addresses go into one subgraph filter.
func WithBatchSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.batchSize = size
		}
	}
}

// WithPageSize sets the number of records requested per page.
func WithPageSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.pageSize = size
		}
	}
}

// WithBatchConcurrency sets how many batches are queried at once per fetch.
func WithBatchConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchConcurrency = n
		}
	}
}

// WithDefaults sets the options applied when a request omits them.
func WithDefaults(opts model.Options) Option {
	return func(s *Service) {
		s.defaults = opts
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		batchSize:        batch.MaxFilterLength,
		pageSize:         fetcher.DefaultPageSize,
		batchConcurrency: fetcher.DefaultConcurrency,
		defaults:         model.Options{Multipliers: model.Multipliers{Land: 1}},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start wires the fetcher and strategy.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.client == nil {
		s.client = subgraph.NewClient(subgraph.WithLogger(s.logger))
	}

	f := fetcher.New(s.client,
		fetcher.WithBatchSize(s.batchSize),
		fetcher.WithPageSize(s.pageSize),
		fetcher.WithConcurrency(s.batchConcurrency),
		fetcher.WithLogger(s.logger),
	)
	s.strategy = scoring.New(f, scoring.WithLogger(s.logger))

	s.started = true
	s.logger.Info(ctx, "scoring service started",
		logger.Int("batchSize", s.batchSize),
		logger.Int("pageSize", s.pageSize),
		logger.Int("batchConcurrency", s.batchConcurrency),
		logger.String("subgraph", s.defaults.Subgraphs.LandWorks),
		logger.Float64("landMultiplier", s.defaults.Multipliers.Land),
	)

	return nil
}

// Stop marks the service stopped; later Score calls fail with ErrNotStarted.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "scoring service stopped")
}

// DefaultOptions returns the options requests are overlaid on.
func (s *Service) DefaultOptions() model.Options {
	return s.defaults
}

// Score runs the strategy for req. Either the whole mapping is returned or
// an error; there are no partial results.
func (s *Service) Score(ctx context.Context, req Request) (Response, error) {
	s.mu.RLock()
	started, strategy := s.started, s.strategy
	s.mu.RUnlock()
	if !started {
		return Response{}, ErrNotStarted
	}

	id := uuid.NewString()
	log := s.logger.With(logger.String("invocation_id", id))
	start := time.Now()
	metrics.IncInflight()
	defer metrics.DecInflight()

	scores, err := s.score(ctx, strategy, req)
	elapsed := time.Since(start)
	metrics.RecordInvocation(metrics.ResultLabel(err), float64(elapsed.Milliseconds()))
	if err != nil {
		s.failed.Add(1)
		log.Warn(ctx, "scoring failed",
			logger.String("space", req.Space),
			logger.Int("addresses", len(req.Addresses)),
			logger.Error(err),
		)
		return Response{InvocationID: id}, err
	}

	s.succeeded.Add(1)
	s.scored.Add(int64(len(scores)))
	metrics.RecordAddressesScored(len(scores), scores.NonZero())
	log.Info(ctx, "scores computed",
		logger.String("space", req.Space),
		logger.String("network", req.Network),
		logger.Int("addresses", len(scores)),
		logger.Int("nonZero", scores.NonZero()),
		logger.Duration("duration", elapsed),
	)
	return Response{InvocationID: id, Scores: scores}, nil
}

func (s *Service) score(ctx context.Context, strategy *scoring.Strategy, req Request) (model.Scores, error) {
	opts, err := s.defaults.Overlay(req.Options)
	if err != nil {
		return nil, fmt.Errorf("options: %w", err)
	}
	return strategy.Scores(ctx, req.Space, req.Network, nil, req.Addresses, opts, req.Snapshot)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"started":          s.started,
		"batchSize":        s.batchSize,
		"pageSize":         s.pageSize,
		"batchConcurrency": s.batchConcurrency,
		"invocations":      s.succeeded.Load() + s.failed.Load(),
		"failures":         s.failed.Load(),
		"addressesScored":  s.scored.Load(),
	}
}
