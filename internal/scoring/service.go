package scoring

import (
	"context"
	"log/slog"
	"time"

	"example.com/mastermind/internal/mastermind"
	"example.com/mastermind/internal/metrics"
)

// Service answers score requests, consulting the cache layers before
// running the scorer. Cache failures are logged and never fail a request.
type Service struct {
	layers  []Layer
	log     *slog.Logger
	metrics *metrics.Metrics
}

func NewService(log *slog.Logger, m *metrics.Metrics, layers ...Layer) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		layers:  layers,
		log:     log,
		metrics: m,
	}
}

func (s *Service) Score(ctx context.Context, secret, guess mastermind.Sequence) Result {
	start := time.Now()

	if err := mastermind.Validate(secret, guess); err != nil {
		s.metrics.RecordScore(false, time.Since(start))
		s.log.Debug("invalid score input", "err", err)
		return Result{Score: mastermind.Solve(secret, guess), Valid: false, Reason: err.Error()}
	}

	key := Key(secret, guess)
	if sc, ok := s.lookup(ctx, key); ok {
		s.metrics.RecordScore(true, time.Since(start))
		return Result{Score: sc, Valid: true}
	}

	sc := mastermind.Solve(secret, guess)
	s.store(ctx, key, sc, len(s.layers))

	s.metrics.RecordScore(true, time.Since(start))
	return Result{Score: sc, Valid: true}
}

// Validate reports whether seq consists of digits in [1, 9] only.
func (s *Service) Validate(seq mastermind.Sequence) bool {
	return !mastermind.IsInvalid(seq)
}

func (s *Service) lookup(ctx context.Context, key string) (mastermind.Score, bool) {
	for i, l := range s.layers {
		sc, ok, err := l.Cache.Get(ctx, key)
		switch {
		case err != nil:
			s.metrics.RecordCacheLookup(l.Name, "error")
			s.log.Warn("score cache lookup failed", "layer", l.Name, "err", err)
		case !ok:
			s.metrics.RecordCacheLookup(l.Name, "miss")
		default:
			s.metrics.RecordCacheLookup(l.Name, "hit")
			// backfill the faster layers
			s.store(ctx, key, sc, i)
			return sc, true
		}
	}
	return mastermind.Score{}, false
}

// store writes sc into the first n layers.
func (s *Service) store(ctx context.Context, key string, sc mastermind.Score, n int) {
	for _, l := range s.layers[:n] {
		if err := l.Cache.Put(ctx, key, sc); err != nil {
			s.log.Warn("score cache write failed", "layer", l.Name, "err", err)
		}
	}
}
