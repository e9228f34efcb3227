package scraper

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	errs "liscraper/pkg/errors"
	"liscraper/pkg/logger"
	"liscraper/pkg/models"
	"liscraper/pkg/ratelimit"
	"liscraper/pkg/retry"
)

// State is the lifecycle of a collector run
type State int

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// SkippedIdentifier records an identifier that produced no record
type SkippedIdentifier struct {
	Identifier string
	Err        error
}

// Option configures a Collector
type Option func(*Collector)

// WithBudget caps the number of simulated requests with a limiter
func WithBudget(budget ratelimit.Limiter) Option {
	return func(c *Collector) {
		c.budget = budget
	}
}

// WithRetry re-attempts failed generations according to cfg
func WithRetry(cfg *retry.Config) Option {
	return func(c *Collector) {
		c.retry = cfg
	}
}

// WithProgress reports collection events to p
func WithProgress(p Progress) Option {
	return func(c *Collector) {
		c.progress = p
	}
}

// Collector runs identifiers through header rotation, pacing and record
// generation, one at a time and in input order
type Collector struct {
	headers   HeaderSource
	delay     Pacer
	generator RecordGenerator
	logger    logger.Logger
	budget    ratelimit.Limiter
	retry     *retry.Config
	progress  Progress
	newRunID  func() string

	mu      sync.RWMutex
	state   State
	runID   string
	results []models.ProfileRecord
	skipped []SkippedIdentifier
}

// New creates a collector. A nil logger discards log output.
func New(h HeaderSource, delay Pacer, gen RecordGenerator, log logger.Logger, opts ...Option) *Collector {
	if log == nil {
		log = logger.NewNopLogger()
	}

	c := &Collector{
		headers:   h,
		delay:     delay,
		generator: gen,
		logger:    log,
		newRunID:  uuid.NewString,
		state:     StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.retry == nil {
		c.retry = retry.DefaultConfig()
	}
	if c.retry.Logger == nil {
		cfg := *c.retry
		cfg.Logger = log
		c.retry = &cfg
	}

	logger.LogComponentStart(log, "collector", map[string]interface{}{
		"budget":       c.budget != nil,
		"max_attempts": c.retry.MaxAttempts,
	})
	return c
}

// Collect processes identifiers and returns the records that were produced,
// in input order. Failures are logged and skipped; they never abort the run.
// Each call starts a new run and discards the previous run's results.
func (c *Collector) Collect(identifiers []string) []models.ProfileRecord {
	c.mu.Lock()
	c.state = StateRunning
	c.runID = c.newRunID()
	c.results = make([]models.ProfileRecord, 0, len(identifiers))
	c.skipped = nil
	runID := c.runID
	c.mu.Unlock()

	log := c.logger.WithField("run_id", runID)
	total := len(identifiers)
	start := time.Now()

	log.InfoWithFields("Starting collection", map[string]interface{}{
		"total": total,
	})
	if c.progress != nil {
		c.progress.Start(total)
	}

	for i, identifier := range identifiers {
		record, err := c.collectOne(log, identifier)

		c.mu.Lock()
		if err != nil {
			c.skipped = append(c.skipped, SkippedIdentifier{Identifier: identifier, Err: err})
		} else {
			c.results = append(c.results, record)
		}
		c.mu.Unlock()

		if err != nil {
			log.WithError(err).WarnWithFields("Skipping identifier", map[string]interface{}{
				"identifier": identifier,
				"index":      i,
			})
		} else {
			log.InfoWithFields("Profile collected", map[string]interface{}{
				"identifier":  identifier,
				"username":    record.Username,
				"connections": record.Connections,
			})
		}

		if c.progress != nil {
			c.progress.Update(i+1, total, identifier, err == nil)
		}
		logger.LogCollectProgress(log, i+1, total)
	}

	c.mu.Lock()
	c.state = StateCompleted
	collected, skipped := len(c.results), len(c.skipped)
	results := cloneRecords(c.results)
	c.mu.Unlock()

	elapsed := time.Since(start)
	logger.LogMetrics(log, "collect", map[string]interface{}{
		"collected":   collected,
		"skipped":     skipped,
		"duration_ms": elapsed.Milliseconds(),
	})
	log.InfoWithFields("Collection complete", map[string]interface{}{
		"collected": collected,
		"skipped":   skipped,
	})
	if c.progress != nil {
		c.progress.Finish(collected, skipped, elapsed)
	}
	logger.LogComponentStop(log, "collector", "completed")

	return results
}

// collectOne runs the per-identifier steps. A panic in any step is turned
// into a generation error for that identifier.
func (c *Collector) collectOne(log logger.Logger, identifier string) (record models.ProfileRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errs.NewGenerationError(identifier, fmt.Errorf("panic: %v", r))
		}
	}()

	h := c.headers.NextHeaders()
	log.DebugWithFields("Using request headers", map[string]interface{}{
		"identifier": identifier,
		"user_agent": h.UserAgent(),
	})

	if c.budget != nil && !c.budget.Allow() {
		log.Warn("Request budget exhausted, waiting for refill")
		c.budget.Wait()
	}

	waited := c.delay.Wait()
	log.InfoWithFields("Rate limiting", map[string]interface{}{
		"identifier":    identifier,
		"delay_seconds": waited.Seconds(),
	})

	return retry.DoWithResult(func() (models.ProfileRecord, error) {
		return c.generate(identifier)
	}, c.retry)
}

func (c *Collector) generate(identifier string) (models.ProfileRecord, error) {
	record, err := c.generator.Generate(identifier)
	if err != nil {
		if errs.IsGeneration(err) {
			return models.ProfileRecord{}, err
		}
		return models.ProfileRecord{}, errs.NewGenerationError(identifier, err)
	}

	if record.ProfileURL == "" {
		return models.ProfileRecord{}, errs.NewGenerationError(identifier, fmt.Errorf("record has no profile_url"))
	}
	if !record.IsSimulated() {
		return models.ProfileRecord{}, errs.NewGenerationError(identifier, fmt.Errorf("record has data_type %q", record.DataType))
	}
	return record, nil
}

// State returns the current lifecycle state
func (c *Collector) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// RunID returns the id of the current or last run, empty before the first
func (c *Collector) RunID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.runID
}

// Results returns a copy of the records collected so far in this run
func (c *Collector) Results() []models.ProfileRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneRecords(c.results)
}

// Skipped returns the identifiers skipped in this run
func (c *Collector) Skipped() []SkippedIdentifier {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]SkippedIdentifier(nil), c.skipped...)
}

// Statistics computes run statistics over the current results
func (c *Collector) Statistics() models.RunStatistics {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := models.ComputeStatistics(c.results)
	stats.Skipped = len(c.skipped)
	return stats
}

func cloneRecords(records []models.ProfileRecord) []models.ProfileRecord {
	out := make([]models.ProfileRecord, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}
