package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-portal-api/internal/models"
	"github.com/noah-isme/campus-portal-api/internal/repository"
	"github.com/noah-isme/campus-portal-api/pkg/jobs"
)

const (
	jobIntegritySweep = "integrity_sweep"
	jobExportCleanup  = "export_cleanup"
)

type orphanRemover interface {
	DeleteOrphans(ctx context.Context, rule repository.OrphanRule) (int64, error)
}

type exportCleaner interface {
	CleanupOlderThan(ttl time.Duration) (int, error)
}

// IntegrityService removes dependents whose soft reference no longer resolves. Running it twice
// in a row removes nothing the second time.
type IntegrityService struct {
	repo    orphanRemover
	rules   []repository.OrphanRule
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time

	mu   sync.RWMutex
	last *models.IntegrityReport
}

// NewIntegrityService constructs the sweep over the default orphan rules.
func NewIntegrityService(repo orphanRemover, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *IntegrityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IntegrityService{
		repo:    repo,
		rules:   repository.OrphanRules,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Sweep applies every rule. A failing rule does not stop the others; all failures are returned joined.
func (s *IntegrityService) Sweep(ctx context.Context) (*models.IntegrityReport, error) {
	report := &models.IntegrityReport{Removed: map[string]int64{}, StartedAt: s.now()}
	var errs []error
	for _, rule := range s.rules {
		start := time.Now()
		removed, err := s.repo.DeleteOrphans(ctx, rule)
		s.metrics.ObserveDBQuery("orphans_"+rule.Collection, time.Since(start))
		if err != nil {
			s.logger.Error("integrity rule failed", zap.String("collection", rule.Collection), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", rule.Collection, err))
			continue
		}
		if removed > 0 {
			report.Removed[rule.Collection] = removed
			s.metrics.RecordOrphansRemoved(rule.Collection, removed)
			s.logger.Warn("removed dangling records", zap.String("collection", rule.Collection), zap.Int64("count", removed))
		}
	}
	report.FinishedAt = s.now()

	if report.Total() > 0 {
		s.cache.Invalidate(ctx, feeReportCachePattern, analyticsCachePattern)
	}
	s.mu.Lock()
	s.last = report
	s.mu.Unlock()
	return report, errors.Join(errs...)
}

// LastReport returns the outcome of the most recent sweep, if any.
func (s *IntegrityService) LastReport() *models.IntegrityReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// IntegritySchedulerConfig configures the background maintenance jobs.
type IntegritySchedulerConfig struct {
	Schedule   string
	Workers    int
	Retries    int
	RetryDelay time.Duration
	ExportTTL  time.Duration
}

// IntegrityScheduler enqueues the integrity sweep and export cleanup on a cron schedule and runs
// them on a retrying worker queue.
type IntegrityScheduler struct {
	sweeper *IntegrityService
	exports exportCleaner
	cfg     IntegritySchedulerConfig
	logger  *zap.Logger

	cron  *cron.Cron
	queue *jobs.Queue
}

// NewIntegrityScheduler constructs the scheduler. exports may be nil.
func NewIntegrityScheduler(sweeper *IntegrityService, exports exportCleaner, cfg IntegritySchedulerConfig, logger *zap.Logger) *IntegrityScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Schedule == "" {
		cfg.Schedule = "@every 1h"
	}
	s := &IntegrityScheduler{
		sweeper: sweeper,
		exports: exports,
		cfg:     cfg,
		logger:  logger,
		cron:    cron.New(),
	}
	s.queue = jobs.NewQueue("integrity", s.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.Retries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return s
}

// Start registers the schedule and starts the workers.
func (s *IntegrityScheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.cfg.Schedule, func() { s.enqueue(jobIntegritySweep) }); err != nil {
		return fmt.Errorf("register integrity schedule: %w", err)
	}
	if s.exports != nil {
		if _, err := s.cron.AddFunc(s.cfg.Schedule, func() { s.enqueue(jobExportCleanup) }); err != nil {
			return fmt.Errorf("register export cleanup schedule: %w", err)
		}
	}
	s.queue.Start(ctx)
	s.cron.Start()
	s.logger.Info("integrity scheduler started", zap.String("schedule", s.cfg.Schedule))
	return nil
}

// Stop halts the schedule, waits for a running trigger and stops the workers.
func (s *IntegrityScheduler) Stop() {
	<-s.cron.Stop().Done()
	s.queue.Stop()
}

// TriggerSweep enqueues an immediate sweep.
func (s *IntegrityScheduler) TriggerSweep() error {
	return s.queue.Enqueue(jobs.Job{Type: jobIntegritySweep})
}

// LastReport returns the most recent completed sweep, or nil.
func (s *IntegrityScheduler) LastReport() *models.IntegrityReport {
	return s.sweeper.LastReport()
}

// Stats reports job outcomes.
func (s *IntegrityScheduler) Stats() jobs.Stats {
	return s.queue.Stats()
}

func (s *IntegrityScheduler) enqueue(jobType string) {
	if err := s.queue.Enqueue(jobs.Job{Type: jobType}); err != nil {
		s.logger.Error("failed to enqueue maintenance job", zap.String("type", jobType), zap.Error(err))
	}
}

func (s *IntegrityScheduler) handle(ctx context.Context, job jobs.Job) error {
	switch job.Type {
	case jobIntegritySweep:
		report, err := s.sweeper.Sweep(ctx)
		if err != nil {
			return err
		}
		s.logger.Info("integrity sweep finished", zap.Int64("removed", report.Total()),
			zap.Duration("took", report.FinishedAt.Sub(report.StartedAt)))
		return nil
	case jobExportCleanup:
		removed, err := s.exports.CleanupOlderThan(s.cfg.ExportTTL)
		if err != nil {
			return err
		}
		if removed > 0 {
			s.logger.Info("expired exports removed", zap.Int("count", removed))
		}
		return nil
	default:
		return fmt.Errorf("unknown maintenance job %q", job.Type)
	}
}
