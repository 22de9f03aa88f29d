// Package scheduler drives the periodic background work of the
// connector: pulling remote records, draining import queues and
// housekeeping. Every job runs on its own ticker so a slow import
// cannot starve queue processing.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appsync "github.com/erp/zidsync/internal/application/sync"
	"github.com/erp/zidsync/internal/domain/connector"
	"github.com/erp/zidsync/internal/domain/queue"
)

// ConnectorLister enumerates the connectors the periodic jobs act on.
type ConnectorLister interface {
	List(ctx context.Context, filter connector.Filter) ([]*connector.Connector, error)
}

// Importer pulls remote records into import queues.
type Importer interface {
	ImportOrders(ctx context.Context, connectorID uuid.UUID) (*queue.Queue, error)
	ImportProducts(ctx context.Context, connectorID uuid.UUID) (*queue.Queue, error)
}

// QueueRunner drains pending import queues and prunes old ones.
type QueueRunner interface {
	ProcessPending(ctx context.Context, limit int) (appsync.ProcessStats, error)
	Cleanup(ctx context.Context, emptyAge, completedAge time.Duration) (int64, error)
}

// CatalogSyncer refreshes the slow-moving mirror tables.
type CatalogSyncer interface {
	SyncCategories(ctx context.Context, connectorID uuid.UUID) (int, error)
	SyncAttributes(ctx context.Context, connectorID uuid.UUID) (int, error)
	SyncLocations(ctx context.Context, connectorID uuid.UUID) (int, error)
	SyncReverseReasons(ctx context.Context, connectorID uuid.UUID) (int, error)
	SyncAbandonedCarts(ctx context.Context, connectorID uuid.UUID) (int, error)
	SyncPayouts(ctx context.Context, connectorID uuid.UUID) (int, error)
}

// LockJanitor frees import locks abandoned by crashed runs.
type LockJanitor interface {
	ResetStaleLocks(ctx context.Context, timeout time.Duration) (int, error)
}

// LogPruner trims old stock sync history.
type LogPruner interface {
	PruneLogs(ctx context.Context, age time.Duration) (int64, error)
}

// SyncSchedulerConfig holds the intervals and limits of the periodic jobs
type SyncSchedulerConfig struct {
	// Enabled indicates if the scheduler is enabled
	Enabled bool
	// QueueInterval is how often pending queues are drained
	QueueInterval time.Duration
	// QueueBatchLimit caps the queues drained per tick
	QueueBatchLimit int
	// ImportInterval is how often remote orders and products are pulled
	ImportInterval time.Duration
	// CatalogInterval is how often the catalog mirrors are refreshed
	CatalogInterval time.Duration
	// JanitorInterval is how often housekeeping runs
	JanitorInterval time.Duration
	// LockTimeout is the age after which an import lock counts as stale
	LockTimeout time.Duration
	// EmptyQueueAge is the age after which empty queues are deleted
	EmptyQueueAge time.Duration
	// CompletedQueueAge is the age after which fully processed queues are deleted
	CompletedQueueAge time.Duration
	// StockLogAge is the age after which stock sync history is pruned
	StockLogAge time.Duration
	// JobTimeout is the maximum time one job iteration can run
	JobTimeout time.Duration
}

// DefaultSyncSchedulerConfig returns default configuration
func DefaultSyncSchedulerConfig() SyncSchedulerConfig {
	return SyncSchedulerConfig{
		Enabled:           true,
		QueueInterval:     time.Minute,
		QueueBatchLimit:   10,
		ImportInterval:    15 * time.Minute,
		CatalogInterval:   6 * time.Hour,
		JanitorInterval:   30 * time.Minute,
		LockTimeout:       time.Hour,
		EmptyQueueAge:     24 * time.Hour,
		CompletedQueueAge: 7 * 24 * time.Hour,
		StockLogAge:       30 * 24 * time.Hour,
		JobTimeout:        10 * time.Minute,
	}
}

// Validate validates the configuration
func (c *SyncSchedulerConfig) Validate() error {
	if c.QueueInterval <= 0 || c.ImportInterval <= 0 || c.CatalogInterval <= 0 || c.JanitorInterval <= 0 {
		return ErrInvalidConfig
	}
	if c.QueueBatchLimit <= 0 {
		return ErrInvalidConfig
	}
	if c.LockTimeout <= 0 || c.JobTimeout <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// SyncScheduler runs the periodic sync jobs until stopped.
type SyncScheduler struct {
	config     SyncSchedulerConfig
	connectors ConnectorLister
	importer   Importer
	queues     QueueRunner
	catalog    CatalogSyncer
	janitor    LockJanitor
	pruner     LogPruner
	logger     *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewSyncScheduler creates a new SyncScheduler
func NewSyncScheduler(
	config SyncSchedulerConfig,
	connectors ConnectorLister,
	importer Importer,
	queues QueueRunner,
	catalog CatalogSyncer,
	janitor LockJanitor,
	pruner LogPruner,
	logger *zap.Logger,
) (*SyncScheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &SyncScheduler{
		config:     config,
		connectors: connectors,
		importer:   importer,
		queues:     queues,
		catalog:    catalog,
		janitor:    janitor,
		pruner:     pruner,
		logger:     logger,
	}, nil
}

// Start launches the job loops
func (s *SyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.spawnLoop(ctx, "queues", s.config.QueueInterval, s.runQueues)
	s.spawnLoop(ctx, "imports", s.config.ImportInterval, s.runImports)
	s.spawnLoop(ctx, "catalog", s.config.CatalogInterval, s.runCatalog)
	s.spawnLoop(ctx, "janitor", s.config.JanitorInterval, s.runJanitor)

	s.logger.Info("sync scheduler started",
		zap.Duration("queue_interval", s.config.QueueInterval),
		zap.Duration("import_interval", s.config.ImportInterval),
		zap.Duration("catalog_interval", s.config.CatalogInterval),
		zap.Duration("janitor_interval", s.config.JanitorInterval),
	)
	return nil
}

// Stop gracefully stops the scheduler
func (s *SyncScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("sync scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("sync scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *SyncScheduler) spawnLoop(ctx context.Context, name string, interval time.Duration, job func(context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				s.logger.Debug("job loop stopping", zap.String("job", name))
				return
			case <-ticker.C:
				jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
				job(jobCtx)
				cancel()
			}
		}
	}()
}

// RunQueuesOnce drains pending queues immediately, outside the ticker.
// Used by the manual trigger endpoint.
func (s *SyncScheduler) RunQueuesOnce(ctx context.Context) error {
	s.mu.Lock()
	running := s.isRunning
	s.mu.Unlock()
	if !running {
		return ErrSchedulerNotRunning
	}
	s.runQueues(ctx)
	return nil
}

func (s *SyncScheduler) runQueues(ctx context.Context) {
	stats, err := s.queues.ProcessPending(ctx, s.config.QueueBatchLimit)
	if err != nil {
		s.logger.Error("queue processing tick failed", zap.Error(err))
		return
	}
	if stats.Queues > 0 {
		s.logger.Info("queue processing tick",
			zap.Int("queues", stats.Queues),
			zap.Int("done", stats.Done),
			zap.Int("failed", stats.Failed))
	}
}

func (s *SyncScheduler) runImports(ctx context.Context) {
	for _, conn := range s.connectedConnectors(ctx) {
		if _, err := s.importer.ImportOrders(ctx, conn.ID); err != nil && !errors.Is(err, connector.ErrImportInProgress) {
			s.logger.Error("scheduled order import failed",
				zap.String("connector_id", conn.ID.String()), zap.Error(err))
		}
		if !conn.EnableProductSync {
			continue
		}
		if _, err := s.importer.ImportProducts(ctx, conn.ID); err != nil && !errors.Is(err, connector.ErrImportInProgress) {
			s.logger.Error("scheduled product import failed",
				zap.String("connector_id", conn.ID.String()), zap.Error(err))
		}
	}
}

func (s *SyncScheduler) runCatalog(ctx context.Context) {
	steps := []struct {
		name string
		run  func(context.Context, uuid.UUID) (int, error)
	}{
		{"categories", s.catalog.SyncCategories},
		{"attributes", s.catalog.SyncAttributes},
		{"locations", s.catalog.SyncLocations},
		{"reverse_reasons", s.catalog.SyncReverseReasons},
		{"abandoned_carts", s.catalog.SyncAbandonedCarts},
		{"payouts", s.catalog.SyncPayouts},
	}
	for _, conn := range s.connectedConnectors(ctx) {
		for _, step := range steps {
			if _, err := step.run(ctx, conn.ID); err != nil {
				s.logger.Error("scheduled catalog sync failed",
					zap.String("connector_id", conn.ID.String()),
					zap.String("step", step.name),
					zap.Error(err))
			}
		}
	}
}

func (s *SyncScheduler) runJanitor(ctx context.Context) {
	if reset, err := s.janitor.ResetStaleLocks(ctx, s.config.LockTimeout); err != nil {
		s.logger.Error("stale lock reset failed", zap.Error(err))
	} else if reset > 0 {
		s.logger.Warn("stale import locks reset", zap.Int("count", reset))
	}

	if pruned, err := s.queues.Cleanup(ctx, s.config.EmptyQueueAge, s.config.CompletedQueueAge); err != nil {
		s.logger.Error("queue cleanup failed", zap.Error(err))
	} else if pruned > 0 {
		s.logger.Info("old queues pruned", zap.Int64("count", pruned))
	}

	if pruned, err := s.pruner.PruneLogs(ctx, s.config.StockLogAge); err != nil {
		s.logger.Error("stock log prune failed", zap.Error(err))
	} else if pruned > 0 {
		s.logger.Info("stock sync history pruned", zap.Int64("count", pruned))
	}
}

func (s *SyncScheduler) connectedConnectors(ctx context.Context) []*connector.Connector {
	status := connector.AuthConnected
	conns, err := s.connectors.List(ctx, connector.Filter{AuthStatus: &status})
	if err != nil {
		s.logger.Error("connector listing failed", zap.Error(err))
		return nil
	}
	return conns
}
