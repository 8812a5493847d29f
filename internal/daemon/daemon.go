package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"mailsift/internal/config"
	"mailsift/internal/journal"
	"mailsift/internal/logging"
	"mailsift/internal/services"
	"mailsift/internal/tasks"
	"mailsift/internal/workflow"
)

// Daemon coordinates the task store, background workers, the eviction sweep,
// and the HTTP API. It enforces single-instance execution through a file lock.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *tasks.Store
	runner  *workflow.Runner
	journal *journal.Store

	lockPath string
	lock     *flock.Flock

	api *apiServer

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New constructs a daemon with initialized dependencies. The journal may be
// nil when artifact persistence is disabled.
func New(cfg *config.Config, store *tasks.Store, runner *workflow.Runner, artifacts *journal.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || runner == nil || logger == nil {
		return nil, errors.New("daemon requires config, store, runner, and logger")
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "mailsiftd.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		runner:   runner,
		journal:  artifacts,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.api = newAPIServer(cfg, d, logger)
	return d, nil
}

// Start acquires the daemon lock, runs a startup eviction sweep, and launches
// the sweep timer and HTTP API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	if err := os.MkdirAll(filepath.Dir(d.lockPath), 0o755); err != nil {
		return fmt.Errorf("prepare lock directory: %w", err)
	}
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another mailsift daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)

	d.evict()

	if d.api != nil {
		if err := d.api.start(d.ctx); err != nil {
			_ = d.lock.Unlock()
			d.cancel()
			d.ctx = nil
			d.cancel = nil
			return err
		}
	}

	d.wg.Add(1)
	go d.sweepLoop(d.ctx)

	d.running.Store(true)
	d.logger.Info("mailsift daemon started",
		logging.String("lock", d.lockPath),
		logging.Int("senders", len(d.cfg.Senders)),
	)
	return nil
}

// Stop shuts down the API, waits for the sweep loop, and releases the lock.
// In-flight task workers run to their terminal state; their store updates
// after eviction degrade to no-ops.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.api != nil {
		d.api.stop()
	}
	d.wg.Wait()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("mailsift daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	return d.journal.Close()
}

// Running reports whether the daemon has been started.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// LockFilePath returns the daemon lock location.
func (d *Daemon) LockFilePath() string {
	return d.lockPath
}

// APIAddr returns the bound API listen address, or empty when the API is
// disabled or not started.
func (d *Daemon) APIAddr() string {
	return d.api.addr()
}

// StartTask validates the request, registers a task, and launches its worker
// goroutine. The call returns as soon as the task is accepted.
func (d *Daemon) StartTask(senderID string, limit, batchSize int) (tasks.Task, error) {
	sender, ok := d.cfg.SenderByID(senderID)
	if !ok {
		return tasks.Task{}, services.Wrap(services.ErrNotFound, "daemon", "start task",
			fmt.Sprintf("unknown sender %q", senderID), nil)
	}
	if limit <= 0 {
		limit = d.cfg.Workflow.DefaultThreadLimit
	}
	if batchSize <= 0 {
		batchSize = d.cfg.Workflow.DefaultBatchSize
	}

	task := d.store.Create(sender.ID, limit, batchSize)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		// Workers deliberately outlive Stop's context: a started task runs
		// to a terminal state.
		d.runner.Run(context.Background(), task, sender)
	}()
	return task, nil
}

// Evict runs an on-demand eviction sweep and returns the number of tasks
// removed.
func (d *Daemon) Evict() int {
	return d.evict()
}

func (d *Daemon) evict() int {
	retention := time.Duration(d.cfg.Workflow.RetentionHours) * time.Hour
	evicted := d.store.EvictOlderThan(retention)
	if evicted > 0 {
		d.logger.Info("evicted stale tasks", logging.Int("count", evicted))
	}
	if pruned, err := d.journal.Prune(context.Background(), retention); err != nil {
		d.logger.Warn("journal prune failed", logging.Error(err))
	} else if pruned > 0 {
		d.logger.Info("pruned journal artifacts", logging.Int64("count", pruned))
	}
	return evicted
}

func (d *Daemon) sweepLoop(ctx context.Context) {
	defer d.wg.Done()
	interval := time.Duration(d.cfg.Workflow.EvictionSweepMinutes) * time.Minute
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.evict()
		}
	}
}
