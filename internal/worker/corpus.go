package worker

import (
	"context"
	"sync"
	"time"

	"github.com/KOFI-GYIMAH/team-activity-corpus/internal/service"
	"github.com/KOFI-GYIMAH/team-activity-corpus/pkg/logger"
)

type Loader interface {
	Load(ctx context.Context) (service.Report, error)
}

// * CorpusWorker reloads the corpus at start-up, on every tick and on demand. Loads never overlap
type CorpusWorker struct {
	loader   Loader
	interval time.Duration
	triggers chan string

	loading sync.Mutex

	mu   sync.RWMutex
	last *service.Report
}

func NewCorpusWorker(loader Loader, interval time.Duration) *CorpusWorker {
	return &CorpusWorker{
		loader:   loader,
		interval: interval,
		triggers: make(chan string, 1),
	}
}

// Trigger queues a reload. While one is already pending the call is a no-op and
// returns false.
func (w *CorpusWorker) Trigger(reason string) bool {
	select {
	case w.triggers <- reason:
		return true
	default:
		logger.Debug("refresh already pending, dropping trigger (%s)", reason)
		return false
	}
}

// LoadNow runs a load synchronously, waiting for any load in progress to finish first.
func (w *CorpusWorker) LoadNow(ctx context.Context, reason string) (service.Report, error) {
	w.loading.Lock()
	defer w.loading.Unlock()

	logger.Info("corpus load started (%s)", reason)
	report, err := w.loader.Load(ctx)

	w.mu.Lock()
	w.last = &report
	w.mu.Unlock()
	return report, err
}

// LastReport returns the report of the most recent load, if any ran.
func (w *CorpusWorker) LastReport() (service.Report, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.last == nil {
		return service.Report{}, false
	}
	return *w.last, true
}

func (w *CorpusWorker) Run(ctx context.Context) {
	if _, err := w.LoadNow(ctx, "startup"); err != nil {
		logger.Error("initial load failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.reload(ctx, "scheduled")

		case reason := <-w.triggers:
			w.reload(ctx, reason)

		case <-ctx.Done():
			logger.Info("stopping corpus worker")
			return
		}
	}
}

func (w *CorpusWorker) reload(ctx context.Context, reason string) {
	report, err := w.LoadNow(ctx, reason)
	if err != nil {
		logger.Error("corpus load failed: %v", err)
		return
	}
	logger.Info("corpus reloaded: %d users loaded, %d failed", len(report.LoadedUsers), len(report.FailedUsers))
}
