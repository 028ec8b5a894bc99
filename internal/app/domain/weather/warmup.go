package weather

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Refresher refreshes the cached reading of one place.
type Refresher interface {
	Refresh(ctx context.Context, place string) error
}

// Warmer keeps the cache populated for a fixed list of destinations.
type Warmer struct {
	refresher   Refresher
	places      []string
	concurrency int
	timeout     time.Duration
	logger      *zap.Logger
}

func NewWarmer(refresher Refresher, places []string, concurrency int, timeout time.Duration, logger *zap.Logger) *Warmer {
	if concurrency <= 0 {
		concurrency = 4
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Warmer{
		refresher:   refresher,
		places:      append([]string(nil), places...),
		concurrency: concurrency,
		timeout:     timeout,
		logger:      logger,
	}
}

// Run refreshes every place, at most concurrency at a time. Failures are
// logged and counted; one failing place does not stop the others.
func (w *Warmer) Run(ctx context.Context) (refreshed int, failed int) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	results := make([]error, len(w.places))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)
	for i, place := range w.places {
		g.Go(func() error {
			results[i] = w.refresher.Refresh(gctx, place)
			return nil
		})
	}
	_ = g.Wait()

	for i, err := range results {
		if err != nil {
			failed++
			w.logger.Warn("Weather warm-up failed", zap.String("place", w.places[i]), zap.Error(err))
			continue
		}
		refreshed++
	}
	w.logger.Info("Weather warm-up finished", zap.Int("refreshed", refreshed), zap.Int("failed", failed))
	return refreshed, failed
}

// Schedule registers Run on c with a standard five field cron spec.
func (w *Warmer) Schedule(ctx context.Context, c *cron.Cron, spec string) (cron.EntryID, error) {
	id, err := c.AddFunc(spec, func() { w.Run(ctx) })
	if err != nil {
		return 0, fmt.Errorf("invalid weather warm-up schedule %q: %w", spec, err)
	}
	return id, nil
}
