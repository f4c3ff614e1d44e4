package app

import (
	"context"
	"time"

	"github.com/nvnfont/nvnfont-bot-go/internal/config"
)

// startBackgroundJobs starts all background goroutines tracked by the
// WaitGroup. Each exits when ctx is canceled.
func (a *Application) startBackgroundJobs(ctx context.Context) {
	a.wg.Go(func() {
		a.every(ctx, "catalog_reload", a.cfg.CatalogReloadInterval, a.runCatalogReload)
	})
	a.wg.Go(func() {
		a.every(ctx, "state_gauges", config.MetricsGaugeUpdate, a.recordStateGauges)
	})
	if a.snapshots != nil {
		a.wg.Go(func() {
			a.every(ctx, "snapshot_upload", a.cfg.R2.SnapshotInterval, a.runSnapshotUpload)
		})
	}
}

// every runs fn on each tick until ctx is canceled.
func (a *Application) every(ctx context.Context, name string, interval time.Duration, fn func(context.Context)) {
	log := a.logger.WithField("job", name)
	log.WithField("interval", interval.String()).Debug("Background job started")
	defer log.Debug("Background job stopped")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}

func (a *Application) runCatalogReload(ctx context.Context) {
	if err := a.reloadCatalog(ctx); err != nil {
		a.logger.WithError(err).Warn("Catalog reload failed, keeping previous data")
		return
	}
	fonts, responses := a.catalog.Counts()
	a.logger.WithField("fonts", fonts).WithField("responses", responses).Debug("Catalog reloaded")
}

func (a *Application) recordStateGauges(ctx context.Context) {
	if a.metrics == nil {
		return
	}
	banned, err := a.db.CountBans(ctx)
	if err != nil {
		a.logger.WithError(err).Debug("Failed to count bans for gauges")
		return
	}
	_, muted := a.state.Counts()
	a.metrics.SetRuntimeState(a.state.BotEnabled(), banned, muted)
}

func (a *Application) runSnapshotUpload(ctx context.Context) {
	uploadCtx, cancel := context.WithTimeout(ctx, config.SnapshotJob)
	defer cancel()

	start := time.Now()
	res, err := a.snapshots.Upload(uploadCtx, a.db)
	if err != nil {
		a.logger.WithError(err).Error("Snapshot upload failed")
		return
	}
	a.logger.WithField("key", res.Key).
		WithField("size", res.Size).
		WithField("duration_ms", time.Since(start).Milliseconds()).
		Info("Snapshot upload completed")
}
