package worker

import (
	"context"
	"time"

	"sjsage522/blogsyndicator/internal/syndicator"
	"sjsage522/blogsyndicator/logger"
	"sjsage522/blogsyndicator/services/publisher"
)

// Syncer runs one crawl, store and publish cycle
type Syncer interface {
	Sync(ctx context.Context, publish bool) (syndicator.Result, error)
}

// Worker handles the periodic syncing and publishing process
type Worker struct {
	ctx          context.Context
	syncer       Syncer
	trimmer      publisher.Trimmer
	log          *logger.Logger
	syncInterval time.Duration
}

// NewWorker creates a new worker. trimmer may be nil when no stream publisher
// is configured.
func NewWorker(
	ctx context.Context,
	syncer Syncer,
	trimmer publisher.Trimmer,
	syncInterval time.Duration,
) *Worker {
	return &Worker{
		ctx:          ctx,
		syncer:       syncer,
		trimmer:      trimmer,
		log:          logger.ForWorker(),
		syncInterval: syncInterval,
	}
}

// Start runs sync cycles until the worker's context is cancelled
func (w *Worker) Start() {
	w.log.Info().Dur("interval", w.syncInterval).Msg("Worker started")
	for {
		w.runCycle()

		timer := time.NewTimer(w.syncInterval)
		select {
		case <-w.ctx.Done():
			timer.Stop()
			w.log.Info().Msg("Worker stopped")
			return
		case <-timer.C:
		}
	}
}

// runCycle syncs once with publishing and then trims the streams
func (w *Worker) runCycle() {
	start := time.Now()

	result, err := w.syncer.Sync(w.ctx, true)
	if err != nil {
		logger.LogError("Worker", err, "sync cycle failed")
	} else {
		w.log.Info().
			Int("crawled", result.Crawled).
			Int("published", len(result.Inserted)).
			Int("skipped", result.Skipped).
			Dur("elapsed", time.Since(start)).
			Msg("Sync cycle finished")
	}

	// Trim all streams after publishing
	if w.trimmer == nil {
		return
	}
	if err := w.trimmer.TrimStreams(w.ctx); err != nil {
		logger.LogError("StreamTrimming", err, "failed to trim streams")
	}
}
