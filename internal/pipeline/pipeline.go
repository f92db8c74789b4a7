// Package pipeline relays stored hazard reports to the event stream.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/road-safety-service/internal/domain"
	"github.com/couchcryptid/road-safety-service/internal/observability"
	"github.com/couchcryptid/storm-data-shared/retry"
)

// Retry backoff bounds for extract and load failures.
const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// BatchExtractor reads up to batchSize unpublished hazard reports.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.PendingHazard, error)
}

// Transformer converts a hazard report into an output event.
type Transformer interface {
	Transform(ctx context.Context, report domain.HazardReport) (domain.OutputEvent, error)
}

// BatchLoader writes multiple output events to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.OutputEvent) error
}

// Pipeline orchestrates the extract-transform-load loop of the hazard relay.
// A report is committed (marked published) only after its event was loaded,
// so delivery is at least once.
type Pipeline struct {
	extractor    BatchExtractor
	transformer  Transformer
	loader       BatchLoader
	logger       *slog.Logger
	metrics      *observability.Metrics
	batchSize    int
	pollInterval time.Duration
}

// New creates a Pipeline. pollInterval is how long the relay waits after an
// empty batch before polling again.
func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int, pollInterval time.Duration) *Pipeline {
	return &Pipeline{
		extractor:    e,
		transformer:  t,
		loader:       l,
		logger:       logger,
		metrics:      metrics,
		batchSize:    batchSize,
		pollInterval: pollInterval,
	}
}

// Run executes the relay loop until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("hazard relay started", "batch_size", p.batchSize, "poll_interval", p.pollInterval)
	p.metrics.RelayRunning.Set(1)
	defer p.metrics.RelayRunning.Set(0)

	backoff := initialBackoff

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("hazard relay stopping", "reason", ctx.Err())
			return nil
		default:
		}

		if !p.processBatch(ctx, &backoff) {
			return nil
		}
	}
}

// processBatch runs one extract-transform-load cycle. Returns false if the relay should stop.
func (p *Pipeline) processBatch(ctx context.Context, backoff *time.Duration) bool {
	start := time.Now()

	batch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract batch failed", "error", err)
		return p.backoffOrStop(ctx, backoff)
	}

	if len(batch) == 0 {
		return retry.SleepWithContext(ctx, p.pollInterval)
	}

	p.metrics.HazardsExtracted.Add(float64(len(batch)))
	p.metrics.BatchSize.Observe(float64(len(batch)))
	*backoff = initialBackoff

	loaded, ok := p.transformAndLoad(ctx, batch, backoff)
	if !ok {
		return false
	}

	if loaded > 0 {
		p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
	}
	return true
}

// transformAndLoad serializes each report in the batch, loads the successes,
// and commits them. Returns the number of loaded events and false if the
// relay should stop.
func (p *Pipeline) transformAndLoad(ctx context.Context, batch []domain.PendingHazard, backoff *time.Duration) (int, bool) {
	outBatch := make([]domain.OutputEvent, 0, len(batch))
	loadable := make([]domain.PendingHazard, 0, len(batch))

	for _, pending := range batch {
		out, err := p.transformer.Transform(ctx, pending.Report)
		if err != nil {
			// Committed so an unserializable report cannot stall the outbox.
			p.logger.Warn("transform failed, skipping hazard",
				"error", err,
				"hazard_id", pending.Report.ID,
				"road_name", pending.Report.RoadName,
			)
			p.metrics.TransformErrors.Inc()
			p.commit(ctx, pending)
			continue
		}
		outBatch = append(outBatch, out)
		loadable = append(loadable, pending)
	}

	if len(outBatch) == 0 {
		return 0, true
	}

	if err := p.loader.LoadBatch(ctx, outBatch); err != nil {
		p.logger.Error("load batch failed", "error", err, "batch_size", len(outBatch))
		return 0, p.backoffOrStop(ctx, backoff)
	}

	p.metrics.HazardsPublished.Add(float64(len(outBatch)))

	for _, pending := range loadable {
		p.commit(ctx, pending)
	}

	return len(outBatch), true
}

// backoffOrStop checks for context cancellation, sleeps with the current backoff,
// and advances the backoff. Returns false if the relay should stop.
func (p *Pipeline) backoffOrStop(ctx context.Context, backoff *time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !retry.SleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = retry.NextBackoff(*backoff, maxBackoff)
	return true
}

// commit marks the hazard published if a commit function is available.
func (p *Pipeline) commit(ctx context.Context, pending domain.PendingHazard) {
	if pending.Commit == nil {
		return
	}
	if err := pending.Commit(ctx); err != nil {
		p.logger.Warn("mark hazard published failed", "error", err, "hazard_id", pending.Report.ID)
	}
}
