package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/aria-khodro/cargo-relay/internal/core/contracts"
	"github.com/aria-khodro/cargo-relay/internal/platform/metrics"
)

// CoordsBuffer accumulates high-frequency coordinate records and flushes them
// as one bulk call on a fixed timer. The buffer is unbounded; a failed flush
// loses the extracted batch. Both are deliberate throughput tradeoffs for
// this event class, and both are observable through the metrics counters.
type CoordsBuffer struct {
	mu   sync.Mutex
	buf  []json.RawMessage
	sink contracts.WebhookSink // nil disables delivery; flush ticks discard the batch
	log  *slog.Logger

	interval time.Duration
}

func NewCoordsBuffer(log *slog.Logger, sink contracts.WebhookSink, interval time.Duration) *CoordsBuffer {
	return &CoordsBuffer{
		log:      log,
		sink:     sink,
		interval: interval,
	}
}

// Append records one coordinate payload. Never blocks on I/O.
func (b *CoordsBuffer) Append(record json.RawMessage) {
	b.mu.Lock()
	b.buf = append(b.buf, record)
	b.mu.Unlock()
}

// Len reports the number of buffered records.
func (b *CoordsBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.buf)
}

// Run drives the periodic flush until ctx is cancelled. Records still
// buffered at shutdown are not flushed; delivery of this event class is not
// guaranteed past process exit.
func (b *CoordsBuffer) Run(ctx context.Context) {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			b.log.Info("coords buffer - run - stopped", "buffered", b.Len())
			return
		case <-ticker.C:
			b.Flush(ctx)
		}
	}
}

// Flush atomically swaps the buffer for an empty one and sends the captured
// batch as a single bulk call. The swap completes before any I/O, so appends
// arriving during the sink call land in the fresh buffer. An empty buffer is
// a no-op; without a sink the captured batch is discarded, keeping memory
// bounded when no collector is configured.
func (b *CoordsBuffer) Flush(ctx context.Context) {
	b.mu.Lock()
	batch := b.buf
	b.buf = nil
	b.mu.Unlock()

	if len(batch) == 0 || b.sink == nil {
		return
	}
	if err := b.sink.SendCoords(ctx, batch); err != nil {
		metrics.SideEffectFailures.WithLabelValues("telemetry").Inc()
		b.log.ErrorContext(ctx, "coords buffer - flush - bulk send failed", "dropped", len(batch), "err", err)
		return
	}
	metrics.TelemetryFlushedRecords.Add(float64(len(batch)))
	b.log.DebugContext(ctx, "coords buffer - flush - bulk send success", "records", len(batch))
}
