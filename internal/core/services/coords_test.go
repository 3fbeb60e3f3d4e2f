package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingSink struct {
	mu      sync.Mutex
	batches [][]json.RawMessage
	block   chan struct{} // when non-nil, SendCoords waits on it
	entered chan struct{}
	err     error
}

func (s *blockingSink) SendEvent(context.Context, string, string, json.RawMessage) error {
	return nil
}

func (s *blockingSink) SendCoords(_ context.Context, coords []json.RawMessage) error {
	if s.entered != nil {
		s.entered <- struct{}{}
	}
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	s.batches = append(s.batches, coords)
	s.mu.Unlock()
	return s.err
}

func (s *blockingSink) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.batches)
}

func TestFlushSendsOneBulkCall(t *testing.T) {
	sink := &blockingSink{}
	b := NewCoordsBuffer(testLogger(), sink, time.Hour)

	b.Append(json.RawMessage(`{"transport_id":"tr-1"}`))
	b.Append(json.RawMessage(`{"transport_id":"tr-2"}`))
	b.Append(json.RawMessage(`{"transport_id":"tr-3"}`))
	b.Flush(context.Background())

	require.Equal(t, 1, sink.calls())
	assert.Len(t, sink.batches[0], 3)
	assert.Zero(t, b.Len())
}

func TestFlushEmptyBufferIsNoOp(t *testing.T) {
	sink := &blockingSink{}
	b := NewCoordsBuffer(testLogger(), sink, time.Hour)

	b.Flush(context.Background())
	assert.Zero(t, sink.calls())
}

func TestFlushSwapsBeforeSinkIO(t *testing.T) {
	sink := &blockingSink{
		block:   make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	b := NewCoordsBuffer(testLogger(), sink, time.Hour)
	b.Append(json.RawMessage(`{"transport_id":"tr-1"}`))

	go b.Flush(context.Background())
	<-sink.entered

	// The buffer is already empty while the sink call is still in flight, so
	// new appends land in the fresh buffer.
	assert.Zero(t, b.Len())
	b.Append(json.RawMessage(`{"transport_id":"tr-2"}`))
	assert.Equal(t, 1, b.Len())

	close(sink.block)
}

func TestFlushFailureDropsBatch(t *testing.T) {
	sink := &blockingSink{err: errors.New("webhook down")}
	b := NewCoordsBuffer(testLogger(), sink, time.Hour)

	b.Append(json.RawMessage(`{"transport_id":"tr-1"}`))
	b.Flush(context.Background())

	// The failed batch is not reinserted.
	assert.Zero(t, b.Len())

	b.Flush(context.Background())
	assert.Equal(t, 1, sink.calls())
}

func TestFlushNilSinkDiscardsBatch(t *testing.T) {
	b := NewCoordsBuffer(testLogger(), nil, time.Hour)
	b.Append(json.RawMessage(`{"transport_id":"tr-1"}`))
	b.Flush(context.Background())
	assert.Zero(t, b.Len())
}

func TestRunFlushesOnTicker(t *testing.T) {
	sink := &blockingSink{}
	b := NewCoordsBuffer(testLogger(), sink, 10*time.Millisecond)
	b.Append(json.RawMessage(`{"transport_id":"tr-1"}`))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.Run(ctx)

	require.Eventually(t, func() bool { return sink.calls() == 1 }, time.Second, 5*time.Millisecond)
}
