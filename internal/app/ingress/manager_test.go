package ingress

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aria-khodro/cargo-relay/internal/core/contracts"
)

type stubBackend struct {
	startErr error
	stopErr  error
	started  int
	stopped  int
}

func (s *stubBackend) Start(context.Context, contracts.EventHandler) error {
	s.started++
	return s.startErr
}

func (s *stubBackend) Stop(context.Context) error {
	s.stopped++
	return s.stopErr
}

func TestManagerStartsAndStopsAllBackends(t *testing.T) {
	a, b := &stubBackend{}, &stubBackend{}
	m := NewManager(testLogger(), a, b)

	require.NoError(t, m.Start(context.Background(), nil))
	assert.Equal(t, 1, a.started)
	assert.Equal(t, 1, b.started)

	require.NoError(t, m.Stop(context.Background()))
	assert.Equal(t, 1, a.stopped)
	assert.Equal(t, 1, b.stopped)
}

func TestManagerRollsBackOnStartFailure(t *testing.T) {
	a := &stubBackend{}
	b := &stubBackend{startErr: errors.New("redis down")}
	c := &stubBackend{}
	m := NewManager(testLogger(), a, b, c)

	err := m.Start(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, 1, a.stopped)
	assert.Zero(t, c.started)
}

func TestManagerStopJoinsErrors(t *testing.T) {
	errA := errors.New("a failed")
	a := &stubBackend{stopErr: errA}
	b := &stubBackend{}
	m := NewManager(testLogger(), a, b)

	err := m.Stop(context.Background())
	assert.ErrorIs(t, err, errA)
	assert.Equal(t, 1, b.stopped)
}
