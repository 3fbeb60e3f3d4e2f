package registry

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memClient struct {
	id     string
	frames []json.RawMessage
}

func (c *memClient) SocketID() string { return c.id }
func (c *memClient) Send(_ context.Context, data []byte) error {
	c.frames = append(c.frames, json.RawMessage(data))
	return nil
}
func (c *memClient) Close() {}

func (c *memClient) lastFrame(t *testing.T) map[string]any {
	t.Helper()
	require.NotEmpty(t, c.frames)
	var frame map[string]any
	require.NoError(t, json.Unmarshal(c.frames[len(c.frames)-1], &frame))
	return frame
}

func TestToAllDeliversToEveryMember(t *testing.T) {
	h := NewHub()
	a, b, c := &memClient{id: "a"}, &memClient{id: "b"}, &memClient{id: "c"}
	for _, cl := range []*memClient{a, b, c} {
		h.Register(cl)
		h.Subscribe(cl, "orders.5")
	}

	require.NoError(t, h.ToAll(context.Background(), "orders.5", "finding-driver", json.RawMessage(`{"clients":"42"}`)))

	for _, cl := range []*memClient{a, b, c} {
		frame := cl.lastFrame(t)
		assert.Equal(t, "finding-driver", frame["event"])
		assert.Equal(t, "orders.5", frame["channel"])
	}
}

func TestToOthersExcludesOrigin(t *testing.T) {
	h := NewHub()
	origin, other := &memClient{id: "origin"}, &memClient{id: "other"}
	for _, cl := range []*memClient{origin, other} {
		h.Register(cl)
		h.Subscribe(cl, "orders.5")
	}

	require.NoError(t, h.ToOthers(context.Background(), "origin", "orders.5", "finding-driver", nil))

	assert.Empty(t, origin.frames)
	assert.Len(t, other.frames, 1)
}

func TestDeliveryScopedToChannel(t *testing.T) {
	h := NewHub()
	in, out := &memClient{id: "in"}, &memClient{id: "out"}
	h.Register(in)
	h.Register(out)
	h.Subscribe(in, "orders.5")
	h.Subscribe(out, "orders.6")

	require.NoError(t, h.ToAll(context.Background(), "orders.5", "finding-driver", nil))

	assert.Len(t, in.frames, 1)
	assert.Empty(t, out.frames)
}

func TestHasTracksRegistration(t *testing.T) {
	h := NewHub()
	c := &memClient{id: "s1"}

	assert.False(t, h.Has("s1"))
	h.Register(c)
	assert.True(t, h.Has("s1"))
	h.Unregister(c)
	assert.False(t, h.Has("s1"))
}

func TestUnregisterLeavesAllChannels(t *testing.T) {
	h := NewHub()
	gone, stays := &memClient{id: "gone"}, &memClient{id: "stays"}
	for _, cl := range []*memClient{gone, stays} {
		h.Register(cl)
		h.Subscribe(cl, "orders.5")
	}
	h.Subscribe(gone, "transports.9")
	h.Unregister(gone)

	require.NoError(t, h.ToAll(context.Background(), "orders.5", "e", nil))
	require.NoError(t, h.ToAll(context.Background(), "transports.9", "e", nil))

	assert.Empty(t, gone.frames)
	assert.Len(t, stays.frames, 1)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	h := NewHub()
	c := &memClient{id: "s1"}
	h.Register(c)
	h.Subscribe(c, "orders.5")
	h.Unsubscribe(c, "orders.5")

	require.NoError(t, h.ToAll(context.Background(), "orders.5", "e", nil))
	assert.Empty(t, c.frames)
}

func TestEmptyChannelNameNeverJoins(t *testing.T) {
	h := NewHub()
	c := &memClient{id: "s1"}
	h.Register(c)
	h.Subscribe(c, "")

	require.NoError(t, h.ToAll(context.Background(), "", "e", nil))
	assert.Empty(t, c.frames)
}
