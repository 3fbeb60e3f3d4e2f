package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aria-khodro/cargo-relay/internal/core/contracts"
	"github.com/aria-khodro/cargo-relay/internal/core/domain"
)

type fakeHub struct {
	fakeTransport
	registered   []string
	unregistered []string
	subs         map[string][]string // socket_id → channels
	unsubs       []string
}

func (f *fakeHub) Register(c contracts.Client)   { f.registered = append(f.registered, c.SocketID()) }
func (f *fakeHub) Unregister(c contracts.Client) { f.unregistered = append(f.unregistered, c.SocketID()) }

func (f *fakeHub) Subscribe(c contracts.Client, channel string) {
	if f.subs == nil {
		f.subs = make(map[string][]string)
	}
	f.subs[c.SocketID()] = append(f.subs[c.SocketID()], channel)
}

func (f *fakeHub) Unsubscribe(c contracts.Client, channel string) {
	f.unsubs = append(f.unsubs, channel)
}

type fakePresence struct {
	online  map[string]string // user_id → socket_id
	offline []string
}

func (f *fakePresence) SetOnline(_ context.Context, userID, socketID string, _ json.RawMessage) error {
	if f.online == nil {
		f.online = make(map[string]string)
	}
	f.online[userID] = socketID
	return nil
}

func (f *fakePresence) SetOffline(_ context.Context, userID string) error {
	f.offline = append(f.offline, userID)
	return nil
}

type fakePublisher struct {
	mu        sync.Mutex
	published map[string][]byte // channel → last payload
	coords    map[string]json.RawMessage
}

func (f *fakePublisher) Publish(_ context.Context, channel string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.published == nil {
		f.published = make(map[string][]byte)
	}
	f.published[channel] = payload
	return nil
}

func (f *fakePublisher) AppendCoords(_ context.Context, transportID string, coords json.RawMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.coords == nil {
		f.coords = make(map[string]json.RawMessage)
	}
	f.coords[transportID] = coords
	return nil
}

type fakeClient struct {
	id   string
	sent [][]byte
}

func (c *fakeClient) SocketID() string { return c.id }
func (c *fakeClient) Send(_ context.Context, data []byte) error {
	c.sent = append(c.sent, data)
	return nil
}
func (c *fakeClient) Close() {}

func newTestSocketService() (*SocketService, *fakeHub, *fakePresence, *fakePublisher, *CoordsBuffer) {
	hub := &fakeHub{}
	presence := &fakePresence{}
	publisher := &fakePublisher{}
	coords := NewCoordsBuffer(testLogger(), nil, time.Hour)
	svc := NewSocketService(testLogger(), hub, presence, publisher, publisher, coords)
	return svc, hub, presence, publisher, coords
}

func TestHandleConnectAndDisconnect(t *testing.T) {
	svc, hub, presence, _, _ := newTestSocketService()
	client := &fakeClient{id: "s1"}
	identity := domain.Identity{ID: "42", Details: json.RawMessage(`{"id":42}`)}

	require.NoError(t, svc.HandleConnect(context.Background(), identity, client))
	assert.Equal(t, []string{"s1"}, hub.registered)
	assert.Equal(t, "s1", presence.online["42"])

	svc.HandleDisconnect(context.Background(), identity, client)
	assert.Equal(t, []string{"s1"}, hub.unregistered)
	assert.Equal(t, []string{"42"}, presence.offline)
}

func TestHandleMessageSubscribeUnsubscribe(t *testing.T) {
	svc, hub, _, _, _ := newTestSocketService()
	client := &fakeClient{id: "s1"}

	require.NoError(t, svc.HandleMessage(context.Background(), client, []byte(`{"type":"subscribe","channel":"orders.5"}`)))
	assert.Equal(t, []string{"orders.5"}, hub.subs["s1"])

	require.NoError(t, svc.HandleMessage(context.Background(), client, []byte(`{"type":"unsubscribe","channel":"orders.5"}`)))
	assert.Equal(t, []string{"orders.5"}, hub.unsubs)
}

func TestHandleMessageClientEventNeverEchoes(t *testing.T) {
	svc, hub, _, _, _ := newTestSocketService()
	client := &fakeClient{id: "s1"}

	frame := `{"type":"client-event","channel":"orders.5","event":"typing","data":{"on":true}}`
	require.NoError(t, svc.HandleMessage(context.Background(), client, []byte(frame)))
	assert.Equal(t, "others", hub.deliverTo)
	assert.Equal(t, "s1", hub.excluded)
	assert.Equal(t, "typing", hub.event)
}

func TestHandleMessageTransportList(t *testing.T) {
	svc, _, _, publisher, _ := newTestSocketService()
	client := &fakeClient{id: "s1"}

	frame := `{"type":"transport-list","channel":"transports","data":{"region":"tehran"}}`
	require.NoError(t, svc.HandleMessage(context.Background(), client, []byte(frame)))
	assert.JSONEq(t, `{"region":"tehran"}`, string(publisher.published["transports"]))
}

func TestHandleMessageTransportCoords(t *testing.T) {
	svc, hub, _, publisher, coords := newTestSocketService()
	client := &fakeClient{id: "s1"}

	frame := `{"type":"transport-coords","channel":"transports.9","data":{"transport_id":"tr-9","coords":{"lat":35.7,"lng":51.4}}}`
	require.NoError(t, svc.HandleMessage(context.Background(), client, []byte(frame)))

	assert.Equal(t, "others", hub.deliverTo)
	assert.Equal(t, 1, coords.Len())
	assert.JSONEq(t, `{"lat":35.7,"lng":51.4}`, string(publisher.coords["tr-9"]))
}

func TestHandleMessageTransportStatusOnlyFinishedPublishes(t *testing.T) {
	svc, _, _, publisher, _ := newTestSocketService()
	client := &fakeClient{id: "s1"}

	enRoute := `{"type":"transport-status","channel":"transports.9","data":{"status":"moving"}}`
	require.NoError(t, svc.HandleMessage(context.Background(), client, []byte(enRoute)))
	assert.Empty(t, publisher.published)

	finished := `{"type":"transport-status","channel":"transports.9","data":{"status":"finished"}}`
	require.NoError(t, svc.HandleMessage(context.Background(), client, []byte(finished)))
	assert.Contains(t, publisher.published, "transports.9")
}

func TestHandleMessageMalformedFrame(t *testing.T) {
	svc, _, _, _, _ := newTestSocketService()
	client := &fakeClient{id: "s1"}

	err := svc.HandleMessage(context.Background(), client, []byte(`not json`))
	assert.ErrorIs(t, err, domain.ErrMalformedEvent)
}

func TestHandleMessageUnknownTypeIsNoOp(t *testing.T) {
	svc, hub, _, publisher, _ := newTestSocketService()
	client := &fakeClient{id: "s1"}

	require.NoError(t, svc.HandleMessage(context.Background(), client, []byte(`{"type":"ping"}`)))
	assert.Empty(t, hub.subs)
	assert.Empty(t, publisher.published)
}
