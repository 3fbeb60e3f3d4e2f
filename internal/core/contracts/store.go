package contracts

import (
	"context"
	"encoding/json"
)

// PresenceStore records which user owns which live socket.
type PresenceStore interface {
	SetOnline(ctx context.Context, userID, socketID string, details json.RawMessage) error
	SetOffline(ctx context.Context, userID string) error
}

// StorePublisher republishes a payload on a store channel, feeding the
// store-subscription ingress of every relay instance.
type StorePublisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// CoordsLog appends raw coordinate fixes to the per-transport history list.
type CoordsLog interface {
	AppendCoords(ctx context.Context, transportID string, coords json.RawMessage) error
}
