package contracts

import (
	"context"
	"encoding/json"
)

// Transport is the capability surface of the connection layer: membership
// queries and per-channel delivery. The router never tracks membership itself.
type Transport interface {
	// Has reports whether a connection with the given socket id is present.
	Has(socketID string) bool
	// ToAll delivers to every connection subscribed to channel.
	ToAll(ctx context.Context, channel, event string, data json.RawMessage) error
	// ToOthers delivers to every connection subscribed to channel except the
	// one identified by socketID.
	ToOthers(ctx context.Context, socketID, channel, event string, data json.RawMessage) error
}

// Hub extends Transport with the membership mutations the connection layer
// performs on behalf of admitted clients.
type Hub interface {
	Transport
	Register(c Client)
	Unregister(c Client)
	Subscribe(c Client, channel string)
	Unsubscribe(c Client, channel string)
}

// Client is the minimal interface the transport layer needs from an
// individual connection.
type Client interface {
	SocketID() string
	Send(ctx context.Context, data []byte) error
	Close()
}
