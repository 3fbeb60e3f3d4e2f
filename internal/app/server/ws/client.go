package ws

import (
	"context"
	"sync"

	"github.com/aria-khodro/cargo-relay/internal/core/domain"
)

// RuntimeClient is one live connection with a buffered outbound queue. A
// consumer that lets the queue fill up is evicted rather than allowed to
// stall a channel fanout.
type RuntimeClient struct {
	ctx      context.Context
	cancel   context.CancelFunc
	ws       *WebSocket
	socketID string
	out      chan []byte
	once     sync.Once
}

func NewClient(parent context.Context, ws *WebSocket, socketID string) *RuntimeClient {
	ctx, cancel := context.WithCancel(parent)
	c := &RuntimeClient{
		ctx:      ctx,
		cancel:   cancel,
		ws:       ws,
		socketID: socketID,
		out:      make(chan []byte, 256),
	}
	go c.writeLoop()
	return c
}

func (c *RuntimeClient) SocketID() string { return c.socketID }

func (c *RuntimeClient) Send(ctx context.Context, data []byte) error {
	select {
	case <-c.ctx.Done():
		return domain.ErrClientClosed
	default:
	}
	select {
	case c.out <- data:
		return nil
	case <-c.ctx.Done():
		return domain.ErrClientClosed
	default:
		// Queue full: the consumer is too slow to keep. Dropping the
		// connection beats stalling everyone else on the channel.
		c.Close()
		return domain.ErrClientClosed
	}
}

func (c *RuntimeClient) Close() {
	// The queue is never closed: concurrent senders race against teardown,
	// and they bail out on the cancelled context instead.
	c.once.Do(func() {
		c.cancel()
		c.ws.Close()
	})
}

func (c *RuntimeClient) writeLoop() {
	defer c.Close()
	for {
		select {
		case <-c.ctx.Done():
			return
		case data := <-c.out:
			_ = c.ws.WriteMessage(data)
		}
	}
}
