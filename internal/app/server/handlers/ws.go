package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/aria-khodro/cargo-relay/internal/app/server/ws"
	"github.com/aria-khodro/cargo-relay/internal/core/services"
	"github.com/aria-khodro/cargo-relay/pkg/logging"
	"github.com/aria-khodro/cargo-relay/pkg/middleware"
)

type WSHandler struct {
	sockets *services.SocketService
	devMode bool
}

func NewWSHandler(sockets *services.SocketService, devMode bool) *WSHandler {
	return &WSHandler{
		sockets: sockets,
		devMode: devMode,
	}
}

func (h *WSHandler) Handler(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		log.ErrorContext(r.Context(), "ws handler - unauthorised missing identity")
		http.Error(w, "Unauthorized: identity missing", http.StatusUnauthorized)
		return
	}
	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("user.id", identity.ID))

	sessionCtx := context.WithoutCancel(r.Context())
	ctx, cancel := context.WithCancel(sessionCtx)
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true // origin policy is enforced by the CORS layer
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.ErrorContext(r.Context(), "ws handler - upgrade - ws upgrade failed", "err", err)
		cancel()
		return
	}
	defer conn.Close()

	socketID := uuid.NewString()
	conn.SetCloseHandler(func(code int, text string) error {
		log.Info("ws handler - ws closed", "user_id", identity.ID, "socket_id", socketID)
		cancel()
		return nil
	})
	socket := ws.NewWebSocket(ctx, conn)
	client := ws.NewClient(ctx, socket, socketID)

	if err := h.sockets.HandleConnect(ctx, identity, client); err != nil {
		log.ErrorContext(r.Context(), "ws handler - handle connect failed", "user_id", identity.ID, "err", err)
	}
	defer h.sockets.HandleDisconnect(sessionCtx, identity, client)
	if h.devMode {
		log.Info("ws handler - user connected", "user_id", identity.ID, "socket_id", socketID)
	}
	span.SetAttributes(attribute.String("relay.socket_id", socketID))

	socket.ReadLoop(func(data []byte) {
		if err := h.sockets.HandleMessage(ctx, client, data); err != nil {
			log.WarnContext(ctx, "ws handler - handle message failed", "socket_id", socketID, "err", err)
		}
	})
}
