package services

import (
	"context"
	"encoding/json"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/aria-khodro/cargo-relay/internal/core/contracts"
	"github.com/aria-khodro/cargo-relay/internal/core/domain"
)

var socketTracer = otel.Tracer("socket-service")

type ISocketService interface {
	// HandleConnect records presence for an admitted connection.
	HandleConnect(ctx context.Context, identity domain.Identity, c contracts.Client) error
	// HandleMessage decodes one inbound frame and dispatches it.
	HandleMessage(ctx context.Context, c contracts.Client, raw []byte) error
	// HandleDisconnect clears presence and membership.
	HandleDisconnect(ctx context.Context, identity domain.Identity, c contracts.Client)
}

// SocketService is the single state machine for inbound socket frames. Every
// frame decodes into one domain.InboundMessage; there is no per-event-name
// handler registration.
type SocketService struct {
	hub       contracts.Hub
	presence  contracts.PresenceStore
	publisher contracts.StorePublisher
	coordsLog contracts.CoordsLog
	coords    *CoordsBuffer
	log       *slog.Logger
}

func NewSocketService(
	log *slog.Logger,
	hub contracts.Hub,
	presence contracts.PresenceStore,
	publisher contracts.StorePublisher,
	coordsLog contracts.CoordsLog,
	coords *CoordsBuffer,
) *SocketService {
	return &SocketService{
		log:       log,
		hub:       hub,
		presence:  presence,
		publisher: publisher,
		coordsLog: coordsLog,
		coords:    coords,
	}
}

func (s *SocketService) HandleConnect(ctx context.Context, identity domain.Identity, c contracts.Client) error {
	s.hub.Register(c)
	if err := s.presence.SetOnline(ctx, identity.ID, c.SocketID(), identity.Details); err != nil {
		s.log.ErrorContext(ctx, "socket - handle connect - set online failed", "user_id", identity.ID, "socket_id", c.SocketID(), "err", err)
		return err
	}
	s.log.InfoContext(ctx, "socket - handle connect - client registered", "user_id", identity.ID, "socket_id", c.SocketID())
	return nil
}

func (s *SocketService) HandleDisconnect(ctx context.Context, identity domain.Identity, c contracts.Client) {
	s.hub.Unregister(c)
	if err := s.presence.SetOffline(ctx, identity.ID); err != nil {
		s.log.ErrorContext(ctx, "socket - handle disconnect - set offline failed", "user_id", identity.ID, "err", err)
	}
	s.log.InfoContext(ctx, "socket - handle disconnect - client removed", "user_id", identity.ID, "socket_id", c.SocketID())
}

func (s *SocketService) HandleMessage(ctx context.Context, c contracts.Client, raw []byte) error {
	var msg domain.InboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		s.log.WarnContext(ctx, "socket - handle message - malformed frame", "socket_id", c.SocketID())
		return domain.ErrMalformedEvent
	}
	ctx, span := socketTracer.Start(ctx, "SocketService.HandleMessage", trace.WithAttributes(
		attribute.String("type", msg.Type),
		attribute.String("channel", msg.Channel),
	))
	defer span.End()

	switch msg.Type {
	case domain.TypeSubscribe:
		s.hub.Subscribe(c, msg.Channel)
		s.log.InfoContext(ctx, "socket - handle message - subscribed", "socket_id", c.SocketID(), "channel", msg.Channel)
		return nil

	case domain.TypeUnsubscribe:
		s.hub.Unsubscribe(c, msg.Channel)
		s.log.InfoContext(ctx, "socket - handle message - unsubscribed", "socket_id", c.SocketID(), "channel", msg.Channel)
		return nil

	case domain.TypeClientEvent:
		// Client events are whispers: never echoed back to the origin.
		return s.hub.ToOthers(ctx, c.SocketID(), msg.Channel, msg.Event, msg.Data)

	case domain.TypeTransportList:
		return s.publisher.Publish(ctx, msg.Channel, msg.Data)

	case domain.TypeTransportCoords:
		var coords domain.CoordsData
		if err := json.Unmarshal(msg.Data, &coords); err != nil {
			span.RecordError(err)
			return domain.ErrMalformedEvent
		}
		if err := s.hub.ToOthers(ctx, c.SocketID(), msg.Channel, domain.TypeTransportCoords, msg.Data); err != nil {
			s.log.ErrorContext(ctx, "socket - handle message - coords fanout failed", "channel", msg.Channel, "err", err)
		}
		s.coords.Append(msg.Data)
		if err := s.coordsLog.AppendCoords(ctx, coords.TransportID, coords.Coords); err != nil {
			s.log.ErrorContext(ctx, "socket - handle message - coords log append failed", "transport_id", coords.TransportID, "err", err)
		}
		return nil

	case domain.TypeTransportStatus:
		var status domain.StatusData
		if err := json.Unmarshal(msg.Data, &status); err != nil {
			span.RecordError(err)
			return domain.ErrMalformedEvent
		}
		if status.Status != domain.StatusFinished {
			return nil
		}
		return s.publisher.Publish(ctx, msg.Channel, msg.Data)
	}

	s.log.WarnContext(ctx, "socket - handle message - unknown frame type", "type", msg.Type, "socket_id", c.SocketID())
	return nil
}
