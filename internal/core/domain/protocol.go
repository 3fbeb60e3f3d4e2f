package domain

import "encoding/json"

// Inbound socket message types. Every client frame decodes into one
// InboundMessage and is dispatched through a single state machine.
const (
	TypeSubscribe       = "subscribe"
	TypeUnsubscribe     = "unsubscribe"
	TypeClientEvent     = "client-event"
	TypeTransportList   = "transport-list"
	TypeTransportCoords = "transport-coords"
	TypeTransportStatus = "transport-status"
)

type InboundMessage struct {
	Type    string          `json:"type"`
	Channel string          `json:"channel"`
	Event   string          `json:"event,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// OutboundMessage is the frame delivered to subscribed connections.
type OutboundMessage struct {
	Event   string          `json:"event"`
	Channel string          `json:"channel"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// CoordsData is the transport-coords payload.
type CoordsData struct {
	TransportID string          `json:"transport_id"`
	Coords      json.RawMessage `json:"coords"`
}

// StatusData is the transport-status payload. Only a finished transport is
// republished to the store.
type StatusData struct {
	Status string `json:"status"`
}

const StatusFinished = "finished"
