package domain

import "encoding/json"

// Event is the routable unit produced by every ingress backend. The wire
// names match the store message format: {"event": ..., "data": ..., "socket": ...}.
type Event struct {
	Name     string          `json:"event"`
	Data     json.RawMessage `json:"data,omitempty"`
	SocketID string          `json:"socket,omitempty"`
}

// EventData carries the payload fields the push dispatcher interrogates.
// Payloads are arbitrary JSON; fields absent from a given event stay zero.
type EventData struct {
	Clients string      `json:"clients"`
	Status  string      `json:"status"`
	Reason  string      `json:"reason"`
	Driver  *DriverInfo `json:"driver,omitempty"`
	Order   *OrderInfo  `json:"order,omitempty"`
}

type DriverInfo struct {
	Vehicle      string `json:"vehicle"`
	LicensePlate string `json:"license_plate"`
}

type OrderInfo struct {
	Number string `json:"number"`
	Total  string `json:"total"`
}

// TenantScope selects an independent token namespace and provider credential set.
type TenantScope string

const (
	ScopeUser      TenantScope = "user"
	ScopeCorporate TenantScope = "corporate"
)

// PushMessage is the provider payload built by the dispatcher: the resolved
// tokens, the rendered template, and the channel carried both as data and as
// the platform notification tag.
type PushMessage struct {
	Tokens []string
	Title  string
	Body   string
	Data   map[string]string
	Tag    string
}

// ProviderResponse is the per-recipient result of a multicast send, in the
// same order as the tokens that were submitted.
type ProviderResponse struct {
	Success bool
	Error   string
}

type MulticastResult struct {
	Responses []ProviderResponse
}

// DispatchOutcome is produced once per multicast call. FailedTokens keeps the
// original target order.
type DispatchOutcome struct {
	Sent         int
	FailedTokens []string
}

// Identity is the resolved identity attached to an admitted connection.
type Identity struct {
	ID      string
	Details json.RawMessage
}
