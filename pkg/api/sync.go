// Package api contains the wire types of the sync protocol.
package api

// Change is one pending local mutation as transmitted to the server. Local
// outbox row ids are not part of the wire format.
type Change struct {
	Payload  map[string]any `json:"payload,omitempty"`
	Op       string         `json:"op"`
	Entity   string         `json:"entity"`
	EntityID string         `json:"entityId"`
	TS       int64          `json:"ts"`
}

// PushResponse is returned for an accepted change batch.
type PushResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the error body returned by the server.
type ErrorResponse struct {
	Message string `json:"message"`
}
