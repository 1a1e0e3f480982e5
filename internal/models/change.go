package models

// ChangeOp is the kind of mutation recorded in the outbox.
type ChangeOp string

const (
	OpCreate ChangeOp = "create"
	OpUpdate ChangeOp = "update"
	OpDelete ChangeOp = "delete"
)

// Change is a pending local mutation awaiting transmission to the server.
// The ID is assigned by the local store (monotonic sequence) and never sent
// back by the server; delivery is at-least-once, so the server applies
// batches idempotently by timestamp.
type Change struct {
	Payload  Doc      `json:"payload,omitempty"`
	Op       ChangeOp `json:"op"`
	Entity   string   `json:"entity"`
	EntityID string   `json:"entityId"`
	ID       uint64   `json:"id,omitempty"`
	TS       int64    `json:"ts"`
}
