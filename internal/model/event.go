package model

import "time"

// Event entities.
const (
	EntityTransaction = "transacao"
	EntityCategory    = "categoria"
)

// Event actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionRemoved = "removed"
)

// Event records a committed change to a ledger entity.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Entity    string    `json:"entity"`
	Action    string    `json:"action"`
	ID        int64     `json:"id"`
}

// RoutingKey returns the "<entity>.<action>" key used to route the event.
func (e Event) RoutingKey() string {
	return e.Entity + "." + e.Action
}
