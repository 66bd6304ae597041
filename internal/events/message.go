// Package events publishes committed ledger changes to an AMQP exchange.
package events

import (
	"encoding/json"
	"fmt"

	"github.com/Veraticus/caixa/internal/model"
)

// Encode serializes an event for the wire.
func Encode(event model.Event) ([]byte, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return body, nil
}

// Decode parses a wire event and rejects bodies missing the routing fields.
func Decode(data []byte) (*model.Event, error) {
	var event model.Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	if event.Entity == "" || event.Action == "" {
		return nil, fmt.Errorf("unmarshal event: missing entity or action")
	}
	return &event, nil
}
