package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"homefin/internal/core"
)

// Op is the change carried by a sync message.
type Op string

const (
	OpUpsert Op = "upsert"
	OpDelete Op = "delete"
)

// RecordSyncMessage announces that one stored record changed.
// It carries only the record key; the worker reads the current value from the store.
// Month is zero for tax returns.
type RecordSyncMessage struct {
	Op        Op        `json:"op"`
	Kind      core.Kind `json:"kind"`
	Year      int       `json:"year"`
	Month     int       `json:"month,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRecordSyncMessage builds a message stamped with the current time.
func NewRecordSyncMessage(op Op, kind core.Kind, year, month int) *RecordSyncMessage {
	return &RecordSyncMessage{
		Op:        op,
		Kind:      kind,
		Year:      year,
		Month:     month,
		Timestamp: time.Now(),
	}
}

// Period returns the monthly period of a balance or income message.
func (m *RecordSyncMessage) Period() core.Period {
	return core.NewPeriod(m.Year, m.Month)
}

// Validate rejects messages the worker cannot route.
func (m *RecordSyncMessage) Validate() error {
	switch m.Op {
	case OpUpsert, OpDelete:
	default:
		return fmt.Errorf("unknown op %q", m.Op)
	}
	if _, err := core.ParseKind(string(m.Kind)); err != nil {
		return err
	}
	if m.Kind == core.KindTax {
		return core.ValidateYear(m.Year)
	}
	return m.Period().Validate()
}

// ToJSON converts the message to JSON bytes
func (m *RecordSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordSyncMessageFromJSON decodes and validates a message.
func RecordSyncMessageFromJSON(data []byte) (*RecordSyncMessage, error) {
	var msg RecordSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sync message: %w", err)
	}
	return &msg, nil
}
