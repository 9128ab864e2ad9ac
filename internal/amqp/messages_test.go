package amqp

import (
	"testing"
	"time"

	"homefin/internal/core"
)

func TestNewRecordSyncMessage(t *testing.T) {
	msg := NewRecordSyncMessage(OpUpsert, core.KindBalance, 2024, 3)

	if msg.Op != OpUpsert || msg.Kind != core.KindBalance || msg.Year != 2024 || msg.Month != 3 {
		t.Errorf("NewRecordSyncMessage() = %+v", msg)
	}
	if time.Since(msg.Timestamp) > time.Second {
		t.Errorf("Timestamp = %v, want now", msg.Timestamp)
	}
	if got := msg.Period(); got != core.NewPeriod(2024, 3) {
		t.Errorf("Period() = %v", got)
	}
}

func TestRecordSyncMessage_Decode(t *testing.T) {
	sent := &RecordSyncMessage{
		Op:        OpDelete,
		Kind:      core.KindIncome,
		Year:      2024,
		Month:     7,
		Timestamp: time.Date(2024, 7, 31, 9, 0, 0, 0, time.UTC),
	}
	body, err := sent.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	got, err := RecordSyncMessageFromJSON(body)
	if err != nil {
		t.Fatalf("RecordSyncMessageFromJSON: %v", err)
	}
	if got.Op != sent.Op || got.Kind != sent.Kind || got.Period() != sent.Period() || !got.Timestamp.Equal(sent.Timestamp) {
		t.Errorf("decoded %+v, sent %+v", got, sent)
	}
}

func TestRecordSyncMessageFromJSON_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"op": 1}`},
		{"unknown op", `{"op":"merge","kind":"balance","year":2024,"month":1}`},
		{"unknown kind", `{"op":"upsert","kind":"stocks","year":2024,"month":1}`},
		{"month out of range", `{"op":"upsert","kind":"income","year":2024,"month":13}`},
		{"monthly without month", `{"op":"upsert","kind":"balance","year":2024}`},
		{"tax year out of range", `{"op":"delete","kind":"tax","year":12}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := RecordSyncMessageFromJSON([]byte(tt.body)); err == nil {
				t.Errorf("accepted %s", tt.body)
			}
		})
	}

	if _, err := RecordSyncMessageFromJSON([]byte(`{"op":"delete","kind":"tax","year":2023}`)); err != nil {
		t.Errorf("tax message without month rejected: %v", err)
	}
}
