package amqp

import (
	"testing"
	"time"
)

func TestNewRecordSyncMessage(t *testing.T) {
	msg := NewRecordSyncMessage("injections", 42)
	if msg.Table != "injections" || msg.ID != 42 {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if msg.Timestamp.IsZero() || time.Since(msg.Timestamp) > time.Second {
		t.Fatalf("timestamp should be recent: %v", msg.Timestamp)
	}
}

func TestRecordSyncMessageJSON(t *testing.T) {
	msg := &RecordSyncMessage{
		Table:     "side_effects",
		ID:        7,
		Timestamp: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	parsed, err := RecordSyncMessageFromJSON(body)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if parsed.Table != msg.Table || parsed.ID != msg.ID || !parsed.Timestamp.Equal(msg.Timestamp) {
		t.Fatalf("round trip mismatch: %+v", parsed)
	}
}

func TestRecordSyncMessageInvalidJSON(t *testing.T) {
	if _, err := RecordSyncMessageFromJSON([]byte(`{"id": "not_a_number"}`)); err == nil {
		t.Fatalf("expected error for invalid JSON")
	}
}
