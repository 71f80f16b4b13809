package amqp

import (
	"encoding/json"
	"time"
)

// RecordSyncMessage asks the worker to mirror one locally stored record to
// the Google sheet. It carries only the table and row ID; the worker fetches
// the full record from the database.
type RecordSyncMessage struct {
	Table     string    `json:"table"` // "injections" or "side_effects"
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRecordSyncMessage(table string, id int64) *RecordSyncMessage {
	return &RecordSyncMessage{
		Table:     table,
		ID:        id,
		Timestamp: time.Now(),
	}
}

func (m *RecordSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func RecordSyncMessageFromJSON(data []byte) (*RecordSyncMessage, error) {
	var msg RecordSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
