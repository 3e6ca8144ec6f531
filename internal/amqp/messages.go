package amqp

import (
	"encoding/json"
	"time"
)

// TransactionCreatedMessage is the compact event published when a
// transaction is persisted. It carries only the id; consumers read the full
// record from the store.
type TransactionCreatedMessage struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionCreatedMessage(id int64) *TransactionCreatedMessage {
	return &TransactionCreatedMessage{
		ID:        id,
		Timestamp: time.Now(),
	}
}

func (m *TransactionCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionCreatedMessageFromJSON(data []byte) (*TransactionCreatedMessage, error) {
	var msg TransactionCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
