package amqp

import (
	"encoding/json"
	"time"

	"bilancio/internal/core"
)

// Event actions carried by transaction event messages.
const (
	ActionCreated = "created"
	ActionDeleted = "deleted"
)

// TransactionEventMessage notifies the reconciliation worker that a
// transaction touched the roll-ups for a (user, year, month, day) key.
// The worker recomputes that key's sums from raw rows, so the message only
// needs to locate the key, not describe the full transaction.
type TransactionEventMessage struct {
	Action        string    `json:"action"`
	TransactionID string    `json:"transaction_id"`
	UserID        string    `json:"user_id"`
	Year          int       `json:"year"`
	Month         int       `json:"month"` // zero-based
	Day           int       `json:"day"`
	Type          string    `json:"type"`
	AmountCents   int64     `json:"amount_cents"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewTransactionEvent builds an event message from a transaction.
func NewTransactionEvent(action string, t core.Transaction) *TransactionEventMessage {
	year, month, day := core.DateKey(t.Date)
	return &TransactionEventMessage{
		Action:        action,
		TransactionID: t.ID,
		UserID:        t.UserID,
		Year:          year,
		Month:         month,
		Day:           day,
		Type:          string(t.Type),
		AmountCents:   t.AmountCents,
		Timestamp:     time.Now().UTC(),
	}
}

func (m *TransactionEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionEventFromJSON(data []byte) (*TransactionEventMessage, error) {
	var msg TransactionEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
