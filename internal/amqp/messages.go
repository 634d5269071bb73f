package amqp

import (
	"encoding/json"
	"time"

	"bilancio/internal/core"
)

// TransactionBatchMessage carries one normalized feed batch for an account.
// The worker hands the payload to the ingest service, which owns
// deduplication, so redelivering the same message is harmless.
type TransactionBatchMessage struct {
	UserID       string                 `json:"user_id"`
	AccountID    string                 `json:"account_id"`
	Transactions []core.FeedTransaction `json:"transactions"`
	Timestamp    time.Time              `json:"timestamp"`
}

// NewTransactionBatchMessage creates a batch message stamped with now.
func NewTransactionBatchMessage(userID, accountID string, transactions []core.FeedTransaction) *TransactionBatchMessage {
	return &TransactionBatchMessage{
		UserID:       userID,
		AccountID:    accountID,
		Transactions: transactions,
		Timestamp:    time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *TransactionBatchMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionBatchMessageFromJSON creates a message from JSON bytes.
func TransactionBatchMessageFromJSON(data []byte) (*TransactionBatchMessage, error) {
	var msg TransactionBatchMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
