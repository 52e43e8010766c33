package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"finbot/internal/core"
)

type EventType string

const (
	EventTransactionRecorded EventType = "transaction.recorded"
	EventTransactionDeleted  EventType = "transaction.deleted"
)

// TransactionEvent describes one committed ledger change. Deleted events
// carry only the ids.
type TransactionEvent struct {
	EventID     string    `json:"event_id"`
	Type        EventType `json:"type"`
	TxID        int64     `json:"tx_id"`
	UserID      int64     `json:"user_id"`
	Kind        core.Kind `json:"kind,omitempty"`
	AmountCents int64     `json:"amount_cents,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewRecordedEvent(tx core.Transaction) *TransactionEvent {
	return &TransactionEvent{
		EventID:     uuid.NewString(),
		Type:        EventTransactionRecorded,
		TxID:        tx.ID,
		UserID:      tx.UserID,
		Kind:        tx.Kind,
		AmountCents: tx.Amount.Cents,
		Description: tx.Description,
		CreatedAt:   tx.CreatedAt,
		Timestamp:   time.Now(),
	}
}

func NewDeletedEvent(userID, txID int64) *TransactionEvent {
	return &TransactionEvent{
		EventID:   uuid.NewString(),
		Type:      EventTransactionDeleted,
		TxID:      txID,
		UserID:    userID,
		Timestamp: time.Now(),
	}
}

// Transaction rebuilds the ledger row carried by a recorded event.
func (e *TransactionEvent) Transaction() core.Transaction {
	return core.Transaction{
		ID:          e.TxID,
		UserID:      e.UserID,
		Kind:        e.Kind,
		Amount:      core.Money{Cents: e.AmountCents},
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
	}
}

func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionEventFromJSON decodes and sanity-checks a delivery body.
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var e TransactionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	switch e.Type {
	case EventTransactionRecorded:
		if !e.Kind.IsValid() {
			return nil, fmt.Errorf("event %s: %w", e.EventID, core.ErrInvalidKind)
		}
	case EventTransactionDeleted:
	default:
		return nil, fmt.Errorf("unknown event type %q", e.Type)
	}
	if e.TxID <= 0 {
		return nil, fmt.Errorf("event %s: %w", e.EventID, core.ErrInvalidID)
	}
	return &e, nil
}
