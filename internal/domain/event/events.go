package event

import (
	"time"

	"github.com/google/uuid"
)

// EventTypeFraudAlertRaised is emitted when a scored transaction is flagged as fraud.
const EventTypeFraudAlertRaised = "fraud.alert.raised"

// FraudAlertRaised is published when a transaction's score crosses its
// mode's threshold.
type FraudAlertRaised struct {
	RaisedAt      time.Time `json:"raised_at"`
	TransactionID string    `json:"transaction_id"`
	CardID        string    `json:"card_id"`
	Explain       string    `json:"explain"`
	Score         float64   `json:"score"`
	AlertID       uuid.UUID `json:"alert_id"`
}

// NewFraudAlertRaised builds an alert stamped with a fresh ID and the current time.
func NewFraudAlertRaised(transactionID, cardID string, score float64, explain string) FraudAlertRaised {
	return FraudAlertRaised{
		AlertID:       uuid.New(),
		TransactionID: transactionID,
		CardID:        cardID,
		Score:         score,
		Explain:       explain,
		RaisedAt:      time.Now().UTC(),
	}
}

// EventID returns the alert ID.
func (e FraudAlertRaised) EventID() uuid.UUID {
	return e.AlertID
}

// EventType returns the event type identifier.
func (e FraudAlertRaised) EventType() string {
	return EventTypeFraudAlertRaised
}

// AggregateID returns the transaction ID as the aggregate identifier.
func (e FraudAlertRaised) AggregateID() string {
	return e.TransactionID
}

// OccurredAt returns when the alert was raised.
func (e FraudAlertRaised) OccurredAt() time.Time {
	return e.RaisedAt
}
