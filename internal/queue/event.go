// Package queue defines message payloads exchanged over the message broker
// and the consumer that turns them into notification emails.
package queue

// Account event types published on the account.events queue.
const (
	EventAccountCreated = "account.created"
	EventAccountDeleted = "account.deleted"
)

// AccountEvent is published when an account is created or deleted. It
// carries enough information for the mail consumer to render the welcome
// or goodbye message without querying the primary database.
type AccountEvent struct {
	Type       string `json:"type"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	OccurredAt string `json:"occurred_at"`
}
