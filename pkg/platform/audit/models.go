// Package audit records election activity. Events never carry plaintext PII:
// voters are referenced only by their obfuscated identity.
package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose.
type EventCategory string

const (
	// CategoryCompliance covers events that change the electoral record.
	CategoryCompliance EventCategory = "compliance"
	// CategorySecurity covers events that need follow-up, such as fraud.
	CategorySecurity EventCategory = "security"
	// CategoryOperations covers routine activity.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from the election service. Keep it transport-agnostic so
// stores and sinks can fan out.
type Event struct {
	Category  EventCategory `json:"category"`
	Timestamp time.Time     `json:"timestamp"`
	Action    string        `json:"action"`
	// VoterRef is the obfuscated national ID, empty when unknown.
	VoterRef     string `json:"voter_ref,omitempty"`
	BallotNumber string `json:"ballot_number,omitempty"`
	// Outcome is the ballot status label for counting attempts.
	Outcome string `json:"outcome,omitempty"`
	Reason  string `json:"reason,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

type AuditEvent string

const (
	EventVoterRegistered   AuditEvent = "voter_registered"
	EventVoterDeleted      AuditEvent = "voter_deleted"
	EventBallotIssued      AuditEvent = "ballot_issued"
	EventBallotCounted     AuditEvent = "ballot_counted"
	EventBallotRejected    AuditEvent = "ballot_rejected"
	EventBallotInvalidated AuditEvent = "ballot_invalidated"
	EventFraudDetected     AuditEvent = "fraud_detected"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventVoterRegistered: CategoryCompliance,
	EventVoterDeleted:    CategoryCompliance,
	EventBallotCounted:   CategoryCompliance,

	EventFraudDetected: CategorySecurity,

	EventBallotIssued:      CategoryOperations,
	EventBallotRejected:    CategoryOperations,
	EventBallotInvalidated: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}
