// Package event holds message contracts shared between modules.
package event

import (
	"time"

	"github.com/google/uuid"
)

// SecurityDestination is the topic every security relevant action is published to.
const SecurityDestination string = "security.events"

// SecurityConsumerAudit is the consumer group of the audit module.
const SecurityConsumerAudit string = "audit"

type SecurityKind string

const (
	KindUserRegistered   SecurityKind = "user.registered"
	KindLoginSucceeded   SecurityKind = "login.succeeded"
	KindLoginFailed      SecurityKind = "login.failed"
	KindTOTPEnabled      SecurityKind = "totp.enabled"
	KindTOTPDisabled     SecurityKind = "totp.disabled"
	KindRecoveryCodeUsed SecurityKind = "recovery_code.used"
	KindPasswordChanged  SecurityKind = "password.changed"
)

func (k SecurityKind) String() string { return string(k) }

// IsKnown reports whether k is one of the kinds above.
func (k SecurityKind) IsKnown() bool {
	switch k {
	case KindUserRegistered, KindLoginSucceeded, KindLoginFailed, KindTOTPEnabled,
		KindTOTPDisabled, KindRecoveryCodeUsed, KindPasswordChanged:
		return true
	default:
		return false
	}
}

// Alerting kinds trigger an email to the account owner.
func (k SecurityKind) Alerting() bool {
	switch k {
	case KindTOTPDisabled, KindRecoveryCodeUsed, KindPasswordChanged:
		return true
	default:
		return false
	}
}

// SecurityMessage is the body published on SecurityDestination.
//
// EventID is unique per occurrence so redelivered messages are stored once.
type SecurityMessage struct {
	EventID    string            `json:"event_id"`
	Kind       SecurityKind      `json:"kind"`
	UserID     uuid.UUID         `json:"user_id"`
	Email      string            `json:"email,omitempty"`
	IP         string            `json:"ip,omitempty"`
	UserAgent  string            `json:"user_agent,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}
