package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Input bounds enforced by mutating operations.
const (
	// MaxDescriptionLen bounds the asset description in bytes
	MaxDescriptionLen = 256
	// MaxConditionLen bounds the asset condition label in bytes
	MaxConditionLen = 64
	// MaxMetadataURILen bounds the optional metadata URI in bytes
	MaxMetadataURILen = 256
	// MaxVerificationTypeLen bounds the verification category label in bytes
	MaxVerificationTypeLen = 64
	// MaxVerificationDetailsLen bounds the verification free text in bytes
	MaxVerificationDetailsLen = 256
	// MaxTransferNotesLen bounds the optional transfer notes in bytes
	MaxTransferNotesLen = 256
	// PortfolioCapacity is the maximum number of assets a single owner may hold
	PortfolioCapacity = 100
)

// Principal is an identity capable of initiating operations and owning
// assets. It is the JWT subject of the authenticated caller.
type Principal string

// Valid reports whether the principal is usable as an owner or verifier.
func (p Principal) Valid() bool {
	s := strings.TrimSpace(string(p))
	return s != "" && len(s) <= 128
}

func (p Principal) String() string {
	return string(p)
}

// TransferEventType tags a transfer-log entry with the state transition that
// produced it. Lifecycle entries keep the previous-owner == new-owner
// convention so consumers relying on the identity-equality marker still work;
// the tag disambiguates them from real ownership changes.
type TransferEventType string

const (
	// TransferEventTypeTransfer marks a true ownership change
	TransferEventTypeTransfer TransferEventType = "transfer"
	// TransferEventTypeDeactivate marks a deactivation logged as a self-transfer
	TransferEventTypeDeactivate TransferEventType = "deactivate"
	// TransferEventTypeReactivate marks a reactivation logged as a self-transfer
	TransferEventTypeReactivate TransferEventType = "reactivate"
)

// RegistryEventType identifies an event published to the message broker
// after a registry mutation commits.
type RegistryEventType string

const (
	RegistryEventTypeRegistered  RegistryEventType = "asset.registered"
	RegistryEventTypeTransferred RegistryEventType = "asset.transferred"
	RegistryEventTypeUpdated     RegistryEventType = "asset.updated"
	RegistryEventTypeVerified    RegistryEventType = "asset.verified"
	RegistryEventTypeDeactivated RegistryEventType = "asset.deactivated"
	RegistryEventTypeReactivated RegistryEventType = "asset.reactivated"
)

// RegistryEvent is the normalized event published to NATS JetStream for every
// committed mutation. EventID is a ULID for time-sortable uniqueness.
type RegistryEvent struct {
	EventID   string            `json:"event_id"`
	EventType RegistryEventType `json:"event_type"`
	AssetID   uint64            `json:"asset_id"`
	Actor     Principal         `json:"actor"`
	From      *Principal        `json:"from,omitempty"`
	To        *Principal        `json:"to,omitempty"`
	LogIndex  *uint64           `json:"log_index,omitempty"`
	Height    uint64            `json:"height"`
	Timestamp time.Time         `json:"timestamp"`
}

// Valid reports whether the event carries the fields every consumer needs.
func (e *RegistryEvent) Valid() bool {
	return e.EventID != "" && e.EventType != "" && e.AssetID != 0 && e.Actor.Valid()
}

// ValidateBoundedText checks a required text field against its byte bound.
func ValidateBoundedText(field, value string, maxLen int) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s must not be empty: %w", field, ErrValidationFailed)
	}
	if len(value) > maxLen {
		return fmt.Errorf("%s exceeds %d bytes: %w", field, maxLen, ErrValidationFailed)
	}
	if !utf8.ValidString(value) {
		return fmt.Errorf("%s is not valid UTF-8: %w", field, ErrValidationFailed)
	}
	return nil
}

// ValidateOptionalText checks an optional text field against its byte bound.
// A nil value is always valid; an empty non-nil value is not.
func ValidateOptionalText(field string, value *string, maxLen int) error {
	if value == nil {
		return nil
	}
	return ValidateBoundedText(field, *value, maxLen)
}
