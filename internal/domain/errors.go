package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned when the caller is not the principal an
	// operation requires (e.g. a non-owner attempting a mutation)
	ErrUnauthorized = errors.New("caller is not authorized")

	// ErrAssetNotFound is returned when the referenced asset id has no record
	ErrAssetNotFound = errors.New("asset not found")

	// ErrValidationFailed is returned when an input violates a stated
	// constraint (emptiness, non-positivity, length bound)
	ErrValidationFailed = errors.New("validation failed")

	// ErrAlreadyProcessed is returned by idempotency guards when a request id
	// has already been applied
	ErrAlreadyProcessed = errors.New("request already processed")

	// ErrInvalidRecipient is returned by transfers targeting an unusable
	// recipient (self-transfer or an empty principal)
	ErrInvalidRecipient = errors.New("invalid transfer recipient")

	// ErrTransferBlocked is reserved for transfer policies that reject an
	// otherwise well-formed transfer; no current operation triggers it
	ErrTransferBlocked = errors.New("transfer blocked")

	// ErrUnauthorizedAttestation is reserved for a stricter verification
	// policy restricting who may attest; the current verification operation
	// accepts any caller
	ErrUnauthorizedAttestation = errors.New("caller may not attest")
)

// ErrPortfolioFull specializes ErrValidationFailed for registrations and
// transfers that would push an owner past PortfolioCapacity.
var ErrPortfolioFull = fmt.Errorf("portfolio capacity exceeded: %w", ErrValidationFailed)
