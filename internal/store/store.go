package store

import (
	"context"

	"github.com/feral-file/asset-registry/internal/domain"
	"github.com/feral-file/asset-registry/internal/store/schema"
)

// RegisterAssetInput carries the fields for registering a new asset
type RegisterAssetInput struct {
	Caller      domain.Principal
	Description string
	Value       uint64
	MetadataURI *string
	// RequestID is the optional client-supplied idempotency key
	RequestID *string
}

// RegisterAssetResult carries the outcome of a successful registration
type RegisterAssetResult struct {
	AssetID uint64
	Height  uint64
}

// TransferAssetInput carries the fields for an ownership transfer
type TransferAssetInput struct {
	AssetID  uint64
	Caller   domain.Principal
	NewOwner domain.Principal
	Notes    *string
}

// UpdateAssetDetailsInput carries the mutable asset fields
type UpdateAssetDetailsInput struct {
	AssetID     uint64
	Caller      domain.Principal
	Description string
	Value       uint64
	Condition   string
	MetadataURI *string
}

// AddVerificationInput carries the fields for a third-party attestation
type AddVerificationInput struct {
	AssetID          uint64
	Verifier         domain.Principal
	VerificationType string
	Details          string
	URI              *string
}

// SetAssetActiveInput carries the fields for a lifecycle toggle
type SetAssetActiveInput struct {
	AssetID uint64
	Caller  domain.Principal
	Active  bool
	Reason  string
}

// AppendResult carries the outcome of a log append: the newly assigned
// per-asset index and the logical height stamped on the entry
type AppendResult struct {
	Index  uint64
	Height uint64
}

// CreateWebhookClientInput carries the fields for registering a webhook client
type CreateWebhookClientInput struct {
	ClientID      string
	WebhookURL    string
	WebhookSecret string
	EventFilters  []string
}

// Store defines the interface for database operations. Every mutation runs as
// a single transaction: checks before writes, no partial effects on failure.
type Store interface {
	// RegisterAsset creates a new asset owned by the caller, assigns the next
	// asset id, creates its counters row and portfolio entry
	RegisterAsset(ctx context.Context, input RegisterAssetInput) (*RegisterAssetResult, error)
	// TransferAsset moves ownership to a new principal and appends a transfer
	// log entry; the portfolio index is updated in the same transaction
	TransferAsset(ctx context.Context, input TransferAssetInput) (*AppendResult, error)
	// UpdateAssetDetails replaces the four mutable fields; owner,
	// acquisition height and active flag are untouched and no log entry is
	// produced. Returns the logical height of the mutation
	UpdateAssetDetails(ctx context.Context, input UpdateAssetDetailsInput) (uint64, error)
	// AddVerification appends a third-party attestation and returns its index
	AddVerification(ctx context.Context, input AddVerificationInput) (*AppendResult, error)
	// SetAssetActive toggles the lifecycle flag and appends a self-transfer
	// log entry tagged with the lifecycle event type. Redundant toggles are
	// state-level no-ops but still append an entry
	SetAssetActive(ctx context.Context, input SetAssetActiveInput) (*AppendResult, error)

	// GetAssetByID retrieves an asset record, nil if unknown
	GetAssetByID(ctx context.Context, assetID uint64) (*schema.Asset, error)
	// AssetExists reports whether an asset record exists
	AssetExists(ctx context.Context, assetID uint64) (bool, error)
	// IsCurrentOwner reports whether caller owns the asset; false (never an
	// error) for unknown assets
	IsCurrentOwner(ctx context.Context, assetID uint64, caller domain.Principal) (bool, error)
	// GetOwnerAssets returns the asset ids in an owner's portfolio, ascending
	GetOwnerAssets(ctx context.Context, owner domain.Principal) ([]uint64, error)

	// GetTransferCount returns the transfer log length, 0 for unknown assets
	GetTransferCount(ctx context.Context, assetID uint64) (uint64, error)
	// GetTransferRecord retrieves one transfer log entry, nil if absent
	GetTransferRecord(ctx context.Context, assetID uint64, index uint64) (*schema.TransferRecord, error)
	// GetTransferRecords retrieves a page of transfer log entries ordered by
	// index, plus the total count
	GetTransferRecords(ctx context.Context, assetID uint64, limit int, offset uint64) ([]schema.TransferRecord, uint64, error)

	// GetVerificationCount returns the verification log length, 0 for unknown assets
	GetVerificationCount(ctx context.Context, assetID uint64) (uint64, error)
	// GetVerificationRecord retrieves one attestation, nil if absent
	GetVerificationRecord(ctx context.Context, assetID uint64, index uint64) (*schema.VerificationRecord, error)
	// GetVerificationRecords retrieves a page of attestations ordered by
	// index, plus the total count
	GetVerificationRecords(ctx context.Context, assetID uint64, limit int, offset uint64) ([]schema.VerificationRecord, uint64, error)

	// CreateWebhookClient registers a webhook client
	CreateWebhookClient(ctx context.Context, input CreateWebhookClientInput) (*schema.WebhookClient, error)
	// ListWebhookClientsForEvent returns active clients subscribed to the
	// given event type (or the "*" wildcard)
	ListWebhookClientsForEvent(ctx context.Context, eventType string) ([]schema.WebhookClient, error)
	// CreateWebhookDelivery records a new delivery attempt row
	CreateWebhookDelivery(ctx context.Context, delivery *schema.WebhookDelivery) error
	// UpdateWebhookDelivery updates the outcome of a delivery attempt
	UpdateWebhookDelivery(ctx context.Context, delivery *schema.WebhookDelivery) error
}
