package dto

import (
	"time"

	"github.com/feral-file/asset-registry/internal/store/schema"
)

// RegisterAssetRequest is the request body for POST /assets
type RegisterAssetRequest struct {
	Description string  `json:"description"`
	Value       uint64  `json:"value"`
	MetadataURI *string `json:"metadata_uri,omitempty"`
	// RequestID is an optional client-supplied idempotency key (UUID)
	RequestID *string `json:"request_id,omitempty"`
}

// RegisterAssetResponse is the response body for a successful registration
type RegisterAssetResponse struct {
	AssetID uint64 `json:"asset_id"`
	Height  uint64 `json:"height"`
}

// TransferAssetRequest is the request body for POST /assets/:id/transfer
type TransferAssetRequest struct {
	NewOwner string  `json:"new_owner"`
	Notes    *string `json:"notes,omitempty"`
}

// UpdateAssetRequest is the request body for PUT /assets/:id
type UpdateAssetRequest struct {
	Description string  `json:"description"`
	Value       uint64  `json:"value"`
	Condition   string  `json:"condition"`
	MetadataURI *string `json:"metadata_uri,omitempty"`
}

// LifecycleRequest is the request body for deactivate/reactivate
type LifecycleRequest struct {
	Reason string `json:"reason"`
}

// AddVerificationRequest is the request body for POST /assets/:id/verifications
type AddVerificationRequest struct {
	Type    string  `json:"type"`
	Details string  `json:"details"`
	URI     *string `json:"uri,omitempty"`
}

// AppendResponse reports the index assigned to a new log entry
type AppendResponse struct {
	Index  uint64 `json:"index"`
	Height uint64 `json:"height"`
}

// Asset is the public view of an asset record
type Asset struct {
	ID                uint64    `json:"id"`
	Owner             string    `json:"owner"`
	Description       string    `json:"description"`
	Value             uint64    `json:"value"`
	AcquisitionHeight uint64    `json:"acquisition_height"`
	Condition         string    `json:"condition,omitempty"`
	MetadataURI       *string   `json:"metadata_uri,omitempty"`
	IsActive          bool      `json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TransferRecord is the public view of one ownership-log entry
type TransferRecord struct {
	AssetID        uint64  `json:"asset_id"`
	Index          uint64  `json:"index"`
	EventType      string  `json:"event_type"`
	PreviousOwner  string  `json:"previous_owner"`
	NewOwner       string  `json:"new_owner"`
	TransferHeight uint64  `json:"transfer_height"`
	Notes          *string `json:"notes,omitempty"`
}

// VerificationRecord is the public view of one attestation
type VerificationRecord struct {
	AssetID            uint64  `json:"asset_id"`
	Index              uint64  `json:"index"`
	Verifier           string  `json:"verifier"`
	Type               string  `json:"type"`
	VerificationHeight uint64  `json:"verification_height"`
	Details            string  `json:"details"`
	URI                *string `json:"uri,omitempty"`
}

// TransferRecordsResponse is a page of ownership-log entries
type TransferRecordsResponse struct {
	Records []TransferRecord `json:"records"`
	Total   uint64           `json:"total"`
}

// VerificationRecordsResponse is a page of attestations
type VerificationRecordsResponse struct {
	Records []VerificationRecord `json:"records"`
	Total   uint64               `json:"total"`
}

// OwnerAssetsResponse lists the asset ids in an owner's portfolio
type OwnerAssetsResponse struct {
	Owner    string   `json:"owner"`
	AssetIDs []uint64 `json:"asset_ids"`
}

// CreateWebhookClientRequest is the request body for POST /webhooks/clients
type CreateWebhookClientRequest struct {
	WebhookURL   string   `json:"webhook_url"`
	EventFilters []string `json:"event_filters"`
}

// CreateWebhookClientResponse returns the generated client credentials
type CreateWebhookClientResponse struct {
	ClientID      string   `json:"client_id"`
	WebhookURL    string   `json:"webhook_url"`
	WebhookSecret string   `json:"webhook_secret"`
	EventFilters  []string `json:"event_filters"`
}

// FromAsset maps a stored asset to its public view
func FromAsset(a *schema.Asset) *Asset {
	return &Asset{
		ID:                a.ID,
		Owner:             a.Owner.String(),
		Description:       a.Description,
		Value:             a.Value,
		AcquisitionHeight: a.AcquisitionHeight,
		Condition:         a.Condition,
		MetadataURI:       a.MetadataURI,
		IsActive:          a.IsActive,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

// FromTransferRecord maps a stored ownership-log entry to its public view
func FromTransferRecord(r *schema.TransferRecord) *TransferRecord {
	return &TransferRecord{
		AssetID:        r.AssetID,
		Index:          r.Idx,
		EventType:      string(r.EventType),
		PreviousOwner:  r.PreviousOwner.String(),
		NewOwner:       r.NewOwner.String(),
		TransferHeight: r.TransferHeight,
		Notes:          r.Notes,
	}
}

// FromVerificationRecord maps a stored attestation to its public view
func FromVerificationRecord(r *schema.VerificationRecord) *VerificationRecord {
	return &VerificationRecord{
		AssetID:            r.AssetID,
		Index:              r.Idx,
		Verifier:           r.Verifier.String(),
		Type:               r.VerificationType,
		VerificationHeight: r.VerificationHeight,
		Details:            r.Details,
		URI:                r.URI,
	}
}
