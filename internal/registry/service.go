package registry

import (
	"context"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/feral-file/asset-registry/internal/adapter"
	"github.com/feral-file/asset-registry/internal/domain"
	"github.com/feral-file/asset-registry/internal/logger"
	"github.com/feral-file/asset-registry/internal/messaging"
	"github.com/feral-file/asset-registry/internal/store"
	"github.com/feral-file/asset-registry/internal/store/schema"
)

// Service orchestrates registry operations: error precedence on the way in
// (existence, then authorization, then validation), one store transaction for
// the mutation, and a best-effort broker event after commit. The store
// transaction re-checks existence and ownership under a row lock, so the
// pre-checks here only order the error kinds and never carry correctness.
type Service struct {
	store     store.Store
	publisher messaging.Publisher
	clock     adapter.Clock
}

// NewService creates a registry service. publisher may be nil, in which case
// no events are emitted.
func NewService(s store.Store, publisher messaging.Publisher, clock adapter.Clock) *Service {
	return &Service{
		store:     s,
		publisher: publisher,
		clock:     clock,
	}
}

// RegisterAssetParams carries the caller-facing inputs for a registration
type RegisterAssetParams struct {
	Caller      domain.Principal
	Description string
	Value       uint64
	MetadataURI *string
	RequestID   *string
}

// RegisterAsset registers a new asset owned by the caller and returns its id
func (s *Service) RegisterAsset(ctx context.Context, params RegisterAssetParams) (*store.RegisterAssetResult, error) {
	if !params.Caller.Valid() {
		return nil, domain.ErrUnauthorized
	}
	if err := domain.ValidateBoundedText("description", params.Description, domain.MaxDescriptionLen); err != nil {
		return nil, err
	}
	if params.Value == 0 {
		return nil, domain.ErrValidationFailed
	}
	if err := domain.ValidateOptionalText("metadata_uri", params.MetadataURI, domain.MaxMetadataURILen); err != nil {
		return nil, err
	}
	if params.RequestID != nil {
		if err := uuid.Validate(*params.RequestID); err != nil {
			return nil, domain.ErrValidationFailed
		}
	}

	result, err := s.store.RegisterAsset(ctx, store.RegisterAssetInput{
		Caller:      params.Caller,
		Description: params.Description,
		Value:       params.Value,
		MetadataURI: params.MetadataURI,
		RequestID:   params.RequestID,
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, &domain.RegistryEvent{
		EventType: domain.RegistryEventTypeRegistered,
		AssetID:   result.AssetID,
		Actor:     params.Caller,
		To:        &params.Caller,
		Height:    result.Height,
	})

	return result, nil
}

// TransferAssetParams carries the caller-facing inputs for a transfer
type TransferAssetParams struct {
	AssetID  uint64
	Caller   domain.Principal
	NewOwner domain.Principal
	Notes    *string
}

// TransferAsset moves ownership of an asset to a new principal
func (s *Service) TransferAsset(ctx context.Context, params TransferAssetParams) (*store.AppendResult, error) {
	if err := s.requireOwner(ctx, params.AssetID, params.Caller); err != nil {
		return nil, err
	}
	if !params.NewOwner.Valid() || params.NewOwner == params.Caller {
		return nil, domain.ErrInvalidRecipient
	}
	if err := domain.ValidateOptionalText("notes", params.Notes, domain.MaxTransferNotesLen); err != nil {
		return nil, err
	}

	result, err := s.store.TransferAsset(ctx, store.TransferAssetInput{
		AssetID:  params.AssetID,
		Caller:   params.Caller,
		NewOwner: params.NewOwner,
		Notes:    params.Notes,
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, &domain.RegistryEvent{
		EventType: domain.RegistryEventTypeTransferred,
		AssetID:   params.AssetID,
		Actor:     params.Caller,
		From:      &params.Caller,
		To:        &params.NewOwner,
		LogIndex:  &result.Index,
		Height:    result.Height,
	})

	return result, nil
}

// UpdateAssetDetailsParams carries the four mutable asset fields
type UpdateAssetDetailsParams struct {
	AssetID     uint64
	Caller      domain.Principal
	Description string
	Value       uint64
	Condition   string
	MetadataURI *string
}

// UpdateAssetDetails replaces the mutable fields of an asset
func (s *Service) UpdateAssetDetails(ctx context.Context, params UpdateAssetDetailsParams) error {
	if err := s.requireOwner(ctx, params.AssetID, params.Caller); err != nil {
		return err
	}
	if err := domain.ValidateBoundedText("description", params.Description, domain.MaxDescriptionLen); err != nil {
		return err
	}
	if params.Value == 0 {
		return domain.ErrValidationFailed
	}
	// Condition is bounded but optional; empty clears it back to the default
	if len(params.Condition) > domain.MaxConditionLen {
		return domain.ErrValidationFailed
	}
	if err := domain.ValidateOptionalText("metadata_uri", params.MetadataURI, domain.MaxMetadataURILen); err != nil {
		return err
	}

	height, err := s.store.UpdateAssetDetails(ctx, store.UpdateAssetDetailsInput{
		AssetID:     params.AssetID,
		Caller:      params.Caller,
		Description: params.Description,
		Value:       params.Value,
		Condition:   params.Condition,
		MetadataURI: params.MetadataURI,
	})
	if err != nil {
		return err
	}

	s.publish(ctx, &domain.RegistryEvent{
		EventType: domain.RegistryEventTypeUpdated,
		AssetID:   params.AssetID,
		Actor:     params.Caller,
		Height:    height,
	})

	return nil
}

// AddVerificationParams carries the caller-facing inputs for an attestation
type AddVerificationParams struct {
	AssetID          uint64
	Verifier         domain.Principal
	VerificationType string
	Details          string
	URI              *string
}

// AddVerification appends a third-party attestation to an asset. Any caller
// may attest; only existence of the asset is required.
func (s *Service) AddVerification(ctx context.Context, params AddVerificationParams) (*store.AppendResult, error) {
	exists, err := s.store.AssetExists(ctx, params.AssetID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrAssetNotFound
	}
	if !params.Verifier.Valid() {
		return nil, domain.ErrUnauthorized
	}
	if err := domain.ValidateBoundedText("type", params.VerificationType, domain.MaxVerificationTypeLen); err != nil {
		return nil, err
	}
	if err := domain.ValidateBoundedText("details", params.Details, domain.MaxVerificationDetailsLen); err != nil {
		return nil, err
	}
	if err := domain.ValidateOptionalText("uri", params.URI, domain.MaxMetadataURILen); err != nil {
		return nil, err
	}

	result, err := s.store.AddVerification(ctx, store.AddVerificationInput{
		AssetID:          params.AssetID,
		Verifier:         params.Verifier,
		VerificationType: params.VerificationType,
		Details:          params.Details,
		URI:              params.URI,
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, &domain.RegistryEvent{
		EventType: domain.RegistryEventTypeVerified,
		AssetID:   params.AssetID,
		Actor:     params.Verifier,
		LogIndex:  &result.Index,
		Height:    result.Height,
	})

	return result, nil
}

// SetAssetActiveParams carries the caller-facing inputs for a lifecycle toggle
type SetAssetActiveParams struct {
	AssetID uint64
	Caller  domain.Principal
	Active  bool
	Reason  string
}

// SetAssetActive deactivates or reactivates an asset. Toggling to the current
// state still appends a log entry.
func (s *Service) SetAssetActive(ctx context.Context, params SetAssetActiveParams) (*store.AppendResult, error) {
	if err := s.requireOwner(ctx, params.AssetID, params.Caller); err != nil {
		return nil, err
	}
	if len(params.Reason) > domain.MaxTransferNotesLen {
		return nil, domain.ErrValidationFailed
	}

	result, err := s.store.SetAssetActive(ctx, store.SetAssetActiveInput{
		AssetID: params.AssetID,
		Caller:  params.Caller,
		Active:  params.Active,
		Reason:  params.Reason,
	})
	if err != nil {
		return nil, err
	}

	eventType := domain.RegistryEventTypeDeactivated
	if params.Active {
		eventType = domain.RegistryEventTypeReactivated
	}
	s.publish(ctx, &domain.RegistryEvent{
		EventType: eventType,
		AssetID:   params.AssetID,
		Actor:     params.Caller,
		From:      &params.Caller,
		To:        &params.Caller,
		LogIndex:  &result.Index,
		Height:    result.Height,
	})

	return result, nil
}

// GetAssetByID retrieves an asset record, nil if unknown
func (s *Service) GetAssetByID(ctx context.Context, assetID uint64) (*schema.Asset, error) {
	return s.store.GetAssetByID(ctx, assetID)
}

// AssetExists reports whether an asset record exists
func (s *Service) AssetExists(ctx context.Context, assetID uint64) (bool, error) {
	return s.store.AssetExists(ctx, assetID)
}

// GetOwnerAssets returns the asset ids in an owner's portfolio
func (s *Service) GetOwnerAssets(ctx context.Context, owner domain.Principal) ([]uint64, error) {
	return s.store.GetOwnerAssets(ctx, owner)
}

// GetTransferCount returns the transfer log length, 0 for unknown assets
func (s *Service) GetTransferCount(ctx context.Context, assetID uint64) (uint64, error) {
	return s.store.GetTransferCount(ctx, assetID)
}

// GetTransferRecord retrieves one transfer log entry, nil if absent
func (s *Service) GetTransferRecord(ctx context.Context, assetID uint64, index uint64) (*schema.TransferRecord, error) {
	return s.store.GetTransferRecord(ctx, assetID, index)
}

// GetTransferRecords retrieves a page of transfer log entries plus the total count
func (s *Service) GetTransferRecords(ctx context.Context, assetID uint64, limit int, offset uint64) ([]schema.TransferRecord, uint64, error) {
	return s.store.GetTransferRecords(ctx, assetID, limit, offset)
}

// GetVerificationCount returns the verification log length, 0 for unknown assets
func (s *Service) GetVerificationCount(ctx context.Context, assetID uint64) (uint64, error) {
	return s.store.GetVerificationCount(ctx, assetID)
}

// GetVerificationRecord retrieves one attestation, nil if absent
func (s *Service) GetVerificationRecord(ctx context.Context, assetID uint64, index uint64) (*schema.VerificationRecord, error) {
	return s.store.GetVerificationRecord(ctx, assetID, index)
}

// GetVerificationRecords retrieves a page of attestations plus the total count
func (s *Service) GetVerificationRecords(ctx context.Context, assetID uint64, limit int, offset uint64) ([]schema.VerificationRecord, uint64, error) {
	return s.store.GetVerificationRecords(ctx, assetID, limit, offset)
}

// requireOwner orders the error kinds for ownership-restricted mutations:
// unknown asset beats non-owner beats invalid input.
func (s *Service) requireOwner(ctx context.Context, assetID uint64, caller domain.Principal) error {
	exists, err := s.store.AssetExists(ctx, assetID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrAssetNotFound
	}

	isOwner, err := s.store.IsCurrentOwner(ctx, assetID, caller)
	if err != nil {
		return err
	}
	if !isOwner {
		return domain.ErrUnauthorized
	}

	return nil
}

// publish emits a broker event for a committed mutation. Delivery is
// best-effort: the mutation has already committed, so a broker failure is
// logged and swallowed rather than turned into a caller-visible error.
func (s *Service) publish(ctx context.Context, event *domain.RegistryEvent) {
	if s.publisher == nil {
		return
	}

	event.EventID = ulid.Make().String()
	event.Timestamp = s.clock.Now().UTC()

	if err := s.publisher.PublishEvent(ctx, event); err != nil {
		logger.ErrorCtx(ctx, err,
			zap.String("event_type", string(event.EventType)),
			zap.Uint64("asset_id", event.AssetID))
	}
}
