package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/feral-file/asset-registry/internal/domain"
	"github.com/feral-file/asset-registry/internal/store/schema"
)

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// ConfigureConnectionPool configures the connection pool settings for a GORM
// database connection. Zero values fall back to defaults.
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// NormalizeConnectionPoolSettings applies defaults and clamps pool settings
// into safe values.
//
// Defaults (when zero):
//   - MaxOpenConns: 20
//   - MaxIdleConns: 5
//   - ConnMaxLifetime: 5 minutes
//   - ConnMaxIdleTime: 10 minutes
//
// database/sql treats MaxOpenConns=0 as "unlimited" and MaxIdleConns=0 as
// "no idle connections", neither of which is a sane default here.
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	// Ensure MaxIdleConns doesn't exceed MaxOpenConns
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

// nextSequence atomically advances a named monotonic counter and returns its
// new value. The upsert takes a row lock, so concurrent transactions observe
// strictly increasing values with no duplicates.
func nextSequence(tx *gorm.DB, key string) (uint64, error) {
	var seq schema.RegistrySequence
	err := tx.Raw(`
		INSERT INTO registry_sequences ("key", value, created_at, updated_at)
		VALUES (?, 1, now(), now())
		ON CONFLICT ("key") DO UPDATE
		SET value = registry_sequences.value + 1, updated_at = now()
		RETURNING "key", value, created_at, updated_at
	`, key).Scan(&seq).Error
	if err != nil {
		return 0, fmt.Errorf("failed to advance sequence %q: %w", key, err)
	}

	return seq.Value, nil
}

// lockAsset loads an asset row with a row-level lock, serializing concurrent
// mutations of the same asset.
func lockAsset(tx *gorm.DB, assetID uint64) (*schema.Asset, error) {
	var asset schema.Asset
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", assetID).
		First(&asset).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAssetNotFound
		}
		return nil, fmt.Errorf("failed to lock asset: %w", err)
	}

	return &asset, nil
}

// appendTransfer appends one transfer-log entry using the
// counter-then-index discipline: the counter is bumped first and the prior
// value becomes the new entry's index. Both writes commit or roll back as a
// unit with the caller's transaction, so the counter can never drift from
// the number of durable entries.
func appendTransfer(tx *gorm.DB, assetID uint64, eventType domain.TransferEventType, previousOwner, newOwner domain.Principal, height uint64, notes *string) (uint64, error) {
	var counter schema.AssetCounter
	err := tx.Raw(`
		UPDATE asset_counters
		SET transfer_count = transfer_count + 1, updated_at = now()
		WHERE asset_id = ?
		RETURNING asset_id, transfer_count, verification_count, updated_at
	`, assetID).Scan(&counter).Error
	if err != nil {
		return 0, fmt.Errorf("failed to increment transfer counter: %w", err)
	}
	if counter.AssetID == 0 {
		return 0, domain.ErrAssetNotFound
	}

	index := counter.TransferCount - 1
	record := schema.TransferRecord{
		AssetID:        assetID,
		Idx:            index,
		EventType:      eventType,
		PreviousOwner:  previousOwner,
		NewOwner:       newOwner,
		TransferHeight: height,
		Notes:          notes,
	}
	if err := tx.Create(&record).Error; err != nil {
		return 0, fmt.Errorf("failed to append transfer record: %w", err)
	}

	return index, nil
}

// appendVerification mirrors appendTransfer for the verification log, which
// keeps an independent counter per asset.
func appendVerification(tx *gorm.DB, assetID uint64, verifier domain.Principal, verificationType, details string, height uint64, uri *string) (uint64, error) {
	var counter schema.AssetCounter
	err := tx.Raw(`
		UPDATE asset_counters
		SET verification_count = verification_count + 1, updated_at = now()
		WHERE asset_id = ?
		RETURNING asset_id, transfer_count, verification_count, updated_at
	`, assetID).Scan(&counter).Error
	if err != nil {
		return 0, fmt.Errorf("failed to increment verification counter: %w", err)
	}
	if counter.AssetID == 0 {
		return 0, domain.ErrAssetNotFound
	}

	index := counter.VerificationCount - 1
	record := schema.VerificationRecord{
		AssetID:            assetID,
		Idx:                index,
		Verifier:           verifier,
		VerificationType:   verificationType,
		VerificationHeight: height,
		Details:            details,
		URI:                uri,
	}
	if err := tx.Create(&record).Error; err != nil {
		return 0, fmt.Errorf("failed to append verification record: %w", err)
	}

	return index, nil
}

// checkPortfolioCapacity fails with ErrPortfolioFull when the owner already
// holds the maximum number of assets. A transaction-scoped advisory lock on
// the owner serializes concurrent checks; without it two acquisitions could
// both count 99 and land the owner past the cap.
func checkPortfolioCapacity(tx *gorm.DB, owner domain.Principal) error {
	if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtextextended(?, 0))", owner.String()).Error; err != nil {
		return fmt.Errorf("failed to lock owner portfolio: %w", err)
	}

	var held int64
	err := tx.Model(&schema.PortfolioEntry{}).
		Where("owner = ?", owner).
		Count(&held).Error
	if err != nil {
		return fmt.Errorf("failed to count portfolio entries: %w", err)
	}
	if held >= domain.PortfolioCapacity {
		return domain.ErrPortfolioFull
	}

	return nil
}

// RegisterAsset creates a new asset owned by the caller in a single transaction
func (s *pgStore) RegisterAsset(ctx context.Context, input RegisterAssetInput) (*RegisterAssetResult, error) {
	var result RegisterAssetResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Idempotency guard: a replayed request id must not register twice
		if input.RequestID != nil {
			var prior schema.ProcessedRequest
			err := tx.Where("request_id = ?", *input.RequestID).First(&prior).Error
			if err == nil {
				return domain.ErrAlreadyProcessed
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("failed to check processed requests: %w", err)
			}
		}

		// 2. Portfolio capacity before any write
		if err := checkPortfolioCapacity(tx, input.Caller); err != nil {
			return err
		}

		// 3. Advance the logical clock, then issue the next asset id
		height, err := nextSequence(tx, schema.SequenceLogicalClock)
		if err != nil {
			return err
		}
		assetID, err := nextSequence(tx, schema.SequenceAssetID)
		if err != nil {
			return err
		}

		// 4. Create the asset record with its counters row and portfolio entry
		asset := schema.Asset{
			ID:                assetID,
			Owner:             input.Caller,
			Description:       input.Description,
			Value:             input.Value,
			AcquisitionHeight: height,
			MetadataURI:       input.MetadataURI,
			IsActive:          true,
		}
		if err := tx.Create(&asset).Error; err != nil {
			return fmt.Errorf("failed to create asset: %w", err)
		}

		if err := tx.Create(&schema.AssetCounter{AssetID: assetID}).Error; err != nil {
			return fmt.Errorf("failed to create asset counters: %w", err)
		}

		if err := tx.Create(&schema.PortfolioEntry{Owner: input.Caller, AssetID: assetID}).Error; err != nil {
			return fmt.Errorf("failed to create portfolio entry: %w", err)
		}

		// 5. Record the request id so replays fail with AlreadyProcessed
		if input.RequestID != nil {
			processed := schema.ProcessedRequest{
				RequestID: *input.RequestID,
				Caller:    input.Caller,
				AssetID:   assetID,
			}
			if err := tx.Create(&processed).Error; err != nil {
				return fmt.Errorf("failed to record processed request: %w", err)
			}
		}

		result = RegisterAssetResult{AssetID: assetID, Height: height}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// TransferAsset moves ownership and appends a transfer-log entry in a single transaction
func (s *pgStore) TransferAsset(ctx context.Context, input TransferAssetInput) (*AppendResult, error) {
	var result AppendResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Existence before authorization
		asset, err := lockAsset(tx, input.AssetID)
		if err != nil {
			return err
		}

		// 2. Only the current owner may transfer
		if asset.Owner != input.Caller {
			return domain.ErrUnauthorized
		}

		// 3. Recipient portfolio capacity
		if err := checkPortfolioCapacity(tx, input.NewOwner); err != nil {
			return err
		}

		height, err := nextSequence(tx, schema.SequenceLogicalClock)
		if err != nil {
			return err
		}

		// 4. Update the record and move the portfolio entry
		asset.Owner = input.NewOwner
		asset.UpdatedAt = time.Now()
		if err := tx.Save(asset).Error; err != nil {
			return fmt.Errorf("failed to update asset owner: %w", err)
		}

		if err := tx.Where("owner = ? AND asset_id = ?", input.Caller, input.AssetID).
			Delete(&schema.PortfolioEntry{}).Error; err != nil {
			return fmt.Errorf("failed to remove portfolio entry: %w", err)
		}
		if err := tx.Create(&schema.PortfolioEntry{Owner: input.NewOwner, AssetID: input.AssetID}).Error; err != nil {
			return fmt.Errorf("failed to create portfolio entry: %w", err)
		}

		// 5. Append the ownership-log entry
		index, err := appendTransfer(tx, input.AssetID, domain.TransferEventTypeTransfer, input.Caller, input.NewOwner, height, input.Notes)
		if err != nil {
			return err
		}

		result = AppendResult{Index: index, Height: height}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// UpdateAssetDetails replaces the mutable fields; no log entry is produced
// because metadata edits are not ownership events
func (s *pgStore) UpdateAssetDetails(ctx context.Context, input UpdateAssetDetailsInput) (uint64, error) {
	var height uint64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		asset, err := lockAsset(tx, input.AssetID)
		if err != nil {
			return err
		}

		if asset.Owner != input.Caller {
			return domain.ErrUnauthorized
		}

		height, err = nextSequence(tx, schema.SequenceLogicalClock)
		if err != nil {
			return err
		}

		asset.Description = input.Description
		asset.Value = input.Value
		asset.Condition = input.Condition
		asset.MetadataURI = input.MetadataURI
		asset.UpdatedAt = time.Now()
		if err := tx.Save(asset).Error; err != nil {
			return fmt.Errorf("failed to update asset details: %w", err)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return height, nil
}

// AddVerification appends a third-party attestation. Any caller may attest;
// only the asset's existence is checked.
func (s *pgStore) AddVerification(ctx context.Context, input AddVerificationInput) (*AppendResult, error) {
	var result AppendResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var asset schema.Asset
		if err := tx.Where("id = ?", input.AssetID).First(&asset).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrAssetNotFound
			}
			return fmt.Errorf("failed to get asset: %w", err)
		}

		height, err := nextSequence(tx, schema.SequenceLogicalClock)
		if err != nil {
			return err
		}

		index, err := appendVerification(tx, input.AssetID, input.Verifier, input.VerificationType, input.Details, height, input.URI)
		if err != nil {
			return err
		}

		result = AppendResult{Index: index, Height: height}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// SetAssetActive toggles the lifecycle flag and logs the change as a
// self-transfer. Toggling to the current state is a state-level no-op but
// still appends a log entry, matching the registry's historical behavior.
func (s *pgStore) SetAssetActive(ctx context.Context, input SetAssetActiveInput) (*AppendResult, error) {
	var result AppendResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		asset, err := lockAsset(tx, input.AssetID)
		if err != nil {
			return err
		}

		if asset.Owner != input.Caller {
			return domain.ErrUnauthorized
		}

		height, err := nextSequence(tx, schema.SequenceLogicalClock)
		if err != nil {
			return err
		}

		asset.IsActive = input.Active
		asset.UpdatedAt = time.Now()
		if err := tx.Save(asset).Error; err != nil {
			return fmt.Errorf("failed to update asset status: %w", err)
		}

		eventType := domain.TransferEventTypeDeactivate
		if input.Active {
			eventType = domain.TransferEventTypeReactivate
		}
		notes := input.Reason
		index, err := appendTransfer(tx, input.AssetID, eventType, input.Caller, input.Caller, height, &notes)
		if err != nil {
			return err
		}

		result = AppendResult{Index: index, Height: height}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// GetAssetByID retrieves an asset record by id
func (s *pgStore) GetAssetByID(ctx context.Context, assetID uint64) (*schema.Asset, error) {
	var asset schema.Asset
	err := s.db.WithContext(ctx).Where("id = ?", assetID).First(&asset).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}

	return &asset, nil
}

// AssetExists reports whether an asset record exists
func (s *pgStore) AssetExists(ctx context.Context, assetID uint64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&schema.Asset{}).
		Where("id = ?", assetID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check asset existence: %w", err)
	}

	return count > 0, nil
}

// IsCurrentOwner reports whether caller owns the asset. Unknown assets yield
// false, never an error.
func (s *pgStore) IsCurrentOwner(ctx context.Context, assetID uint64, caller domain.Principal) (bool, error) {
	asset, err := s.GetAssetByID(ctx, assetID)
	if err != nil {
		return false, err
	}
	if asset == nil {
		return false, nil
	}

	return asset.Owner == caller, nil
}

// GetOwnerAssets returns the asset ids in an owner's portfolio, ascending
func (s *pgStore) GetOwnerAssets(ctx context.Context, owner domain.Principal) ([]uint64, error) {
	var assetIDs []uint64
	err := s.db.WithContext(ctx).
		Model(&schema.PortfolioEntry{}).
		Where("owner = ?", owner).
		Order("asset_id ASC").
		Pluck("asset_id", &assetIDs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get owner assets: %w", err)
	}

	return assetIDs, nil
}

// GetTransferCount returns the transfer log length, 0 for unknown assets
func (s *pgStore) GetTransferCount(ctx context.Context, assetID uint64) (uint64, error) {
	var counter schema.AssetCounter
	err := s.db.WithContext(ctx).Where("asset_id = ?", assetID).First(&counter).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get transfer count: %w", err)
	}

	return counter.TransferCount, nil
}

// GetTransferRecord retrieves one transfer log entry, nil if absent
func (s *pgStore) GetTransferRecord(ctx context.Context, assetID uint64, index uint64) (*schema.TransferRecord, error) {
	var record schema.TransferRecord
	err := s.db.WithContext(ctx).
		Where("asset_id = ? AND idx = ?", assetID, index).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get transfer record: %w", err)
	}

	return &record, nil
}

// GetTransferRecords retrieves a page of transfer log entries ordered by index
func (s *pgStore) GetTransferRecords(ctx context.Context, assetID uint64, limit int, offset uint64) ([]schema.TransferRecord, uint64, error) {
	total, err := s.GetTransferCount(ctx, assetID)
	if err != nil {
		return nil, 0, err
	}

	var records []schema.TransferRecord
	err = s.db.WithContext(ctx).
		Where("asset_id = ?", assetID).
		Order("idx ASC").
		Limit(limit).
		Offset(int(offset)). //nolint:gosec,G115
		Find(&records).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get transfer records: %w", err)
	}

	return records, total, nil
}

// GetVerificationCount returns the verification log length, 0 for unknown assets
func (s *pgStore) GetVerificationCount(ctx context.Context, assetID uint64) (uint64, error) {
	var counter schema.AssetCounter
	err := s.db.WithContext(ctx).Where("asset_id = ?", assetID).First(&counter).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get verification count: %w", err)
	}

	return counter.VerificationCount, nil
}

// GetVerificationRecord retrieves one attestation, nil if absent
func (s *pgStore) GetVerificationRecord(ctx context.Context, assetID uint64, index uint64) (*schema.VerificationRecord, error) {
	var record schema.VerificationRecord
	err := s.db.WithContext(ctx).
		Where("asset_id = ? AND idx = ?", assetID, index).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get verification record: %w", err)
	}

	return &record, nil
}

// GetVerificationRecords retrieves a page of attestations ordered by index
func (s *pgStore) GetVerificationRecords(ctx context.Context, assetID uint64, limit int, offset uint64) ([]schema.VerificationRecord, uint64, error) {
	total, err := s.GetVerificationCount(ctx, assetID)
	if err != nil {
		return nil, 0, err
	}

	var records []schema.VerificationRecord
	err = s.db.WithContext(ctx).
		Where("asset_id = ?", assetID).
		Order("idx ASC").
		Limit(limit).
		Offset(int(offset)). //nolint:gosec,G115
		Find(&records).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get verification records: %w", err)
	}

	return records, total, nil
}

// CreateWebhookClient registers a webhook client
func (s *pgStore) CreateWebhookClient(ctx context.Context, input CreateWebhookClientInput) (*schema.WebhookClient, error) {
	filters, err := json.Marshal(input.EventFilters)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event filters: %w", err)
	}

	client := schema.WebhookClient{
		ClientID:      input.ClientID,
		WebhookURL:    input.WebhookURL,
		WebhookSecret: input.WebhookSecret,
		EventFilters:  datatypes.JSON(filters),
		IsActive:      true,
	}
	if err := s.db.WithContext(ctx).Create(&client).Error; err != nil {
		return nil, fmt.Errorf("failed to create webhook client: %w", err)
	}

	return &client, nil
}

// ListWebhookClientsForEvent returns active clients subscribed to the given
// event type or the "*" wildcard
func (s *pgStore) ListWebhookClientsForEvent(ctx context.Context, eventType string) ([]schema.WebhookClient, error) {
	typeFilter, err := json.Marshal([]string{eventType})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event type filter: %w", err)
	}
	wildcardFilter, err := json.Marshal([]string{"*"})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal wildcard filter: %w", err)
	}

	var clients []schema.WebhookClient
	err = s.db.WithContext(ctx).
		Where("is_active = ? AND (event_filters @> ?::jsonb OR event_filters @> ?::jsonb)",
			true, string(typeFilter), string(wildcardFilter)).
		Find(&clients).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list webhook clients: %w", err)
	}

	return clients, nil
}

// CreateWebhookDelivery records a new delivery attempt row
func (s *pgStore) CreateWebhookDelivery(ctx context.Context, delivery *schema.WebhookDelivery) error {
	if err := s.db.WithContext(ctx).Create(delivery).Error; err != nil {
		return fmt.Errorf("failed to create webhook delivery: %w", err)
	}

	return nil
}

// UpdateWebhookDelivery updates the outcome of a delivery attempt
func (s *pgStore) UpdateWebhookDelivery(ctx context.Context, delivery *schema.WebhookDelivery) error {
	if err := s.db.WithContext(ctx).Save(delivery).Error; err != nil {
		return fmt.Errorf("failed to update webhook delivery: %w", err)
	}

	return nil
}
