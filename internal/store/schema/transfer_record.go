package schema

import (
	"time"

	"github.com/feral-file/asset-registry/internal/domain"
)

// TransferRecord represents the transfer_records table - the append-only
// ownership log. Entries are keyed by (asset_id, idx) with idx contiguous
// from 0; an entry is never updated or deleted once written. Lifecycle
// events (deactivate/reactivate) are logged with previous_owner == new_owner
// and tagged with their event type.
type TransferRecord struct {
	// AssetID references the asset this entry belongs to
	AssetID uint64 `gorm:"column:asset_id;not null;primaryKey;autoIncrement:false"`
	// Idx is the per-asset sequential index, starting at 0
	Idx uint64 `gorm:"column:idx;not null;primaryKey;autoIncrement:false"`
	// EventType tags the transition: transfer, deactivate, reactivate
	EventType domain.TransferEventType `gorm:"column:event_type;not null;type:text"`
	// PreviousOwner is the owner before the event
	PreviousOwner domain.Principal `gorm:"column:previous_owner;not null;type:text"`
	// NewOwner is the owner after the event; equals PreviousOwner for lifecycle events
	NewOwner domain.Principal `gorm:"column:new_owner;not null;type:text"`
	// TransferHeight is the logical time of the event
	TransferHeight uint64 `gorm:"column:transfer_height;not null"`
	// Notes optionally explains the event (<= 256 bytes)
	Notes *string `gorm:"column:notes;type:text"`
	// CreatedAt is the wall-clock timestamp of the append
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the TransferRecord model
func (TransferRecord) TableName() string {
	return "transfer_records"
}

// IsLifecycleEvent reports whether the entry marks a status change rather
// than a true ownership change.
func (r *TransferRecord) IsLifecycleEvent() bool {
	return r.EventType != domain.TransferEventTypeTransfer
}
