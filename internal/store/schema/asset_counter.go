package schema

import "time"

// AssetCounter represents the asset_counters table - per-asset log lengths.
// A row is created at registration with both counts at zero and each count is
// incremented in the same transaction as the matching log append, so a count
// always equals the number of durably written entries for that log.
type AssetCounter struct {
	// AssetID references the asset these counters belong to
	AssetID uint64 `gorm:"column:asset_id;primaryKey;autoIncrement:false"`
	// TransferCount is the number of transfer_records entries ever appended
	TransferCount uint64 `gorm:"column:transfer_count;not null;default:0"`
	// VerificationCount is the number of verification_records entries ever appended
	VerificationCount uint64 `gorm:"column:verification_count;not null;default:0"`
	// UpdatedAt is the wall-clock timestamp of the last increment
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the AssetCounter model
func (AssetCounter) TableName() string {
	return "asset_counters"
}
