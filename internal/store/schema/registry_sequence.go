package schema

import "time"

// Sequence key constants
const (
	// SequenceAssetID is the id generator; its value is the last issued asset id
	SequenceAssetID = "asset_id"
	// SequenceLogicalClock is the registry logical clock, advanced once per
	// mutating operation; its value stamps heights on records
	SequenceLogicalClock = "logical_clock"
)

// RegistrySequence represents the registry_sequences table - named monotonic
// counters (id generator, logical clock). Values only ever increase and are
// never reset; increments happen inside the owning operation's transaction.
type RegistrySequence struct {
	Key       string    `gorm:"column:key;primaryKey;type:text"`
	Value     uint64    `gorm:"column:value;not null;default:0"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName specifies the table name for the RegistrySequence model
func (RegistrySequence) TableName() string {
	return "registry_sequences"
}
