package schema

import (
	"time"

	"github.com/feral-file/asset-registry/internal/domain"
)

// Asset represents the assets table - the primary record for every tracked
// asset. The id is assigned by the registry id generator, never by the
// database, so ids stay strictly increasing across the registry's life and
// are never reused even after deactivation.
type Asset struct {
	// ID is the registry-assigned asset identifier
	ID uint64 `gorm:"column:id;primaryKey"`
	// Owner is the principal currently owning the asset
	Owner domain.Principal `gorm:"column:owner;not null;type:text;index:idx_assets_owner"`
	// Description is a bounded description of the asset (<= 256 bytes)
	Description string `gorm:"column:description;not null;type:text"`
	// Value is the declared asset value; always > 0
	Value uint64 `gorm:"column:value;not null"`
	// AcquisitionHeight is the logical time of registration, immutable thereafter
	AcquisitionHeight uint64 `gorm:"column:acquisition_height;not null"`
	// Condition is a bounded condition label (<= 64 bytes)
	Condition string `gorm:"column:condition;not null;type:text;default:''"`
	// MetadataURI optionally references external metadata (<= 256 bytes, not fetched or validated)
	MetadataURI *string `gorm:"column:metadata_uri;type:text"`
	// IsActive is the soft lifecycle flag; assets are never deleted
	IsActive bool `gorm:"column:is_active;not null;default:true"`
	// CreatedAt is the wall-clock timestamp of registration
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the wall-clock timestamp of the last mutation
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`

	// Associations
	TransferRecords     []TransferRecord     `gorm:"foreignKey:AssetID;constraint:OnDelete:CASCADE"`
	VerificationRecords []VerificationRecord `gorm:"foreignKey:AssetID;constraint:OnDelete:CASCADE"`
	Counters            *AssetCounter        `gorm:"foreignKey:AssetID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the Asset model
func (Asset) TableName() string {
	return "assets"
}
