package schema

import (
	"time"

	"github.com/feral-file/asset-registry/internal/domain"
)

// PortfolioEntry represents the portfolio_entries table - the secondary
// owner -> asset-ids index, bounded at domain.PortfolioCapacity entries per
// owner. Non-authoritative: the assets.owner column is the source of truth;
// this index is maintained in the same transaction as every ownership change.
type PortfolioEntry struct {
	// Owner is the principal holding the asset
	Owner domain.Principal `gorm:"column:owner;not null;type:text;primaryKey"`
	// AssetID is the held asset
	AssetID uint64 `gorm:"column:asset_id;not null;primaryKey;autoIncrement:false"`
	// CreatedAt is the wall-clock timestamp the asset entered this portfolio
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the PortfolioEntry model
func (PortfolioEntry) TableName() string {
	return "portfolio_entries"
}
