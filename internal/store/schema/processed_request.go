package schema

import (
	"time"

	"github.com/feral-file/asset-registry/internal/domain"
)

// ProcessedRequest represents the processed_requests table - the idempotency
// guard for client-supplied request ids. Replaying a request id fails with
// AlreadyProcessed instead of registering a second asset.
type ProcessedRequest struct {
	// RequestID is the client-supplied idempotency key (UUID)
	RequestID string `gorm:"column:request_id;primaryKey;type:varchar(36)"`
	// Caller is the principal that submitted the request
	Caller domain.Principal `gorm:"column:caller;not null;type:text"`
	// AssetID is the asset the original request produced
	AssetID uint64 `gorm:"column:asset_id;not null"`
	// CreatedAt is the wall-clock timestamp of the original request
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the ProcessedRequest model
func (ProcessedRequest) TableName() string {
	return "processed_requests"
}
