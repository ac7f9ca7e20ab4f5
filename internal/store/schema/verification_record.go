package schema

import (
	"time"

	"github.com/feral-file/asset-registry/internal/domain"
)

// VerificationRecord represents the verification_records table - the
// append-only attestation log. Same contiguous-index and immutability
// discipline as transfer_records, with an independent per-asset counter.
// The verifier need not be the asset owner.
type VerificationRecord struct {
	// AssetID references the asset this attestation is about
	AssetID uint64 `gorm:"column:asset_id;not null;primaryKey;autoIncrement:false"`
	// Idx is the per-asset sequential index, starting at 0
	Idx uint64 `gorm:"column:idx;not null;primaryKey;autoIncrement:false"`
	// Verifier is the principal that submitted the attestation
	Verifier domain.Principal `gorm:"column:verifier;not null;type:text"`
	// VerificationType is a bounded category label (<= 64 bytes), e.g. "Insurance"
	VerificationType string `gorm:"column:verification_type;not null;type:text"`
	// VerificationHeight is the logical time of the attestation
	VerificationHeight uint64 `gorm:"column:verification_height;not null"`
	// Details is bounded free text (<= 256 bytes), never empty
	Details string `gorm:"column:details;not null;type:text"`
	// URI optionally references supporting evidence
	URI *string `gorm:"column:uri;type:text"`
	// CreatedAt is the wall-clock timestamp of the append
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the VerificationRecord model
func (VerificationRecord) TableName() string {
	return "verification_records"
}
