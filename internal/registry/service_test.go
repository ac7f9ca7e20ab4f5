package registry

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/asset-registry/internal/domain"
	"github.com/feral-file/asset-registry/internal/messaging"
	"github.com/feral-file/asset-registry/internal/store"
	"github.com/feral-file/asset-registry/internal/store/schema"
)

// =============================================================================
// Stubs
// =============================================================================

// stubStore is a hand-written Store double: it tracks which mutations were
// invoked and serves existence/ownership from a fixed asset table.
type stubStore struct {
	assets map[uint64]domain.Principal

	registerCalled bool
	transferCalled bool
	updateCalled   bool
	verifyCalled   bool
	toggleCalled   bool
}

func newStubStore() *stubStore {
	return &stubStore{assets: make(map[uint64]domain.Principal)}
}

func (s *stubStore) RegisterAsset(ctx context.Context, input store.RegisterAssetInput) (*store.RegisterAssetResult, error) {
	s.registerCalled = true
	return &store.RegisterAssetResult{AssetID: 1, Height: 10}, nil
}

func (s *stubStore) TransferAsset(ctx context.Context, input store.TransferAssetInput) (*store.AppendResult, error) {
	s.transferCalled = true
	return &store.AppendResult{Index: 0, Height: 11}, nil
}

func (s *stubStore) UpdateAssetDetails(ctx context.Context, input store.UpdateAssetDetailsInput) (uint64, error) {
	s.updateCalled = true
	return 12, nil
}

func (s *stubStore) AddVerification(ctx context.Context, input store.AddVerificationInput) (*store.AppendResult, error) {
	s.verifyCalled = true
	return &store.AppendResult{Index: 0, Height: 13}, nil
}

func (s *stubStore) SetAssetActive(ctx context.Context, input store.SetAssetActiveInput) (*store.AppendResult, error) {
	s.toggleCalled = true
	return &store.AppendResult{Index: 1, Height: 14}, nil
}

func (s *stubStore) GetAssetByID(ctx context.Context, assetID uint64) (*schema.Asset, error) {
	owner, ok := s.assets[assetID]
	if !ok {
		return nil, nil
	}
	return &schema.Asset{ID: assetID, Owner: owner}, nil
}

func (s *stubStore) AssetExists(ctx context.Context, assetID uint64) (bool, error) {
	_, ok := s.assets[assetID]
	return ok, nil
}

func (s *stubStore) IsCurrentOwner(ctx context.Context, assetID uint64, caller domain.Principal) (bool, error) {
	owner, ok := s.assets[assetID]
	return ok && owner == caller, nil
}

func (s *stubStore) GetOwnerAssets(ctx context.Context, owner domain.Principal) ([]uint64, error) {
	return nil, nil
}

func (s *stubStore) GetTransferCount(ctx context.Context, assetID uint64) (uint64, error) {
	return 0, nil
}

func (s *stubStore) GetTransferRecord(ctx context.Context, assetID uint64, index uint64) (*schema.TransferRecord, error) {
	return nil, nil
}

func (s *stubStore) GetTransferRecords(ctx context.Context, assetID uint64, limit int, offset uint64) ([]schema.TransferRecord, uint64, error) {
	return nil, 0, nil
}

func (s *stubStore) GetVerificationCount(ctx context.Context, assetID uint64) (uint64, error) {
	return 0, nil
}

func (s *stubStore) GetVerificationRecord(ctx context.Context, assetID uint64, index uint64) (*schema.VerificationRecord, error) {
	return nil, nil
}

func (s *stubStore) GetVerificationRecords(ctx context.Context, assetID uint64, limit int, offset uint64) ([]schema.VerificationRecord, uint64, error) {
	return nil, 0, nil
}

func (s *stubStore) CreateWebhookClient(ctx context.Context, input store.CreateWebhookClientInput) (*schema.WebhookClient, error) {
	return nil, nil
}

func (s *stubStore) ListWebhookClientsForEvent(ctx context.Context, eventType string) ([]schema.WebhookClient, error) {
	return nil, nil
}

func (s *stubStore) CreateWebhookDelivery(ctx context.Context, delivery *schema.WebhookDelivery) error {
	return nil
}

func (s *stubStore) UpdateWebhookDelivery(ctx context.Context, delivery *schema.WebhookDelivery) error {
	return nil
}

func (s *stubStore) mutationCalled() bool {
	return s.registerCalled || s.transferCalled || s.updateCalled || s.verifyCalled || s.toggleCalled
}

// stubPublisher records published events and can be told to fail.
type stubPublisher struct {
	events []*domain.RegistryEvent
	err    error
}

func (p *stubPublisher) PublishEvent(ctx context.Context, event *domain.RegistryEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *stubPublisher) Close() {}

// stubClock returns a fixed instant.
type stubClock struct {
	now time.Time
}

func (c *stubClock) Now() time.Time                  { return c.now }
func (c *stubClock) Since(t time.Time) time.Duration { return c.now.Sub(t) }
func (c *stubClock) Sleep(d time.Duration)           {}
func (c *stubClock) After(d time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- c.now
	return ch
}

func newTestService(s *stubStore, p *stubPublisher) *Service {
	var pub messaging.Publisher
	if p != nil {
		pub = p
	}
	return NewService(s, pub, &stubClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)})
}

const (
	ownerA = domain.Principal("wallet-a")
	ownerB = domain.Principal("wallet-b")
)

// =============================================================================
// Error precedence
// =============================================================================

func TestErrorPrecedence(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown asset beats bad input on transfer", func(t *testing.T) {
		s := newStubStore()
		svc := newTestService(s, &stubPublisher{})

		// Recipient is invalid too; the missing asset must win
		_, err := svc.TransferAsset(ctx, TransferAssetParams{
			AssetID:  99,
			Caller:   ownerA,
			NewOwner: domain.Principal(""),
		})
		assert.ErrorIs(t, err, domain.ErrAssetNotFound)
		assert.False(t, s.mutationCalled())
	})

	t.Run("non-owner beats bad input on update", func(t *testing.T) {
		s := newStubStore()
		s.assets[7] = ownerA
		svc := newTestService(s, &stubPublisher{})

		// Description is empty too; the ownership failure must win
		err := svc.UpdateAssetDetails(ctx, UpdateAssetDetailsParams{
			AssetID:     7,
			Caller:      ownerB,
			Description: "",
			Value:       0,
		})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		assert.False(t, s.mutationCalled())
	})

	t.Run("unknown asset beats bad input on lifecycle toggle", func(t *testing.T) {
		s := newStubStore()
		svc := newTestService(s, &stubPublisher{})

		_, err := svc.SetAssetActive(ctx, SetAssetActiveParams{
			AssetID: 99,
			Caller:  ownerA,
			Active:  false,
			Reason:  strings.Repeat("x", domain.MaxTransferNotesLen+1),
		})
		assert.ErrorIs(t, err, domain.ErrAssetNotFound)
		assert.False(t, s.mutationCalled())
	})

	t.Run("unknown asset beats bad input on verification", func(t *testing.T) {
		s := newStubStore()
		svc := newTestService(s, &stubPublisher{})

		_, err := svc.AddVerification(ctx, AddVerificationParams{
			AssetID:          99,
			Verifier:         domain.Principal(""),
			VerificationType: "",
			Details:          "",
		})
		assert.ErrorIs(t, err, domain.ErrAssetNotFound)
		assert.False(t, s.mutationCalled())
	})
}

// =============================================================================
// Validation
// =============================================================================

func TestRegisterAssetValidation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		params  RegisterAssetParams
		wantErr error
	}{
		{
			name:    "empty caller",
			params:  RegisterAssetParams{Caller: "", Description: "Asset", Value: 1},
			wantErr: domain.ErrUnauthorized,
		},
		{
			name:    "empty description",
			params:  RegisterAssetParams{Caller: ownerA, Description: "", Value: 1},
			wantErr: domain.ErrValidationFailed,
		},
		{
			name:    "oversized description",
			params:  RegisterAssetParams{Caller: ownerA, Description: strings.Repeat("x", domain.MaxDescriptionLen+1), Value: 1},
			wantErr: domain.ErrValidationFailed,
		},
		{
			name:    "zero value",
			params:  RegisterAssetParams{Caller: ownerA, Description: "Asset", Value: 0},
			wantErr: domain.ErrValidationFailed,
		},
		{
			name: "malformed request id",
			params: RegisterAssetParams{
				Caller: ownerA, Description: "Asset", Value: 1,
				RequestID: ptr("not-a-uuid"),
			},
			wantErr: domain.ErrValidationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStubStore()
			pub := &stubPublisher{}
			svc := newTestService(s, pub)

			_, err := svc.RegisterAsset(ctx, tt.params)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.False(t, s.mutationCalled())
			assert.Empty(t, pub.events)
		})
	}
}

func TestTransferAssetValidation(t *testing.T) {
	ctx := context.Background()

	t.Run("self-transfer is rejected as invalid recipient", func(t *testing.T) {
		s := newStubStore()
		s.assets[7] = ownerA
		svc := newTestService(s, &stubPublisher{})

		_, err := svc.TransferAsset(ctx, TransferAssetParams{
			AssetID:  7,
			Caller:   ownerA,
			NewOwner: ownerA,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidRecipient)
		assert.False(t, s.mutationCalled())
	})

	t.Run("oversized notes are rejected", func(t *testing.T) {
		s := newStubStore()
		s.assets[7] = ownerA
		svc := newTestService(s, &stubPublisher{})

		_, err := svc.TransferAsset(ctx, TransferAssetParams{
			AssetID:  7,
			Caller:   ownerA,
			NewOwner: ownerB,
			Notes:    ptr(strings.Repeat("x", domain.MaxTransferNotesLen+1)),
		})
		assert.ErrorIs(t, err, domain.ErrValidationFailed)
		assert.False(t, s.mutationCalled())
	})
}

func TestUpdateAssetDetailsValidation(t *testing.T) {
	ctx := context.Background()

	base := func() UpdateAssetDetailsParams {
		return UpdateAssetDetailsParams{
			AssetID:     7,
			Caller:      ownerA,
			Description: "Updated Asset",
			Value:       500,
			Condition:   "Excellent",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*UpdateAssetDetailsParams)
		wantErr bool
	}{
		{
			name:    "empty description",
			mutate:  func(p *UpdateAssetDetailsParams) { p.Description = "" },
			wantErr: true,
		},
		{
			name:    "oversized description",
			mutate:  func(p *UpdateAssetDetailsParams) { p.Description = strings.Repeat("x", domain.MaxDescriptionLen+1) },
			wantErr: true,
		},
		{
			name:    "zero value",
			mutate:  func(p *UpdateAssetDetailsParams) { p.Value = 0 },
			wantErr: true,
		},
		{
			name:    "oversized condition",
			mutate:  func(p *UpdateAssetDetailsParams) { p.Condition = strings.Repeat("x", domain.MaxConditionLen+1) },
			wantErr: true,
		},
		{
			name:    "oversized metadata uri",
			mutate:  func(p *UpdateAssetDetailsParams) { p.MetadataURI = ptr(strings.Repeat("x", domain.MaxMetadataURILen+1)) },
			wantErr: true,
		},
		{
			name:    "empty condition clears it",
			mutate:  func(p *UpdateAssetDetailsParams) { p.Condition = "" },
			wantErr: false,
		},
		{
			name:    "condition at length bound",
			mutate:  func(p *UpdateAssetDetailsParams) { p.Condition = strings.Repeat("x", domain.MaxConditionLen) },
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStubStore()
			s.assets[7] = ownerA
			svc := newTestService(s, &stubPublisher{})

			params := base()
			tt.mutate(&params)

			err := svc.UpdateAssetDetails(ctx, params)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrValidationFailed)
				assert.False(t, s.mutationCalled())
			} else {
				assert.NoError(t, err)
				assert.True(t, s.updateCalled)
			}
		})
	}
}

// =============================================================================
// Event publishing
// =============================================================================

func TestEventPublishing(t *testing.T) {
	ctx := context.Background()

	t.Run("registration publishes asset.registered", func(t *testing.T) {
		s := newStubStore()
		pub := &stubPublisher{}
		svc := newTestService(s, pub)

		result, err := svc.RegisterAsset(ctx, RegisterAssetParams{
			Caller: ownerA, Description: "Asset", Value: 100,
		})
		require.NoError(t, err)

		require.Len(t, pub.events, 1)
		event := pub.events[0]
		assert.Equal(t, domain.RegistryEventTypeRegistered, event.EventType)
		assert.Equal(t, result.AssetID, event.AssetID)
		assert.Equal(t, ownerA, event.Actor)
		require.NotNil(t, event.To)
		assert.Equal(t, ownerA, *event.To)
		assert.Equal(t, result.Height, event.Height)
		assert.NotEmpty(t, event.EventID)
		assert.False(t, event.Timestamp.IsZero())
	})

	t.Run("transfer publishes asset.transferred with both parties", func(t *testing.T) {
		s := newStubStore()
		s.assets[7] = ownerA
		pub := &stubPublisher{}
		svc := newTestService(s, pub)

		result, err := svc.TransferAsset(ctx, TransferAssetParams{
			AssetID:  7,
			Caller:   ownerA,
			NewOwner: ownerB,
		})
		require.NoError(t, err)

		require.Len(t, pub.events, 1)
		event := pub.events[0]
		assert.Equal(t, domain.RegistryEventTypeTransferred, event.EventType)
		require.NotNil(t, event.From)
		require.NotNil(t, event.To)
		assert.Equal(t, ownerA, *event.From)
		assert.Equal(t, ownerB, *event.To)
		require.NotNil(t, event.LogIndex)
		assert.Equal(t, result.Index, *event.LogIndex)
	})

	t.Run("lifecycle toggle publishes the matching event type", func(t *testing.T) {
		s := newStubStore()
		s.assets[7] = ownerA
		pub := &stubPublisher{}
		svc := newTestService(s, pub)

		_, err := svc.SetAssetActive(ctx, SetAssetActiveParams{
			AssetID: 7, Caller: ownerA, Active: false, Reason: "storage",
		})
		require.NoError(t, err)
		_, err = svc.SetAssetActive(ctx, SetAssetActiveParams{
			AssetID: 7, Caller: ownerA, Active: true, Reason: "restored",
		})
		require.NoError(t, err)

		require.Len(t, pub.events, 2)
		assert.Equal(t, domain.RegistryEventTypeDeactivated, pub.events[0].EventType)
		assert.Equal(t, domain.RegistryEventTypeReactivated, pub.events[1].EventType)
	})

	t.Run("publisher failure does not fail the operation", func(t *testing.T) {
		s := newStubStore()
		pub := &stubPublisher{err: errors.New("broker unavailable")}
		svc := newTestService(s, pub)

		result, err := svc.RegisterAsset(ctx, RegisterAssetParams{
			Caller: ownerA, Description: "Asset", Value: 100,
		})
		require.NoError(t, err)
		assert.NotNil(t, result)
		assert.True(t, s.registerCalled)
	})

	t.Run("nil publisher is safe", func(t *testing.T) {
		s := newStubStore()
		svc := newTestService(s, nil)

		_, err := svc.RegisterAsset(ctx, RegisterAssetParams{
			Caller: ownerA, Description: "Asset", Value: 100,
		})
		require.NoError(t, err)
	})
}

func ptr(s string) *string {
	return &s
}
