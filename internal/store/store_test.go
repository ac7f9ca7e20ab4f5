package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/asset-registry/internal/domain"
	"github.com/feral-file/asset-registry/internal/store/schema"
)

// =============================================================================
// Test Data Builders
// =============================================================================

const (
	testOwnerA    = domain.Principal("wallet-a")
	testOwnerB    = domain.Principal("wallet-b")
	testOwnerC    = domain.Principal("wallet-c")
	testVerifier  = domain.Principal("insurance-inspector")
	testMetadata  = "https://example.com/asset1"
	testReasonOff = "Asset temporarily unavailable"
	testReasonOn  = "Asset restored"
)

// buildTestRegistration creates a registration input for the given owner
func buildTestRegistration(owner domain.Principal) RegisterAssetInput {
	return RegisterAssetInput{
		Caller:      owner,
		Description: "Test Asset",
		Value:       100,
	}
}

// registerTestAsset registers an asset and returns its id
func registerTestAsset(t *testing.T, store Store, owner domain.Principal) uint64 {
	t.Helper()
	result, err := store.RegisterAsset(context.Background(), buildTestRegistration(owner))
	require.NoError(t, err)
	require.NotNil(t, result)
	return result.AssetID
}

// =============================================================================
// Test: RegisterAsset
// =============================================================================

func testRegisterAsset(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("successful registration creates asset, counters, and portfolio entry", func(t *testing.T) {
		result, err := store.RegisterAsset(ctx, buildTestRegistration(testOwnerA))
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.NotZero(t, result.AssetID)
		assert.NotZero(t, result.Height)

		asset, err := store.GetAssetByID(ctx, result.AssetID)
		require.NoError(t, err)
		require.NotNil(t, asset)
		assert.Equal(t, testOwnerA, asset.Owner)
		assert.Equal(t, "Test Asset", asset.Description)
		assert.Equal(t, uint64(100), asset.Value)
		assert.Equal(t, result.Height, asset.AcquisitionHeight)
		assert.True(t, asset.IsActive)
		assert.Nil(t, asset.MetadataURI)

		// Registration appends no log entry; the counter row starts at zero
		count, err := store.GetTransferCount(ctx, result.AssetID)
		require.NoError(t, err)
		assert.Zero(t, count)

		vcount, err := store.GetVerificationCount(ctx, result.AssetID)
		require.NoError(t, err)
		assert.Zero(t, vcount)

		assetIDs, err := store.GetOwnerAssets(ctx, testOwnerA)
		require.NoError(t, err)
		assert.Equal(t, []uint64{result.AssetID}, assetIDs)
	})

	t.Run("asset ids are strictly increasing and never reused", func(t *testing.T) {
		first := registerTestAsset(t, store, testOwnerA)
		second := registerTestAsset(t, store, testOwnerB)
		third := registerTestAsset(t, store, testOwnerA)
		assert.Greater(t, second, first)
		assert.Greater(t, third, second)
	})

	t.Run("duplicate request id fails with AlreadyProcessed", func(t *testing.T) {
		requestID := "8c2f9a2e-25c5-4b8f-9f67-0d6f4f1b2c3d"
		input := buildTestRegistration(testOwnerA)
		input.RequestID = &requestID

		first, err := store.RegisterAsset(ctx, input)
		require.NoError(t, err)
		require.NotNil(t, first)

		held, err := store.GetOwnerAssets(ctx, testOwnerA)
		require.NoError(t, err)

		_, err = store.RegisterAsset(ctx, input)
		assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)

		// The replay must not have registered a second asset
		assetIDs, err := store.GetOwnerAssets(ctx, testOwnerA)
		require.NoError(t, err)
		assert.Equal(t, held, assetIDs)
	})

	t.Run("registration beyond portfolio capacity fails with validation error", func(t *testing.T) {
		owner := domain.Principal("hoarder")
		for i := 0; i < domain.PortfolioCapacity; i++ {
			_, err := store.RegisterAsset(ctx, buildTestRegistration(owner))
			require.NoError(t, err)
		}

		_, err := store.RegisterAsset(ctx, buildTestRegistration(owner))
		assert.ErrorIs(t, err, domain.ErrPortfolioFull)
		assert.ErrorIs(t, err, domain.ErrValidationFailed)

		assetIDs, err := store.GetOwnerAssets(ctx, owner)
		require.NoError(t, err)
		assert.Len(t, assetIDs, domain.PortfolioCapacity)
	})
}

// =============================================================================
// Test: TransferAsset
// =============================================================================

func testTransferAsset(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("successful transfer moves ownership and appends a log entry", func(t *testing.T) {
		assetID := registerTestAsset(t, store, testOwnerA)

		result, err := store.TransferAsset(ctx, TransferAssetInput{
			AssetID:  assetID,
			Caller:   testOwnerA,
			NewOwner: testOwnerB,
		})
		require.NoError(t, err)
		assert.Equal(t, uint64(0), result.Index)

		asset, err := store.GetAssetByID(ctx, assetID)
		require.NoError(t, err)
		assert.Equal(t, testOwnerB, asset.Owner)

		record, err := store.GetTransferRecord(ctx, assetID, 0)
		require.NoError(t, err)
		require.NotNil(t, record)
		assert.Equal(t, domain.TransferEventTypeTransfer, record.EventType)
		assert.Equal(t, testOwnerA, record.PreviousOwner)
		assert.Equal(t, testOwnerB, record.NewOwner)
		assert.Equal(t, result.Height, record.TransferHeight)
		assert.False(t, record.IsLifecycleEvent())

		// Portfolio index follows ownership
		aAssets, err := store.GetOwnerAssets(ctx, testOwnerA)
		require.NoError(t, err)
		assert.Empty(t, aAssets)
		bAssets, err := store.GetOwnerAssets(ctx, testOwnerB)
		require.NoError(t, err)
		assert.Equal(t, []uint64{assetID}, bAssets)
	})

	t.Run("transfer by non-owner fails with Unauthorized and changes nothing", func(t *testing.T) {
		assetID := registerTestAsset(t, store, testOwnerA)

		_, err := store.TransferAsset(ctx, TransferAssetInput{
			AssetID:  assetID,
			Caller:   testOwnerB,
			NewOwner: testOwnerC,
		})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)

		asset, err := store.GetAssetByID(ctx, assetID)
		require.NoError(t, err)
		assert.Equal(t, testOwnerA, asset.Owner)

		count, err := store.GetTransferCount(ctx, assetID)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("transfer of unknown asset fails with AssetNotFound", func(t *testing.T) {
		_, err := store.TransferAsset(ctx, TransferAssetInput{
			AssetID:  999999,
			Caller:   testOwnerA,
			NewOwner: testOwnerB,
		})
		assert.ErrorIs(t, err, domain.ErrAssetNotFound)
	})

	t.Run("transfer to a full portfolio fails and leaves ownership unchanged", func(t *testing.T) {
		recipient := domain.Principal("full-recipient")
		for i := 0; i < domain.PortfolioCapacity; i++ {
			_, err := store.RegisterAsset(ctx, buildTestRegistration(recipient))
			require.NoError(t, err)
		}
		assetID := registerTestAsset(t, store, testOwnerA)

		_, err := store.TransferAsset(ctx, TransferAssetInput{
			AssetID:  assetID,
			Caller:   testOwnerA,
			NewOwner: recipient,
		})
		assert.ErrorIs(t, err, domain.ErrPortfolioFull)

		asset, err := store.GetAssetByID(ctx, assetID)
		require.NoError(t, err)
		assert.Equal(t, testOwnerA, asset.Owner)
	})

	t.Run("repeated transfers assign contiguous indices", func(t *testing.T) {
		assetID := registerTestAsset(t, store, testOwnerA)
		otherID := registerTestAsset(t, store, testOwnerC)

		owners := []domain.Principal{testOwnerA, testOwnerB}
		for i := 0; i < 6; i++ {
			from := owners[i%2]
			to := owners[(i+1)%2]
			result, err := store.TransferAsset(ctx, TransferAssetInput{
				AssetID:  assetID,
				Caller:   from,
				NewOwner: to,
			})
			require.NoError(t, err)
			assert.Equal(t, uint64(i), result.Index)

			// Interleave appends to an unrelated asset
			_, err = store.AddVerification(ctx, AddVerificationInput{
				AssetID:          otherID,
				Verifier:         testVerifier,
				VerificationType: "Inspection",
				Details:          fmt.Sprintf("round %d", i),
			})
			require.NoError(t, err)
		}

		count, err := store.GetTransferCount(ctx, assetID)
		require.NoError(t, err)
		assert.Equal(t, uint64(6), count)

		// Indices 0..count-1 all present, count absent
		for i := uint64(0); i < count; i++ {
			record, err := store.GetTransferRecord(ctx, assetID, i)
			require.NoError(t, err)
			assert.NotNil(t, record, "index %d should exist", i)
		}
		record, err := store.GetTransferRecord(ctx, assetID, count)
		require.NoError(t, err)
		assert.Nil(t, record)
	})
}

// =============================================================================
// Test: UpdateAssetDetails
// =============================================================================

func testUpdateAssetDetails(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("owner update replaces mutable fields without a log entry", func(t *testing.T) {
		assetID := registerTestAsset(t, store, testOwnerA)
		uri := testMetadata

		height, err := store.UpdateAssetDetails(ctx, UpdateAssetDetailsInput{
			AssetID:     assetID,
			Caller:      testOwnerA,
			Description: "Updated Test Asset",
			Value:       500,
			Condition:   "Excellent",
			MetadataURI: &uri,
		})
		require.NoError(t, err)
		assert.NotZero(t, height)

		asset, err := store.GetAssetByID(ctx, assetID)
		require.NoError(t, err)
		assert.Equal(t, "Updated Test Asset", asset.Description)
		assert.Equal(t, uint64(500), asset.Value)
		assert.Equal(t, "Excellent", asset.Condition)
		require.NotNil(t, asset.MetadataURI)
		assert.Equal(t, uri, *asset.MetadataURI)

		// Owner, acquisition height and active flag untouched
		assert.Equal(t, testOwnerA, asset.Owner)
		assert.True(t, asset.IsActive)

		count, err := store.GetTransferCount(ctx, assetID)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("update by non-owner fails with Unauthorized and changes nothing", func(t *testing.T) {
		assetID := registerTestAsset(t, store, testOwnerA)

		_, err := store.UpdateAssetDetails(ctx, UpdateAssetDetailsInput{
			AssetID:     assetID,
			Caller:      testOwnerB,
			Description: "Hijacked",
			Value:       1,
		})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)

		asset, err := store.GetAssetByID(ctx, assetID)
		require.NoError(t, err)
		assert.Equal(t, "Test Asset", asset.Description)
		assert.Equal(t, uint64(100), asset.Value)
	})

	t.Run("update of unknown asset fails with AssetNotFound", func(t *testing.T) {
		_, err := store.UpdateAssetDetails(ctx, UpdateAssetDetailsInput{
			AssetID:     424242,
			Caller:      testOwnerA,
			Description: "ghost",
			Value:       1,
		})
		assert.ErrorIs(t, err, domain.ErrAssetNotFound)
	})
}

// =============================================================================
// Test: AddVerification
// =============================================================================

func testAddVerification(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("any caller may attest on an existing asset", func(t *testing.T) {
		assetID := registerTestAsset(t, store, testOwnerA)
		uri := "https://insurance.com/cert"

		result, err := store.AddVerification(ctx, AddVerificationInput{
			AssetID:          assetID,
			Verifier:         testVerifier,
			VerificationType: "Insurance",
			Details:          "Verified for insurance coverage",
			URI:              &uri,
		})
		require.NoError(t, err)
		assert.Equal(t, uint64(0), result.Index)

		record, err := store.GetVerificationRecord(ctx, assetID, 0)
		require.NoError(t, err)
		require.NotNil(t, record)
		assert.Equal(t, testVerifier, record.Verifier)
		assert.Equal(t, "Insurance", record.VerificationType)
		assert.Equal(t, result.Height, record.VerificationHeight)
		require.NotNil(t, record.URI)
		assert.Equal(t, uri, *record.URI)

		count, err := store.GetVerificationCount(ctx, assetID)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), count)
	})

	t.Run("attestation on unknown asset fails with AssetNotFound", func(t *testing.T) {
		_, err := store.AddVerification(ctx, AddVerificationInput{
			AssetID:          987654,
			Verifier:         testVerifier,
			VerificationType: "Insurance",
			Details:          "ghost",
		})
		assert.ErrorIs(t, err, domain.ErrAssetNotFound)
	})

	t.Run("verification indices are independent of transfer indices", func(t *testing.T) {
		assetID := registerTestAsset(t, store, testOwnerA)

		_, err := store.TransferAsset(ctx, TransferAssetInput{
			AssetID:  assetID,
			Caller:   testOwnerA,
			NewOwner: testOwnerB,
		})
		require.NoError(t, err)

		result, err := store.AddVerification(ctx, AddVerificationInput{
			AssetID:          assetID,
			Verifier:         testVerifier,
			VerificationType: "Appraisal",
			Details:          "first attestation",
		})
		require.NoError(t, err)
		assert.Equal(t, uint64(0), result.Index)
	})
}

// =============================================================================
// Test: SetAssetActive
// =============================================================================

func testSetAssetActive(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("deactivate then reactivate appends two self-transfers", func(t *testing.T) {
		assetID := registerTestAsset(t, store, testOwnerA)

		offResult, err := store.SetAssetActive(ctx, SetAssetActiveInput{
			AssetID: assetID,
			Caller:  testOwnerA,
			Active:  false,
			Reason:  testReasonOff,
		})
		require.NoError(t, err)
		assert.Equal(t, uint64(0), offResult.Index)

		asset, err := store.GetAssetByID(ctx, assetID)
		require.NoError(t, err)
		assert.False(t, asset.IsActive)

		onResult, err := store.SetAssetActive(ctx, SetAssetActiveInput{
			AssetID: assetID,
			Caller:  testOwnerA,
			Active:  true,
			Reason:  testReasonOn,
		})
		require.NoError(t, err)
		assert.Equal(t, uint64(1), onResult.Index)

		asset, err = store.GetAssetByID(ctx, assetID)
		require.NoError(t, err)
		assert.True(t, asset.IsActive)

		count, err := store.GetTransferCount(ctx, assetID)
		require.NoError(t, err)
		assert.Equal(t, uint64(2), count)

		off, err := store.GetTransferRecord(ctx, assetID, 0)
		require.NoError(t, err)
		require.NotNil(t, off)
		assert.Equal(t, domain.TransferEventTypeDeactivate, off.EventType)
		assert.Equal(t, off.PreviousOwner, off.NewOwner)
		require.NotNil(t, off.Notes)
		assert.Equal(t, testReasonOff, *off.Notes)
		assert.True(t, off.IsLifecycleEvent())

		on, err := store.GetTransferRecord(ctx, assetID, 1)
		require.NoError(t, err)
		require.NotNil(t, on)
		assert.Equal(t, domain.TransferEventTypeReactivate, on.EventType)
		assert.Equal(t, on.PreviousOwner, on.NewOwner)
	})

	t.Run("redundant toggle is a state no-op but still appends an entry", func(t *testing.T) {
		assetID := registerTestAsset(t, store, testOwnerA)

		for i := 0; i < 2; i++ {
			_, err := store.SetAssetActive(ctx, SetAssetActiveInput{
				AssetID: assetID,
				Caller:  testOwnerA,
				Active:  true,
				Reason:  "still here",
			})
			require.NoError(t, err)

			asset, err := store.GetAssetByID(ctx, assetID)
			require.NoError(t, err)
			assert.True(t, asset.IsActive)
		}

		count, err := store.GetTransferCount(ctx, assetID)
		require.NoError(t, err)
		assert.Equal(t, uint64(2), count)
	})

	t.Run("lifecycle toggle by non-owner fails with Unauthorized", func(t *testing.T) {
		assetID := registerTestAsset(t, store, testOwnerA)

		_, err := store.SetAssetActive(ctx, SetAssetActiveInput{
			AssetID: assetID,
			Caller:  testOwnerB,
			Active:  false,
			Reason:  "nope",
		})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)

		asset, err := store.GetAssetByID(ctx, assetID)
		require.NoError(t, err)
		assert.True(t, asset.IsActive)
	})

	t.Run("lifecycle toggle on unknown asset fails with AssetNotFound", func(t *testing.T) {
		_, err := store.SetAssetActive(ctx, SetAssetActiveInput{
			AssetID: 31337,
			Caller:  testOwnerA,
			Active:  false,
			Reason:  "ghost",
		})
		assert.ErrorIs(t, err, domain.ErrAssetNotFound)
	})
}

// =============================================================================
// Test: read accessors
// =============================================================================

func testReadAccessors(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("unknown assets read as absent, counts read as zero", func(t *testing.T) {
		asset, err := store.GetAssetByID(ctx, 123456)
		require.NoError(t, err)
		assert.Nil(t, asset)

		exists, err := store.AssetExists(ctx, 123456)
		require.NoError(t, err)
		assert.False(t, exists)

		isOwner, err := store.IsCurrentOwner(ctx, 123456, testOwnerA)
		require.NoError(t, err)
		assert.False(t, isOwner)

		count, err := store.GetTransferCount(ctx, 123456)
		require.NoError(t, err)
		assert.Zero(t, count)

		vcount, err := store.GetVerificationCount(ctx, 123456)
		require.NoError(t, err)
		assert.Zero(t, vcount)

		record, err := store.GetTransferRecord(ctx, 123456, 0)
		require.NoError(t, err)
		assert.Nil(t, record)

		assetIDs, err := store.GetOwnerAssets(ctx, domain.Principal("nobody"))
		require.NoError(t, err)
		assert.Empty(t, assetIDs)
	})

	t.Run("IsCurrentOwner distinguishes owner from everyone else", func(t *testing.T) {
		assetID := registerTestAsset(t, store, testOwnerA)

		isOwner, err := store.IsCurrentOwner(ctx, assetID, testOwnerA)
		require.NoError(t, err)
		assert.True(t, isOwner)

		isOwner, err = store.IsCurrentOwner(ctx, assetID, testOwnerB)
		require.NoError(t, err)
		assert.False(t, isOwner)
	})

	t.Run("record listings page in index order", func(t *testing.T) {
		assetID := registerTestAsset(t, store, testOwnerA)

		owners := []domain.Principal{testOwnerA, testOwnerB}
		for i := 0; i < 5; i++ {
			_, err := store.TransferAsset(ctx, TransferAssetInput{
				AssetID:  assetID,
				Caller:   owners[i%2],
				NewOwner: owners[(i+1)%2],
			})
			require.NoError(t, err)
		}

		records, total, err := store.GetTransferRecords(ctx, assetID, 2, 1)
		require.NoError(t, err)
		assert.Equal(t, uint64(5), total)
		require.Len(t, records, 2)
		assert.Equal(t, uint64(1), records[0].Idx)
		assert.Equal(t, uint64(2), records[1].Idx)
	})
}

// =============================================================================
// Test: end-to-end lifecycle scenario
// =============================================================================

func testLifecycleScenario(t *testing.T, store Store) {
	ctx := context.Background()

	assetID := registerTestAsset(t, store, testOwnerA)
	uri := testMetadata
	certURI := "https://insurance.com/cert"

	// Owner updates the record: no log entry
	_, err := store.UpdateAssetDetails(ctx, UpdateAssetDetailsInput{
		AssetID:     assetID,
		Caller:      testOwnerA,
		Description: "Updated Test Asset",
		Value:       500,
		Condition:   "Excellent",
		MetadataURI: &uri,
	})
	require.NoError(t, err)

	// A third party attests: verification index 0
	vResult, err := store.AddVerification(ctx, AddVerificationInput{
		AssetID:          assetID,
		Verifier:         testOwnerB,
		VerificationType: "Insurance",
		Details:          "Verified for insurance coverage",
		URI:              &certURI,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(0), vResult.Index)

	// Owner deactivates, then reactivates
	_, err = store.SetAssetActive(ctx, SetAssetActiveInput{
		AssetID: assetID,
		Caller:  testOwnerA,
		Active:  false,
		Reason:  testReasonOff,
	})
	require.NoError(t, err)

	_, err = store.SetAssetActive(ctx, SetAssetActiveInput{
		AssetID: assetID,
		Caller:  testOwnerA,
		Active:  true,
		Reason:  testReasonOn,
	})
	require.NoError(t, err)

	// Final state: active, owner unchanged, details updated
	asset, err := store.GetAssetByID(ctx, assetID)
	require.NoError(t, err)
	assert.True(t, asset.IsActive)
	assert.Equal(t, testOwnerA, asset.Owner)
	assert.Equal(t, "Updated Test Asset", asset.Description)

	// Exactly two ownership-log entries, both self-transfers
	count, err := store.GetTransferCount(ctx, assetID)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
	for i := uint64(0); i < count; i++ {
		record, err := store.GetTransferRecord(ctx, assetID, i)
		require.NoError(t, err)
		require.NotNil(t, record)
		assert.Equal(t, record.PreviousOwner, record.NewOwner)
		assert.Equal(t, testOwnerA, record.NewOwner)
	}

	// Heights across the scenario are strictly increasing
	off, err := store.GetTransferRecord(ctx, assetID, 0)
	require.NoError(t, err)
	on, err := store.GetTransferRecord(ctx, assetID, 1)
	require.NoError(t, err)
	assert.Greater(t, off.TransferHeight, vResult.Height)
	assert.Greater(t, on.TransferHeight, off.TransferHeight)
}

// =============================================================================
// Test: webhook clients and deliveries
// =============================================================================

func testWebhookClients(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("clients are matched by event filter or wildcard", func(t *testing.T) {
		transferClient, err := store.CreateWebhookClient(ctx, CreateWebhookClientInput{
			ClientID:      "11111111-1111-1111-1111-111111111111",
			WebhookURL:    "https://client-one.example.com/hook",
			WebhookSecret: "secret-one",
			EventFilters:  []string{string(domain.RegistryEventTypeTransferred)},
		})
		require.NoError(t, err)
		require.NotNil(t, transferClient)

		wildcardClient, err := store.CreateWebhookClient(ctx, CreateWebhookClientInput{
			ClientID:      "22222222-2222-2222-2222-222222222222",
			WebhookURL:    "https://client-two.example.com/hook",
			WebhookSecret: "secret-two",
			EventFilters:  []string{"*"},
		})
		require.NoError(t, err)
		require.NotNil(t, wildcardClient)

		clients, err := store.ListWebhookClientsForEvent(ctx, string(domain.RegistryEventTypeTransferred))
		require.NoError(t, err)
		assert.Len(t, clients, 2)

		clients, err = store.ListWebhookClientsForEvent(ctx, string(domain.RegistryEventTypeVerified))
		require.NoError(t, err)
		require.Len(t, clients, 1)
		assert.Equal(t, wildcardClient.ClientID, clients[0].ClientID)
	})

	t.Run("delivery rows record attempts and outcome", func(t *testing.T) {
		client, err := store.CreateWebhookClient(ctx, CreateWebhookClientInput{
			ClientID:      "33333333-3333-3333-3333-333333333333",
			WebhookURL:    "https://client-three.example.com/hook",
			WebhookSecret: "secret-three",
			EventFilters:  []string{"*"},
		})
		require.NoError(t, err)

		delivery := &schema.WebhookDelivery{
			ClientID:       client.ClientID,
			EventID:        "01JG8XAMPLE1234567890123456",
			EventType:      string(domain.RegistryEventTypeRegistered),
			Payload:        []byte(`{"event_id":"01JG8XAMPLE1234567890123456"}`),
			DeliveryStatus: schema.WebhookDeliveryStatusPending,
		}
		require.NoError(t, store.CreateWebhookDelivery(ctx, delivery))
		assert.NotZero(t, delivery.ID)

		status := 200
		delivery.DeliveryStatus = schema.WebhookDeliveryStatusSuccess
		delivery.Attempts = 1
		delivery.ResponseStatus = &status
		require.NoError(t, store.UpdateWebhookDelivery(ctx, delivery))
	})
}

// =============================================================================
// Test Runner - runs all tests against a given store implementation
// =============================================================================

func RunStoreTests(t *testing.T, initDB func(t *testing.T) Store, cleanupDB func(t *testing.T)) {
	tests := []struct {
		name string
		fn   func(*testing.T, Store)
	}{
		{"RegisterAsset", testRegisterAsset},
		{"TransferAsset", testTransferAsset},
		{"UpdateAssetDetails", testUpdateAssetDetails},
		{"AddVerification", testAddVerification},
		{"SetAssetActive", testSetAssetActive},
		{"ReadAccessors", testReadAccessors},
		{"LifecycleScenario", testLifecycleScenario},
		{"WebhookClients", testWebhookClients},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := initDB(t)
			defer cleanupDB(t)
			tt.fn(t, store)
		})
	}
}
