package rest

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/feral-file/asset-registry/internal/api/middleware"
	"github.com/feral-file/asset-registry/internal/api/rest/dto"
	"github.com/feral-file/asset-registry/internal/domain"
	"github.com/feral-file/asset-registry/internal/registry"
	"github.com/feral-file/asset-registry/internal/store"
	"github.com/feral-file/asset-registry/internal/webhook"
)

// Handler defines the interface for REST API handlers
type Handler interface {
	// RegisterAsset registers a new asset owned by the caller
	// POST /api/v1/assets
	RegisterAsset(c *gin.Context)

	// GetAsset retrieves a single asset by id
	// GET /api/v1/assets/:id
	GetAsset(c *gin.Context)

	// ListOwnerAssets lists the asset ids owned by a principal
	// GET /api/v1/assets?owner=<principal>
	ListOwnerAssets(c *gin.Context)

	// AssetExists reports whether an asset exists
	// GET /api/v1/assets/:id/exists
	AssetExists(c *gin.Context)

	// UpdateAsset replaces the mutable fields of an asset
	// PUT /api/v1/assets/:id
	UpdateAsset(c *gin.Context)

	// TransferAsset moves ownership of an asset to a new principal
	// POST /api/v1/assets/:id/transfer
	TransferAsset(c *gin.Context)

	// DeactivateAsset marks an asset inactive
	// POST /api/v1/assets/:id/deactivate
	DeactivateAsset(c *gin.Context)

	// ReactivateAsset marks an asset active again
	// POST /api/v1/assets/:id/reactivate
	ReactivateAsset(c *gin.Context)

	// AddVerification appends a third-party attestation
	// POST /api/v1/assets/:id/verifications
	AddVerification(c *gin.Context)

	// ListTransfers lists ownership-log entries with pagination
	// GET /api/v1/assets/:id/transfers?limit=<limit>&offset=<offset>
	ListTransfers(c *gin.Context)

	// GetTransfer retrieves one ownership-log entry by index
	// GET /api/v1/assets/:id/transfers/:index
	GetTransfer(c *gin.Context)

	// ListVerifications lists attestations with pagination
	// GET /api/v1/assets/:id/verifications?limit=<limit>&offset=<offset>
	ListVerifications(c *gin.Context)

	// GetVerification retrieves one attestation by index
	// GET /api/v1/assets/:id/verifications/:index
	GetVerification(c *gin.Context)

	// CreateWebhookClient creates a new webhook client (requires API key)
	// POST /api/v1/webhooks/clients
	CreateWebhookClient(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	debug   bool
	service *registry.Service
	store   store.Store
}

// NewHandler creates a new REST API handler
func NewHandler(debug bool, service *registry.Service, s store.Store) Handler {
	return &handler{
		debug:   debug,
		service: service,
		store:   s,
	}
}

// RegisterAsset registers a new asset owned by the caller
func (h *handler) RegisterAsset(c *gin.Context) {
	var req dto.RegisterAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	result, err := h.service.RegisterAsset(c.Request.Context(), registry.RegisterAssetParams{
		Caller:      middleware.Caller(c),
		Description: req.Description,
		Value:       req.Value,
		MetadataURI: req.MetadataURI,
		RequestID:   req.RequestID,
	})
	if err != nil {
		respondDomainError(c, err, "Failed to register asset")
		return
	}

	c.JSON(http.StatusCreated, dto.RegisterAssetResponse{
		AssetID: result.AssetID,
		Height:  result.Height,
	})
}

// GetAsset retrieves a single asset by id
func (h *handler) GetAsset(c *gin.Context) {
	assetID, ok := parseAssetID(c)
	if !ok {
		respondBadRequest(c, "Invalid asset id")
		return
	}

	asset, err := h.service.GetAssetByID(c.Request.Context(), assetID)
	if err != nil {
		respondInternalError(c, err, "Failed to get asset")
		return
	}
	if asset == nil {
		respondNotFound(c, "Asset not found")
		return
	}

	c.JSON(http.StatusOK, dto.FromAsset(asset))
}

// ListOwnerAssets lists the asset ids owned by a principal
func (h *handler) ListOwnerAssets(c *gin.Context) {
	owner := domain.Principal(c.Query("owner"))
	if !owner.Valid() {
		respondBadRequest(c, "owner query parameter is required")
		return
	}

	assetIDs, err := h.service.GetOwnerAssets(c.Request.Context(), owner)
	if err != nil {
		respondInternalError(c, err, "Failed to list owner assets")
		return
	}
	if assetIDs == nil {
		assetIDs = []uint64{}
	}

	c.JSON(http.StatusOK, dto.OwnerAssetsResponse{
		Owner:    owner.String(),
		AssetIDs: assetIDs,
	})
}

// AssetExists reports whether an asset exists
func (h *handler) AssetExists(c *gin.Context) {
	assetID, ok := parseAssetID(c)
	if !ok {
		respondBadRequest(c, "Invalid asset id")
		return
	}

	exists, err := h.service.AssetExists(c.Request.Context(), assetID)
	if err != nil {
		respondInternalError(c, err, "Failed to check asset existence")
		return
	}

	c.JSON(http.StatusOK, gin.H{"exists": exists})
}

// UpdateAsset replaces the mutable fields of an asset
func (h *handler) UpdateAsset(c *gin.Context) {
	assetID, ok := parseAssetID(c)
	if !ok {
		respondBadRequest(c, "Invalid asset id")
		return
	}

	var req dto.UpdateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	err := h.service.UpdateAssetDetails(c.Request.Context(), registry.UpdateAssetDetailsParams{
		AssetID:     assetID,
		Caller:      middleware.Caller(c),
		Description: req.Description,
		Value:       req.Value,
		Condition:   req.Condition,
		MetadataURI: req.MetadataURI,
	})
	if err != nil {
		respondDomainError(c, err, "Failed to update asset")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// TransferAsset moves ownership of an asset to a new principal
func (h *handler) TransferAsset(c *gin.Context) {
	assetID, ok := parseAssetID(c)
	if !ok {
		respondBadRequest(c, "Invalid asset id")
		return
	}

	var req dto.TransferAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	result, err := h.service.TransferAsset(c.Request.Context(), registry.TransferAssetParams{
		AssetID:  assetID,
		Caller:   middleware.Caller(c),
		NewOwner: domain.Principal(req.NewOwner),
		Notes:    req.Notes,
	})
	if err != nil {
		respondDomainError(c, err, "Failed to transfer asset")
		return
	}

	c.JSON(http.StatusOK, dto.AppendResponse{
		Index:  result.Index,
		Height: result.Height,
	})
}

// DeactivateAsset marks an asset inactive
func (h *handler) DeactivateAsset(c *gin.Context) {
	h.setActive(c, false)
}

// ReactivateAsset marks an asset active again
func (h *handler) ReactivateAsset(c *gin.Context) {
	h.setActive(c, true)
}

func (h *handler) setActive(c *gin.Context, active bool) {
	assetID, ok := parseAssetID(c)
	if !ok {
		respondBadRequest(c, "Invalid asset id")
		return
	}

	var req dto.LifecycleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	result, err := h.service.SetAssetActive(c.Request.Context(), registry.SetAssetActiveParams{
		AssetID: assetID,
		Caller:  middleware.Caller(c),
		Active:  active,
		Reason:  req.Reason,
	})
	if err != nil {
		respondDomainError(c, err, "Failed to change asset status")
		return
	}

	c.JSON(http.StatusOK, dto.AppendResponse{
		Index:  result.Index,
		Height: result.Height,
	})
}

// AddVerification appends a third-party attestation
func (h *handler) AddVerification(c *gin.Context) {
	assetID, ok := parseAssetID(c)
	if !ok {
		respondBadRequest(c, "Invalid asset id")
		return
	}

	var req dto.AddVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	result, err := h.service.AddVerification(c.Request.Context(), registry.AddVerificationParams{
		AssetID:          assetID,
		Verifier:         middleware.Caller(c),
		VerificationType: req.Type,
		Details:          req.Details,
		URI:              req.URI,
	})
	if err != nil {
		respondDomainError(c, err, "Failed to add verification")
		return
	}

	c.JSON(http.StatusCreated, dto.AppendResponse{
		Index:  result.Index,
		Height: result.Height,
	})
}

// ListTransfers lists ownership-log entries with pagination
func (h *handler) ListTransfers(c *gin.Context) {
	assetID, ok := parseAssetID(c)
	if !ok {
		respondBadRequest(c, "Invalid asset id")
		return
	}

	params, err := ParseListRecordsQuery(c)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	records, total, err := h.service.GetTransferRecords(c.Request.Context(), assetID, params.Limit, params.Offset)
	if err != nil {
		respondInternalError(c, err, "Failed to list transfer records")
		return
	}

	response := dto.TransferRecordsResponse{
		Records: make([]dto.TransferRecord, 0, len(records)),
		Total:   total,
	}
	for i := range records {
		response.Records = append(response.Records, *dto.FromTransferRecord(&records[i]))
	}

	c.JSON(http.StatusOK, response)
}

// GetTransfer retrieves one ownership-log entry by index
func (h *handler) GetTransfer(c *gin.Context) {
	assetID, ok := parseAssetID(c)
	if !ok {
		respondBadRequest(c, "Invalid asset id")
		return
	}
	index, ok := parseIndex(c)
	if !ok {
		respondBadRequest(c, "Invalid log index")
		return
	}

	record, err := h.service.GetTransferRecord(c.Request.Context(), assetID, index)
	if err != nil {
		respondInternalError(c, err, "Failed to get transfer record")
		return
	}
	if record == nil {
		respondNotFound(c, "Transfer record not found")
		return
	}

	c.JSON(http.StatusOK, dto.FromTransferRecord(record))
}

// ListVerifications lists attestations with pagination
func (h *handler) ListVerifications(c *gin.Context) {
	assetID, ok := parseAssetID(c)
	if !ok {
		respondBadRequest(c, "Invalid asset id")
		return
	}

	params, err := ParseListRecordsQuery(c)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	records, total, err := h.service.GetVerificationRecords(c.Request.Context(), assetID, params.Limit, params.Offset)
	if err != nil {
		respondInternalError(c, err, "Failed to list verification records")
		return
	}

	response := dto.VerificationRecordsResponse{
		Records: make([]dto.VerificationRecord, 0, len(records)),
		Total:   total,
	}
	for i := range records {
		response.Records = append(response.Records, *dto.FromVerificationRecord(&records[i]))
	}

	c.JSON(http.StatusOK, response)
}

// GetVerification retrieves one attestation by index
func (h *handler) GetVerification(c *gin.Context) {
	assetID, ok := parseAssetID(c)
	if !ok {
		respondBadRequest(c, "Invalid asset id")
		return
	}
	index, ok := parseIndex(c)
	if !ok {
		respondBadRequest(c, "Invalid log index")
		return
	}

	record, err := h.service.GetVerificationRecord(c.Request.Context(), assetID, index)
	if err != nil {
		respondInternalError(c, err, "Failed to get verification record")
		return
	}
	if record == nil {
		respondNotFound(c, "Verification record not found")
		return
	}

	c.JSON(http.StatusOK, dto.FromVerificationRecord(record))
}

// CreateWebhookClient creates a new webhook client (requires API key)
func (h *handler) CreateWebhookClient(c *gin.Context) {
	var req dto.CreateWebhookClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	if err := h.validateWebhookClientRequest(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	secret, err := generateWebhookSecret()
	if err != nil {
		respondInternalError(c, err, "Failed to generate webhook secret")
		return
	}

	client, err := h.store.CreateWebhookClient(c.Request.Context(), store.CreateWebhookClientInput{
		ClientID:      uuid.NewString(),
		WebhookURL:    req.WebhookURL,
		WebhookSecret: secret,
		EventFilters:  req.EventFilters,
	})
	if err != nil {
		respondInternalError(c, err, "Failed to create webhook client")
		return
	}

	c.JSON(http.StatusCreated, dto.CreateWebhookClientResponse{
		ClientID:      client.ClientID,
		WebhookURL:    client.WebhookURL,
		WebhookSecret: client.WebhookSecret,
		EventFilters:  req.EventFilters,
	})
}

// validateWebhookClientRequest checks the webhook URL and event filters.
// HTTPS is required outside debug mode.
func (h *handler) validateWebhookClientRequest(req *dto.CreateWebhookClientRequest) error {
	if req.WebhookURL == "" {
		return fmt.Errorf("webhook_url is required")
	}
	parsed, err := url.Parse(req.WebhookURL)
	if err != nil || parsed.Host == "" {
		return fmt.Errorf("webhook_url is not a valid URL")
	}
	if !h.debug && parsed.Scheme != "https" {
		return fmt.Errorf("webhook_url must use https")
	}
	if len(req.EventFilters) == 0 {
		return fmt.Errorf("event_filters is required")
	}

	known := map[string]bool{
		webhook.EventTypeWildcard:                   true,
		string(domain.RegistryEventTypeRegistered):  true,
		string(domain.RegistryEventTypeTransferred): true,
		string(domain.RegistryEventTypeUpdated):     true,
		string(domain.RegistryEventTypeVerified):    true,
		string(domain.RegistryEventTypeDeactivated): true,
		string(domain.RegistryEventTypeReactivated): true,
	}
	for _, filter := range req.EventFilters {
		if !known[strings.TrimSpace(filter)] {
			return fmt.Errorf("unknown event filter: %s", filter)
		}
	}

	return nil
}

// generateWebhookSecret produces a 64-char hex secret for HMAC signing
func generateWebhookSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":  "ok",
		"service": "asset-registry-api",
	})
}
