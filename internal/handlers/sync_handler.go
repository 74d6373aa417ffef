package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apperrors "wealthtrack/internal/errors"
	"wealthtrack/internal/logger"
	"wealthtrack/internal/models"
	"wealthtrack/internal/services"
)

// SyncHandler handles snapshot sync requests.
type SyncHandler struct {
	syncService services.SyncServicer
	now         func() time.Time
}

// NewSyncHandler creates a new SyncHandler.
func NewSyncHandler(syncService services.SyncServicer) *SyncHandler {
	return &SyncHandler{syncService: syncService, now: time.Now}
}

// UploadRequest represents the upload request payload.
type UploadRequest struct {
	UserID string           `json:"userId" binding:"required,sync_id"`
	Data   *models.Snapshot `json:"data" binding:"required"`
}

// RegisterResponse carries a newly issued sync identifier.
type RegisterResponse struct {
	Success bool   `json:"success"`
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

// UploadResponse confirms a stored snapshot.
type UploadResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// DownloadResponse carries a stored snapshot.
type DownloadResponse struct {
	Success   bool             `json:"success"`
	Data      *models.Snapshot `json:"data"`
	Timestamp int64            `json:"timestamp"`
}

// MessageResponse is a success flag with a human-readable message.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// StatsResponse wraps the operator statistics.
type StatsResponse struct {
	Success bool                `json:"success"`
	Stats   *services.SyncStats `json:"stats"`
}

// HealthResponse is the liveness probe payload.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
}

// Register issues a sync identifier
// @Summary     Register a sync identifier
// @Description Generate an opaque identifier keyed on the caller address and current time. It is not a credential.
// @Tags        auth
// @Produce     json
// @Success     200 {object} RegisterResponse "Identifier generated"
// @Failure     429 {object} ErrorResponse    "Too many requests"
// @Router      /auth/register [post]
func (h *SyncHandler) Register(c *gin.Context) {
	id := h.syncService.Register(c.ClientIP(), h.now())
	logger.Get().Infow("sync identifier issued", "client_ip", c.ClientIP())

	c.JSON(http.StatusOK, RegisterResponse{
		Success: true,
		UserID:  id,
		Message: "Sync ID generated, keep it somewhere safe",
	})
}

// Upload stores a workspace snapshot
// @Summary     Upload a snapshot
// @Description Replace the snapshot stored for userId. All four collections must be present as arrays.
// @Tags        data
// @Accept      json
// @Produce     json
// @Param       request body     UploadRequest  true "Identifier and snapshot"
// @Success     200     {object} UploadResponse "Snapshot stored"
// @Failure     400     {object} ErrorResponse  "Invalid input or snapshot"
// @Failure     413     {object} ErrorResponse  "Body too large"
// @Failure     500     {object} ErrorResponse  "Server error"
// @Router      /data/upload [post]
func (h *SyncHandler) Upload(c *gin.Context) {
	var req UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, classifyUploadError(&req, err))
		return
	}

	ts, err := h.syncService.Upload(req.UserID, req.Data)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, UploadResponse{
		Success:   true,
		Message:   "Data saved to server",
		Timestamp: ts,
	})
}

// classifyUploadError maps a binding failure to the validation error the
// client should see.
func classifyUploadError(req *UploadRequest, err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apperrors.ErrPayloadTooLarge
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && strings.HasPrefix(typeErr.Field, "data.") {
		field := strings.SplitN(strings.TrimPrefix(typeErr.Field, "data."), ".", 2)[0]
		return apperrors.WithMessage(apperrors.ErrInvalidSnapshot,
			(&models.SnapshotError{Field: field, Reason: "must be an array"}).Error())
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && req.Data != nil {
		if snapErr := req.Data.Validate(); snapErr != nil {
			return apperrors.WithMessage(apperrors.ErrInvalidSnapshot, snapErr.Error())
		}
	}
	return apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
}

// Download returns the stored snapshot
// @Summary     Download a snapshot
// @Description Fetch the snapshot stored for an identifier
// @Tags        data
// @Produce     json
// @Param       userId path     string           true "Sync identifier"
// @Success     200    {object} DownloadResponse "Stored snapshot"
// @Failure     400    {object} ErrorResponse    "Malformed identifier"
// @Failure     404    {object} ErrorResponse    "Nothing stored"
// @Failure     500    {object} ErrorResponse    "Server error"
// @Router      /data/download/{userId} [get]
func (h *SyncHandler) Download(c *gin.Context) {
	snap, err := h.syncService.Download(c.Param("userId"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, DownloadResponse{
		Success:   true,
		Data:      snap,
		Timestamp: snap.ServerTimestamp,
	})
}

// Delete removes the stored snapshot
// @Summary     Delete a snapshot
// @Description Remove the snapshot stored for an identifier
// @Tags        data
// @Produce     json
// @Param       userId path     string          true "Sync identifier"
// @Success     200    {object} MessageResponse "Snapshot deleted"
// @Failure     400    {object} ErrorResponse   "Malformed identifier"
// @Failure     404    {object} ErrorResponse   "Nothing stored"
// @Failure     500    {object} ErrorResponse   "Server error"
// @Router      /data/delete/{userId} [delete]
func (h *SyncHandler) Delete(c *gin.Context) {
	if err := h.syncService.Delete(c.Param("userId")); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "Data deleted"})
}

// Stats reports store statistics
// @Summary     Store statistics
// @Description Number of stored snapshots and where they live (operator endpoint)
// @Tags        operator
// @Produce     json
// @Param       X-API-Key header   string        true "Operator API key"
// @Success     200       {object} StatsResponse "Statistics"
// @Failure     401       {object} ErrorResponse "Invalid API key"
// @Failure     503       {object} ErrorResponse "Operator endpoints not configured"
// @Router      /stats [get]
func (h *SyncHandler) Stats(c *gin.Context) {
	stats, err := h.syncService.Stats()
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, StatsResponse{Success: true, Stats: stats})
}

// Health is the liveness probe
// @Summary     Health check
// @Tags        system
// @Produce     json
// @Success     200 {object} HealthResponse "Server is up"
// @Router      /health [get]
func (h *SyncHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Timestamp: h.now().UnixMilli()})
}
