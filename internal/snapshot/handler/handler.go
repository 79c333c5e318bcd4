// Package handler exposes snapshot ingestion over HTTP: the provider webhook
// authenticated by API key, and key management for authenticated users.
package handler

import (
	"net/http"
	"time"

	"revenue_radar_backend/internal/snapshot/service"
	"revenue_radar_backend/internal/snapshot/transport"
	"revenue_radar_backend/platform/apperr"
	"revenue_radar_backend/platform/httpkit"
	"revenue_radar_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const contextIngestOrgKey = "ingestOrgID"

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterWebhookRoutes mounts the API-key-authenticated ingestion endpoint.
func (h *Handler) RegisterWebhookRoutes(rg *gin.RouterGroup) {
	rg.POST("/webhook", h.apiKeyAuth(), h.ingest)
}

// RegisterProtectedRoutes mounts the JWT-protected management endpoints.
func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("/keys", h.createKey)
	rg.GET("/counts", h.counts)
}

func (h *Handler) bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid payload: "+err.Error())
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed: "+err.Error())
		return false
	}
	return true
}

// apiKeyAuth resolves the X-API-Key header to an organization.
func (h *Handler) apiKeyAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID, err := h.svc.ResolveKey(c.Request.Context(), c.GetHeader("X-API-Key"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid api key"})
			return
		}
		c.Set(contextIngestOrgKey, orgID)
		c.Next()
	}
}

func (h *Handler) ingest(c *gin.Context) {
	orgID, ok := c.MustGet(contextIngestOrgKey).(uuid.UUID)
	if !ok {
		httpkit.Error(c, http.StatusUnauthorized, "invalid api key")
		return
	}

	var req transport.WebhookRequest
	if !h.bindAndValidate(c, &req) {
		return
	}

	result, err := h.svc.Ingest(c.Request.Context(), orgID, req.Mode, req.Raw())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusAccepted, result)
}

func (h *Handler) createKey(c *gin.Context) {
	identity := httpkit.GetIdentity(c)
	if !identity.IsAuthenticated() {
		httpkit.HandleError(c, apperr.Unauthorized("authentication required"))
		return
	}

	var req transport.CreateKeyRequest
	if !h.bindAndValidate(c, &req) {
		return
	}

	plaintext, key, err := h.svc.CreateKey(c.Request.Context(), identity.OrgID(), req.Name)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusCreated, transport.CreateKeyResponse{
		ID:        key.ID.String(),
		Name:      key.Name,
		Key:       plaintext,
		CreatedAt: key.CreatedAt.Format(time.RFC3339),
	})
}

func (h *Handler) counts(c *gin.Context) {
	identity := httpkit.GetIdentity(c)
	if !identity.IsAuthenticated() {
		httpkit.HandleError(c, apperr.Unauthorized("authentication required"))
		return
	}

	counts, err := h.svc.Counts(c.Request.Context(), identity.OrgID())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"counts": counts})
}
