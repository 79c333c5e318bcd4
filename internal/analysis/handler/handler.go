// Package handler exposes the analysis engine over HTTP.
package handler

import (
	"net/http"
	"strconv"

	"revenue_radar_backend/internal/analysis/service"
	"revenue_radar_backend/internal/analysis/transport"
	"revenue_radar_backend/platform/apperr"
	"revenue_radar_backend/platform/httpkit"
	"revenue_radar_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes mounts the analysis endpoints on the protected group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analysis/run", h.runFull)
	rg.GET("/analysis/quick", h.runQuick)
	rg.GET("/analysis/voice", h.runVoice)
	rg.POST("/leads/score", h.scoreLeads)
	rg.POST("/deals/prioritize", h.prioritizeDeals)
	rg.POST("/leaks/detect", h.detectLeaks)
	rg.POST("/reps/kpis", h.repKPIs)
}

func (h *Handler) bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed: "+err.Error())
		return false
	}
	return true
}

func orgID(c *gin.Context) (uuid.UUID, bool) {
	identity := httpkit.GetIdentity(c)
	if !identity.IsAuthenticated() {
		httpkit.HandleError(c, apperr.Unauthorized("authentication required"))
		return uuid.UUID{}, false
	}
	return identity.OrgID(), true
}

func (h *Handler) runFull(c *gin.Context) {
	org, ok := orgID(c)
	if !ok {
		return
	}

	includeAI, _ := strconv.ParseBool(c.DefaultQuery("ai", "false"))
	report, err := h.svc.RunFull(c.Request.Context(), org, includeAI)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, report)
}

func (h *Handler) runQuick(c *gin.Context) {
	org, ok := orgID(c)
	if !ok {
		return
	}

	report, err := h.svc.RunQuick(c.Request.Context(), org)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, report)
}

func (h *Handler) runVoice(c *gin.Context) {
	org, ok := orgID(c)
	if !ok {
		return
	}

	summary, err := h.svc.RunVoice(c.Request.Context(), org)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, summary)
}

func (h *Handler) scoreLeads(c *gin.Context) {
	var req transport.ScoreLeadsRequest
	if !h.bindAndValidate(c, &req) {
		return
	}
	httpkit.OK(c, h.svc.ScoreLeads(req.Leads, req.Activities))
}

func (h *Handler) prioritizeDeals(c *gin.Context) {
	var req transport.PrioritizeDealsRequest
	if !h.bindAndValidate(c, &req) {
		return
	}
	httpkit.OK(c, h.svc.PrioritizeDeals(req.Opportunities, req.Activities))
}

func (h *Handler) detectLeaks(c *gin.Context) {
	var req transport.SnapshotRequest
	if !h.bindAndValidate(c, &req) {
		return
	}
	httpkit.OK(c, h.svc.DetectLeaks(req.Snapshot()))
}

func (h *Handler) repKPIs(c *gin.Context) {
	var req transport.SnapshotRequest
	if !h.bindAndValidate(c, &req) {
		return
	}
	httpkit.OK(c, gin.H{"reps": h.svc.RepKPIs(req.Snapshot())})
}
