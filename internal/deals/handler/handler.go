// Package handler exposes the deals API over HTTP.
package handler

import (
	"net/http"
	"time"

	"dealflow_backend/internal/deals/service"
	"dealflow_backend/internal/deals/transport"
	"dealflow_backend/platform/httpkit"
	"dealflow_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/metrics", h.Metrics)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.POST("/:id/move", h.Move)
	rg.POST("/:id/archive", h.Archive)
	rg.GET("/:id/activities", h.ListActivities)
	rg.POST("/:id/activities", h.AddActivity)
}

func dealID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) List(c *gin.Context) {
	includeArchived := c.Query("archived") == "true"
	query := c.Query("q")

	deals, err := h.svc.List(c.Request.Context(), includeArchived, query)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FromDeals(deals))
}

func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	deal, err := h.svc.Create(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, transport.FromDeal(deal))
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := dealID(c)
	if !ok {
		return
	}

	deal, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FromDeal(deal))
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := dealID(c)
	if !ok {
		return
	}

	var req transport.UpdateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	deal, err := h.svc.Update(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FromDeal(deal))
}

func (h *Handler) Move(c *gin.Context) {
	id, ok := dealID(c)
	if !ok {
		return
	}

	var req transport.MoveDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	deal, err := h.svc.Move(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FromDeal(deal))
}

func (h *Handler) Archive(c *gin.Context) {
	id, ok := dealID(c)
	if !ok {
		return
	}

	req := transport.ArchiveDealRequest{Archived: true}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return
		}
	}

	if err := h.svc.SetArchived(c.Request.Context(), id, req.Archived); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"archived": req.Archived})
}

func (h *Handler) ListActivities(c *gin.Context) {
	id, ok := dealID(c)
	if !ok {
		return
	}

	activities, err := h.svc.Activities(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FromActivities(activities))
}

func (h *Handler) AddActivity(c *gin.Context) {
	id, ok := dealID(c)
	if !ok {
		return
	}

	var req transport.AddActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	activity, err := h.svc.AddActivity(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, transport.FromActivity(activity))
}

func (h *Handler) Metrics(c *gin.Context) {
	metrics, err := h.svc.Metrics(c.Request.Context(), time.Now())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, metrics)
}
