// Package handler exposes the auth endpoints.
package handler

import (
	"net/http"

	"dealflow_backend/internal/auth/service"
	"dealflow_backend/platform/httpkit"
	"dealflow_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

type loginRequest struct {
	Password string `json:"password" validate:"required,min=1"`
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/login", h.Login)
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", nil)
		return
	}

	pair, err := h.svc.Login(req.Password)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, pair)
}
