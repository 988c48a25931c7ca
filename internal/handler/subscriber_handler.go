package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cursova/cursova-api/internal/service"
	appErrors "github.com/cursova/cursova-api/pkg/errors"
	"github.com/cursova/cursova-api/pkg/response"
)

// SubscriberHandler exposes newsletter and device-token endpoints.
type SubscriberHandler struct {
	subscribers *service.SubscriberService
}

// NewSubscriberHandler constructs SubscriberHandler.
func NewSubscriberHandler(subscribers *service.SubscriberService) *SubscriberHandler {
	return &SubscriberHandler{subscribers: subscribers}
}

type subscribeRequest struct {
	Email string `json:"email" binding:"required"`
}

type registerDeviceRequest struct {
	Token    string `json:"token" binding:"required"`
	Platform string `json:"platform,omitempty"`
}

// Subscribe godoc
// @Summary Subscribe to the newsletter
// @Tags Subscribers
// @Accept json
// @Produce json
// @Param payload body subscribeRequest true "Email"
// @Success 201 {object} response.Envelope
// @Router /subscribers [post]
func (h *SubscriberHandler) Subscribe(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	sub, err := h.subscribers.Subscribe(c.Request.Context(), req.Email)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, sub)
}

// RegisterDevice godoc
// @Summary Register a push device token
// @Tags Subscribers
// @Accept json
// @Produce json
// @Param payload body registerDeviceRequest true "Device token"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /notifications/tokens [post]
func (h *SubscriberHandler) RegisterDevice(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req registerDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	device, err := h.subscribers.RegisterDevice(c.Request.Context(), claims.UID, req.Token, req.Platform)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, device)
}
