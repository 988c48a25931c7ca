package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cursova/cursova-api/internal/models"
	"github.com/cursova/cursova-api/internal/service"
	appErrors "github.com/cursova/cursova-api/pkg/errors"
	"github.com/cursova/cursova-api/pkg/response"
)

// maxRegistrationPayload caps the public submission body.
const maxRegistrationPayload = 64 << 10

// RegistrationHandler exposes registration endpoints.
type RegistrationHandler struct {
	registrations *service.RegistrationService
}

// NewRegistrationHandler constructs RegistrationHandler.
func NewRegistrationHandler(registrations *service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrations: registrations}
}

type transitionRequest struct {
	Status        models.RegistrationStatus `json:"status" binding:"required"`
	CustomMessage *string                   `json:"customMessage,omitempty"`
}

// Submit godoc
// @Summary Submit a course registration
// @Tags Registrations
// @Accept json
// @Produce json
// @Param payload body object true "Registration form payload"
// @Success 201 {object} response.Envelope
// @Router /registrations [post]
func (h *RegistrationHandler) Submit(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxRegistrationPayload+1))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unreadable payload"))
		return
	}
	if len(raw) > maxRegistrationPayload {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "payload too large"))
		return
	}

	reg, err := h.registrations.Submit(c.Request.Context(), json.RawMessage(raw))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, reg)
}

// List godoc
// @Summary List registrations
// @Tags Registrations
// @Produce json
// @Param status query string false "Filter by status (pending/approved/rejected)"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /registrations [get]
func (h *RegistrationHandler) List(c *gin.Context) {
	filter := models.RegistrationFilter{Status: models.RegistrationStatus(c.Query("status"))}
	registrations, err := h.registrations.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, registrations, nil)
}

// Get godoc
// @Summary Get registration detail with status history
// @Tags Registrations
// @Produce json
// @Param id path string true "Registration ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /registrations/{id} [get]
func (h *RegistrationHandler) Get(c *gin.Context) {
	reg, err := h.registrations.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reg, nil)
}

// Transition godoc
// @Summary Transition registration status
// @Tags Registrations
// @Accept json
// @Produce json
// @Param id path string true "Registration ID"
// @Param payload body transitionRequest true "Target status with optional message"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /registrations/{id} [patch]
func (h *RegistrationHandler) Transition(c *gin.Context) {
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	result, err := h.registrations.TransitionStatus(c.Request.Context(), c.Param("id"), req.Status, req.CustomMessage)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Delete godoc
// @Summary Delete a registration
// @Tags Registrations
// @Produce json
// @Param id path string true "Registration ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /registrations/{id} [delete]
func (h *RegistrationHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.registrations.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"id": id}, nil)
}

// Export godoc
// @Summary Export registrations as CSV or PDF
// @Tags Registrations
// @Produce octet-stream
// @Param format query string false "csv or pdf" default(csv)
// @Param status query string false "Filter by status"
// @Success 200 {file} byte
// @Security BearerAuth
// @Router /registrations/export [get]
func (h *RegistrationHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	filter := models.RegistrationFilter{Status: models.RegistrationStatus(c.Query("status"))}

	file, err := h.registrations.Export(c.Request.Context(), format, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Bytes)
}
