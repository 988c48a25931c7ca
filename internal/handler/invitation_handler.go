package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cursova/cursova-api/internal/service"
	appErrors "github.com/cursova/cursova-api/pkg/errors"
	"github.com/cursova/cursova-api/pkg/response"
)

// InvitationHandler exposes invitation endpoints.
type InvitationHandler struct {
	invitations *service.InvitationService
}

// NewInvitationHandler constructs InvitationHandler.
func NewInvitationHandler(invitations *service.InvitationService) *InvitationHandler {
	return &InvitationHandler{invitations: invitations}
}

type acceptInvitationRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password,omitempty"`
}

// Verify godoc
// @Summary Check an invitation token without consuming it
// @Tags Invitations
// @Produce json
// @Param token query string true "Invitation token"
// @Success 200 {object} response.Envelope
// @Router /invitations/verify [get]
func (h *InvitationHandler) Verify(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	invitation, err := h.invitations.Verify(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, invitation, nil)
}

// Accept godoc
// @Summary Accept an invitation token, optionally setting the password
// @Tags Invitations
// @Accept json
// @Produce json
// @Param payload body acceptInvitationRequest true "Invitation token"
// @Success 200 {object} response.Envelope
// @Router /invitations/accept [post]
func (h *InvitationHandler) Accept(c *gin.Context) {
	var req acceptInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.invitations.Accept(c.Request.Context(), req.Token, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// List godoc
// @Summary List invitations
// @Tags Invitations
// @Produce json
// @Param email query string false "Filter by email"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /invitations [get]
func (h *InvitationHandler) List(c *gin.Context) {
	invitations, err := h.invitations.List(c.Request.Context(), c.Query("email"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, invitations, nil)
}
