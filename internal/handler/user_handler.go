package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cursova/cursova-api/internal/models"
	"github.com/cursova/cursova-api/internal/service"
	appErrors "github.com/cursova/cursova-api/pkg/errors"
	"github.com/cursova/cursova-api/pkg/response"
)

// UserHandler exposes user management and onboarding endpoints.
type UserHandler struct {
	users *service.UserService
}

// NewUserHandler constructs UserHandler.
func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Create godoc
// @Summary Create a user and send an onboarding invitation
// @Tags Users
// @Accept json
// @Produce json
// @Param payload body models.CreateUserRequest true "User payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	invitedBy := ""
	if claims := claimsFromContext(c); claims != nil {
		invitedBy = claims.UID
	}

	result, err := h.users.CreateUserWithInvite(c.Request.Context(), &req, invitedBy)
	if err != nil {
		response.Error(c, err)
		return
	}

	status := http.StatusCreated
	if result.InvitationError != "" {
		// User exists but the invite needs a resend; 207 flags the partial outcome.
		status = http.StatusMultiStatus
	}
	response.JSON(c, status, result, nil)
}

// List godoc
// @Summary List users
// @Tags Users
// @Produce json
// @Param role query string false "Filter by role"
// @Param status query string false "Filter by status"
// @Param search query string false "Search by email or display name"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
	var filter models.UserFilter
	filter.Role = models.UserRole(c.Query("role"))
	filter.Status = models.UserStatus(c.Query("status"))
	filter.Search = strings.TrimSpace(c.Query("search"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	users, total, err := h.users.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	response.JSON(c, http.StatusOK, users, &models.Pagination{Page: page, PageSize: size, TotalCount: total})
}

// Get godoc
// @Summary Get user detail
// @Tags Users
// @Produce json
// @Param uid path string true "User UID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /users/{uid} [get]
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), c.Param("uid"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

// ResendInvitation godoc
// @Summary Resend the onboarding invitation
// @Tags Users
// @Produce json
// @Param uid path string true "User UID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /users/{uid}/resend-invitation [post]
func (h *UserHandler) ResendInvitation(c *gin.Context) {
	invitation, err := h.users.ResendInvitation(c.Request.Context(), c.Param("uid"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, invitation, nil)
}

// Suspend godoc
// @Summary Suspend a user
// @Tags Users
// @Param uid path string true "User UID"
// @Success 204
// @Security BearerAuth
// @Router /users/{uid}/suspend [post]
func (h *UserHandler) Suspend(c *gin.Context) {
	if err := h.users.Suspend(c.Request.Context(), c.Param("uid")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Reactivate godoc
// @Summary Reactivate a suspended user
// @Tags Users
// @Param uid path string true "User UID"
// @Success 204
// @Security BearerAuth
// @Router /users/{uid}/reactivate [post]
func (h *UserHandler) Reactivate(c *gin.Context) {
	if err := h.users.Reactivate(c.Request.Context(), c.Param("uid")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Delete godoc
// @Summary Delete a user
// @Tags Users
// @Param uid path string true "User UID"
// @Success 204
// @Security BearerAuth
// @Router /users/{uid} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.users.Delete(c.Request.Context(), c.Param("uid")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// VerifyEmail godoc
// @Summary Verify the invited email address
// @Tags Onboarding
// @Accept json
// @Produce json
// @Param payload body models.VerifyEmailRequest true "Action code"
// @Success 200 {object} response.Envelope
// @Router /users/verify-email [post]
func (h *UserHandler) VerifyEmail(c *gin.Context) {
	var req models.VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	user, err := h.users.VerifyEmail(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

// SetPassword godoc
// @Summary Set the password and complete onboarding
// @Tags Onboarding
// @Accept json
// @Produce json
// @Param payload body models.SetPasswordRequest true "Action code with new password"
// @Success 200 {object} response.Envelope
// @Router /users/set-password [post]
func (h *UserHandler) SetPassword(c *gin.Context) {
	var req models.SetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.users.SetPassword(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
