package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	identityapp "github.com/posledger/backend/internal/application/identity"
	"github.com/posledger/backend/internal/domain/identity"
	"github.com/posledger/backend/internal/interfaces/http/middleware"
)

// UserHandler serves staff account management. Every operation is
// restricted to the owner role.
type UserHandler struct {
	BaseHandler
	userService *identityapp.UserService
}

func NewUserHandler(userService *identityapp.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// ownerScope rejects non-owner callers and writes the 403 itself.
func (h *UserHandler) ownerScope(c *gin.Context) bool {
	if middleware.GetJWTRole(c) != identity.UserRoleOwner.String() {
		h.Forbidden(c, "Only the owner can manage staff accounts")
		return false
	}
	return true
}

// userIDParam parses the :id path segment, writing the 400 on failure.
func (h *UserHandler) userIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return uuid.Nil, false
	}
	return id, true
}

// Create godoc
// @ID           createUser
// @Summary      Create a staff account
// @Description  Create a new user account within the caller's business
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body CreateUserRequest true "User creation request"
// @Success      201 {object} dto.Response{data=identityapp.UserDTO}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	businessID, err := getBusinessID(c)
	if err != nil {
		h.Unauthorized(c, "Business ID not found in token")
		return
	}
	if !h.ownerScope(c) {
		return
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	user, err := h.userService.Create(c.Request.Context(), identityapp.CreateUserInput{
		BusinessID:  businessID,
		Username:    req.Username,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Phone:       req.Phone,
		Role:        req.Role,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, user)
}

// GetByID godoc
// @ID           getUser
// @Summary      Get a user by ID
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {object} dto.Response{data=identityapp.UserDTO}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /users/{id} [get]
func (h *UserHandler) GetByID(c *gin.Context) {
	if !h.ownerScope(c) {
		return
	}
	id, ok := h.userIDParam(c)
	if !ok {
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, user)
}

// Deactivate godoc
// @ID           deactivateUser
// @Summary      Deactivate a user account
// @Description  Deactivated accounts cannot log in until reactivated
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /users/{id}/deactivate [put]
func (h *UserHandler) Deactivate(c *gin.Context) {
	h.setActive(c, h.userService.Deactivate, "User deactivated")
}

// Activate godoc
// @ID           activateUser
// @Summary      Reactivate a user account
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /users/{id}/activate [put]
func (h *UserHandler) Activate(c *gin.Context) {
	h.setActive(c, h.userService.Activate, "User activated")
}

func (h *UserHandler) setActive(c *gin.Context, op func(ctx context.Context, id uuid.UUID) error, message string) {
	if !h.ownerScope(c) {
		return
	}
	id, ok := h.userIDParam(c)
	if !ok {
		return
	}

	if err := op(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"message": message})
}
