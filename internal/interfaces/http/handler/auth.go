package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/posledger/backend/internal/application/identity"
	"github.com/posledger/backend/internal/interfaces/http/dto"
	"github.com/posledger/backend/internal/interfaces/http/middleware"
)

// AuthHandler serves login, token refresh, and the current-user endpoints.
type AuthHandler struct {
	BaseHandler
	authService *identity.AuthService
}

func NewAuthHandler(authService *identity.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// claimsUserID pulls the authenticated user ID out of the JWT claims and
// writes the failure response itself when the claims are absent or broken.
func (h *AuthHandler) claimsUserID(c *gin.Context) (uuid.UUID, bool) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		h.BadRequest(c, "Invalid user ID in token")
		return uuid.Nil, false
	}
	return userID, true
}

func toTokenResponse(result identity.TokenResult) TokenResponse {
	return TokenResponse{
		AccessToken:           result.AccessToken,
		RefreshToken:          result.RefreshToken,
		AccessTokenExpiresAt:  result.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: result.RefreshTokenExpiresAt,
		TokenType:             result.TokenType,
	}
}

func toAuthUserResponse(user identity.UserInfo) AuthUserResponse {
	return AuthUserResponse{
		ID:          user.ID,
		BusinessID:  user.BusinessID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Phone:       user.Phone,
		Role:        user.Role,
		Active:      user.Active,
	}
}

// Login godoc
// @Summary      User login
// @Description  Exchange username and password for a token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} dto.Response{data=LoginResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), identity.LoginInput{
		Username: req.Username,
		Password: req.Password,
		// The client IP ends up on the user record as the last login address.
		IP: c.ClientIP(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, LoginResponse{
		Token: toTokenResponse(result.TokenResult),
		User:  toAuthUserResponse(result.User),
	})
}

// RefreshToken godoc
// @Summary      Refresh access token
// @Description  Exchange a refresh token for a new token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RefreshTokenRequest true "Refresh token"
// @Success      200 {object} dto.Response{data=RefreshTokenResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.authService.RefreshToken(c.Request.Context(), identity.RefreshTokenInput{
		RefreshToken: req.RefreshToken,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, RefreshTokenResponse{Token: toTokenResponse(result.TokenResult)})
}

// GetCurrentUser godoc
// @Summary      Get current user
// @Description  Return the profile of the authenticated user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Success      200 {object} dto.Response{data=CurrentUserResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /auth/me [get]
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, ok := h.claimsUserID(c)
	if !ok {
		return
	}

	user, err := h.authService.GetCurrentUser(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, CurrentUserResponse{User: toAuthUserResponse(*user)})
}

// ChangePassword godoc
// @Summary      Change password
// @Description  Rotate the authenticated user's password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body ChangePasswordRequest true "Password change request"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /auth/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := h.claimsUserID(c)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	err := h.authService.ChangePassword(c.Request.Context(), identity.ChangePasswordInput{
		UserID:      userID,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{
		"message": "Password changed successfully",
	}))
}
