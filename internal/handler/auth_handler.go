package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lumenblog/auth-service/internal/domain"
	"github.com/lumenblog/auth-service/internal/dto"
	"github.com/lumenblog/auth-service/internal/service"
)

const refreshCookieName = "refresh_token"
const refreshCookiePath = "/api/v1/auth"

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register handles user sign-up
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration request"
// @Success 201 {object} dto.AuthResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	result, err := h.authService.Register(c.Request.Context(), &req, clientMeta(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	setRefreshCookie(c, result)
	c.JSON(http.StatusCreated, authResponse(result))
}

// SignIn handles password sign-in
// @Summary Sign in with handle and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.SignInRequest true "Sign-in request"
// @Success 200 {object} dto.AuthResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/sign-in [post]
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req dto.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	result, err := h.authService.SignIn(c.Request.Context(), &req, clientMeta(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	setRefreshCookie(c, result)
	c.JSON(http.StatusOK, authResponse(result))
}

// Refresh rotates the refresh token from the http-only cookie and returns a
// fresh access token
// @Summary Refresh tokens
// @Tags auth
// @Produce json
// @Success 200 {object} dto.AuthResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie(refreshCookieName)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Bad request",
			Message: "Refresh token not found in cookie",
		})
		return
	}

	result, err := h.authService.Refresh(c.Request.Context(), refreshToken, clientMeta(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	setRefreshCookie(c, result)
	c.JSON(http.StatusOK, authResponse(result))
}

// SignOut revokes the presented refresh token and clears the cookie
// @Summary Sign out
// @Tags auth
// @Produce json
// @Success 200 {object} dto.SuccessResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/sign-out [post]
func (h *AuthHandler) SignOut(c *gin.Context) {
	refreshToken, err := c.Cookie(refreshCookieName)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Bad request",
			Message: "Refresh token not found in cookie",
		})
		return
	}

	if err := h.authService.SignOut(c.Request.Context(), refreshToken, clientMeta(c)); err != nil {
		respondServiceError(c, err)
		return
	}

	clearRefreshCookie(c)
	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "Signed out successfully",
	})
}

// GetMe returns the authenticated user's profile
// @Summary Get current user profile
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func authResponse(result *service.AuthResult) dto.AuthResponse {
	return dto.AuthResponse{
		AccessToken: result.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   result.AccessExpiresIn,
		User: dto.UserInfo{
			ID:          result.User.ID,
			Handle:      result.User.Handle,
			Email:       result.User.Email,
			DisplayName: result.User.DisplayName,
		},
	}
}

func setRefreshCookie(c *gin.Context, result *service.AuthResult) {
	c.SetCookie(refreshCookieName, result.RefreshToken, result.RefreshExpiresIn, refreshCookiePath, "", true, true)
}

func clearRefreshCookie(c *gin.Context) {
	c.SetCookie(refreshCookieName, "", -1, refreshCookiePath, "", true, true)
}

func clientMeta(c *gin.Context) domain.ClientMeta {
	meta := domain.ClientMeta{}

	if ip := c.ClientIP(); ip != "" {
		meta.IPAddress = &ip
	}
	if ua := c.Request.UserAgent(); ua != "" {
		meta.UserAgent = &ua
	}

	return meta
}

func authenticatedUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "Unauthorized",
			Message: "User ID not found in context",
		})
		return "", false
	}
	return userID.(string), true
}
