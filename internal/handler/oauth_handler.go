package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lumenblog/auth-service/internal/domain"
	"github.com/lumenblog/auth-service/internal/dto"
	"github.com/lumenblog/auth-service/internal/service"
)

// OAuthHandler handles OAuth sign-in and connection management requests
type OAuthHandler struct {
	oauthService service.OAuthService
}

// NewOAuthHandler creates a new OAuth handler
func NewOAuthHandler(oauthService service.OAuthService) *OAuthHandler {
	return &OAuthHandler{
		oauthService: oauthService,
	}
}

// SignIn handles OAuth sign-in for the provider named in the route
// @Summary Sign in with an OAuth provider
// @Tags oauth
// @Accept json
// @Produce json
// @Param provider path string true "Provider name"
// @Param request body dto.OAuthSignInRequest true "OAuth sign-in request"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /auth/oauth/{provider}/sign-in [post]
func (h *OAuthHandler) SignIn(c *gin.Context) {
	provider, ok := pathProvider(c)
	if !ok {
		return
	}

	var req dto.OAuthSignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	result, err := h.oauthService.SignIn(c.Request.Context(), provider, req.Code, clientMeta(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	setRefreshCookie(c, result)
	c.JSON(http.StatusOK, authResponse(result))
}

// Link attaches an OAuth identity to the authenticated account
// @Summary Link an OAuth account
// @Tags oauth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.LinkOAuthRequest true "Link request"
// @Success 200 {object} dto.SuccessResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /auth/oauth/link [post]
func (h *OAuthHandler) Link(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	var req dto.LinkOAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	provider, err := domain.ParseProvider(req.Provider)
	if err != nil {
		respondValidationError(c, err)
		return
	}

	if err := h.oauthService.Link(c.Request.Context(), userID, provider, req.Code); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "OAuth account linked",
	})
}

// Unlink removes an OAuth connection from the authenticated account
// @Summary Unlink an OAuth account
// @Tags oauth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.UnlinkOAuthRequest true "Unlink request"
// @Success 200 {object} dto.SuccessResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /auth/oauth/unlink [delete]
func (h *OAuthHandler) Unlink(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	var req dto.UnlinkOAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	provider, err := domain.ParseProvider(req.Provider)
	if err != nil {
		respondValidationError(c, err)
		return
	}

	if err := h.oauthService.Unlink(c.Request.Context(), userID, provider); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "OAuth account unlinked",
	})
}

// RemovePassword drops the password credential of the authenticated account
// @Summary Remove the password credential
// @Tags oauth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.SuccessResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /auth/password [delete]
func (h *OAuthHandler) RemovePassword(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	if err := h.oauthService.RemovePassword(c.Request.Context(), userID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Message: "Password credential removed",
	})
}

func pathProvider(c *gin.Context) (domain.Provider, bool) {
	provider, err := domain.ParseProvider(c.Param("provider"))
	if err != nil {
		respondValidationError(c, err)
		return "", false
	}
	return provider, true
}
