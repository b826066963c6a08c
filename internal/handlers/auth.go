package handlers

import (
	"net/http"

	"opinions/internal/middleware"
	"opinions/internal/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	auth      *services.AuthService
	google    services.GoogleProvider
	clientURL string
}

func NewAuthHandler(auth *services.AuthService, google services.GoogleProvider, clientURL string) *AuthHandler {
	return &AuthHandler{auth: auth, google: google, clientURL: clientURL}
}

type sendOTPRequest struct {
	Email string `json:"email"`
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type googleLoginRequest struct {
	GoogleToken string `json:"googleToken"`
	Code        string `json:"code"`
	RedirectURI string `json:"redirectUri"`
}

// SendOTP POST /api/auth/otp/send
func (h *AuthHandler) SendOTP(c *gin.Context) {
	var req sendOTPRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.auth.SendOTP(c.Request.Context(), req.Email); err != nil {
		RespondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "OTP sent successfully")
}

// VerifyOTP POST /api/auth/otp/verify
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.auth.VerifyOTP(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Google POST /api/auth/google
func (h *AuthHandler) Google(c *gin.Context) {
	var req googleLoginRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.auth.GoogleLogin(c.Request.Context(), services.GoogleCredentials{
		IDToken:     req.GoogleToken,
		Code:        req.Code,
		RedirectURI: req.RedirectURI,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// User GET /api/auth/user
func (h *AuthHandler) User(c *gin.Context) {
	user, err := h.auth.CurrentUser(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
