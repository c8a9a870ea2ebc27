package handler

import (
	"errors"
	"time"

	"rizzpay-gateway/internal/adapter/http/dto"
	"rizzpay-gateway/internal/core/ports"
	"rizzpay-gateway/pkg/apperror"
	"rizzpay-gateway/pkg/response"

	"github.com/gin-gonic/gin"
)

// AuthHandler serves merchant registration and login.
type AuthHandler struct {
	authSvc ports.AuthService
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(authSvc ports.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Register handles POST /api/v1/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	res, err := h.authSvc.Register(c.Request.Context(), ports.RegisterRequest{
		Username:     req.Username,
		Password:     req.Password,
		BusinessName: req.BusinessName,
		VPA:          req.VPA,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.RegisterResponse{MerchantID: res.MerchantID.String()})
}

// Login handles POST /api/v1/auth/login. Validation failures return the same
// AUTH_001 as bad credentials so the endpoint does not leak which usernames
// exist.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.ErrInvalidCredentials())
		return
	}

	token, expiresAt, err := h.authSvc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		var appErr *apperror.AppError
		if !errors.As(err, &appErr) {
			err = apperror.ErrInvalidCredentials()
		}
		response.Error(c, err)
		return
	}

	response.OK(c, dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
	})
}
