package handlers

import (
	"net/http"

	"apartmani/internal/common"
	"apartmani/internal/services"

	"github.com/labstack/echo/v4"
)

// AuthHandlers handles signup, activation, login and password reset
type AuthHandlers struct {
	accountService services.AccountService
}

// NewAuthHandlers creates a new auth handlers instance
func NewAuthHandlers(accountService services.AccountService) *AuthHandlers {
	return &AuthHandlers{accountService: accountService}
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PasswordResetRequest represents the forgot-password payload
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// NewPasswordRequest carries a new password and its confirmation
type NewPasswordRequest struct {
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

// MessageResponse is the body of operations that only report success
type MessageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func message(msg string) *MessageResponse {
	return &MessageResponse{Status: "success", Message: msg}
}

func bindError() error {
	return common.ValidationError("Invalid request format")
}

// Signup creates a pending account and mails the activation link
func (h *AuthHandlers) Signup(c echo.Context) error {
	var req services.SignupRequest
	if err := c.Bind(&req); err != nil {
		return bindError()
	}

	profile, err := h.accountService.Signup(c.Request().Context(), &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Account created! Check your email to activate it.",
		"user":    profile,
	})
}

// Activate consumes an activation token
func (h *AuthHandlers) Activate(c echo.Context) error {
	if err := h.accountService.Activate(c.Request().Context(), c.Param("token")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, message("Account activated!"))
}

// Login handles user login with email and password
func (h *AuthHandlers) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return bindError()
	}

	result, err := h.accountService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// RequestPasswordReset answers identically for known and unknown addresses
func (h *AuthHandlers) RequestPasswordReset(c echo.Context) error {
	var req PasswordResetRequest
	if err := c.Bind(&req); err != nil {
		return bindError()
	}

	if err := h.accountService.RequestPasswordReset(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, message(services.PasswordResetRequestedMessage))
}

// ResetPassword sets a new password using a reset token
func (h *AuthHandlers) ResetPassword(c echo.Context) error {
	var req NewPasswordRequest
	if err := c.Bind(&req); err != nil {
		return bindError()
	}

	err := h.accountService.ResetPassword(c.Request().Context(), c.Param("token"), req.Password, req.PasswordConfirm)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, message("Password changed! Please log in."))
}
