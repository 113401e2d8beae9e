package handlers

import (
	"net/http"

	"apartmani/internal/common"
	"apartmani/internal/middleware"
	"apartmani/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// UserHandlers serves the authenticated account's own data
type UserHandlers struct {
	accountService services.AccountService
}

// NewUserHandlers creates a new user handlers instance
func NewUserHandlers(accountService services.AccountService) *UserHandlers {
	return &UserHandlers{accountService: accountService}
}

// UpdateProfileRequest represents the profile update payload
type UpdateProfileRequest struct {
	Username string `json:"username"`
}

func currentAccount(c echo.Context) (uuid.UUID, error) {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		return uuid.Nil, common.UnauthorizedError("You are not logged in! Please log in to get access.")
	}
	return accountID, nil
}

// Me returns the public profile of the logged in account
func (h *UserHandlers) Me(c echo.Context) error {
	accountID, err := currentAccount(c)
	if err != nil {
		return err
	}

	profile, err := h.accountService.GetProfile(c.Request().Context(), accountID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"status": "success", "user": profile})
}

// UpdateProfile changes the username
func (h *UserHandlers) UpdateProfile(c echo.Context) error {
	accountID, err := currentAccount(c)
	if err != nil {
		return err
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return bindError()
	}

	profile, err := h.accountService.UpdateProfile(c.Request().Context(), accountID, req.Username)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"status": "success", "user": profile})
}

// ChangePassword replaces the password of the logged in account
func (h *UserHandlers) ChangePassword(c echo.Context) error {
	accountID, err := currentAccount(c)
	if err != nil {
		return err
	}

	var req NewPasswordRequest
	if err := c.Bind(&req); err != nil {
		return bindError()
	}

	if err := h.accountService.ChangePassword(c.Request().Context(), accountID, req.Password, req.PasswordConfirm); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, message("Password updated!"))
}
