package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"studioadmin/auth"
	"studioadmin/config"
	"studioadmin/storage"
	"studioadmin/utils"
)

// AuthHandler handles dashboard login and email verification links
type AuthHandler struct {
	config   *config.Config
	admins   *storage.AdminStore
	provider *auth.LocalProvider
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(cfg *config.Config, admins *storage.AdminStore, provider *auth.LocalProvider) *AuthHandler {
	return &AuthHandler{
		config:   cfg,
		admins:   admins,
		provider: provider,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin verifies credentials and issues a session token
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := decodeStrict(c, &req); err != nil {
		return err
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return utils.BadRequestError("Email and password are required", nil)
	}

	admin, err := h.admins.VerifyPassword(req.Email, req.Password)
	if err != nil {
		return utils.UnauthorizedError(localize(c, "login_failed"), nil)
	}

	if err := h.admins.UpdateLastLogin(admin.ID); err != nil {
		utils.Log.Warn("Failed to record login for %s: %v", admin.ID, err)
	}

	token, err := auth.GenerateSessionToken(admin, h.config.JWT.Secret,
		hoursDuration(h.config.JWT.SessionHours))
	if err != nil {
		return utils.InternalServerError("Failed to create session token", err)
	}

	admin.PasswordHash = ""
	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
		"admin":   admin,
	})
}

// HandleVerifyEmail consumes an email verification link token
func (h *AuthHandler) HandleVerifyEmail(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return utils.BadRequestError("Verification token required", nil)
	}

	if err := h.provider.ConfirmEmailVerification(token); err != nil {
		return utils.BadRequestError("Verification link is invalid or expired", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": localize(c, "email_verified"),
	})
}
