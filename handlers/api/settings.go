package api

import (
	"github.com/gofiber/fiber/v2"

	"studioadmin/config"
	"studioadmin/models"
	"studioadmin/settings"
	"studioadmin/utils"
	"studioadmin/validation"
)

// SettingsHandler maps dashboard requests onto the settings action service
type SettingsHandler struct {
	config  *config.Config
	service *settings.Service
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(cfg *config.Config, service *settings.Service) *SettingsHandler {
	return &SettingsHandler{
		config:  cfg,
		service: service,
	}
}

// GetSettings returns the caller's settings document, materializing
// defaults on first access
func (h *SettingsHandler) GetSettings(c *fiber.Ctx) error {
	view, err := h.service.LoadSettings(adminID(c))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":        true,
		"settings":       view.Settings,
		"email_verified": view.EmailVerified,
	})
}

// UpdateProfile updates profile fields (email excluded)
func (h *SettingsHandler) UpdateProfile(c *fiber.Ctx) error {
	var in validation.ProfileInput
	if err := decodeStrict(c, &in); err != nil {
		return err
	}

	result, err := h.service.UpdateProfile(adminID(c), &in)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":        true,
		"message":        localize(c, "settings_updated"),
		"settings":       result.Settings,
		"rollback_token": result.RollbackToken,
	})
}

// ChangeEmail runs the dedicated email-change operation
func (h *SettingsHandler) ChangeEmail(c *fiber.Ctx) error {
	var in validation.EmailChangeInput
	if err := decodeStrict(c, &in); err != nil {
		return err
	}

	result, err := h.service.ChangeEmail(adminID(c), &in)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":        true,
		"message":        localize(c, "email_change_started"),
		"settings":       result.Settings,
		"rollback_token": result.RollbackToken,
	})
}

type verificationRequest struct {
	Email string `json:"email"`
}

// SendVerification generates an email verification link
func (h *SettingsHandler) SendVerification(c *fiber.Ctx) error {
	var req verificationRequest
	if err := decodeStrict(c, &req); err != nil {
		return err
	}

	link, err := h.service.SendEmailVerification(adminID(c), req.Email)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": localize(c, "verification_sent"),
		"link":    link,
	})
}

// UpdateNotifications updates notification preferences
func (h *SettingsHandler) UpdateNotifications(c *fiber.Ctx) error {
	var in models.NotificationSettings
	if err := decodeStrict(c, &in); err != nil {
		return err
	}

	result, err := h.service.UpdateNotifications(adminID(c), &in)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":        true,
		"message":        localize(c, "settings_updated"),
		"settings":       result.Settings,
		"rollback_token": result.RollbackToken,
	})
}

type testNotificationRequest struct {
	Channel string `json:"channel"`
}

// TestNotification sends a side-effect-free test notification
func (h *SettingsHandler) TestNotification(c *fiber.Ctx) error {
	var req testNotificationRequest
	if err := decodeStrict(c, &req); err != nil {
		return err
	}

	ack, err := h.service.SendTestNotification(adminID(c), req.Channel)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": ack,
	})
}

// UpdateAppearance updates appearance after the contrast gate
func (h *SettingsHandler) UpdateAppearance(c *fiber.Ctx) error {
	var in validation.AppearanceInput
	if err := decodeStrict(c, &in); err != nil {
		return err
	}

	result, err := h.service.UpdateAppearance(adminID(c), &in)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":        true,
		"message":        localize(c, "settings_updated"),
		"settings":       result.Settings,
		"rollback_token": result.RollbackToken,
	})
}

// ResetAppearance restores the default appearance
func (h *SettingsHandler) ResetAppearance(c *fiber.Ctx) error {
	result, err := h.service.ResetAppearance(adminID(c))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":        true,
		"message":        localize(c, "appearance_reset"),
		"settings":       result.Settings,
		"rollback_token": result.RollbackToken,
	})
}

type rollbackRequest struct {
	Token string `json:"token"`
}

// Rollback restores the document captured before one mutation
func (h *SettingsHandler) Rollback(c *fiber.Ctx) error {
	var req rollbackRequest
	if err := decodeStrict(c, &req); err != nil {
		return err
	}
	if req.Token == "" {
		return utils.ValidationError("Rollback token required", nil).
			WithContext("fields", []string{"token"})
	}

	restored, err := h.service.Rollback(adminID(c), req.Token)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"message":  localize(c, "settings_rolled_back"),
		"settings": restored,
	})
}

// CheckContrast previews the contrast ratio for an accent color without
// persisting anything
func (h *SettingsHandler) CheckContrast(c *fiber.Ctx) error {
	accent := c.Query("accent")
	result, err := validation.CheckContrast(accent)
	if err != nil {
		return utils.ValidationError("Invalid accent color", err).
			WithContext("fields", []string{"accent"})
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"ratio":    result.Ratio,
		"meets_aa": result.MeetsAA,
	})
}
