package api

import (
	"github.com/gofiber/fiber/v2"

	"studioadmin/utils"
)

// I18nHandler handles i18n-related requests
type I18nHandler struct{}

// GetTranslations returns translations for the dashboard client
func (h *I18nHandler) GetTranslations(c *fiber.Ctx) error {
	lang := c.Params("lang")

	// Only allow supported languages
	supported := false
	for _, s := range utils.SupportedLanguages {
		if lang == s {
			supported = true
			break
		}
	}
	if !supported {
		lang = "en"
	}

	localizer := utils.GetLocalizer(lang)

	// Common translation keys for client-side use
	keys := []string{
		"settings_updated",
		"settings_rolled_back",
		"appearance_reset",
		"email_change_started",
		"verification_sent",
		"login_failed",
		"error_404",
		"error_500",
	}

	translations := make(map[string]string, len(keys))
	for _, key := range keys {
		translations[key] = utils.T(localizer, key)
	}

	return c.JSON(translations)
}
