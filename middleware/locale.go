package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"studioadmin/utils"
)

// LocaleMiddleware detects and sets the caller's locale
func LocaleMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// 1. Try to get language from query parameter
		lang := c.Query("lang")

		// 2. Try to get language from cookie
		if lang == "" {
			lang = c.Cookies("lang")
		}

		// 3. Try to get language from Accept-Language header
		if lang == "" {
			acceptLang := c.Get("Accept-Language")
			for _, supported := range utils.SupportedLanguages {
				if strings.HasPrefix(acceptLang, supported) {
					lang = supported
					break
				}
			}
		}

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

		// Store in context
		c.Locals("localizer", utils.GetLocalizer(lang))
		c.Locals("lang", lang)

		return c.Next()
	}
}
