package api

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nicksnyder/go-i18n/v2/i18n"

	"studioadmin/utils"
)

// decodeStrict parses a JSON request body and rejects unknown keys, so
// payloads beyond the defined shape are never silently accepted.
func decodeStrict(c *fiber.Ctx, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(c.Body()))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return utils.ValidationError("Invalid request body", err)
	}
	return nil
}

// adminID returns the identity resolved by the auth middleware.
func adminID(c *fiber.Ctx) string {
	id, _ := c.Locals("adminId").(string)
	return id
}

// localize translates a message ID with the request's localizer.
func localize(c *fiber.Ctx, messageID string) string {
	localizer, _ := c.Locals("localizer").(*i18n.Localizer)
	return utils.T(localizer, messageID)
}

// hoursDuration converts a config hour count to a duration.
func hoursDuration(hours int) time.Duration {
	return time.Duration(hours) * time.Hour
}
