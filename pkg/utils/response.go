package utils

import "github.com/gofiber/fiber/v2"

// Success writes the {ok:true} envelope merged with the given fields.
func Success(c *fiber.Ctx, status int, fields fiber.Map) error {
	body := fiber.Map{"ok": true}
	for key, value := range fields {
		if key == "ok" {
			continue
		}
		body[key] = value
	}
	return c.Status(status).JSON(body)
}

func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"ok":    false,
		"error": message,
	})
}
