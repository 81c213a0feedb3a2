package helper

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// FromFiberError: *fiber.Error → response JSON standar.
// Selain itu dianggap 500 dan pesan aslinya tidak dibocorkan.
func FromFiberError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return JsonError(c, fe.Code, fe.Message)
	}
	return JsonError(c, fiber.StatusInternalServerError, "internal server error")
}
