package controllers

import (
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/donote/donote/internal/pkg/env"
)

const genericErrorDetails = "internal error, see server logs"

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// errorDetails exposes the error text only in development.
func errorDetails(err error) string {
	if env.IsDev() {
		return err.Error()
	}
	return genericErrorDetails
}

func internalError(c *fiber.Ctx, message string, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":   message,
		"details": errorDetails(err),
	})
}
