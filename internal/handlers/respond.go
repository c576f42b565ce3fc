package handlers

import (
	"errors"
	"fmt"
	"log"
	"reflect"
	"strings"

	"usermgmt/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// newValidator reports field errors under their JSON names.
func newValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// bcrypt only accepts the first 72 bytes of a password; min/max count runes.
	_ = validate.RegisterValidation("bcryptlen", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= services.MaxPasswordBytes
	})
	return validate
}

// bindBody parses and validates the request body into dst.
// When it returns false the 400 response has already been written.
func bindBody(c *fiber.Ctx, validate *validator.Validate, dst interface{}) (bool, error) {
	if err := c.BodyParser(dst); err != nil {
		log.Printf("Error parsing request body: %v", err)
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Validation failed",
				"error":   err.Error(),
			})
		}
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}
	return true, nil
}

// statusFor maps a guard failure kind to its HTTP status.
func statusFor(kind services.ErrorKind) int {
	switch kind {
	case services.KindEmailAlreadyTaken:
		return fiber.StatusConflict
	case services.KindInvalidPassword:
		return fiber.StatusBadRequest
	case services.KindUnprocessableEntity, services.KindPatchFailed:
		return fiber.StatusUnprocessableEntity
	case services.KindNameMismatch, services.KindEmailMismatch:
		return fiber.StatusForbidden
	case services.KindInvalidCredentials:
		return fiber.StatusUnauthorized
	case services.KindStorageUnavailable:
		return fiber.StatusServiceUnavailable
	case services.KindTimeout:
		return fiber.StatusGatewayTimeout
	case services.KindCanceled:
		return fiber.StatusRequestTimeout
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes the JSON error body for err.
func respondError(c *fiber.Ctx, err error) error {
	var guardErr *services.GuardError
	if !errors.As(err, &guardErr) {
		log.Printf("Unexpected error on %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
		})
	}

	log.Printf("%s %s rejected: %v", c.Method(), c.Path(), err)
	if guardErr.Kind.Retryable() {
		c.Set(fiber.HeaderRetryAfter, "1")
	}
	return c.Status(statusFor(guardErr.Kind)).JSON(fiber.Map{
		"message": guardErr.Message,
		"error":   string(guardErr.Kind),
	})
}
