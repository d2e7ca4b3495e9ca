package routes

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/Amityadav08/SLVNK-Backend/internal/apperr"
)

// ErrorHandler maps the application error taxonomy onto HTTP responses.
// Validation and conflict errors become structured 400s with per-field
// detail where available; auth failures become 401/403 without detail
// leakage; anything unclassified is logged and surfaced as a generic 500.
func ErrorHandler(logger zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{
				"error":  apperr.ErrValidation.Error(),
				"fields": fieldDetail(fieldErrs),
			})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
		}

		if status, ok := statusFor(err); ok {
			return c.Status(status).JSON(fiber.Map{"error": err.Error()})
		}

		logger.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "something went wrong"})
	}
}

func statusFor(err error) (int, bool) {
	switch {
	case errors.Is(err, apperr.ErrAuthRequired):
		return http.StatusUnauthorized, true
	case errors.Is(err, apperr.ErrAuthInvalid):
		return http.StatusUnauthorized, true
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden, true
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, apperr.ErrConflict),
		errors.Is(err, apperr.ErrValidation),
		errors.Is(err, apperr.ErrMalformedID),
		errors.Is(err, apperr.ErrUploadRejected),
		errors.Is(err, apperr.ErrUploadTooLarge):
		return http.StatusBadRequest, true
	default:
		return 0, false
	}
}

func fieldDetail(errs validator.ValidationErrors) map[string]string {
	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		fields[fe.Field()] = "failed " + fe.Tag()
	}
	return fields
}
