package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/taskdesk/internal/api/shared"
	"github.com/phrazzld/taskdesk/internal/domain"
)

// MapErrorToStatusCode maps an error to its HTTP status by its domain kind.
// Errors without a kind are internal.
func MapErrorToStatusCode(err error) int {
	switch domain.KindOf(err) {
	case domain.KindUnauthenticated:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindInvalidArgument:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a message that is safe to show to clients.
// Only messages written for clients by the domain layer pass through;
// internal errors get a generic text.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "an unexpected error occurred"
	}
	kind := domain.KindOf(err)
	if kind == domain.KindInternal {
		return "an unexpected error occurred"
	}
	if msg := domain.MessageOf(err); msg != "" {
		return msg
	}
	return strings.ReplaceAll(kind.String(), "_", " ")
}

// HandleAPIError writes the response for err. fallback, when non-empty,
// replaces the client message of internal errors.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	msg := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		msg = fallback
	}
	var opts []shared.ResponseOption
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, msg, err, opts...)
}

// SanitizeValidationError turns a struct validation failure into a short
// client message naming the first offending field.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		if msg := domain.MessageOf(err); msg != "" {
			return msg
		}
		return "invalid request"
	}
	fe := verrs[0]
	return fmt.Sprintf("%s %s", fe.Field(), validationTagMessage(fe.Tag(), fe.Param()))
}

func validationTagMessage(tag, param string) string {
	switch tag {
	case "required":
		return "is required"
	case "email":
		return "is not a valid email address"
	case "min":
		return "must be at least " + param + " characters"
	case "max":
		return "must be at most " + param + " characters"
	case "oneof":
		return "must be one of " + param
	case "uuid", "uuid4":
		return "must be a valid id"
	default:
		return "is invalid"
	}
}
