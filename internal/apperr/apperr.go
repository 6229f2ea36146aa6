// Package apperr defines the gateway error taxonomy and maps errors to kinds and HTTP statuses.
package apperr

import (
	"context"
	"errors"
	"net/http"
)

var (
	ErrConfiguration = errors.New("tenant configuration")
	ErrAuth          = errors.New("erp authentication")
	ErrValidation    = errors.New("validation")
	ErrTransient     = errors.New("transient network failure")
	ErrSubmission    = errors.New("erp rejected request")
)

const (
	KindValidation    = "validation"
	KindConfiguration = "configuration"
	KindTransient     = "transient"
	KindAuth          = "auth"
	KindSubmission    = "submission"
	KindCanceled      = "canceled"
	KindInternal      = "internal"
)

// Kind classifies err. A transient failure that happened during login is reported as transient.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""

	case errors.Is(err, ErrValidation):
		return KindValidation

	case errors.Is(err, ErrConfiguration):
		return KindConfiguration

	case errors.Is(err, ErrTransient):
		return KindTransient

	case errors.Is(err, ErrAuth):
		return KindAuth

	case errors.Is(err, ErrSubmission):
		return KindSubmission

	case errors.Is(err, context.Canceled):
		return KindCanceled

	default:
		return KindInternal
	}
}

func HTTPStatus(err error) int {
	switch Kind(err) {
	case "":
		return http.StatusOK

	case KindValidation:
		return http.StatusBadRequest

	case KindConfiguration:
		return http.StatusPreconditionFailed

	case KindTransient:
		return http.StatusGatewayTimeout

	case KindAuth, KindSubmission:
		return http.StatusBadGateway

	case KindCanceled:
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}
