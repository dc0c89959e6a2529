package api

import (
	"errors"
	"net/http"

	"labintel/internal/domain"
	"labintel/internal/service"
)

// httpStatusFromDomainError maps pipeline errors to HTTP status codes.
// Input-resolution failures are the caller's problem to rephrase (422),
// execution failures are the platform's (503/504).
func httpStatusFromDomainError(err error) int {
	var (
		ambiguous    *domain.AmbiguousQueryError
		unresolvable *domain.UnresolvableQueryError
		timeout      *domain.QueryTimeoutError
		unavailable  *domain.DatabaseUnavailableError
		validation   *domain.ValidationError
	)

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &ambiguous), errors.As(err, &unresolvable):
		return http.StatusUnprocessableEntity
	case errors.As(err, &timeout):
		return http.StatusGatewayTimeout
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorBody is the JSON error envelope.
type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func errorBodyFromError(err error) errorBody {
	return errorBody{Kind: service.FailureKind(err), Message: err.Error()}
}
