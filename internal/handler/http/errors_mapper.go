package http

import (
	"errors"
	"net/http"

	"github.com/applock/applock-server/internal/service"
	"github.com/applock/applock-server/internal/store"
	"github.com/applock/applock-server/models"
)

// apiFailure is the HTTP rendering of a known business error: the status
// code plus the machine-readable code and safe message placed in the
// response envelope.
type apiFailure struct {
	status  int
	code    string
	message string
}

// errorFailureMap pins every sentinel the services and stores surface to
// its HTTP rendering. Anything not listed is an internal fault and
// reaches the client as a bare 500 with no detail.
var errorFailureMap = map[error]apiFailure{
	service.ErrInvalidDataProvided:     {http.StatusBadRequest, models.CodeValidationError, "invalid data provided"},
	service.ErrInvalidCredentials:      {http.StatusUnauthorized, models.CodeUnauthorized, "invalid credentials"},
	service.ErrTokenIsExpiredOrInvalid: {http.StatusUnauthorized, models.CodeUnauthorized, "token is expired or invalid"},
	service.ErrCeremonyFailed:          {http.StatusBadRequest, models.CodeCeremonyFailed, "ceremony verification failed"},

	store.ErrEmailAlreadyExists:        {http.StatusConflict, models.CodeConflict, "email already registered"},
	store.ErrNoUserWasFound:            {http.StatusNotFound, models.CodeNotFound, "user not found"},
	store.ErrNoCredentialsRegistered:   {http.StatusNotFound, models.CodeNotFound, "no hardware credentials registered"},
	store.ErrCredentialAlreadyExists:   {http.StatusConflict, models.CodeConflict, "credential already registered"},
	store.ErrCredentialNotFound:        {http.StatusNotFound, models.CodeNotFound, "credential not found"},
	store.ErrCeremonyNotFound:          {http.StatusBadRequest, models.CodeCeremonyFailed, "no pending ceremony"},

	ErrEmptyAuthorizationHeader:   {http.StatusUnauthorized, models.CodeUnauthorized, "missing authorization header"},
	ErrInvalidAuthorizationHeader: {http.StatusUnauthorized, models.CodeUnauthorized, "invalid authorization header"},
	ErrEmptyToken:                 {http.StatusUnauthorized, models.CodeUnauthorized, "empty bearer token"},
}

// failureFromError resolves err to its HTTP rendering via errors.Is, so
// wrapped sentinels match.
func failureFromError(err error) apiFailure {
	for target, failure := range errorFailureMap {
		if errors.Is(err, target) {
			return failure
		}
	}
	return apiFailure{http.StatusInternalServerError, models.CodeInternalError, "internal server error"}
}
