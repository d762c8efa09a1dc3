package models

// Response is the uniform JSON envelope returned by every endpoint.
// Success responses carry Data; failures carry Error and Success=false.
type Response struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Message string    `json:"message,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

// APIError is the machine-readable error payload of a failed response.
// Message is safe to show to end users; no internal detail crosses the
// API boundary.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Well-known error codes used in failure envelopes.
const (
	CodeValidationError = "VALIDATION_ERROR"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeCeremonyFailed  = "CEREMONY_FAILED"
	CodeInternalError   = "INTERNAL_ERROR"
)

// LoginResponse is the payload of a successful password or hardware-key
// login: a fresh access/refresh token pair plus the public user view.
type LoginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         User   `json:"user"`
}

// RefreshResponse is the payload of a successful token refresh.
type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
}
