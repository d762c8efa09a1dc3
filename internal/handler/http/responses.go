package http

import (
	"net/http"

	"github.com/applock/applock-server/internal/logger"
	"github.com/applock/applock-server/internal/utils"
	"github.com/applock/applock-server/models"
)

// respondSuccess writes the uniform success envelope with the given data
// payload and status code.
func respondSuccess(w http.ResponseWriter, r *http.Request, data any, statusCode int) {
	if _, err := utils.WriteJSON(w, models.Response{Success: true, Data: data}, statusCode); err != nil {
		logger.FromRequest(r).Err(err).Msg("writing success response failed")
	}
}

// respondNotFound is the router-level fallback for unknown paths,
// rendered in the same envelope as every other failure.
func respondNotFound(w http.ResponseWriter, r *http.Request) {
	envelope := models.Response{
		Success: false,
		Error:   &models.APIError{Code: models.CodeNotFound, Message: "resource not found"},
	}
	if _, err := utils.WriteJSON(w, envelope, http.StatusNotFound); err != nil {
		logger.FromRequest(r).Err(err).Msg("writing not-found response failed")
	}
}

// respondMethodNotAllowed is the router-level fallback for known paths
// hit with an unsupported method.
func respondMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	envelope := models.Response{
		Success: false,
		Error:   &models.APIError{Code: models.CodeValidationError, Message: "method not allowed"},
	}
	if _, err := utils.WriteJSON(w, envelope, http.StatusMethodNotAllowed); err != nil {
		logger.FromRequest(r).Err(err).Msg("writing method-not-allowed response failed")
	}
}

// respondError resolves err to its HTTP rendering and writes the uniform
// failure envelope. Unknown errors become a bare 500; the specific cause
// stays in the logs.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	failure := failureFromError(err)

	log := logger.FromRequest(r)
	if failure.status >= http.StatusInternalServerError {
		log.Err(err).Msg("request failed with internal error")
	} else {
		log.Debug().Err(err).Int("status", failure.status).Msg("request rejected")
	}

	envelope := models.Response{
		Success: false,
		Error:   &models.APIError{Code: failure.code, Message: failure.message},
	}
	if _, err := utils.WriteJSON(w, envelope, failure.status); err != nil {
		log.Err(err).Msg("writing error response failed")
	}
}
