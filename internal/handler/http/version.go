package http

import (
	"net/http"
)

// getServerVersion reports the running build's version in the standard
// envelope.
func (h *Handler) getServerVersion(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, map[string]string{"version": h.version}, http.StatusOK)
}
