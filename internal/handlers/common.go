// Package handlers maps HTTP requests onto the decision and narrative
// services.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"branchpoint-backend/pkg/api"
	appErrors "branchpoint-backend/pkg/errors"
)

// decodeJSON parses the request body into dst. Empty bodies are allowed so
// optional-body endpoints behave like missing fields instead of 400s on a
// missing body.
func decodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if err != nil && !errors.Is(err, io.EOF) {
		return appErrors.NewValidation("Invalid JSON body")
	}
	return nil
}

// respondError maps the error taxonomy onto status codes: validation 400,
// not-found 404, everything else 500. Internal errors are logged with the
// full chain; client messages stay generic.
func respondError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case appErrors.IsValidation(err):
		api.Error(w, http.StatusBadRequest, appErrors.Message(err))
	case appErrors.IsNotFound(err):
		api.Error(w, http.StatusNotFound, appErrors.Message(err))
	default:
		logger.Error("request failed", zap.Error(err))
		api.Error(w, http.StatusInternalServerError, "Internal server error")
	}
}
