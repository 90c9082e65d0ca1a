package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tradepulse/backend/internal/pkg/errors"
	"github.com/tradepulse/backend/internal/pkg/utils"
	"github.com/tradepulse/backend/internal/pkg/validator"
)

// pathParam reads a chi route parameter.
func pathParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}

// decodeAndValidate decodes the JSON body into req and runs validation.
// It writes the error response itself and reports whether to continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, val *validator.Validator, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return false
	}
	if verrs := val.Validate(req); len(verrs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", verrs))
		return false
	}
	return true
}
