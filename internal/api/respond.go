package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"sincelast/internal/apperr"
	"sincelast/internal/bootstrap/logging"
	"sincelast/internal/errs"
	"sincelast/internal/validate"
)

type errorBody struct {
	Message    string `json:"message"`
	Code       string `json:"code,omitempty"`
	Field      string `json:"field,omitempty"`
	StatusCode int    `json:"statusCode"`
}

type errorResponse struct {
	Success bool      `json:"success"`
	Error   errorBody `json:"error"`
}

type validationResponse struct {
	Success bool                  `json:"success"`
	Error   errorBody             `json:"error"`
	Errors  []validate.FieldError `json:"errors"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// errorBodyOf maps the error taxonomy onto a wire body and HTTP status.
// Untagged errors surface as an opaque 500.
func errorBodyOf(err error) (errorBody, int) {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return errorBody{
			Message:    ae.Message,
			Code:       string(ae.Kind),
			Field:      ae.Field,
			StatusCode: ae.StatusCode(),
		}, ae.StatusCode()
	}
	return errorBody{
		Message:    "An unexpected error occurred",
		StatusCode: http.StatusInternalServerError,
	}, http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	body, status := errorBodyOf(err)
	if body.Code == "" || body.Code == string(apperr.KindDatabase) {
		logging.Error(r.Context(), "request failed", slog.Any("err", errs.Loggable(err)))
	}
	writeJSON(w, status, errorResponse{Error: body})
}

// writeValidation reports every accumulated field violation with a 400.
func writeValidation(w http.ResponseWriter, result validate.Result) {
	writeJSON(w, http.StatusBadRequest, validationResponse{
		Error: errorBody{
			Message:    "Validation failed",
			Code:       string(apperr.KindValidation),
			StatusCode: http.StatusBadRequest,
		},
		Errors: result.Errors,
	})
}

func writeNotFound(w http.ResponseWriter, r *http.Request, resource string) {
	writeError(w, r, apperr.NotFound(resource))
}
