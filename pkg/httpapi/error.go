package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/irrigodev/irrigationdesign/pkg/serrors"
)

// ErrorEnvelope standardizes JSON error responses for API namespaces.
type ErrorEnvelope struct {
	Message string              `json:"message"`
	Code    string              `json:"code"`
	Fields  map[string][]string `json:"fields,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	if w == nil {
		return nil
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, code, message string) error {
	return WriteJSON(w, status, &ErrorEnvelope{
		Code:    code,
		Message: message,
	})
}

// WriteValidationErrors renders field-scoped messages as a 400 so clients can
// attach them to form inputs.
func WriteValidationErrors(w http.ResponseWriter, verrs serrors.ValidationErrors) error {
	return WriteJSON(w, http.StatusBadRequest, &ErrorEnvelope{
		Code:    "VALIDATION_ERROR",
		Message: verrs.Error(),
		Fields:  verrs,
	})
}

func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	return nil
}

// WriteFailure maps a service error to its HTTP representation. Unknown errors
// become an opaque 500 so internals never leak to clients.
func WriteFailure(w http.ResponseWriter, err error) error {
	var verrs serrors.ValidationErrors
	if errors.As(err, &verrs) {
		return WriteValidationErrors(w, verrs)
	}
	var base *serrors.BaseError
	if errors.As(err, &base) {
		return WriteError(w, statusForCode(base.Code), base.Code, base.Message)
	}
	return WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
}

func statusForCode(code string) int {
	switch code {
	case "NOT_FOUND":
		return http.StatusNotFound
	case "PERMISSION_DENIED":
		return http.StatusForbidden
	case "UNAUTHORIZED":
		return http.StatusUnauthorized
	case "REFERENTIAL_INTEGRITY":
		return http.StatusConflict
	case "VALIDATION_ERROR":
		return http.StatusBadRequest
	case "TRANSIENT_FAULT":
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
