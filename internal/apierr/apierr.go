// Package apierr defines the JSON error surface of the service:
// validation failures carry a per-field message list, everything else
// is an opaque status plus a generic message.
package apierr

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/mkezman/coindrop/pkg"

	log "github.com/sirupsen/logrus"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, fe := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

func WriteValidationError(w http.ResponseWriter, ve *ValidationError) {
	type validationResponse struct {
		Error  string       `json:"error"`
		Fields []FieldError `json:"fields"`
	}
	respJson, err := json.Marshal(validationResponse{
		Error:  "validation failed",
		Fields: ve.Fields,
	})
	if err != nil {
		log.Errorf("marshal validation error: %s", err)
		WriteInternal(w)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, http.StatusBadRequest, respJson)
}

func WriteUnauthenticated(w http.ResponseWriter) {
	pkg.WriteJSONError(w, http.StatusUnauthorized, "unauthenticated")
}

func WriteNotFound(w http.ResponseWriter, message string) {
	pkg.WriteJSONError(w, http.StatusNotFound, message)
}

func WriteConflict(w http.ResponseWriter, message string) {
	pkg.WriteJSONError(w, http.StatusConflict, message)
}

// WriteInternal deliberately keeps the message generic, details stay in
// the server logs.
func WriteInternal(w http.ResponseWriter) {
	pkg.WriteJSONError(w, http.StatusInternalServerError, "internal server error")
}
