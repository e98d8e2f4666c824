package pkg

import (
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"
)

var ContentType = struct {
	JSON string
	Text string
	CSV  string
}{
	JSON: "application/json",
	Text: "text/plain",
	CSV:  "text/csv",
}

func WriteResponse(w http.ResponseWriter, contentType string, statusCode int, message string) {
	WriteResponseBytes(w, contentType, statusCode, []byte(message))
}

func WriteResponseBytes(w http.ResponseWriter, contentType string, statusCode int, message []byte) {
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.WriteHeader(statusCode)
	if _, err := w.Write(message); err != nil {
		log.Errorf("failed to write response [%s]: %s", message, err)
	}
}

func WriteTextResponseOK(w http.ResponseWriter, message string) {
	WriteResponse(w, ContentType.Text, http.StatusOK, message)
}

func WriteJSONResponseOK(w http.ResponseWriter, jsonMessage string) {
	WriteResponse(w, ContentType.JSON, http.StatusOK, jsonMessage)
}

func WriteJSONBytesResponseOK(w http.ResponseWriter, jsonBytes []byte) {
	WriteResponseBytes(w, ContentType.JSON, http.StatusOK, jsonBytes)
}

// WriteJSONError writes a single-message JSON error object, keeping the
// message generic so that internals are not leaked to the caller.
func WriteJSONError(w http.ResponseWriter, statusCode int, errMessage string) {
	WriteResponse(w, ContentType.JSON, statusCode, fmt.Sprintf(`{"error":%q}`, errMessage))
}
