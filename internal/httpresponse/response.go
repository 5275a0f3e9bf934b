package httpresponse

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

const internalErrorJSON = "{\"error\": \"Internal server error\"}"

// WriteJSON writes body as the response with the given status code.
func WriteJSON(log *zap.SugaredLogger, w http.ResponseWriter, status int, body any) {
	jsonByte, err := json.Marshal(body)
	if err != nil {
		log.Errorf("response marshal error: %v", err)
		WriteInternalErrorResponse(w)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err = w.Write(jsonByte); err != nil {
		log.Errorf("response write error: %v", err)
	}
}

// WriteError writes the error envelope with the given status code.
func WriteError(log *zap.SugaredLogger, w http.ResponseWriter, status int, msg string) {
	log.Debugf("responding %d: %s", status, msg)
	WriteJSON(log, w, status, ErrorResponse{Error: msg})
}

func WriteInternalErrorResponse(w http.ResponseWriter) {
	// implementation similar to http.Error, only difference is the Content-type
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(500)
	_, _ = fmt.Fprintln(w, internalErrorJSON)
}
