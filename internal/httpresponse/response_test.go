package httpresponse

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJSON(zap.NewNop().Sugar(), w, 201, map[string]int{"plies": 4})

	if w.Code != 201 {
		t.Errorf("status = %d, want 201", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("content type = %q", ct)
	}
	var body map[string]int
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if body["plies"] != 4 {
		t.Errorf("body = %v", body)
	}
}

func TestWriteErrorEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(zap.NewNop().Sugar(), w, 404, "Game not found")

	if w.Code != 404 {
		t.Errorf("status = %d, want 404", w.Code)
	}
	var body ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if body.Error != "Game not found" {
		t.Errorf("error = %q", body.Error)
	}
}

func TestWriteJSONUnmarshalableBody(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJSON(zap.NewNop().Sugar(), w, 200, func() {})

	if w.Code != 500 {
		t.Errorf("status = %d, want 500", w.Code)
	}
	var body ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("fallback body is not JSON: %v", err)
	}
	if body.Error != "Internal server error" {
		t.Errorf("error = %q", body.Error)
	}
}
