package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func respond(t *testing.T, err error, verbose bool) (int, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	RespondWithAppError(c, err, verbose)

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return w.Code, body
}

func TestRespondWithAppErrorHidesInternalCause(t *testing.T) {
	code, body := respond(t, Internal("Failed to load booking", errors.New("pq: connection refused")), false)
	if code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", code)
	}
	if body["error"] != "Internal server error" {
		t.Errorf("error = %v", body["error"])
	}
	if _, ok := body["details"]; ok {
		t.Error("details must not be present outside development")
	}
}

func TestRespondWithAppErrorVerbose(t *testing.T) {
	_, body := respond(t, Internal("Failed to load booking", errors.New("pq: connection refused")), true)
	if body["details"] == nil {
		t.Error("expected details in verbose mode")
	}
}

func TestRespondWithAppErrorFields(t *testing.T) {
	code, body := respond(t, InvalidRange("end_date"), false)
	if code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", code)
	}
	if body["error"] != "End date must be after start date" {
		t.Errorf("error = %v", body["error"])
	}
	details, ok := body["details"].(map[string]any)
	if !ok || details["end_date"] == nil {
		t.Errorf("details = %v, want end_date entry", body["details"])
	}
}
