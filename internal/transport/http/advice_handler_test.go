package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"escape-quiz-service/internal/advice"
)

func TestAdviceHandlerGreetsOnEmptyText(t *testing.T) {
	handler := NewAdviceHandler(advice.NewAdvisor(nil))

	req := httptest.NewRequest(http.MethodPost, "/advice", strings.NewReader(`{"personaId": "kokoro"}`))
	rec := httptest.NewRecorder()
	handler.Advise(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", rec.Code)
	}
	var reply advice.Reply
	if err := json.Unmarshal(rec.Body.Bytes(), &reply); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.Contains(reply.Text, "看護師のこころ") {
		t.Errorf("expected greeting, got %q", reply.Text)
	}
	if reply.Fallback {
		t.Error("greeting must not be marked fallback")
	}
}

func TestAdviceHandlerApologizesWithoutModel(t *testing.T) {
	handler := NewAdviceHandler(advice.NewAdvisor(nil))

	body := `{"personaId": "kokoro", "text": "頭が痛いです"}`
	req := httptest.NewRequest(http.MethodPost, "/advice", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Advise(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", rec.Code)
	}
	var reply advice.Reply
	if err := json.Unmarshal(rec.Body.Bytes(), &reply); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !reply.Fallback {
		t.Error("expected apology fallback without a model")
	}
}

func TestAdviceHandlerUnknownPersona(t *testing.T) {
	handler := NewAdviceHandler(advice.NewAdvisor(nil))

	req := httptest.NewRequest(http.MethodPost, "/advice", strings.NewReader(`{"personaId": "nobody", "text": "hi"}`))
	rec := httptest.NewRecorder()
	handler.Advise(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", rec.Code)
	}
}

func TestAdviceHandlerRejectsBadBody(t *testing.T) {
	handler := NewAdviceHandler(advice.NewAdvisor(nil))

	req := httptest.NewRequest(http.MethodPost, "/advice", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	handler.Advise(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}
