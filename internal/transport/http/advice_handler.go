package http

import (
	"encoding/json"
	"net/http"

	"escape-quiz-service/internal/advice"
	"escape-quiz-service/internal/ai"
)

// AdviceHandler exposes the companion chat characters over plain HTTP.
// Conversation history lives with the client, so the endpoint is stateless.
type AdviceHandler struct {
	advisor *advice.Advisor
}

func NewAdviceHandler(advisor *advice.Advisor) *AdviceHandler {
	return &AdviceHandler{advisor: advisor}
}

type adviceRequest struct {
	PersonaID string       `json:"personaId"`
	Messages  []ai.Message `json:"messages"`
	Text      string       `json:"text"`
}

// Advise returns one companion reply. An empty text returns the persona's
// scripted greeting, which is how a conversation starts.
func (h *AdviceHandler) Advise(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req adviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	persona, err := advice.Lookup(req.PersonaID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if req.Text == "" {
		writeJSON(w, http.StatusOK, h.advisor.Greet(persona))
		return
	}
	writeJSON(w, http.StatusOK, h.advisor.Advise(r.Context(), persona, req.Messages, req.Text))
}
