package http

import (
	"encoding/json"
	"net/http"

	"escape-quiz-service/internal/grader"
)

// GradeHandler exposes the free-text tasks over plain HTTP. Grading is
// stateless, so no session is involved.
type GradeHandler struct {
	service *grader.Service
}

func NewGradeHandler(service *grader.Service) *GradeHandler {
	return &GradeHandler{service: service}
}

type gradeRequest struct {
	TaskID string `json:"taskId"`
	Text   string `json:"text"`
}

type taskSummary struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Prompt string `json:"prompt"`
}

// ListTasks returns the available task IDs and prompts.
func (h *GradeHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var summaries []taskSummary
	for _, task := range grader.Builtin() {
		summaries = append(summaries, taskSummary{ID: task.ID, Title: task.Title, Prompt: task.Prompt})
	}
	writeJSON(w, http.StatusOK, summaries)
}

// Grade scores a submission against a builtin task.
func (h *GradeHandler) Grade(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req gradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	task, err := grader.Lookup(req.TaskID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	result := h.service.Grade(r.Context(), task, req.Text)
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
