// Package grader scores free-text task submissions against a rubric.
// The model fills in the judgment axes; the length axis is computed
// locally so it cannot drift with the model's mood.
package grader

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"escape-quiz-service/internal/ai"
)

// Band buckets a total score for the examiner's reaction.
type Band int

const (
	BandLow Band = iota
	BandMid
	BandHigh
)

const (
	axisMax  = 25
	bandMid  = 60
	bandHigh = 80
)

// Axis is one model-scored rubric dimension worth up to 25 points.
type Axis struct {
	Key   string
	Label string
	Note  string
}

// Task is a gradeable free-text assignment.
type Task struct {
	ID     string
	Title  string
	Role   string
	Prompt string
	Axes   []Axis
	// TargetLength, when non-zero, adds a locally computed length axis
	// that peaks at the target character count.
	TargetLength int

	VerdictLow  string
	VerdictMid  string
	VerdictHigh string
}

// AxisScore is one scored rubric dimension with the model's comment.
type AxisScore struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Score   int    `json:"score"`
	Comment string `json:"comment"`
}

// Result is a graded submission.
type Result struct {
	TaskID      string      `json:"task_id"`
	Axes        []AxisScore `json:"axes"`
	LengthScore int         `json:"length_score,omitempty"`
	CharCount   int         `json:"char_count"`
	Total       int         `json:"total"`
	Band        Band        `json:"band"`
	Verdict     string      `json:"verdict"`
	Fallback    bool        `json:"fallback"`
}

// Service grades submissions with a chat model, falling back to a
// deterministic local score when no model is available.
type Service struct {
	chat ai.ChatClient
}

func NewService(chat ai.ChatClient) *Service {
	return &Service{chat: chat}
}

// Grade scores a submission against the task rubric. It never returns
// an error: any model failure degrades to the local fallback score.
func (s *Service) Grade(ctx context.Context, task Task, text string) Result {
	charCount := utf8.RuneCountInString(text)

	if s.chat == nil {
		return s.fallback(task, text, charCount)
	}

	reply, err := s.chat.Complete(ctx, buildInstruction(task, charCount), []ai.Message{
		{Role: ai.RoleUser, Content: text},
	})
	if err != nil {
		log.Printf("grader: model call failed, using local score: %v", err)
		return s.fallback(task, text, charCount)
	}

	result, err := s.parseReply(task, reply, charCount)
	if err != nil {
		log.Printf("grader: unusable model reply, using local score: %v", err)
		return s.fallback(task, text, charCount)
	}
	return result
}

// LengthScore awards up to 20 points, dropping one point for every 40
// characters away from the target.
func LengthScore(charCount, target int) int {
	d := charCount - target
	if d < 0 {
		d = -d
	}
	score := 20 - d/40
	if score < 0 {
		return 0
	}
	return score
}

func buildInstruction(task Task, charCount int) string {
	var b strings.Builder
	b.WriteString(task.Role)
	b.WriteString("\n提出された文章を評価し、以下の形式のJSONのみを返してください。\n")
	if task.TargetLength > 0 {
		fmt.Fprintf(&b, "\n現在の文字数は%d文字です（目標は%d文字）。\n", charCount, task.TargetLength)
	}
	b.WriteString("\n{\n")
	for _, axis := range task.Axes {
		fmt.Fprintf(&b, "    \"%s_score\": (0-%dの整数。%s),\n", axis.Key, axisMax, axis.Note)
		fmt.Fprintf(&b, "    \"%s_comment\": \"%sについての評価\",\n", axis.Key, axis.Label)
	}
	if task.TargetLength > 0 {
		fmt.Fprintf(&b, "    \"length_score\": %d,\n", LengthScore(charCount, task.TargetLength))
		b.WriteString("    \"length_comment\": \"文字数に関するコメント\",\n")
	}
	b.WriteString("    \"total_score\": (上記スコアの合計)\n}")
	return b.String()
}

func (s *Service) parseReply(task Task, reply string, charCount int) (Result, error) {
	cleaned := strings.TrimSpace(reply)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return Result{}, fmt.Errorf("parse score json: %w", err)
	}

	result := Result{TaskID: task.ID, CharCount: charCount}
	for _, axis := range task.Axes {
		score, ok := intField(raw, axis.Key+"_score")
		if !ok {
			return Result{}, fmt.Errorf("missing %s_score", axis.Key)
		}
		result.Axes = append(result.Axes, AxisScore{
			Key:     axis.Key,
			Label:   axis.Label,
			Score:   clampAxis(score),
			Comment: stringField(raw, axis.Key+"_comment"),
		})
	}
	// The model echoes length_score but the local value is authoritative.
	if task.TargetLength > 0 {
		result.LengthScore = LengthScore(charCount, task.TargetLength)
	}
	result.Total = total(result)
	result.Band, result.Verdict = bandFor(task, result.Total)
	return result, nil
}

// fallback produces a stable score from the submission alone. Longer,
// non-trivial submissions score better up to the axis ceiling.
func (s *Service) fallback(task Task, text string, charCount int) Result {
	result := Result{TaskID: task.ID, CharCount: charCount, Fallback: true}

	axisScore := 0
	if strings.TrimSpace(text) != "" {
		axisScore = clampAxis(10 + charCount/80)
	}
	for _, axis := range task.Axes {
		result.Axes = append(result.Axes, AxisScore{
			Key:     axis.Key,
			Label:   axis.Label,
			Score:   axisScore,
			Comment: "自動採点による暫定評価です。",
		})
	}
	if task.TargetLength > 0 {
		result.LengthScore = LengthScore(charCount, task.TargetLength)
	}
	result.Total = total(result)
	result.Band, result.Verdict = bandFor(task, result.Total)
	return result
}

func total(r Result) int {
	sum := r.LengthScore
	for _, a := range r.Axes {
		sum += a.Score
	}
	return sum
}

func bandFor(task Task, totalScore int) (Band, string) {
	switch {
	case totalScore < bandMid:
		return BandLow, task.VerdictLow
	case totalScore < bandHigh:
		return BandMid, task.VerdictMid
	default:
		return BandHigh, task.VerdictHigh
	}
}

func clampAxis(score int) int {
	if score < 0 {
		return 0
	}
	if score > axisMax {
		return axisMax
	}
	return score
}

func intField(raw map[string]json.RawMessage, key string) (int, bool) {
	msg, ok := raw[key]
	if !ok {
		return 0, false
	}
	var n int
	if err := json.Unmarshal(msg, &n); err != nil {
		// Some models quote numbers.
		var s string
		if err := json.Unmarshal(msg, &s); err != nil {
			return 0, false
		}
		if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
			return 0, false
		}
	}
	return n, true
}

func stringField(raw map[string]json.RawMessage, key string) string {
	msg, ok := raw[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(msg, &s); err != nil {
		return ""
	}
	return s
}
