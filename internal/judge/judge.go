// Package judge decides whether a free-text submission answers a scripted
// question. The primary mechanism is a chat-model classification call; a
// deterministic local check covers remote failures so players never see an
// error where a verdict belongs.
package judge

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"unicode"

	"escape-quiz-service/internal/ai"
	"escape-quiz-service/internal/domain"
)

// historyTail bounds how much transcript context rides along on the
// classification call.
const historyTail = 6

// Japanese verdict tokens are unambiguous substrings; English ones are
// matched as whole words so "know" is not read as "no".
var (
	negativeTokens    = []string{"いいえ", "不正解", "違います"}
	negativeWords     = []string{"no", "incorrect"}
	affirmativeTokens = []string{"はい", "正解"}
	affirmativeWords  = []string{"yes", "correct"}
)

// Service is the two-tier judge. A nil chat client skips straight to the
// deterministic check (useful without API keys and in tests).
type Service struct {
	chat ai.ChatClient
}

func NewService(chat ai.ChatClient) *Service {
	return &Service{chat: chat}
}

// Judge classifies one submission. It never returns an error: a failed or
// unparseable remote call falls back to the deterministic check, and the
// failure is only logged.
func (s *Service) Judge(ctx context.Context, item domain.Item, submitted string, history []domain.Line) domain.Verdict {
	if s.chat == nil {
		return domain.Verdict{Correct: Fallback(item, submitted), Fallback: true}
	}

	reply, err := s.chat.Complete(ctx, classifierInstruction, s.buildMessages(item, submitted, history))
	if err != nil {
		log.Printf("judge: remote call failed, using fallback: %v", err)
		return domain.Verdict{Correct: Fallback(item, submitted), Fallback: true}
	}
	verdict, err := parseReply(reply)
	if err != nil {
		log.Printf("judge: unparseable reply %q, using fallback: %v", reply, err)
		return domain.Verdict{Correct: Fallback(item, submitted), Fallback: true}
	}
	return domain.Verdict{Correct: verdict}
}

const classifierInstruction = `あなたはクイズの採点係です。
質問、正解、許容される別解、キーワードを渡します。
参加者の回答が意味的に正しいかどうかだけを判定してください。
言い換えや表記ゆれは正解として扱って構いません。
「はい」または「いいえ」のどちらか一語だけで答えてください。他の言葉は出力しないでください。`

func (s *Service) buildMessages(item domain.Item, submitted string, history []domain.Line) []ai.Message {
	var sb strings.Builder
	fmt.Fprintf(&sb, "質問: %s\n", item.Prompt)
	fmt.Fprintf(&sb, "正解: %s\n", item.Answer)
	if len(item.Acceptable) > 0 {
		fmt.Fprintf(&sb, "別解: %s\n", strings.Join(item.Acceptable, " / "))
	}
	if len(item.Keywords) > 0 {
		fmt.Fprintf(&sb, "キーワード: %s\n", strings.Join(item.Keywords, " / "))
	}
	fmt.Fprintf(&sb, "参加者の回答: %s\n", submitted)
	sb.WriteString("この回答は正解ですか？「はい」か「いいえ」で答えてください。")

	msgs := make([]ai.Message, 0, historyTail+1)
	start := len(history) - historyTail
	if start < 0 {
		start = 0
	}
	for _, line := range history[start:] {
		role := ai.RoleAssistant
		if line.Speaker == domain.SpeakerPlayer {
			role = ai.RoleUser
		}
		msgs = append(msgs, ai.Message{Role: role, Content: line.Text})
	}
	return append(msgs, ai.Message{Role: ai.RoleUser, Content: sb.String()})
}

// parseReply extracts a yes/no verdict permissively: an explicit negative
// token anywhere in the reply counts as no, an affirmative as yes, anything
// else is unparseable and falls back. Negatives go first since 不正解 and
// incorrect contain their affirmative counterparts.
func parseReply(reply string) (bool, error) {
	lowered := strings.ToLower(strings.TrimSpace(reply))
	if lowered == "" {
		return false, domain.ErrJudgeUnavailable
	}
	words := splitWords(lowered)
	for _, token := range negativeTokens {
		if strings.Contains(lowered, token) {
			return false, nil
		}
	}
	for _, word := range negativeWords {
		if words[word] {
			return false, nil
		}
	}
	for _, token := range affirmativeTokens {
		if strings.Contains(lowered, token) {
			return true, nil
		}
	}
	for _, word := range affirmativeWords {
		if words[word] {
			return true, nil
		}
	}
	return false, fmt.Errorf("no verdict token in reply")
}

func splitWords(s string) map[string]bool {
	words := make(map[string]bool)
	for _, field := range strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	}) {
		words[field] = true
	}
	return words
}

// Fallback is the deterministic local check: exact match against the
// canonical or acceptable answers, else a keyword majority. An empty keyword
// set degenerates to exact matching only, which is the intended looseness
// for free-text quiz answers.
func Fallback(item domain.Item, submitted string) bool {
	trimmed := strings.TrimSpace(submitted)
	if trimmed == "" {
		return false
	}
	if strings.EqualFold(trimmed, item.Answer) {
		return true
	}
	for _, alt := range item.Acceptable {
		if strings.EqualFold(trimmed, alt) {
			return true
		}
	}
	if len(item.Keywords) == 0 {
		return false
	}
	lowered := strings.ToLower(trimmed)
	matched := 0
	for _, kw := range item.Keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(kw)) {
			matched++
		}
	}
	need := int(math.Ceil(float64(len(item.Keywords)) / 2))
	return matched >= need
}
