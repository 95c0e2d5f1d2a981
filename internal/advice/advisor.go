// Package advice hosts the free-form chat companion characters that sit
// beside the quiz stages. Replies are open-ended conversation, so there is
// no deterministic fallback; when the model is unreachable the character
// apologizes instead of surfacing an error.
package advice

import (
	"context"
	"log"
	"strings"

	"escape-quiz-service/internal/ai"
)

// historyTail bounds how much prior conversation rides along on each call.
const historyTail = 20

// Persona is one scripted companion character.
type Persona struct {
	ID          string
	Name        string
	Greeting    string
	Instruction string
	Apology     string
}

// Reply is one turn of companion output.
type Reply struct {
	PersonaID string `json:"personaId"`
	Text      string `json:"text"`
	Fallback  bool   `json:"fallback"`
}

// Advisor answers free-form questions in a persona's voice. A nil chat
// client always replies with the persona's apology line.
type Advisor struct {
	chat ai.ChatClient
}

func NewAdvisor(chat ai.ChatClient) *Advisor {
	return &Advisor{chat: chat}
}

// Greet returns the persona's scripted opening line.
func (a *Advisor) Greet(p Persona) Reply {
	return Reply{PersonaID: p.ID, Text: p.Greeting}
}

// Advise produces one conversational reply. It never returns an error: any
// model failure degrades to the persona's apology line.
func (a *Advisor) Advise(ctx context.Context, p Persona, history []ai.Message, input string) Reply {
	if a.chat == nil {
		return a.apologize(p)
	}

	start := len(history) - historyTail
	if start < 0 {
		start = 0
	}
	msgs := make([]ai.Message, 0, historyTail+1)
	msgs = append(msgs, history[start:]...)
	msgs = append(msgs, ai.Message{Role: ai.RoleUser, Content: input})

	reply, err := a.chat.Complete(ctx, p.Instruction, msgs)
	if err != nil {
		log.Printf("advice: model call failed for %s: %v", p.ID, err)
		return a.apologize(p)
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return a.apologize(p)
	}
	return Reply{PersonaID: p.ID, Text: reply}
}

func (a *Advisor) apologize(p Persona) Reply {
	return Reply{PersonaID: p.ID, Text: p.Apology, Fallback: true}
}
