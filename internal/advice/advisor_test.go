package advice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"escape-quiz-service/internal/ai"
)

type stubChat struct {
	reply    string
	err      error
	system   string
	messages []ai.Message
}

func (s *stubChat) Complete(_ context.Context, system string, messages []ai.Message) (string, error) {
	s.system = system
	s.messages = messages
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func TestAdviseCarriesPersonaAndHistory(t *testing.T) {
	chat := &stubChat{reply: "水分をしっかりとってくださいね♪"}
	advisor := NewAdvisor(chat)
	p, err := Lookup("kokoro")
	if err != nil {
		t.Fatal(err)
	}

	history := []ai.Message{
		{Role: ai.RoleUser, Content: "頭が痛いです"},
		{Role: ai.RoleAssistant, Content: "大丈夫ですか？"},
	}
	reply := advisor.Advise(context.Background(), p, history, "どうしたらいいですか")

	if reply.Fallback {
		t.Fatal("expected model-backed reply")
	}
	if reply.Text != "水分をしっかりとってくださいね♪" {
		t.Errorf("Text = %q", reply.Text)
	}
	if !strings.Contains(chat.system, "こころ") {
		t.Errorf("system instruction missing persona, got %q", chat.system)
	}
	if len(chat.messages) != 3 {
		t.Fatalf("got %d messages, want history + input", len(chat.messages))
	}
	last := chat.messages[len(chat.messages)-1]
	if last.Role != ai.RoleUser || last.Content != "どうしたらいいですか" {
		t.Errorf("last message = %+v", last)
	}
}

func TestAdviseBoundsHistory(t *testing.T) {
	chat := &stubChat{reply: "ok"}
	advisor := NewAdvisor(chat)
	p, _ := Lookup("kokoro")

	var history []ai.Message
	for i := 0; i < historyTail*2; i++ {
		history = append(history, ai.Message{Role: ai.RoleUser, Content: fmt.Sprintf("turn %d", i)})
	}
	advisor.Advise(context.Background(), p, history, "last question")

	if len(chat.messages) != historyTail+1 {
		t.Fatalf("got %d messages, want %d", len(chat.messages), historyTail+1)
	}
	if chat.messages[0].Content != fmt.Sprintf("turn %d", historyTail) {
		t.Errorf("history not tail-bounded, first message %q", chat.messages[0].Content)
	}
}

func TestAdviseApologizesOnError(t *testing.T) {
	chat := &stubChat{err: errors.New("quota exceeded")}
	advisor := NewAdvisor(chat)
	p, _ := Lookup("kokoro")

	reply := advisor.Advise(context.Background(), p, nil, "こんにちは")
	if !reply.Fallback {
		t.Fatal("expected apology fallback")
	}
	if reply.Text != p.Apology {
		t.Errorf("Text = %q, want apology line", reply.Text)
	}
}

func TestAdviseApologizesOnEmptyReply(t *testing.T) {
	chat := &stubChat{reply: "   "}
	advisor := NewAdvisor(chat)
	p, _ := Lookup("kokoro")

	reply := advisor.Advise(context.Background(), p, nil, "こんにちは")
	if !reply.Fallback {
		t.Fatal("expected apology fallback on blank reply")
	}
}

func TestAdviseWithoutClientApologizes(t *testing.T) {
	advisor := NewAdvisor(nil)
	p, _ := Lookup("kokoro")

	reply := advisor.Advise(context.Background(), p, nil, "こんにちは")
	if !reply.Fallback || reply.Text != p.Apology {
		t.Fatalf("expected apology, got %+v", reply)
	}
}

func TestGreetUsesScriptedLine(t *testing.T) {
	advisor := NewAdvisor(nil)
	p, _ := Lookup("kokoro")

	greet := advisor.Greet(p)
	if !strings.Contains(greet.Text, "看護師のこころ") {
		t.Errorf("greeting = %q", greet.Text)
	}
	if greet.Fallback {
		t.Error("greeting must not be marked fallback")
	}
}

func TestLookupUnknownPersona(t *testing.T) {
	if _, err := Lookup("nobody"); err == nil {
		t.Fatal("expected error")
	}
}
