package script

import (
	"strings"
	"testing"

	"escape-quiz-service/internal/domain"
)

func TestBuiltinScriptsValidate(t *testing.T) {
	all, err := Builtin()
	if err != nil {
		t.Fatalf("builtin: %v", err)
	}
	for _, id := range []string{"principals-office", "gym-showdown", "lightning-round"} {
		if _, ok := all[id]; !ok {
			t.Fatalf("missing builtin script %s", id)
		}
	}
	if all["principals-office"].Mode != domain.ModeStrict {
		t.Fatalf("principals-office should be strict")
	}
	if all["gym-showdown"].Mode != domain.ModeHint {
		t.Fatalf("gym-showdown should be hint mode")
	}
	if got := all["lightning-round"].Len(); got != 3 {
		t.Fatalf("lightning-round should have 3 items, got %d", got)
	}
}

func TestHintsNeverContainAnswers(t *testing.T) {
	for _, s := range MustBuiltin() {
		for _, item := range s.Items {
			if item.Hint == "" {
				continue
			}
			if strings.Contains(item.Hint, item.Answer) {
				t.Fatalf("script %s item %d: hint %q contains answer %q", s.ID, item.Ordinal, item.Hint, item.Answer)
			}
		}
	}
}

func TestValidateRejectsLeakyHint(t *testing.T) {
	s := domain.Script{
		ID:   "bad",
		Mode: domain.ModeHint,
		Items: []domain.Item{
			{Ordinal: 1, Prompt: "q", Answer: "弁天", Hint: "答えは弁天ばい"},
		},
	}
	if err := Validate(s); err == nil {
		t.Fatalf("expected validation error for hint containing answer")
	}
}

func TestValidateRejectsBadOrdinals(t *testing.T) {
	s := domain.Script{
		ID:   "bad-ordinals",
		Mode: domain.ModeStrict,
		Items: []domain.Item{
			{Ordinal: 2, Prompt: "q", Answer: "a"},
		},
	}
	if err := Validate(s); err == nil {
		t.Fatalf("expected validation error for non-sequential ordinals")
	}
}

func TestItemAtBounds(t *testing.T) {
	s := MustBuiltin()["lightning-round"]
	if _, err := s.ItemAt(0); err != nil {
		t.Fatalf("item 0: %v", err)
	}
	if _, err := s.ItemAt(s.Len()); err != domain.ErrItemOutOfRange {
		t.Fatalf("expected out of range, got %v", err)
	}
}
