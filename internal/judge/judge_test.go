package judge

import (
	"context"
	"errors"
	"testing"

	"escape-quiz-service/internal/ai"
	"escape-quiz-service/internal/domain"
)

type stubChat struct {
	reply string
	err   error
	calls int
}

func (s *stubChat) Complete(_ context.Context, _ string, _ []ai.Message) (string, error) {
	s.calls++
	return s.reply, s.err
}

func kamakuraItem() domain.Item {
	return domain.Item{
		Ordinal:    1,
		Prompt:     "源頼朝が征夷大将軍に任命されたのは何年や？",
		Answer:     "1192年",
		Acceptable: []string{"1192"},
		Keywords:   []string{"1192"},
	}
}

func TestFallbackAcceptsCanonicalAndAcceptable(t *testing.T) {
	item := kamakuraItem()
	for _, answer := range append([]string{item.Answer}, item.Acceptable...) {
		if !Fallback(item, answer) {
			t.Fatalf("fallback rejected %q", answer)
		}
		if !Fallback(item, "  "+answer+"  ") {
			t.Fatalf("fallback rejected padded %q", answer)
		}
	}
}

func TestFallbackRejectsEmptyAndWhitespace(t *testing.T) {
	item := kamakuraItem()
	for _, submitted := range []string{"", "   ", "\t\n"} {
		if Fallback(item, submitted) {
			t.Fatalf("fallback accepted %q", submitted)
		}
	}
}

func TestFallbackKeywordMajority(t *testing.T) {
	item := domain.Item{
		Ordinal:  1,
		Prompt:   "学食の牛丼の名称と通称は？",
		Answer:   "にくめし",
		Keywords: []string{"にくめし", "肉", "牛丼"},
	}
	// 2 of 3 keywords present, no exact match: still correct.
	if !Fallback(item, "たしか肉の牛丼やった") {
		t.Fatalf("expected keyword majority to pass")
	}
	// 1 of 3 is below ceil(3/2)=2.
	if Fallback(item, "牛丼のことかな") {
		t.Fatalf("expected single keyword to fail")
	}
}

func TestFallbackEmptyKeywordsMeansExactOnly(t *testing.T) {
	item := domain.Item{Ordinal: 1, Prompt: "q", Answer: "弁天"}
	if Fallback(item, "弁天のあたり") {
		t.Fatalf("substring must not pass without keywords")
	}
	if !Fallback(item, "弁天") {
		t.Fatalf("exact match must pass")
	}
}

func TestJudgeParsesAffirmative(t *testing.T) {
	// "know" and "not" must not read as the word "no".
	for _, reply := range []string{"はい", "Yes.", "正解ばい！", "YES, correct", "Yes, as far as I know"} {
		chat := &stubChat{reply: reply}
		v := NewService(chat).Judge(context.Background(), kamakuraItem(), "建久3年", nil)
		if !v.Correct || v.Fallback {
			t.Fatalf("reply %q: expected primary correct verdict, got %+v", reply, v)
		}
	}
}

func TestJudgeParsesNegative(t *testing.T) {
	// 不正解 and incorrect embed their affirmative counterparts; the
	// negative reading must win.
	for _, reply := range []string{"いいえ", "いいえ、不正解です", "Incorrect"} {
		chat := &stubChat{reply: reply}
		v := NewService(chat).Judge(context.Background(), kamakuraItem(), "1600年", nil)
		if v.Correct || v.Fallback {
			t.Fatalf("reply %q: expected primary incorrect verdict, got %+v", reply, v)
		}
	}
}

func TestJudgeFallsBackOnError(t *testing.T) {
	chat := &stubChat{err: errors.New("quota exceeded")}
	v := NewService(chat).Judge(context.Background(), kamakuraItem(), "1192", nil)
	if !v.Correct || !v.Fallback {
		t.Fatalf("expected fallback correct verdict, got %+v", v)
	}
}

func TestJudgeFallsBackOnGibberish(t *testing.T) {
	chat := &stubChat{reply: "本日は晴天なり"}
	v := NewService(chat).Judge(context.Background(), kamakuraItem(), "1192年", nil)
	if !v.Correct || !v.Fallback {
		t.Fatalf("expected fallback after unparseable reply, got %+v", v)
	}
}

func TestJudgeWithoutClientUsesFallback(t *testing.T) {
	v := NewService(nil).Judge(context.Background(), kamakuraItem(), "1192", nil)
	if !v.Correct || !v.Fallback {
		t.Fatalf("expected fallback verdict, got %+v", v)
	}
}
