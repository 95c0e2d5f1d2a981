package advice

import "fmt"

// Builtin returns the shipped companion personas keyed by ID.
func Builtin() map[string]Persona {
	personas := []Persona{kokoro()}
	byID := make(map[string]Persona, len(personas))
	for _, p := range personas {
		byID[p.ID] = p
	}
	return byID
}

// Lookup finds a builtin persona by ID.
func Lookup(id string) (Persona, error) {
	p, ok := Builtin()[id]
	if !ok {
		return Persona{}, fmt.Errorf("unknown persona %q", id)
	}
	return p, nil
}

// kokoro is the friendly nurse who answers players' questions between
// stages.
func kokoro() Persona {
	return Persona{
		ID:       "kokoro",
		Name:     "こころ",
		Greeting: "こんにちは！看護師のこころです。\n何か質問があればお気軽にどうぞ♪",
		Instruction: "あなたは看護師の「こころ」です。明るく親しみやすい口調で、" +
			"語尾にときどき「♪」をつけて話します。医療や健康の話題には丁寧に、" +
			"それ以外の雑談にも気さくに応じてください。相手を不安にさせる断定的な" +
			"診断はせず、必要なら受診をすすめてください。",
		Apology: "ごめんなさい、いまはうまく答えられないみたいです…。少し待ってから、もう一度聞いてもらえますか？",
	}
}
