// Package script holds the built-in game scripts. Content is fixed per
// variant; sessions only ever read it.
package script

import (
	"fmt"
	"strings"

	"escape-quiz-service/internal/domain"
)

// Validate enforces authoring rules before a script is served. A hint that
// leaks the canonical answer defeats the hint policy, so it is rejected here
// rather than checked at runtime.
func Validate(s domain.Script) error {
	if s.ID == "" {
		return fmt.Errorf("script has no id")
	}
	if len(s.Items) == 0 {
		return fmt.Errorf("script %s has no items", s.ID)
	}
	for i, item := range s.Items {
		if item.Ordinal != i+1 {
			return fmt.Errorf("script %s: item %d has ordinal %d", s.ID, i, item.Ordinal)
		}
		if strings.TrimSpace(item.Answer) == "" {
			return fmt.Errorf("script %s: item %d has no answer", s.ID, item.Ordinal)
		}
		if item.Hint != "" {
			if item.Hint == item.Answer || strings.Contains(item.Hint, item.Answer) {
				return fmt.Errorf("script %s: item %d hint reveals the answer", s.ID, item.Ordinal)
			}
		}
	}
	return nil
}

// Builtin returns the bundled scripts keyed by ID, validated.
func Builtin() (map[string]domain.Script, error) {
	all := map[string]domain.Script{
		principalsOffice.ID: principalsOffice,
		gymShowdown.ID:      gymShowdown,
		lightningRound.ID:   lightningRound,
	}
	for id, s := range all {
		if err := Validate(s); err != nil {
			return nil, fmt.Errorf("builtin script %s: %w", id, err)
		}
	}
	return all, nil
}

// MustBuiltin is for wiring code that treats bad bundled content as fatal.
func MustBuiltin() map[string]domain.Script {
	all, err := Builtin()
	if err != nil {
		panic(err)
	}
	return all
}

// principalsOffice is the first stage: the haunted principal quizzes the
// players with no hints and never reveals an answer.
var principalsOffice = domain.Script{
	ID:   "principals-office",
	Mode: domain.ModeStrict,
	Pin:  "442222",
	Persona: domain.Persona{
		Name: "黒水校長",
		Intro: []string{
			"なんね、あんたら？元の附設にもどしたい？",
			"そんならおいの質問に答えてみんね？卒業生なら、簡単に答えられるやろう。準備はええかね？",
		},
		Praise: []string{
			"おお、正解ばい！",
			"よかよか、次に行くばい。",
		},
		Rejections: []string{
			"なんね、そげん答えで通ると思っとるとか？やり直しばい！",
			"いっちょん分かっとらんやろ。もういっぺん考えてみんね。",
			"こげんもんも分からんとか。附設の卒業生が聞いて呆れるばい。",
		},
		Closing: "おお！正解ばい！さすがは附設の卒業生じゃのう。頭の回転が速かばい！全問正解！さすがじゃ！お前が本当の附設の卒業生じゃと認めよう。",
	},
	Items: []domain.Item{
		{
			Ordinal:    1,
			Prompt:     "鎌倉幕府を開いた源頼朝が征夷大将軍に任命されたのは何年や？",
			Answer:     "1192年",
			Acceptable: []string{"1192"},
			Keywords:   []string{"1192"},
		},
		{
			Ordinal:    2,
			Prompt:     "次の文の空欄に入る最も適切な単語はなんだ  If I ___ more time, I would travel around the world.",
			Answer:     "had",
			Acceptable: []string{"Had", "HAD"},
			Keywords:   []string{"had"},
		},
		{
			Ordinal:    3,
			Prompt:     "細胞の中で、エネルギーを作り出す働きを持つ細胞小器官は何か？",
			Answer:     "ミトコンドリア",
			Acceptable: []string{"みとこんどりあ", "mitochondria"},
			Keywords:   []string{"ミトコンドリア"},
		},
		{
			Ordinal:    4,
			Prompt:     "「いとをかし」の現代語訳として正しいものは？",
			Answer:     "趣がある",
			Acceptable: []string{"おもむきがある", "面白い", "おもしろい"},
			Keywords:   []string{"趣", "面白"},
		},
		{
			Ordinal:    5,
			Prompt:     "ムハンマドが創始した宗教は何か？",
			Answer:     "イスラム教",
			Acceptable: []string{"イスラム", "islam"},
			Keywords:   []string{"イスラム"},
		},
		{
			Ordinal:    6,
			Prompt:     "浪人生が行くクラスの名前は？",
			Answer:     "補修科",
			Acceptable: []string{"ほしゅうか"},
			Keywords:   []string{"補修"},
		},
		{
			Ordinal:    7,
			Prompt:     "附設の裏にあった商店の通称は？",
			Answer:     "裏店",
			Acceptable: []string{"うらみせ", "裏店（うらみせ）"},
			Keywords:   []string{"裏店", "うらみせ"},
		},
		{
			Ordinal:    8,
			Prompt:     "学食の牛丼の名称は？",
			Answer:     "にくめし",
			Acceptable: []string{"肉めし", "肉飯"},
			Keywords:   []string{"にくめし", "肉"},
		},
		{
			Ordinal:    9,
			Prompt:     "高校の文化祭の名前は？",
			Answer:     "男く祭",
			Acceptable: []string{"おとこくさい", "男く祭（おとこくさい）"},
			Keywords:   []string{"男く祭", "おとこくさい"},
		},
		{
			Ordinal:    10,
			Prompt:     "附設高校が共学になった年は？",
			Answer:     "2005年",
			Acceptable: []string{"2005"},
			Keywords:   []string{"2005"},
		},
	},
}

// gymShowdown is the final stage: misses earn a hint, and a second miss on
// the same question reveals the answer and moves on.
var gymShowdown = domain.Script{
	ID:   "gym-showdown",
	Mode: domain.ModeHint,
	Pin:  "442222",
	Persona: domain.Persona{
		Name: "黒水校長",
		Intro: []string{
			"なんね、あんたら？元の附設にもどしたい？",
			"そんならおいの質問に答えてみんね？卒業生なら、簡単に答えられるやろう",
		},
		Praise: []string{
			"ちっ、正解たい。",
			"まぐれやろうばってん、正解ばい。",
		},
		Rejections: []string{
			"ぶっぶー！はずればい！そげんことも知らんとか。",
			"なんばいいよっとか、全然違うばい！",
		},
		Closing: "ちぃぃっ……まさか全問正解かい……俺様が間違っていたということか…………",
	},
	Items: []domain.Item{
		{
			Ordinal:    1,
			Prompt:     "ムハンマドが創始した宗教は何や？",
			Answer:     "イスラム教",
			Acceptable: []string{"イスラム", "islam"},
			Keywords:   []string{"イスラム"},
			Hint:       "世界三大宗教の一つで、聖地はメッカばい",
		},
		{
			Ordinal:    2,
			Prompt:     "次の文の空欄にはいる最も適切な単語はなんや  If I ___ more time, I would travel around the world.",
			Answer:     "had",
			Acceptable: []string{"Had"},
			Keywords:   []string{"had"},
			Hint:       "仮定法過去ばい。動詞haveの形を変えてみんね",
		},
		{
			Ordinal:    3,
			Prompt:     "細胞の中で、エネルギーを作り出す働きを持つ細胞小器官は何や？",
			Answer:     "ミトコンドリア",
			Acceptable: []string{"みとこんどりあ", "mitochondria"},
			Keywords:   []string{"ミトコンドリア"},
			Hint:       "カタカナ7文字たい",
		},
		{
			Ordinal:    4,
			Prompt:     "福岡市の交通系ICカードとかけて、ウサイン・ボルトが尊敬される理由と解く、その心は？",
			Answer:     "はやかけん",
			Acceptable: []string{"ハヤカケン"},
			Keywords:   []string{"はやか"},
			Hint:       "速く駆けるけん、ということばい",
		},
		{
			Ordinal:    5,
			Prompt:     "高校の文化祭の名前は何やった？",
			Answer:     "男く祭",
			Acceptable: []string{"おとこくさい", "男く祭（おとこくさい）"},
			Keywords:   []string{"男く祭", "おとこくさい"},
			Hint:       "男子校時代の名残の名前たい",
		},
		{
			Ordinal:    6,
			Prompt:     "附設の裏にあった商店の通称はなんや？",
			Answer:     "裏店",
			Acceptable: []string{"うらみせ", "裏店（うらみせ）"},
			Keywords:   []string{"裏店", "うらみせ"},
			Hint:       "高校のすぐ裏にあった",
		},
		{
			Ordinal:    7,
			Prompt:     "附設高校が共学になった年はわかるや？",
			Answer:     "2005年",
			Acceptable: []string{"2005"},
			Keywords:   []string{"2005"},
			Hint:       "平成17年のことばい",
		},
		{
			Ordinal:    8,
			Prompt:     "附設の近くにあった美味しいお好み焼きのお店は何や？",
			Answer:     "弁天",
			Acceptable: []string{"べんてん"},
			Keywords:   []string{"弁天", "べんてん"},
			Hint:       "七福神の一人の名前",
		},
		{
			Ordinal:    9,
			Prompt:     "附設高校が現在の場所に移転したのはいつや？",
			Answer:     "1968年",
			Acceptable: []string{"1968"},
			Keywords:   []string{"1968"},
			Hint:       "昭和43年たい",
		},
		{
			Ordinal:    10,
			Prompt:     "附設の近くにあった生姜焼きの美味しいお店は何や？",
			Answer:     "一茶",
			Acceptable: []string{"いっさ"},
			Keywords:   []string{"一茶", "いっさ"},
			Hint:       "俳人の名前と同じたい",
		},
	},
}

// lightningRound is the no-retry quiz show: one attempt per question, pass
// only on a perfect run, score reported as correct/total.
var lightningRound = domain.Script{
	ID:   "lightning-round",
	Mode: domain.ModeFixedAttempts,
	Pin:  "442222",
	Persona: domain.Persona{
		Name: "黒水校長",
		Intro: []string{
			"よかか、今度は一発勝負ばい。間違えてもやり直しはきかんけんな。",
		},
		Praise: []string{
			"正解たい。次ばい！",
		},
		Rejections: []string{
			"ぶっぶー！はずれたい。次の問題ばい！",
		},
		Closing: "全問正解とは……あんたらの勝ちばい。",
		Failure: "詰めが甘かったのう。出直してきんしゃい。",
	},
	Items: []domain.Item{
		{
			Ordinal:    1,
			Prompt:     "附設高校初代校長の名前は何や？",
			Answer:     "板垣政参",
			Acceptable: []string{"いたがきまさみつ", "板垣"},
			Keywords:   []string{"板垣"},
		},
		{
			Ordinal:    2,
			Prompt:     "附設高校の校章の花は何や？",
			Answer:     "芙蓉",
			Acceptable: []string{"ふよう"},
			Keywords:   []string{"芙蓉"},
		},
		{
			Ordinal:    3,
			Prompt:     "2023年に瑞宝中綬章を受けた元校長は誰や？",
			Answer:     "吉川敦",
			Acceptable: []string{"よしかわあつし", "吉川"},
			Keywords:   []string{"吉川"},
		},
	},
}
