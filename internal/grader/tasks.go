package grader

import "fmt"

// Builtin returns the shipped free-text tasks keyed by ID.
func Builtin() map[string]Task {
	tasks := []Task{
		referralLetter(),
		dataReport(),
		differentialDiagnosis(),
	}
	byID := make(map[string]Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}
	return byID
}

// Lookup finds a builtin task by ID.
func Lookup(id string) (Task, error) {
	task, ok := Builtin()[id]
	if !ok {
		return Task{}, fmt.Errorf("unknown task %q", id)
	}
	return task, nil
}

func referralLetter() Task {
	return Task{
		ID:    "referral-letter",
		Title: "紹介状作成",
		Role:  "あなたは医療文書の専門家です。",
		Prompt: "目の前の患者について、専門医への紹介状を作成してください。" +
			"手紙形式で、400文字程度にまとめること。",
		Axes: []Axis{
			{Key: "format", Label: "文書形式", Note: "箇条書きの使用は-10点。手紙形式でない場合は-15点"},
			{Key: "content", Label: "内容充実度", Note: "必要な臨床情報が過不足なく含まれているか"},
			{Key: "clarity", Label: "明確さ", Note: "紹介目的と依頼内容が明確か"},
		},
		TargetLength: 400,
		VerdictLow:   "鬼島院長は眉をひそめ、ため息をつきながら言った。「これはいただけないな…」",
		VerdictMid:   "鬼島院長は腕を組み、じっと考え込むような表情を見せた。「ふむ…」",
		VerdictHigh:  "鬼島院長は満足げな表情を浮かべ、頷いた。「なかなかやるじゃないか」",
	}
}

func dataReport() Task {
	return Task{
		ID:    "data-report",
		Title: "データ分析レポート",
		Role:  "あなたはデータ分析の専門家です。",
		Prompt: "提示されたデータを分析し、課題と改善案を800文字程度の" +
			"レポートにまとめてください。",
		Axes: []Axis{
			{Key: "analysis", Label: "分析深さ", Note: "データ分析の深さと正確性"},
			{Key: "solutions", Label: "解決策実現性", Note: "提案された解決策の実現可能性と効果"},
			{Key: "logic", Label: "論理的思考", Note: "論理的な思考と説明の明確さ"},
		},
		TargetLength: 800,
		VerdictLow:   "鬼島院長は眉をひそめ、ため息をつきながら言った。「これはいただけないな…」",
		VerdictMid:   "鬼島院長は腕を組み、じっと考え込むような表情を見せた。「ふむ…」",
		VerdictHigh:  "鬼島院長は満足げな表情を浮かべ、頷いた。「なかなかやるじゃないか」",
	}
}

func differentialDiagnosis() Task {
	return Task{
		ID:    "differential-diagnosis",
		Title: "鑑別診断",
		Role:  "あなたは臨床推論の指導医です。",
		Prompt: "提示された症例について、考えられる鑑別診断を優先順位を" +
			"つけて挙げ、それぞれの根拠を記載してください。",
		Axes: []Axis{
			{Key: "completeness", Label: "網羅性", Note: "重要な鑑別が漏れていないか"},
			{Key: "reasoning", Label: "理由付け", Note: "各鑑別の根拠が妥当か"},
			{Key: "priority", Label: "優先順位", Note: "緊急度と可能性を踏まえた順位付けか"},
			{Key: "presentation", Label: "記載方法", Note: "読み手に伝わる構成か"},
		},
		VerdictLow:  "鬼島院長は首を横に振った。「まだまだ修行が足りんな」",
		VerdictMid:  "鬼島院長は顎に手を当てた。「悪くはない。だが詰めが甘い」",
		VerdictHigh: "鬼島院長は目を細めた。「見事な鑑別だ。君に任せよう」",
	}
}
