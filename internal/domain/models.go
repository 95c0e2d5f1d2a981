package domain

// Mode selects the retry/hint policy a script runs under.
type Mode string

const (
	// ModeStrict never hints and never reveals; the cursor only moves on a
	// correct answer.
	ModeStrict Mode = "strict"
	// ModeHint emits the item's hint on the first miss and reveals the
	// answer (advancing past the item) on the second.
	ModeHint Mode = "hint"
	// ModeFixedAttempts gives exactly one attempt per item and grades the
	// whole run at the end.
	ModeFixedAttempts Mode = "fixed"
)

// Stage is the coarse narrative state of a session, distinct from
// per-question progress.
type Stage string

const (
	StageLocked           Stage = "locked"
	StageIntro            Stage = "intro"
	StageQuizzing         Stage = "quizzing"
	StageCompletedSuccess Stage = "completed_success"
	StageCompletedFailure Stage = "completed_failure"
)

// Terminal reports whether the stage accepts no further submissions.
func (s Stage) Terminal() bool {
	return s == StageCompletedSuccess || s == StageCompletedFailure
}

// Item is one scripted question. Immutable once the script is loaded.
type Item struct {
	Ordinal    int      `json:"ordinal"`
	Prompt     string   `json:"prompt"`
	Answer     string   `json:"answer"`
	Acceptable []string `json:"acceptable,omitempty"`
	Keywords   []string `json:"keywords,omitempty"`
	Hint       string   `json:"hint,omitempty"`
}

// Persona holds the quiz master's scripted lines for a variant.
type Persona struct {
	Name       string   `json:"name"`
	Intro      []string `json:"intro"`
	Praise     []string `json:"praise"`
	Rejections []string `json:"rejections"`
	Closing    string   `json:"closing"`
	Failure    string   `json:"failure,omitempty"`
}

// Script is the fixed, ordered question list for one game variant.
type Script struct {
	ID      string  `json:"id"`
	Mode    Mode    `json:"mode"`
	Pin     string  `json:"pin"`
	Persona Persona `json:"persona"`
	Items   []Item  `json:"items"`
}

// Len returns the total question count, the sole termination condition.
func (s Script) Len() int { return len(s.Items) }

// ItemAt returns the item at the 0-based index. Callers must bound-check
// with Len first; an invalid index is a programming error.
func (s Script) ItemAt(i int) (Item, error) {
	if i < 0 || i >= len(s.Items) {
		return Item{}, ErrItemOutOfRange
	}
	return s.Items[i], nil
}

// Speaker identifies who produced a transcript line.
type Speaker string

const (
	SpeakerPlayer Speaker = "player"
	SpeakerMaster Speaker = "master"
)

// Line is one transcript entry.
type Line struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

// Verdict is the ephemeral result of judging one answer.
type Verdict struct {
	Correct bool
	// Fallback is set when the deterministic check produced the verdict
	// because the remote call failed. Diagnostics only.
	Fallback bool
}

// Progress is a snapshot of a session handed to transports.
type Progress struct {
	Stage        Stage  `json:"stage"`
	Cursor       int    `json:"cursor"`
	Total        int    `json:"total"`
	CorrectCount int    `json:"correctCount"`
	Score        string `json:"score,omitempty"`
}

// Reply is what the progression controller says back after one turn.
type Reply struct {
	Lines    []Line   `json:"lines"`
	Progress Progress `json:"progress"`
	// Completed is set on the single turn that finished the quiz, never
	// again on later renders of the same transcript.
	Completed bool `json:"completed"`
}
