package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"escape-quiz-service/internal/domain"
)

// SessionRepository abstracts how game sessions are stored (in-memory, Redis, etc).
type SessionRepository interface {
	GetOrCreate(sessionID, scriptID string) *Session
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// ScriptRepository loads quiz scripts (from cache/backing store).
type ScriptRepository interface {
	GetScript(ctx context.Context, scriptID string) (domain.Script, error)
}

// AnswerJudge classifies one free-text submission against the active item.
type AnswerJudge interface {
	Judge(ctx context.Context, item domain.Item, submitted string, history []domain.Line) domain.Verdict
}

// GameService drives the narrative quiz: PIN gate, question progression,
// retry/hint policy, and completion.
type GameService struct {
	sessions SessionRepository
	scripts  ScriptRepository
	judge    AnswerJudge
}

func NewGameService(sessions SessionRepository, scripts ScriptRepository, judge AnswerJudge) *GameService {
	return &GameService{sessions: sessions, scripts: scripts, judge: judge}
}

// dontKnowPhrases are always judged incorrect without a remote call; a
// lenient judge must never be given the chance to accept them.
var dontKnowPhrases = []string{
	"わからない", "分からない", "わかりません", "分かりません",
	"知らない", "知りません", "しらない",
	"i don't know", "i dont know", "dont know", "don't know", "idk", "no idea",
}

func isDontKnow(trimmed string) bool {
	normalized := strings.ToLower(strings.Trim(trimmed, "。．.！!？? 　"))
	for _, phrase := range dontKnowPhrases {
		if normalized == phrase {
			return true
		}
	}
	return false
}

// Open creates (or refreshes) a session for the given script and returns its
// current progress. New sessions start locked.
func (g *GameService) Open(ctx context.Context, sessionID, scriptID string) (domain.Reply, error) {
	script, err := g.scripts.GetScript(ctx, scriptID)
	if err != nil {
		return domain.Reply{}, err
	}
	session := g.sessions.GetOrCreate(sessionID, scriptID)
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.replyLocked(script, nil, false), nil
}

// Unlock moves Locked to Intro on a matching PIN. Sessions already past the
// gate are left untouched.
func (g *GameService) Unlock(ctx context.Context, sessionID, pin string) (domain.Reply, error) {
	session, script, err := g.lookup(ctx, sessionID)
	if err != nil {
		return domain.Reply{}, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()

	if session.stage != domain.StageLocked {
		return session.replyLocked(script, nil, false), nil
	}
	if pin != script.Pin {
		return domain.Reply{}, domain.ErrWrongPin
	}
	session.stage = domain.StageIntro
	return session.replyLocked(script, nil, false), nil
}

// Begin moves Intro to Quizzing, emits the persona's intro and the first
// question, and initializes the cursor.
func (g *GameService) Begin(ctx context.Context, sessionID string) (domain.Reply, error) {
	session, script, err := g.lookup(ctx, sessionID)
	if err != nil {
		return domain.Reply{}, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()

	switch session.stage {
	case domain.StageLocked:
		return domain.Reply{}, domain.ErrStageLocked
	case domain.StageIntro:
	default:
		// Re-rendering an already started session must not restart it.
		return session.replyLocked(script, nil, false), nil
	}

	session.stage = domain.StageQuizzing
	session.cursor = 0
	session.wrongAttempts = 0

	lines := make([]domain.Line, 0, len(script.Persona.Intro)+1)
	for _, text := range script.Persona.Intro {
		lines = append(lines, domain.Line{Speaker: domain.SpeakerMaster, Text: text})
	}
	first, err := script.ItemAt(0)
	if err != nil {
		return domain.Reply{}, err
	}
	lines = append(lines, domain.Line{Speaker: domain.SpeakerMaster, Text: first.Prompt})
	session.appendLocked(lines...)
	return session.replyLocked(script, lines, false), nil
}

// Submit applies one player answer. The session lock is held across the
// judge call so a session never has two submissions in flight.
func (g *GameService) Submit(ctx context.Context, sessionID, submitted string) (domain.Reply, error) {
	session, script, err := g.lookup(ctx, sessionID)
	if err != nil {
		return domain.Reply{}, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()

	if session.stage.Terminal() {
		// The quiz is over; repeated renders or stray submissions are no-ops.
		return session.replyLocked(script, nil, false), nil
	}
	if session.stage != domain.StageQuizzing {
		return domain.Reply{}, domain.ErrNotQuizzing
	}

	item, err := script.ItemAt(session.cursor)
	if err != nil {
		return domain.Reply{}, err
	}

	trimmed := strings.TrimSpace(submitted)
	history := append([]domain.Line(nil), session.transcript...)
	session.appendLocked(domain.Line{Speaker: domain.SpeakerPlayer, Text: submitted})

	var correct bool
	switch {
	case trimmed == "", isDontKnow(trimmed):
		// Defined incorrect input classes: no judge call, no cost.
		correct = false
	default:
		correct = g.judge.Judge(ctx, item, trimmed, history).Correct
	}

	var lines []domain.Line
	completed := false
	if correct {
		lines, completed = session.advanceLocked(script, true)
	} else {
		lines, completed = session.missLocked(script, item)
	}
	session.appendLocked(lines...)
	return session.replyLocked(script, lines, completed), nil
}

// Transcript is the render path: a snapshot with no side effects, safe to
// call any number of times.
func (g *GameService) Transcript(ctx context.Context, sessionID string) (domain.Reply, []domain.Line, error) {
	session, script, err := g.lookup(ctx, sessionID)
	if err != nil {
		return domain.Reply{}, nil, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.replyLocked(script, nil, false), append([]domain.Line(nil), session.transcript...), nil
}

// Restart discards the session entirely.
func (g *GameService) Restart(_ context.Context, sessionID string) {
	g.sessions.Delete(sessionID)
}

func (g *GameService) lookup(ctx context.Context, sessionID string) (*Session, domain.Script, error) {
	session, ok := g.sessions.Get(sessionID)
	if !ok {
		return nil, domain.Script{}, domain.ErrSessionNotFound
	}
	script, err := g.scripts.GetScript(ctx, session.scriptID)
	if err != nil {
		return nil, domain.Script{}, err
	}
	return session, script, nil
}

// Session is the in-memory state of one player's run.
type Session struct {
	id       string
	scriptID string

	mu            sync.Mutex
	stage         domain.Stage
	cursor        int
	wrongAttempts int
	correctCount  int
	transcript    []domain.Line
	completed     bool
}

// NewSession is exported for infrastructure layers that need to seed sessions.
func NewSession(id, scriptID string) *Session {
	return &Session{
		id:       id,
		scriptID: scriptID,
		stage:    domain.StageLocked,
	}
}

// ScriptID reports which script the session runs.
func (s *Session) ScriptID() string { return s.scriptID }

func (s *Session) appendLocked(lines ...domain.Line) {
	s.transcript = append(s.transcript, lines...)
}

// advanceLocked moves past the current item. counted is false for hint-mode
// reveals, which skip the item without crediting it.
func (s *Session) advanceLocked(script domain.Script, counted bool) ([]domain.Line, bool) {
	if counted {
		s.correctCount++
	}
	s.cursor++
	s.wrongAttempts = 0

	if s.cursor >= script.Len() {
		return s.finishLocked(script), true
	}

	var lines []domain.Line
	if counted && len(script.Persona.Praise) > 0 {
		lines = append(lines, domain.Line{
			Speaker: domain.SpeakerMaster,
			Text:    script.Persona.Praise[(s.cursor-1)%len(script.Persona.Praise)],
		})
	}
	next, _ := script.ItemAt(s.cursor)
	return append(lines, domain.Line{Speaker: domain.SpeakerMaster, Text: next.Prompt}), false
}

// missLocked applies the variant's wrong-answer policy.
func (s *Session) missLocked(script domain.Script, item domain.Item) ([]domain.Line, bool) {
	s.wrongAttempts++

	switch script.Mode {
	case domain.ModeFixedAttempts:
		// One attempt per item: a miss still consumes the question.
		lines := []domain.Line{{Speaker: domain.SpeakerMaster, Text: s.rejectionLocked(script)}}
		s.cursor++
		s.wrongAttempts = 0
		if s.cursor >= script.Len() {
			return append(lines, s.finishLocked(script)...), true
		}
		next, _ := script.ItemAt(s.cursor)
		return append(lines, domain.Line{Speaker: domain.SpeakerMaster, Text: next.Prompt}), false

	case domain.ModeHint:
		if s.wrongAttempts == 1 {
			text := s.rejectionLocked(script)
			if item.Hint != "" {
				text = fmt.Sprintf("%s ヒントをやるばい：%s", text, item.Hint)
			}
			return []domain.Line{{Speaker: domain.SpeakerMaster, Text: text}}, false
		}
		// Second consecutive miss: reveal and move on, uncredited.
		reveal := fmt.Sprintf("しゃあなかのう。正解は「%s」ばい。次の問題に行くばい！", item.Answer)
		lines := []domain.Line{{Speaker: domain.SpeakerMaster, Text: reveal}}
		moreLines, done := s.advanceLocked(script, false)
		return append(lines, moreLines...), done

	default: // ModeStrict: no hint, never reveal, never advance.
		return []domain.Line{{Speaker: domain.SpeakerMaster, Text: s.rejectionLocked(script)}}, false
	}
}

// finishLocked runs the completion transition exactly once.
func (s *Session) finishLocked(script domain.Script) []domain.Line {
	if s.completed {
		return nil
	}
	s.completed = true

	if script.Mode == domain.ModeFixedAttempts && s.correctCount < script.Len() {
		s.stage = domain.StageCompletedFailure
		text := script.Persona.Failure
		if text == "" {
			text = script.Persona.Closing
		}
		return []domain.Line{{
			Speaker: domain.SpeakerMaster,
			Text:    fmt.Sprintf("%s（%d/%d問正解）", text, s.correctCount, script.Len()),
		}}
	}
	s.stage = domain.StageCompletedSuccess
	return []domain.Line{{Speaker: domain.SpeakerMaster, Text: script.Persona.Closing}}
}

func (s *Session) rejectionLocked(script domain.Script) string {
	rejections := script.Persona.Rejections
	if len(rejections) == 0 {
		return "不正解ばい。"
	}
	if s.wrongAttempts > 0 {
		return rejections[(s.wrongAttempts-1)%len(rejections)]
	}
	return rejections[0]
}

func (s *Session) replyLocked(script domain.Script, lines []domain.Line, completed bool) domain.Reply {
	progress := domain.Progress{
		Stage:        s.stage,
		Cursor:       s.cursor,
		Total:        script.Len(),
		CorrectCount: s.correctCount,
	}
	if s.stage.Terminal() {
		progress.Score = fmt.Sprintf("%d/%d", s.correctCount, script.Len())
	}
	return domain.Reply{Lines: lines, Progress: progress, Completed: completed}
}
