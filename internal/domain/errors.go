package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a game session has not been initialized.
	ErrSessionNotFound = errors.New("game session not found")
	// ErrScriptNotFound indicates the quiz script could not be loaded.
	ErrScriptNotFound = errors.New("quiz script not found")
	// ErrItemOutOfRange indicates an index past the end of the script; the
	// controller enforces its own bounds, so hitting this is a bug.
	ErrItemOutOfRange = errors.New("quiz item index out of range")
	// ErrWrongPin is returned for an unlock attempt with a bad PIN.
	ErrWrongPin = errors.New("wrong pin code")
	// ErrStageLocked is returned when an action requires the gate to be open.
	ErrStageLocked = errors.New("stage is locked")
	// ErrNotQuizzing is returned for an answer outside the quizzing stage.
	ErrNotQuizzing = errors.New("session is not taking answers")
	// ErrJudgeUnavailable marks a failed remote classification call. It never
	// reaches players; the deterministic fallback absorbs it.
	ErrJudgeUnavailable = errors.New("judge unavailable")
)
