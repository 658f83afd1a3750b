package progress

import "errors"

// Caller-facing lifecycle errors. All are recoverable conditions the UI layer
// turns into user messaging; none are fatal to the process.
var (
	// ErrNotFound is returned when the team or question does not exist, or
	// the team does not belong to the question's event.
	ErrNotFound = errors.New("team or question not found")

	// ErrEventNotStarted is returned when start or answer is called before
	// the owning event has begun.
	ErrEventNotStarted = errors.New("event has not started")

	// ErrAlreadyAnswered is returned when answer is called on a row that is
	// already correct.
	ErrAlreadyAnswered = errors.New("question already answered")

	// ErrMaxAttemptsReached is returned when all three attempt slots are
	// filled.
	ErrMaxAttemptsReached = errors.New("maximum attempts reached")

	// ErrInvalidTipNumber is returned for tip numbers outside 1..3.
	ErrInvalidTipNumber = errors.New("invalid tip number")

	// ErrAlreadyCompleted is returned when tip or answer is called on a
	// terminal row.
	ErrAlreadyCompleted = errors.New("question already completed")
)
