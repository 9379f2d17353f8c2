package eventlog

import (
	"errors"
	"fmt"
	"time"

	"github.com/verte-zerg/retrostats/internal/model"
)

// ErrNegativeMinimum is returned when the minimum session length is below zero.
var ErrNegativeMinimum = errors.New("minimum session length must be >= 0")

// MalformedLogError describes a line that could not be tokenized into an event.
type MalformedLogError struct {
	Line   int
	Text   string
	Reason string
}

func (e *MalformedLogError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Reason, e.Text)
}

// InvalidSessionError describes a start/stop pair whose stop precedes its start.
type InvalidSessionError struct {
	Key       model.GameKey
	StartedAt time.Time
	EndedAt   time.Time
	StartLine int
	StopLine  int
}

func (e *InvalidSessionError) Error() string {
	return fmt.Sprintf("lines %d-%d: stop before start for %s on %s (%s < %s)",
		e.StartLine, e.StopLine, e.Key.Game, e.Key.System,
		e.EndedAt.Format(time.RFC3339), e.StartedAt.Format(time.RFC3339))
}
