// Package model defines shared data structures.
package model

import (
	"fmt"
	"strings"
	"time"
)

// EventKind distinguishes emulator start and stop records.
type EventKind int

const (
	// EventStart marks an emulator launch.
	EventStart EventKind = iota + 1
	// EventStop marks an emulator exit.
	EventStop
)

func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventStop:
		return "stop"
	default:
		return "unknown"
	}
}

// GameKey identifies a game on a given system. Fields compare byte for byte.
type GameKey struct {
	Game   string
	System string
}

// LogEvent is a single parsed log line.
type LogEvent struct {
	Time   time.Time
	Kind   EventKind
	Game   string
	System string
	Line   int
}

// Key returns the event's game identity.
func (e LogEvent) Key() GameKey {
	return GameKey{Game: e.Game, System: e.System}
}

// Session is one play period bounded by a start and its paired stop.
type Session struct {
	Game      string
	System    string
	StartedAt time.Time
	EndedAt   time.Time
}

// Key returns the session's game identity.
func (s Session) Key() GameKey {
	return GameKey{Game: s.Game, System: s.System}
}

// Duration returns the session length in whole seconds.
func (s Session) Duration() int64 {
	return int64(s.EndedAt.Sub(s.StartedAt) / time.Second)
}

// Stats aggregates all retained sessions of one game on one system.
type Stats struct {
	Game               string
	System             string
	TimesPlayed        int
	TotalTimePlayed    int64
	AverageSessionTime float64
	MedianSessionTime  float64
}

// Key returns the stats record's game identity.
func (s Stats) Key() GameKey {
	return GameKey{Game: s.Game, System: s.System}
}

// Criterion selects which Stats field orders a ranking.
type Criterion int

const (
	// ByTotalTime orders by summed play time.
	ByTotalTime Criterion = iota
	// ByTimesPlayed orders by session count.
	ByTimesPlayed
	// ByAverage orders by mean session length.
	ByAverage
	// ByMedian orders by median session length.
	ByMedian
)

// Criteria lists every criterion in display order.
var Criteria = []Criterion{ByTotalTime, ByTimesPlayed, ByAverage, ByMedian}

// String returns the CLI name of the criterion.
func (c Criterion) String() string {
	switch c {
	case ByTotalTime:
		return "total"
	case ByTimesPlayed:
		return "times"
	case ByAverage:
		return "average"
	case ByMedian:
		return "median"
	default:
		return fmt.Sprintf("criterion(%d)", int(c))
	}
}

// Label returns a human-readable name for headings.
func (c Criterion) Label() string {
	switch c {
	case ByTotalTime:
		return "Total Time"
	case ByTimesPlayed:
		return "Times Played"
	case ByAverage:
		return "Average Session"
	case ByMedian:
		return "Median Session"
	default:
		return c.String()
	}
}

// Value extracts the criterion's numeric field from s.
func (c Criterion) Value(s Stats) float64 {
	switch c {
	case ByTimesPlayed:
		return float64(s.TimesPlayed)
	case ByAverage:
		return s.AverageSessionTime
	case ByMedian:
		return s.MedianSessionTime
	default:
		return float64(s.TotalTimePlayed)
	}
}

// ParseCriterion maps a CLI name to a Criterion. An empty name means total time.
func ParseCriterion(name string) (Criterion, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "total":
		return ByTotalTime, nil
	case "times":
		return ByTimesPlayed, nil
	case "average", "avg":
		return ByAverage, nil
	case "median":
		return ByMedian, nil
	default:
		return ByTotalTime, fmt.Errorf("unknown criteria %q (available: total, times, average, median)", name)
	}
}

// SessionFilter narrows archived sessions when reading them back.
type SessionFilter struct {
	System string
	Since  *time.Time
}

// SystemCount reports how many sessions were recorded for a system.
type SystemCount struct {
	System   string
	Sessions int
}
