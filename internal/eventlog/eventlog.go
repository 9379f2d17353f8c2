// Package eventlog parses emulator start/stop logs into play sessions.
package eventlog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/retrostats/internal/model"
)

const (
	fieldSep   = "|"
	fieldCount = 4
	maxLineLen = 1024 * 1024
)

// Result holds the sessions recovered from a log and what was discarded on the way.
type Result struct {
	Sessions  []model.Session
	Malformed []*MalformedLogError
	Invalid   []*InvalidSessionError

	// Orphaned counts stops that had no open start.
	Orphaned int
	// Superseded counts starts replaced by a later start for the same game.
	Superseded int
	// Unterminated counts starts still open at end of input.
	Unterminated int
	// Short counts sessions dropped for being under the minimum length.
	Short int
}

// Skipped returns the number of lines that could not be parsed.
func (r Result) Skipped() int {
	return len(r.Malformed)
}

// ParseFile opens path and parses it with Parse.
func ParseFile(path string, minimumSessionLength int64) (Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only log.
			_ = cerr
		}
	}()
	return Parse(file, minimumSessionLength)
}

// Parse reads one event per line and pairs starts with stops into sessions.
// Malformed lines are skipped and reported in the result. Sessions shorter than
// minimumSessionLength seconds are dropped.
func Parse(r io.Reader, minimumSessionLength int64) (Result, error) {
	if minimumSessionLength < 0 {
		return Result{}, ErrNegativeMinimum
	}
	var res Result
	open := map[model.GameKey]model.LogEvent{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLen)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		ev, merr := ParseLine(text, lineNo)
		if merr != nil {
			res.Malformed = append(res.Malformed, merr)
			continue
		}
		key := ev.Key()
		switch ev.Kind {
		case model.EventStart:
			if _, ok := open[key]; ok {
				res.Superseded++
			}
			open[key] = ev
		case model.EventStop:
			start, ok := open[key]
			if !ok {
				res.Orphaned++
				continue
			}
			delete(open, key)
			res.addCandidate(start, ev, minimumSessionLength)
		}
	}
	if err := scanner.Err(); err != nil {
		return Result{}, fmt.Errorf("failed to read log: %w", err)
	}
	res.Unterminated = len(open)
	return res, nil
}

func (r *Result) addCandidate(start, stop model.LogEvent, minimum int64) {
	if stop.Time.Before(start.Time) {
		r.Invalid = append(r.Invalid, &InvalidSessionError{
			Key:       start.Key(),
			StartedAt: start.Time,
			EndedAt:   stop.Time,
			StartLine: start.Line,
			StopLine:  stop.Line,
		})
		return
	}
	session := model.Session{
		Game:      start.Game,
		System:    start.System,
		StartedAt: start.Time,
		EndedAt:   stop.Time,
	}
	if !MeetsMinimum(session, minimum) {
		r.Short++
		return
	}
	r.Sessions = append(r.Sessions, session)
}

// MeetsMinimum reports whether s lasts at least minimum seconds.
func MeetsMinimum(s model.Session, minimum int64) bool {
	return s.Duration() >= minimum
}

// ParseLine tokenizes a single "timestamp|kind|system|game" record.
// The game field takes the remainder of the line and may contain the separator.
// Surrounding whitespace on each field is ignored.
func ParseLine(text string, lineNo int) (model.LogEvent, *MalformedLogError) {
	malformed := func(reason string) (model.LogEvent, *MalformedLogError) {
		return model.LogEvent{}, &MalformedLogError{Line: lineNo, Text: text, Reason: reason}
	}
	parts := strings.SplitN(text, fieldSep, fieldCount)
	if len(parts) != fieldCount {
		return malformed(fmt.Sprintf("expected %d fields, got %d", fieldCount, len(parts)))
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	rawTime, rawKind, system, game := parts[0], parts[1], parts[2], parts[3]
	if rawTime == "" {
		return malformed("missing timestamp")
	}
	if system == "" {
		return malformed("missing system")
	}
	if game == "" {
		return malformed("missing game")
	}
	ts, err := parseTimestamp(rawTime)
	if err != nil {
		return malformed("invalid timestamp")
	}
	kind, ok := parseKind(rawKind)
	if !ok {
		return malformed(fmt.Sprintf("unknown event kind %q", rawKind))
	}
	return model.LogEvent{
		Time:   ts,
		Kind:   kind,
		Game:   game,
		System: system,
		Line:   lineNo,
	}, nil
}

func parseTimestamp(raw string) (time.Time, error) {
	if secs, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	return time.Parse(time.RFC3339, raw)
}

func parseKind(raw string) (model.EventKind, bool) {
	switch strings.ToLower(raw) {
	case "start":
		return model.EventStart, true
	case "stop":
		return model.EventStop, true
	default:
		return 0, false
	}
}
