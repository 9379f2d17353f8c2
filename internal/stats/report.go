package stats

import (
	"context"
	"fmt"

	"github.com/verte-zerg/retrostats/internal/eventlog"
	"github.com/verte-zerg/retrostats/internal/model"
	"github.com/verte-zerg/retrostats/internal/store"
)

// Source selects where sessions are loaded from. Store takes precedence over LogPath.
type Source struct {
	LogPath string
	Store   *store.Store
	Filter  model.SessionFilter
}

// Report contains precomputed data for stats rendering.
type Report struct {
	// All holds every loaded session regardless of length.
	All []model.Session
	// Sessions holds the sessions meeting the minimum length.
	Sessions []model.Session
	Stats    []model.Stats
	Short    int
	// Diagnostics is populated when sessions came from a log file. Its Sessions
	// field is left empty.
	Diagnostics eventlog.Result
}

// LoadSessions reads every session from src without a length floor.
func LoadSessions(ctx context.Context, src Source) ([]model.Session, eventlog.Result, error) {
	if src.Store != nil {
		sessions, err := src.Store.ListSessions(ctx, src.Filter)
		if err != nil {
			return nil, eventlog.Result{}, fmt.Errorf("failed to list sessions: %w", err)
		}
		return sessions, eventlog.Result{}, nil
	}
	if src.LogPath == "" {
		return nil, eventlog.Result{}, fmt.Errorf("log path is empty")
	}
	res, err := eventlog.ParseFile(src.LogPath, 0)
	if err != nil {
		return nil, eventlog.Result{}, fmt.Errorf("failed to parse log: %w", err)
	}
	return filterSessions(res.Sessions, src.Filter), res, nil
}

func filterSessions(sessions []model.Session, f model.SessionFilter) []model.Session {
	if f.System == "" && f.Since == nil {
		return sessions
	}
	out := make([]model.Session, 0, len(sessions))
	for _, s := range sessions {
		if f.System != "" && s.System != f.System {
			continue
		}
		if f.Since != nil && s.StartedAt.Before(*f.Since) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// BuildReport loads sessions from src and aggregates those lasting at least
// minimum seconds.
func BuildReport(ctx context.Context, src Source, minimum int64) (Report, error) {
	if minimum < 0 {
		return Report{}, eventlog.ErrNegativeMinimum
	}
	sessions, diag, err := LoadSessions(ctx, src)
	if err != nil {
		return Report{}, err
	}
	report := Rebuild(sessions, minimum)
	diag.Sessions = nil
	report.Diagnostics = diag
	report.Diagnostics.Short = report.Short
	return report, nil
}

// Rebuild applies a new minimum length to already loaded sessions.
func Rebuild(all []model.Session, minimum int64) Report {
	kept := make([]model.Session, 0, len(all))
	short := 0
	for _, s := range all {
		if eventlog.MeetsMinimum(s, minimum) {
			kept = append(kept, s)
			continue
		}
		short++
	}
	return Report{
		All:      all,
		Sessions: kept,
		Stats:    Aggregate(kept),
		Short:    short,
	}
}

// Rank orders the report's stats by c after applying f.
func (r Report) Rank(c model.Criterion, f Filter) []model.Stats {
	return NewRanking(r.Stats).Top(c, f)
}
