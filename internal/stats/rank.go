package stats

import (
	"sort"

	"github.com/verte-zerg/retrostats/internal/model"
)

// Filter narrows a ranking to a system or away from a set of systems.
// A non-empty System takes precedence and Exclude is then ignored.
type Filter struct {
	System  string
	Exclude []string
}

func (f Filter) keep(s model.Stats) bool {
	if f.System != "" {
		return s.System == f.System
	}
	for _, ex := range f.Exclude {
		if s.System == ex {
			return false
		}
	}
	return true
}

// Ranking orders aggregated stats by a criterion. It never modifies the records
// it was built from.
type Ranking struct {
	stats []model.Stats
}

// NewRanking returns a Ranking over a copy of all.
func NewRanking(all []model.Stats) *Ranking {
	cp := make([]model.Stats, len(all))
	copy(cp, all)
	return &Ranking{stats: cp}
}

// TopTotalTime ranks by total time played.
func (r *Ranking) TopTotalTime(f Filter) []model.Stats {
	return r.Top(model.ByTotalTime, f)
}

// TopTimesPlayed ranks by number of sessions.
func (r *Ranking) TopTimesPlayed(f Filter) []model.Stats {
	return r.Top(model.ByTimesPlayed, f)
}

// TopAverage ranks by average session length.
func (r *Ranking) TopAverage(f Filter) []model.Stats {
	return r.Top(model.ByAverage, f)
}

// TopMedian ranks by median session length.
func (r *Ranking) TopMedian(f Filter) []model.Stats {
	return r.Top(model.ByMedian, f)
}

// Top returns the filtered stats sorted descending by c. Ties are ordered by
// game, then system.
func (r *Ranking) Top(c model.Criterion, f Filter) []model.Stats {
	out := make([]model.Stats, 0, len(r.stats))
	for _, s := range r.stats {
		if f.keep(s) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		vi, vj := c.Value(out[i]), c.Value(out[j])
		if vi != vj {
			return vi > vj
		}
		if out[i].Game != out[j].Game {
			return out[i].Game < out[j].Game
		}
		return out[i].System < out[j].System
	})
	return out
}

// Limit returns at most n leading entries. n <= 0 keeps everything.
func Limit(entries []model.Stats, n int) []model.Stats {
	if n <= 0 || n >= len(entries) {
		return entries
	}
	return entries[:n]
}
