package stats

import (
	"testing"

	"github.com/verte-zerg/retrostats/internal/model"
)

func games(entries []model.Stats) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Game
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sampleStats() []model.Stats {
	return []model.Stats{
		{Game: "A", System: "nes", TimesPlayed: 5, TotalTimePlayed: 500, AverageSessionTime: 100, MedianSessionTime: 90},
		{Game: "B", System: "snes", TimesPlayed: 1, TotalTimePlayed: 300, AverageSessionTime: 300, MedianSessionTime: 300},
		{Game: "C", System: "nes", TimesPlayed: 2, TotalTimePlayed: 700, AverageSessionTime: 350, MedianSessionTime: 350},
		{Game: "D", System: "gb", TimesPlayed: 7, TotalTimePlayed: 140, AverageSessionTime: 20, MedianSessionTime: 15},
	}
}

func TestRankingCriteria(t *testing.T) {
	r := NewRanking(sampleStats())
	tests := []struct {
		name string
		got  []model.Stats
		want []string
	}{
		{name: "total time", got: r.TopTotalTime(Filter{}), want: []string{"C", "A", "B", "D"}},
		{name: "times played", got: r.TopTimesPlayed(Filter{}), want: []string{"D", "A", "C", "B"}},
		{name: "average", got: r.TopAverage(Filter{}), want: []string{"C", "B", "A", "D"}},
		{name: "median", got: r.TopMedian(Filter{}), want: []string{"C", "B", "A", "D"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := games(tt.got); !equalStrings(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestRankingTotalTimeThreeGames(t *testing.T) {
	r := NewRanking([]model.Stats{
		{Game: "A", System: "nes", TimesPlayed: 1, TotalTimePlayed: 500},
		{Game: "B", System: "nes", TimesPlayed: 1, TotalTimePlayed: 300},
		{Game: "C", System: "nes", TimesPlayed: 1, TotalTimePlayed: 700},
	})
	if got := games(r.TopTotalTime(Filter{})); !equalStrings(got, []string{"C", "A", "B"}) {
		t.Fatalf("unexpected order: %v", got)
	}
}

func TestRankingSystemFilterWinsOverExclude(t *testing.T) {
	r := NewRanking(sampleStats())
	got := r.TopTotalTime(Filter{System: "nes", Exclude: []string{"nes"}})
	if !equalStrings(games(got), []string{"C", "A"}) {
		t.Fatalf("expected only nes games, got %v", games(got))
	}
	for _, s := range got {
		if s.System != "nes" {
			t.Fatalf("unexpected system %q", s.System)
		}
	}
}

func TestRankingExclude(t *testing.T) {
	r := NewRanking(sampleStats())
	got := r.TopTotalTime(Filter{Exclude: []string{"nes"}})
	if !equalStrings(games(got), []string{"B", "D"}) {
		t.Fatalf("expected nes excluded, got %v", games(got))
	}
}

func TestRankingNoMatch(t *testing.T) {
	r := NewRanking(sampleStats())
	if got := r.TopMedian(Filter{System: "psx"}); len(got) != 0 {
		t.Fatalf("expected empty ranking, got %v", games(got))
	}
	if got := NewRanking(nil).TopTotalTime(Filter{}); len(got) != 0 {
		t.Fatalf("expected empty ranking for empty input, got %v", games(got))
	}
}

func TestRankingTiesAreDeterministic(t *testing.T) {
	input := []model.Stats{
		{Game: "zelda", System: "nes", TimesPlayed: 1, TotalTimePlayed: 100},
		{Game: "mario", System: "snes", TimesPlayed: 1, TotalTimePlayed: 100},
		{Game: "mario", System: "nes", TimesPlayed: 1, TotalTimePlayed: 100},
	}
	r := NewRanking(input)
	want := []model.Stats{input[2], input[1], input[0]}
	for i := 0; i < 3; i++ {
		got := r.Top(model.ByTotalTime, Filter{})
		for j := range want {
			if got[j] != want[j] {
				t.Fatalf("run %d: expected %+v at %d, got %+v", i, want[j], j, got[j])
			}
		}
	}
}

func TestRankingDoesNotModifyInput(t *testing.T) {
	input := sampleStats()
	r := NewRanking(input)
	r.TopTimesPlayed(Filter{})
	if !equalStrings(games(input), []string{"A", "B", "C", "D"}) {
		t.Fatalf("input was reordered: %v", games(input))
	}
}

func TestLimit(t *testing.T) {
	entries := sampleStats()
	if got := Limit(entries, 2); len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got := Limit(entries, 0); len(got) != 4 {
		t.Fatalf("expected all entries, got %d", len(got))
	}
	if got := Limit(entries, 10); len(got) != 4 {
		t.Fatalf("expected all entries, got %d", len(got))
	}
}
