package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/verte-zerg/retrostats/internal/model"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{in: 0, want: "0:00:00"},
		{in: 59.4, want: "0:00:59"},
		{in: 59.5, want: "0:01:00"},
		{in: 3725, want: "1:02:05"},
		{in: 90000, want: "25:00:00"},
		{in: -5, want: "0:00:00"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.in); got != tt.want {
			t.Fatalf("FormatDuration(%v): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestRenderList(t *testing.T) {
	entries := []model.Stats{
		{Game: "/roms/nes/mario.nes", System: "nes", TimesPlayed: 2, TotalTimePlayed: 3600, AverageSessionTime: 1800, MedianSessionTime: 1800},
		{Game: "/roms/gb/tetris.gb", System: "gb", TimesPlayed: 1, TotalTimePlayed: 125, AverageSessionTime: 125, MedianSessionTime: 125},
	}
	var buf bytes.Buffer
	titles := func(game, system string) string {
		if system == "nes" {
			return "Super Mario Bros."
		}
		return game
	}
	if err := RenderList(&buf, entries, 0, titles); err != nil {
		t.Fatalf("render list: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	want := "1 Super Mario Bros. for nes, played 2 times, time played: 1:00:00, avg: 0:30:00, median: 0:30:00"
	if lines[0] != want {
		t.Fatalf("unexpected first line:\n%q\nwant\n%q", lines[0], want)
	}
	if !strings.HasPrefix(lines[1], "2 /roms/gb/tetris.gb for gb") {
		t.Fatalf("unexpected second line: %q", lines[1])
	}
}

func TestRenderListLimitAndEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderList(&buf, sampleStats(), 1, nil); err != nil {
		t.Fatalf("render list: %v", err)
	}
	if strings.Count(buf.String(), "\n") != 1 {
		t.Fatalf("expected a single line, got %q", buf.String())
	}
	buf.Reset()
	if err := RenderList(&buf, nil, 0, nil); err != nil {
		t.Fatalf("render empty: %v", err)
	}
	if buf.String() != "No sessions found.\n" {
		t.Fatalf("unexpected empty output: %q", buf.String())
	}
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	ranked := NewRanking(sampleStats()).TopTotalTime(Filter{})
	if err := RenderTable(&buf, ranked, 2, nil); err != nil {
		t.Fatalf("render table: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "# Game System Played") {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "1 C") || !strings.Contains(lines[1], "0:11:40") {
		t.Fatalf("unexpected first row: %q", lines[1])
	}
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, sampleStats()); err != nil {
		t.Fatalf("render summary: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Games: 4", "Systems: 3", "Sessions: 15", "Time played: 0:27:20"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q: %s", want, out)
		}
	}
}
