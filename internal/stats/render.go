package stats

import (
	"fmt"
	"io"
	"math"

	"github.com/verte-zerg/retrostats/internal/model"
)

// TitleFunc maps a game identifier and system to a display name.
type TitleFunc func(game, system string) string

const maxTitleWidth = 48

// FormatDuration renders seconds as H:MM:SS, rounded to whole seconds.
func FormatDuration(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int64(math.Round(seconds))
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}

// FormatValue renders the criterion's value of s in its natural unit.
func FormatValue(c model.Criterion, s model.Stats) string {
	if c == model.ByTimesPlayed {
		return fmt.Sprintf("%d", s.TimesPlayed)
	}
	return FormatDuration(c.Value(s))
}

func titleOf(fn TitleFunc, s model.Stats) string {
	if fn == nil {
		return s.Game
	}
	return fn(s.Game, s.System)
}

// RenderList prints one numbered line per entry.
func RenderList(w io.Writer, entries []model.Stats, limit int, titles TitleFunc) error {
	entries = Limit(entries, limit)
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	for i, s := range entries {
		if _, err := fmt.Fprintf(w, "%d %s for %s, played %d times, time played: %s, avg: %s, median: %s\n",
			i+1,
			titleOf(titles, s),
			s.System,
			s.TimesPlayed,
			FormatDuration(float64(s.TotalTimePlayed)),
			FormatDuration(s.AverageSessionTime),
			FormatDuration(s.MedianSessionTime),
		); err != nil {
			return err
		}
	}
	return nil
}

// RenderTable prints entries as an aligned table.
func RenderTable(w io.Writer, entries []model.Stats, limit int, titles TitleFunc) error {
	entries = Limit(entries, limit)
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	headers := []string{"#", "Game", "System", "Played", "Total", "Average", "Median"}
	rows := make([][]string, 0, len(entries))
	for i, s := range entries {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			Truncate(titleOf(titles, s), maxTitleWidth),
			s.System,
			fmt.Sprintf("%d", s.TimesPlayed),
			FormatDuration(float64(s.TotalTimePlayed)),
			FormatDuration(s.AverageSessionTime),
			FormatDuration(s.MedianSessionTime),
		})
	}
	rightAlign := map[int]bool{0: true, 3: true, 4: true, 5: true, 6: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderSummary prints totals across the ranked entries.
func RenderSummary(w io.Writer, entries []model.Stats) error {
	var sessions int
	var total int64
	systems := map[string]struct{}{}
	for _, s := range entries {
		sessions += s.TimesPlayed
		total += s.TotalTimePlayed
		systems[s.System] = struct{}{}
	}
	if _, err := fmt.Fprintln(w, "Summary"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Games: %d\n", len(entries)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Systems: %d\n", len(systems)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Sessions: %d\n", sessions); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Time played: %s\n", FormatDuration(float64(total))); err != nil {
		return err
	}
	return nil
}
