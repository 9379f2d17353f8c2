package stats

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/retrostats/internal/model"
	"github.com/verte-zerg/retrostats/internal/store"
)

const sampleLog = `0|start|nes|/roms/nes/mario.nes
150|stop|nes|/roms/nes/mario.nes
200|start|nes|/roms/nes/zelda.nes
260|stop|nes|/roms/nes/zelda.nes
300|start|snes|/roms/snes/smw.sfc
not a record
900|stop|snes|/roms/snes/smw.sfc
1000|start|snes|/roms/snes/smw.sfc
`

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stats.log")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

func TestBuildReportFromLog(t *testing.T) {
	path := writeLog(t, sampleLog)
	report, err := BuildReport(context.Background(), Source{LogPath: path}, 120)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.All) != 3 {
		t.Fatalf("expected 3 loaded sessions, got %d", len(report.All))
	}
	if len(report.Sessions) != 2 {
		t.Fatalf("expected 2 sessions over the minimum, got %d", len(report.Sessions))
	}
	if report.Short != 1 || report.Diagnostics.Short != 1 {
		t.Fatalf("expected 1 short session, got %d/%d", report.Short, report.Diagnostics.Short)
	}
	if report.Diagnostics.Skipped() != 1 {
		t.Fatalf("expected 1 skipped line, got %d", report.Diagnostics.Skipped())
	}
	if report.Diagnostics.Unterminated != 1 {
		t.Fatalf("expected 1 unterminated start, got %d", report.Diagnostics.Unterminated)
	}
	if len(report.Diagnostics.Sessions) != 0 {
		t.Fatalf("expected diagnostics without sessions")
	}
	ranked := report.Rank(model.ByTotalTime, Filter{})
	if len(ranked) != 2 || ranked[0].Game != "/roms/snes/smw.sfc" {
		t.Fatalf("unexpected ranking: %+v", ranked)
	}
}

func TestBuildReportFromStore(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "retrostats.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	ctx := context.Background()
	if _, err := st.InsertSessions(ctx, []model.Session{
		playSession("mario.nes", "nes", 0, 150),
		playSession("mario.nes", "nes", 1000, 250),
		playSession("smw.sfc", "snes", 2000, 60),
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	report, err := BuildReport(ctx, Source{Store: st, LogPath: "ignored"}, 120)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Stats) != 1 {
		t.Fatalf("expected 1 stats record, got %+v", report.Stats)
	}
	if report.Stats[0].MedianSessionTime != 200 {
		t.Fatalf("expected median 200, got %v", report.Stats[0].MedianSessionTime)
	}

	since := time.Unix(500, 0)
	report, err = BuildReport(ctx, Source{Store: st, Filter: model.SessionFilter{Since: &since}}, 0)
	if err != nil {
		t.Fatalf("build filtered report: %v", err)
	}
	if len(report.Sessions) != 2 {
		t.Fatalf("expected 2 sessions since t=500, got %d", len(report.Sessions))
	}
}

func TestBuildReportErrors(t *testing.T) {
	ctx := context.Background()
	if _, err := BuildReport(ctx, Source{}, 0); err == nil {
		t.Fatalf("expected error for empty source")
	}
	if _, err := BuildReport(ctx, Source{LogPath: writeLog(t, "")}, -1); err == nil {
		t.Fatalf("expected error for negative minimum")
	}
	if _, err := BuildReport(ctx, Source{LogPath: filepath.Join(t.TempDir(), "missing.log")}, 0); err == nil {
		t.Fatalf("expected error for missing log")
	}
}

func TestRebuildAppliesNewMinimum(t *testing.T) {
	all := []model.Session{
		playSession("a", "nes", 0, 100),
		playSession("b", "nes", 200, 300),
	}
	if got := Rebuild(all, 0); len(got.Stats) != 2 {
		t.Fatalf("expected 2 stats with no floor, got %d", len(got.Stats))
	}
	got := Rebuild(all, 300)
	if len(got.Stats) != 1 || got.Stats[0].Game != "b" || got.Short != 1 {
		t.Fatalf("unexpected rebuild: %+v", got)
	}
	if len(got.All) != 2 {
		t.Fatalf("expected all sessions retained, got %d", len(got.All))
	}
}

func TestLoadSessionsAppliesFilterToLog(t *testing.T) {
	path := writeLog(t, sampleLog)
	sessions, _, err := LoadSessions(context.Background(), Source{
		LogPath: path,
		Filter:  model.SessionFilter{System: "snes"},
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(sessions) != 1 || sessions[0].System != "snes" {
		t.Fatalf("unexpected sessions: %+v", sessions)
	}
}

func TestArchiveKeepsLogDurations(t *testing.T) {
	path := writeLog(t, "2024-01-01T00:00:00.900Z|start|nes|mario.nes\n"+
		"2024-01-01T00:02:00.100Z|stop|nes|mario.nes\n")
	ctx := context.Background()
	fromLog, err := BuildReport(ctx, Source{LogPath: path}, 120)
	if err != nil {
		t.Fatalf("build log report: %v", err)
	}
	if len(fromLog.Stats) != 0 {
		t.Fatalf("expected 119.2s session to be dropped, got %+v", fromLog.Stats)
	}

	st, err := store.Open(filepath.Join(t.TempDir(), "retrostats.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	if _, err := st.InsertSessions(ctx, fromLog.All); err != nil {
		t.Fatalf("insert: %v", err)
	}
	fromDB, err := BuildReport(ctx, Source{Store: st}, 120)
	if err != nil {
		t.Fatalf("build db report: %v", err)
	}
	if len(fromDB.Stats) != len(fromLog.Stats) || fromDB.Short != fromLog.Short {
		t.Fatalf("archive changed retained sessions: log=%+v db=%+v", fromLog.Stats, fromDB.Stats)
	}
}
