// Package main provides the CLI entrypoint for retrostats.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/retrostats/internal/config"
	"github.com/verte-zerg/retrostats/internal/eventlog"
	"github.com/verte-zerg/retrostats/internal/model"
	"github.com/verte-zerg/retrostats/internal/stats"
	"github.com/verte-zerg/retrostats/internal/statsui"
	"github.com/verte-zerg/retrostats/internal/store"
	"github.com/verte-zerg/retrostats/internal/titles"
)

const (
	defaultCriteria = "total"
	defaultMinimum  = 120
	defaultFormat   = "list"
	defaultRomsDir  = "/home/pi/roms"
)

var formats = []string{"list", "table", "bars"}

var (
	logFile      string
	criteriaName string
	systemName   string
	sinceDate    string
	excludeNames []string
	minimumLen   int
	topCount     int
	outputFormat string
	romsDir      string
	noTitles     bool
	useDB        bool
	dbPath       string
	verbose      bool
)

// options is the resolved configuration for a stats run.
type options struct {
	logPath   string
	criterion model.Criterion
	filter    stats.Filter
	since     *time.Time
	minimum   int64
	top       int
	format    string
	titles    stats.TitleFunc
	useDB     bool
	dbPath    string
	verbose   bool
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "retrostats",
		Short:         "Play-time statistics for retro gaming session logs",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runTopCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&logFile, "file", "f", "", "path to the stats log")
	flags.StringVarP(&criteriaName, "criteria", "c", defaultCriteria, "order by: total (time), times (played), average, median")
	flags.StringVarP(&systemName, "system", "s", "", "only show this system (overrides --exclude)")
	flags.StringVar(&sinceDate, "since", "", "only count sessions started at or after this date (YYYY-MM-DD or RFC3339)")
	flags.StringSliceVarP(&excludeNames, "exclude", "x", nil, "systems to leave out")
	flags.IntVarP(&minimumLen, "minimum-session-length", "m", defaultMinimum, "skip sessions shorter than this number of seconds")
	flags.StringVar(&romsDir, "roms-dir", defaultRomsDir, "directory holding <system>/gamelist.xml")
	flags.BoolVar(&noTitles, "no-titles", false, "show raw game paths instead of gamelist titles")
	flags.BoolVar(&useDB, "db", false, "read sessions from the archive instead of a log")
	flags.StringVar(&dbPath, "db-path", config.DefaultDBPath(), "session archive path")
	flags.BoolVarP(&verbose, "verbose", "v", false, "report skipped log lines")

	rootCmd.Flags().IntVarP(&topCount, "top", "n", 0, "number of games to show (0 = all)")
	rootCmd.Flags().StringVar(&outputFormat, "format", defaultFormat, "output format: list, table, bars")

	rootCmd.AddCommand(newBrowseCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newSystemsCmd())

	return rootCmd
}

func resolveOptions(cmd *cobra.Command) (options, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return options{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "file", &logFile, fileCfg.Stats.Log)
	applyStringConfig(cmd, "criteria", &criteriaName, fileCfg.Stats.Criteria)
	applyStringConfig(cmd, "system", &systemName, fileCfg.Stats.System)
	applyStringConfig(cmd, "since", &sinceDate, fileCfg.Stats.Since)
	applyStringSliceConfig(cmd, "exclude", &excludeNames, fileCfg.Stats.Exclude)
	applyIntConfig(cmd, "minimum-session-length", &minimumLen, fileCfg.Stats.MinimumSessionLength)
	applyIntConfig(cmd, "top", &topCount, fileCfg.Stats.Top)
	applyStringConfig(cmd, "format", &outputFormat, fileCfg.Stats.Format)
	applyStringConfig(cmd, "roms-dir", &romsDir, fileCfg.Titles.RomsDir)
	if fileCfg.Titles.Enabled != nil && !cmd.Flags().Changed("no-titles") {
		noTitles = !*fileCfg.Titles.Enabled
	}

	criterion, err := model.ParseCriterion(criteriaName)
	if err != nil {
		return options{}, err
	}
	since, err := parseSince(sinceDate)
	if err != nil {
		return options{}, err
	}
	opts := options{
		logPath:   strings.TrimSpace(logFile),
		criterion: criterion,
		filter: stats.Filter{
			System:  strings.TrimSpace(systemName),
			Exclude: statsui.SplitList(strings.Join(excludeNames, ",")),
		},
		since:   since,
		minimum: int64(minimumLen),
		top:     topCount,
		format:  strings.ToLower(strings.TrimSpace(outputFormat)),
		useDB:   useDB,
		dbPath:  dbPath,
		verbose: verbose,
	}
	if !noTitles {
		opts.titles = titles.NewResolver(romsDir).Resolve
	}
	if err := validateOptions(opts); err != nil {
		return options{}, err
	}
	return opts, nil
}

func validateOptions(opts options) error {
	if opts.minimum < 0 {
		return fmt.Errorf("--minimum-session-length must be >= 0")
	}
	if opts.top < 0 {
		return fmt.Errorf("--top must be >= 0")
	}
	if !validFormat(opts.format) {
		return fmt.Errorf("unknown format %q (available: %s)", opts.format, strings.Join(formats, ", "))
	}
	if !opts.useDB && opts.logPath == "" {
		return fmt.Errorf("--file is required (or set stats.log in %s, or use --db)", config.DefaultConfigPath())
	}
	return nil
}

// parseSince accepts an RFC3339 timestamp or a UTC calendar date.
func parseSince(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid --since %q (want YYYY-MM-DD or RFC3339)", raw)
	}
	return &t, nil
}

func validFormat(format string) bool {
	for _, f := range formats {
		if f == format {
			return true
		}
	}
	return false
}

// loadReport builds a report from the archive or the log. The since bound always
// applies while loading; the system filter only with narrow set. The returned close function is always
// safe to call.
func loadReport(ctx context.Context, opts options, narrow bool) (stats.Report, func(), error) {
	src := stats.Source{LogPath: opts.logPath}
	src.Filter.Since = opts.since
	if narrow {
		src.Filter.System = opts.filter.System
	}
	closeFn := func() {}
	if opts.useDB {
		st, err := store.Open(opts.dbPath)
		if err != nil {
			return stats.Report{}, closeFn, fmt.Errorf("failed to open db: %w", err)
		}
		closeFn = func() {
			if cerr := st.Close(); cerr != nil {
				logErrf("failed to close db: %v\n", cerr)
			}
		}
		src.Store = st
	}
	report, err := stats.BuildReport(ctx, src, opts.minimum)
	if err != nil {
		return stats.Report{}, closeFn, err
	}
	reportDiagnostics(report.Diagnostics, opts.verbose)
	return report, closeFn, nil
}

func runTopCmd(cmd *cobra.Command, _ []string) error {
	opts, err := resolveOptions(cmd)
	if err != nil {
		return err
	}
	report, closeFn, err := loadReport(cmd.Context(), opts, true)
	defer closeFn()
	if err != nil {
		return err
	}
	ranked := report.Rank(opts.criterion, opts.filter)
	if err := render(cmd.OutOrStdout(), ranked, opts); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func render(w io.Writer, ranked []model.Stats, opts options) error {
	switch opts.format {
	case "table":
		if err := stats.RenderTable(w, ranked, opts.top, opts.titles); err != nil {
			return err
		}
		if len(ranked) == 0 {
			return nil
		}
		if _, err := fmt.Fprintln(w, ""); err != nil {
			return err
		}
		return stats.RenderSummary(w, stats.Limit(ranked, opts.top))
	case "bars":
		return stats.RenderBars(w, ranked, opts.criterion, opts.top, 0, opts.titles, false)
	default:
		return stats.RenderList(w, ranked, opts.top, opts.titles)
	}
}

func newBrowseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse rankings interactively",
		Args:  cobra.NoArgs,
		RunE:  runBrowseCmd,
	}
}

func runBrowseCmd(cmd *cobra.Command, _ []string) error {
	opts, err := resolveOptions(cmd)
	if err != nil {
		return err
	}
	report, closeFn, err := loadReport(cmd.Context(), opts, false)
	defer closeFn()
	if err != nil {
		return err
	}
	settings := statsui.Settings{
		System:  opts.filter.System,
		Exclude: opts.filter.Exclude,
		Minimum: opts.minimum,
	}
	ui := statsui.NewModel(report.All, settings, opts.titles, opts.criterion)
	program := tea.NewProgram(ui, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func newSystemsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "systems",
		Short: "List systems with retained session counts",
		Args:  cobra.NoArgs,
		RunE:  runSystemsCmd,
	}
}

func runSystemsCmd(cmd *cobra.Command, _ []string) error {
	opts, err := resolveOptions(cmd)
	if err != nil {
		return err
	}
	report, closeFn, err := loadReport(cmd.Context(), opts, false)
	defer closeFn()
	if err != nil {
		return err
	}
	systems := stats.Systems(report.Stats)
	if len(systems) == 0 {
		logErrln("No sessions found.")
		return nil
	}
	return writeSystems(cmd.OutOrStdout(), systems)
}

func writeSystems(w io.Writer, systems []model.SystemCount) error {
	for _, sc := range systems {
		if _, err := fmt.Fprintf(w, "%s\t%d\n", sc.System, sc.Sessions); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Archive the sessions of a log into the SQLite database",
		Args:  cobra.NoArgs,
		RunE:  runImportCmd,
	}
}

func runImportCmd(cmd *cobra.Command, _ []string) error {
	opts, err := resolveOptions(cmd)
	if err != nil {
		return err
	}
	if opts.logPath == "" {
		return fmt.Errorf("--file is required for import")
	}
	// The archive keeps every session; the floor applies when reading back.
	res, err := eventlog.ParseFile(opts.logPath, 0)
	if err != nil {
		return fmt.Errorf("failed to parse log: %w", err)
	}
	reportDiagnostics(res, opts.verbose)

	st, err := store.Open(opts.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := cmd.Context()
	inserted, err := st.InsertSessions(ctx, res.Sessions)
	if err != nil {
		return fmt.Errorf("failed to archive sessions: %w", err)
	}
	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintf(out, "Imported %d new sessions (%d already archived) into %s\n",
		inserted, len(res.Sessions)-inserted, opts.dbPath); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	systems, err := st.ListSystems(ctx)
	if err != nil {
		return fmt.Errorf("failed to list systems: %w", err)
	}
	return writeSystems(out, systems)
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := ensureConfigFile(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func ensureConfigFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}
	return nil
}

func reportDiagnostics(res eventlog.Result, verbose bool) {
	if verbose {
		for _, merr := range res.Malformed {
			logErrf("skipped %v\n", merr)
		}
		for _, ierr := range res.Invalid {
			logErrf("discarded %v\n", ierr)
		}
		if res.Orphaned > 0 || res.Superseded > 0 || res.Unterminated > 0 {
			logErrf("unmatched events: %d orphaned stops, %d superseded starts, %d unterminated starts\n",
				res.Orphaned, res.Superseded, res.Unterminated)
		}
		if res.Short > 0 {
			logErrf("dropped %d sessions under the minimum length\n", res.Short)
		}
		return
	}
	if n := res.Skipped() + len(res.Invalid); n > 0 {
		logErrf("skipped %d malformed log entries (use --verbose for details)\n", n)
	}
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyStringSliceConfig(cmd *cobra.Command, name string, target *[]string, value []string) {
	if value == nil {
		return
	}
	if cmd.Flags().Lookup(name) == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = append([]string(nil), value...)
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# retrostats configuration
# Uncomment a value to enable it. CLI flags override config values.

[stats]
# log = "/home/pi/RetroPie/stats.log"  # Path to the start/stop log
# criteria = %q              # total, times, average or median
# system = "nes"                   # Only show this system (overrides exclude)
# exclude = ["kodi"]               # Systems to leave out
# since = "2024-01-01"             # Only count sessions started on or after
# minimum-session-length = %d     # Skip sessions shorter than this (seconds)
# top = 0                          # Number of games to show (0 = all)
# format = %q                 # list, table or bars

[titles]
# enabled = true                   # Look up names in gamelist.xml
# roms-dir = %q         # Directory holding <system>/gamelist.xml
`,
		defaultCriteria,
		defaultMinimum,
		defaultFormat,
		defaultRomsDir,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
