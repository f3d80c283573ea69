// Package main provides the CLI entrypoint for quickten.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/verte-zerg/quickten/internal/config"
	"github.com/verte-zerg/quickten/internal/feedback"
	"github.com/verte-zerg/quickten/internal/model"
	"github.com/verte-zerg/quickten/internal/puzzle"
	"github.com/verte-zerg/quickten/internal/rankui"
	"github.com/verte-zerg/quickten/internal/score"
	"github.com/verte-zerg/quickten/internal/server"
	"github.com/verte-zerg/quickten/internal/session"
	"github.com/verte-zerg/quickten/internal/stats"
	"github.com/verte-zerg/quickten/internal/tui"
)

const (
	defaultServeAddr = ":8080"
	drainTimeout     = 10 * time.Second
)

var (
	playRound   int
	playReward  int
	playWarning int
	playSound   bool

	syncBackend string
	syncDSN     string
	syncURL     string

	rankingLimit int
	rankingPlain bool

	statsLast  int
	statsSince string

	serveAddr string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "quickten",
		Short:         "Make 10 from four digits before the clock runs out",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPlayCmd,
	}

	defaults := config.Defaults()
	rootCmd.Flags().IntVar(&playRound, "round", defaults.Game.RoundSeconds, "round length in seconds")
	rootCmd.Flags().IntVar(&playReward, "reward", defaults.Game.RewardSeconds, "seconds added per solved puzzle")
	rootCmd.Flags().IntVar(&playWarning, "warning", defaults.Game.WarningSeconds, "low-time warning threshold in seconds")
	rootCmd.Flags().BoolVar(&playSound, "sound", defaults.Game.Sound, "ring the terminal bell on answers")

	rootCmd.PersistentFlags().StringVar(&syncBackend, "backend", string(defaults.Sync.Backend), "score backend: sqlite, postgres or remote")
	rootCmd.PersistentFlags().StringVar(&syncDSN, "dsn", "", "PostgreSQL connection string")
	rootCmd.PersistentFlags().StringVar(&syncURL, "url", "", "score server URL")

	rootCmd.AddCommand(newRankingCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newWhoamiCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	applyIntFlag(cmd, "round", &settings.Game.RoundSeconds, playRound)
	applyIntFlag(cmd, "reward", &settings.Game.RewardSeconds, playReward)
	applyIntFlag(cmd, "warning", &settings.Game.WarningSeconds, playWarning)
	applyBoolFlag(cmd, "sound", &settings.Game.Sound, playSound)

	sessionCfg := session.Config{
		RoundSeconds:   settings.Game.RoundSeconds,
		RewardSeconds:  settings.Game.RewardSeconds,
		WarningSeconds: settings.Game.WarningSeconds,
	}
	if err := sessionCfg.Validate(); err != nil {
		return err
	}

	logger, closeLog, err := openFileLogger(settings.LogPath, settings.LogLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx := context.Background()
	b, err := openBackends(ctx, settings.Sync, logger)
	if err != nil {
		return err
	}
	defer b.Close()

	sync := score.NewSynchronizer(b.scores, b.identity, score.WithLogger(logger))
	player := feedback.WithLogging(feedback.New(settings.Game.Sound, os.Stderr), logger)

	logger.Info().
		Str("backend", string(settings.Sync.Backend)).
		Int("round", sessionCfg.RoundSeconds).
		Msg("starting game")

	m := tui.NewModel(sessionCfg, tui.Deps{
		Generator: puzzle.New(),
		Rounds:    b.local,
		Sync:      sync,
		Feedback:  player,
		Logger:    logger,
	})
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	drainCtx, cancel := context.WithTimeout(ctx, drainTimeout)
	defer cancel()
	if err := sync.Wait(drainCtx); err != nil {
		logger.Warn().Err(err).Msg("gave up waiting for score commit")
		logErrln("warning: last score may not have been saved")
	}
	return nil
}

func newRankingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ranking",
		Short: "Show the leaderboard",
		Args:  cobra.NoArgs,
		RunE:  runRankingCmd,
	}
	cmd.Flags().IntVar(&rankingLimit, "limit", model.DefaultRankingLimit, "number of entries")
	cmd.Flags().BoolVar(&rankingPlain, "plain", false, "print a text table instead of the TUI")
	return cmd
}

func runRankingCmd(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	applyIntFlag(cmd, "limit", &settings.Sync.RankingLimit, rankingLimit)

	logger, closeLog, err := openFileLogger(settings.LogPath, settings.LogLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx := context.Background()
	b, err := openBackends(ctx, settings.Sync, logger)
	if err != nil {
		return err
	}
	defer b.Close()
	sync := score.NewSynchronizer(b.scores, b.identity, score.WithLogger(logger))

	if rankingPlain || !isTerminal(os.Stdout) {
		entries, err := sync.FetchTopRanking(ctx, settings.Sync.RankingLimit)
		if err != nil {
			return fmt.Errorf("failed to fetch ranking: %w", err)
		}
		id, err := sync.Identity(ctx)
		if err != nil {
			id = ""
		}
		return stats.RenderRanking(cmd.OutOrStdout(), entries, id)
	}

	program := tea.NewProgram(rankui.NewModel(sync, settings.Sync.RankingLimit), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run ranking TUI: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show local round history",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N rounds")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}

	st, err := openLocalStore()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	report, err := stats.BuildReport(cmd.Context(), st, model.StatsConfig{Since: sinceTime, Last: statsLast})
	if err != nil {
		return err
	}
	width := 0
	if isTerminal(os.Stdout) {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			width = w
		}
	}
	return report.Render(cmd.OutOrStdout(), width)
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the player id and stored best score",
		Args:  cobra.NoArgs,
		RunE:  runWhoamiCmd,
	}
}

func runWhoamiCmd(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	logger, closeLog, err := openFileLogger(settings.LogPath, settings.LogLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx := cmd.Context()
	b, err := openBackends(ctx, settings.Sync, logger)
	if err != nil {
		return err
	}
	defer b.Close()
	sync := score.NewSynchronizer(b.scores, b.identity, score.WithLogger(logger))

	id, err := sync.Identity(ctx)
	if err != nil {
		return err
	}
	best, ok, err := sync.FetchBest(ctx, id)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintf(out, "player: %s\n", id); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	bestLine := "best: none yet"
	if ok {
		bestLine = fmt.Sprintf("best: %d", best)
	}
	if _, err := fmt.Fprintln(out, bestLine); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP score server",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", defaultServeAddr, "listen address")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if settings.Sync.Backend == model.BackendRemote {
		return fmt.Errorf("serve needs a sqlite or postgres backend")
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(settings.LogLevel).
		With().Timestamp().Logger()

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	b, err := openBackends(ctx, settings.Sync, logger)
	if err != nil {
		return err
	}
	defer b.Close()
	logger.Info().Str("backend", string(settings.Sync.Backend)).Msg("connected to score store")

	sync := score.NewSynchronizer(b.scores, nil, score.WithLogger(logger))
	srv := server.New(serveAddr, logger, sync, b.health)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down score server")
		return srv.Shutdown(context.Background())
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
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
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(config.Template()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
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

// loadSettings resolves defaults, the config file, .env and the environment,
// then applies the persistent backend flags.
func loadSettings(cmd *cobra.Command) (config.Settings, error) {
	if err := config.LoadDotEnv(); err != nil {
		return config.Settings{}, err
	}
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return config.Settings{}, fmt.Errorf("failed to load config: %w", err)
	}
	envCfg, err := config.LoadEnv()
	if err != nil {
		return config.Settings{}, err
	}
	settings, err := config.Resolve(fileCfg, envCfg)
	if err != nil {
		return config.Settings{}, err
	}
	if cmd.Flags().Changed("backend") {
		b, err := config.ParseBackend(syncBackend)
		if err != nil {
			return config.Settings{}, err
		}
		settings.Sync.Backend = b
	}
	applyStringFlag(cmd, "dsn", &settings.Sync.DSN, syncDSN)
	applyStringFlag(cmd, "url", &settings.Sync.URL, syncURL)
	if err := config.ValidateSync(settings.Sync); err != nil {
		return config.Settings{}, err
	}
	return settings, nil
}

func applyStringFlag(cmd *cobra.Command, name string, target *string, value string) {
	if cmd.Flags().Changed(name) {
		*target = value
	}
}

func applyIntFlag(cmd *cobra.Command, name string, target *int, value int) {
	if cmd.Flags().Changed(name) {
		*target = value
	}
}

func applyBoolFlag(cmd *cobra.Command, name string, target *bool, value bool) {
	if cmd.Flags().Changed(name) {
		*target = value
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
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
