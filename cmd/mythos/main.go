// Command mythos is the command-line front end of the learning engine.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/conorfennell/mythos/internal/config"
	"github.com/conorfennell/mythos/internal/content"
	"github.com/conorfennell/mythos/internal/learn"
	"github.com/conorfennell/mythos/internal/quiz"
	"github.com/conorfennell/mythos/internal/srs"
	"github.com/conorfennell/mythos/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfg *config.Config
	root := &cobra.Command{
		Use:           "mythos",
		Short:         "Learn mythology through relationship quizzes and spaced review",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("config")
			c, err := config.Load(path, cmd.Flags())
			if err != nil {
				return err
			}
			if err := setupLogging(c.Log.Level); err != nil {
				return err
			}
			cfg = c
			return nil
		},
	}
	config.RegisterFlags(root.PersistentFlags())

	current := func() *config.Config { return cfg }
	root.AddCommand(
		newSyncCmd(current),
		newQuizCmd(current),
		newReviewCmd(current),
		newStatsCmd(current),
		newServeCmd(current),
	)
	return root
}

func setupLogging(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
	return nil
}

// app holds the opened dependencies a command works with.
type app struct {
	cfg     *config.Config
	db      *storage.DB
	catalog *content.Catalog
	svc     *learn.Service
}

// contentDir returns where content is read from: the synced repository when
// one is configured, the content directory otherwise.
func contentDir(cfg *config.Config) (string, error) {
	if cfg.Content.Repo == "" {
		return cfg.Content.Dir, nil
	}
	return content.RepoPath(cfg.Content.ReposDir, cfg.Content.Repo)
}

func openApp(ctx context.Context, cfg *config.Config) (*app, error) {
	dir, err := contentDir(cfg)
	if err != nil {
		return nil, err
	}
	catalog, err := content.Load(dir)
	if err != nil {
		return nil, err
	}
	sched, err := srs.NewScheduler(cfg.Review)
	if err != nil {
		return nil, err
	}
	db, err := storage.Open(ctx, cfg.DB, storage.WithParams(sched.Params()))
	if err != nil {
		return nil, err
	}
	slog.Debug("database opened", "path", cfg.DB)

	svc := learn.New(db, catalog, sched, learn.WithRand(quiz.NewSeededRand(cfg.Seed)))
	return &app{cfg: cfg, db: db, catalog: catalog, svc: svc}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

// withApp opens the app for the duration of run.
func withApp(cmd *cobra.Command, cfg *config.Config, run func(*app) error) error {
	a, err := openApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return run(a)
}
