package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/conorfennell/mythos/internal/config"
	"github.com/conorfennell/mythos/internal/content"
	"github.com/conorfennell/mythos/internal/quiz"
	"github.com/conorfennell/mythos/internal/score"
	"github.com/conorfennell/mythos/internal/srs"
	"github.com/conorfennell/mythos/internal/web"
)

type configFunc func() *config.Config

func newSyncCmd(cfg configFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Fetch the content repository and validate the content",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := cfg()
			if c.Content.Repo != "" {
				dir, err := contentDir(c)
				if err != nil {
					return err
				}
				if err := os.MkdirAll(c.Content.ReposDir, os.ModePerm); err != nil {
					return fmt.Errorf("failed to create repos directory: %w", err)
				}
				if err := content.Sync(cmd.Context(), c.Content.Repo, dir, cmd.ErrOrStderr()); err != nil {
					return err
				}
			}
			return withApp(cmd, c, func(a *app) error {
				cards, err := a.svc.GenerateCardsFromProgress(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d entities, %d relations, %d stories; %d review cards.\n",
					len(a.catalog.Entities()), len(a.catalog.Edges()), len(a.catalog.Stories()), len(cards))
				return nil
			})
		},
	}
}

func newQuizCmd(cfg configFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "quiz",
		Short: "Take a relationship quiz in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := cfg()
			return withApp(cmd, c, func(a *app) error {
				questions := a.svc.NewQuiz(c.Quiz.Count, c.Quiz.Difficulty)
				if len(questions) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Not enough content for a quiz yet.")
					return nil
				}
				answers, err := askQuestions(cmd.InOrStdin(), cmd.OutOrStdout(), questions, c.Quiz)
				if err != nil {
					return err
				}
				correct, total := score.Grade(questions, answers)
				xp, err := a.svc.CompleteQuiz(cmd.Context(), score.Result{
					Correct:    correct,
					Total:      total,
					Difficulty: c.Quiz.Difficulty,
					Timer:      c.Quiz.Timer,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "\n%d/%d correct, +%d XP\n", correct, total, xp)
				return nil
			})
		},
	}
}

// askQuestions prints each question and reads the chosen option number.
// With the timer on, answers slower than the time limit count as wrong.
func askQuestions(in io.Reader, out io.Writer, questions []quiz.Question, qc config.QuizConfig) (map[string]string, error) {
	scanner := bufio.NewScanner(in)
	answers := make(map[string]string, len(questions))
	limit := score.TimeLimit(qc.Difficulty)

	for i, q := range questions {
		fmt.Fprintf(out, "\n%s %s  (%d/%d)\n%s\n", quiz.QuestionTypeIcon(q.Type), quiz.QuestionTypeLabel(q.Type), i+1, len(questions), q.Text)
		for j, opt := range q.Options {
			fmt.Fprintf(out, "  %d) %s\n", j+1, opt)
		}
		fmt.Fprint(out, "> ")

		start := time.Now()
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, err
			}
			break
		}
		if qc.Timer && time.Since(start) > limit {
			fmt.Fprintf(out, "Out of time! The answer was %s.\n", q.CorrectAnswer)
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
		if err != nil || n < 1 || n > len(q.Options) {
			fmt.Fprintf(out, "Skipped. The answer was %s.\n", q.CorrectAnswer)
			continue
		}
		answers[q.ID] = q.Options[n-1]
		if q.IsCorrect(answers[q.ID]) {
			fmt.Fprintln(out, "Correct!")
		} else {
			fmt.Fprintf(out, "Wrong. The answer was %s.\n", q.CorrectAnswer)
		}
	}
	return answers, nil
}

func newReviewCmd(cfg configFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "review",
		Short: "Review the cards due today",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, cfg(), func(a *app) error {
				ctx := cmd.Context()
				out := cmd.OutOrStdout()
				if _, err := a.svc.GenerateCardsFromProgress(ctx); err != nil {
					return err
				}
				due, err := a.svc.DueCards(ctx)
				if err != nil {
					return err
				}
				if len(due) == 0 {
					fmt.Fprintln(out, "Nothing due. Come back tomorrow.")
					return nil
				}

				scanner := bufio.NewScanner(cmd.InOrStdin())
				for i, d := range due {
					fmt.Fprintf(out, "\n[%d/%d] %s\n", i+1, len(due), d.Card.Question)
					if d.Card.Hint != "" {
						fmt.Fprintf(out, "Hint: %s\n", d.Card.Hint)
					}
					fmt.Fprint(out, "Press Enter to reveal...")
					if !scanner.Scan() {
						return scanner.Err()
					}
					fmt.Fprintf(out, "Answer: %s\n", d.Card.Answer)

					rating, ok, err := askRating(scanner, out)
					if err != nil || !ok {
						return err
					}
					next, err := a.svc.ReviewCard(ctx, d.Card.ID, rating)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Next review in %d day(s).\n", next.Interval)
				}
				return nil
			})
		},
	}
}

// askRating reads a grade until a valid one is entered. It reports false at
// end of input.
func askRating(scanner *bufio.Scanner, out io.Writer) (srs.Rating, bool, error) {
	for {
		fmt.Fprint(out, "Grade 1) Again 2) Hard 3) Good 4) Easy > ")
		if !scanner.Scan() {
			return 0, false, scanner.Err()
		}
		r, err := srs.ParseRating(strings.TrimSpace(scanner.Text()))
		if err == nil {
			return r, true, nil
		}
		fmt.Fprintln(out, "Please enter a grade from 1 to 4.")
	}
}

func newStatsCmd(cfg configFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show today's reviews, streak and XP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, cfg(), func(a *app) error {
				st, err := a.svc.Stats(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Reviewed today: %d\n", st.Today.Reviewed)
				fmt.Fprintf(out, "Due now:        %d of %d cards\n", st.Due, st.Cards)
				fmt.Fprintf(out, "Streak:         %d day(s), longest %d\n", st.Streak, st.LongestStreak)
				fmt.Fprintf(out, "XP:             %d over %d quizzes\n", st.XP, st.QuizzesTaken)
				if len(st.Achievements) > 0 {
					fmt.Fprintf(out, "Achievements:   %s\n", strings.Join(st.Achievements, ", "))
				}
				return nil
			})
		},
	}
}

func newServeCmd(cfg configFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := cfg()
			return withApp(cmd, c, func(a *app) error {
				handler := web.NewServer(a.svc, web.QuizDefaults{
					Count:      c.Quiz.Count,
					Difficulty: c.Quiz.Difficulty,
					Timer:      c.Quiz.Timer,
				}, slog.Default())
				srv := &http.Server{
					Addr:              c.Server.Addr,
					Handler:           handler,
					ReadHeaderTimeout: 10 * time.Second,
				}
				return serve(cmd.Context(), srv)
			})
		},
	}
}

// serve runs srv until ctx is cancelled, then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server) error {
	errc := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
