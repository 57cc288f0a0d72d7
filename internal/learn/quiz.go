package learn

import (
	"context"
	"fmt"
	"slices"

	"github.com/conorfennell/mythos/internal/domain"
	"github.com/conorfennell/mythos/internal/quiz"
	"github.com/conorfennell/mythos/internal/score"
	"github.com/conorfennell/mythos/internal/storage"
)

// Achievement ids.
const (
	AchievementFirstQuiz   = "first-quiz"
	AchievementPerfectQuiz = "perfect-quiz"
	AchievementWeekStreak  = "week-streak"
)

// NewQuiz builds a relationship quiz of at most count questions over the
// whole catalog.
func (s *Service) NewQuiz(count int, difficulty domain.Difficulty) []quiz.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.synth.Generate(s.catalog.Entities(), s.catalog.Edges(), count, difficulty)
}

// CompleteQuiz scores a finished quiz, adds the XP to the learner's progress
// and returns the XP earned.
func (s *Service) CompleteQuiz(ctx context.Context, r score.Result) (int, error) {
	if !r.Difficulty.IsValid() {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidDifficulty, r.Difficulty)
	}
	if r.Total < 0 || r.Correct < 0 || r.Correct > r.Total {
		return 0, fmt.Errorf("%w: %d of %d correct", ErrInvalidResult, r.Correct, r.Total)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	xp := score.CalculateQuizXP(r.Correct, r.Total, r.Difficulty, r.Timer)
	p, err := s.store.Progress(ctx)
	if err != nil {
		return 0, err
	}
	p.XP += xp
	p.QuizzesTaken++
	if r.Total > 0 && r.Correct == r.Total {
		p.Achievements = grant(p.Achievements, AchievementPerfectQuiz)
	}
	p.Achievements = award(p)
	if err := s.store.SaveProgress(ctx, p); err != nil {
		return 0, err
	}

	s.log.Info("quiz completed",
		"correct", r.Correct,
		"total", r.Total,
		"difficulty", r.Difficulty,
		FieldXP, xp,
	)
	return xp, nil
}

// award grants the achievements p's totals qualify for.
func award(p storage.Progress) []string {
	a := p.Achievements
	if p.QuizzesTaken > 0 {
		a = grant(a, AchievementFirstQuiz)
	}
	if p.Streak.Longest >= 7 {
		a = grant(a, AchievementWeekStreak)
	}
	return a
}

func grant(have []string, id string) []string {
	if slices.Contains(have, id) {
		return have
	}
	return append(have, id)
}
