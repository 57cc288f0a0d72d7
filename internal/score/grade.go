package score

import (
	"github.com/conorfennell/mythos/internal/domain"
	"github.com/conorfennell/mythos/internal/quiz"
)

// Result is a graded quiz session.
type Result struct {
	Correct    int               `json:"correct"`
	Total      int               `json:"total"`
	Difficulty domain.Difficulty `json:"difficulty"`
	Timer      bool              `json:"timer"`
	XP         int               `json:"xp"`
}

// Grade counts the questions whose answer, keyed by question id, is correct.
// Unanswered questions count as wrong.
func Grade(questions []quiz.Question, answers map[string]string) (correct, total int) {
	for _, q := range questions {
		if a, ok := answers[q.ID]; ok && q.IsCorrect(a) {
			correct++
		}
	}
	return correct, len(questions)
}

// Score grades answers and computes the XP for the session.
func Score(questions []quiz.Question, answers map[string]string, difficulty domain.Difficulty, timerEnabled bool) Result {
	correct, total := Grade(questions, answers)
	return Result{
		Correct:    correct,
		Total:      total,
		Difficulty: difficulty,
		Timer:      timerEnabled,
		XP:         CalculateQuizXP(correct, total, difficulty, timerEnabled),
	}
}
