// Package web serves the learning engine as a JSON API.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/conorfennell/mythos/internal/domain"
	"github.com/conorfennell/mythos/internal/learn"
	"github.com/conorfennell/mythos/internal/quiz"
	"github.com/conorfennell/mythos/internal/score"
	"github.com/conorfennell/mythos/internal/srs"
	"github.com/conorfennell/mythos/internal/storage"
)

// Learner is the part of *learn.Service the API exposes.
type Learner interface {
	MarkViewed(ctx context.Context, contentID string) (int, error)
	DueCards(ctx context.Context) ([]learn.DueCard, error)
	Preview(ctx context.Context, cardID string) (map[srs.Rating]srs.CardState, error)
	ReviewCard(ctx context.Context, cardID string, rating srs.Rating) (srs.CardState, error)
	Stats(ctx context.Context) (learn.Stats, error)
	Progress(ctx context.Context) (storage.Progress, error)
	NewQuiz(count int, difficulty domain.Difficulty) []quiz.Question
	CompleteQuiz(ctx context.Context, r score.Result) (int, error)
}

var _ Learner = (*learn.Service)(nil)

// QuizDefaults are used when a quiz request leaves a parameter out.
type QuizDefaults struct {
	Count      int
	Difficulty domain.Difficulty
	Timer      bool
}

// maxQuizCount bounds the count a client may ask for.
const maxQuizCount = 100

// Server holds the dependencies for the HTTP server.
type Server struct {
	learner Learner
	quiz    QuizDefaults
	router  *http.ServeMux
	log     *slog.Logger
}

// NewServer creates and configures a new server.
func NewServer(learner Learner, defaults QuizDefaults, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		learner: learner,
		quiz:    defaults,
		router:  http.NewServeMux(),
		log:     log,
	}
	s.routes()
	return s
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// routes sets up the routing for the server.
func (s *Server) routes() {
	s.router.HandleFunc("GET /quiz", s.handleGetQuiz())
	s.router.HandleFunc("POST /quiz/score", s.handlePostQuizScore())
	s.router.HandleFunc("GET /review/due", s.handleGetDue())
	s.router.HandleFunc("GET /review/preview/{id}", s.handleGetPreview())
	s.router.HandleFunc("POST /review/{id}", s.handlePostReview())
	s.router.HandleFunc("POST /viewed/{id}", s.handlePostViewed())
	s.router.HandleFunc("GET /stats", s.handleGetStats())
	s.router.HandleFunc("GET /progress", s.handleGetProgress())
}

type quizResponse struct {
	Difficulty       domain.Difficulty `json:"difficulty"`
	Timer            bool              `json:"timer"`
	TimeLimitSeconds int               `json:"timeLimitSeconds,omitempty"`
	Questions        []questionView    `json:"questions"`
}

type questionView struct {
	quiz.Question
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

// handleGetQuiz builds a quiz from ?count, ?difficulty and ?timer.
func (s *Server) handleGetQuiz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		count := s.quiz.Count
		if v := q.Get("count"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > maxQuizCount {
				s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("count must be between 1 and %d", maxQuizCount))
				return
			}
			count = n
		}

		difficulty := s.quiz.Difficulty
		if v := q.Get("difficulty"); v != "" {
			d, err := domain.ParseDifficulty(v)
			if err != nil {
				s.fail(w, r, err)
				return
			}
			difficulty = d
		}

		timer := s.quiz.Timer
		if v := q.Get("timer"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid timer %q", v))
				return
			}
			timer = b
		}

		questions := s.learner.NewQuiz(count, difficulty)
		resp := quizResponse{
			Difficulty: difficulty,
			Timer:      timer,
			Questions:  make([]questionView, 0, len(questions)),
		}
		if timer {
			resp.TimeLimitSeconds = score.TimeLimits[difficulty]
		}
		for _, question := range questions {
			resp.Questions = append(resp.Questions, questionView{
				Question: question,
				Label:    quiz.QuestionTypeLabel(question.Type),
				Icon:     quiz.QuestionTypeIcon(question.Type),
			})
		}
		s.writeJSON(w, http.StatusOK, resp)
	}
}

type scoreRequest struct {
	Correct    int    `json:"correct"`
	Total      int    `json:"total"`
	Difficulty string `json:"difficulty"`
	Timer      bool   `json:"timer"`
}

// handlePostQuizScore awards XP for a finished quiz.
func (s *Server) handlePostQuizScore() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req scoreRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid body: %w", err))
			return
		}
		difficulty, err := domain.ParseDifficulty(req.Difficulty)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		res := score.Result{
			Correct:    req.Correct,
			Total:      req.Total,
			Difficulty: difficulty,
			Timer:      req.Timer,
		}
		xp, err := s.learner.CompleteQuiz(r.Context(), res)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		res.XP = xp
		s.writeJSON(w, http.StatusOK, res)
	}
}

// handleGetDue lists the cards due today.
func (s *Server) handleGetDue() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		due, err := s.learner.DueCards(r.Context())
		if err != nil {
			s.fail(w, r, err)
			return
		}
		if due == nil {
			due = []learn.DueCard{}
		}
		s.writeJSON(w, http.StatusOK, map[string]any{
			"count": len(due),
			"cards": due,
		})
	}
}

// handleGetPreview shows the schedule each grade would give a card.
func (s *Server) handleGetPreview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		preview, err := s.learner.Preview(r.Context(), r.PathValue("id"))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		out := make(map[string]srs.CardState, len(preview))
		for rating, st := range preview {
			out[rating.String()] = st
		}
		s.writeJSON(w, http.StatusOK, out)
	}
}

// handlePostReview grades a card. The grade comes from a "grade" form
// field or a JSON body {"grade": 3}; names such as "good" are accepted too.
func (s *Server) handlePostReview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		grade, err := readGrade(r)
		if err != nil {
			s.writeError(w, r, http.StatusBadRequest, err)
			return
		}
		rating, err := srs.ParseRating(grade)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		st, err := s.learner.ReviewCard(r.Context(), r.PathValue("id"), rating)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, st)
	}
}

func readGrade(r *http.Request) (string, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct != "application/json" {
		return r.PostFormValue("grade"), nil
	}
	var body struct {
		Grade any `json:"grade"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("invalid body: %w", err)
	}
	switch v := body.Grade.(type) {
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("invalid grade %v", v)
	}
}

// handlePostViewed records that an entity or story was opened.
func (s *Server) handlePostViewed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		created, err := s.learner.MarkViewed(r.Context(), r.PathValue("id"))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]int{"created": created})
	}
}

func (s *Server) handleGetStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := s.learner.Stats(r.Context())
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, stats)
	}
}

func (s *Server) handleGetProgress() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := s.learner.Progress(r.Context())
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, p)
	}
}

// fail maps err to its status code and writes it.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, srs.ErrInvalidRating),
		errors.Is(err, domain.ErrInvalidDifficulty),
		errors.Is(err, learn.ErrInvalidResult):
		status = http.StatusBadRequest
	case errors.Is(err, learn.ErrCardNotFound),
		errors.Is(err, learn.ErrContentNotFound):
		status = http.StatusNotFound
	}
	s.writeError(w, r, status, err)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		s.writeJSON(w, status, map[string]string{"error": http.StatusText(status)})
		return
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("failed to write response", "error", err)
	}
}
