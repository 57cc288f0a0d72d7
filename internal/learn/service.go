// Package learn ties content, the quiz and review engines and the progress
// store together into the learner-facing operations.
package learn

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/conorfennell/mythos/internal/cards"
	"github.com/conorfennell/mythos/internal/domain"
	"github.com/conorfennell/mythos/internal/quiz"
	"github.com/conorfennell/mythos/internal/srs"
	"github.com/conorfennell/mythos/internal/storage"
)

// Store persists learner progress. *storage.DB implements it.
type Store interface {
	MarkViewed(ctx context.Context, contentID string, at time.Time) (bool, error)
	Viewed(ctx context.Context) ([]string, error)
	CardState(ctx context.Context, cardID string, today domain.Date) (*srs.CardState, error)
	CardStates(ctx context.Context, today domain.Date) ([]srs.CardState, error)
	CreateCardStates(ctx context.Context, states []srs.CardState) (int, error)
	ApplyReview(ctx context.Context, cs srs.CardState, entry storage.ReviewEntry, p storage.Progress) error
	ReviewDays(ctx context.Context) ([]domain.Date, error)
	CountReviewsOn(ctx context.Context, day domain.Date) (int, error)
	Progress(ctx context.Context) (storage.Progress, error)
	SaveProgress(ctx context.Context, p storage.Progress) error
}

var _ Store = (*storage.DB)(nil)

// Catalog is the content the service teaches from. *content.Catalog
// implements it.
type Catalog interface {
	cards.Catalog
	Entities() []domain.Entity
	Edges() []domain.RelationshipEdge
}

// Service runs the learner-facing operations.
type Service struct {
	store     Store
	catalog   Catalog
	scheduler *srs.Scheduler
	now       func() time.Time
	rng       quiz.Source
	log       *slog.Logger

	// mu serialises progress updates and quiz generation, whose random
	// source is not safe for concurrent use.
	mu    sync.Mutex
	synth *quiz.Synthesizer
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the source of the current time. Days are taken in the
// returned time's location.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRand sets the random source used to build quizzes.
func WithRand(r quiz.Source) Option {
	return func(s *Service) { s.rng = r }
}

// WithLogger sets the logger. It defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// New creates a Service.
func New(store Store, catalog Catalog, scheduler *srs.Scheduler, opts ...Option) *Service {
	s := &Service{
		store:     store,
		catalog:   catalog,
		scheduler: scheduler,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	var synthOpts []quiz.Option
	if s.rng != nil {
		synthOpts = append(synthOpts, quiz.WithRand(s.rng))
	}
	s.synth = quiz.New(synthOpts...)
	return s
}

func (s *Service) today() domain.Date {
	return domain.DateOf(s.now())
}

// MarkViewed records that the learner opened an entity or story and creates
// scheduling states, due today, for the cards it yields. It returns how many
// new cards were created.
func (s *Service) MarkViewed(ctx context.Context, contentID string) (int, error) {
	_, isEntity := s.catalog.Entity(contentID)
	_, isStory := s.catalog.Story(contentID)
	if !isEntity && !isStory {
		return 0, fmt.Errorf("%w: %s", ErrContentNotFound, contentID)
	}
	if _, err := s.store.MarkViewed(ctx, contentID, s.now()); err != nil {
		return 0, err
	}
	created, err := s.createStates(ctx, cards.FromProgress([]string{contentID}, s.catalog))
	if err != nil {
		return 0, err
	}
	s.log.Info("content viewed", FieldContentID, contentID, FieldCount, created)
	return created, nil
}

// GenerateCardsFromProgress mints the cards for everything the learner has
// viewed and creates states, due today, for any card that lacks one.
func (s *Service) GenerateCardsFromProgress(ctx context.Context) ([]domain.ReviewCard, error) {
	minted, err := s.mintViewed(ctx)
	if err != nil {
		return nil, err
	}
	created, err := s.createStates(ctx, minted)
	if err != nil {
		return nil, err
	}
	if created > 0 {
		s.log.Info("review cards created", FieldCount, created)
	}
	return minted, nil
}

func (s *Service) mintViewed(ctx context.Context) ([]domain.ReviewCard, error) {
	viewed, err := s.store.Viewed(ctx)
	if err != nil {
		return nil, err
	}
	return cards.FromProgress(viewed, s.catalog), nil
}

func (s *Service) createStates(ctx context.Context, cs []domain.ReviewCard) (int, error) {
	if len(cs) == 0 {
		return 0, nil
	}
	today := s.today()
	states := make([]srs.CardState, 0, len(cs))
	for _, c := range cs {
		states = append(states, s.scheduler.NewState(c.ID, today))
	}
	return s.store.CreateCardStates(ctx, states)
}

// DueCard pairs a card with its scheduling state.
type DueCard struct {
	Card  domain.ReviewCard `json:"card"`
	State srs.CardState     `json:"state"`
	Phase string            `json:"phase"`
}

// liveStates returns the stored states whose card is still minted from the
// current content, together with the minted cards by id.
func (s *Service) liveStates(ctx context.Context, today domain.Date) ([]srs.CardState, map[string]domain.ReviewCard, error) {
	states, err := s.store.CardStates(ctx, today)
	if err != nil {
		return nil, nil, err
	}
	minted, err := s.mintViewed(ctx)
	if err != nil {
		return nil, nil, err
	}
	byID := make(map[string]domain.ReviewCard, len(minted))
	for _, c := range minted {
		byID[c.ID] = c
	}

	live := make([]srs.CardState, 0, len(states))
	for _, st := range states {
		if _, ok := byID[st.CardID]; ok {
			live = append(live, st)
		}
	}
	return live, byID, nil
}

// DueCards returns the cards due today, most overdue first. States whose
// card no longer exists in the content are skipped.
func (s *Service) DueCards(ctx context.Context) ([]DueCard, error) {
	today := s.today()
	states, byID, err := s.liveStates(ctx, today)
	if err != nil {
		return nil, err
	}

	var out []DueCard
	for _, st := range srs.Due(states, today) {
		out = append(out, DueCard{Card: byID[st.CardID], State: st, Phase: s.scheduler.Phase(st).String()})
	}
	return out, nil
}

// Preview returns the state each rating would give the card today.
func (s *Service) Preview(ctx context.Context, cardID string) (map[srs.Rating]srs.CardState, error) {
	today := s.today()
	st, err := s.store.CardState(ctx, cardID, today)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, fmt.Errorf("%w: %s", ErrCardNotFound, cardID)
	}
	return s.scheduler.Preview(*st, today), nil
}

// ReviewCard applies rating to the card, logs the review and advances the
// learner's streak. An out-of-range rating returns srs.ErrInvalidRating and
// stores nothing.
func (s *Service) ReviewCard(ctx context.Context, cardID string, rating srs.Rating) (srs.CardState, error) {
	if !rating.IsValid() {
		return srs.CardState{}, fmt.Errorf("%w: %d", srs.ErrInvalidRating, int(rating))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.today()
	st, err := s.store.CardState(ctx, cardID, today)
	if err != nil {
		return srs.CardState{}, err
	}
	if st == nil {
		return srs.CardState{}, fmt.Errorf("%w: %s", ErrCardNotFound, cardID)
	}

	next, err := s.scheduler.Review(*st, rating, today)
	if err != nil {
		return srs.CardState{}, err
	}

	p, err := s.store.Progress(ctx)
	if err != nil {
		return srs.CardState{}, err
	}
	p.Streak = p.Streak.Record(today)
	p.Achievements = award(p)

	entry := storage.ReviewEntry{
		CardID:     cardID,
		Rating:     rating,
		ReviewedOn: today,
		Interval:   next.Interval,
	}
	if err := s.store.ApplyReview(ctx, next, entry, p); err != nil {
		return srs.CardState{}, err
	}

	s.log.Info("card reviewed",
		FieldCardID, cardID,
		FieldRating, rating.String(),
		FieldInterval, next.Interval,
		"next_review", next.NextReview.String(),
	)
	return next, nil
}

// TodayStats returns the number of reviews completed today.
func (s *Service) TodayStats(ctx context.Context) (srs.TodayStats, error) {
	today := s.today()
	n, err := s.store.CountReviewsOn(ctx, today)
	if err != nil {
		return srs.TodayStats{}, err
	}
	return srs.TodayStats{Date: today, Reviewed: n}, nil
}

// Progress returns the learner's stored progress record.
func (s *Service) Progress(ctx context.Context) (storage.Progress, error) {
	return s.store.Progress(ctx)
}

// Stats summarises the learner's standing.
type Stats struct {
	Today         srs.TodayStats `json:"today"`
	Streak        int            `json:"streak"`
	LongestStreak int            `json:"longestStreak"`
	Due           int            `json:"due"`
	Cards         int            `json:"cards"`
	XP            int            `json:"xp"`
	QuizzesTaken  int            `json:"quizzesTaken"`
	Achievements  []string       `json:"achievements"`
}

// Stats gathers today's counts, the streak and the progress totals. The
// streak is recomputed from the review log. Due and Cards only count cards
// still minted from the current content.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	today := s.today()
	ts, err := s.TodayStats(ctx)
	if err != nil {
		return Stats{}, err
	}
	days, err := s.store.ReviewDays(ctx)
	if err != nil {
		return Stats{}, err
	}
	states, _, err := s.liveStates(ctx, today)
	if err != nil {
		return Stats{}, err
	}
	p, err := s.store.Progress(ctx)
	if err != nil {
		return Stats{}, err
	}

	streak := srs.StreakFromDays(days, today)
	return Stats{
		Today:         ts,
		Streak:        streak,
		LongestStreak: max(p.Streak.Longest, streak),
		Due:           srs.DueCount(states, today),
		Cards:         len(states),
		XP:            p.XP,
		QuizzesTaken:  p.QuizzesTaken,
		Achievements:  p.Achievements,
	}, nil
}
