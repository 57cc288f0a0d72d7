package learn

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conorfennell/mythos/internal/content"
	"github.com/conorfennell/mythos/internal/domain"
	"github.com/conorfennell/mythos/internal/quiz"
	"github.com/conorfennell/mythos/internal/score"
	"github.com/conorfennell/mythos/internal/srs"
	"github.com/conorfennell/mythos/internal/storage"
)

// memStore is an in-memory Store.
type memStore struct {
	mu       sync.Mutex
	viewed   []string
	states   map[string]srs.CardState
	log      []storage.ReviewEntry
	progress storage.Progress
	failNext error
}

func newMemStore() *memStore {
	return &memStore{states: make(map[string]srs.CardState), progress: storage.NewProgress()}
}

func (m *memStore) MarkViewed(_ context.Context, id string, _ time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.viewed {
		if v == id {
			return false, nil
		}
	}
	m.viewed = append(m.viewed, id)
	return true, nil
}

func (m *memStore) Viewed(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.viewed...), nil
}

func (m *memStore) CardState(_ context.Context, id string, _ domain.Date) (*srs.CardState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cs, ok := m.states[id]
	if !ok {
		return nil, nil
	}
	return &cs, nil
}

func (m *memStore) CardStates(context.Context, domain.Date) ([]srs.CardState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []srs.CardState
	for _, cs := range m.states {
		out = append(out, cs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CardID < out[j].CardID })
	return out, nil
}

func (m *memStore) CreateCardStates(_ context.Context, states []srs.CardState) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, cs := range states {
		if _, ok := m.states[cs.CardID]; ok {
			continue
		}
		m.states[cs.CardID] = cs
		n++
	}
	return n, nil
}

func (m *memStore) ApplyReview(_ context.Context, cs srs.CardState, e storage.ReviewEntry, p storage.Progress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failNext; err != nil {
		m.failNext = nil
		return err
	}
	m.states[cs.CardID] = cs
	m.log = append(m.log, e)
	m.progress = p
	return nil
}

func (m *memStore) ReviewDays(context.Context) ([]domain.Date, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[domain.Date]bool)
	var days []domain.Date
	for _, e := range m.log {
		if !seen[e.ReviewedOn] {
			seen[e.ReviewedOn] = true
			days = append(days, e.ReviewedOn)
		}
	}
	return days, nil
}

func (m *memStore) CountReviewsOn(_ context.Context, day domain.Date) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.log {
		if e.ReviewedOn.Equal(day) {
			n++
		}
	}
	return n, nil
}

func (m *memStore) Progress(context.Context) (storage.Progress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.progress
	p.Achievements = append([]string{}, p.Achievements...)
	return p, nil
}

func (m *memStore) SaveProgress(_ context.Context, p storage.Progress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.progress = p
	return nil
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time     { return c.t }
func (c *clock) advance(days int)   { c.t = c.t.AddDate(0, 0, days) }
func (c *clock) today() domain.Date { return domain.DateOf(c.t) }

func testCatalog(t *testing.T) *content.Catalog {
	t.Helper()
	entities := []domain.Entity{
		{ID: "zeus", Name: "Zeus", Pantheon: "Greek", Domain: []string{"sky"}, Symbols: []string{"thunderbolt"}},
		{ID: "hera", Name: "Hera", Pantheon: "Greek", Domain: []string{"marriage"}},
		{ID: "cronus", Name: "Cronus", Pantheon: "Greek", Domain: []string{"time"}},
		{ID: "rhea", Name: "Rhea", Pantheon: "Greek", Domain: []string{"fertility"}},
		{ID: "poseidon", Name: "Poseidon", Pantheon: "Greek", Domain: []string{"sea"}},
	}
	edges := []domain.RelationshipEdge{
		{ID: "r1", FromID: "cronus", ToID: "zeus", Type: domain.ParentOf, Confidence: domain.ConfidenceHigh},
		{ID: "r2", FromID: "zeus", ToID: "hera", Type: domain.SpouseOf, Confidence: domain.ConfidenceHigh},
		{ID: "r3", FromID: "zeus", ToID: "poseidon", Type: domain.SiblingOf, Confidence: domain.ConfidenceMedium},
	}
	stories := []domain.Story{{ID: "wedding", Title: "The Divine Wedding", Characters: []string{"zeus", "hera"}}}
	c, err := content.NewCatalog(entities, edges, stories)
	require.NoError(t, err)
	return c
}

func newTestService(t *testing.T) (*Service, *memStore, *clock) {
	t.Helper()
	sched, err := srs.NewScheduler(srs.Params{})
	require.NoError(t, err)
	store := newMemStore()
	clk := &clock{t: time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)}
	svc := New(store, testCatalog(t), sched,
		WithClock(clk.now),
		WithRand(quiz.NewSeededRand(7)),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	return svc, store, clk
}

func TestMarkViewed(t *testing.T) {
	ctx := context.Background()
	svc, store, clk := newTestService(t)

	_, err := svc.MarkViewed(ctx, "atlantis")
	assert.ErrorIs(t, err, ErrContentNotFound)

	// zeus: one domain, one symbol and a pantheon card.
	created, err := svc.MarkViewed(ctx, "zeus")
	require.NoError(t, err)
	assert.Equal(t, 3, created)

	created, err = svc.MarkViewed(ctx, "zeus")
	require.NoError(t, err)
	assert.Zero(t, created)

	for _, cs := range store.states {
		assert.True(t, cs.NextReview.Equal(clk.today()))
		assert.Equal(t, 1, cs.Interval)
	}

	created, err = svc.MarkViewed(ctx, "wedding")
	require.NoError(t, err)
	assert.Equal(t, 2, created)
	assert.Equal(t, []string{"zeus", "wedding"}, store.viewed)
}

func TestGenerateCardsFromProgress(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)

	got, err := svc.GenerateCardsFromProgress(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	store.viewed = []string{"hera", "removed-entity"}
	got, err = svc.GenerateCardsFromProgress(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Len(t, store.states, 2)

	again, err := svc.GenerateCardsFromProgress(ctx)
	require.NoError(t, err)
	assert.Equal(t, got, again)
	assert.Len(t, store.states, 2)
}

func TestReviewCardRejectsInvalidRating(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)
	_, err := svc.MarkViewed(ctx, "hera")
	require.NoError(t, err)

	due, err := svc.DueCards(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, due)
	id := due[0].Card.ID
	before := store.states[id]

	for _, r := range []srs.Rating{0, 5, -1} {
		_, err := svc.ReviewCard(ctx, id, r)
		assert.ErrorIs(t, err, srs.ErrInvalidRating)
	}
	assert.Equal(t, before, store.states[id])
	assert.Empty(t, store.log)
}

func TestReviewCardUnknown(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.ReviewCard(context.Background(), "nope", srs.Good)
	assert.ErrorIs(t, err, ErrCardNotFound)

	_, err = svc.Preview(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrCardNotFound)
}

func TestReviewCardSchedulesAndLogs(t *testing.T) {
	ctx := context.Background()
	svc, store, clk := newTestService(t)
	_, err := svc.MarkViewed(ctx, "zeus")
	require.NoError(t, err)

	due, err := svc.DueCards(ctx)
	require.NoError(t, err)
	require.Len(t, due, 3)
	assert.Equal(t, "New", due[0].Phase)
	id := due[0].Card.ID

	next, err := svc.ReviewCard(ctx, id, srs.Good)
	require.NoError(t, err)
	assert.Equal(t, 3, next.Interval)
	assert.Equal(t, clk.today().AddDays(3), next.NextReview)
	assert.Equal(t, 1, next.Reviews)
	assert.Equal(t, next, store.states[id])

	require.Len(t, store.log, 1)
	assert.Equal(t, storage.ReviewEntry{CardID: id, Rating: srs.Good, ReviewedOn: clk.today(), Interval: 3}, store.log[0])
	assert.Equal(t, 1, store.progress.Streak.Current)
	assert.Equal(t, 1, store.progress.Streak.TodayCount)

	due, err = svc.DueCards(ctx)
	require.NoError(t, err)
	assert.Len(t, due, 2)

	today, err := svc.TodayStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, today.Reviewed)
}

func TestReviewCardStoreFailure(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)
	_, err := svc.MarkViewed(ctx, "hera")
	require.NoError(t, err)
	due, err := svc.DueCards(ctx)
	require.NoError(t, err)

	boom := errors.New("disk full")
	store.failNext = boom
	_, err = svc.ReviewCard(ctx, due[0].Card.ID, srs.Easy)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, store.log)
}

func TestPreview(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	_, err := svc.MarkViewed(ctx, "hera")
	require.NoError(t, err)
	due, err := svc.DueCards(ctx)
	require.NoError(t, err)

	preview, err := svc.Preview(ctx, due[0].Card.ID)
	require.NoError(t, err)
	require.Len(t, preview, 4)
	assert.Equal(t, 1, preview[srs.Again].Interval)
	assert.Equal(t, 3, preview[srs.Good].Interval)
}

func TestStatsStreakAcrossDays(t *testing.T) {
	ctx := context.Background()
	svc, _, clk := newTestService(t)
	_, err := svc.MarkViewed(ctx, "zeus")
	require.NoError(t, err)

	review := func() {
		t.Helper()
		due, err := svc.DueCards(ctx)
		require.NoError(t, err)
		require.NotEmpty(t, due)
		_, err = svc.ReviewCard(ctx, due[0].Card.ID, srs.Again)
		require.NoError(t, err)
	}

	review()
	review()
	clk.advance(1)
	review()

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Streak)
	assert.Equal(t, 2, stats.LongestStreak)
	assert.Equal(t, 1, stats.Today.Reviewed)
	assert.Equal(t, 3, stats.Cards)

	clk.advance(2)
	stats, err = svc.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Streak)
	assert.Equal(t, 2, stats.LongestStreak)
	assert.Zero(t, stats.Today.Reviewed)
	assert.Equal(t, 3, stats.Due)
}

func TestStatsIgnoresStatesWithoutContent(t *testing.T) {
	ctx := context.Background()
	svc, store, clk := newTestService(t)
	_, err := svc.MarkViewed(ctx, "zeus")
	require.NoError(t, err)

	// A state left behind by content that has since been removed.
	_, err = store.CreateCardStates(ctx, []srs.CardState{svc.scheduler.NewState("deadbeefdeadbeef", clk.today())})
	require.NoError(t, err)
	require.Len(t, store.states, 4)

	due, err := svc.DueCards(ctx)
	require.NoError(t, err)
	assert.Len(t, due, 3)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(due), stats.Due)
	assert.Equal(t, 3, stats.Cards)
}

func TestNewQuiz(t *testing.T) {
	svc, _, _ := newTestService(t)
	qs := svc.NewQuiz(4, domain.Easy)
	require.NotEmpty(t, qs)
	assert.LessOrEqual(t, len(qs), 4)
	for _, q := range qs {
		assert.Len(t, q.Options, quiz.OptionCount)
		assert.Equal(t, domain.Easy, q.Difficulty)
	}
}

func TestCompleteQuiz(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)

	xp, err := svc.CompleteQuiz(ctx, score.Result{Correct: 3, Total: 3, Difficulty: domain.Easy, Timer: true})
	require.NoError(t, err)
	assert.Equal(t, 41, xp)

	xp, err = svc.CompleteQuiz(ctx, score.Result{Correct: 1, Total: 5, Difficulty: domain.Hard})
	require.NoError(t, err)
	assert.Equal(t, 30, xp)

	p, err := svc.Progress(ctx)
	require.NoError(t, err)
	assert.Equal(t, 71, p.XP)
	assert.Equal(t, 2, p.QuizzesTaken)
	assert.ElementsMatch(t, []string{AchievementPerfectQuiz, AchievementFirstQuiz}, p.Achievements)
	assert.Equal(t, p, store.progress)
}

func TestCompleteQuizRejectsBadResults(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)

	_, err := svc.CompleteQuiz(ctx, score.Result{Correct: 4, Total: 3, Difficulty: domain.Easy})
	assert.ErrorIs(t, err, ErrInvalidResult)
	_, err = svc.CompleteQuiz(ctx, score.Result{Correct: 1, Total: 3, Difficulty: "legendary"})
	assert.ErrorIs(t, err, domain.ErrInvalidDifficulty)
	assert.Zero(t, store.progress.QuizzesTaken)
}
