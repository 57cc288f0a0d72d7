package srs

import (
	"fmt"
	"math"
	"sort"

	"github.com/conorfennell/mythos/internal/domain"
)

// intervals are computed as ceil(x) but floating-point products such as
// 10*1.2 land a hair above the integer, so ceil works on x minus this slack.
const ceilSlack = 1e-9

// Scheduler advances card states with an SM-2 style formula.
type Scheduler struct {
	params Params
}

// NewScheduler creates a Scheduler. Zero-valued params take their defaults.
func NewScheduler(p Params) (*Scheduler, error) {
	p = p.withDefaults()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Scheduler{params: p}, nil
}

// Params returns the effective parameters.
func (s *Scheduler) Params() Params { return s.params }

// NewState returns the state of a card surfaced for the first time on today.
func (s *Scheduler) NewState(cardID string, today domain.Date) CardState {
	return CardState{
		CardID:     cardID,
		Interval:   1,
		NextReview: today,
		EaseFactor: s.params.InitialEase,
	}
}

// Review applies rating to state on today and returns the new state.
// An out-of-range rating returns ErrInvalidRating with the state unchanged.
func (s *Scheduler) Review(state CardState, rating Rating, today domain.Date) (CardState, error) {
	if !rating.IsValid() {
		return state, fmt.Errorf("%w: %d", ErrInvalidRating, int(rating))
	}
	next := state.Normalize(s.params, today)
	p := s.params

	switch rating {
	case Again:
		next.Lapses++
		next.Interval = 1
		next.EaseFactor = math.Max(p.MinimumEase, next.EaseFactor-0.2)
	case Hard:
		next.Interval = grow(next.Interval, p.HardFactor)
		next.EaseFactor = math.Max(p.MinimumEase, next.EaseFactor-0.1)
	case Good:
		next.Interval = grow(next.Interval, next.EaseFactor)
	case Easy:
		next.Interval = grow(next.Interval, next.EaseFactor*p.EasyBonus)
		next.EaseFactor += 0.1
	}
	next.EaseFactor = roundEase(next.EaseFactor)
	if next.Interval > p.MaximumInterval {
		next.Interval = p.MaximumInterval
	}
	next.Reviews++
	next.LastRating = rating
	next.LastReview = today
	next.NextReview = today.AddDays(next.Interval)
	return next, nil
}

// Preview returns the state each rating would produce without committing any.
func (s *Scheduler) Preview(state CardState, today domain.Date) map[Rating]CardState {
	out := make(map[Rating]CardState, len(Ratings))
	for _, r := range Ratings {
		next, _ := s.Review(state, r, today)
		out[r] = next
	}
	return out
}

// Phase classifies state. A card whose last rating was Again stays Lapsed
// until the next successful review puts it back into Learning.
func (s *Scheduler) Phase(state CardState) Phase {
	switch {
	case state.Reviews == 0:
		return PhaseNew
	case state.LastRating == Again:
		return PhaseLapsed
	case state.Interval < s.params.GraduationDays:
		return PhaseLearning
	default:
		return PhaseReview
	}
}

// Due returns the states scheduled for today or earlier, most overdue first.
func Due(states []CardState, today domain.Date) []CardState {
	var due []CardState
	for _, st := range states {
		if st.IsDue(today) {
			due = append(due, st)
		}
	}
	sort.SliceStable(due, func(i, j int) bool {
		return due[i].NextReview.Before(due[j].NextReview)
	})
	return due
}

// DueCount returns len(Due(states, today)) without allocating.
func DueCount(states []CardState, today domain.Date) int {
	n := 0
	for _, st := range states {
		if st.IsDue(today) {
			n++
		}
	}
	return n
}

func grow(interval int, factor float64) int {
	n := int(math.Ceil(float64(interval)*factor - ceilSlack))
	if n < 1 {
		return 1
	}
	return n
}

func roundEase(ef float64) float64 {
	return math.Round(ef*100) / 100
}
