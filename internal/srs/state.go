package srs

import "github.com/conorfennell/mythos/internal/domain"

// CardState is the scheduling state of one review card.
type CardState struct {
	CardID     string      `json:"cardId"`
	Interval   int         `json:"interval"`
	NextReview domain.Date `json:"nextReview"`
	EaseFactor float64     `json:"easeFactor"`
	Reviews    int         `json:"reviews"`
	Lapses     int         `json:"lapses"`
	LastReview domain.Date `json:"lastReview"`
	LastRating Rating      `json:"lastRating,omitempty"`
}

// Normalize forward-fills fields that records written before they existed
// leave at their zero value, and clamps values a bad writer may have stored.
func (c CardState) Normalize(p Params, today domain.Date) CardState {
	p = p.withDefaults()
	if c.Interval < 1 {
		c.Interval = 1
	}
	if c.EaseFactor == 0 {
		c.EaseFactor = p.InitialEase
	}
	if c.EaseFactor < p.MinimumEase {
		c.EaseFactor = p.MinimumEase
	}
	if c.NextReview.IsZero() {
		c.NextReview = today
	}
	if c.Reviews < 0 {
		c.Reviews = 0
	}
	if c.Lapses < 0 {
		c.Lapses = 0
	}
	if c.LastRating != 0 && !c.LastRating.IsValid() {
		c.LastRating = 0
	}
	return c
}

// IsDue reports whether the card should be shown on today.
func (c CardState) IsDue(today domain.Date) bool {
	return !c.NextReview.After(today)
}

// Phase is the conceptual learning stage of a card.
type Phase int

const (
	PhaseNew Phase = iota
	PhaseLearning
	PhaseReview
	PhaseLapsed
)

func (p Phase) String() string {
	switch p {
	case PhaseNew:
		return "New"
	case PhaseLearning:
		return "Learning"
	case PhaseReview:
		return "Review"
	case PhaseLapsed:
		return "Lapsed"
	default:
		return "Unknown"
	}
}
