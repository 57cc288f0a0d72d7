package srs

import (
	"errors"
	"testing"
)

func TestRatingValues(t *testing.T) {
	if Again != 1 || Hard != 2 || Good != 3 || Easy != 4 {
		t.Errorf("ratings = %d %d %d %d, want 1 2 3 4", Again, Hard, Good, Easy)
	}
}

func TestRatingString(t *testing.T) {
	tests := []struct {
		r    Rating
		want string
	}{
		{Again, "Again"},
		{Hard, "Hard"},
		{Good, "Good"},
		{Easy, "Easy"},
		{Rating(0), "Rating(0)"},
		{Rating(5), "Rating(5)"},
	}
	for _, tt := range tests {
		if got := tt.r.String(); got != tt.want {
			t.Errorf("Rating(%d).String() = %q, want %q", int(tt.r), got, tt.want)
		}
	}
}

func TestParseRating(t *testing.T) {
	valid := map[string]Rating{"1": Again, "2": Hard, "3": Good, "4": Easy, "Good": Good, "Easy": Easy, "again": Again, "HARD": Hard}
	for in, want := range valid {
		got, err := ParseRating(in)
		if err != nil || got != want {
			t.Errorf("ParseRating(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	for _, in := range []string{"0", "5", "-1", "great", "", "3.5"} {
		if _, err := ParseRating(in); !errors.Is(err, ErrInvalidRating) {
			t.Errorf("ParseRating(%q) error = %v, want ErrInvalidRating", in, err)
		}
	}
}
