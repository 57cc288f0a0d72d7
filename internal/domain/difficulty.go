package domain

import "fmt"

// Difficulty selects reward, time budget and question mix for a quiz.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Difficulties lists every valid difficulty, easiest first.
var Difficulties = []Difficulty{Easy, Medium, Hard}

// IsValid reports whether d is one of the known difficulties.
func (d Difficulty) IsValid() bool {
	return d == Easy || d == Medium || d == Hard
}

// ParseDifficulty converts s into a Difficulty. The empty string maps to Medium.
func ParseDifficulty(s string) (Difficulty, error) {
	if s == "" {
		return Medium, nil
	}
	d := Difficulty(s)
	if !d.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidDifficulty, s)
	}
	return d, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Difficulty) UnmarshalText(text []byte) error {
	v, err := ParseDifficulty(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}
