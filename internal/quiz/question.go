// Package quiz synthesizes multiple-choice questions from the relationship
// graph and the domain tags of mythological figures.
package quiz

import "github.com/conorfennell/mythos/internal/domain"

// OptionCount is the number of choices every question carries.
const OptionCount = 4

// QuestionType identifies what a question asks about.
type QuestionType string

const (
	Parent  QuestionType = "parent"
	Child   QuestionType = "child"
	Sibling QuestionType = "sibling"
	Spouse  QuestionType = "spouse"
	Domain  QuestionType = "domain"
)

// QuestionTypes lists every question type.
var QuestionTypes = []QuestionType{Parent, Child, Sibling, Spouse, Domain}

// Question is one multiple-choice item of a quiz session.
type Question struct {
	ID              string            `json:"id"`
	EntityID        string            `json:"entityId"`
	EntityName      string            `json:"entityName"`
	EntityImageURL  string            `json:"entityImageUrl,omitempty"`
	Type            QuestionType      `json:"questionType"`
	Text            string            `json:"questionText"`
	CorrectAnswer   string            `json:"correctAnswer"`
	CorrectEntityID string            `json:"correctEntityId,omitempty"`
	Options         []string          `json:"options"`
	Difficulty      domain.Difficulty `json:"difficulty"`
}

// Key identifies a question for deduplication within one quiz.
type Key struct {
	EntityID        string
	Type            QuestionType
	CorrectEntityID string
}

// Key returns the deduplication key of q.
func (q Question) Key() Key {
	return Key{EntityID: q.EntityID, Type: q.Type, CorrectEntityID: q.CorrectEntityID}
}

// IsCorrect reports whether answer matches the correct option.
func (q Question) IsCorrect(answer string) bool {
	return answer == q.CorrectAnswer
}

var typeLabels = map[QuestionType]string{
	Parent:  "Parent",
	Child:   "Child",
	Sibling: "Sibling",
	Spouse:  "Spouse/Consort",
	Domain:  "Domain",
}

var typeIcons = map[QuestionType]string{
	Parent:  "👑",
	Child:   "👶",
	Sibling: "👥",
	Spouse:  "💕",
	Domain:  "✨",
}

// QuestionTypeLabel returns the display label for t.
func QuestionTypeLabel(t QuestionType) string {
	return typeLabels[t]
}

// QuestionTypeIcon returns the display glyph for t.
func QuestionTypeIcon(t QuestionType) string {
	return typeIcons[t]
}
