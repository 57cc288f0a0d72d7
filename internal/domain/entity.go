package domain

// Entity is the read-only projection of a content item the engine needs.
type Entity struct {
	ID          string   `json:"id" koanf:"id" validate:"required"`
	Name        string   `json:"name" koanf:"name" validate:"required"`
	Domain      []string `json:"domain,omitempty" koanf:"domain" validate:"dive,required"`
	Pantheon    string   `json:"pantheon,omitempty" koanf:"pantheon"`
	Symbols     []string `json:"symbols,omitempty" koanf:"symbols" validate:"dive,required"`
	ImageURL    string   `json:"imageUrl,omitempty" koanf:"image_url" validate:"omitempty,uri"`
	Description string   `json:"description,omitempty" koanf:"description"`
}

// HasDomain reports whether the entity is tagged with domain d.
func (e Entity) HasDomain(d string) bool {
	for _, tag := range e.Domain {
		if tag == d {
			return true
		}
	}
	return false
}

// RelationType names the kind of relationship an edge describes.
type RelationType string

const (
	ParentOf  RelationType = "parent_of"
	ChildOf   RelationType = "child_of"
	SiblingOf RelationType = "sibling_of"
	SpouseOf  RelationType = "spouse_of"
)

// Symmetric reports whether the relation reads the same in both directions.
func (t RelationType) Symmetric() bool {
	return t == SiblingOf || t == SpouseOf
}

// Confidence is the trust tag carried by a relationship edge.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// RelationshipEdge is a typed, confidence-tagged link between two entities.
type RelationshipEdge struct {
	ID         string       `json:"id" koanf:"id" validate:"required"`
	FromID     string       `json:"fromId" koanf:"from" validate:"required"`
	ToID       string       `json:"toId" koanf:"to" validate:"required,nefield=FromID"`
	Type       RelationType `json:"type" koanf:"type" validate:"required,oneof=parent_of child_of sibling_of spouse_of"`
	Confidence Confidence   `json:"confidence" koanf:"confidence" validate:"required,oneof=high medium low"`
}

// Story is a narrative the learner can read; its characters seed story cards.
type Story struct {
	ID         string   `json:"id" koanf:"id" validate:"required"`
	Title      string   `json:"title" koanf:"title" validate:"required"`
	Characters []string `json:"characters" koanf:"characters" validate:"dive,required"`
}
