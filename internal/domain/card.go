package domain

import (
	"encoding/json"
	"fmt"
)

// CardType discriminates the ReviewCard variants.
type CardType string

const (
	DeityRecognition CardType = "deity-recognition"
	DomainMatch      CardType = "domain-match"
	SymbolMatch      CardType = "symbol-match"
	PantheonMatch    CardType = "pantheon-match"
	StoryCharacter   CardType = "story-character"
)

// Metadata traces a card back to its source content. Each variant carries
// only the fields its card type needs.
type Metadata interface {
	CardType() CardType
}

// DeityRecognitionMeta names the entity a recognition card shows.
type DeityRecognitionMeta struct {
	EntityID string `json:"entityId"`
}

// DomainMatchMeta ties a card to one domain of an entity.
type DomainMatchMeta struct {
	EntityID string `json:"entityId"`
	Domain   string `json:"domain"`
}

// SymbolMatchMeta ties a card to one symbol of an entity.
type SymbolMatchMeta struct {
	EntityID string `json:"entityId"`
	Symbol   string `json:"symbol"`
}

// PantheonMatchMeta ties a card to the pantheon an entity belongs to.
type PantheonMatchMeta struct {
	EntityID string `json:"entityId"`
	Pantheon string `json:"pantheon"`
}

// StoryCharacterMeta links a story to one of its characters.
type StoryCharacterMeta struct {
	StoryID  string `json:"storyId"`
	EntityID string `json:"entityId"`
}

func (DeityRecognitionMeta) CardType() CardType { return DeityRecognition }
func (DomainMatchMeta) CardType() CardType      { return DomainMatch }
func (SymbolMatchMeta) CardType() CardType      { return SymbolMatch }
func (PantheonMatchMeta) CardType() CardType    { return PantheonMatch }
func (StoryCharacterMeta) CardType() CardType   { return StoryCharacter }

// ReviewCard is a single fact presented for spaced review.
type ReviewCard struct {
	ID       string
	Question string
	Answer   string
	Hint     string
	ImageURL string
	Metadata Metadata
}

// Type returns the card's variant, taken from its metadata.
func (c ReviewCard) Type() CardType {
	if c.Metadata == nil {
		return ""
	}
	return c.Metadata.CardType()
}

type reviewCardJSON struct {
	ID       string          `json:"id"`
	Type     CardType        `json:"type"`
	Question string          `json:"question"`
	Answer   string          `json:"answer"`
	Hint     string          `json:"hint,omitempty"`
	ImageURL string          `json:"imageUrl,omitempty"`
	Metadata json.RawMessage `json:"metadata"`
}

// MarshalJSON implements json.Marshaler.
func (c ReviewCard) MarshalJSON() ([]byte, error) {
	if c.Metadata == nil {
		return nil, fmt.Errorf("%w: card %s has no metadata", ErrInvalidCardType, c.ID)
	}
	meta, err := json.Marshal(c.Metadata)
	if err != nil {
		return nil, err
	}
	return json.Marshal(reviewCardJSON{
		ID:       c.ID,
		Type:     c.Type(),
		Question: c.Question,
		Answer:   c.Answer,
		Hint:     c.Hint,
		ImageURL: c.ImageURL,
		Metadata: meta,
	})
}

// UnmarshalJSON implements json.Unmarshaler, decoding metadata by type.
func (c *ReviewCard) UnmarshalJSON(data []byte) error {
	var raw reviewCardJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	meta, err := decodeMetadata(raw.Type, raw.Metadata)
	if err != nil {
		return err
	}
	*c = ReviewCard{
		ID:       raw.ID,
		Question: raw.Question,
		Answer:   raw.Answer,
		Hint:     raw.Hint,
		ImageURL: raw.ImageURL,
		Metadata: meta,
	}
	return nil
}

func decodeMetadata(t CardType, data json.RawMessage) (Metadata, error) {
	var (
		meta Metadata
		err  error
	)
	switch t {
	case DeityRecognition:
		var m DeityRecognitionMeta
		err = json.Unmarshal(data, &m)
		meta = m
	case DomainMatch:
		var m DomainMatchMeta
		err = json.Unmarshal(data, &m)
		meta = m
	case SymbolMatch:
		var m SymbolMatchMeta
		err = json.Unmarshal(data, &m)
		meta = m
	case PantheonMatch:
		var m PantheonMatchMeta
		err = json.Unmarshal(data, &m)
		meta = m
	case StoryCharacter:
		var m StoryCharacterMeta
		err = json.Unmarshal(data, &m)
		meta = m
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidCardType, t)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s metadata: %w", t, err)
	}
	return meta, nil
}
