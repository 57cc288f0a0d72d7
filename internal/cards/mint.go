// Package cards mints review cards from content the learner has engaged with.
package cards

import (
	"fmt"
	"strings"

	"github.com/conorfennell/mythos/internal/domain"
)

// Catalog resolves content by id.
type Catalog interface {
	Entity(id string) (domain.Entity, bool)
	Story(id string) (domain.Story, bool)
}

// Mint returns every card the entity's content supports.
func Mint(e domain.Entity) []domain.ReviewCard {
	var out []domain.ReviewCard

	if e.ImageURL != "" || e.Description != "" {
		c := domain.ReviewCard{
			ID:       ID(domain.DeityRecognition, e.ID),
			Question: "Which figure is this?",
			Answer:   e.Name,
			ImageURL: e.ImageURL,
			Metadata: domain.DeityRecognitionMeta{EntityID: e.ID},
		}
		if e.ImageURL == "" {
			c.Question = fmt.Sprintf("Which figure is described as: %s", e.Description)
		}
		if e.Pantheon != "" {
			c.Hint = fmt.Sprintf("A figure of the %s pantheon", e.Pantheon)
		}
		out = append(out, c)
	}

	for _, d := range e.Domain {
		out = append(out, domain.ReviewCard{
			ID:       ID(domain.DomainMatch, e.ID, d),
			Question: fmt.Sprintf("Which figure is associated with %s?", d),
			Answer:   e.Name,
			Hint:     hintFromPantheon(e),
			Metadata: domain.DomainMatchMeta{EntityID: e.ID, Domain: d},
		})
	}

	for _, s := range e.Symbols {
		out = append(out, domain.ReviewCard{
			ID:       ID(domain.SymbolMatch, e.ID, s),
			Question: fmt.Sprintf("Whose symbol is the %s?", s),
			Answer:   e.Name,
			Hint:     hintFromDomains(e),
			Metadata: domain.SymbolMatchMeta{EntityID: e.ID, Symbol: s},
		})
	}

	if e.Pantheon != "" {
		out = append(out, domain.ReviewCard{
			ID:       ID(domain.PantheonMatch, e.ID),
			Question: fmt.Sprintf("Which pantheon does %s belong to?", e.Name),
			Answer:   e.Pantheon,
			ImageURL: e.ImageURL,
			Metadata: domain.PantheonMatchMeta{EntityID: e.ID, Pantheon: e.Pantheon},
		})
	}
	return out
}

// MintStory returns one card per known character of the story.
func MintStory(s domain.Story, catalog Catalog) []domain.ReviewCard {
	var out []domain.ReviewCard
	for _, id := range s.Characters {
		e, ok := catalog.Entity(id)
		if !ok {
			continue
		}
		out = append(out, domain.ReviewCard{
			ID:       ID(domain.StoryCharacter, s.ID, e.ID),
			Question: fmt.Sprintf("Which figure appears in %q and %s?", s.Title, roleHint(e)),
			Answer:   e.Name,
			Hint:     hintFromPantheon(e),
			ImageURL: e.ImageURL,
			Metadata: domain.StoryCharacterMeta{StoryID: s.ID, EntityID: e.ID},
		})
	}
	return out
}

// FromProgress mints the cards for every viewed entity or story id, in view
// order, dropping ids the catalog does not know and duplicate cards.
func FromProgress(viewed []string, catalog Catalog) []domain.ReviewCard {
	var out []domain.ReviewCard
	seen := make(map[string]bool)
	add := func(cs []domain.ReviewCard) {
		for _, c := range cs {
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			out = append(out, c)
		}
	}
	for _, id := range viewed {
		if e, ok := catalog.Entity(id); ok {
			add(Mint(e))
			continue
		}
		if s, ok := catalog.Story(id); ok {
			add(MintStory(s, catalog))
		}
	}
	return out
}

func hintFromPantheon(e domain.Entity) string {
	if e.Pantheon == "" {
		return ""
	}
	return fmt.Sprintf("%s pantheon", e.Pantheon)
}

func hintFromDomains(e domain.Entity) string {
	if len(e.Domain) == 0 {
		return ""
	}
	return "Associated with " + strings.Join(e.Domain, ", ")
}

func roleHint(e domain.Entity) string {
	if len(e.Domain) == 0 {
		return "plays a part in it"
	}
	return "is associated with " + e.Domain[0]
}
