// Package content loads the mythology corpus the engine teaches from.
package content

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/conorfennell/mythos/internal/domain"
)

// Catalog is an immutable, validated set of entities, relations and stories.
type Catalog struct {
	entities []domain.Entity
	edges    []domain.RelationshipEdge
	stories  []domain.Story

	entityByID map[string]int
	storyByID  map[string]int
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// NewCatalog validates the records and indexes them by id. Every problem is
// reported in one error wrapping ErrInvalidContent.
func NewCatalog(entities []domain.Entity, edges []domain.RelationshipEdge, stories []domain.Story) (*Catalog, error) {
	c := &Catalog{
		entities:   entities,
		edges:      edges,
		stories:    stories,
		entityByID: make(map[string]int, len(entities)),
		storyByID:  make(map[string]int, len(stories)),
	}

	var problems []error
	for i, e := range entities {
		if err := validate.Struct(e); err != nil {
			problems = append(problems, fmt.Errorf("entity %q: %w", e.ID, err))
		}
		if _, dup := c.entityByID[e.ID]; dup {
			problems = append(problems, fmt.Errorf("entity %q: duplicate id", e.ID))
			continue
		}
		c.entityByID[e.ID] = i
	}
	for i, s := range stories {
		if err := validate.Struct(s); err != nil {
			problems = append(problems, fmt.Errorf("story %q: %w", s.ID, err))
		}
		_, dupStory := c.storyByID[s.ID]
		_, dupEntity := c.entityByID[s.ID]
		if dupStory || dupEntity {
			problems = append(problems, fmt.Errorf("story %q: duplicate id", s.ID))
			continue
		}
		c.storyByID[s.ID] = i
	}

	edgeIDs := make(map[string]bool, len(edges))
	for _, r := range edges {
		if err := validate.Struct(r); err != nil {
			problems = append(problems, fmt.Errorf("relation %q: %w", r.ID, err))
		}
		if edgeIDs[r.ID] {
			problems = append(problems, fmt.Errorf("relation %q: duplicate id", r.ID))
		}
		edgeIDs[r.ID] = true
		for _, end := range []string{r.FromID, r.ToID} {
			if end == "" {
				continue
			}
			if _, ok := c.entityByID[end]; !ok {
				problems = append(problems, fmt.Errorf("relation %q: unknown entity %q", r.ID, end))
			}
		}
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidContent, errors.Join(problems...))
	}
	return c, nil
}

// Entity returns the entity with id.
func (c *Catalog) Entity(id string) (domain.Entity, bool) {
	i, ok := c.entityByID[id]
	if !ok {
		return domain.Entity{}, false
	}
	return c.entities[i], true
}

// Story returns the story with id.
func (c *Catalog) Story(id string) (domain.Story, bool) {
	i, ok := c.storyByID[id]
	if !ok {
		return domain.Story{}, false
	}
	return c.stories[i], true
}

// Entities returns every entity in load order.
func (c *Catalog) Entities() []domain.Entity { return c.entities }

// Edges returns every relationship edge in load order.
func (c *Catalog) Edges() []domain.RelationshipEdge { return c.edges }

// Stories returns every story in load order.
func (c *Catalog) Stories() []domain.Story { return c.stories }
