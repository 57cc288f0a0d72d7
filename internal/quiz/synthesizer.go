package quiz

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/conorfennell/mythos/internal/domain"
	"github.com/conorfennell/mythos/internal/graph"
)

// DomainShare is the target fraction of domain questions per difficulty.
// Easier quizzes lean on domain questions, harder ones on relationships.
var DomainShare = map[domain.Difficulty]float64{
	domain.Easy:   0.6,
	domain.Medium: 0.4,
	domain.Hard:   0.2,
}

// relationFor maps each relationship question type to the graph relation
// that, read from the subject, yields the correct answers.
var relationFor = []struct {
	qtype QuestionType
	rel   graph.Relation
}{
	{Parent, graph.ChildOf},
	{Child, graph.ParentOf},
	{Sibling, graph.SiblingOf},
	{Spouse, graph.SpouseOf},
}

var questionFormats = map[QuestionType]string{
	Parent:  "Who is the parent of %s?",
	Child:   "Who is a child of %s?",
	Sibling: "Who is a sibling of %s?",
	Spouse:  "Who is the spouse or consort of %s?",
	Domain:  "Which figure is associated with %s?",
}

// Synthesizer builds quizzes. It is not safe for concurrent use when its
// Source is not.
type Synthesizer struct {
	rng   Source
	newID func() string
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithRand makes the synthesizer draw shuffles and samples from r.
func WithRand(r Source) Option {
	return func(s *Synthesizer) { s.rng = r }
}

// WithIDs overrides how question ids are minted.
func WithIDs(f func() string) Option {
	return func(s *Synthesizer) { s.newID = f }
}

// New creates a Synthesizer. Without WithRand it seeds from the clock.
func New(opts ...Option) *Synthesizer {
	s := &Synthesizer{newID: uuid.NewString}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = NewSeededRand(0)
	}
	return s
}

// Generate builds a quiz with a fresh clock-seeded Synthesizer.
func Generate(entities []domain.Entity, edges []domain.RelationshipEdge, count int, difficulty domain.Difficulty) []Question {
	return New().Generate(entities, edges, count, difficulty)
}

// Mix returns how many domain and relationship questions a quiz of count
// items aims for at difficulty.
func Mix(count int, difficulty domain.Difficulty) (domainTarget, relationTarget int) {
	share, ok := DomainShare[difficulty]
	if !ok {
		share = DomainShare[domain.Medium]
	}
	domainTarget = int(math.Round(float64(count) * share))
	return domainTarget, count - domainTarget
}

// fact is one answerable question before distractors are chosen.
type fact struct {
	qtype   QuestionType
	subject domain.Entity
	answer  domain.Entity
	tag     string
	// satisfies lists the ids of every entity that is also a correct answer.
	satisfies map[string]bool
}

func (f fact) key() Key {
	k := Key{EntityID: f.subject.ID, Type: f.qtype}
	if f.qtype != Domain {
		k.CorrectEntityID = f.answer.ID
	}
	return k
}

type deck struct {
	facts []fact
	next  int
}

func (d *deck) pop() (fact, bool) {
	if d.next >= len(d.facts) {
		return fact{}, false
	}
	f := d.facts[d.next]
	d.next++
	return f, true
}

// Generate returns at most count questions mixing relationship and domain
// items for difficulty. It never fails: undersized inputs yield fewer
// questions, and an empty entity list yields none.
func (s *Synthesizer) Generate(entities []domain.Entity, edges []domain.RelationshipEdge, count int, difficulty domain.Difficulty) []Question {
	if len(entities) == 0 || count <= 0 {
		return nil
	}
	if !difficulty.IsValid() {
		difficulty = domain.Medium
	}

	byID := make(map[string]domain.Entity, len(entities))
	for _, e := range entities {
		byID[e.ID] = e
	}
	idx := graph.Build(edges)

	relations := &deck{facts: s.relationFacts(entities, byID, idx)}
	domains := &deck{facts: s.domainFacts(entities)}

	domainTarget, relationTarget := Mix(count, difficulty)
	if len(relations.facts) == 0 {
		domainTarget, relationTarget = count, 0
	}

	out := make([]Question, 0, min(count, len(relations.facts)+len(domains.facts)))
	seen := make(map[Key]bool)
	emit := func(d *deck, limit int) {
		for added := 0; added < limit && len(out) < count; {
			f, ok := d.pop()
			if !ok {
				return
			}
			if seen[f.key()] {
				continue
			}
			q, ok := s.build(f, entities, difficulty)
			if !ok {
				continue
			}
			seen[f.key()] = true
			out = append(out, q)
			added++
		}
	}
	emit(relations, relationTarget)
	emit(domains, domainTarget)
	// Whichever kind fell short is made up by the other.
	emit(relations, count)
	emit(domains, count)

	shuffle(s.rng, out)
	return out
}

// relationFacts enumerates one fact per (subject, relation, answer) reading of
// every qualifying edge whose endpoints are both known, in random order.
func (s *Synthesizer) relationFacts(entities []domain.Entity, byID map[string]domain.Entity, idx *graph.Index) []fact {
	var facts []fact
	for _, subject := range entities {
		for _, rf := range relationFor {
			related := idx.Related(subject.ID, rf.rel)
			if len(related) == 0 {
				continue
			}
			satisfies := make(map[string]bool, len(related))
			for _, id := range related {
				satisfies[id] = true
			}
			for _, id := range related {
				answer, ok := byID[id]
				if !ok {
					continue
				}
				facts = append(facts, fact{
					qtype:     rf.qtype,
					subject:   subject,
					answer:    answer,
					satisfies: satisfies,
				})
			}
		}
	}
	shuffle(s.rng, facts)
	return facts
}

// domainFacts picks one random domain tag for every tagged entity.
func (s *Synthesizer) domainFacts(entities []domain.Entity) []fact {
	var facts []fact
	for _, e := range entities {
		if len(e.Domain) == 0 {
			continue
		}
		tag := e.Domain[s.rng.Intn(len(e.Domain))]
		satisfies := make(map[string]bool)
		for _, other := range entities {
			if other.HasDomain(tag) {
				satisfies[other.ID] = true
			}
		}
		facts = append(facts, fact{
			qtype:     Domain,
			subject:   e,
			answer:    e,
			tag:       tag,
			satisfies: satisfies,
		})
	}
	shuffle(s.rng, facts)
	return facts
}

func (s *Synthesizer) build(f fact, entities []domain.Entity, difficulty domain.Difficulty) (Question, bool) {
	distractors, ok := s.distractors(f, entities)
	if !ok {
		return Question{}, false
	}
	options := append([]string{f.answer.Name}, distractors...)
	shuffle(s.rng, options)

	q := Question{
		ID:             s.newID(),
		EntityID:       f.subject.ID,
		EntityName:     f.subject.Name,
		EntityImageURL: f.subject.ImageURL,
		Type:           f.qtype,
		CorrectAnswer:  f.answer.Name,
		Options:        options,
		Difficulty:     difficulty,
	}
	if f.qtype == Domain {
		q.Text = fmt.Sprintf(questionFormats[Domain], f.tag)
	} else {
		q.Text = fmt.Sprintf(questionFormats[f.qtype], f.subject.Name)
		q.CorrectEntityID = f.answer.ID
	}
	return q, true
}

// distractors samples OptionCount-1 distinct names other than the correct
// answer. Entities that do not satisfy the question are preferred; when too
// few exist any other entity is used. It reports false when even the relaxed
// pool cannot fill the options.
func (s *Synthesizer) distractors(f fact, entities []domain.Entity) ([]string, bool) {
	need := OptionCount - 1
	order := make([]int, len(entities))
	for i := range order {
		order[i] = i
	}
	shuffle(s.rng, order)

	picked := make([]string, 0, need)
	used := map[string]bool{f.answer.Name: true}
	take := func(preferred bool) {
		for _, i := range order {
			if len(picked) == need {
				return
			}
			e := entities[i]
			if used[e.Name] || e.Name == "" {
				continue
			}
			clean := !f.satisfies[e.ID] && e.ID != f.subject.ID
			if clean != preferred {
				continue
			}
			used[e.Name] = true
			picked = append(picked, e.Name)
		}
	}
	take(true)
	take(false)
	return picked, len(picked) == need
}
