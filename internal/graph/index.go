// Package graph indexes typed relationship edges for constant-time lookup by
// entity and relation.
package graph

import "github.com/conorfennell/mythos/internal/domain"

// Relation is a directed reading of an edge type as seen from one endpoint.
// Directional edge types produce a forward and a reverse relation; symmetric
// types read the same from both ends.
type Relation string

const (
	ParentOf  Relation = "parent_of"  // subject is the parent of the neighbour
	ChildOf   Relation = "child_of"   // subject is a child of the neighbour
	SiblingOf Relation = "sibling_of"
	SpouseOf  Relation = "spouse_of"
)

// Reverse returns the relation read from the other endpoint.
func Reverse(t domain.RelationType) Relation {
	switch t {
	case domain.ParentOf:
		return ChildOf
	case domain.ChildOf:
		return ParentOf
	case domain.SiblingOf, domain.SpouseOf:
		return Relation(t)
	default:
		return Relation("inverse:" + string(t))
	}
}

// Index is a bidirectional adjacency over qualifying edges.
type Index struct {
	adj   map[string]map[Relation][]string
	seen  map[link]bool
	edges []domain.RelationshipEdge
}

type link struct {
	from, to string
	rel      Relation
}

// Build indexes edges, dropping those tagged with low confidence, self-loops,
// and duplicates of an edge already indexed.
func Build(edges []domain.RelationshipEdge) *Index {
	idx := &Index{
		adj:  make(map[string]map[Relation][]string),
		seen: make(map[link]bool),
	}
	for _, e := range edges {
		if !Qualifies(e) {
			continue
		}
		forward := Relation(e.Type)
		if e.Type == domain.ChildOf {
			forward = ChildOf
		}
		added := idx.add(e.FromID, forward, e.ToID)
		if idx.add(e.ToID, Reverse(e.Type), e.FromID) || added {
			idx.edges = append(idx.edges, e)
		}
	}
	return idx
}

// Qualifies reports whether an edge may be used to synthesize questions.
func Qualifies(e domain.RelationshipEdge) bool {
	return e.Confidence != domain.ConfidenceLow && e.FromID != "" && e.ToID != "" && e.FromID != e.ToID
}

func (idx *Index) add(from string, rel Relation, to string) bool {
	l := link{from: from, to: to, rel: rel}
	if idx.seen[l] {
		return false
	}
	idx.seen[l] = true
	byRel, ok := idx.adj[from]
	if !ok {
		byRel = make(map[Relation][]string)
		idx.adj[from] = byRel
	}
	byRel[rel] = append(byRel[rel], to)
	return true
}

// Related returns the neighbours of id under rel, in insertion order.
func (idx *Index) Related(id string, rel Relation) []string {
	return idx.adj[id][rel]
}

// Has reports whether rel links from to to.
func (idx *Index) Has(from string, rel Relation, to string) bool {
	return idx.seen[link{from: from, to: to, rel: rel}]
}

// Relations returns every relation under which id has at least one neighbour.
func (idx *Index) Relations(id string) map[Relation][]string {
	return idx.adj[id]
}

// Edges returns the qualifying edges that were indexed.
func (idx *Index) Edges() []domain.RelationshipEdge {
	return idx.edges
}

// Len returns the number of qualifying edges.
func (idx *Index) Len() int {
	return len(idx.edges)
}
