package assessment

import (
	"slices"

	"github.com/DjordjeVuckovic/pref-assess/internal/domain"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
)

// History is a read-only snapshot of one assignment's documents and relations.
// The strategy loads it once per call and never mutates the store through it.
type History struct {
	assignment domain.Assignment
	docs       []domain.Document
	byID       map[uuid.UUID]domain.Document
	relations  []domain.Relation
}

func NewHistory(a domain.Assignment, docs []domain.Document, relations []domain.Relation) *History {
	sorted := slices.Clone(docs)
	slices.SortFunc(sorted, func(x, y domain.Document) int {
		switch {
		case x.Less(y):
			return -1
		case y.Less(x):
			return 1
		default:
			return 0
		}
	})

	byID := make(map[uuid.UUID]domain.Document, len(sorted))
	for _, d := range sorted {
		byID[d.ID] = d
	}

	return &History{
		assignment: a,
		docs:       sorted,
		byID:       byID,
		relations:  slices.Clone(relations),
	}
}

func (h *History) Assignment() domain.Assignment {
	return h.assignment
}

// Documents returns the assignment's documents in descending score order.
func (h *History) Documents() []domain.Document {
	return h.docs
}

func (h *History) Document(id uuid.UUID) (domain.Document, bool) {
	d, ok := h.byID[id]
	return d, ok
}

func (h *History) Relations() []domain.Relation {
	return h.relations
}

func (h *History) RelationsFor(doc uuid.UUID) []domain.Relation {
	var out []domain.Relation
	for _, r := range h.relations {
		if r.Involves(doc) {
			out = append(out, r)
		}
	}
	return out
}

func (h *History) RelationsOfType(t domain.RelationType) []domain.Relation {
	var out []domain.Relation
	for _, r := range h.relations {
		if r.Type == t {
			out = append(out, r)
		}
	}
	return out
}

// Latest returns the most recently created relation.
func (h *History) Latest() (domain.Relation, bool) {
	if len(h.relations) == 0 {
		return domain.Relation{}, false
	}
	latest := h.relations[0]
	for _, r := range h.relations[1:] {
		if r.After(latest) {
			latest = r
		}
	}
	return latest, true
}

// AssessmentCount is the number of relations a document takes part in, as
// source or as target.
func (h *History) AssessmentCount(doc uuid.UUID) int {
	return len(h.RelationsFor(doc))
}

// Excluded returns the sources of bad relations and the targets of duplicate
// relations.
func (h *History) Excluded() mapset.Set[uuid.UUID] {
	out := mapset.NewThreadUnsafeSet[uuid.UUID]()
	for _, r := range h.relations {
		switch r.Type {
		case domain.RelationBad:
			out.Add(r.Source)
		case domain.RelationDuplicate:
			out.Add(r.Target)
		}
	}
	return out
}

// Unassessed returns the documents that take part in no relation at all.
func (h *History) Unassessed() mapset.Set[uuid.UUID] {
	out := mapset.NewThreadUnsafeSet[uuid.UUID]()
	for _, d := range h.docs {
		out.Add(d.ID)
	}
	for _, r := range h.relations {
		out.Remove(r.Source)
		out.Remove(r.Target)
	}
	return out
}

// DirectPartners returns every document that shares a relation with doc.
func (h *History) DirectPartners(doc uuid.UUID) mapset.Set[uuid.UUID] {
	out := mapset.NewThreadUnsafeSet[uuid.UUID]()
	for _, r := range h.relations {
		switch doc {
		case r.Source:
			out.Add(r.Target)
		case r.Target:
			out.Add(r.Source)
		}
	}
	return out
}

// Ordered returns the documents in ids, highest score first.
func (h *History) Ordered(ids mapset.Set[uuid.UUID]) []domain.Document {
	out := make([]domain.Document, 0, ids.Cardinality())
	for _, d := range h.docs {
		if ids.Contains(d.ID) {
			out = append(out, d)
		}
	}
	return out
}

func (h *History) first(ids mapset.Set[uuid.UUID]) (domain.Document, bool) {
	for _, d := range h.docs {
		if ids.Contains(d.ID) {
			return d, true
		}
	}
	return domain.Document{}, false
}
