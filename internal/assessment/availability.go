package assessment

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
)

// AvailableDocuments returns the documents still eligible for comparison.
// Bad sources and duplicate targets are dropped, and so is every document that
// reached maxPerDoc relations when maxPerDoc is positive.
func AvailableDocuments(h *History, maxPerDoc int) mapset.Set[uuid.UUID] {
	excluded := h.Excluded()
	out := mapset.NewThreadUnsafeSet[uuid.UUID]()
	for _, d := range h.Documents() {
		if excluded.Contains(d.ID) {
			continue
		}
		if maxPerDoc > 0 && h.AssessmentCount(d.ID) >= maxPerDoc {
			continue
		}
		out.Add(d.ID)
	}
	return out
}
