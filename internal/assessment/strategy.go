package assessment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/DjordjeVuckovic/pref-assess/internal/domain"
	"github.com/DjordjeVuckovic/pref-assess/internal/storage"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
)

// Strategy decides which document pair an assessor sees next.
type Strategy interface {
	NextPair(ctx context.Context, assignmentID uuid.UUID) (*DocumentPairPresentation, error)
	PendingAssessments(ctx context.Context, assignmentID uuid.UUID) (int, error)
	AssignmentComplete(ctx context.Context, assignmentID uuid.UUID) (bool, error)
}

// BubbleSortStrategy exposes the assessor to the whole document set as early as
// possible while keeping one document of the pair in place between rounds, so
// a single pass tends to surface the best document.
//
// It holds no state of its own: every call reads the assignment history from
// the store, which makes calls repeatable and resumable.
type BubbleSortStrategy struct {
	cfg   Config
	store storage.JudgmentReader
}

func NewBubbleSortStrategy(cfg Config, store storage.JudgmentReader) *BubbleSortStrategy {
	return &BubbleSortStrategy{cfg: cfg, store: store}
}

func (s *BubbleSortStrategy) PendingAssessments(ctx context.Context, assignmentID uuid.UUID) (int, error) {
	h, err := s.load(ctx, assignmentID)
	if err != nil {
		return 0, err
	}
	return s.pending(ctx, h)
}

func (s *BubbleSortStrategy) AssignmentComplete(ctx context.Context, assignmentID uuid.UUID) (bool, error) {
	n, err := s.PendingAssessments(ctx, assignmentID)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// NextPair returns the next pair to present, or nil when the assignment is done.
func (s *BubbleSortStrategy) NextPair(ctx context.Context, assignmentID uuid.UUID) (*DocumentPairPresentation, error) {
	h, err := s.load(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	remaining, err := s.pending(ctx, h)
	if err != nil {
		return nil, err
	}
	if remaining == 0 {
		return nil, nil
	}

	available := AvailableDocuments(h, s.cfg.MaxAssessmentsPerDoc)
	judged := s.judgedWith(h)

	if latest, ok := h.Latest(); ok {
		anchor, keepLeft := anchorOf(latest)
		if available.Contains(anchor) {
			if pair, ok := s.anchoredPair(h, anchor, keepLeft, available, judged); ok {
				return pair, nil
			}
		}
		slog.Debug("Anchor dropped, picking a fresh pair", "assignment", assignmentID, "anchor", anchor)
	}

	pair, ok := freshPair(h, available, judged)
	if !ok {
		slog.Info("No eligible pair left", "assignment", assignmentID)
		if err := s.markComplete(ctx, h); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return pair, nil
}

func (s *BubbleSortStrategy) load(ctx context.Context, assignmentID uuid.UUID) (*History, error) {
	a, err := s.store.Assignment(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("load assignment %s: %w", assignmentID, err)
	}
	docs, err := s.store.Documents(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("load documents for %s: %w", assignmentID, err)
	}
	rels, err := s.store.Relations(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("load relations for %s: %w", assignmentID, err)
	}
	return NewHistory(*a, docs, rels), nil
}

func (s *BubbleSortStrategy) pending(ctx context.Context, h *History) (int, error) {
	if h.Assignment().Complete {
		return 0, nil
	}
	limit := s.cfg.MaxAssessmentsPerQuery
	if limit <= 0 {
		return 0, nil
	}

	done := s.assessmentsDone(h)
	if done >= limit {
		return 0, s.markComplete(ctx, h)
	}

	n := len(h.Documents())
	b := h.Excluded().Cardinality()
	prefsDone := done - b
	prefsPossible := min(limit-b, pairCount(n-b))

	remaining := max(prefsPossible-prefsDone, 0)
	if remaining == 0 {
		return 0, s.markComplete(ctx, h)
	}
	return remaining, nil
}

// assessmentsDone counts recorded relations, or with transitivity the pairs
// connected in the assessment graph plus the bad judgments, which add no edges.
func (s *BubbleSortStrategy) assessmentsDone(h *History) int {
	if !s.cfg.AssumeTransitivity {
		return len(h.Relations())
	}
	return NewGraph(h.Relations()).ReachablePairs() + len(h.RelationsOfType(domain.RelationBad))
}

func (s *BubbleSortStrategy) markComplete(ctx context.Context, h *History) error {
	a := h.Assignment()
	if a.Complete {
		return nil
	}
	if err := s.store.MarkComplete(ctx, a.ID); err != nil {
		return fmt.Errorf("mark assignment %s complete: %w", a.ID, err)
	}
	h.assignment.Complete = true
	return nil
}

type judgedFunc func(doc uuid.UUID) mapset.Set[uuid.UUID]

func (s *BubbleSortStrategy) judgedWith(h *History) judgedFunc {
	if !s.cfg.AssumeTransitivity {
		return h.DirectPartners
	}
	g := NewGraph(h.Relations())
	return func(doc uuid.UUID) mapset.Set[uuid.UUID] {
		return g.JudgedWith(doc).Union(h.DirectPartners(doc))
	}
}

// anchorOf picks the document to keep from the latest relation. A bad
// document drops out, so the other document keeps its slot instead.
func anchorOf(latest domain.Relation) (uuid.UUID, bool) {
	if latest.Type == domain.RelationBad {
		return latest.Target, !latest.SourcePresentedLeft
	}
	return latest.Source, latest.SourcePresentedLeft
}

func (s *BubbleSortStrategy) anchoredPair(
	h *History,
	anchor uuid.UUID,
	keepLeft bool,
	available mapset.Set[uuid.UUID],
	judged judgedFunc,
) (*DocumentPairPresentation, bool) {
	kept, ok := h.Document(anchor)
	if !ok {
		return nil, false
	}

	// Documents nobody has looked at yet come first.
	unassessed := h.Unassessed().Intersect(available)
	unassessed.Remove(anchor)
	other, ok := h.first(unassessed)
	if !ok {
		other, ok = h.first(candidatesFor(anchor, available, judged))
	}
	if !ok {
		return nil, false
	}

	if keepLeft {
		return &DocumentPairPresentation{Left: kept, Right: other, LeftPinned: true}, true
	}
	return &DocumentPairPresentation{Left: other, Right: kept, RightPinned: true}, true
}

func freshPair(h *History, available mapset.Set[uuid.UUID], judged judgedFunc) (*DocumentPairPresentation, bool) {
	for _, doc := range h.Ordered(available) {
		if other, ok := h.first(candidatesFor(doc.ID, available, judged)); ok {
			return &DocumentPairPresentation{Left: doc, Right: other}, true
		}
	}
	return nil, false
}

func candidatesFor(doc uuid.UUID, available mapset.Set[uuid.UUID], judged judgedFunc) mapset.Set[uuid.UUID] {
	out := available.Difference(judged(doc))
	out.Remove(doc)
	return out
}

func pairCount(k int) int {
	if k < 2 {
		return 0
	}
	return k * (k - 1) / 2
}

var _ Strategy = (*BubbleSortStrategy)(nil)
