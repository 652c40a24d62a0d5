package in_mem

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/DjordjeVuckovic/pref-assess/internal/domain"
	"github.com/DjordjeVuckovic/pref-assess/internal/storage"
	"github.com/google/uuid"
)

type pairKey struct {
	assignment uuid.UUID
	a, b       uuid.UUID
}

func keyOf(assignment, x, y uuid.UUID) pairKey {
	if y.String() < x.String() {
		x, y = y, x
	}
	return pairKey{assignment: assignment, a: x, b: y}
}

type assignedKey struct {
	qid      string
	assessor string
}

// InMemStore keeps queries, assignments and judgments in process memory.
type InMemStore struct {
	lock sync.RWMutex

	queries     map[string]domain.Query
	assignments map[uuid.UUID]domain.Assignment
	assigned    map[assignedKey]uuid.UUID
	documents   map[uuid.UUID][]domain.Document
	relations   map[int64]domain.Relation
	pairs       map[pairKey]int64
	nextID      int64
	comments    []domain.Comment
}

func NewInMemStore() *InMemStore {
	return &InMemStore{
		queries:     make(map[string]domain.Query),
		assignments: make(map[uuid.UUID]domain.Assignment),
		assigned:    make(map[assignedKey]uuid.UUID),
		documents:   make(map[uuid.UUID][]domain.Document),
		relations:   make(map[int64]domain.Relation),
		pairs:       make(map[pairKey]int64),
	}
}

func (s *InMemStore) SaveQueries(ctx context.Context, queries []domain.Query) (int, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	saved := 0
	for _, q := range queries {
		if _, ok := s.queries[q.QID]; ok {
			slog.Debug("Skipping existing query", "qid", q.QID)
			continue
		}
		s.queries[q.QID] = q
		saved++
	}
	return saved, nil
}

func (s *InMemStore) Query(ctx context.Context, qid string) (*domain.Query, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	q, ok := s.queries[qid]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &q, nil
}

// AvailableQuery picks the query with the lowest qid among those that still
// have assignments left and are not yet assigned to assessor.
func (s *InMemStore) AvailableQuery(ctx context.Context, assessor string) (*domain.Query, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	var best *domain.Query
	for qid, q := range s.queries {
		if q.RemainingAssignments <= 0 {
			continue
		}
		if _, ok := s.assigned[assignedKey{qid, assessor}]; ok {
			continue
		}
		if best == nil || qid < best.QID {
			q.Documents = slices.Clone(q.Documents)
			best = &q
		}
	}
	if best == nil {
		return nil, storage.ErrNotFound
	}
	return best, nil
}

func (s *InMemStore) CreateAssignment(ctx context.Context, qid, assessor string) (*domain.Assignment, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	q, ok := s.queries[qid]
	if !ok {
		return nil, storage.ErrNotFound
	}
	if _, ok := s.assigned[assignedKey{qid, assessor}]; ok {
		return nil, storage.ErrAlreadyAssigned
	}
	if q.RemainingAssignments <= 0 {
		return nil, storage.ErrNoAssignmentsLeft
	}

	a := domain.Assignment{
		ID:        uuid.New(),
		QueryID:   qid,
		Assessor:  assessor,
		CreatedAt: time.Now(),
	}
	docs := make([]domain.Document, 0, len(q.Documents))
	for _, d := range q.Documents {
		docs = append(docs, domain.Document{
			ID:           uuid.New(),
			AssignmentID: a.ID,
			DocID:        d.DocID,
			Score:        d.Score,
		})
	}

	q.RemainingAssignments--
	s.queries[qid] = q
	s.assignments[a.ID] = a
	s.assigned[assignedKey{qid, assessor}] = a.ID
	s.documents[a.ID] = docs
	return &a, nil
}

// AddAssignment registers an assignment with an explicit document set.
func (s *InMemStore) AddAssignment(a domain.Assignment, docs []domain.Document) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.assignments[a.ID] = a
	s.assigned[assignedKey{a.QueryID, a.Assessor}] = a.ID
	s.documents[a.ID] = slices.Clone(docs)
}

func (s *InMemStore) Assignments(ctx context.Context) ([]domain.Assignment, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	out := make([]domain.Assignment, 0, len(s.assignments))
	for _, a := range s.assignments {
		out = append(out, a)
	}
	slices.SortFunc(out, func(x, y domain.Assignment) int {
		return y.CreatedAt.Compare(x.CreatedAt)
	})
	return out, nil
}

func (s *InMemStore) UpdateInformationNeed(ctx context.Context, assignmentID uuid.UUID, description, narrative string) (*domain.Assignment, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	a, ok := s.assignments[assignmentID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	a.DescribeNeed(description, narrative, time.Now())
	s.assignments[assignmentID] = a
	return &a, nil
}

func (s *InMemStore) Assignment(ctx context.Context, id uuid.UUID) (*domain.Assignment, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	a, ok := s.assignments[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &a, nil
}

func (s *InMemStore) Documents(ctx context.Context, assignmentID uuid.UUID) ([]domain.Document, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if _, ok := s.assignments[assignmentID]; !ok {
		return nil, storage.ErrNotFound
	}
	return slices.Clone(s.documents[assignmentID]), nil
}

func (s *InMemStore) Relations(ctx context.Context, assignmentID uuid.UUID) ([]domain.Relation, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if _, ok := s.assignments[assignmentID]; !ok {
		return nil, storage.ErrNotFound
	}
	var out []domain.Relation
	for _, r := range s.relations {
		if r.AssignmentID == assignmentID {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(x, y domain.Relation) int {
		switch {
		case x.ID < y.ID:
			return -1
		case x.ID > y.ID:
			return 1
		default:
			return 0
		}
	})
	return out, nil
}

func (s *InMemStore) MarkComplete(ctx context.Context, assignmentID uuid.UUID) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	a, ok := s.assignments[assignmentID]
	if !ok {
		return storage.ErrNotFound
	}
	a.Complete = true
	s.assignments[assignmentID] = a
	return nil
}

func (s *InMemStore) AddRelation(ctx context.Context, rel domain.Relation) (domain.Relation, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.checkDocuments(rel); err != nil {
		return domain.Relation{}, err
	}
	key := keyOf(rel.AssignmentID, rel.Source, rel.Target)
	if _, ok := s.pairs[key]; ok {
		return domain.Relation{}, storage.ErrDuplicateRelation
	}

	s.nextID++
	rel.ID = s.nextID
	if rel.CreatedAt.IsZero() {
		rel.CreatedAt = time.Now()
	}
	s.relations[rel.ID] = rel
	s.pairs[key] = rel.ID
	return rel, nil
}

func (s *InMemStore) FindRelation(ctx context.Context, assignmentID, a, b uuid.UUID) (domain.Relation, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	id, ok := s.pairs[keyOf(assignmentID, a, b)]
	if !ok {
		return domain.Relation{}, storage.ErrNotFound
	}
	return s.relations[id], nil
}

func (s *InMemStore) Relation(ctx context.Context, id int64) (domain.Relation, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	r, ok := s.relations[id]
	if !ok {
		return domain.Relation{}, storage.ErrNotFound
	}
	return r, nil
}

// UpdateRelation overwrites type and orientation of an existing relation. The
// pair itself may not change.
func (s *InMemStore) UpdateRelation(ctx context.Context, rel domain.Relation) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	existing, ok := s.relations[rel.ID]
	if !ok {
		return storage.ErrNotFound
	}
	if !existing.SamePair(rel) {
		return storage.ErrDuplicateRelation
	}
	existing.Source = rel.Source
	existing.Target = rel.Target
	existing.Type = rel.Type
	existing.SourcePresentedLeft = rel.SourcePresentedLeft
	s.relations[rel.ID] = existing
	return nil
}

func (s *InMemStore) AddComment(ctx context.Context, c domain.Comment) (domain.Comment, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	s.comments = append(s.comments, c)
	return c, nil
}

func (s *InMemStore) Comments(ctx context.Context, assessor string) ([]domain.Comment, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	out := make([]domain.Comment, 0, len(s.comments))
	for i := len(s.comments) - 1; i >= 0; i-- {
		if assessor == "" || s.comments[i].Assessor == assessor {
			out = append(out, s.comments[i])
		}
	}
	slices.SortStableFunc(out, func(x, y domain.Comment) int {
		return y.CreatedAt.Compare(x.CreatedAt)
	})
	return out, nil
}

func (s *InMemStore) checkDocuments(rel domain.Relation) error {
	if _, ok := s.assignments[rel.AssignmentID]; !ok {
		return storage.ErrNotFound
	}
	if rel.Source == rel.Target {
		return storage.ErrSelfRelation
	}
	var src, tgt bool
	for _, d := range s.documents[rel.AssignmentID] {
		src = src || d.ID == rel.Source
		tgt = tgt || d.ID == rel.Target
	}
	if !src || !tgt {
		return storage.ErrUnknownDocument
	}
	return nil
}

var _ storage.Store = (*InMemStore)(nil)
