package assessment

import (
	"context"
	"testing"
	"time"

	"github.com/DjordjeVuckovic/pref-assess/internal/domain"
	"github.com/DjordjeVuckovic/pref-assess/internal/storage/in_mem"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	t          *testing.T
	ctx        context.Context
	store      *in_mem.InMemStore
	assignment domain.Assignment
	docs       map[string]domain.Document
	clock      int
}

type scored struct {
	name  string
	score float64
}

func newFixture(t *testing.T, docs ...scored) *fixture {
	t.Helper()

	a := domain.Assignment{
		ID:          uuid.New(),
		QueryID:     "q1",
		Assessor:    "alice",
		Description: "documents about q1",
		CreatedAt:   baseTime,
	}
	f := &fixture{
		t:          t,
		ctx:        context.Background(),
		store:      in_mem.NewInMemStore(),
		assignment: a,
		docs:       make(map[string]domain.Document, len(docs)),
	}

	list := make([]domain.Document, 0, len(docs))
	for _, d := range docs {
		doc := domain.Document{ID: uuid.New(), AssignmentID: a.ID, DocID: d.name, Score: d.score}
		f.docs[d.name] = doc
		list = append(list, doc)
	}
	f.store.AddAssignment(a, list)
	return f
}

func (f *fixture) doc(name string) domain.Document {
	f.t.Helper()
	d, ok := f.docs[name]
	require.True(f.t, ok, "unknown document %s", name)
	return d
}

func (f *fixture) strategy(cfg Config) *BubbleSortStrategy {
	return NewBubbleSortStrategy(cfg, f.store)
}

// judge records the choice for a left/right pair with a strictly increasing
// timestamp.
func (f *fixture) judge(left, right string, c Choice) domain.Relation {
	f.t.Helper()
	p := DocumentPairPresentation{Left: f.doc(left), Right: f.doc(right)}
	return f.judgePair(p, c)
}

func (f *fixture) judgePair(p DocumentPairPresentation, c Choice) domain.Relation {
	f.t.Helper()
	rel, err := p.ToRelation(c)
	require.NoError(f.t, err)
	f.clock++
	rel.CreatedAt = baseTime.Add(time.Duration(f.clock) * time.Second)
	saved, err := f.store.AddRelation(f.ctx, rel)
	require.NoError(f.t, err)
	return saved
}

func (f *fixture) history() *History {
	f.t.Helper()
	a, err := f.store.Assignment(f.ctx, f.assignment.ID)
	require.NoError(f.t, err)
	docs, err := f.store.Documents(f.ctx, f.assignment.ID)
	require.NoError(f.t, err)
	rels, err := f.store.Relations(f.ctx, f.assignment.ID)
	require.NoError(f.t, err)
	return NewHistory(*a, docs, rels)
}

func (f *fixture) complete() bool {
	f.t.Helper()
	a, err := f.store.Assignment(f.ctx, f.assignment.ID)
	require.NoError(f.t, err)
	return a.Complete
}

func cfgWith(maxPerQuery, maxPerDoc int, transitive bool) Config {
	cfg := DefaultConfig()
	cfg.MaxAssessmentsPerQuery = maxPerQuery
	cfg.MaxAssessmentsPerDoc = maxPerDoc
	cfg.AssumeTransitivity = transitive
	return cfg
}

func docNames(p *DocumentPairPresentation) [2]string {
	return [2]string{p.LeftDocID(), p.RightDocID()}
}
