package assessment

import (
	"context"
	"errors"
	"testing"

	"github.com/DjordjeVuckovic/pref-assess/internal/domain"
	"github.com/DjordjeVuckovic/pref-assess/internal/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBubbleSortStrategy_ThreeDocumentScenario(t *testing.T) {
	f := newFixture(t, scored{"D1", 0.9}, scored{"D2", 0.7}, scored{"D3", 0.5})
	s := f.strategy(cfgWith(3, 0, false))

	first, err := s.NextPair(f.ctx, f.assignment.ID)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, [2]string{"D1", "D2"}, docNames(first))
	assert.False(t, first.LeftPinned)
	assert.False(t, first.RightPinned)

	f.judgePair(*first, ChoiceLeft)

	second, err := s.NextPair(f.ctx, f.assignment.ID)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, [2]string{"D1", "D3"}, docNames(second))
	assert.True(t, second.LeftPinned)
	assert.False(t, second.RightPinned)

	f.judgePair(*second, ChoiceRightBad)

	pending, err := s.PendingAssessments(f.ctx, f.assignment.ID)
	require.NoError(t, err)
	assert.Zero(t, pending)

	third, err := s.NextPair(f.ctx, f.assignment.ID)
	require.NoError(t, err)
	assert.Nil(t, third)
	assert.True(t, f.complete())
}

func TestBubbleSortStrategy_PendingAssessments(t *testing.T) {
	t.Run("no documents", func(t *testing.T) {
		f := newFixture(t)
		n, err := f.strategy(cfgWith(10, 0, false)).PendingAssessments(f.ctx, f.assignment.ID)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("single document", func(t *testing.T) {
		f := newFixture(t, scored{"D1", 1})
		s := f.strategy(cfgWith(10, 0, false))

		n, err := s.PendingAssessments(f.ctx, f.assignment.ID)
		require.NoError(t, err)
		assert.Zero(t, n)

		pair, err := s.NextPair(f.ctx, f.assignment.ID)
		require.NoError(t, err)
		assert.Nil(t, pair)
	})

	t.Run("bounded by pair count", func(t *testing.T) {
		f := newFixture(t, scored{"D1", 0.9}, scored{"D2", 0.8}, scored{"D3", 0.7}, scored{"D4", 0.6})
		n, err := f.strategy(cfgWith(100, 0, false)).PendingAssessments(f.ctx, f.assignment.ID)
		require.NoError(t, err)
		assert.Equal(t, 6, n)
	})

	t.Run("bounded by per query cap", func(t *testing.T) {
		f := newFixture(t, scored{"D1", 0.9}, scored{"D2", 0.8}, scored{"D3", 0.7}, scored{"D4", 0.6})
		n, err := f.strategy(cfgWith(4, 0, false)).PendingAssessments(f.ctx, f.assignment.ID)
		require.NoError(t, err)
		assert.Equal(t, 4, n)
	})

	t.Run("cap reached marks complete", func(t *testing.T) {
		f := newFixture(t, scored{"D1", 0.9}, scored{"D2", 0.8}, scored{"D3", 0.7})
		f.judge("D1", "D2", ChoiceLeft)
		s := f.strategy(cfgWith(1, 0, false))

		n, err := s.PendingAssessments(f.ctx, f.assignment.ID)
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.True(t, f.complete())
	})

	t.Run("malformed config means no work", func(t *testing.T) {
		f := newFixture(t, scored{"D1", 0.9}, scored{"D2", 0.8})
		s := f.strategy(cfgWith(0, 0, false))

		n, err := s.PendingAssessments(f.ctx, f.assignment.ID)
		require.NoError(t, err)
		assert.Zero(t, n)

		pair, err := s.NextPair(f.ctx, f.assignment.ID)
		require.NoError(t, err)
		assert.Nil(t, pair)
		assert.False(t, f.complete())
	})

	t.Run("complete stays complete", func(t *testing.T) {
		f := newFixture(t, scored{"D1", 0.9}, scored{"D2", 0.8}, scored{"D3", 0.7})
		require.NoError(t, f.store.MarkComplete(f.ctx, f.assignment.ID))
		s := f.strategy(cfgWith(100, 0, false))

		for range 3 {
			n, err := s.PendingAssessments(f.ctx, f.assignment.ID)
			require.NoError(t, err)
			assert.Zero(t, n)

			done, err := s.AssignmentComplete(f.ctx, f.assignment.ID)
			require.NoError(t, err)
			assert.True(t, done)
		}
	})

	t.Run("transitive closure counts as done", func(t *testing.T) {
		f := newFixture(t, scored{"A", 0.9}, scored{"B", 0.8}, scored{"C", 0.7}, scored{"D", 0.6})
		f.judge("A", "B", ChoiceLeft)
		f.judge("B", "C", ChoiceLeft)

		plain, err := f.strategy(cfgWith(100, 0, false)).PendingAssessments(f.ctx, f.assignment.ID)
		require.NoError(t, err)
		assert.Equal(t, 4, plain)

		transitive, err := f.strategy(cfgWith(100, 0, true)).PendingAssessments(f.ctx, f.assignment.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, transitive)
	})

	t.Run("unknown assignment", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.strategy(cfgWith(10, 0, false)).PendingAssessments(f.ctx, uuid.New())
		assert.True(t, errors.Is(err, storage.ErrNotFound))
	})
}

func TestBubbleSortStrategy_AnchorContinuity(t *testing.T) {
	docs := []scored{{"D1", 0.9}, {"D2", 0.8}, {"D3", 0.7}, {"D4", 0.6}}

	tests := []struct {
		name        string
		choice      Choice
		want        [2]string
		leftPinned  bool
		rightPinned bool
	}{
		{name: "preferred left stays left", choice: ChoiceLeft, want: [2]string{"D1", "D3"}, leftPinned: true},
		{name: "preferred right stays right", choice: ChoiceRight, want: [2]string{"D3", "D2"}, rightPinned: true},
		{name: "duplicate source stays left", choice: ChoiceDuplicates, want: [2]string{"D1", "D3"}, leftPinned: true},
		{name: "left bad keeps right document", choice: ChoiceLeftBad, want: [2]string{"D3", "D2"}, rightPinned: true},
		{name: "right bad keeps left document", choice: ChoiceRightBad, want: [2]string{"D1", "D3"}, leftPinned: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, docs...)
			f.judge("D1", "D2", tt.choice)

			pair, err := f.strategy(cfgWith(100, 0, false)).NextPair(f.ctx, f.assignment.ID)
			require.NoError(t, err)
			require.NotNil(t, pair)
			assert.Equal(t, tt.want, docNames(pair))
			assert.Equal(t, tt.leftPinned, pair.LeftPinned)
			assert.Equal(t, tt.rightPinned, pair.RightPinned)
		})
	}
}

func TestBubbleSortStrategy_PartnerPreference(t *testing.T) {
	t.Run("prefers never judged documents", func(t *testing.T) {
		f := newFixture(t, scored{"D1", 0.9}, scored{"D2", 0.8}, scored{"D3", 0.7}, scored{"D4", 0.1})
		f.judge("D2", "D3", ChoiceLeft)
		f.judge("D1", "D2", ChoiceLeft)

		// D3 has never been compared with D1 but was judged already, D4 never was.
		pair, err := f.strategy(cfgWith(100, 0, false)).NextPair(f.ctx, f.assignment.ID)
		require.NoError(t, err)
		require.NotNil(t, pair)
		assert.Equal(t, [2]string{"D1", "D4"}, docNames(pair))
	})

	t.Run("falls back to unjudged partner of the anchor", func(t *testing.T) {
		f := newFixture(t, scored{"D1", 0.9}, scored{"D2", 0.8}, scored{"D3", 0.7})
		f.judge("D2", "D3", ChoiceLeft)
		f.judge("D1", "D2", ChoiceLeft)

		pair, err := f.strategy(cfgWith(100, 0, false)).NextPair(f.ctx, f.assignment.ID)
		require.NoError(t, err)
		require.NotNil(t, pair)
		assert.Equal(t, [2]string{"D1", "D3"}, docNames(pair))
		assert.True(t, pair.LeftPinned)
	})

	t.Run("exhausted anchor yields fresh pair", func(t *testing.T) {
		f := newFixture(t, scored{"D1", 0.9}, scored{"D2", 0.8}, scored{"D3", 0.7})
		f.judge("D1", "D2", ChoiceLeft)
		f.judge("D1", "D3", ChoiceLeft)

		pair, err := f.strategy(cfgWith(100, 0, false)).NextPair(f.ctx, f.assignment.ID)
		require.NoError(t, err)
		require.NotNil(t, pair)
		assert.Equal(t, [2]string{"D2", "D3"}, docNames(pair))
		assert.False(t, pair.LeftPinned)
		assert.False(t, pair.RightPinned)
	})

	t.Run("capped anchor is dropped", func(t *testing.T) {
		f := newFixture(t, scored{"D1", 0.9}, scored{"D2", 0.8}, scored{"D3", 0.7}, scored{"D4", 0.6})
		f.judge("D1", "D2", ChoiceLeft)

		pair, err := f.strategy(cfgWith(100, 1, false)).NextPair(f.ctx, f.assignment.ID)
		require.NoError(t, err)
		require.NotNil(t, pair)
		assert.Equal(t, [2]string{"D3", "D4"}, docNames(pair))
		assert.False(t, pair.LeftPinned)
	})
}

func TestBubbleSortStrategy_Transitivity(t *testing.T) {
	t.Run("inferred pair is not offered", func(t *testing.T) {
		f := newFixture(t, scored{"A", 0.9}, scored{"B", 0.8}, scored{"C", 0.7}, scored{"D", 0.6})
		f.judge("A", "B", ChoiceLeft)
		f.judge("B", "C", ChoiceLeft)
		f.judge("B", "D", ChoiceLeft)

		pair, err := f.strategy(cfgWith(100, 0, true)).NextPair(f.ctx, f.assignment.ID)
		require.NoError(t, err)
		require.NotNil(t, pair)
		assert.Equal(t, [2]string{"C", "D"}, docNames(pair))
	})

	t.Run("closure completes the assignment", func(t *testing.T) {
		f := newFixture(t, scored{"A", 0.9}, scored{"B", 0.8}, scored{"C", 0.7})
		f.judge("A", "B", ChoiceLeft)
		f.judge("B", "C", ChoiceLeft)

		pair, err := f.strategy(cfgWith(100, 0, true)).NextPair(f.ctx, f.assignment.ID)
		require.NoError(t, err)
		assert.Nil(t, pair)
		assert.True(t, f.complete())
	})

	t.Run("without transitivity the pair is asked", func(t *testing.T) {
		f := newFixture(t, scored{"A", 0.9}, scored{"B", 0.8}, scored{"C", 0.7})
		f.judge("A", "B", ChoiceLeft)
		f.judge("B", "C", ChoiceLeft)

		pair, err := f.strategy(cfgWith(100, 0, false)).NextPair(f.ctx, f.assignment.ID)
		require.NoError(t, err)
		require.NotNil(t, pair)
		assert.Equal(t, [2]string{"A", "C"}, docNames(pair))
	})
}

func TestBubbleSortStrategy_IdempotentReplay(t *testing.T) {
	f := newFixture(t, scored{"D1", 0.9}, scored{"D2", 0.8}, scored{"D3", 0.8}, scored{"D4", 0.2})
	s := f.strategy(cfgWith(100, 0, false))
	f.judge("D1", "D2", ChoiceRight)

	first, err := s.NextPair(f.ctx, f.assignment.ID)
	require.NoError(t, err)
	second, err := s.NextPair(f.ctx, f.assignment.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

// runSession plays a full assignment, answering every pair with choose, and
// returns the presented pairs.
func runSession(t *testing.T, f *fixture, s *BubbleSortStrategy, choose func(round int) Choice) []*DocumentPairPresentation {
	t.Helper()
	var seen []*DocumentPairPresentation
	for round := 0; round < 200; round++ {
		pair, err := s.NextPair(f.ctx, f.assignment.ID)
		require.NoError(t, err)
		if pair == nil {
			return seen
		}
		seen = append(seen, pair)

		rel, err := pair.ToRelation(choose(round))
		require.NoError(t, err)
		_, err = f.store.AddRelation(context.Background(), rel)
		require.NoError(t, err, "pair %v offered twice", docNames(pair))
	}
	t.Fatal("session did not terminate")
	return nil
}

func TestBubbleSortStrategy_Session(t *testing.T) {
	docs := []scored{{"D1", 0.9}, {"D2", 0.8}, {"D3", 0.7}, {"D4", 0.6}, {"D5", 0.5}, {"D6", 0.4}}
	choices := []Choice{ChoiceLeft, ChoiceRight, ChoiceLeft, ChoiceLeftBad, ChoiceRight, ChoiceDuplicates, ChoiceLeft}

	configs := map[string]Config{
		"plain":      cfgWith(100, 0, false),
		"capped":     cfgWith(8, 0, false),
		"per doc":    cfgWith(100, 3, false),
		"transitive": cfgWith(100, 0, true),
	}

	for name, cfg := range configs {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, docs...)
			s := f.strategy(cfg)

			pending, err := s.PendingAssessments(f.ctx, f.assignment.ID)
			require.NoError(t, err)
			assert.LessOrEqual(t, pending, pairCount(len(docs)))

			seen := runSession(t, f, s, func(round int) Choice { return choices[round%len(choices)] })
			require.NotEmpty(t, seen)
			assert.LessOrEqual(t, len(seen), cfg.MaxAssessmentsPerQuery)

			for _, p := range seen {
				assert.NotEqual(t, p.Left.ID, p.Right.ID, "self pair offered")
			}

			rels, err := f.store.Relations(f.ctx, f.assignment.ID)
			require.NoError(t, err)
			for i := range rels {
				for j := i + 1; j < len(rels); j++ {
					assert.False(t, rels[i].SamePair(rels[j]), "pair repeated")
				}
			}

			assert.True(t, f.complete())
			n, err := s.PendingAssessments(f.ctx, f.assignment.ID)
			require.NoError(t, err)
			assert.Zero(t, n)
		})
	}
}

func TestAnchorOf(t *testing.T) {
	src, tgt := uuid.New(), uuid.New()

	anchor, left := anchorOf(domain.Relation{Source: src, Target: tgt, Type: domain.RelationPreferred, SourcePresentedLeft: true})
	assert.Equal(t, src, anchor)
	assert.True(t, left)

	anchor, left = anchorOf(domain.Relation{Source: src, Target: tgt, Type: domain.RelationBad, SourcePresentedLeft: true})
	assert.Equal(t, tgt, anchor)
	assert.False(t, left)
}
