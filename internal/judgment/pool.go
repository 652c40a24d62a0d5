package judgment

import (
	"context"
	"fmt"
	"os"

	"github.com/DjordjeVuckovic/pref-assess/internal/domain"
	"github.com/DjordjeVuckovic/pref-assess/internal/storage"
	"gopkg.in/yaml.v3"
)

// PoolFile lists the queries to assess and the pooled documents of each.
type PoolFile struct {
	Name    string         `yaml:"name"`
	Queries []domain.Query `yaml:"queries"`
}

func ReadPoolFile(path string) (*PoolFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pool file: %w", err)
	}
	return ParsePool(data)
}

// ParsePool decodes and validates a pool. Queries without a quota get
// domain.DefaultRemainingAssignments.
func ParsePool(data []byte) (*PoolFile, error) {
	var pf PoolFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parse pool file: %w", err)
	}
	if err := validatePool(&pf); err != nil {
		return nil, err
	}
	return &pf, nil
}

// ImportPool saves every query of the pool. Queries that already exist are
// left untouched.
func ImportPool(ctx context.Context, store storage.AssignmentStorer, pf *PoolFile) (int, error) {
	saved, err := store.SaveQueries(ctx, pf.Queries)
	if err != nil {
		return 0, fmt.Errorf("import pool %q: %w", pf.Name, err)
	}
	return saved, nil
}

func validatePool(pf *PoolFile) error {
	if len(pf.Queries) == 0 {
		return fmt.Errorf("pool has no queries")
	}
	seen := make(map[string]bool, len(pf.Queries))
	for i := range pf.Queries {
		q := &pf.Queries[i]
		if q.QID == "" {
			return fmt.Errorf("query at index %d has no qid", i)
		}
		if seen[q.QID] {
			return fmt.Errorf("duplicate query %q", q.QID)
		}
		seen[q.QID] = true

		switch {
		case q.RemainingAssignments < 0:
			return fmt.Errorf("query %q: remaining_assignments must not be negative", q.QID)
		case q.RemainingAssignments == 0:
			q.RemainingAssignments = domain.DefaultRemainingAssignments
		}

		docs := make(map[string]bool, len(q.Documents))
		for j, d := range q.Documents {
			if d.DocID == "" {
				return fmt.Errorf("query %q: document at index %d has no doc_id", q.QID, j)
			}
			if docs[d.DocID] {
				return fmt.Errorf("query %q: duplicate document %q", q.QID, d.DocID)
			}
			docs[d.DocID] = true
		}
	}
	return nil
}
