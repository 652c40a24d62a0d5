package judgment

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/DjordjeVuckovic/pref-assess/internal/domain"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Source is the read side needed to export recorded judgments.
type Source interface {
	Assignments(ctx context.Context) ([]domain.Assignment, error)
	Documents(ctx context.Context, assignmentID uuid.UUID) ([]domain.Document, error)
	Relations(ctx context.Context, assignmentID uuid.UUID) ([]domain.Relation, error)
}

type JudgmentFile struct {
	ExportedAt  time.Time         `yaml:"exported_at"`
	Assignments []AssignmentEntry `yaml:"assignments"`
}

type AssignmentEntry struct {
	ID          uuid.UUID    `yaml:"id"`
	QueryID     string       `yaml:"qid"`
	Assessor    string       `yaml:"assessor"`
	Complete    bool         `yaml:"complete"`
	Description string       `yaml:"description,omitempty"`
	Narrative   string       `yaml:"narrative,omitempty"`
	Judgments   []JudgedPair `yaml:"judgments"`
}

// JudgedPair is a relation expressed with pool document ids.
type JudgedPair struct {
	Source              string    `yaml:"source"`
	Target              string    `yaml:"target"`
	Type                string    `yaml:"type"`
	SourcePresentedLeft bool      `yaml:"source_presented_left"`
	CreatedAt           time.Time `yaml:"created_at"`
}

// Export collects the judgments of every assignment in src.
func Export(ctx context.Context, src Source, now time.Time) (*JudgmentFile, error) {
	assignments, err := src.Assignments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}

	jf := &JudgmentFile{
		ExportedAt:  now,
		Assignments: make([]AssignmentEntry, 0, len(assignments)),
	}
	for _, a := range assignments {
		entry, err := exportAssignment(ctx, src, a)
		if err != nil {
			return nil, err
		}
		jf.Assignments = append(jf.Assignments, entry)
	}
	return jf, nil
}

func exportAssignment(ctx context.Context, src Source, a domain.Assignment) (AssignmentEntry, error) {
	docs, err := src.Documents(ctx, a.ID)
	if err != nil {
		return AssignmentEntry{}, fmt.Errorf("documents of assignment %s: %w", a.ID, err)
	}
	rels, err := src.Relations(ctx, a.ID)
	if err != nil {
		return AssignmentEntry{}, fmt.Errorf("relations of assignment %s: %w", a.ID, err)
	}

	docIDs := make(map[uuid.UUID]string, len(docs))
	for _, d := range docs {
		docIDs[d.ID] = d.DocID
	}

	entry := AssignmentEntry{
		ID:          a.ID,
		QueryID:     a.QueryID,
		Assessor:    a.Assessor,
		Complete:    a.Complete,
		Description: a.Description,
		Narrative:   a.Narrative,
		Judgments:   make([]JudgedPair, 0, len(rels)),
	}
	for _, r := range rels {
		entry.Judgments = append(entry.Judgments, JudgedPair{
			Source:              docIDs[r.Source],
			Target:              docIDs[r.Target],
			Type:                r.Type.String(),
			SourcePresentedLeft: r.SourcePresentedLeft,
			CreatedAt:           r.CreatedAt,
		})
	}
	return entry, nil
}

func (jf *JudgmentFile) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(jf)
	if err != nil {
		return nil, fmt.Errorf("marshal judgment file: %w", err)
	}
	return data, nil
}

func WriteJudgmentFile(jf *JudgmentFile, path string) error {
	data, err := jf.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write judgment file: %w", err)
	}
	return nil
}
