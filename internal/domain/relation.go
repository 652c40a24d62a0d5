package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type RelationType string

const (
	RelationPreferred RelationType = "P"
	RelationDuplicate RelationType = "D"
	// RelationBad marks Source as not relevant. Target only records the other
	// document of the presented pair.
	RelationBad RelationType = "B"
)

func ParseRelationType(s string) (RelationType, error) {
	switch t := RelationType(s); t {
	case RelationPreferred, RelationDuplicate, RelationBad:
		return t, nil
	default:
		return "", fmt.Errorf("unknown relation type %q", s)
	}
}

func (t RelationType) String() string {
	switch t {
	case RelationPreferred:
		return "preferred"
	case RelationDuplicate:
		return "duplicate"
	case RelationBad:
		return "bad"
	default:
		return string(t)
	}
}

// Relation is one recorded judgment between two documents of an assignment.
type Relation struct {
	ID                  int64        `json:"id"`
	AssignmentID        uuid.UUID    `json:"assignmentId"`
	Source              uuid.UUID    `json:"source"`
	Target              uuid.UUID    `json:"target"`
	Type                RelationType `json:"type"`
	SourcePresentedLeft bool         `json:"sourcePresentedLeft"`
	CreatedAt           time.Time    `json:"createdAt"`
}

func (r Relation) Involves(doc uuid.UUID) bool {
	return r.Source == doc || r.Target == doc
}

// SamePair reports whether both relations concern the same unordered pair.
func (r Relation) SamePair(other Relation) bool {
	return (r.Source == other.Source && r.Target == other.Target) ||
		(r.Source == other.Target && r.Target == other.Source)
}

// After reports whether r was recorded after other.
func (r Relation) After(other Relation) bool {
	if !r.CreatedAt.Equal(other.CreatedAt) {
		return r.CreatedAt.After(other.CreatedAt)
	}
	return r.ID > other.ID
}
