package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Assignment binds one query to one assessor.
// Complete is monotonic: once set it is never cleared.
//
// Description and Narrative hold the assessor's information need. No judgment
// may be recorded before a description is given; StartedAt is set the first
// time it is.
type Assignment struct {
	ID          uuid.UUID  `json:"id"`
	QueryID     string     `json:"qid"`
	Assessor    string     `json:"assessor"`
	Complete    bool       `json:"complete"`
	Description string     `json:"description"`
	Narrative   string     `json:"narrative"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func (a Assignment) Started() bool {
	return strings.TrimSpace(a.Description) != ""
}

// DescribeNeed sets the information need and stamps StartedAt once.
func (a *Assignment) DescribeNeed(description, narrative string, now time.Time) {
	a.Description = description
	a.Narrative = narrative
	if a.StartedAt == nil && a.Started() {
		a.StartedAt = &now
	}
}

// Document is a pooled document copied into an assignment when it is created.
type Document struct {
	ID           uuid.UUID `json:"id"`
	AssignmentID uuid.UUID `json:"assignmentId"`
	DocID        string    `json:"docId"`
	Score        float64   `json:"score"`
}

// Less orders documents by descending score, then by DocID and ID so that
// the order is total.
func (d Document) Less(other Document) bool {
	if d.Score != other.Score {
		return d.Score > other.Score
	}
	if d.DocID != other.DocID {
		return d.DocID < other.DocID
	}
	return d.ID.String() < other.ID.String()
}
