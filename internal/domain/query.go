package domain

// DefaultRemainingAssignments is the quota given to a pooled query that does
// not set one.
const DefaultRemainingAssignments = 1

// Query is a search query together with its pool of scored documents.
// RemainingAssignments is how many more assessors may still take the query.
type Query struct {
	QID                  string      `json:"qid" yaml:"qid"`
	Text                 string      `json:"text" yaml:"text"`
	RemainingAssignments int         `json:"remainingAssignments" yaml:"remaining_assignments"`
	Documents            []ScoredDoc `json:"documents,omitempty" yaml:"documents"`
}

type ScoredDoc struct {
	DocID string  `json:"docId" yaml:"doc_id"`
	Score float64 `json:"score" yaml:"score"`
}
