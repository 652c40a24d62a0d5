package storage

import (
	"context"
	"errors"

	"github.com/DjordjeVuckovic/pref-assess/internal/domain"
	"github.com/google/uuid"
)

type Type string

const (
	PG    Type = "pg"
	InMem Type = "in_mem"
)

type StorerError string

const (
	ErrUnsupportedStorer StorerError = "unsupported storer type: %s"
)

func (e StorerError) Error() string {
	return string(e)
}

var (
	ErrNotFound = errors.New("not found")
	// ErrDuplicateRelation is returned when a relation already exists for the
	// same unordered document pair within an assignment.
	ErrDuplicateRelation = errors.New("relation already exists for document pair")
	// ErrUnknownDocument is returned when a relation references a document
	// outside its assignment.
	ErrUnknownDocument = errors.New("document does not belong to assignment")
	ErrSelfRelation    = errors.New("relation source and target must differ")
	ErrAlreadyAssigned = errors.New("query already assigned to assessor")
	// ErrNoAssignmentsLeft is returned when a query's assignment quota is used up.
	ErrNoAssignmentsLeft = errors.New("query has no remaining assignments")
)

// JudgmentReader exposes the judgment history of a single assignment.
type JudgmentReader interface {
	Assignment(ctx context.Context, id uuid.UUID) (*domain.Assignment, error)
	Documents(ctx context.Context, assignmentID uuid.UUID) ([]domain.Document, error)
	Relations(ctx context.Context, assignmentID uuid.UUID) ([]domain.Relation, error)
	MarkComplete(ctx context.Context, assignmentID uuid.UUID) error
}

// JudgmentRecorder stores and revises relations. Implementations must keep at
// most one relation per unordered document pair within an assignment.
type JudgmentRecorder interface {
	AddRelation(ctx context.Context, rel domain.Relation) (domain.Relation, error)
	FindRelation(ctx context.Context, assignmentID, a, b uuid.UUID) (domain.Relation, error)
	UpdateRelation(ctx context.Context, rel domain.Relation) error
	Relation(ctx context.Context, id int64) (domain.Relation, error)
}

// AssignmentStorer manages query pools and the assignments created from them.
// CreateAssignment consumes one unit of the query's remaining assignments.
type AssignmentStorer interface {
	SaveQueries(ctx context.Context, queries []domain.Query) (int, error)
	Query(ctx context.Context, qid string) (*domain.Query, error)
	// AvailableQuery returns a query with assignments left that the assessor
	// has not taken yet, or ErrNotFound.
	AvailableQuery(ctx context.Context, assessor string) (*domain.Query, error)
	CreateAssignment(ctx context.Context, qid, assessor string) (*domain.Assignment, error)
	Assignments(ctx context.Context) ([]domain.Assignment, error)
	UpdateInformationNeed(ctx context.Context, assignmentID uuid.UUID, description, narrative string) (*domain.Assignment, error)
}

type CommentStorer interface {
	AddComment(ctx context.Context, c domain.Comment) (domain.Comment, error)
	// Comments lists comments newest first. An empty assessor lists all.
	Comments(ctx context.Context, assessor string) ([]domain.Comment, error)
}

type Store interface {
	JudgmentReader
	JudgmentRecorder
	AssignmentStorer
	CommentStorer
}
