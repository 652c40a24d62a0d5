package pg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/DjordjeVuckovic/pref-assess/internal/domain"
	"github.com/DjordjeVuckovic/pref-assess/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the PostgreSQL judgment store. Pair uniqueness is enforced by the
// document_relations_pair_idx index.
type Store struct {
	db *pgxpool.Pool
}

func NewStore(pool *ConnectionPool) *Store {
	return &Store{db: pool.GetConn()}
}

func (s *Store) SaveQueries(ctx context.Context, queries []domain.Query) (int, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var docRows [][]interface{}
	saved := 0
	for _, q := range queries {
		tag, err := tx.Exec(ctx,
			`INSERT INTO queries (qid, text, remaining_assignments) VALUES ($1, $2, $3) ON CONFLICT (qid) DO NOTHING`,
			q.QID, q.Text, q.RemainingAssignments)
		if err != nil {
			return 0, fmt.Errorf("failed to insert query %s: %w", q.QID, err)
		}
		if tag.RowsAffected() == 0 {
			slog.Debug("Skipping existing query", "qid", q.QID)
			continue
		}
		saved++
		for _, d := range q.Documents {
			docRows = append(docRows, []interface{}{q.QID, d.DocID, d.Score})
		}
	}

	if len(docRows) > 0 {
		_, err = tx.CopyFrom(
			ctx,
			pgx.Identifier{"query_documents"},
			[]string{"qid", "doc_id", "score"},
			pgx.CopyFromRows(docRows),
		)
		if err != nil {
			return 0, fmt.Errorf("failed to bulk insert query documents: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit queries: %w", err)
	}
	return saved, nil
}

func (s *Store) Query(ctx context.Context, qid string) (*domain.Query, error) {
	q := domain.Query{QID: qid}
	err := s.db.QueryRow(ctx,
		`SELECT text, remaining_assignments FROM queries WHERE qid = $1`, qid).Scan(&q.Text, &q.RemainingAssignments)
	if err != nil {
		return nil, fmt.Errorf("failed to load query %s: %w", qid, notFound(err))
	}

	rows, err := s.db.Query(ctx,
		`SELECT doc_id, score FROM query_documents WHERE qid = $1 ORDER BY score DESC, doc_id`, qid)
	if err != nil {
		return nil, fmt.Errorf("failed to load query documents: %w", err)
	}
	q.Documents, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ScoredDoc, error) {
		var d domain.ScoredDoc
		err := row.Scan(&d.DocID, &d.Score)
		return d, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan query documents: %w", err)
	}
	return &q, nil
}

// AvailableQuery picks the query with the lowest qid that still has
// assignments left and is not yet assigned to assessor.
func (s *Store) AvailableQuery(ctx context.Context, assessor string) (*domain.Query, error) {
	var qid string
	err := s.db.QueryRow(ctx, `
		SELECT q.qid
		FROM queries q
		WHERE q.remaining_assignments > 0
		  AND NOT EXISTS (SELECT 1 FROM assignments a WHERE a.qid = q.qid AND a.assessor = $1)
		ORDER BY q.qid
		LIMIT 1
	`, assessor).Scan(&qid)
	if err != nil {
		return nil, fmt.Errorf("failed to find available query: %w", notFound(err))
	}
	return s.Query(ctx, qid)
}

// CreateAssignment assigns a query to an assessor, takes one unit of the
// query's quota and copies the query's document pool into the assignment.
func (s *Store) CreateAssignment(ctx context.Context, qid, assessor string) (*domain.Assignment, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var remaining int
	err = tx.QueryRow(ctx,
		`SELECT remaining_assignments FROM queries WHERE qid = $1 FOR UPDATE`, qid).Scan(&remaining)
	if err != nil {
		return nil, fmt.Errorf("failed to lock query %s: %w", qid, notFound(err))
	}

	var assigned bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM assignments WHERE qid = $1 AND assessor = $2)`, qid, assessor).Scan(&assigned)
	if err != nil {
		return nil, fmt.Errorf("failed to check assignment: %w", err)
	}
	if assigned {
		return nil, storage.ErrAlreadyAssigned
	}
	if remaining <= 0 {
		return nil, storage.ErrNoAssignmentsLeft
	}

	a := domain.Assignment{ID: uuid.New(), QueryID: qid, Assessor: assessor}
	err = tx.QueryRow(ctx,
		`INSERT INTO assignments (id, qid, assessor) VALUES ($1, $2, $3) RETURNING created_at`,
		a.ID, qid, assessor).Scan(&a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert assignment: %w", mapErr(err, storage.ErrAlreadyAssigned))
	}

	_, err = tx.Exec(ctx,
		`UPDATE queries SET remaining_assignments = remaining_assignments - 1 WHERE qid = $1`, qid)
	if err != nil {
		return nil, fmt.Errorf("failed to take assignment quota: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO assessed_documents (assignment_id, doc_id, score)
		SELECT $1, doc_id, score FROM query_documents WHERE qid = $2
	`, a.ID, qid)
	if err != nil {
		return nil, fmt.Errorf("failed to copy documents: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit assignment: %w", err)
	}
	return &a, nil
}

func (s *Store) Assignments(ctx context.Context) ([]domain.Assignment, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+assignmentColumns+` FROM assignments ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return pgx.CollectRows(rows, scanAssignment)
}

func (s *Store) Assignment(ctx context.Context, id uuid.UUID) (*domain.Assignment, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+assignmentColumns+` FROM assignments WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignment: %w", err)
	}
	a, err := pgx.CollectExactlyOneRow(rows, scanAssignment)
	if err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (s *Store) UpdateInformationNeed(ctx context.Context, assignmentID uuid.UUID, description, narrative string) (*domain.Assignment, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx,
		`SELECT `+assignmentColumns+` FROM assignments WHERE id = $1 FOR UPDATE`, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignment: %w", err)
	}
	a, err := pgx.CollectExactlyOneRow(rows, scanAssignment)
	if err != nil {
		return nil, notFound(err)
	}

	a.DescribeNeed(description, narrative, time.Now())
	_, err = tx.Exec(ctx,
		`UPDATE assignments SET description = $2, narrative = $3, started_at = $4 WHERE id = $1`,
		a.ID, a.Description, a.Narrative, a.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update information need: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit information need: %w", err)
	}
	return &a, nil
}

func (s *Store) Documents(ctx context.Context, assignmentID uuid.UUID) ([]domain.Document, error) {
	if err := s.ensureAssignment(ctx, assignmentID); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx,
		`SELECT id, assignment_id, doc_id, score FROM assessed_documents WHERE assignment_id = $1`, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load documents: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Document, error) {
		var d domain.Document
		err := row.Scan(&d.ID, &d.AssignmentID, &d.DocID, &d.Score)
		return d, err
	})
}

func (s *Store) Relations(ctx context.Context, assignmentID uuid.UUID) ([]domain.Relation, error) {
	if err := s.ensureAssignment(ctx, assignmentID); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, assignment_id, source_doc, target_doc, relation_type, source_presented_left, created_at
		FROM document_relations
		WHERE assignment_id = $1
		ORDER BY id
	`, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load relations: %w", err)
	}
	return pgx.CollectRows(rows, scanRelation)
}

func (s *Store) MarkComplete(ctx context.Context, assignmentID uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `UPDATE assignments SET complete = TRUE WHERE id = $1`, assignmentID)
	if err != nil {
		return fmt.Errorf("failed to mark assignment complete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) AddRelation(ctx context.Context, rel domain.Relation) (domain.Relation, error) {
	if rel.CreatedAt.IsZero() {
		rel.CreatedAt = time.Now()
	}
	err := s.db.QueryRow(ctx, `
		INSERT INTO document_relations
			(assignment_id, source_doc, target_doc, relation_type, source_presented_left, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, rel.AssignmentID, rel.Source, rel.Target, string(rel.Type), rel.SourcePresentedLeft, rel.CreatedAt).Scan(&rel.ID)
	if err != nil {
		return domain.Relation{}, fmt.Errorf("failed to insert relation: %w", mapErr(err, storage.ErrDuplicateRelation))
	}
	return rel, nil
}

func (s *Store) FindRelation(ctx context.Context, assignmentID, a, b uuid.UUID) (domain.Relation, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, assignment_id, source_doc, target_doc, relation_type, source_presented_left, created_at
		FROM document_relations
		WHERE assignment_id = $1
		  AND ((source_doc = $2 AND target_doc = $3) OR (source_doc = $3 AND target_doc = $2))
	`, assignmentID, a, b)
	if err != nil {
		return domain.Relation{}, fmt.Errorf("failed to find relation: %w", err)
	}
	rel, err := pgx.CollectExactlyOneRow(rows, scanRelation)
	if err != nil {
		return domain.Relation{}, notFound(err)
	}
	return rel, nil
}

func (s *Store) Relation(ctx context.Context, id int64) (domain.Relation, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, assignment_id, source_doc, target_doc, relation_type, source_presented_left, created_at
		FROM document_relations
		WHERE id = $1
	`, id)
	if err != nil {
		return domain.Relation{}, fmt.Errorf("failed to load relation: %w", err)
	}
	rel, err := pgx.CollectExactlyOneRow(rows, scanRelation)
	if err != nil {
		return domain.Relation{}, notFound(err)
	}
	return rel, nil
}

// UpdateRelation overwrites type and orientation in place. Swapping source and
// target keeps the pair, so the unique index still holds.
func (s *Store) UpdateRelation(ctx context.Context, rel domain.Relation) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE document_relations
		SET source_doc = $2, target_doc = $3, relation_type = $4, source_presented_left = $5
		WHERE id = $1
	`, rel.ID, rel.Source, rel.Target, string(rel.Type), rel.SourcePresentedLeft)
	if err != nil {
		return fmt.Errorf("failed to update relation %d: %w", rel.ID, mapErr(err, storage.ErrDuplicateRelation))
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) AddComment(ctx context.Context, c domain.Comment) (domain.Comment, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO comments (id, assessor, comment, created_at) VALUES ($1, $2, $3, $4)`,
		c.ID, c.Assessor, c.Text, c.CreatedAt)
	if err != nil {
		return domain.Comment{}, fmt.Errorf("failed to insert comment: %w", err)
	}
	return c, nil
}

func (s *Store) Comments(ctx context.Context, assessor string) ([]domain.Comment, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, assessor, comment, created_at
		FROM comments
		WHERE $1 = '' OR assessor = $1
		ORDER BY created_at DESC
	`, assessor)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Comment, error) {
		var c domain.Comment
		err := row.Scan(&c.ID, &c.Assessor, &c.Text, &c.CreatedAt)
		return c, err
	})
}

func (s *Store) ensureAssignment(ctx context.Context, id uuid.UUID) error {
	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM assignments WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check assignment: %w", err)
	}
	if !exists {
		return storage.ErrNotFound
	}
	return nil
}

const assignmentColumns = "id, qid, assessor, complete, description, narrative, started_at, created_at"

func scanAssignment(row pgx.CollectableRow) (domain.Assignment, error) {
	var a domain.Assignment
	err := row.Scan(&a.ID, &a.QueryID, &a.Assessor, &a.Complete, &a.Description, &a.Narrative, &a.StartedAt, &a.CreatedAt)
	return a, err
}

func scanRelation(row pgx.CollectableRow) (domain.Relation, error) {
	var (
		r   domain.Relation
		typ string
	)
	if err := row.Scan(&r.ID, &r.AssignmentID, &r.Source, &r.Target, &typ, &r.SourcePresentedLeft, &r.CreatedAt); err != nil {
		return r, err
	}
	t, err := domain.ParseRelationType(typ)
	if err != nil {
		return r, errors.Join(fmt.Errorf("relation %d", r.ID), err)
	}
	r.Type = t
	return r, nil
}

var _ storage.Store = (*Store)(nil)
