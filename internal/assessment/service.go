package assessment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/DjordjeVuckovic/pref-assess/internal/apperr"
	"github.com/DjordjeVuckovic/pref-assess/internal/domain"
	"github.com/DjordjeVuckovic/pref-assess/internal/storage"
	"github.com/DjordjeVuckovic/pref-assess/pkg/pagination"
	"github.com/google/uuid"
)

// Status summarizes an assignment's progress.
type Status struct {
	Assignment domain.Assignment `json:"assignment"`
	Done       int               `json:"done"`
	Pending    int               `json:"pending"`
	Complete   bool              `json:"complete"`
}

// Summary is an assignment listing entry with its progress.
type Summary struct {
	domain.Assignment
	Done    int `json:"done"`
	Pending int `json:"pending"`
}

// Service records judgments and asks the strategy for the next pair.
type Service struct {
	store    storage.Store
	strategy Strategy
	now      func() time.Time
}

func NewService(store storage.Store, strategy Strategy) *Service {
	return &Service{store: store, strategy: strategy, now: time.Now}
}

func (s *Service) Assign(ctx context.Context, qid, assessor string) (*domain.Assignment, error) {
	if qid == "" || assessor == "" {
		return nil, apperr.NewValidation("qid and assessor are required")
	}
	a, err := s.store.CreateAssignment(ctx, qid, assessor)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.NewNotFound("query", qid, err)
		}
		if errors.Is(err, storage.ErrAlreadyAssigned) {
			return nil, apperr.NewValidationWrap("query already assigned to "+assessor, err)
		}
		if errors.Is(err, storage.ErrNoAssignmentsLeft) {
			return nil, apperr.NewConflict("query "+qid+" has no remaining assignments", err)
		}
		return nil, fmt.Errorf("create assignment: %w", err)
	}
	slog.Info("Assignment created", "assignment", a.ID, "qid", qid, "assessor", assessor)
	return a, nil
}

// OfferQuery returns a query the assessor could take next, or nil when none
// is left.
func (s *Service) OfferQuery(ctx context.Context, assessor string) (*domain.Query, error) {
	if assessor == "" {
		return nil, apperr.NewValidation("assessor is required")
	}
	q, err := s.store.AvailableQuery(ctx, assessor)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find available query: %w", err)
	}
	return q, nil
}

// Assignments lists assignments, newest first, optionally only those of one
// assessor. Progress is computed for the returned page only.
func (s *Service) Assignments(ctx context.Context, assessor string, page pagination.OffsetRequest) (*pagination.OffsetResult[Summary], error) {
	if err := page.Validate(); err != nil {
		return nil, apperr.NewValidationWrap("invalid page", err)
	}
	all, err := s.store.Assignments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	if assessor != "" {
		all = slices.DeleteFunc(all, func(a domain.Assignment) bool {
			return a.Assessor != assessor
		})
	}

	res := pagination.Paginate(all, page)
	items := make([]Summary, 0, len(res.Items))
	for _, a := range res.Items {
		sum, err := s.summarize(ctx, a)
		if err != nil {
			return nil, err
		}
		items = append(items, sum)
	}
	return pagination.NewOffsetResult(items, res.Total, res.Page, res.Size), nil
}

// DescribeNeed stores the assessor's information need. Judgments can only be
// recorded once a description is given.
func (s *Service) DescribeNeed(ctx context.Context, assignmentID uuid.UUID, description, narrative string) (*domain.Assignment, error) {
	if strings.TrimSpace(description) == "" {
		return nil, apperr.NewValidation("description is required")
	}
	a, err := s.store.UpdateInformationNeed(ctx, assignmentID, description, narrative)
	if err != nil {
		return nil, s.mapErr(err, assignmentID)
	}
	slog.Info("Information need described", "assignment", assignmentID, "started_at", a.StartedAt)
	return a, nil
}

func (s *Service) Comment(ctx context.Context, assessor, text string) (domain.Comment, error) {
	if assessor == "" || strings.TrimSpace(text) == "" {
		return domain.Comment{}, apperr.NewValidation("assessor and comment are required")
	}
	c, err := s.store.AddComment(ctx, domain.Comment{Assessor: assessor, Text: text, CreatedAt: s.now()})
	if err != nil {
		return domain.Comment{}, fmt.Errorf("add comment: %w", err)
	}
	return c, nil
}

func (s *Service) Comments(ctx context.Context, assessor string) ([]domain.Comment, error) {
	out, err := s.store.Comments(ctx, assessor)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return out, nil
}

func (s *Service) Status(ctx context.Context, assignmentID uuid.UUID) (*Status, error) {
	pending, err := s.strategy.PendingAssessments(ctx, assignmentID)
	if err != nil {
		return nil, s.mapErr(err, assignmentID)
	}
	a, err := s.store.Assignment(ctx, assignmentID)
	if err != nil {
		return nil, s.mapErr(err, assignmentID)
	}
	rels, err := s.store.Relations(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("load relations: %w", err)
	}
	return &Status{
		Assignment: *a,
		Done:       len(rels),
		Pending:    pending,
		Complete:   pending == 0,
	}, nil
}

func (s *Service) Next(ctx context.Context, assignmentID uuid.UUID) (*DocumentPairPresentation, error) {
	if err := s.requireInformationNeed(ctx, assignmentID); err != nil {
		return nil, err
	}
	pair, err := s.strategy.NextPair(ctx, assignmentID)
	if err != nil {
		return nil, s.mapErr(err, assignmentID)
	}
	return pair, nil
}

// Record stores the judgment for a presented pair. A second submission for the
// same pair, for example after navigating back, updates the existing relation
// instead of failing; updated reports that case.
func (s *Service) Record(ctx context.Context, assignmentID, left, right uuid.UUID, choice Choice) (domain.Relation, bool, error) {
	if err := s.requireInformationNeed(ctx, assignmentID); err != nil {
		return domain.Relation{}, false, err
	}
	pair, err := s.presentation(ctx, assignmentID, left, right)
	if err != nil {
		return domain.Relation{}, false, err
	}
	rel, err := pair.ToRelation(choice)
	if err != nil {
		return domain.Relation{}, false, err
	}
	rel.CreatedAt = s.now()

	saved, err := s.store.AddRelation(ctx, rel)
	if err == nil {
		return saved, false, nil
	}
	if errors.Is(err, storage.ErrUnknownDocument) {
		return domain.Relation{}, false, apperr.NewValidationWrap("document does not belong to assignment", err)
	}
	if !errors.Is(err, storage.ErrDuplicateRelation) {
		return domain.Relation{}, false, fmt.Errorf("add relation: %w", err)
	}

	existing, err := s.store.FindRelation(ctx, assignmentID, rel.Source, rel.Target)
	if err != nil {
		return domain.Relation{}, false, fmt.Errorf("find existing relation: %w", err)
	}
	slog.Info("Pair already judged, updating in place", "assignment", assignmentID, "relation", existing.ID)
	updated, err := s.overwrite(ctx, existing, rel)
	if err != nil {
		return domain.Relation{}, false, err
	}
	return updated, true, nil
}

// Revise changes a previously recorded judgment. If the submitted pair does
// not match the stored one the submission is logged and ignored.
func (s *Service) Revise(ctx context.Context, relationID int64, left, right uuid.UUID, choice Choice) (domain.Relation, bool, error) {
	existing, err := s.store.Relation(ctx, relationID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.Relation{}, false, apperr.NewNotFound("assessment", strconv.FormatInt(relationID, 10), err)
		}
		return domain.Relation{}, false, fmt.Errorf("load relation: %w", err)
	}

	pair, err := s.presentation(ctx, existing.AssignmentID, left, right)
	if err != nil {
		return domain.Relation{}, false, err
	}
	rel, err := pair.ToRelation(choice)
	if err != nil {
		return domain.Relation{}, false, err
	}

	if !existing.SamePair(rel) {
		slog.Error("Revision does not match stored assessment",
			"relation", existing.ID,
			"stored_source", existing.Source, "stored_target", existing.Target,
			"submitted_source", rel.Source, "submitted_target", rel.Target)
		return existing, false, nil
	}

	updated, err := s.overwrite(ctx, existing, rel)
	if err != nil {
		return domain.Relation{}, false, err
	}
	return updated, true, nil
}

// Presentation rebuilds the pair a stored relation was judged on.
func (s *Service) Presentation(ctx context.Context, relationID int64) (*DocumentPairPresentation, domain.Relation, error) {
	rel, err := s.store.Relation(ctx, relationID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, domain.Relation{}, apperr.NewNotFound("assessment", strconv.FormatInt(relationID, 10), err)
		}
		return nil, domain.Relation{}, fmt.Errorf("load relation: %w", err)
	}
	docs, err := s.documents(ctx, rel.AssignmentID)
	if err != nil {
		return nil, domain.Relation{}, err
	}
	p := FromRelation(rel, docs[rel.Source], docs[rel.Target])
	return &p, rel, nil
}

func (s *Service) summarize(ctx context.Context, a domain.Assignment) (Summary, error) {
	pending, err := s.strategy.PendingAssessments(ctx, a.ID)
	if err != nil {
		return Summary{}, fmt.Errorf("pending assessments of %s: %w", a.ID, err)
	}
	// Reloaded since PendingAssessments may have just marked it complete.
	fresh, err := s.store.Assignment(ctx, a.ID)
	if err != nil {
		return Summary{}, fmt.Errorf("reload assignment %s: %w", a.ID, err)
	}
	rels, err := s.store.Relations(ctx, a.ID)
	if err != nil {
		return Summary{}, fmt.Errorf("load relations of %s: %w", a.ID, err)
	}
	return Summary{Assignment: *fresh, Done: len(rels), Pending: pending}, nil
}

func (s *Service) requireInformationNeed(ctx context.Context, assignmentID uuid.UUID) error {
	a, err := s.store.Assignment(ctx, assignmentID)
	if err != nil {
		return s.mapErr(err, assignmentID)
	}
	if !a.Started() {
		return apperr.NewConflict("information need must be described before assessing", nil)
	}
	return nil
}

func (s *Service) overwrite(ctx context.Context, existing, rel domain.Relation) (domain.Relation, error) {
	existing.Source = rel.Source
	existing.Target = rel.Target
	existing.Type = rel.Type
	existing.SourcePresentedLeft = rel.SourcePresentedLeft
	if err := s.store.UpdateRelation(ctx, existing); err != nil {
		return domain.Relation{}, fmt.Errorf("update relation %d: %w", existing.ID, err)
	}
	return existing, nil
}

func (s *Service) presentation(ctx context.Context, assignmentID, left, right uuid.UUID) (DocumentPairPresentation, error) {
	if left == right {
		return DocumentPairPresentation{}, apperr.NewValidation("left and right documents must differ")
	}
	docs, err := s.documents(ctx, assignmentID)
	if err != nil {
		return DocumentPairPresentation{}, err
	}
	l, ok := docs[left]
	if !ok {
		return DocumentPairPresentation{}, apperr.NewNotFound("document", left.String(), storage.ErrUnknownDocument)
	}
	r, ok := docs[right]
	if !ok {
		return DocumentPairPresentation{}, apperr.NewNotFound("document", right.String(), storage.ErrUnknownDocument)
	}
	return DocumentPairPresentation{Left: l, Right: r}, nil
}

func (s *Service) documents(ctx context.Context, assignmentID uuid.UUID) (map[uuid.UUID]domain.Document, error) {
	docs, err := s.store.Documents(ctx, assignmentID)
	if err != nil {
		return nil, s.mapErr(err, assignmentID)
	}
	out := make(map[uuid.UUID]domain.Document, len(docs))
	for _, d := range docs {
		out[d.ID] = d
	}
	return out, nil
}

func (s *Service) mapErr(err error, assignmentID uuid.UUID) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NewNotFound("assignment", assignmentID.String(), err)
	}
	return err
}
