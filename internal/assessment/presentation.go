package assessment

import (
	"fmt"
	"strings"

	"github.com/DjordjeVuckovic/pref-assess/internal/apperr"
	"github.com/DjordjeVuckovic/pref-assess/internal/domain"
)

// Choice is the assessor's answer for a presented pair.
type Choice string

const (
	ChoiceLeft       Choice = "left"
	ChoiceRight      Choice = "right"
	ChoiceDuplicates Choice = "duplicates"
	ChoiceLeftBad    Choice = "left_bad"
	ChoiceRightBad   Choice = "right_bad"
)

func ParseChoice(s string) (Choice, error) {
	switch c := Choice(strings.ToLower(strings.TrimSpace(s))); c {
	case ChoiceLeft, ChoiceRight, ChoiceDuplicates, ChoiceLeftBad, ChoiceRightBad:
		return c, nil
	default:
		return "", apperr.NewValidation(fmt.Sprintf("unknown choice %q", s))
	}
}

// ChoiceOf recovers the choice that produced rel.
func ChoiceOf(rel domain.Relation) Choice {
	switch rel.Type {
	case domain.RelationDuplicate:
		return ChoiceDuplicates
	case domain.RelationBad:
		if rel.SourcePresentedLeft {
			return ChoiceLeftBad
		}
		return ChoiceRightBad
	default:
		if rel.SourcePresentedLeft {
			return ChoiceLeft
		}
		return ChoiceRight
	}
}

// DocumentPairPresentation places two documents on the left and right of the
// comparison. A pinned side holds the document carried over from the previous
// round.
type DocumentPairPresentation struct {
	Left        domain.Document `json:"left"`
	Right       domain.Document `json:"right"`
	LeftPinned  bool            `json:"leftPinned"`
	RightPinned bool            `json:"rightPinned"`
}

// FromRelation rebuilds the presentation a relation was recorded from.
func FromRelation(rel domain.Relation, source, target domain.Document) DocumentPairPresentation {
	if rel.SourcePresentedLeft {
		return DocumentPairPresentation{Left: source, Right: target}
	}
	return DocumentPairPresentation{Left: target, Right: source}
}

func (p DocumentPairPresentation) LeftDocID() string {
	return p.Left.DocID
}

func (p DocumentPairPresentation) RightDocID() string {
	return p.Right.DocID
}

func (p DocumentPairPresentation) LeftURL(pattern string) string {
	return docURL(pattern, p.Left.DocID)
}

func (p DocumentPairPresentation) RightURL(pattern string) string {
	return docURL(pattern, p.Right.DocID)
}

func docURL(pattern, docID string) string {
	if !strings.Contains(pattern, "%s") {
		return pattern + docID
	}
	return strings.Replace(pattern, "%s", docID, 1)
}

// ToRelation converts the assessor's choice into the relation to record.
// CreatedAt and ID are left to the caller.
func (p DocumentPairPresentation) ToRelation(c Choice) (domain.Relation, error) {
	rel := domain.Relation{AssignmentID: p.Left.AssignmentID}
	switch c {
	case ChoiceLeft:
		rel.Source, rel.Target, rel.Type, rel.SourcePresentedLeft = p.Left.ID, p.Right.ID, domain.RelationPreferred, true
	case ChoiceRight:
		rel.Source, rel.Target, rel.Type, rel.SourcePresentedLeft = p.Right.ID, p.Left.ID, domain.RelationPreferred, false
	case ChoiceDuplicates:
		rel.Source, rel.Target, rel.Type, rel.SourcePresentedLeft = p.Left.ID, p.Right.ID, domain.RelationDuplicate, true
	case ChoiceLeftBad:
		rel.Source, rel.Target, rel.Type, rel.SourcePresentedLeft = p.Left.ID, p.Right.ID, domain.RelationBad, true
	case ChoiceRightBad:
		rel.Source, rel.Target, rel.Type, rel.SourcePresentedLeft = p.Right.ID, p.Left.ID, domain.RelationBad, false
	default:
		return domain.Relation{}, apperr.NewValidation(fmt.Sprintf("unknown choice %q", c))
	}
	return rel, nil
}
