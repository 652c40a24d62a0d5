package router

import (
	"github.com/DjordjeVuckovic/pref-assess/internal/assessment"
	"github.com/DjordjeVuckovic/pref-assess/internal/domain"
	"github.com/google/uuid"
)

type createAssignmentRequest struct {
	QID      string `json:"qid"`
	Assessor string `json:"assessor"`
}

type informationNeedRequest struct {
	Description string `json:"description"`
	Narrative   string `json:"narrative"`
}

type commentRequest struct {
	Assessor string `json:"assessor"`
	Comment  string `json:"comment"`
}

type importResponse struct {
	Pool    string `json:"pool"`
	Queries int    `json:"queries"`
	Saved   int    `json:"saved"`
}

type judgmentRequest struct {
	Left   string `json:"left"`
	Right  string `json:"right"`
	Choice string `json:"choice"`
}

type documentView struct {
	ID     uuid.UUID `json:"id"`
	DocID  string    `json:"docId"`
	Score  float64   `json:"score"`
	URL    string    `json:"url"`
	Pinned bool      `json:"pinned"`
}

type pairResponse struct {
	AssignmentID uuid.UUID    `json:"assignmentId"`
	Left         documentView `json:"left"`
	Right        documentView `json:"right"`
}

type assessmentResponse struct {
	Assessment domain.Relation   `json:"assessment"`
	Choice     assessment.Choice `json:"choice"`
	Ignored    bool              `json:"ignored,omitempty"`
	Pair       *pairResponse     `json:"pair,omitempty"`
}

func toPairResponse(p *assessment.DocumentPairPresentation, urlPattern string) *pairResponse {
	return &pairResponse{
		AssignmentID: p.Left.AssignmentID,
		Left: documentView{
			ID:     p.Left.ID,
			DocID:  p.LeftDocID(),
			Score:  p.Left.Score,
			URL:    p.LeftURL(urlPattern),
			Pinned: p.LeftPinned,
		},
		Right: documentView{
			ID:     p.Right.ID,
			DocID:  p.RightDocID(),
			Score:  p.Right.Score,
			URL:    p.RightURL(urlPattern),
			Pinned: p.RightPinned,
		},
	}
}
