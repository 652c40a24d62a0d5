package router

import (
	"net/http"
	"strconv"

	"github.com/DjordjeVuckovic/pref-assess/internal/apperr"
	"github.com/DjordjeVuckovic/pref-assess/internal/assessment"
	"github.com/DjordjeVuckovic/pref-assess/pkg/pagination"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type AssessmentRouter struct {
	e          *echo.Echo
	service    *assessment.Service
	urlPattern string
}

func NewAssessmentRouter(e *echo.Echo, service *assessment.Service, urlPattern string) *AssessmentRouter {
	return &AssessmentRouter{
		e:          e,
		service:    service,
		urlPattern: urlPattern,
	}
}

func (r *AssessmentRouter) Bind() {
	r.e.GET("/queries/next", r.offerQuery)
	r.e.GET("/assignments", r.listAssignments)
	r.e.POST("/assignments", r.createAssignment)
	r.e.GET("/assignments/:id", r.status)
	r.e.PUT("/assignments/:id/information-need", r.describeNeed)
	r.e.GET("/assignments/:id/next", r.next)
	r.e.POST("/assignments/:id/assessments", r.record)
	r.e.GET("/assessments/:id", r.show)
	r.e.PUT("/assessments/:id", r.revise)
	r.e.GET("/comments", r.listComments)
	r.e.POST("/comments", r.addComment)
}

func (r *AssessmentRouter) offerQuery(c echo.Context) error {
	q, err := r.service.OfferQuery(c.Request().Context(), c.QueryParam("assessor"))
	if err != nil {
		return err
	}
	if q == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, q)
}

func (r *AssessmentRouter) createAssignment(c echo.Context) error {
	var req createAssignmentRequest
	if err := c.Bind(&req); err != nil {
		return apperr.NewValidationWrap("invalid request body", err)
	}

	a, err := r.service.Assign(c.Request().Context(), req.QID, req.Assessor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, a)
}

func (r *AssessmentRouter) listAssignments(c echo.Context) error {
	var page pagination.OffsetRequest
	if err := c.Bind(&page); err != nil {
		return apperr.NewValidationWrap("invalid pagination parameters", err)
	}

	res, err := r.service.Assignments(c.Request().Context(), c.QueryParam("assessor"), page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (r *AssessmentRouter) status(c echo.Context) error {
	id, err := assignmentID(c)
	if err != nil {
		return err
	}

	st, err := r.service.Status(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, st)
}

func (r *AssessmentRouter) describeNeed(c echo.Context) error {
	id, err := assignmentID(c)
	if err != nil {
		return err
	}
	var req informationNeedRequest
	if err := c.Bind(&req); err != nil {
		return apperr.NewValidationWrap("invalid request body", err)
	}

	a, err := r.service.DescribeNeed(c.Request().Context(), id, req.Description, req.Narrative)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (r *AssessmentRouter) next(c echo.Context) error {
	id, err := assignmentID(c)
	if err != nil {
		return err
	}

	pair, err := r.service.Next(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if pair == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, toPairResponse(pair, r.urlPattern))
}

func (r *AssessmentRouter) record(c echo.Context) error {
	id, err := assignmentID(c)
	if err != nil {
		return err
	}
	left, right, choice, err := bindJudgment(c)
	if err != nil {
		return err
	}

	rel, updated, err := r.service.Record(c.Request().Context(), id, left, right, choice)
	if err != nil {
		return err
	}
	code := http.StatusCreated
	if updated {
		code = http.StatusOK
	}
	return c.JSON(code, assessmentResponse{Assessment: rel, Choice: choice})
}

func (r *AssessmentRouter) show(c echo.Context) error {
	id, err := relationID(c)
	if err != nil {
		return err
	}

	pair, rel, err := r.service.Presentation(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, assessmentResponse{
		Assessment: rel,
		Choice:     assessment.ChoiceOf(rel),
		Pair:       toPairResponse(pair, r.urlPattern),
	})
}

func (r *AssessmentRouter) revise(c echo.Context) error {
	id, err := relationID(c)
	if err != nil {
		return err
	}
	left, right, choice, err := bindJudgment(c)
	if err != nil {
		return err
	}

	rel, updated, err := r.service.Revise(c.Request().Context(), id, left, right, choice)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, assessmentResponse{
		Assessment: rel,
		Choice:     assessment.ChoiceOf(rel),
		Ignored:    !updated,
	})
}

func (r *AssessmentRouter) addComment(c echo.Context) error {
	var req commentRequest
	if err := c.Bind(&req); err != nil {
		return apperr.NewValidationWrap("invalid request body", err)
	}

	cm, err := r.service.Comment(c.Request().Context(), req.Assessor, req.Comment)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, cm)
}

func (r *AssessmentRouter) listComments(c echo.Context) error {
	list, err := r.service.Comments(c.Request().Context(), c.QueryParam("assessor"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func bindJudgment(c echo.Context) (uuid.UUID, uuid.UUID, assessment.Choice, error) {
	var req judgmentRequest
	if err := c.Bind(&req); err != nil {
		return uuid.Nil, uuid.Nil, "", apperr.NewValidationWrap("invalid request body", err)
	}
	left, err := uuid.Parse(req.Left)
	if err != nil {
		return uuid.Nil, uuid.Nil, "", apperr.NewValidationWrap("invalid left document id", err)
	}
	right, err := uuid.Parse(req.Right)
	if err != nil {
		return uuid.Nil, uuid.Nil, "", apperr.NewValidationWrap("invalid right document id", err)
	}
	choice, err := assessment.ParseChoice(req.Choice)
	if err != nil {
		return uuid.Nil, uuid.Nil, "", err
	}
	return left, right, choice, nil
}

func assignmentID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperr.NewValidationWrap("invalid assignment id", err)
	}
	return id, nil
}

func relationID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, apperr.NewValidationWrap("invalid assessment id", err)
	}
	return id, nil
}
