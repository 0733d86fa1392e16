package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mtihani/core"
	"github.com/trezcool/mtihani/core/exam"
)

var validate, translator = core.NewValidator()

type examApi struct {
	svc *exam.Service
}

func registerExamAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *exam.Service) {
	api := examApi{svc: svc}

	eg := g.Group("/exams", jwt)
	eg.GET("", api.filter)
	eg.GET("/:id/result", api.result)
	eg.POST("/:id/submit", api.submit)
}

// SubmitRequest is the submission payload; keys are question IDs, values the
// chosen option letters.
type SubmitRequest struct {
	Answers map[string]string `json:"answers" validate:"required,dive,answer_choice"`
}

func (r *SubmitRequest) Validate() error {
	for qid, choice := range r.Answers {
		r.Answers[qid] = core.CleanString(choice)
	}
	return validate.Struct(r)
}

// answersByQuestionID converts the wire keys to question IDs.
func (r *SubmitRequest) answersByQuestionID() (map[int]string, error) {
	answers := make(map[int]string, len(r.Answers))
	for qid, choice := range r.Answers {
		id, err := strconv.Atoi(qid)
		if err != nil {
			return nil, core.NewValidationError(nil, core.FieldError{
				Field: "answers", Error: "invalid question id: " + qid,
			})
		}
		answers[id] = choice
	}
	return answers, nil
}

// Handlers

func (api *examApi) submit(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	var data SubmitRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SubmitRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	answers, err := data.answersByQuestionID()
	if err != nil {
		return err
	}

	res, err := api.svc.Submit(ctx.Request().Context(), id, claims.Subject, answers)
	if err != nil {
		return err
	}
	return jsonSuccess(ctx, http.StatusOK, "Exam submitted successfully", res)
}

func (api *examApi) result(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	sub, err := api.svc.GetResult(ctx.Request().Context(), id, claims.Subject)
	if err != nil {
		return err
	}
	return jsonSuccess(ctx, http.StatusOK, "", sub)
}

func (api *examApi) filter(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var completed *bool
	switch status := ctx.QueryParam("status"); status {
	case "", "all":
	case "completed":
		completed = boolPtr(true)
	case "pending":
		completed = boolPtr(false)
	default:
		return core.NewValidationError(nil, core.FieldError{
			Field: "status", Error: "must be one of all, completed or pending",
		})
	}

	subs, err := api.svc.Filter(ctx.Request().Context(), claims.Subject, completed)
	if err != nil {
		return err
	}
	return jsonSuccess(ctx, http.StatusOK, "", subs)
}

func boolPtr(b bool) *bool { return &b }
