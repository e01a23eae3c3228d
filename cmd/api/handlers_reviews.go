package main

import (
	"errors"
	"net/http"

	"reviewhub/proj/internal/domain/filters"
	"reviewhub/proj/internal/services/reviews"
)

var (
	reviewSortSafelist  = []string{"id", "pub_date", "score"}
	commentSortSafelist = []string{"id", "pub_date"}
)

type createReviewRequest struct {
	Text  string `json:"text" validate:"required"`
	Score int32  `json:"score" validate:"required,min=1,max=10" errorMsg:"Score must be between 1 and 10"`
}

func (app *Application) createReview(w http.ResponseWriter, r *http.Request) {
	titleID, ok := app.extractIDParam(w, r, "titleID")
	if !ok {
		return
	}
	var req createReviewRequest
	if !app.readAndValidate(w, r, &req) {
		return
	}
	actor := userFromContext(r.Context())
	review, err := app.Services.Reviews.CreateReview(r.Context(), titleID, actor, req.Score, req.Text)
	if err != nil {
		app.handleReviewServiceErr(w, r, err)
		return
	}
	app.Http.Created(w, r, envelop{"review": review}, "")
}

func (app *Application) listReviews(w http.ResponseWriter, r *http.Request) {
	titleID, ok := app.extractIDParam(w, r, "titleID")
	if !ok {
		return
	}
	f, ok := app.listFilters(w, r, reviewSortSafelist, "pub_date")
	if !ok {
		return
	}
	list, total, err := app.Services.Reviews.ListReviews(r.Context(), titleID, f)
	if err != nil {
		app.handleReviewServiceErr(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{
		"reviews":  list,
		"metadata": filters.CalculateMetadata(total, f.Page, f.PageSize),
	}, "")
}

func (app *Application) getReview(w http.ResponseWriter, r *http.Request) {
	titleID, reviewID, ok := app.extractReviewPath(w, r)
	if !ok {
		return
	}
	review, err := app.Services.Reviews.GetReview(r.Context(), titleID, reviewID)
	if err != nil {
		app.handleReviewServiceErr(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"review": review}, "")
}

type updateReviewRequest struct {
	Text  *string `json:"text"`
	Score *int32  `json:"score" validate:"omitempty,min=1,max=10" errorMsg:"Score must be between 1 and 10"`
}

func (app *Application) updateReview(w http.ResponseWriter, r *http.Request) {
	titleID, reviewID, ok := app.extractReviewPath(w, r)
	if !ok {
		return
	}
	var req updateReviewRequest
	if !app.readAndValidate(w, r, &req) {
		return
	}
	actor := userFromContext(r.Context())
	review, err := app.Services.Reviews.UpdateReview(r.Context(), titleID, reviewID, actor, req.Score, req.Text)
	if err != nil {
		app.handleReviewServiceErr(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"review": review}, "")
}

func (app *Application) deleteReview(w http.ResponseWriter, r *http.Request) {
	titleID, reviewID, ok := app.extractReviewPath(w, r)
	if !ok {
		return
	}
	actor := userFromContext(r.Context())
	if err := app.Services.Reviews.DeleteReview(r.Context(), titleID, reviewID, actor); err != nil {
		app.handleReviewServiceErr(w, r, err)
		return
	}
	app.Http.NoContent(w, r, "")
}

type commentRequest struct {
	Text string `json:"text" validate:"required"`
}

func (app *Application) createComment(w http.ResponseWriter, r *http.Request) {
	titleID, reviewID, ok := app.extractReviewPath(w, r)
	if !ok {
		return
	}
	var req commentRequest
	if !app.readAndValidate(w, r, &req) {
		return
	}
	actor := userFromContext(r.Context())
	comment, err := app.Services.Reviews.CreateComment(r.Context(), titleID, reviewID, actor, req.Text)
	if err != nil {
		app.handleReviewServiceErr(w, r, err)
		return
	}
	app.Http.Created(w, r, envelop{"comment": comment}, "")
}

func (app *Application) listComments(w http.ResponseWriter, r *http.Request) {
	titleID, reviewID, ok := app.extractReviewPath(w, r)
	if !ok {
		return
	}
	f, ok := app.listFilters(w, r, commentSortSafelist, "pub_date")
	if !ok {
		return
	}
	list, total, err := app.Services.Reviews.ListComments(r.Context(), titleID, reviewID, f)
	if err != nil {
		app.handleReviewServiceErr(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{
		"comments": list,
		"metadata": filters.CalculateMetadata(total, f.Page, f.PageSize),
	}, "")
}

func (app *Application) getComment(w http.ResponseWriter, r *http.Request) {
	titleID, reviewID, commentID, ok := app.extractCommentPath(w, r)
	if !ok {
		return
	}
	comment, err := app.Services.Reviews.GetComment(r.Context(), titleID, reviewID, commentID)
	if err != nil {
		app.handleReviewServiceErr(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"comment": comment}, "")
}

func (app *Application) updateComment(w http.ResponseWriter, r *http.Request) {
	titleID, reviewID, commentID, ok := app.extractCommentPath(w, r)
	if !ok {
		return
	}
	var req commentRequest
	if !app.readAndValidate(w, r, &req) {
		return
	}
	actor := userFromContext(r.Context())
	comment, err := app.Services.Reviews.UpdateComment(r.Context(), titleID, reviewID, commentID, actor, req.Text)
	if err != nil {
		app.handleReviewServiceErr(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"comment": comment}, "")
}

func (app *Application) deleteComment(w http.ResponseWriter, r *http.Request) {
	titleID, reviewID, commentID, ok := app.extractCommentPath(w, r)
	if !ok {
		return
	}
	actor := userFromContext(r.Context())
	if err := app.Services.Reviews.DeleteComment(r.Context(), titleID, reviewID, commentID, actor); err != nil {
		app.handleReviewServiceErr(w, r, err)
		return
	}
	app.Http.NoContent(w, r, "")
}

func (app *Application) extractReviewPath(w http.ResponseWriter, r *http.Request) (titleID, reviewID int64, ok bool) {
	if titleID, ok = app.extractIDParam(w, r, "titleID"); !ok {
		return
	}
	reviewID, ok = app.extractIDParam(w, r, "reviewID")
	return
}

func (app *Application) extractCommentPath(w http.ResponseWriter, r *http.Request) (titleID, reviewID, commentID int64, ok bool) {
	if titleID, reviewID, ok = app.extractReviewPath(w, r); !ok {
		return
	}
	commentID, ok = app.extractIDParam(w, r, "commentID")
	return
}

type listQuery struct {
	Page     int    `schema:"page"`
	PageSize int    `schema:"page_size"`
	Sort     string `schema:"sort"`
}

func (app *Application) listFilters(w http.ResponseWriter, r *http.Request, safelist []string, defaultSort string) (filters.Filters, bool) {
	var q listQuery
	if !app.decodeQuery(w, r, &q) {
		return filters.Filters{}, false
	}
	if q.Sort == "" {
		q.Sort = defaultSort
	}
	f := filters.New(q.Page, q.PageSize, q.Sort, safelist)
	if !f.ValidSort() {
		app.Http.BadRequest(w, r, "unknown sort field: "+q.Sort)
		return f, false
	}
	return f, true
}

func (app *Application) handleReviewServiceErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, reviews.ErrReviewExists):
		app.Http.Conflict(w, r, err.Error())
	case errors.Is(err, reviews.ErrInvalidScore):
		app.Http.BadRequest(w, r, err.Error())
	case errors.Is(err, reviews.ErrPermissionDenied):
		app.Http.Forbidden(w, r, err.Error())
	case errors.Is(err, reviews.ErrTitleNotFound),
		errors.Is(err, reviews.ErrReviewNotFound),
		errors.Is(err, reviews.ErrCommentNotFound):
		app.Http.NotFound(w, r, err.Error())
	default:
		app.Http.ServerError(w, r, err, "")
	}
}
