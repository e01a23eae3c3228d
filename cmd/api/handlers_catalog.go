package main

import (
	"errors"
	"net/http"

	"reviewhub/proj/internal/domain/filters"
	"reviewhub/proj/internal/services/catalog"
	pgmodels "reviewhub/proj/internal/storage/postgres/models"

	"github.com/go-chi/chi/v5"
)

var (
	slugSortSafelist  = []string{"id", "name", "slug"}
	titleSortSafelist = []string{"id", "name", "year", "rating"}
)

type slugRequest struct {
	Name string `json:"name" validate:"required,max=256"`
	Slug string `json:"slug" validate:"required,max=50,slug"`
}

type listSlugQuery struct {
	Page     int    `schema:"page"`
	PageSize int    `schema:"page_size"`
	Sort     string `schema:"sort"`
	Search   string `schema:"search"`
}

func (app *Application) createCategory(w http.ResponseWriter, r *http.Request) {
	var req slugRequest
	if !app.readAndValidate(w, r, &req) {
		return
	}
	category, err := app.Services.Catalog.CreateCategory(r.Context(), req.Name, req.Slug)
	if err != nil {
		app.handleCatalogServiceErr(w, r, err)
		return
	}
	app.Http.Created(w, r, envelop{"category": category}, "")
}

func (app *Application) listCategories(w http.ResponseWriter, r *http.Request) {
	q, f, ok := app.slugListFilters(w, r)
	if !ok {
		return
	}
	categories, total, err := app.Services.Catalog.ListCategories(r.Context(), q.Search, f)
	if err != nil {
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.Ok(w, r, envelop{
		"categories": categories,
		"metadata":   filters.CalculateMetadata(total, f.Page, f.PageSize),
	}, "")
}

func (app *Application) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := app.Services.Catalog.DeleteCategory(r.Context(), chi.URLParam(r, "slug")); err != nil {
		app.handleCatalogServiceErr(w, r, err)
		return
	}
	app.Http.NoContent(w, r, "")
}

func (app *Application) createGenre(w http.ResponseWriter, r *http.Request) {
	var req slugRequest
	if !app.readAndValidate(w, r, &req) {
		return
	}
	genre, err := app.Services.Catalog.CreateGenre(r.Context(), req.Name, req.Slug)
	if err != nil {
		app.handleCatalogServiceErr(w, r, err)
		return
	}
	app.Http.Created(w, r, envelop{"genre": genre}, "")
}

func (app *Application) listGenres(w http.ResponseWriter, r *http.Request) {
	q, f, ok := app.slugListFilters(w, r)
	if !ok {
		return
	}
	genres, total, err := app.Services.Catalog.ListGenres(r.Context(), q.Search, f)
	if err != nil {
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.Ok(w, r, envelop{
		"genres":   genres,
		"metadata": filters.CalculateMetadata(total, f.Page, f.PageSize),
	}, "")
}

func (app *Application) deleteGenre(w http.ResponseWriter, r *http.Request) {
	if err := app.Services.Catalog.DeleteGenre(r.Context(), chi.URLParam(r, "slug")); err != nil {
		app.handleCatalogServiceErr(w, r, err)
		return
	}
	app.Http.NoContent(w, r, "")
}

func (app *Application) slugListFilters(w http.ResponseWriter, r *http.Request) (listSlugQuery, filters.Filters, bool) {
	var q listSlugQuery
	if !app.decodeQuery(w, r, &q) {
		return q, filters.Filters{}, false
	}
	if q.Sort == "" {
		q.Sort = "id"
	}
	f := filters.New(q.Page, q.PageSize, q.Sort, slugSortSafelist)
	if !f.ValidSort() {
		app.Http.BadRequest(w, r, "unknown sort field: "+q.Sort)
		return q, f, false
	}
	return q, f, true
}

// Genre membership is required at creation; a title cannot enter the
// catalog unclassified.
type createTitleRequest struct {
	Name        string   `json:"name" validate:"required,max=256"`
	Year        int32    `json:"year" validate:"required"`
	Description string   `json:"description"`
	Category    string   `json:"category" validate:"omitempty,slug"`
	Genre       []string `json:"genre" validate:"required,min=1,dive,slug" errorMsg:"At least one genre slug is required"`
}

func (app *Application) createTitle(w http.ResponseWriter, r *http.Request) {
	var req createTitleRequest
	if !app.readAndValidate(w, r, &req) {
		return
	}
	title, err := app.Services.Catalog.CreateTitle(r.Context(), req.Name, req.Year, req.Description, req.Category, req.Genre)
	if err != nil {
		app.handleCatalogServiceErr(w, r, err)
		return
	}
	app.Http.Created(w, r, envelop{"title": title}, "")
}

func (app *Application) getTitle(w http.ResponseWriter, r *http.Request) {
	id, ok := app.extractIDParam(w, r, "titleID")
	if !ok {
		return
	}
	title, err := app.Services.Catalog.GetTitle(r.Context(), id)
	if err != nil {
		app.handleCatalogServiceErr(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"title": title}, "")
}

type listTitlesQuery struct {
	Page     int    `schema:"page"`
	PageSize int    `schema:"page_size"`
	Sort     string `schema:"sort" validate:"omitempty,sortbytitlefield"`
	Category string `schema:"category"`
	Genre    string `schema:"genre"`
	Name     string `schema:"name"`
	Year     int32  `schema:"year"`
}

func (app *Application) listTitles(w http.ResponseWriter, r *http.Request) {
	var q listTitlesQuery
	if !app.decodeQuery(w, r, &q) {
		return
	}
	if q.Sort == "" {
		q.Sort = "id"
	}
	f := filters.New(q.Page, q.PageSize, q.Sort, titleSortSafelist)
	if !f.ValidSort() {
		app.Http.BadRequest(w, r, "unknown sort field: "+q.Sort)
		return
	}
	titles, total, err := app.Services.Catalog.ListTitles(r.Context(), pgmodels.TitlesFilter{
		CategorySlug: q.Category,
		GenreSlug:    q.Genre,
		Name:         q.Name,
		Year:         q.Year,
	}, f)
	if err != nil {
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.Ok(w, r, envelop{
		"titles":   titles,
		"metadata": filters.CalculateMetadata(total, f.Page, f.PageSize),
	}, "")
}

type updateTitleRequest struct {
	Name        *string  `json:"name" validate:"omitempty,max=256"`
	Year        *int32   `json:"year"`
	Description *string  `json:"description"`
	Category    *string  `json:"category" validate:"omitempty,slug"`
	Genre       []string `json:"genre" validate:"omitempty,min=1,dive,slug"`
}

func (app *Application) updateTitle(w http.ResponseWriter, r *http.Request) {
	id, ok := app.extractIDParam(w, r, "titleID")
	if !ok {
		return
	}
	var req updateTitleRequest
	if !app.readAndValidate(w, r, &req) {
		return
	}
	title, err := app.Services.Catalog.UpdateTitle(r.Context(), id, catalog.TitleUpdateParams{
		Name:         req.Name,
		Year:         req.Year,
		Description:  req.Description,
		CategorySlug: req.Category,
		GenreSlugs:   req.Genre,
	})
	if err != nil {
		app.handleCatalogServiceErr(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"title": title}, "")
}

func (app *Application) deleteTitle(w http.ResponseWriter, r *http.Request) {
	id, ok := app.extractIDParam(w, r, "titleID")
	if !ok {
		return
	}
	if err := app.Services.Catalog.DeleteTitle(r.Context(), id); err != nil {
		app.handleCatalogServiceErr(w, r, err)
		return
	}
	app.Http.NoContent(w, r, "")
}

func (app *Application) handleCatalogServiceErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, catalog.ErrSlugTaken):
		app.Http.BadRequest(w, r, err.Error())
	case errors.Is(err, catalog.ErrFutureYear):
		app.Http.BadRequest(w, r, err.Error())
	case errors.Is(err, catalog.ErrCategoryNotFound),
		errors.Is(err, catalog.ErrGenreNotFound),
		errors.Is(err, catalog.ErrTitleNotFound):
		app.Http.NotFound(w, r, err.Error())
	case errors.Is(err, catalog.ErrRelationNotFound):
		app.Http.BadRequest(w, r, err.Error())
	default:
		app.Http.ServerError(w, r, err, "")
	}
}
