package main

import (
	"errors"
	"net/http"

	"reviewhub/proj/internal/authz"
	"reviewhub/proj/internal/domain/filters"
	"reviewhub/proj/internal/domain/models"
	"reviewhub/proj/internal/services/users"

	"github.com/go-chi/chi/v5"
)

var userSortSafelist = []string{"id", "username", "email"}

func (app *Application) getMe(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	app.Http.Ok(w, r, envelop{"user": user}, "")
}

type updateProfileRequest struct {
	Email     *string `json:"email" validate:"omitempty,max=254,email"`
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name" validate:"omitempty,max=150"`
	Bio       *string `json:"bio"`
	Role      *string `json:"role" validate:"omitempty,oneof=user moderator admin"`
}

func (app *Application) updateMe(w http.ResponseWriter, r *http.Request) {
	actor := userFromContext(r.Context())
	var req updateProfileRequest
	if !app.readAndValidate(w, r, &req) {
		return
	}
	// only admins may change a role, their own included
	if req.Role != nil && !authz.Allowed(actor, authz.ActionAssignRole, authz.Resource{}) {
		app.Http.Forbidden(w, r, "You may not change your role")
		return
	}
	updated, err := app.Services.Users.Update(r.Context(), actor.Username, users.UpdateParams{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      req.Role,
	})
	if err != nil {
		app.handleUserServiceErr(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"user": updated}, "")
}

type listUsersQuery struct {
	Page     int    `schema:"page"`
	PageSize int    `schema:"page_size"`
	Sort     string `schema:"sort"`
	Search   string `schema:"search"`
}

func (app *Application) listUsers(w http.ResponseWriter, r *http.Request) {
	var q listUsersQuery
	if !app.decodeQuery(w, r, &q) {
		return
	}
	if q.Sort == "" {
		q.Sort = "id"
	}
	f := filters.New(q.Page, q.PageSize, q.Sort, userSortSafelist)
	if !f.ValidSort() {
		app.Http.BadRequest(w, r, "unknown sort field: "+q.Sort)
		return
	}
	userList, total, err := app.Services.Users.List(r.Context(), q.Search, f)
	if err != nil {
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.Ok(w, r, envelop{
		"users":    userList,
		"metadata": filters.CalculateMetadata(total, f.Page, f.PageSize),
	}, "")
}

type createUserRequest struct {
	Username  string `json:"username" validate:"required,max=150,username"`
	Email     string `json:"email" validate:"required,max=254,email"`
	FirstName string `json:"first_name" validate:"omitempty,max=150"`
	LastName  string `json:"last_name" validate:"omitempty,max=150"`
	Bio       string `json:"bio"`
	Role      string `json:"role" validate:"omitempty,oneof=user moderator admin"`
}

func (app *Application) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !app.readAndValidate(w, r, &req) {
		return
	}
	user, err := app.Services.Users.Create(r.Context(), &models.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      req.Role,
	})
	if err != nil {
		app.handleUserServiceErr(w, r, err)
		return
	}
	app.Http.Created(w, r, envelop{"user": user}, "")
}

func (app *Application) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := app.Services.Users.Get(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		app.handleUserServiceErr(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"user": user}, "")
}

func (app *Application) updateUser(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if !app.readAndValidate(w, r, &req) {
		return
	}
	updated, err := app.Services.Users.Update(r.Context(), chi.URLParam(r, "username"), users.UpdateParams{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      req.Role,
	})
	if err != nil {
		app.handleUserServiceErr(w, r, err)
		return
	}
	app.Http.Ok(w, r, envelop{"user": updated}, "")
}

func (app *Application) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := app.Services.Users.Delete(r.Context(), chi.URLParam(r, "username")); err != nil {
		app.handleUserServiceErr(w, r, err)
		return
	}
	app.Http.NoContent(w, r, "")
}

func (app *Application) handleUserServiceErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, users.ErrUserNotFound):
		app.Http.NotFound(w, r, err.Error())
	case errors.Is(err, users.ErrUserAlreadyExists):
		app.Http.BadRequest(w, r, err.Error())
	case errors.Is(err, users.ErrInvalidRole):
		app.Http.BadRequest(w, r, err.Error())
	default:
		app.Http.ServerError(w, r, err, "")
	}
}
