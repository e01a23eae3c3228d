package main

import (
	"errors"
	"net/http"

	"reviewhub/proj/internal/services/auth"
)

type signupRequest struct {
	Username string `json:"username" validate:"required,max=150,username"`
	Email    string `json:"email" validate:"required,max=254,email"`
}

func (app *Application) signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !app.readAndValidate(w, r, &req) {
		return
	}
	user, err := app.Services.Auth.Signup(r.Context(), req.Username, req.Email)
	if err != nil {
		if errors.Is(err, auth.ErrIdentityConflict) {
			app.Http.BadRequest(w, r, err.Error())
			return
		}
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.Ok(
		w, r,
		envelop{"username": user.Username, "email": user.Email},
		"Confirmation code sent",
	)
}

type tokenRequest struct {
	Username         string `json:"username" validate:"required"`
	ConfirmationCode string `json:"confirmation_code" validate:"required"`
}

func (app *Application) token(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if !app.readAndValidate(w, r, &req) {
		return
	}
	token, err := app.Services.Auth.Token(r.Context(), req.Username, req.ConfirmationCode)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			app.Http.NotFound(w, r, err.Error())
		case errors.Is(err, auth.ErrInvalidCode):
			app.Http.BadRequest(w, r, err.Error())
		default:
			app.Http.ServerError(w, r, err, "")
		}
		return
	}
	app.Http.Ok(w, r, envelop{"token": token}, "")
}
