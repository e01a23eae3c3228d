package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"reviewhub/proj/internal/domain/models"

	"github.com/stretchr/testify/assert"
)

func TestRequireAuthenticatedUser(t *testing.T) {
	app := NewTestApplication(nil, t)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	t.Run("authenticated", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request = request.WithContext(context.WithValue(request.Context(), CtxKeyUser, &models.User{
			ID:       1,
			Username: "test",
			Email:    "test@gmail.com",
			Role:     models.RoleUser,
		}))
		app.requireAuthenticatedUser(next).ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusOK, recorder.Code)
	})
	t.Run("anonymous", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request = request.WithContext(context.WithValue(request.Context(), CtxKeyUser, models.AnonymousUser))
		app.requireAuthenticatedUser(next).ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})
	t.Run("no user in context", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		app.requireAuthenticatedUser(next).ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})
}

func TestRecoverer(t *testing.T) {
	app := NewTestApplication(nil, t)
	cases := []struct {
		name  string
		panic any
	}{
		{"error value", assert.AnError},
		{"string value", "unexpected field"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				panic(tc.panic)
			})
			assert.NotPanics(t, func() {
				app.Recoverer(next).ServeHTTP(recorder, request)
			})
			assert.Equal(t, http.StatusInternalServerError, recorder.Code)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	app := NewTestApplication(nil, t)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	cases := []struct {
		name     string
		user     *models.User
		wantCode int
	}{
		{"admin role", &models.User{ID: 1, Username: "boss", Role: models.RoleAdmin}, http.StatusOK},
		{"superuser with user role", &models.User{ID: 2, Username: "root", Role: models.RoleUser, IsSuperuser: true}, http.StatusOK},
		{"moderator", &models.User{ID: 3, Username: "mod", Role: models.RoleModerator}, http.StatusForbidden},
		{"plain user", &models.User{ID: 4, Username: "alice", Role: models.RoleUser}, http.StatusForbidden},
		{"anonymous", models.AnonymousUser, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			request = request.WithContext(context.WithValue(request.Context(), CtxKeyUser, tc.user))
			app.requireAdmin(next).ServeHTTP(recorder, request)
			assert.Equal(t, tc.wantCode, recorder.Code)
		})
	}
}
