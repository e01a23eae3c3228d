package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeQueryValidatesSort(t *testing.T) {
	app := NewTestApplication(nil, t)

	cases := []struct {
		name     string
		query    string
		ok       bool
		wantCode int
	}{
		{"no sort", "", true, http.StatusOK},
		{"title field", "sort=year", true, http.StatusOK},
		{"descending title field", "sort=-rating", true, http.StatusOK},
		{"not a title field", "sort=director", false, http.StatusUnprocessableEntity},
		{"bare minus", "sort=-", false, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodGet, "/api/v1/titles/?"+tc.query, nil)
			var q listTitlesQuery
			ok := app.decodeQuery(recorder, request, &q)
			assert.Equal(t, tc.ok, ok)
			if !tc.ok {
				assert.Equal(t, tc.wantCode, recorder.Code)
				assert.Contains(t, recorder.Body.String(), "sort")
			}
		})
	}
}
