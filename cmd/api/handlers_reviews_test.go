package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"reviewhub/proj/internal/domain/filters"
	"reviewhub/proj/internal/domain/models"
	"reviewhub/proj/internal/services"
	"reviewhub/proj/internal/services/reviews"
	"reviewhub/proj/internal/storage"

	"github.com/stretchr/testify/assert"
)

// stubReviewsStore serves a single known title with no reviews; any other
// title id behaves like a missing row.
type stubReviewsStore struct {
	knownTitleID int64
}

func (s *stubReviewsStore) Insert(ctx context.Context, titleID, authorID int64, score int32, text string) (*models.Review, error) {
	return nil, storage.ErrNotFound
}

func (s *stubReviewsStore) Get(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	return nil, storage.ErrNotFound
}

func (s *stubReviewsStore) ListForTitle(ctx context.Context, titleID int64, f filters.Filters) ([]models.Review, int, error) {
	if titleID != s.knownTitleID {
		return nil, 0, storage.ErrNotFound
	}
	return []models.Review{}, 0, nil
}

func (s *stubReviewsStore) Update(ctx context.Context, review *models.Review) (*models.Review, error) {
	return nil, storage.ErrNotFound
}

func (s *stubReviewsStore) Delete(ctx context.Context, reviewID int64) error {
	return storage.ErrNotFound
}

type stubCommentsStore struct{}

func (s *stubCommentsStore) Insert(ctx context.Context, reviewID, authorID int64, text string) (*models.Comment, error) {
	return nil, storage.ErrNotFound
}

func (s *stubCommentsStore) Get(ctx context.Context, reviewID, commentID int64) (*models.Comment, error) {
	return nil, storage.ErrNotFound
}

func (s *stubCommentsStore) ListForReview(ctx context.Context, reviewID int64, f filters.Filters) ([]models.Comment, int, error) {
	return nil, 0, storage.ErrNotFound
}

func (s *stubCommentsStore) Update(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	return nil, storage.ErrNotFound
}

func (s *stubCommentsStore) Delete(ctx context.Context, commentID int64) error {
	return storage.ErrNotFound
}

func TestListReviews(t *testing.T) {
	app := NewTestApplication(nil, t)
	app.Services = &services.Services{
		Reviews: reviews.New(app.log, &stubReviewsStore{knownTitleID: 1}, &stubCommentsStore{}),
	}
	router := app.routes()

	t.Run("missing title is a 404, not an empty page", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/api/v1/titles/999/reviews/", nil)
		router.ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
	t.Run("existing title with no reviews", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/api/v1/titles/1/reviews/", nil)
		router.ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusOK, recorder.Code)
		var resp struct {
			Data struct {
				Reviews []models.Review `json:"reviews"`
			} `json:"data"`
		}
		assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
		assert.Empty(t, resp.Data.Reviews)
	})
}
