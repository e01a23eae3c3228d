package reviews

import (
	"context"
	"log/slog"
	"testing"

	"reviewhub/proj/internal/domain/filters"
	"reviewhub/proj/internal/domain/models"
	"reviewhub/proj/internal/domain/rating"
	"reviewhub/proj/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore backs both storage interfaces and mirrors the store's
// behavior: unique (title, author) constraint, comment cascade and
// rating recomputation on every review write.
type fakeStore struct {
	nextID   int64
	titles   map[int64]*int32 // title id -> rating
	reviews  map[int64]*models.Review
	comments map[int64]*models.Comment
}

func newFakeStore(titleIDs ...int64) *fakeStore {
	s := &fakeStore{
		nextID:   1,
		titles:   make(map[int64]*int32),
		reviews:  make(map[int64]*models.Review),
		comments: make(map[int64]*models.Comment),
	}
	for _, id := range titleIDs {
		s.titles[id] = nil
	}
	return s
}

func (s *fakeStore) recompute(titleID int64) {
	var scores []int32
	for _, r := range s.reviews {
		if r.TitleID == titleID {
			scores = append(scores, r.Score)
		}
	}
	s.titles[titleID] = rating.Compute(scores)
}

func (s *fakeStore) Insert(_ context.Context, titleID, authorID int64, score int32, text string) (*models.Review, error) {
	if _, ok := s.titles[titleID]; !ok {
		return nil, storage.ErrNotFound
	}
	for _, r := range s.reviews {
		if r.TitleID == titleID && r.AuthorID == authorID {
			return nil, storage.ErrConflict
		}
	}
	review := &models.Review{ID: s.nextID, TitleID: titleID, AuthorID: authorID, Score: score, Text: text}
	s.nextID++
	s.reviews[review.ID] = review
	s.recompute(titleID)
	out := *review
	return &out, nil
}

func (s *fakeStore) Get(_ context.Context, titleID, reviewID int64) (*models.Review, error) {
	r, ok := s.reviews[reviewID]
	if !ok || r.TitleID != titleID {
		return nil, storage.ErrNotFound
	}
	out := *r
	return &out, nil
}

func (s *fakeStore) ListForTitle(_ context.Context, titleID int64, _ filters.Filters) ([]models.Review, int, error) {
	var out []models.Review
	for _, r := range s.reviews {
		if r.TitleID == titleID {
			out = append(out, *r)
		}
	}
	return out, len(out), nil
}

func (s *fakeStore) Update(_ context.Context, review *models.Review) (*models.Review, error) {
	stored, ok := s.reviews[review.ID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	stored.Score = review.Score
	stored.Text = review.Text
	s.recompute(stored.TitleID)
	out := *stored
	return &out, nil
}

func (s *fakeStore) Delete(_ context.Context, reviewID int64) error {
	r, ok := s.reviews[reviewID]
	if !ok {
		return storage.ErrNotFound
	}
	delete(s.reviews, reviewID)
	for id, c := range s.comments {
		if c.ReviewID == reviewID {
			delete(s.comments, id)
		}
	}
	s.recompute(r.TitleID)
	return nil
}

func (s *fakeStore) InsertComment(_ context.Context, reviewID, authorID int64, text string) (*models.Comment, error) {
	comment := &models.Comment{ID: s.nextID, ReviewID: reviewID, AuthorID: authorID, Text: text}
	s.nextID++
	s.comments[comment.ID] = comment
	out := *comment
	return &out, nil
}

func (s *fakeStore) GetComment(_ context.Context, reviewID, commentID int64) (*models.Comment, error) {
	c, ok := s.comments[commentID]
	if !ok || c.ReviewID != reviewID {
		return nil, storage.ErrNotFound
	}
	out := *c
	return &out, nil
}

func (s *fakeStore) ListForReview(_ context.Context, reviewID int64, _ filters.Filters) ([]models.Comment, int, error) {
	var out []models.Comment
	for _, c := range s.comments {
		if c.ReviewID == reviewID {
			out = append(out, *c)
		}
	}
	return out, len(out), nil
}

func (s *fakeStore) UpdateComment(_ context.Context, comment *models.Comment) (*models.Comment, error) {
	stored, ok := s.comments[comment.ID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	stored.Text = comment.Text
	out := *stored
	return &out, nil
}

func (s *fakeStore) DeleteComment(_ context.Context, commentID int64) error {
	if _, ok := s.comments[commentID]; !ok {
		return storage.ErrNotFound
	}
	delete(s.comments, commentID)
	return nil
}

// commentsAdapter renames the comment methods onto the CommentsStorage
// interface without a second fake.
type commentsAdapter struct{ *fakeStore }

func (a commentsAdapter) Insert(ctx context.Context, reviewID, authorID int64, text string) (*models.Comment, error) {
	return a.InsertComment(ctx, reviewID, authorID, text)
}
func (a commentsAdapter) Get(ctx context.Context, reviewID, commentID int64) (*models.Comment, error) {
	return a.GetComment(ctx, reviewID, commentID)
}
func (a commentsAdapter) Update(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	return a.UpdateComment(ctx, comment)
}
func (a commentsAdapter) Delete(ctx context.Context, commentID int64) error {
	return a.DeleteComment(ctx, commentID)
}

var (
	alice     = &models.User{ID: 1, Username: "alice", Role: models.RoleUser}
	bob       = &models.User{ID: 2, Username: "bob", Role: models.RoleUser}
	moderator = &models.User{ID: 3, Username: "mod", Role: models.RoleModerator}
)

func newTestService(titleIDs ...int64) (*ReviewService, *fakeStore) {
	store := newFakeStore(titleIDs...)
	return New(slog.Default(), store, commentsAdapter{store}), store
}

func TestCreateReviewRecomputesRating(t *testing.T) {
	svc, store := newTestService(1)
	ctx := context.Background()

	assert.Nil(t, store.titles[1])

	_, err := svc.CreateReview(ctx, 1, alice, 8, "great")
	require.NoError(t, err)
	require.NotNil(t, store.titles[1])
	assert.Equal(t, int32(8), *store.titles[1])

	review, err := svc.CreateReview(ctx, 1, bob, 5, "meh")
	require.NoError(t, err)
	// round(6.5) rounds half up
	assert.Equal(t, int32(7), *store.titles[1])

	require.NoError(t, svc.DeleteReview(ctx, 1, review.ID, bob))
	assert.Equal(t, int32(8), *store.titles[1])
}

func TestCreateReviewDuplicate(t *testing.T) {
	svc, _ := newTestService(1)
	ctx := context.Background()

	_, err := svc.CreateReview(ctx, 1, alice, 3, "first")
	require.NoError(t, err)
	_, err = svc.CreateReview(ctx, 1, alice, 9, "second")
	assert.ErrorIs(t, err, ErrReviewExists)
}

func TestCreateReviewValidation(t *testing.T) {
	svc, _ := newTestService(1)
	ctx := context.Background()

	_, err := svc.CreateReview(ctx, 1, alice, 0, "")
	assert.ErrorIs(t, err, ErrInvalidScore)
	_, err = svc.CreateReview(ctx, 1, alice, 11, "")
	assert.ErrorIs(t, err, ErrInvalidScore)
	_, err = svc.CreateReview(ctx, 99, alice, 5, "")
	assert.ErrorIs(t, err, ErrTitleNotFound)
	_, err = svc.CreateReview(ctx, 1, models.AnonymousUser, 5, "")
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestUpdateReviewPermissions(t *testing.T) {
	svc, store := newTestService(1)
	ctx := context.Background()

	review, err := svc.CreateReview(ctx, 1, alice, 8, "fine")
	require.NoError(t, err)

	score := int32(2)
	_, err = svc.UpdateReview(ctx, 1, review.ID, bob, &score, nil)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	updated, err := svc.UpdateReview(ctx, 1, review.ID, alice, &score, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(2), updated.Score)
	assert.Equal(t, int32(2), *store.titles[1])

	score = int32(10)
	_, err = svc.UpdateReview(ctx, 1, review.ID, moderator, &score, nil)
	assert.NoError(t, err)
	assert.Equal(t, int32(10), *store.titles[1])
}

func TestDeleteReviewCascadesComments(t *testing.T) {
	svc, store := newTestService(1)
	ctx := context.Background()

	review, err := svc.CreateReview(ctx, 1, alice, 8, "fine")
	require.NoError(t, err)
	_, err = svc.CreateComment(ctx, 1, review.ID, bob, "agreed")
	require.NoError(t, err)
	require.Len(t, store.comments, 1)

	require.NoError(t, svc.DeleteReview(ctx, 1, review.ID, alice))
	assert.Empty(t, store.comments)
	assert.Nil(t, store.titles[1])
}

func TestCommentPermissions(t *testing.T) {
	svc, _ := newTestService(1)
	ctx := context.Background()

	review, err := svc.CreateReview(ctx, 1, alice, 8, "fine")
	require.NoError(t, err)

	_, err = svc.CreateComment(ctx, 1, review.ID, models.AnonymousUser, "hi")
	assert.ErrorIs(t, err, ErrPermissionDenied)

	comment, err := svc.CreateComment(ctx, 1, review.ID, bob, "agreed")
	require.NoError(t, err)

	err = svc.DeleteComment(ctx, 1, review.ID, comment.ID, alice)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	// moderators may delete other users' comments
	assert.NoError(t, svc.DeleteComment(ctx, 1, review.ID, comment.ID, moderator))
}

func TestCommentUnderWrongTitle(t *testing.T) {
	svc, _ := newTestService(1, 2)
	ctx := context.Background()

	review, err := svc.CreateReview(ctx, 1, alice, 8, "fine")
	require.NoError(t, err)

	_, err = svc.CreateComment(ctx, 2, review.ID, bob, "lost")
	assert.ErrorIs(t, err, ErrReviewNotFound)
}
