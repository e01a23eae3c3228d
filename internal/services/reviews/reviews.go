package reviews

import (
	"context"
	"errors"
	"log/slog"

	"reviewhub/proj/internal/authz"
	"reviewhub/proj/internal/domain/filters"
	"reviewhub/proj/internal/domain/models"
	"reviewhub/proj/internal/storage"
)

type ReviewsStorage interface {
	Insert(ctx context.Context, titleID, authorID int64, score int32, text string) (*models.Review, error)
	Get(ctx context.Context, titleID, reviewID int64) (*models.Review, error)
	ListForTitle(ctx context.Context, titleID int64, f filters.Filters) ([]models.Review, int, error)
	Update(ctx context.Context, review *models.Review) (*models.Review, error)
	Delete(ctx context.Context, reviewID int64) error
}

type CommentsStorage interface {
	Insert(ctx context.Context, reviewID, authorID int64, text string) (*models.Comment, error)
	Get(ctx context.Context, reviewID, commentID int64) (*models.Comment, error)
	ListForReview(ctx context.Context, reviewID int64, f filters.Filters) ([]models.Comment, int, error)
	Update(ctx context.Context, comment *models.Comment) (*models.Comment, error)
	Delete(ctx context.Context, commentID int64) error
}

type ReviewService struct {
	log      *slog.Logger
	reviews  ReviewsStorage
	comments CommentsStorage
}

func New(log *slog.Logger, reviews ReviewsStorage, comments CommentsStorage) *ReviewService {
	return &ReviewService{
		log:      log,
		reviews:  reviews,
		comments: comments,
	}
}

// CreateReview persists the review and recomputes the title rating in one
// transaction. The one-review-per-(title, author) rule is the store's
// unique constraint, so a concurrent duplicate still fails cleanly.
func (s *ReviewService) CreateReview(ctx context.Context, titleID int64, actor *models.User, score int32, text string) (*models.Review, error) {
	const op = "reviews.ReviewService.CreateReview"
	log := s.log.With("op", op, "title_id", titleID, "author", actor.Username)
	if !authz.Allowed(actor, authz.ActionCreateReview, authz.Resource{}) {
		return nil, ErrPermissionDenied
	}
	if score < 1 || score > 10 {
		return nil, ErrInvalidScore
	}
	review, err := s.reviews.Insert(ctx, titleID, actor.ID, score, text)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrConflict):
			log.Info("duplicate review")
			return nil, ErrReviewExists
		case errors.Is(err, storage.ErrNotFound):
			return nil, ErrTitleNotFound
		}
		log.Error(err.Error())
		return nil, err
	}
	return review, nil
}

func (s *ReviewService) GetReview(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	review, err := s.reviews.Get(ctx, titleID, reviewID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return review, nil
}

func (s *ReviewService) ListReviews(ctx context.Context, titleID int64, f filters.Filters) ([]models.Review, int, error) {
	list, total, err := s.reviews.ListForTitle(ctx, titleID, f)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, 0, ErrTitleNotFound
		}
		return nil, 0, err
	}
	return list, total, nil
}

// UpdateReview rewrites score and/or text. Author-or-privileged only; a
// score change triggers rating recomputation in the storage transaction.
func (s *ReviewService) UpdateReview(ctx context.Context, titleID, reviewID int64, actor *models.User, score *int32, text *string) (*models.Review, error) {
	const op = "reviews.ReviewService.UpdateReview"
	review, err := s.GetReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if !authz.Allowed(actor, authz.ActionModifyReview, authz.Resource{AuthorID: review.AuthorID}) {
		return nil, ErrPermissionDenied
	}
	if score != nil {
		if *score < 1 || *score > 10 {
			return nil, ErrInvalidScore
		}
		review.Score = *score
	}
	if text != nil {
		review.Text = *text
	}
	updated, err := s.reviews.Update(ctx, review)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrReviewNotFound
		}
		s.log.With("op", op).Error(err.Error())
		return nil, err
	}
	return updated, nil
}

func (s *ReviewService) DeleteReview(ctx context.Context, titleID, reviewID int64, actor *models.User) error {
	const op = "reviews.ReviewService.DeleteReview"
	review, err := s.GetReview(ctx, titleID, reviewID)
	if err != nil {
		return err
	}
	if !authz.Allowed(actor, authz.ActionModifyReview, authz.Resource{AuthorID: review.AuthorID}) {
		return ErrPermissionDenied
	}
	if err := s.reviews.Delete(ctx, review.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrReviewNotFound
		}
		s.log.With("op", op).Error(err.Error())
		return err
	}
	return nil
}

// Comments never touch the title rating.

func (s *ReviewService) CreateComment(ctx context.Context, titleID, reviewID int64, actor *models.User, text string) (*models.Comment, error) {
	const op = "reviews.ReviewService.CreateComment"
	if !authz.Allowed(actor, authz.ActionCreateComment, authz.Resource{}) {
		return nil, ErrPermissionDenied
	}
	// the review must exist under the addressed title
	review, err := s.GetReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	comment, err := s.comments.Insert(ctx, review.ID, actor.ID, text)
	if err != nil {
		s.log.With("op", op).Error(err.Error())
		return nil, err
	}
	return comment, nil
}

func (s *ReviewService) GetComment(ctx context.Context, titleID, reviewID, commentID int64) (*models.Comment, error) {
	if _, err := s.GetReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	comment, err := s.comments.Get(ctx, reviewID, commentID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return comment, nil
}

func (s *ReviewService) ListComments(ctx context.Context, titleID, reviewID int64, f filters.Filters) ([]models.Comment, int, error) {
	if _, err := s.GetReview(ctx, titleID, reviewID); err != nil {
		return nil, 0, err
	}
	return s.comments.ListForReview(ctx, reviewID, f)
}

func (s *ReviewService) UpdateComment(ctx context.Context, titleID, reviewID, commentID int64, actor *models.User, text string) (*models.Comment, error) {
	const op = "reviews.ReviewService.UpdateComment"
	comment, err := s.GetComment(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if !authz.Allowed(actor, authz.ActionModifyComment, authz.Resource{AuthorID: comment.AuthorID}) {
		return nil, ErrPermissionDenied
	}
	comment.Text = text
	updated, err := s.comments.Update(ctx, comment)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrCommentNotFound
		}
		s.log.With("op", op).Error(err.Error())
		return nil, err
	}
	return updated, nil
}

func (s *ReviewService) DeleteComment(ctx context.Context, titleID, reviewID, commentID int64, actor *models.User) error {
	const op = "reviews.ReviewService.DeleteComment"
	comment, err := s.GetComment(ctx, titleID, reviewID, commentID)
	if err != nil {
		return err
	}
	if !authz.Allowed(actor, authz.ActionModifyComment, authz.Resource{AuthorID: comment.AuthorID}) {
		return ErrPermissionDenied
	}
	if err := s.comments.Delete(ctx, comment.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrCommentNotFound
		}
		s.log.With("op", op).Error(err.Error())
		return err
	}
	return nil
}
