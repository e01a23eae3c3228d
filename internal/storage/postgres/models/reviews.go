package models

import (
	"context"
	"errors"
	"fmt"

	"reviewhub/proj/internal/domain/filters"
	"reviewhub/proj/internal/domain/models"
	"reviewhub/proj/internal/domain/rating"
	"reviewhub/proj/internal/storage"
	"reviewhub/proj/internal/storage/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReviewModel struct {
	DB *pgxpool.Pool
}

const reviewColumns = `r.id, r.title_id, r.author_id, u.username AS author, r.score, r.text, r.pub_date`

// lockTitle takes the row lock serializing all rating recomputations for
// the title. It doubles as the existence check.
func lockTitle(ctx context.Context, tx pgx.Tx, titleID int64) error {
	var id int64
	if err := tx.QueryRow(ctx, "SELECT id FROM titles WHERE id = $1 FOR UPDATE", titleID).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.ErrNotFound
		}
		return err
	}
	return nil
}

// recomputeRating rewrites titles.rating from the live review set. Must run
// inside the transaction that mutated the reviews, after lockTitle.
func recomputeRating(ctx context.Context, tx pgx.Tx, titleID int64) error {
	rows, _ := tx.Query(ctx, "SELECT score FROM reviews WHERE title_id = $1", titleID)
	scores, err := pgx.CollectRows(rows, pgx.RowTo[int32])
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, "UPDATE titles SET rating = $1 WHERE id = $2", rating.Compute(scores), titleID)
	return err
}

func (m *ReviewModel) Insert(ctx context.Context, titleID, authorID int64, score int32, text string) (*models.Review, error) {
	tx, err := m.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := lockTitle(ctx, tx, titleID); err != nil {
		return nil, err
	}
	var reviewID int64
	err = tx.QueryRow(
		ctx,
		"INSERT INTO reviews (title_id, author_id, score, text) VALUES ($1, $2, $3, $4) RETURNING id",
		titleID, authorID, score, text,
	).Scan(&reviewID)
	if err != nil {
		var pgxErr *pgconn.PgError
		if errors.As(err, &pgxErr) && pgxErr.Code == postgres.ErrConflictCode {
			return nil, storage.ErrConflict
		}
		return nil, err
	}
	if err := recomputeRating(ctx, tx, titleID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return m.Get(ctx, titleID, reviewID)
}

func (m *ReviewModel) Get(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	rows, _ := m.DB.Query(
		ctx,
		"SELECT "+reviewColumns+` FROM reviews r JOIN users u ON u.id = r.author_id
		WHERE r.id = $1 AND r.title_id = $2`,
		reviewID, titleID,
	)
	review, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Review])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return &review, nil
}

func (m *ReviewModel) GetByID(ctx context.Context, reviewID int64) (*models.Review, error) {
	rows, _ := m.DB.Query(
		ctx,
		"SELECT "+reviewColumns+" FROM reviews r JOIN users u ON u.id = r.author_id WHERE r.id = $1",
		reviewID,
	)
	review, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Review])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return &review, nil
}

func (m *ReviewModel) ListForTitle(ctx context.Context, titleID int64, f filters.Filters) ([]models.Review, int, error) {
	query := fmt.Sprintf(`
	SELECT count(*) OVER(), %s FROM reviews r JOIN users u ON u.id = r.author_id
	WHERE r.title_id = $1
	ORDER BY r.%s %s, r.id ASC
	LIMIT $2 OFFSET $3`, reviewColumns, f.SortColumn(), f.SortDirection())
	rows, _ := m.DB.Query(ctx, query, titleID, f.Limit(), f.Offset())
	type row struct {
		Count int
		models.Review
	}
	outputRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[row])
	if err != nil {
		return nil, 0, err
	}
	if len(outputRows) == 0 {
		// distinguish an empty page from a title that does not exist
		var id int64
		if err := m.DB.QueryRow(ctx, "SELECT id FROM titles WHERE id = $1", titleID).Scan(&id); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, 0, storage.ErrNotFound
			}
			return nil, 0, err
		}
		return []models.Review{}, 0, nil
	}
	reviews := make([]models.Review, 0, len(outputRows))
	for _, r := range outputRows {
		reviews = append(reviews, r.Review)
	}
	return reviews, outputRows[0].Count, nil
}

// Update rewrites score and text, then recomputes the title rating within
// the same locked transaction.
func (m *ReviewModel) Update(ctx context.Context, review *models.Review) (*models.Review, error) {
	tx, err := m.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := lockTitle(ctx, tx, review.TitleID); err != nil {
		return nil, err
	}
	status, err := tx.Exec(
		ctx,
		"UPDATE reviews SET score = $1, text = $2 WHERE id = $3",
		review.Score, review.Text, review.ID,
	)
	if err != nil {
		return nil, err
	}
	if status.RowsAffected() == 0 {
		return nil, storage.ErrNotFound
	}
	if err := recomputeRating(ctx, tx, review.TitleID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return m.Get(ctx, review.TitleID, review.ID)
}

// Delete removes the review and its comments (FK cascade) and recomputes
// the rating from the post-delete review set.
func (m *ReviewModel) Delete(ctx context.Context, reviewID int64) error {
	tx, err := m.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var titleID int64
	if err := tx.QueryRow(ctx, "SELECT title_id FROM reviews WHERE id = $1", reviewID).Scan(&titleID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.ErrNotFound
		}
		return err
	}
	if err := lockTitle(ctx, tx, titleID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, "DELETE FROM reviews WHERE id = $1", reviewID); err != nil {
		return err
	}
	if err := recomputeRating(ctx, tx, titleID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
