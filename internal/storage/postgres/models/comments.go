package models

import (
	"context"
	"errors"
	"fmt"

	"reviewhub/proj/internal/domain/filters"
	"reviewhub/proj/internal/domain/models"
	"reviewhub/proj/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CommentModel struct {
	DB *pgxpool.Pool
}

const commentColumns = `c.id, c.review_id, c.author_id, u.username AS author, c.text, c.pub_date`

func (m *CommentModel) Insert(ctx context.Context, reviewID, authorID int64, text string) (*models.Comment, error) {
	var commentID int64
	err := m.DB.QueryRow(
		ctx,
		"INSERT INTO comments (review_id, author_id, text) VALUES ($1, $2, $3) RETURNING id",
		reviewID, authorID, text,
	).Scan(&commentID)
	if err != nil {
		return nil, err
	}
	return m.Get(ctx, reviewID, commentID)
}

func (m *CommentModel) Get(ctx context.Context, reviewID, commentID int64) (*models.Comment, error) {
	rows, _ := m.DB.Query(
		ctx,
		"SELECT "+commentColumns+` FROM comments c JOIN users u ON u.id = c.author_id
		WHERE c.id = $1 AND c.review_id = $2`,
		commentID, reviewID,
	)
	comment, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Comment])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return &comment, nil
}

func (m *CommentModel) ListForReview(ctx context.Context, reviewID int64, f filters.Filters) ([]models.Comment, int, error) {
	query := fmt.Sprintf(`
	SELECT count(*) OVER(), %s FROM comments c JOIN users u ON u.id = c.author_id
	WHERE c.review_id = $1
	ORDER BY c.%s %s, c.id ASC
	LIMIT $2 OFFSET $3`, commentColumns, f.SortColumn(), f.SortDirection())
	rows, _ := m.DB.Query(ctx, query, reviewID, f.Limit(), f.Offset())
	type row struct {
		Count int
		models.Comment
	}
	outputRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[row])
	if err != nil {
		return nil, 0, err
	}
	if len(outputRows) == 0 {
		return []models.Comment{}, 0, nil
	}
	comments := make([]models.Comment, 0, len(outputRows))
	for _, r := range outputRows {
		comments = append(comments, r.Comment)
	}
	return comments, outputRows[0].Count, nil
}

func (m *CommentModel) Update(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	status, err := m.DB.Exec(
		ctx,
		"UPDATE comments SET text = $1 WHERE id = $2",
		comment.Text, comment.ID,
	)
	if err != nil {
		return nil, err
	}
	if status.RowsAffected() == 0 {
		return nil, storage.ErrNotFound
	}
	return m.Get(ctx, comment.ReviewID, comment.ID)
}

func (m *CommentModel) Delete(ctx context.Context, commentID int64) error {
	status, err := m.DB.Exec(ctx, "DELETE FROM comments WHERE id = $1", commentID)
	if err != nil {
		return err
	}
	if status.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
