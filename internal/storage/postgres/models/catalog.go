package models

import (
	"context"
	"errors"
	"fmt"

	"reviewhub/proj/internal/domain/filters"
	"reviewhub/proj/internal/domain/models"
	"reviewhub/proj/internal/storage"
	"reviewhub/proj/internal/storage/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CategoryModel struct {
	DB *pgxpool.Pool
}

type GenreModel struct {
	DB *pgxpool.Pool
}

func insertSlugged(ctx context.Context, db *pgxpool.Pool, table, name, slug string) (int64, error) {
	var id int64
	err := db.QueryRow(
		ctx,
		fmt.Sprintf("INSERT INTO %s (name, slug) VALUES ($1, $2) RETURNING id", table),
		name, slug,
	).Scan(&id)
	if err != nil {
		var pgxErr *pgconn.PgError
		if errors.As(err, &pgxErr) && pgxErr.Code == postgres.ErrConflictCode {
			return 0, storage.ErrConflict
		}
		return 0, err
	}
	return id, nil
}

func listSlugged[T any](ctx context.Context, db *pgxpool.Pool, table, search string, f filters.Filters, build func(id int64, name, slug string) T) ([]T, int, error) {
	query := fmt.Sprintf(`
	SELECT count(*) OVER(), id, name, slug FROM %s
	WHERE (name ILIKE '%%' || $1 || '%%' OR $1 = '')
	ORDER BY %s %s, id ASC
	LIMIT $2 OFFSET $3`, table, f.SortColumn(), f.SortDirection())
	rows, _ := db.Query(ctx, query, search, f.Limit(), f.Offset())
	type row struct {
		Count int
		ID    int64
		Name  string
		Slug  string
	}
	outputRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[row])
	if err != nil {
		return nil, 0, err
	}
	items := make([]T, 0, len(outputRows))
	count := 0
	for _, r := range outputRows {
		count = r.Count
		items = append(items, build(r.ID, r.Name, r.Slug))
	}
	return items, count, nil
}

func deleteSlugged(ctx context.Context, db *pgxpool.Pool, table, slug string) error {
	status, err := db.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE slug = $1", table), slug)
	if err != nil {
		return err
	}
	if status.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (m *CategoryModel) Insert(ctx context.Context, name, slug string) (*models.Category, error) {
	id, err := insertSlugged(ctx, m.DB, "categories", name, slug)
	if err != nil {
		return nil, err
	}
	return &models.Category{ID: id, Name: name, Slug: slug}, nil
}

func (m *CategoryModel) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	rows, _ := m.DB.Query(ctx, "SELECT id, name, slug FROM categories WHERE slug = $1", slug)
	category, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Category])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (m *CategoryModel) List(ctx context.Context, search string, f filters.Filters) ([]models.Category, int, error) {
	return listSlugged(ctx, m.DB, "categories", search, f, func(id int64, name, slug string) models.Category {
		return models.Category{ID: id, Name: name, Slug: slug}
	})
}

// Delete removes the category; dependent titles keep existing with a null
// category via the ON DELETE SET NULL foreign key.
func (m *CategoryModel) Delete(ctx context.Context, slug string) error {
	return deleteSlugged(ctx, m.DB, "categories", slug)
}

func (m *GenreModel) Insert(ctx context.Context, name, slug string) (*models.Genre, error) {
	id, err := insertSlugged(ctx, m.DB, "genres", name, slug)
	if err != nil {
		return nil, err
	}
	return &models.Genre{ID: id, Name: name, Slug: slug}, nil
}

func (m *GenreModel) GetBySlug(ctx context.Context, slug string) (*models.Genre, error) {
	rows, _ := m.DB.Query(ctx, "SELECT id, name, slug FROM genres WHERE slug = $1", slug)
	genre, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Genre])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return &genre, nil
}

func (m *GenreModel) List(ctx context.Context, search string, f filters.Filters) ([]models.Genre, int, error) {
	return listSlugged(ctx, m.DB, "genres", search, f, func(id int64, name, slug string) models.Genre {
		return models.Genre{ID: id, Name: name, Slug: slug}
	})
}

// Delete removes the genre and its membership edges; titles survive.
func (m *GenreModel) Delete(ctx context.Context, slug string) error {
	return deleteSlugged(ctx, m.DB, "genres", slug)
}
