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

type TitleModel struct {
	DB *pgxpool.Pool
}

// TitlesFilter narrows List results; zero values mean "any".
type TitlesFilter struct {
	CategorySlug string
	GenreSlug    string
	Name         string
	Year         int32
}

type titleRow struct {
	ID          int64
	Name        string
	Year        int32
	Description string
	Rating      *int32
	CategoryID  *int64
}

func (m *TitleModel) Insert(ctx context.Context, name string, year int32, description, categorySlug string, genreSlugs []string) (*models.Title, error) {
	tx, err := m.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var categoryID *int64
	if categorySlug != "" {
		var id int64
		if err := tx.QueryRow(ctx, "SELECT id FROM categories WHERE slug = $1", categorySlug).Scan(&id); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, storage.ErrNotFound
			}
			return nil, err
		}
		categoryID = &id
	}
	var titleID int64
	err = tx.QueryRow(
		ctx,
		"INSERT INTO titles (name, year, description, category_id) VALUES ($1, $2, $3, $4) RETURNING id",
		name, year, description, categoryID,
	).Scan(&titleID)
	if err != nil {
		return nil, err
	}
	if err := m.replaceGenres(ctx, tx, titleID, genreSlugs); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return m.Get(ctx, titleID)
}

func (m *TitleModel) replaceGenres(ctx context.Context, tx pgx.Tx, titleID int64, genreSlugs []string) error {
	if _, err := tx.Exec(ctx, "DELETE FROM title_genres WHERE title_id = $1", titleID); err != nil {
		return err
	}
	for _, slug := range genreSlugs {
		var genreID int64
		if err := tx.QueryRow(ctx, "SELECT id FROM genres WHERE slug = $1", slug).Scan(&genreID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return storage.ErrNotFound
			}
			return err
		}
		if _, err := tx.Exec(
			ctx,
			"INSERT INTO title_genres (title_id, genre_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
			titleID, genreID,
		); err != nil {
			return err
		}
	}
	return nil
}

func (m *TitleModel) Get(ctx context.Context, id int64) (*models.Title, error) {
	rows, _ := m.DB.Query(
		ctx,
		"SELECT id, name, year, description, rating, category_id FROM titles WHERE id = $1",
		id,
	)
	row, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[titleRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	titles, err := m.assemble(ctx, []titleRow{row})
	if err != nil {
		return nil, err
	}
	return &titles[0], nil
}

func (m *TitleModel) List(ctx context.Context, filter TitlesFilter, f filters.Filters) ([]models.Title, int, error) {
	query := fmt.Sprintf(`
	SELECT count(*) OVER(), t.id, t.name, t.year, t.description, t.rating, t.category_id
	FROM titles t
	LEFT JOIN categories c ON c.id = t.category_id
	WHERE ($1 = '' OR c.slug = $1)
	AND ($2 = '' OR EXISTS (
		SELECT 1 FROM title_genres tg JOIN genres g ON g.id = tg.genre_id
		WHERE tg.title_id = t.id AND g.slug = $2))
	AND (t.name ILIKE '%%' || $3 || '%%' OR $3 = '')
	AND ($4 = 0 OR t.year = $4)
	ORDER BY t.%s %s, t.id ASC
	LIMIT $5 OFFSET $6`, f.SortColumn(), f.SortDirection())
	rows, _ := m.DB.Query(ctx, query,
		filter.CategorySlug, filter.GenreSlug, filter.Name, filter.Year, f.Limit(), f.Offset())
	type row struct {
		Count int
		titleRow
	}
	outputRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[row])
	if err != nil {
		return nil, 0, err
	}
	if len(outputRows) == 0 {
		return []models.Title{}, 0, nil
	}
	baseRows := make([]titleRow, 0, len(outputRows))
	for _, r := range outputRows {
		baseRows = append(baseRows, r.titleRow)
	}
	titles, err := m.assemble(ctx, baseRows)
	if err != nil {
		return nil, 0, err
	}
	return titles, outputRows[0].Count, nil
}

// assemble attaches category and genre relations to the base title rows.
func (m *TitleModel) assemble(ctx context.Context, baseRows []titleRow) ([]models.Title, error) {
	ids := make([]int64, 0, len(baseRows))
	for _, r := range baseRows {
		ids = append(ids, r.ID)
	}
	type genreRow struct {
		TitleID int64
		ID      int64
		Name    string
		Slug    string
	}
	rows, _ := m.DB.Query(
		ctx,
		`SELECT tg.title_id, g.id, g.name, g.slug FROM title_genres tg
		JOIN genres g ON g.id = tg.genre_id WHERE tg.title_id = ANY($1) ORDER BY g.id`,
		ids,
	)
	genreRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[genreRow])
	if err != nil {
		return nil, err
	}
	genresByTitle := make(map[int64][]models.Genre)
	for _, g := range genreRows {
		genresByTitle[g.TitleID] = append(genresByTitle[g.TitleID], models.Genre{ID: g.ID, Name: g.Name, Slug: g.Slug})
	}
	categories := make(map[int64]*models.Category)
	titles := make([]models.Title, 0, len(baseRows))
	for _, r := range baseRows {
		title := models.Title{
			ID:          r.ID,
			Name:        r.Name,
			Year:        r.Year,
			Description: r.Description,
			Rating:      r.Rating,
			Genres:      genresByTitle[r.ID],
		}
		if title.Genres == nil {
			title.Genres = []models.Genre{}
		}
		if r.CategoryID != nil {
			category, ok := categories[*r.CategoryID]
			if !ok {
				rows, _ := m.DB.Query(ctx, "SELECT id, name, slug FROM categories WHERE id = $1", *r.CategoryID)
				c, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.Category])
				if err != nil {
					return nil, err
				}
				category = &c
				categories[*r.CategoryID] = category
			}
			title.Category = category
		}
		titles = append(titles, title)
	}
	return titles, nil
}

// Update rewrites the mutable title fields. A nil categorySlug keeps the
// current category, an empty one detaches it; nil genreSlugs keeps the
// current genre set.
func (m *TitleModel) Update(ctx context.Context, id int64, name string, year int32, description string, categorySlug *string, genreSlugs []string) (*models.Title, error) {
	tx, err := m.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if categorySlug != nil {
		var categoryID *int64
		if *categorySlug != "" {
			var cid int64
			if err := tx.QueryRow(ctx, "SELECT id FROM categories WHERE slug = $1", *categorySlug).Scan(&cid); err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return nil, storage.ErrNotFound
				}
				return nil, err
			}
			categoryID = &cid
		}
		if _, err := tx.Exec(ctx, "UPDATE titles SET category_id = $1 WHERE id = $2", categoryID, id); err != nil {
			return nil, err
		}
	}
	status, err := tx.Exec(
		ctx,
		"UPDATE titles SET name = $1, year = $2, description = $3 WHERE id = $4",
		name, year, description, id,
	)
	if err != nil {
		var pgxErr *pgconn.PgError
		if errors.As(err, &pgxErr) && pgxErr.Code == postgres.ErrConflictCode {
			return nil, storage.ErrConflict
		}
		return nil, err
	}
	if status.RowsAffected() == 0 {
		return nil, storage.ErrNotFound
	}
	if genreSlugs != nil {
		if err := m.replaceGenres(ctx, tx, id, genreSlugs); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return m.Get(ctx, id)
}

func (m *TitleModel) Delete(ctx context.Context, id int64) error {
	status, err := m.DB.Exec(ctx, "DELETE FROM titles WHERE id = $1", id)
	if err != nil {
		return err
	}
	if status.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
