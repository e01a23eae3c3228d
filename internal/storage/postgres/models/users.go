package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"reviewhub/proj/internal/domain/filters"
	"reviewhub/proj/internal/domain/models"
	"reviewhub/proj/internal/storage"
	"reviewhub/proj/internal/storage/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, username, email, first_name, last_name, bio, role,
	is_superuser, is_active, code_hash, code_issued_at, created_at, updated_at`

type UserModel struct {
	DB *pgxpool.Pool
}

func (m *UserModel) Insert(ctx context.Context, user *models.User) (*models.User, error) {
	rows, _ := m.DB.Query(
		ctx,
		`INSERT INTO users (username, email, first_name, last_name, bio, role, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING `+userColumns,
		user.Username, user.Email, user.FirstName, user.LastName, user.Bio, user.Role, user.IsActive,
	)
	created, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.User])
	if err != nil {
		var pgxErr *pgconn.PgError
		if errors.As(err, &pgxErr) && pgxErr.Code == postgres.ErrConflictCode {
			return nil, storage.ErrConflict
		}
		return nil, err
	}
	return &created, nil
}

func (m *UserModel) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return m.getWhere(ctx, "username = $1", username)
}

func (m *UserModel) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.getWhere(ctx, "email = $1", email)
}

func (m *UserModel) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return m.getWhere(ctx, "id = $1", id)
}

func (m *UserModel) getWhere(ctx context.Context, cond string, arg any) (*models.User, error) {
	rows, _ := m.DB.Query(ctx, "SELECT "+userColumns+" FROM users WHERE "+cond, arg)
	user, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.User])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (m *UserModel) List(ctx context.Context, search string, f filters.Filters) ([]models.User, int, error) {
	query := fmt.Sprintf(`
	SELECT count(*) OVER(), %s FROM users
	WHERE (username ILIKE '%%' || $1 || '%%' OR $1 = '')
	ORDER BY %s %s, id ASC
	LIMIT $2 OFFSET $3`, userColumns, f.SortColumn(), f.SortDirection())
	rows, _ := m.DB.Query(ctx, query, search, f.Limit(), f.Offset())
	type row struct {
		Count int
		models.User
	}
	outputRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[row])
	if err != nil {
		return nil, 0, err
	}
	if len(outputRows) == 0 {
		return []models.User{}, 0, nil
	}
	users := make([]models.User, 0, len(outputRows))
	for _, r := range outputRows {
		users = append(users, r.User)
	}
	return users, outputRows[0].Count, nil
}

func (m *UserModel) Update(ctx context.Context, user *models.User) (*models.User, error) {
	rows, _ := m.DB.Query(
		ctx,
		`UPDATE users SET email = $1, first_name = $2, last_name = $3, bio = $4,
		role = $5, updated_at = now() WHERE id = $6 RETURNING `+userColumns,
		user.Email, user.FirstName, user.LastName, user.Bio, user.Role, user.ID,
	)
	updated, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[models.User])
	if err != nil {
		var pgxErr *pgconn.PgError
		switch {
		case errors.As(err, &pgxErr) && pgxErr.Code == postgres.ErrConflictCode:
			return nil, storage.ErrConflict
		case errors.Is(err, pgx.ErrNoRows):
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return &updated, nil
}

func (m *UserModel) Delete(ctx context.Context, username string) error {
	status, err := m.DB.Exec(ctx, "DELETE FROM users WHERE username = $1", username)
	if err != nil {
		return err
	}
	if status.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// SetConfirmationCode replaces the stored code hash, invalidating any
// previously issued code for the user.
func (m *UserModel) SetConfirmationCode(ctx context.Context, userID int64, codeHash []byte, issuedAt time.Time) error {
	status, err := m.DB.Exec(
		ctx,
		"UPDATE users SET code_hash = $1, code_issued_at = $2, updated_at = now() WHERE id = $3",
		codeHash, issuedAt, userID,
	)
	if err != nil {
		return err
	}
	if status.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Activate marks the user confirmed and clears the code hash so the code
// cannot be exchanged twice.
func (m *UserModel) Activate(ctx context.Context, userID int64) error {
	status, err := m.DB.Exec(
		ctx,
		`UPDATE users SET is_active = true, code_hash = NULL, code_issued_at = NULL,
		updated_at = now() WHERE id = $1`,
		userID,
	)
	if err != nil {
		return err
	}
	if status.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
