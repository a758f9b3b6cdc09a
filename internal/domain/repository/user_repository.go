package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"codeprep/internal/common"
	"codeprep/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type UserListFilter struct {
	Role   model.Role // empty = all roles
	Search string     // case-insensitive over first/last name, email, username
}

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByProviderID(ctx context.Context, providerID string) (*model.User, error)
	List(ctx context.Context, limit, offset int, filter UserListFilter) ([]model.User, int, error)
	// Upsert inserts or refreshes a provider-mirrored account keyed on
	// provider id. The role column is only written on insert.
	Upsert(ctx context.Context, user *model.User) error
	UpdateRole(ctx context.Context, id string, role model.Role) (*model.User, error)
	Delete(ctx context.Context, id string) error
}

type pgUserRepository struct {
	db *sql.DB
}

func NewPgUserRepository(db *sql.DB) UserRepository {
	return &pgUserRepository{db: db}
}

const userColumns = `id, provider_id, email, first_name, last_name, username, avatar_url, role, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(
		&user.ID, &user.ProviderID, &user.Email, &user.FirstName, &user.LastName,
		&user.Username, &user.AvatarURL, &user.Role, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *pgUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("pgUserRepository.FindByID: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) FindByProviderID(ctx context.Context, providerID string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE provider_id = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, providerID))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("pgUserRepository.FindByProviderID: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) List(ctx context.Context, limit, offset int, filter UserListFilter) ([]model.User, int, error) {
	var conditions []string
	var args []interface{}
	argID := 1

	if filter.Role != "" {
		conditions = append(conditions, fmt.Sprintf("role = $%d", argID))
		args = append(args, filter.Role)
		argID++
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d OR username ILIKE $%d)",
			argID, argID, argID, argID))
		args = append(args, "%"+filter.Search+"%")
		argID++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgUserRepository.List count: %w", err)
	}

	query := fmt.Sprintf(`SELECT `+userColumns+` FROM users`+whereClause+
		` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, argID, argID+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pgUserRepository.List query: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.ProviderID, &u.Email, &u.FirstName, &u.LastName,
			&u.Username, &u.AvatarURL, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("pgUserRepository.List scan: %w", err)
		}
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("pgUserRepository.List rows.Err: %w", err)
	}
	return users, total, nil
}

func (r *pgUserRepository) Upsert(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (id, provider_id, email, first_name, last_name, username, avatar_url, role)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          ON CONFLICT (provider_id) DO UPDATE SET
	            email = EXCLUDED.email,
	            first_name = EXCLUDED.first_name,
	            last_name = EXCLUDED.last_name,
	            username = EXCLUDED.username,
	            avatar_url = EXCLUDED.avatar_url,
	            updated_at = CURRENT_TIMESTAMP`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.ProviderID, user.Email, user.FirstName, user.LastName,
		user.Username, user.AvatarURL, user.Role)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			// The email unique constraint can still trip on racing
			// deliveries for distinct provider ids.
			return fmt.Errorf("user with given email already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgUserRepository.Upsert: %w", err)
	}
	return nil
}

func (r *pgUserRepository) UpdateRole(ctx context.Context, id string, role model.Role) (*model.User, error) {
	query := `UPDATE users SET role = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2
	          RETURNING ` + userColumns
	user, err := scanUser(r.db.QueryRowContext(ctx, query, role, id))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("pgUserRepository.UpdateRole: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgUserRepository.Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}
