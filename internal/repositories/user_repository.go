package repositories

import (
	"context"

	"github.com/jackc/pgx/v4"

	"github.com/nickbelling/FlexFlow/internal/models"
)

// UserRepository is the persistent store for FlexFlow users and their roles.
// Get* methods return (nil, nil) when no row matches.
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetRoles(ctx context.Context, userID int) ([]string, error)
	UpdatePasswordHash(ctx context.Context, userID int, passwordHash string) error

	EnsureRole(ctx context.Context, name string) (int, error)
	AssignRole(ctx context.Context, userID int, roleName string) error
}

type userRepository struct {
	db DB
}

func NewUserRepository(db DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, u *models.User) error {
	query := `
        INSERT INTO users (username, email, display_name, password_hash, email_confirmed, totp_secret, two_factor_enabled, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
        RETURNING id, created_at, updated_at
    `
	row := r.db.QueryRow(ctx, query,
		u.Username,
		u.Email,
		u.DisplayName,
		u.PasswordHash,
		u.EmailConfirmed,
		u.TOTPSecret,
		u.TwoFactorEnabled,
	)
	return row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
        SELECT id, username, email, display_name, password_hash, email_confirmed, totp_secret, two_factor_enabled, created_at, updated_at
        FROM users
        WHERE username = $1
    `
	return r.scanUser(r.db.QueryRow(ctx, query, username))
}

func (r *userRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `
        SELECT id, username, email, display_name, password_hash, email_confirmed, totp_secret, two_factor_enabled, created_at, updated_at
        FROM users
        WHERE id = $1
    `
	return r.scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *userRepository) scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.DisplayName,
		&u.PasswordHash,
		&u.EmailConfirmed,
		&u.TOTPSecret,
		&u.TwoFactorEnabled,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetRoles(ctx context.Context, userID int) ([]string, error) {
	query := `
        SELECT r.name
        FROM roles r
        JOIN user_roles ur ON ur.role_id = r.id
        WHERE ur.user_id = $1
        ORDER BY r.name
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		roles = append(roles, name)
	}
	return roles, rows.Err()
}

func (r *userRepository) UpdatePasswordHash(ctx context.Context, userID int, passwordHash string) error {
	query := `
        UPDATE users
        SET password_hash = $2,
            updated_at = NOW()
        WHERE id = $1
    `
	_, err := r.db.Exec(ctx, query, userID, passwordHash)
	return err
}

func (r *userRepository) EnsureRole(ctx context.Context, name string) (int, error) {
	query := `
        INSERT INTO roles (name)
        VALUES ($1)
        ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
        RETURNING id
    `
	var id int
	err := r.db.QueryRow(ctx, query, name).Scan(&id)
	return id, err
}

func (r *userRepository) AssignRole(ctx context.Context, userID int, roleName string) error {
	roleID, err := r.EnsureRole(ctx, roleName)
	if err != nil {
		return err
	}
	query := `
        INSERT INTO user_roles (user_id, role_id)
        VALUES ($1, $2)
        ON CONFLICT DO NOTHING
    `
	_, err = r.db.Exec(ctx, query, userID, roleID)
	return err
}
