package database

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"resume-forge/internal/models"

	"github.com/jackc/pgx/v5"
)

const userColumns = `
	id,
	email,
	password_hash,
	display_name,
	tier,
	monthly_count,
	lifetime_count,
	last_reset_at,
	preferences,
	created_at
`

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.DisplayName,
		&user.Tier,
		&user.MonthlyCount,
		&user.LifetimeCount,
		&user.LastResetAt,
		&user.Preferences,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

type CreateUserParams struct {
	Email        string
	PasswordHash string
	DisplayName  *string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (*models.User, error) {
	query := `
		INSERT INTO users (email, password_hash, display_name)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns

	row := q.db.QueryRow(ctx, query, strings.ToLower(arg.Email), arg.PasswordHash, arg.DisplayName)
	user, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

// GetUserByEmail looks a user up case-insensitively. Returns nil, nil when no
// user exists.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(q.db.QueryRow(ctx, query, strings.ToLower(email)))
}

func (q *Queries) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(q.db.QueryRow(ctx, query, id))
}

// UpdateUsage persists the ledger fields mutated by a quota check.
func (q *Queries) UpdateUsage(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET monthly_count = $2, lifetime_count = $3, last_reset_at = $4
		WHERE id = $1
	`
	_, err := q.db.Exec(ctx, query, user.ID, user.MonthlyCount, user.LifetimeCount, user.LastResetAt)
	return err
}

type UpdateProfileParams struct {
	DisplayName *string
	Preferences json.RawMessage
}

func (q *Queries) UpdateProfile(ctx context.Context, userID int64, arg UpdateProfileParams) (*models.User, error) {
	query := `
		UPDATE users
		SET display_name = COALESCE($2, display_name),
		    preferences  = COALESCE($3, preferences)
		WHERE id = $1
		RETURNING ` + userColumns

	var prefs any
	if arg.Preferences != nil {
		prefs = arg.Preferences
	}
	return scanUser(q.db.QueryRow(ctx, query, userID, arg.DisplayName, prefs))
}

func (q *Queries) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	query := `UPDATE users SET password_hash = $2 WHERE id = $1`
	_, err := q.db.Exec(ctx, query, userID, passwordHash)
	return err
}
