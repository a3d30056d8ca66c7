package postgres

import (
	"context"
	"errors"

	"github.com/ferdousbhai/echo/internal/errs"
	"github.com/ferdousbhai/echo/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// UserRepo implements UserRepository using PostgreSQL.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

// Create inserts a new user row.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	const q = `
INSERT INTO users (id, username, pwd_hash, salt_auth)
VALUES ($1, $2, $3, $4)
RETURNING created_at`
	err := r.db.Pool.QueryRow(ctx, q, u.ID, u.Username, u.PwdHash, u.SaltAuth).Scan(&u.CreatedAt)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// GetByID selects a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	const q = `
SELECT id, username, pwd_hash, salt_auth, created_at
FROM users WHERE id=$1`
	return scanUser(r.db.Pool.QueryRow(ctx, q, id))
}

// GetByUsername selects a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	const q = `
SELECT id, username, pwd_hash, salt_auth, created_at
FROM users WHERE username=$1`
	return scanUser(r.db.Pool.QueryRow(ctx, q, username))
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Username, &u.PwdHash, &u.SaltAuth, &u.CreatedAt); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// GetMany selects the users whose IDs are in ids. Unknown IDs are skipped.
func (r *UserRepo) GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.User, error) {
	out := make(map[uuid.UUID]model.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	const q = `
SELECT id, username, created_at
FROM users WHERE id = ANY($1)`
	rows, err := r.db.Pool.Query(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var u model.User
		if err = rows.Scan(&u.ID, &u.Username, &u.CreatedAt); err != nil {
			return nil, err
		}
		out[u.ID] = u
	}
	return out, rows.Err()
}

// UpsertKeys replaces the user's key pair.
func (r *UserRepo) UpsertKeys(ctx context.Context, k model.UserKeys) error {
	const q = `
INSERT INTO user_keys (user_id, public_key, private_key)
VALUES ($1, $2, $3)
ON CONFLICT (user_id)
DO UPDATE SET public_key=EXCLUDED.public_key, private_key=EXCLUDED.private_key`
	_, err := r.db.Pool.Exec(ctx, q, k.UserID, k.PublicKey, k.PrivateKey)
	return err
}

// GetKeys selects the user's key pair.
func (r *UserRepo) GetKeys(ctx context.Context, userID uuid.UUID) (*model.UserKeys, error) {
	const q = `SELECT user_id, public_key, private_key FROM user_keys WHERE user_id=$1`
	var k model.UserKeys
	err := r.db.Pool.QueryRow(ctx, q, userID).Scan(&k.UserID, &k.PublicKey, &k.PrivateKey)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &k, nil
}
