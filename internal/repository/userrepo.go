// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/ferdousbhai/echo/internal/model"
	"github.com/gofrs/uuid/v5"
)

// UserRepository provides access to accounts and their key material.
type UserRepository interface {
	// Create inserts a new user.
	Create(ctx context.Context, u *model.User) error
	// GetByID loads a user by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// GetByUsername loads a user by username.
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// GetMany loads the users that exist among ids, keyed by ID.
	GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.User, error)
	// UpsertKeys creates or wholesale replaces a user's keys.
	UpsertKeys(ctx context.Context, k model.UserKeys) error
	// GetKeys loads a user's keys.
	GetKeys(ctx context.Context, userID uuid.UUID) (*model.UserKeys, error)
}
