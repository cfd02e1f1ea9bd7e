package user

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/irrigodev/irrigationdesign/modules/core/domain/access"
)

// ErrNotFound is returned by repositories when no row matches. Services map
// it onto the API-facing not-found error.
var ErrNotFound = errors.New("user not found")

type FindParams struct {
	Scope     access.UserScope
	Role      *access.Role
	FactoryID *uuid.UUID
	DealerID  *uuid.UUID
	Search    string
	Limit     int
	Offset    int
}

type Repository interface {
	GetPaginated(ctx context.Context, params *FindParams) ([]User, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Create(ctx context.Context, u User) (User, error)
	Update(ctx context.Context, u User) (User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
