package plan

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/irrigodev/irrigationdesign/modules/core/domain/access"
)

var ErrNotFound = errors.New("plan not found")

type FindParams struct {
	Scope     access.PlanScope
	FactoryID *uuid.UUID
	DealerID  *uuid.UUID
	GrowerID  *uuid.UUID
	Limit     int
	Offset    int
}

type Repository interface {
	GetPaginated(ctx context.Context, params *FindParams) ([]Plan, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (Plan, error)
	Create(ctx context.Context, p Plan) (Plan, error)
	Update(ctx context.Context, p Plan) (Plan, error)
	// Delete removes the plan; owned shapes, connections and annotations go
	// with it.
	Delete(ctx context.Context, id uuid.UUID) error
}
