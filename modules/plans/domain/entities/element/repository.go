package element

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists a plan's geometric content. Every method is scoped to
// one plan; ids belonging to other plans never match.
type Repository interface {
	ShapesByPlan(ctx context.Context, planID uuid.UUID) ([]Shape, error)
	ConnectionsByPlan(ctx context.Context, planID uuid.UUID) ([]Connection, error)
	AnnotationsByPlan(ctx context.Context, planID uuid.UUID) ([]Annotation, error)

	GetShape(ctx context.Context, planID, id uuid.UUID) (Shape, bool, error)

	SaveShape(ctx context.Context, s Shape) (Shape, error)
	SaveConnection(ctx context.Context, c Connection) (Connection, error)
	SaveAnnotation(ctx context.Context, a Annotation) (Annotation, error)

	// DeleteByIDs removes any shapes, connections or annotations of the plan
	// whose id is listed. Ids of other plans are ignored.
	DeleteByIDs(ctx context.Context, planID uuid.UUID, ids []uuid.UUID) error
	// DeleteAllByPlan wipes the plan's entire content.
	DeleteAllByPlan(ctx context.Context, planID uuid.UUID) error
}
