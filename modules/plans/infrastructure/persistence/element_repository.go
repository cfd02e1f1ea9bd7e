package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/irrigodev/irrigationdesign/modules/plans/domain/entities/element"
	"github.com/irrigodev/irrigationdesign/modules/plans/infrastructure/persistence/models"
	"github.com/irrigodev/irrigationdesign/pkg/composables"
)

const (
	shapeSelectQuery = `
		SELECT id, plan_id, type, data, area
		FROM shapes`

	shapeUpsertQuery = `
		INSERT INTO shapes (id, plan_id, type, data, area)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			type = EXCLUDED.type,
			data = EXCLUDED.data,
			area = EXCLUDED.area
		WHERE shapes.plan_id = EXCLUDED.plan_id`

	connectionSelectQuery = `
		SELECT id, plan_id, source_id, target_id, geometry
		FROM connections`

	connectionUpsertQuery = `
		INSERT INTO connections (id, plan_id, source_id, target_id, geometry)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			source_id = EXCLUDED.source_id,
			target_id = EXCLUDED.target_id,
			geometry = EXCLUDED.geometry
		WHERE connections.plan_id = EXCLUDED.plan_id`

	annotationSelectQuery = `
		SELECT id, plan_id, text, position_x, position_y, rotation
		FROM annotations`

	annotationUpsertQuery = `
		INSERT INTO annotations (id, plan_id, text, position_x, position_y, rotation)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			text = EXCLUDED.text,
			position_x = EXCLUDED.position_x,
			position_y = EXCLUDED.position_y,
			rotation = EXCLUDED.rotation
		WHERE annotations.plan_id = EXCLUDED.plan_id`

	// Deletes are plan-scoped so a stray id can never reach across plans.
	shapeDeleteByIDsQuery      = `DELETE FROM shapes WHERE plan_id = $1 AND id = ANY($2)`
	connectionDeleteByIDsQuery = `DELETE FROM connections WHERE plan_id = $1 AND id = ANY($2)`
	annotationDeleteByIDsQuery = `DELETE FROM annotations WHERE plan_id = $1 AND id = ANY($2)`

	shapeDeleteByPlanQuery      = `DELETE FROM shapes WHERE plan_id = $1`
	connectionDeleteByPlanQuery = `DELETE FROM connections WHERE plan_id = $1`
	annotationDeleteByPlanQuery = `DELETE FROM annotations WHERE plan_id = $1`
)

type PgElementRepository struct{}

func NewElementRepository() element.Repository {
	return &PgElementRepository{}
}

func (g *PgElementRepository) ShapesByPlan(ctx context.Context, planID uuid.UUID) ([]element.Shape, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, shapeSelectQuery+" WHERE plan_id = $1 ORDER BY id", planID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query shapes")
	}
	defer rows.Close()

	shapes := make([]element.Shape, 0)
	for rows.Next() {
		var m models.Shape
		if err := rows.Scan(&m.ID, &m.PlanID, &m.Type, &m.Data, &m.Area); err != nil {
			return nil, errors.Wrap(err, "failed to scan shape")
		}
		s, err := toDomainShape(&m)
		if err != nil {
			return nil, err
		}
		shapes = append(shapes, s)
	}
	return shapes, rows.Err()
}

func (g *PgElementRepository) ConnectionsByPlan(ctx context.Context, planID uuid.UUID) ([]element.Connection, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, connectionSelectQuery+" WHERE plan_id = $1 ORDER BY id", planID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query connections")
	}
	defer rows.Close()

	connections := make([]element.Connection, 0)
	for rows.Next() {
		var m models.Connection
		if err := rows.Scan(&m.ID, &m.PlanID, &m.SourceID, &m.TargetID, &m.Geometry); err != nil {
			return nil, errors.Wrap(err, "failed to scan connection")
		}
		c, err := toDomainConnection(&m)
		if err != nil {
			return nil, err
		}
		connections = append(connections, c)
	}
	return connections, rows.Err()
}

func (g *PgElementRepository) AnnotationsByPlan(ctx context.Context, planID uuid.UUID) ([]element.Annotation, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, annotationSelectQuery+" WHERE plan_id = $1 ORDER BY id", planID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query annotations")
	}
	defer rows.Close()

	annotations := make([]element.Annotation, 0)
	for rows.Next() {
		var m models.Annotation
		if err := rows.Scan(&m.ID, &m.PlanID, &m.Text, &m.PositionX, &m.PositionY, &m.Rotation); err != nil {
			return nil, errors.Wrap(err, "failed to scan annotation")
		}
		annotations = append(annotations, toDomainAnnotation(&m))
	}
	return annotations, rows.Err()
}

func (g *PgElementRepository) GetShape(ctx context.Context, planID, id uuid.UUID) (element.Shape, bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return element.Shape{}, false, err
	}
	var m models.Shape
	row := tx.QueryRow(ctx, shapeSelectQuery+" WHERE plan_id = $1 AND id = $2", planID, id)
	if err := row.Scan(&m.ID, &m.PlanID, &m.Type, &m.Data, &m.Area); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return element.Shape{}, false, nil
		}
		return element.Shape{}, false, errors.Wrap(err, "failed to query shape")
	}
	s, err := toDomainShape(&m)
	if err != nil {
		return element.Shape{}, false, err
	}
	return s, true, nil
}

func (g *PgElementRepository) SaveShape(ctx context.Context, s element.Shape) (element.Shape, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return element.Shape{}, err
	}
	m, err := toDBShape(s)
	if err != nil {
		return element.Shape{}, err
	}
	if _, err := tx.Exec(ctx, shapeUpsertQuery, m.ID, m.PlanID, m.Type, m.Data, m.Area); err != nil {
		return element.Shape{}, errors.Wrap(err, "failed to upsert shape")
	}
	return s, nil
}

func (g *PgElementRepository) SaveConnection(ctx context.Context, c element.Connection) (element.Connection, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return element.Connection{}, err
	}
	m, err := toDBConnection(c)
	if err != nil {
		return element.Connection{}, err
	}
	if _, err := tx.Exec(ctx, connectionUpsertQuery, m.ID, m.PlanID, m.SourceID, m.TargetID, m.Geometry); err != nil {
		return element.Connection{}, errors.Wrap(err, "failed to upsert connection")
	}
	return c, nil
}

func (g *PgElementRepository) SaveAnnotation(ctx context.Context, a element.Annotation) (element.Annotation, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return element.Annotation{}, err
	}
	m := toDBAnnotation(a)
	if _, err := tx.Exec(ctx, annotationUpsertQuery, m.ID, m.PlanID, m.Text, m.PositionX, m.PositionY, m.Rotation); err != nil {
		return element.Annotation{}, errors.Wrap(err, "failed to upsert annotation")
	}
	return a, nil
}

func (g *PgElementRepository) DeleteByIDs(ctx context.Context, planID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	for _, q := range []string{
		connectionDeleteByIDsQuery,
		shapeDeleteByIDsQuery,
		annotationDeleteByIDsQuery,
	} {
		if _, err := tx.Exec(ctx, q, planID, ids); err != nil {
			return errors.Wrap(err, "failed to delete plan elements")
		}
	}
	return nil
}

func (g *PgElementRepository) DeleteAllByPlan(ctx context.Context, planID uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	for _, q := range []string{
		connectionDeleteByPlanQuery,
		shapeDeleteByPlanQuery,
		annotationDeleteByPlanQuery,
	} {
		if _, err := tx.Exec(ctx, q, planID); err != nil {
			return errors.Wrap(err, "failed to clear plan content")
		}
	}
	return nil
}
