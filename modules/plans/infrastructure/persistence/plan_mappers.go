package persistence

import (
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/irrigodev/irrigationdesign/modules/plans/domain/aggregates/plan"
	"github.com/irrigodev/irrigationdesign/modules/plans/domain/entities/element"
	"github.com/irrigodev/irrigationdesign/modules/plans/infrastructure/persistence/models"
)

func toDBPlan(p plan.Plan) (*models.Plan, error) {
	preferences, err := marshalJSONB(p.Preferences())
	if err != nil {
		return nil, errors.Wrap(err, "failed to serialize plan preferences")
	}
	history, err := marshalJSONB(p.History())
	if err != nil {
		return nil, errors.Wrap(err, "failed to serialize plan history")
	}
	return &models.Plan{
		ID:           p.ID(),
		Name:         p.Name(),
		Description:  p.Description(),
		Preferences:  preferences,
		History:      history,
		CreatorID:    p.CreatorID(),
		FactoryID:    p.FactoryID(),
		DealerID:     p.DealerID(),
		GrowerID:     p.GrowerID(),
		CreatedAt:    p.CreatedAt(),
		DateModified: p.DateModified(),
	}, nil
}

func toDomainPlan(m *models.Plan) (plan.Plan, error) {
	var preferences map[string]any
	if len(m.Preferences) > 0 {
		if err := json.Unmarshal(m.Preferences, &preferences); err != nil {
			return plan.Plan{}, errors.Wrapf(err, "corrupt preferences on plan %s", m.ID)
		}
	}
	var history []plan.HistoryEntry
	if len(m.History) > 0 {
		if err := json.Unmarshal(m.History, &history); err != nil {
			return plan.Plan{}, errors.Wrapf(err, "corrupt history on plan %s", m.ID)
		}
	}
	return plan.Hydrate(
		m.ID,
		m.Name,
		m.Description,
		preferences,
		history,
		m.CreatorID,
		m.FactoryID,
		m.DealerID,
		m.GrowerID,
		m.CreatedAt,
		m.DateModified,
	), nil
}

// marshalJSONB keeps nil documents as SQL NULL instead of the JSON literal
// "null".
func marshalJSONB(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func scanPlan(row pgx.Row) (plan.Plan, error) {
	var m models.Plan
	if err := row.Scan(
		&m.ID,
		&m.Name,
		&m.Description,
		&m.Preferences,
		&m.History,
		&m.CreatorID,
		&m.FactoryID,
		&m.DealerID,
		&m.GrowerID,
		&m.CreatedAt,
		&m.DateModified,
	); err != nil {
		return plan.Plan{}, err
	}
	return toDomainPlan(&m)
}

func scanPlans(rows pgx.Rows) ([]plan.Plan, error) {
	plans := make([]plan.Plan, 0)
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return plans, nil
}

func toDBShape(s element.Shape) (*models.Shape, error) {
	data, err := marshalJSONB(s.Data())
	if err != nil {
		return nil, errors.Wrap(err, "failed to serialize shape payload")
	}
	return &models.Shape{
		ID:     s.ID(),
		PlanID: s.PlanID(),
		Type:   s.Type().String(),
		Data:   data,
		Area:   s.Area(),
	}, nil
}

func toDomainShape(m *models.Shape) (element.Shape, error) {
	shapeType, err := element.ParseShapeType(m.Type)
	if err != nil {
		return element.Shape{}, errors.Wrapf(err, "corrupt shape %s", m.ID)
	}
	var data map[string]any
	if len(m.Data) > 0 {
		if err := json.Unmarshal(m.Data, &data); err != nil {
			return element.Shape{}, errors.Wrapf(err, "corrupt payload on shape %s", m.ID)
		}
	}
	return element.NewShape(m.ID, m.PlanID, shapeType, data, m.Area), nil
}

func toDBConnection(c element.Connection) (*models.Connection, error) {
	geometry, err := marshalJSONB(c.Geometry())
	if err != nil {
		return nil, errors.Wrap(err, "failed to serialize connection geometry")
	}
	return &models.Connection{
		ID:       c.ID(),
		PlanID:   c.PlanID(),
		SourceID: c.SourceID(),
		TargetID: c.TargetID(),
		Geometry: geometry,
	}, nil
}

func toDomainConnection(m *models.Connection) (element.Connection, error) {
	var geometry map[string]any
	if len(m.Geometry) > 0 {
		if err := json.Unmarshal(m.Geometry, &geometry); err != nil {
			return element.Connection{}, errors.Wrapf(err, "corrupt geometry on connection %s", m.ID)
		}
	}
	return element.NewConnection(m.ID, m.PlanID, m.SourceID, m.TargetID, geometry), nil
}

func toDBAnnotation(a element.Annotation) *models.Annotation {
	return &models.Annotation{
		ID:        a.ID(),
		PlanID:    a.PlanID(),
		Text:      a.Text(),
		PositionX: a.Position().X,
		PositionY: a.Position().Y,
		Rotation:  a.Rotation(),
	}
}

func toDomainAnnotation(m *models.Annotation) element.Annotation {
	return element.NewAnnotation(
		m.ID,
		m.PlanID,
		m.Text,
		element.Position{X: m.PositionX, Y: m.PositionY},
		m.Rotation,
	)
}
