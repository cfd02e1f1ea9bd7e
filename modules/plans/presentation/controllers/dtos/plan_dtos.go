package dtos

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/irrigodev/irrigationdesign/modules/plans/domain/aggregates/plan"
	"github.com/irrigodev/irrigationdesign/modules/plans/domain/entities/element"
	"github.com/irrigodev/irrigationdesign/modules/plans/services"
	"github.com/irrigodev/irrigationdesign/pkg/constants"
	"github.com/irrigodev/irrigationdesign/pkg/serrors"
)

type PlanResponse struct {
	ID           uuid.UUID           `json:"id"`
	Name         string              `json:"name"`
	Description  string              `json:"description"`
	Preferences  map[string]any      `json:"preferences"`
	History      []plan.HistoryEntry `json:"history"`
	CreatorID    uuid.UUID           `json:"creatorId"`
	FactoryID    *uuid.UUID          `json:"factoryId"`
	DealerID     *uuid.UUID          `json:"dealerId"`
	GrowerID     *uuid.UUID          `json:"growerId"`
	CreatedAt    time.Time           `json:"createdAt"`
	DateModified time.Time           `json:"dateModified"`
}

func ToPlanResponse(p plan.Plan) PlanResponse {
	return PlanResponse{
		ID:           p.ID(),
		Name:         p.Name(),
		Description:  p.Description(),
		Preferences:  p.Preferences(),
		History:      p.History(),
		CreatorID:    p.CreatorID(),
		FactoryID:    p.FactoryID(),
		DealerID:     p.DealerID(),
		GrowerID:     p.GrowerID(),
		CreatedAt:    p.CreatedAt(),
		DateModified: p.DateModified(),
	}
}

type ListResponse[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
}

type ShapeResponse struct {
	ID   uuid.UUID      `json:"id"`
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
	Area *float64       `json:"area"`
}

type ConnectionResponse struct {
	ID       uuid.UUID      `json:"id"`
	SourceID uuid.UUID      `json:"sourceId"`
	TargetID uuid.UUID      `json:"targetId"`
	Geometry map[string]any `json:"geometry"`
}

type AnnotationResponse struct {
	ID       uuid.UUID        `json:"id"`
	Text     string           `json:"text"`
	Position element.Position `json:"position"`
	Rotation float64          `json:"rotation"`
}

type SnapshotResponse struct {
	Plan        PlanResponse         `json:"plan"`
	Shapes      []ShapeResponse      `json:"shapes"`
	Connections []ConnectionResponse `json:"connections"`
	Annotations []AnnotationResponse `json:"annotations"`
}

func ToSnapshotResponse(snap *plan.Snapshot) SnapshotResponse {
	shapes := make([]ShapeResponse, 0, len(snap.Shapes))
	for _, s := range snap.Shapes {
		shapes = append(shapes, ShapeResponse{
			ID:   s.ID(),
			Type: s.Type().String(),
			Data: s.Data(),
			Area: s.Area(),
		})
	}
	connections := make([]ConnectionResponse, 0, len(snap.Connections))
	for _, c := range snap.Connections {
		connections = append(connections, ConnectionResponse{
			ID:       c.ID(),
			SourceID: c.SourceID(),
			TargetID: c.TargetID(),
			Geometry: c.Geometry(),
		})
	}
	annotations := make([]AnnotationResponse, 0, len(snap.Annotations))
	for _, a := range snap.Annotations {
		annotations = append(annotations, AnnotationResponse{
			ID:       a.ID(),
			Text:     a.Text(),
			Position: a.Position(),
			Rotation: a.Rotation(),
		})
	}
	return SnapshotResponse{
		Plan:        ToPlanResponse(snap.Plan),
		Shapes:      shapes,
		Connections: connections,
		Annotations: annotations,
	}
}

type CreatePlanRequest struct {
	Name        string         `json:"name" validate:"required,max=255"`
	Description string         `json:"description" validate:"max=2000"`
	Preferences map[string]any `json:"preferences"`
	FactoryID   *uuid.UUID     `json:"factoryId"`
	DealerID    *uuid.UUID     `json:"dealerId"`
	GrowerID    *uuid.UUID     `json:"growerId"`
}

func (d *CreatePlanRequest) ToDraft() (services.PlanDraft, error) {
	if err := constants.Validate.Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return services.PlanDraft{}, serrors.ProcessValidatorErrors(verrs)
		}
		return services.PlanDraft{}, err
	}
	return services.PlanDraft{
		Name:        d.Name,
		Description: d.Description,
		Preferences: d.Preferences,
		FactoryID:   d.FactoryID,
		DealerID:    d.DealerID,
		GrowerID:    d.GrowerID,
	}, nil
}

type UpdatePlanRequest struct {
	Name        *string        `json:"name" validate:"omitempty,max=255"`
	Description *string        `json:"description" validate:"omitempty,max=2000"`
	Preferences map[string]any `json:"preferences"`
	FactoryID   *uuid.UUID     `json:"factoryId"`
	DealerID    *uuid.UUID     `json:"dealerId"`
	GrowerID    *uuid.UUID     `json:"growerId"`

	// The Clear flags explicitly detach a hierarchy edge; a nil id alone means
	// "leave unchanged" under patch semantics.
	ClearFactory bool `json:"clearFactory"`
	ClearDealer  bool `json:"clearDealer"`
	ClearGrower  bool `json:"clearGrower"`
}

func (d *UpdatePlanRequest) ToPatch() (services.PlanPatch, error) {
	if err := constants.Validate.Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return services.PlanPatch{}, serrors.ProcessValidatorErrors(verrs)
		}
		return services.PlanPatch{}, err
	}
	return services.PlanPatch{
		Name:         d.Name,
		Description:  d.Description,
		Preferences:  d.Preferences,
		FactoryID:    d.FactoryID,
		DealerID:     d.DealerID,
		GrowerID:     d.GrowerID,
		ClearFactory: d.ClearFactory,
		ClearDealer:  d.ClearDealer,
		ClearGrower:  d.ClearGrower,
	}, nil
}

type ShapeUpsertRequest struct {
	ID   *uuid.UUID     `json:"id"`
	Type string         `json:"type" validate:"required"`
	Data map[string]any `json:"data"`
}

type ConnectionUpsertRequest struct {
	ID       *uuid.UUID     `json:"id"`
	SourceID uuid.UUID      `json:"sourceId" validate:"required"`
	TargetID uuid.UUID      `json:"targetId" validate:"required"`
	Geometry map[string]any `json:"geometry"`
}

type AnnotationUpsertRequest struct {
	ID       *uuid.UUID       `json:"id"`
	Text     string           `json:"text"`
	Position element.Position `json:"position"`
	Rotation float64          `json:"rotation"`
}

// SyncRequest is one full content batch. Preferences null leaves the stored
// document untouched.
type SyncRequest struct {
	Shapes           []ShapeUpsertRequest      `json:"shapes"`
	Connections      []ConnectionUpsertRequest `json:"connections"`
	Annotations      []AnnotationUpsertRequest `json:"annotations"`
	ElementsToDelete []uuid.UUID               `json:"elementsToDelete"`
	ClearExisting    bool                      `json:"clearExisting"`
	Preferences      map[string]any            `json:"preferences"`
}

func (d *SyncRequest) ToBatch() (services.SyncBatch, error) {
	batch := services.SyncBatch{
		DeleteIDs:     d.ElementsToDelete,
		ClearExisting: d.ClearExisting,
		Preferences:   d.Preferences,
	}
	errs := serrors.NewValidationErrors()
	for i, s := range d.Shapes {
		shapeType, err := element.ParseShapeType(s.Type)
		if err != nil {
			errs.Add(shapeField(i, "type"), "must be one of RECTANGLE, CIRCLE, HALF_CIRCLE, LINE, TEXT")
			continue
		}
		batch.Shapes = append(batch.Shapes, services.ShapeUpsert{
			ID:   s.ID,
			Type: shapeType,
			Data: s.Data,
		})
	}
	if errs.Any() {
		return services.SyncBatch{}, errs
	}
	for _, c := range d.Connections {
		batch.Connections = append(batch.Connections, services.ConnectionUpsert{
			ID:       c.ID,
			SourceID: c.SourceID,
			TargetID: c.TargetID,
			Geometry: c.Geometry,
		})
	}
	for _, a := range d.Annotations {
		batch.Annotations = append(batch.Annotations, services.AnnotationUpsert{
			ID:       a.ID,
			Text:     a.Text,
			Position: a.Position,
			Rotation: a.Rotation,
		})
	}
	return batch, nil
}

func shapeField(i int, field string) string {
	return fmt.Sprintf("shapes[%d].%s", i, field)
}
