package models

import (
	"time"

	"github.com/google/uuid"
)

type Plan struct {
	ID           uuid.UUID
	Name         string
	Description  string
	Preferences  []byte // jsonb
	History      []byte // jsonb
	CreatorID    uuid.UUID
	FactoryID    *uuid.UUID
	DealerID     *uuid.UUID
	GrowerID     *uuid.UUID
	CreatedAt    time.Time
	DateModified time.Time
}

type Shape struct {
	ID     uuid.UUID
	PlanID uuid.UUID
	Type   string
	Data   []byte // jsonb
	Area   *float64
}

type Connection struct {
	ID       uuid.UUID
	PlanID   uuid.UUID
	SourceID uuid.UUID
	TargetID uuid.UUID
	Geometry []byte // jsonb
}

type Annotation struct {
	ID        uuid.UUID
	PlanID    uuid.UUID
	Text      string
	PositionX float64
	PositionY float64
	Rotation  float64
}
