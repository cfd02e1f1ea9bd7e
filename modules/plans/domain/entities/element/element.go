package element

import (
	"fmt"

	"github.com/google/uuid"
)

// ShapeType tags the payload variant a shape carries.
type ShapeType string

const (
	ShapeRectangle  ShapeType = "RECTANGLE"
	ShapeCircle     ShapeType = "CIRCLE"
	ShapeHalfCircle ShapeType = "HALF_CIRCLE"
	ShapeLine       ShapeType = "LINE"
	ShapeText       ShapeType = "TEXT"
)

func ParseShapeType(v string) (ShapeType, error) {
	switch ShapeType(v) {
	case ShapeRectangle, ShapeCircle, ShapeHalfCircle, ShapeLine, ShapeText:
		return ShapeType(v), nil
	default:
		return "", fmt.Errorf("unknown shape type %q", v)
	}
}

func (t ShapeType) String() string { return string(t) }

// Closed reports whether the shape encloses an area.
func (t ShapeType) Closed() bool {
	switch t {
	case ShapeRectangle, ShapeCircle, ShapeHalfCircle:
		return true
	default:
		return false
	}
}

type Shape struct {
	id        uuid.UUID
	planID    uuid.UUID
	shapeType ShapeType
	data      map[string]any
	area      *float64
}

func NewShape(id, planID uuid.UUID, shapeType ShapeType, data map[string]any, area *float64) Shape {
	return Shape{
		id:        id,
		planID:    planID,
		shapeType: shapeType,
		data:      data,
		area:      area,
	}
}

func (s Shape) ID() uuid.UUID        { return s.id }
func (s Shape) PlanID() uuid.UUID    { return s.planID }
func (s Shape) Type() ShapeType      { return s.shapeType }
func (s Shape) Data() map[string]any { return s.data }
func (s Shape) Area() *float64       { return s.area }

// Connection is a directed link between two shapes of the same plan. The
// shapes are referenced, not owned.
type Connection struct {
	id       uuid.UUID
	planID   uuid.UUID
	sourceID uuid.UUID
	targetID uuid.UUID
	geometry map[string]any
}

func NewConnection(id, planID, sourceID, targetID uuid.UUID, geometry map[string]any) Connection {
	return Connection{
		id:       id,
		planID:   planID,
		sourceID: sourceID,
		targetID: targetID,
		geometry: geometry,
	}
}

func (c Connection) ID() uuid.UUID            { return c.id }
func (c Connection) PlanID() uuid.UUID        { return c.planID }
func (c Connection) SourceID() uuid.UUID      { return c.sourceID }
func (c Connection) TargetID() uuid.UUID      { return c.targetID }
func (c Connection) Geometry() map[string]any { return c.geometry }

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Annotation struct {
	id       uuid.UUID
	planID   uuid.UUID
	text     string
	position Position
	rotation float64
}

func NewAnnotation(id, planID uuid.UUID, text string, position Position, rotation float64) Annotation {
	return Annotation{
		id:       id,
		planID:   planID,
		text:     text,
		position: position,
		rotation: rotation,
	}
}

func (a Annotation) ID() uuid.UUID      { return a.id }
func (a Annotation) PlanID() uuid.UUID  { return a.planID }
func (a Annotation) Text() string       { return a.text }
func (a Annotation) Position() Position { return a.position }
func (a Annotation) Rotation() float64  { return a.rotation }
