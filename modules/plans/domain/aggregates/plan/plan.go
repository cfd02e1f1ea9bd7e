package plan

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/irrigodev/irrigationdesign/modules/plans/domain/entities/element"
)

// HistoryEntry is one coarse-grained line of the plan's audit log.
type HistoryEntry struct {
	Action string    `json:"action"`
	UserID uuid.UUID `json:"userId"`
	At     time.Time `json:"at"`
}

const (
	HistoryCreated       = "created"
	HistoryUpdated       = "updated"
	HistoryContentSynced = "content_synced"
)

type Plan struct {
	id           uuid.UUID
	name         string
	description  string
	preferences  map[string]any
	history      []HistoryEntry
	creatorID    uuid.UUID
	factoryID    *uuid.UUID
	dealerID     *uuid.UUID
	growerID     *uuid.UUID
	createdAt    time.Time
	dateModified time.Time
}

func New(name, description string, creatorID uuid.UUID) Plan {
	return Plan{
		name:        strings.TrimSpace(name),
		description: description,
		creatorID:   creatorID,
	}
}

func Hydrate(
	id uuid.UUID,
	name string,
	description string,
	preferences map[string]any,
	history []HistoryEntry,
	creatorID uuid.UUID,
	factoryID *uuid.UUID,
	dealerID *uuid.UUID,
	growerID *uuid.UUID,
	createdAt time.Time,
	dateModified time.Time,
) Plan {
	return Plan{
		id:           id,
		name:         name,
		description:  description,
		preferences:  preferences,
		history:      history,
		creatorID:    creatorID,
		factoryID:    factoryID,
		dealerID:     dealerID,
		growerID:     growerID,
		createdAt:    createdAt,
		dateModified: dateModified,
	}
}

func (p Plan) ID() uuid.UUID               { return p.id }
func (p Plan) Name() string                { return p.name }
func (p Plan) Description() string         { return p.description }
func (p Plan) Preferences() map[string]any { return p.preferences }
func (p Plan) History() []HistoryEntry     { return p.history }
func (p Plan) CreatorID() uuid.UUID        { return p.creatorID }
func (p Plan) FactoryID() *uuid.UUID       { return p.factoryID }
func (p Plan) DealerID() *uuid.UUID        { return p.dealerID }
func (p Plan) GrowerID() *uuid.UUID        { return p.growerID }
func (p Plan) CreatedAt() time.Time        { return p.createdAt }
func (p Plan) DateModified() time.Time     { return p.dateModified }
func (p Plan) IsZero() bool                { return p.id == uuid.Nil && p.name == "" }

func (p Plan) WithName(name string) Plan {
	p.name = strings.TrimSpace(name)
	return p
}

func (p Plan) WithDescription(description string) Plan {
	p.description = description
	return p
}

func (p Plan) WithPreferences(preferences map[string]any) Plan {
	p.preferences = preferences
	return p
}

// WithAssignment replaces all three hierarchy references at once. Callers are
// expected to pass a set that already satisfies the chain invariants.
func (p Plan) WithAssignment(factoryID, dealerID, growerID *uuid.UUID) Plan {
	p.factoryID = factoryID
	p.dealerID = dealerID
	p.growerID = growerID
	return p
}

// Touched bumps the modification timestamp.
func (p Plan) Touched(now time.Time) Plan {
	p.dateModified = now
	return p
}

// WithHistoryEntry appends to the audit log without mutating the receiver's
// backing slice.
func (p Plan) WithHistoryEntry(entry HistoryEntry) Plan {
	history := make([]HistoryEntry, 0, len(p.history)+1)
	history = append(history, p.history...)
	p.history = append(history, entry)
	return p
}

// Snapshot is the full read model of a plan and its content, as returned by
// the batch synchronizer.
type Snapshot struct {
	Plan        Plan
	Shapes      []element.Shape
	Connections []element.Connection
	Annotations []element.Annotation
}
