package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/irrigodev/irrigationdesign/modules/core/domain/access"
	"github.com/irrigodev/irrigationdesign/modules/core/domain/aggregates/user"
	"github.com/irrigodev/irrigationdesign/modules/plans/domain/aggregates/plan"
	"github.com/irrigodev/irrigationdesign/modules/plans/domain/entities/element"
	"github.com/irrigodev/irrigationdesign/pkg/composables"
	"github.com/irrigodev/irrigationdesign/pkg/eventbus"
	"github.com/irrigodev/irrigationdesign/pkg/serrors"
)

type ListPlansParams struct {
	FactoryID *uuid.UUID
	DealerID  *uuid.UUID
	GrowerID  *uuid.UUID
	Limit     int
	Offset    int
}

// PlanDraft carries the caller-supplied fields of a new plan.
type PlanDraft struct {
	Name        string
	Description string
	Preferences map[string]any
	FactoryID   *uuid.UUID
	DealerID    *uuid.UUID
	GrowerID    *uuid.UUID
}

// PlanPatch is a partial update; nil means "leave unchanged", the Clear flags
// explicitly detach a hierarchy reference.
type PlanPatch struct {
	Name        *string
	Description *string
	Preferences map[string]any
	FactoryID   *uuid.UUID
	DealerID    *uuid.UUID
	GrowerID    *uuid.UUID

	ClearFactory bool
	ClearDealer  bool
	ClearGrower  bool
}

type PlanService struct {
	plans     plan.Repository
	elements  element.Repository
	users     user.Repository
	guard     *AssignmentGuard
	publisher eventbus.EventBus
	now       func() time.Time
}

func NewPlanService(
	plans plan.Repository,
	elements element.Repository,
	users user.Repository,
	guard *AssignmentGuard,
	publisher eventbus.EventBus,
) *PlanService {
	return &PlanService{
		plans:     plans,
		elements:  elements,
		users:     users,
		guard:     guard,
		publisher: publisher,
		now:       time.Now,
	}
}

// List returns the plans the caller may see, with explicit filters applied as
// a narrowing conjunction on top of the role scope.
func (s *PlanService) List(ctx context.Context, caller user.User, params ListPlansParams) ([]plan.Plan, int64, error) {
	return s.plans.GetPaginated(ctx, &plan.FindParams{
		Scope:     access.ResolvePlanScope(caller.Caller()),
		FactoryID: params.FactoryID,
		DealerID:  params.DealerID,
		GrowerID:  params.GrowerID,
		Limit:     params.Limit,
		Offset:    params.Offset,
	})
}

// GetByID loads a plan and enforces visibility. Out-of-scope plans read as
// not found.
func (s *PlanService) GetByID(ctx context.Context, caller user.User, id uuid.UUID) (plan.Plan, error) {
	p, err := s.plans.GetByID(ctx, id)
	if errors.Is(err, plan.ErrNotFound) {
		return plan.Plan{}, serrors.NewNotFoundError("plan")
	}
	if err != nil {
		return plan.Plan{}, err
	}
	lineage, err := planLineage(ctx, s.users, p)
	if err != nil {
		return plan.Plan{}, err
	}
	if !access.PlanVisible(access.ResolvePlanScope(caller.Caller()), lineage) {
		return plan.Plan{}, serrors.NewNotFoundError("plan")
	}
	return p, nil
}

// Snapshot returns the plan with its full content.
func (s *PlanService) Snapshot(ctx context.Context, caller user.User, id uuid.UUID) (*plan.Snapshot, error) {
	p, err := s.GetByID(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	shapes, err := s.elements.ShapesByPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	connections, err := s.elements.ConnectionsByPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	annotations, err := s.elements.AnnotationsByPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	return &plan.Snapshot{Plan: p, Shapes: shapes, Connections: connections, Annotations: annotations}, nil
}

func (s *PlanService) Create(ctx context.Context, caller user.User, draft PlanDraft) (plan.Plan, error) {
	if draft.Name == "" {
		return plan.Plan{}, serrors.NewFieldRequiredError("name")
	}
	assignment, err := s.guard.ResolveCreate(ctx, caller, Assignment{
		FactoryID: draft.FactoryID,
		DealerID:  draft.DealerID,
		GrowerID:  draft.GrowerID,
	})
	if err != nil {
		return plan.Plan{}, err
	}

	now := s.now()
	p := plan.New(draft.Name, draft.Description, caller.ID()).
		WithPreferences(draft.Preferences).
		WithAssignment(assignment.FactoryID, assignment.DealerID, assignment.GrowerID).
		Touched(now).
		WithHistoryEntry(plan.HistoryEntry{Action: plan.HistoryCreated, UserID: caller.ID(), At: now})

	var created plan.Plan
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		created, err = s.plans.Create(txCtx, p)
		return err
	})
	if err != nil {
		return plan.Plan{}, err
	}
	s.publisher.Publish(&plan.CreatedEvent{Result: created})
	return created, nil
}

// Update applies a patch. The plan is loaded without a visibility filter so
// that an unauthorized mutation reports a denial, not a missing plan.
func (s *PlanService) Update(ctx context.Context, caller user.User, id uuid.UUID, patch PlanPatch) (plan.Plan, error) {
	current, err := s.plans.GetByID(ctx, id)
	if errors.Is(err, plan.ErrNotFound) {
		return plan.Plan{}, serrors.NewNotFoundError("plan")
	}
	if err != nil {
		return plan.Plan{}, err
	}
	lineage, err := planLineage(ctx, s.users, current)
	if err != nil {
		return plan.Plan{}, err
	}
	if !access.CanMutatePlan(caller.Caller(), lineage) {
		return plan.Plan{}, serrors.NewPermissionDeniedError("you cannot modify this plan")
	}

	assignment, err := s.guard.ResolveUpdate(ctx, caller, current, mergeAssignment(current, patch))
	if err != nil {
		return plan.Plan{}, err
	}

	p := current
	if patch.Name != nil {
		if *patch.Name == "" {
			return plan.Plan{}, serrors.NewFieldRequiredError("name")
		}
		p = p.WithName(*patch.Name)
	}
	if patch.Description != nil {
		p = p.WithDescription(*patch.Description)
	}
	if patch.Preferences != nil {
		p = p.WithPreferences(patch.Preferences)
	}
	now := s.now()
	p = p.WithAssignment(assignment.FactoryID, assignment.DealerID, assignment.GrowerID).
		Touched(now).
		WithHistoryEntry(plan.HistoryEntry{Action: plan.HistoryUpdated, UserID: caller.ID(), At: now})

	var updated plan.Plan
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		updated, err = s.plans.Update(txCtx, p)
		return err
	})
	if err != nil {
		return plan.Plan{}, err
	}
	s.publisher.Publish(&plan.UpdatedEvent{Result: updated})
	return updated, nil
}

func (s *PlanService) Delete(ctx context.Context, caller user.User, id uuid.UUID) error {
	current, err := s.plans.GetByID(ctx, id)
	if errors.Is(err, plan.ErrNotFound) {
		return serrors.NewNotFoundError("plan")
	}
	if err != nil {
		return err
	}
	lineage, err := planLineage(ctx, s.users, current)
	if err != nil {
		return err
	}
	if !access.CanMutatePlan(caller.Caller(), lineage) {
		return serrors.NewPermissionDeniedError("you cannot delete this plan")
	}
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		return s.plans.Delete(txCtx, id)
	})
	if err != nil {
		return err
	}
	s.publisher.Publish(&plan.DeletedEvent{Result: current})
	return nil
}

// mergeAssignment resolves patch semantics for the three hierarchy fields:
// explicit ids replace, Clear flags detach, everything else carries over.
func mergeAssignment(current plan.Plan, patch PlanPatch) Assignment {
	out := Assignment{
		FactoryID: current.FactoryID(),
		DealerID:  current.DealerID(),
		GrowerID:  current.GrowerID(),
	}
	switch {
	case patch.ClearFactory:
		out.FactoryID = nil
	case patch.FactoryID != nil:
		out.FactoryID = patch.FactoryID
	}
	switch {
	case patch.ClearDealer:
		out.DealerID = nil
	case patch.DealerID != nil:
		out.DealerID = patch.DealerID
	}
	switch {
	case patch.ClearGrower:
		out.GrowerID = nil
	case patch.GrowerID != nil:
		out.GrowerID = patch.GrowerID
	}
	return out
}
