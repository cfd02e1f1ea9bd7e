package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/irrigodev/irrigationdesign/modules/core/domain/access"
	"github.com/irrigodev/irrigationdesign/modules/core/domain/aggregates/user"
	"github.com/irrigodev/irrigationdesign/modules/plans/domain/aggregates/plan"
	"github.com/irrigodev/irrigationdesign/pkg/serrors"
)

// Assignment is the fully resolved set of hierarchy references to persist on
// a plan. The guard either returns one that satisfies every chain invariant
// or a field-scoped validation error; never a partial result.
type Assignment struct {
	FactoryID *uuid.UUID
	DealerID  *uuid.UUID
	GrowerID  *uuid.UUID
}

type AssignmentGuard struct {
	users user.Repository
}

func NewAssignmentGuard(users user.Repository) *AssignmentGuard {
	return &AssignmentGuard{users: users}
}

// ResolveCreate validates and fills the hierarchy references for a new plan.
func (g *AssignmentGuard) ResolveCreate(ctx context.Context, caller user.User, draft Assignment) (Assignment, error) {
	var (
		out Assignment
		err error
	)
	switch caller.Role() {
	case access.RoleDealer:
		out, err = g.resolveForDealer(ctx, caller, draft)
	case access.RoleGrower:
		out, err = g.resolveForGrower(ctx, caller)
	case access.RoleFactory, access.RoleAdmin:
		out, err = g.resolveExplicit(ctx, caller, draft)
	default:
		return Assignment{}, serrors.NewPermissionDeniedError("your role cannot create plans")
	}
	if err != nil {
		return Assignment{}, err
	}
	return cascade(out), nil
}

// ResolveUpdate re-validates hierarchy references for an existing plan. The
// draft holds the proposed post-update values; a nil reference means cleared.
func (g *AssignmentGuard) ResolveUpdate(ctx context.Context, caller user.User, current plan.Plan, draft Assignment) (Assignment, error) {
	switch caller.Role() {
	case access.RoleDealer:
		if current.DealerID() == nil || *current.DealerID() != caller.ID() {
			return Assignment{}, serrors.NewPermissionDeniedError("you are not this plan's dealer")
		}
	case access.RoleGrower:
		if current.GrowerID() == nil || *current.GrowerID() != caller.ID() {
			return Assignment{}, serrors.NewPermissionDeniedError("you are not this plan's grower")
		}
	}

	var (
		out Assignment
		err error
	)
	switch caller.Role() {
	case access.RoleGrower:
		// A grower can never move a plan in the hierarchy.
		out = Assignment{
			FactoryID: current.FactoryID(),
			DealerID:  current.DealerID(),
			GrowerID:  current.GrowerID(),
		}
	case access.RoleDealer:
		out, err = g.resolveDealerUpdate(ctx, caller, draft)
	case access.RoleFactory, access.RoleAdmin:
		// Cascade before derivation: a draft that dropped its dealer must not
		// get the dealer re-derived from a leftover grower reference.
		out, err = g.resolveExplicit(ctx, caller, cascade(draft))
	default:
		return Assignment{}, serrors.NewPermissionDeniedError("your role cannot modify plans")
	}
	if err != nil {
		return Assignment{}, err
	}
	return cascade(out), nil
}

// cascade enforces that a plan cannot retain a grower without a dealer. This
// is applied unconditionally, not merely validated.
func cascade(a Assignment) Assignment {
	if a.DealerID == nil {
		a.GrowerID = nil
	}
	return a
}

func (g *AssignmentGuard) resolveForDealer(ctx context.Context, caller user.User, draft Assignment) (Assignment, error) {
	if caller.FactoryID() == nil {
		return Assignment{}, serrors.NewFieldError("factory", "your account is not attached to a factory")
	}
	if draft.GrowerID == nil {
		return Assignment{}, serrors.NewFieldRequiredError("grower")
	}
	if err := g.checkGrowerOfDealer(ctx, *draft.GrowerID, caller.ID()); err != nil {
		return Assignment{}, err
	}
	callerID := caller.ID()
	return Assignment{
		FactoryID: caller.FactoryID(),
		DealerID:  &callerID,
		GrowerID:  draft.GrowerID,
	}, nil
}

func (g *AssignmentGuard) resolveDealerUpdate(ctx context.Context, caller user.User, draft Assignment) (Assignment, error) {
	if caller.FactoryID() == nil {
		return Assignment{}, serrors.NewFieldError("factory", "your account is not attached to a factory")
	}
	if draft.GrowerID != nil {
		if err := g.checkGrowerOfDealer(ctx, *draft.GrowerID, caller.ID()); err != nil {
			return Assignment{}, err
		}
	}
	callerID := caller.ID()
	return Assignment{
		FactoryID: caller.FactoryID(),
		DealerID:  &callerID,
		GrowerID:  draft.GrowerID,
	}, nil
}

func (g *AssignmentGuard) checkGrowerOfDealer(ctx context.Context, growerID, dealerID uuid.UUID) error {
	grower, err := g.users.GetByID(ctx, growerID)
	if errors.Is(err, user.ErrNotFound) {
		return serrors.NewFieldError("grower", "referenced grower does not exist")
	}
	if err != nil {
		return err
	}
	if grower.Role() != access.RoleGrower {
		return serrors.NewFieldError("grower", "must reference a user with the GROWER role")
	}
	if grower.DealerID() == nil || *grower.DealerID() != dealerID {
		return serrors.NewFieldError("grower", "grower is not assigned to you")
	}
	return nil
}

func (g *AssignmentGuard) resolveForGrower(ctx context.Context, caller user.User) (Assignment, error) {
	// A detached grower would produce a plan it could never see again, so the
	// chain is required up front.
	if caller.DealerID() == nil {
		return Assignment{}, serrors.NewFieldError("dealer", "your account is not attached to a dealer")
	}
	dealer, err := g.users.GetByID(ctx, *caller.DealerID())
	if errors.Is(err, user.ErrNotFound) {
		return Assignment{}, serrors.NewFieldError("dealer", "your dealer no longer exists")
	}
	if err != nil {
		return Assignment{}, err
	}
	if dealer.FactoryID() == nil {
		return Assignment{}, serrors.NewFieldError("factory", "your dealer is not attached to a factory")
	}
	callerID := caller.ID()
	return Assignment{
		FactoryID: dealer.FactoryID(),
		DealerID:  caller.DealerID(),
		GrowerID:  &callerID,
	}, nil
}

// resolveExplicit accepts caller-supplied references, derives the missing
// links up the chain and verifies every edge before accepting.
func (g *AssignmentGuard) resolveExplicit(ctx context.Context, caller user.User, draft Assignment) (Assignment, error) {
	out := draft

	if out.GrowerID != nil {
		grower, err := g.users.GetByID(ctx, *out.GrowerID)
		if errors.Is(err, user.ErrNotFound) {
			return Assignment{}, serrors.NewFieldError("grower", "referenced grower does not exist")
		}
		if err != nil {
			return Assignment{}, err
		}
		if grower.Role() != access.RoleGrower {
			return Assignment{}, serrors.NewFieldError("grower", "must reference a user with the GROWER role")
		}
		switch {
		case grower.DealerID() == nil:
			return Assignment{}, serrors.NewFieldError("grower", "grower has no dealer assigned")
		case out.DealerID == nil:
			out.DealerID = grower.DealerID()
		case *out.DealerID != *grower.DealerID():
			return Assignment{}, serrors.NewFieldError("grower", "grower does not belong to the given dealer")
		}
	}

	if out.DealerID != nil {
		dealer, err := g.users.GetByID(ctx, *out.DealerID)
		if errors.Is(err, user.ErrNotFound) {
			return Assignment{}, serrors.NewFieldError("dealer", "referenced dealer does not exist")
		}
		if err != nil {
			return Assignment{}, err
		}
		if dealer.Role() != access.RoleDealer {
			return Assignment{}, serrors.NewFieldError("dealer", "must reference a user with the DEALER role")
		}
		switch {
		case dealer.FactoryID() == nil:
			return Assignment{}, serrors.NewFieldError("dealer", "dealer has no factory assigned")
		case out.FactoryID == nil:
			out.FactoryID = dealer.FactoryID()
		case *out.FactoryID != *dealer.FactoryID():
			return Assignment{}, serrors.NewFieldError("dealer", "dealer does not belong to the given factory")
		}
	}

	if out.FactoryID != nil {
		factory, err := g.users.GetByID(ctx, *out.FactoryID)
		if errors.Is(err, user.ErrNotFound) {
			return Assignment{}, serrors.NewFieldError("factory", "referenced factory does not exist")
		}
		if err != nil {
			return Assignment{}, err
		}
		if factory.Role() != access.RoleFactory {
			return Assignment{}, serrors.NewFieldError("factory", "must reference a user with the FACTORY role")
		}
	}

	// A factory authoring an unattached plan keeps it under itself.
	if caller.Role() == access.RoleFactory && out.FactoryID == nil {
		callerID := caller.ID()
		out.FactoryID = &callerID
	}

	return out, nil
}
