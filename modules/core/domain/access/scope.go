package access

import "github.com/google/uuid"

// Caller is the resolved identity a request acts as: id, role and the
// hierarchy pointers the role carries. It is always passed explicitly, never
// read from ambient state.
type Caller struct {
	ID        uuid.UUID
	Role      Role
	FactoryID *uuid.UUID // set for dealers
	DealerID  *uuid.UUID // set for growers
}

// ScopeKind names the visibility band a caller gets over an entity set.
type ScopeKind int

const (
	// ScopeNone matches nothing. Unrecognized roles land here: visibility
	// fails closed, never open.
	ScopeNone ScopeKind = iota
	// ScopeAll matches everything (ADMIN).
	ScopeAll
	// ScopeFactory matches the caller's whole subtree: its dealers and the
	// growers under those dealers.
	ScopeFactory
	// ScopeDealer matches what the caller directly oversees, plus itself.
	ScopeDealer
	// ScopeOwn matches only entities the caller itself owns.
	ScopeOwn
)

// UserScope and PlanScope are pure values. Repositories render them into SQL
// predicates; the Visible functions below apply them to in-memory lineages.
type UserScope struct {
	Kind     ScopeKind
	CallerID uuid.UUID
}

type PlanScope struct {
	Kind     ScopeKind
	CallerID uuid.UUID
}

// ResolveUserScope maps a caller to its user-visibility band.
func ResolveUserScope(c Caller) UserScope {
	switch c.Role {
	case RoleAdmin:
		return UserScope{Kind: ScopeAll}
	case RoleFactory:
		return UserScope{Kind: ScopeFactory, CallerID: c.ID}
	case RoleDealer:
		return UserScope{Kind: ScopeDealer, CallerID: c.ID}
	case RoleGrower:
		return UserScope{Kind: ScopeOwn, CallerID: c.ID}
	default:
		return UserScope{Kind: ScopeNone}
	}
}

// ResolvePlanScope maps a caller to its plan-visibility band.
func ResolvePlanScope(c Caller) PlanScope {
	switch c.Role {
	case RoleAdmin:
		return PlanScope{Kind: ScopeAll}
	case RoleFactory:
		return PlanScope{Kind: ScopeFactory, CallerID: c.ID}
	case RoleDealer:
		return PlanScope{Kind: ScopeDealer, CallerID: c.ID}
	case RoleGrower:
		return PlanScope{Kind: ScopeOwn, CallerID: c.ID}
	default:
		return PlanScope{Kind: ScopeNone}
	}
}

// UserLineage is the flattened hierarchy context of a user row, with the one
// indirect edge (the grower's dealer's factory) pre-resolved by the caller.
type UserLineage struct {
	ID              uuid.UUID
	Role            Role
	FactoryID       *uuid.UUID
	DealerID        *uuid.UUID
	DealerFactoryID *uuid.UUID // factory of the user's dealer, when the user is a grower
}

// PlanLineage is the flattened hierarchy context of a plan, with the indirect
// chain edges pre-resolved.
type PlanLineage struct {
	CreatorID             uuid.UUID
	FactoryID             *uuid.UUID
	DealerID              *uuid.UUID
	GrowerID              *uuid.UUID
	DealerFactoryID       *uuid.UUID // factory of the plan's dealer
	GrowerDealerID        *uuid.UUID // dealer of the plan's grower
	GrowerDealerFactoryID *uuid.UUID // factory of that dealer
}

func ptrIs(p *uuid.UUID, id uuid.UUID) bool {
	return p != nil && *p == id
}

// UserVisible reports whether a user with the given lineage falls inside the
// scope.
func UserVisible(s UserScope, l UserLineage) bool {
	switch s.Kind {
	case ScopeAll:
		return true
	case ScopeFactory:
		if l.Role == RoleDealer && ptrIs(l.FactoryID, s.CallerID) {
			return true
		}
		return l.Role == RoleGrower && ptrIs(l.DealerFactoryID, s.CallerID)
	case ScopeDealer:
		return ptrIs(l.DealerID, s.CallerID) || l.ID == s.CallerID
	case ScopeOwn:
		return l.ID == s.CallerID
	default:
		return false
	}
}

// PlanVisible reports whether a plan with the given lineage falls inside the
// scope.
func PlanVisible(s PlanScope, l PlanLineage) bool {
	switch s.Kind {
	case ScopeAll:
		return true
	case ScopeFactory:
		return ptrIs(l.FactoryID, s.CallerID) ||
			ptrIs(l.DealerFactoryID, s.CallerID) ||
			ptrIs(l.GrowerDealerFactoryID, s.CallerID)
	case ScopeDealer:
		return ptrIs(l.DealerID, s.CallerID)
	case ScopeOwn:
		return ptrIs(l.GrowerID, s.CallerID)
	default:
		return false
	}
}

// CanMutatePlan decides write access to a plan. ADMIN always may; a FACTORY
// may when the plan sits anywhere in its subtree or it authored the plan; a
// DEALER only when it is the plan's current dealer; a GROWER only when it is
// the plan's current grower.
func CanMutatePlan(c Caller, l PlanLineage) bool {
	switch c.Role {
	case RoleAdmin:
		return true
	case RoleFactory:
		return l.CreatorID == c.ID || PlanVisible(PlanScope{Kind: ScopeFactory, CallerID: c.ID}, l)
	case RoleDealer:
		return ptrIs(l.DealerID, c.ID)
	case RoleGrower:
		return ptrIs(l.GrowerID, c.ID)
	default:
		return false
	}
}
