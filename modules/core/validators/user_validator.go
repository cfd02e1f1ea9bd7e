package validators

import (
	"context"
	"errors"

	"github.com/irrigodev/irrigationdesign/modules/core/domain/access"
	"github.com/irrigodev/irrigationdesign/modules/core/domain/aggregates/user"
	"github.com/irrigodev/irrigationdesign/pkg/serrors"
)

// UserEdgeGuard validates the two typed hierarchy edges on a user record: a
// dealer's factory pointer must name a FACTORY user, a grower's dealer
// pointer must name a DEALER user. No other self-reference is valid.
type UserEdgeGuard struct {
	users user.Repository
}

func NewUserEdgeGuard(users user.Repository) *UserEdgeGuard {
	return &UserEdgeGuard{users: users}
}

func (g *UserEdgeGuard) ValidateEdges(ctx context.Context, u user.User) error {
	errs := serrors.NewValidationErrors()

	if u.FactoryID() != nil {
		switch {
		case u.Role() != access.RoleDealer:
			errs.Add("factory", "only a dealer may reference a factory")
		case *u.FactoryID() == u.ID():
			errs.Add("factory", "a user cannot reference itself")
		default:
			ref, err := g.users.GetByID(ctx, *u.FactoryID())
			switch {
			case errors.Is(err, user.ErrNotFound):
				errs.Add("factory", "referenced factory does not exist")
			case err != nil:
				return err
			case ref.Role() != access.RoleFactory:
				errs.Add("factory", "must reference a user with the FACTORY role")
			}
		}
	}

	if u.DealerID() != nil {
		switch {
		case u.Role() != access.RoleGrower:
			errs.Add("dealer", "only a grower may reference a dealer")
		case *u.DealerID() == u.ID():
			errs.Add("dealer", "a user cannot reference itself")
		default:
			ref, err := g.users.GetByID(ctx, *u.DealerID())
			switch {
			case errors.Is(err, user.ErrNotFound):
				errs.Add("dealer", "referenced dealer does not exist")
			case err != nil:
				return err
			case ref.Role() != access.RoleDealer:
				errs.Add("dealer", "must reference a user with the DEALER role")
			}
		}
	}

	if errs.Any() {
		return errs
	}
	return nil
}
