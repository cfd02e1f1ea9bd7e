package services

import (
	"context"
	"errors"

	"github.com/irrigodev/irrigationdesign/modules/core/domain/access"
	"github.com/irrigodev/irrigationdesign/modules/core/domain/aggregates/user"
	"github.com/irrigodev/irrigationdesign/modules/plans/domain/aggregates/plan"
)

// planLineage flattens a plan's hierarchy references, chasing the indirect
// dealer→factory and grower→dealer→factory edges the access rules need.
// Dangling references degrade to absent edges instead of failing the read.
func planLineage(ctx context.Context, users user.Repository, p plan.Plan) (access.PlanLineage, error) {
	l := access.PlanLineage{
		CreatorID: p.CreatorID(),
		FactoryID: p.FactoryID(),
		DealerID:  p.DealerID(),
		GrowerID:  p.GrowerID(),
	}
	if p.DealerID() != nil {
		dealer, err := users.GetByID(ctx, *p.DealerID())
		if err != nil && !errors.Is(err, user.ErrNotFound) {
			return access.PlanLineage{}, err
		}
		if err == nil {
			l.DealerFactoryID = dealer.FactoryID()
		}
	}
	if p.GrowerID() != nil {
		grower, err := users.GetByID(ctx, *p.GrowerID())
		if err != nil && !errors.Is(err, user.ErrNotFound) {
			return access.PlanLineage{}, err
		}
		if err == nil && grower.DealerID() != nil {
			l.GrowerDealerID = grower.DealerID()
			growerDealer, err := users.GetByID(ctx, *grower.DealerID())
			if err != nil && !errors.Is(err, user.ErrNotFound) {
				return access.PlanLineage{}, err
			}
			if err == nil {
				l.GrowerDealerFactoryID = growerDealer.FactoryID()
			}
		}
	}
	return l, nil
}
