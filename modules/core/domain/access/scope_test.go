package access_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/irrigodev/irrigationdesign/modules/core/domain/access"
)

func ptr(id uuid.UUID) *uuid.UUID { return &id }

func TestParseRole(t *testing.T) {
	t.Parallel()

	for _, valid := range []string{"ADMIN", "FACTORY", "DEALER", "GROWER"} {
		r, err := access.ParseRole(valid)
		assert.NoError(t, err)
		assert.True(t, r.Known())
	}

	for _, invalid := range []string{"", "admin", "SUPERUSER", "CLIENT"} {
		_, err := access.ParseRole(invalid)
		assert.Error(t, err, invalid)
	}
}

func TestResolvePlanScope_FailsClosed(t *testing.T) {
	t.Parallel()

	s := access.ResolvePlanScope(access.Caller{ID: uuid.New(), Role: "MYSTERY"})
	assert.Equal(t, access.ScopeNone, s.Kind)
	assert.False(t, access.PlanVisible(s, access.PlanLineage{}))
}

func TestPlanVisible_Admin(t *testing.T) {
	t.Parallel()

	s := access.ResolvePlanScope(access.Caller{ID: uuid.New(), Role: access.RoleAdmin})
	assert.True(t, access.PlanVisible(s, access.PlanLineage{}))
	assert.True(t, access.PlanVisible(s, access.PlanLineage{GrowerID: ptr(uuid.New())}))
}

func TestPlanVisible_FactoryChain(t *testing.T) {
	t.Parallel()

	factory := uuid.New()
	s := access.ResolvePlanScope(access.Caller{ID: factory, Role: access.RoleFactory})

	assert.True(t, access.PlanVisible(s, access.PlanLineage{FactoryID: ptr(factory)}))
	assert.True(t, access.PlanVisible(s, access.PlanLineage{DealerFactoryID: ptr(factory)}))
	assert.True(t, access.PlanVisible(s, access.PlanLineage{GrowerDealerFactoryID: ptr(factory)}))

	other := uuid.New()
	assert.False(t, access.PlanVisible(s, access.PlanLineage{FactoryID: ptr(other)}))
	assert.False(t, access.PlanVisible(s, access.PlanLineage{}))
}

func TestPlanVisible_DealerAndGrowerOwnOnly(t *testing.T) {
	t.Parallel()

	dealer := uuid.New()
	grower := uuid.New()

	ds := access.ResolvePlanScope(access.Caller{ID: dealer, Role: access.RoleDealer})
	assert.True(t, access.PlanVisible(ds, access.PlanLineage{DealerID: ptr(dealer)}))
	assert.False(t, access.PlanVisible(ds, access.PlanLineage{DealerID: ptr(uuid.New())}))
	assert.False(t, access.PlanVisible(ds, access.PlanLineage{GrowerID: ptr(dealer)}))

	gs := access.ResolvePlanScope(access.Caller{ID: grower, Role: access.RoleGrower})
	assert.True(t, access.PlanVisible(gs, access.PlanLineage{GrowerID: ptr(grower)}))
	assert.False(t, access.PlanVisible(gs, access.PlanLineage{CreatorID: grower}))
}

func TestUserVisible(t *testing.T) {
	t.Parallel()

	factory := uuid.New()
	dealer := uuid.New()

	fs := access.ResolveUserScope(access.Caller{ID: factory, Role: access.RoleFactory})
	assert.True(t, access.UserVisible(fs, access.UserLineage{
		ID: uuid.New(), Role: access.RoleDealer, FactoryID: ptr(factory),
	}))
	assert.True(t, access.UserVisible(fs, access.UserLineage{
		ID: uuid.New(), Role: access.RoleGrower, DealerFactoryID: ptr(factory),
	}))
	// A grower directly pointing at the factory is not a valid edge and must
	// stay invisible.
	assert.False(t, access.UserVisible(fs, access.UserLineage{
		ID: uuid.New(), Role: access.RoleGrower, FactoryID: ptr(factory),
	}))

	ds := access.ResolveUserScope(access.Caller{ID: dealer, Role: access.RoleDealer})
	assert.True(t, access.UserVisible(ds, access.UserLineage{ID: uuid.New(), Role: access.RoleGrower, DealerID: ptr(dealer)}))
	assert.True(t, access.UserVisible(ds, access.UserLineage{ID: dealer, Role: access.RoleDealer}))
	assert.False(t, access.UserVisible(ds, access.UserLineage{ID: uuid.New(), Role: access.RoleGrower}))
}

func TestCanMutatePlan(t *testing.T) {
	t.Parallel()

	admin := access.Caller{ID: uuid.New(), Role: access.RoleAdmin}
	assert.True(t, access.CanMutatePlan(admin, access.PlanLineage{}))

	factory := uuid.New()
	fc := access.Caller{ID: factory, Role: access.RoleFactory}
	assert.True(t, access.CanMutatePlan(fc, access.PlanLineage{CreatorID: factory}))
	assert.True(t, access.CanMutatePlan(fc, access.PlanLineage{DealerFactoryID: ptr(factory)}))
	assert.False(t, access.CanMutatePlan(fc, access.PlanLineage{CreatorID: uuid.New()}))

	dealer := uuid.New()
	dc := access.Caller{ID: dealer, Role: access.RoleDealer}
	assert.True(t, access.CanMutatePlan(dc, access.PlanLineage{DealerID: ptr(dealer)}))
	// Authoring the plan is not enough once the plan's dealer is someone else.
	assert.False(t, access.CanMutatePlan(dc, access.PlanLineage{CreatorID: dealer, DealerID: ptr(uuid.New())}))

	grower := uuid.New()
	gc := access.Caller{ID: grower, Role: access.RoleGrower}
	assert.True(t, access.CanMutatePlan(gc, access.PlanLineage{GrowerID: ptr(grower)}))
	assert.False(t, access.CanMutatePlan(gc, access.PlanLineage{GrowerID: ptr(uuid.New())}))

	assert.False(t, access.CanMutatePlan(access.Caller{ID: uuid.New(), Role: "MYSTERY"}, access.PlanLineage{}))
}
