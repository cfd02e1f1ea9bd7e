package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irrigodev/irrigationdesign/modules/core/domain/access"
	"github.com/irrigodev/irrigationdesign/modules/plans/services"
	"github.com/irrigodev/irrigationdesign/pkg/serrors"
)

type guardFixture struct {
	guard     *services.AssignmentGuard
	factoryID uuid.UUID
	dealerID  uuid.UUID
	growerID  uuid.UUID
	users     *fakeUsers
}

// one factory → one dealer → one grower; tests add extra users as needed.
func newGuardFixture() guardFixture {
	factoryID := uuid.New()
	dealerID := uuid.New()
	growerID := uuid.New()

	users := newFakeUsers(
		mkUser(factoryID, access.RoleFactory, nil, nil),
		mkUser(dealerID, access.RoleDealer, &factoryID, nil),
		mkUser(growerID, access.RoleGrower, nil, &dealerID),
	)
	return guardFixture{
		guard:     services.NewAssignmentGuard(users),
		factoryID: factoryID,
		dealerID:  dealerID,
		growerID:  growerID,
		users:     users,
	}
}

func TestResolveCreate_DealerWithOwnGrower(t *testing.T) {
	t.Parallel()

	fx := newGuardFixture()
	dealer := fx.users.byID[fx.dealerID]

	out, err := fx.guard.ResolveCreate(context.Background(), dealer, services.Assignment{
		GrowerID: ptr(fx.growerID),
	})
	require.NoError(t, err)
	require.NotNil(t, out.DealerID)
	require.NotNil(t, out.FactoryID)
	require.NotNil(t, out.GrowerID)
	assert.Equal(t, fx.dealerID, *out.DealerID)
	assert.Equal(t, fx.factoryID, *out.FactoryID)
	assert.Equal(t, fx.growerID, *out.GrowerID)
}

func TestResolveCreate_DealerWithForeignGrower(t *testing.T) {
	t.Parallel()

	fx := newGuardFixture()
	otherDealerID := uuid.New()
	foreignGrowerID := uuid.New()
	fx.users.byID[otherDealerID] = mkUser(otherDealerID, access.RoleDealer, &fx.factoryID, nil)
	fx.users.byID[foreignGrowerID] = mkUser(foreignGrowerID, access.RoleGrower, nil, &otherDealerID)

	dealer := fx.users.byID[fx.dealerID]
	_, err := fx.guard.ResolveCreate(context.Background(), dealer, services.Assignment{
		GrowerID: ptr(foreignGrowerID),
	})

	var verrs serrors.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "grower")
}

func TestResolveCreate_DealerWithoutGrower(t *testing.T) {
	t.Parallel()

	fx := newGuardFixture()
	dealer := fx.users.byID[fx.dealerID]

	_, err := fx.guard.ResolveCreate(context.Background(), dealer, services.Assignment{})
	var verrs serrors.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "grower")
}

func TestResolveCreate_GrowerLineageIsForced(t *testing.T) {
	t.Parallel()

	fx := newGuardFixture()
	grower := fx.users.byID[fx.growerID]

	// Caller-declared references are ignored; the grower cannot reassign its
	// own lineage.
	bogus := uuid.New()
	out, err := fx.guard.ResolveCreate(context.Background(), grower, services.Assignment{
		FactoryID: ptr(bogus),
		DealerID:  ptr(bogus),
		GrowerID:  ptr(bogus),
	})
	require.NoError(t, err)
	require.NotNil(t, out.GrowerID)
	require.NotNil(t, out.DealerID)
	require.NotNil(t, out.FactoryID)
	assert.Equal(t, fx.growerID, *out.GrowerID)
	assert.Equal(t, fx.dealerID, *out.DealerID)
	assert.Equal(t, fx.factoryID, *out.FactoryID)
}

func TestResolveCreate_DetachedGrowerIsRejected(t *testing.T) {
	t.Parallel()

	fx := newGuardFixture()
	detachedID := uuid.New()
	fx.users.byID[detachedID] = mkUser(detachedID, access.RoleGrower, nil, nil)
	detached := fx.users.byID[detachedID]

	_, err := fx.guard.ResolveCreate(context.Background(), detached, services.Assignment{})
	var verrs serrors.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "dealer")
}

func TestResolveCreate_AdminDerivesChainFromGrower(t *testing.T) {
	t.Parallel()

	fx := newGuardFixture()
	adminID := uuid.New()
	fx.users.byID[adminID] = mkUser(adminID, access.RoleAdmin, nil, nil)
	admin := fx.users.byID[adminID]

	out, err := fx.guard.ResolveCreate(context.Background(), admin, services.Assignment{
		GrowerID: ptr(fx.growerID),
	})
	require.NoError(t, err)
	assert.Equal(t, fx.dealerID, *out.DealerID)
	assert.Equal(t, fx.factoryID, *out.FactoryID)
}

func TestResolveCreate_AdminRejectsMismatchedChain(t *testing.T) {
	t.Parallel()

	fx := newGuardFixture()
	adminID := uuid.New()
	otherDealerID := uuid.New()
	fx.users.byID[adminID] = mkUser(adminID, access.RoleAdmin, nil, nil)
	fx.users.byID[otherDealerID] = mkUser(otherDealerID, access.RoleDealer, &fx.factoryID, nil)
	admin := fx.users.byID[adminID]

	_, err := fx.guard.ResolveCreate(context.Background(), admin, services.Assignment{
		DealerID: ptr(otherDealerID),
		GrowerID: ptr(fx.growerID),
	})
	var verrs serrors.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "grower")
}

func TestResolveCreate_FactoryDefaultsToItself(t *testing.T) {
	t.Parallel()

	fx := newGuardFixture()
	factory := fx.users.byID[fx.factoryID]

	out, err := fx.guard.ResolveCreate(context.Background(), factory, services.Assignment{})
	require.NoError(t, err)
	require.NotNil(t, out.FactoryID)
	assert.Equal(t, fx.factoryID, *out.FactoryID)
	assert.Nil(t, out.DealerID)
	assert.Nil(t, out.GrowerID)
}

func TestResolveCreate_UnknownRoleIsDenied(t *testing.T) {
	t.Parallel()

	fx := newGuardFixture()
	strangerID := uuid.New()
	stranger := mkUser(strangerID, "MYSTERY", nil, nil)

	_, err := fx.guard.ResolveCreate(context.Background(), stranger, services.Assignment{})
	var base *serrors.BaseError
	require.ErrorAs(t, err, &base)
	assert.Equal(t, serrors.CodePermissionDenied, base.Code)
}

func TestResolveUpdate_ClearingDealerClearsGrower(t *testing.T) {
	t.Parallel()

	fx := newGuardFixture()
	adminID := uuid.New()
	fx.users.byID[adminID] = mkUser(adminID, access.RoleAdmin, nil, nil)
	admin := fx.users.byID[adminID]

	current := mkPlan(uuid.New(), adminID, ptr(fx.factoryID), ptr(fx.dealerID), ptr(fx.growerID))

	out, err := fx.guard.ResolveUpdate(context.Background(), admin, current, services.Assignment{
		FactoryID: ptr(fx.factoryID),
		DealerID:  nil,
		GrowerID:  ptr(fx.growerID),
	})
	require.NoError(t, err)
	assert.Nil(t, out.DealerID)
	assert.Nil(t, out.GrowerID, "a plan cannot keep a grower without a dealer")
}

func TestResolveUpdate_DealerMustBeCurrentDealer(t *testing.T) {
	t.Parallel()

	fx := newGuardFixture()
	otherDealerID := uuid.New()
	fx.users.byID[otherDealerID] = mkUser(otherDealerID, access.RoleDealer, &fx.factoryID, nil)
	otherDealer := fx.users.byID[otherDealerID]

	current := mkPlan(uuid.New(), fx.dealerID, ptr(fx.factoryID), ptr(fx.dealerID), ptr(fx.growerID))

	_, err := fx.guard.ResolveUpdate(context.Background(), otherDealer, current, services.Assignment{
		DealerID: ptr(otherDealerID),
	})
	var base *serrors.BaseError
	require.ErrorAs(t, err, &base)
	assert.Equal(t, serrors.CodePermissionDenied, base.Code)
}

func TestResolveUpdate_GrowerKeepsLineage(t *testing.T) {
	t.Parallel()

	fx := newGuardFixture()
	grower := fx.users.byID[fx.growerID]
	current := mkPlan(uuid.New(), fx.growerID, ptr(fx.factoryID), ptr(fx.dealerID), ptr(fx.growerID))

	out, err := fx.guard.ResolveUpdate(context.Background(), grower, current, services.Assignment{
		DealerID: nil,
		GrowerID: nil,
	})
	require.NoError(t, err)
	assert.Equal(t, fx.dealerID, *out.DealerID)
	assert.Equal(t, fx.growerID, *out.GrowerID)
}
