package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irrigodev/irrigationdesign/modules/core/domain/access"
	"github.com/irrigodev/irrigationdesign/modules/core/domain/aggregates/user"
	"github.com/irrigodev/irrigationdesign/modules/plans/domain/entities/element"
	"github.com/irrigodev/irrigationdesign/modules/plans/services"
	"github.com/irrigodev/irrigationdesign/pkg/eventbus"
	"github.com/irrigodev/irrigationdesign/pkg/serrors"
)

type syncFixture struct {
	sync     *services.SyncService
	plans    *fakePlans
	elements *fakeElements
	users    *fakeUsers
	planID   uuid.UUID
	grower   user.User
	dealer   user.User
	clock    time.Time
}

func newSyncFixture(t *testing.T) *syncFixture {
	t.Helper()

	factoryID := uuid.New()
	dealerID := uuid.New()
	growerID := uuid.New()
	users := newFakeUsers(
		mkUser(factoryID, access.RoleFactory, nil, nil),
		mkUser(dealerID, access.RoleDealer, &factoryID, nil),
		mkUser(growerID, access.RoleGrower, nil, &dealerID),
	)

	planID := uuid.New()
	plans := newFakePlans(mkPlan(planID, dealerID, &factoryID, &dealerID, &growerID))
	elements := newFakeElements()

	clock := time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)
	logger := logrus.New()
	sync := services.NewSyncService(
		plans, elements, users,
		eventbus.NewEventPublisher(logger), logger,
		services.WithTxRunner(fakeTxRunner(plans, elements)),
		services.WithClock(func() time.Time { return clock }),
	)
	return &syncFixture{
		sync:     sync,
		plans:    plans,
		elements: elements,
		users:    users,
		planID:   planID,
		grower:   users.byID[growerID],
		dealer:   users.byID[dealerID],
		clock:    clock,
	}
}

func rectangle(id *uuid.UUID) services.ShapeUpsert {
	return services.ShapeUpsert{
		ID:   id,
		Type: element.ShapeRectangle,
		Data: map[string]any{
			"bounds": []any{[]any{0.0, 0.0}, []any{4.0, 3.0}},
		},
	}
}

func TestSynchronize_InvalidShapeDiscardsWholeBatch(t *testing.T) {
	t.Parallel()

	fx := newSyncFixture(t)
	_, err := fx.sync.Synchronize(context.Background(), fx.grower, fx.planID, services.SyncBatch{
		Shapes: []services.ShapeUpsert{
			{Type: element.ShapeCircle, Data: map[string]any{"center": map[string]any{"x": 1.0, "y": 1.0}}},
			{
				Type: element.ShapeLine,
				Data: map[string]any{"points": []any{map[string]any{"x": 0.0, "y": 0.0}}},
			},
		},
	})

	var verrs serrors.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "shapes[0].radius")

	// The valid line in the same batch must not survive the rollback.
	shapes, serr := fx.elements.ShapesByPlan(context.Background(), fx.planID)
	require.NoError(t, serr)
	assert.Empty(t, shapes)
}

func TestSynchronize_ClearExistingReplacesContent(t *testing.T) {
	t.Parallel()

	fx := newSyncFixture(t)
	ctx := context.Background()

	// Seed two shapes directly, then sync with clear_existing and one new one.
	for range 2 {
		_, err := fx.elements.SaveShape(ctx, element.NewShape(uuid.New(), fx.planID, element.ShapeText,
			map[string]any{"position": map[string]any{"x": 0.0, "y": 0.0}, "content": "old"}, nil))
		require.NoError(t, err)
	}

	snap, err := fx.sync.Synchronize(ctx, fx.grower, fx.planID, services.SyncBatch{
		ClearExisting: true,
		Shapes:        []services.ShapeUpsert{rectangle(nil)},
	})
	require.NoError(t, err)
	require.Len(t, snap.Shapes, 1)
	assert.Equal(t, element.ShapeRectangle, snap.Shapes[0].Type())
	require.NotNil(t, snap.Shapes[0].Area())
	assert.InDelta(t, 12.0, *snap.Shapes[0].Area(), 1e-9)
}

func TestSynchronize_ForeignGrowerIsDenied(t *testing.T) {
	t.Parallel()

	fx := newSyncFixture(t)
	ctx := context.Background()
	strangerID := uuid.New()
	otherDealerID := uuid.New()
	fx.users.byID[otherDealerID] = mkUser(otherDealerID, access.RoleDealer, nil, nil)
	fx.users.byID[strangerID] = mkUser(strangerID, access.RoleGrower, nil, &otherDealerID)

	before := fx.plans.byID[fx.planID]
	_, err := fx.sync.Synchronize(ctx, fx.users.byID[strangerID], fx.planID, services.SyncBatch{
		Shapes: []services.ShapeUpsert{rectangle(nil)},
	})

	var base *serrors.BaseError
	require.ErrorAs(t, err, &base)
	assert.Equal(t, serrors.CodePermissionDenied, base.Code)

	// Denied means untouched: no shapes written, no timestamp bumped.
	shapes, serr := fx.elements.ShapesByPlan(ctx, fx.planID)
	require.NoError(t, serr)
	assert.Empty(t, shapes)
	assert.Equal(t, before.DateModified(), fx.plans.byID[fx.planID].DateModified())
}

func TestSynchronize_ReplayIsIdempotent(t *testing.T) {
	t.Parallel()

	fx := newSyncFixture(t)
	ctx := context.Background()
	shapeID := uuid.New()
	annID := uuid.New()
	batch := services.SyncBatch{
		Shapes: []services.ShapeUpsert{rectangle(&shapeID)},
		Annotations: []services.AnnotationUpsert{
			{ID: &annID, Text: "valve box", Position: element.Position{X: 1, Y: 2}},
		},
	}

	first, err := fx.sync.Synchronize(ctx, fx.dealer, fx.planID, batch)
	require.NoError(t, err)
	second, err := fx.sync.Synchronize(ctx, fx.dealer, fx.planID, batch)
	require.NoError(t, err)

	require.Len(t, second.Shapes, 1)
	require.Len(t, second.Annotations, 1)
	assert.Equal(t, first.Shapes[0].ID(), second.Shapes[0].ID())
	assert.Equal(t, annID, second.Annotations[0].ID())
}

func TestSynchronize_StaleShapeIDIsKept(t *testing.T) {
	t.Parallel()

	fx := newSyncFixture(t)

	// The client references an id the server never saw; the upsert keeps it so
	// a later replay of the same batch lands on the same row.
	staleID := uuid.New()
	snap, err := fx.sync.Synchronize(context.Background(), fx.dealer, fx.planID, services.SyncBatch{
		Shapes: []services.ShapeUpsert{rectangle(&staleID)},
	})
	require.NoError(t, err)
	require.Len(t, snap.Shapes, 1)
	assert.Equal(t, staleID, snap.Shapes[0].ID())
}

func TestSynchronize_CrossPlanConnectionRejected(t *testing.T) {
	t.Parallel()

	fx := newSyncFixture(t)
	ctx := context.Background()

	// A shape on a different plan is invisible to this plan's connections.
	otherPlanID := uuid.New()
	foreign, err := fx.elements.SaveShape(ctx, element.NewShape(uuid.New(), otherPlanID, element.ShapeRectangle,
		map[string]any{"bounds": []any{[]any{0.0, 0.0}, []any{1.0, 1.0}}}, nil))
	require.NoError(t, err)
	local, err := fx.elements.SaveShape(ctx, element.NewShape(uuid.New(), fx.planID, element.ShapeRectangle,
		map[string]any{"bounds": []any{[]any{0.0, 0.0}, []any{1.0, 1.0}}}, nil))
	require.NoError(t, err)

	_, err = fx.sync.Synchronize(ctx, fx.dealer, fx.planID, services.SyncBatch{
		Connections: []services.ConnectionUpsert{
			{SourceID: local.ID(), TargetID: foreign.ID()},
		},
	})

	var verrs serrors.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "connections[0].target")

	conns, cerr := fx.elements.ConnectionsByPlan(ctx, fx.planID)
	require.NoError(t, cerr)
	assert.Empty(t, conns)
}

func TestSynchronize_ForeignDeleteIDIsNoOp(t *testing.T) {
	t.Parallel()

	fx := newSyncFixture(t)
	ctx := context.Background()

	otherPlanID := uuid.New()
	foreign, err := fx.elements.SaveShape(ctx, element.NewShape(uuid.New(), otherPlanID, element.ShapeRectangle,
		map[string]any{"bounds": []any{[]any{0.0, 0.0}, []any{1.0, 1.0}}}, nil))
	require.NoError(t, err)

	_, err = fx.sync.Synchronize(ctx, fx.dealer, fx.planID, services.SyncBatch{
		DeleteIDs: []uuid.UUID{foreign.ID(), uuid.New()},
	})
	require.NoError(t, err)

	// The other plan's shape is still there.
	shapes, serr := fx.elements.ShapesByPlan(ctx, otherPlanID)
	require.NoError(t, serr)
	assert.Len(t, shapes, 1)
}

func TestSynchronize_TouchesPlanEvenWhenEmpty(t *testing.T) {
	t.Parallel()

	fx := newSyncFixture(t)

	snap, err := fx.sync.Synchronize(context.Background(), fx.grower, fx.planID, services.SyncBatch{})
	require.NoError(t, err)
	assert.Equal(t, fx.clock, snap.Plan.DateModified())

	history := snap.Plan.History()
	require.NotEmpty(t, history)
	assert.Equal(t, "content_synced", history[len(history)-1].Action)
}

func TestSynchronize_ReplacesPreferences(t *testing.T) {
	t.Parallel()

	fx := newSyncFixture(t)
	ctx := context.Background()

	first, err := fx.sync.Synchronize(ctx, fx.grower, fx.planID, services.SyncBatch{
		Preferences: map[string]any{"units": "metric", "grid": true},
	})
	require.NoError(t, err)
	assert.Equal(t, "metric", first.Plan.Preferences()["units"])

	// A later batch replaces the whole document rather than merging keys.
	second, err := fx.sync.Synchronize(ctx, fx.grower, fx.planID, services.SyncBatch{
		Preferences: map[string]any{"units": "imperial"},
	})
	require.NoError(t, err)
	assert.Equal(t, "imperial", second.Plan.Preferences()["units"])
	assert.NotContains(t, second.Plan.Preferences(), "grid")

	// And a nil document leaves the stored one alone.
	third, err := fx.sync.Synchronize(ctx, fx.grower, fx.planID, services.SyncBatch{})
	require.NoError(t, err)
	assert.Equal(t, "imperial", third.Plan.Preferences()["units"])
}

func TestSynchronize_UnknownPlan(t *testing.T) {
	t.Parallel()

	fx := newSyncFixture(t)
	_, err := fx.sync.Synchronize(context.Background(), fx.dealer, uuid.New(), services.SyncBatch{})

	var base *serrors.BaseError
	require.ErrorAs(t, err, &base)
	assert.Equal(t, serrors.CodeNotFound, base.Code)
}
