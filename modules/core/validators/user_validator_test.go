package validators_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irrigodev/irrigationdesign/modules/core/domain/access"
	"github.com/irrigodev/irrigationdesign/modules/core/domain/aggregates/user"
	"github.com/irrigodev/irrigationdesign/modules/core/validators"
	"github.com/irrigodev/irrigationdesign/pkg/serrors"
)

type userStore struct {
	users map[uuid.UUID]user.User
}

func (s *userStore) GetPaginated(context.Context, *user.FindParams) ([]user.User, int64, error) {
	panic("not used")
}

func (s *userStore) GetByID(_ context.Context, id uuid.UUID) (user.User, error) {
	u, ok := s.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (s *userStore) GetByUsername(context.Context, string) (user.User, error) {
	panic("not used")
}

func (s *userStore) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := s.users[id]
	return ok, nil
}

func (s *userStore) Create(_ context.Context, u user.User) (user.User, error) {
	s.users[u.ID()] = u
	return u, nil
}

func (s *userStore) Update(_ context.Context, u user.User) (user.User, error) {
	s.users[u.ID()] = u
	return u, nil
}

func (s *userStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.users, id)
	return nil
}

func mkUser(id uuid.UUID, role access.Role, factoryID, dealerID *uuid.UUID) user.User {
	return user.Hydrate(
		id, "u-"+id.String()[:8], id.String()[:8]+"@example.com",
		"", "", "", "", "hash", role, factoryID, dealerID, false,
		time.Now(), time.Now(),
	)
}

func TestUserEdgeGuard(t *testing.T) {
	t.Parallel()

	factoryID := uuid.New()
	dealerID := uuid.New()
	growerID := uuid.New()

	store := &userStore{users: map[uuid.UUID]user.User{
		factoryID: mkUser(factoryID, access.RoleFactory, nil, nil),
		dealerID:  mkUser(dealerID, access.RoleDealer, &factoryID, nil),
		growerID:  mkUser(growerID, access.RoleGrower, nil, &dealerID),
	}}
	guard := validators.NewUserEdgeGuard(store)
	ctx := context.Background()

	t.Run("valid edges pass", func(t *testing.T) {
		assert.NoError(t, guard.ValidateEdges(ctx, store.users[dealerID]))
		assert.NoError(t, guard.ValidateEdges(ctx, store.users[growerID]))
		assert.NoError(t, guard.ValidateEdges(ctx, store.users[factoryID]))
	})

	t.Run("grower pointing at a grower is rejected", func(t *testing.T) {
		bad := mkUser(uuid.New(), access.RoleGrower, nil, &growerID)
		err := guard.ValidateEdges(ctx, bad)
		var verrs serrors.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Contains(t, verrs, "dealer")
	})

	t.Run("dealer pointing at a missing factory is rejected", func(t *testing.T) {
		missing := uuid.New()
		bad := mkUser(uuid.New(), access.RoleDealer, &missing, nil)
		err := guard.ValidateEdges(ctx, bad)
		var verrs serrors.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Contains(t, verrs, "factory")
	})

	t.Run("factory edge on a non-dealer is rejected", func(t *testing.T) {
		bad := mkUser(uuid.New(), access.RoleGrower, &factoryID, nil)
		err := guard.ValidateEdges(ctx, bad)
		var verrs serrors.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Contains(t, verrs, "factory")
	})

	t.Run("self reference is rejected", func(t *testing.T) {
		id := uuid.New()
		bad := mkUser(id, access.RoleDealer, &id, nil)
		err := guard.ValidateEdges(ctx, bad)
		var verrs serrors.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Contains(t, verrs, "factory")
	})
}
