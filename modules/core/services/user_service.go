package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/irrigodev/irrigationdesign/modules/core/domain/access"
	"github.com/irrigodev/irrigationdesign/modules/core/domain/aggregates/user"
	"github.com/irrigodev/irrigationdesign/modules/core/validators"
	"github.com/irrigodev/irrigationdesign/pkg/composables"
	"github.com/irrigodev/irrigationdesign/pkg/eventbus"
	"github.com/irrigodev/irrigationdesign/pkg/serrors"
)

type ListUsersParams struct {
	Role      *access.Role
	FactoryID *uuid.UUID
	DealerID  *uuid.UUID
	Search    string
	Limit     int
	Offset    int
}

type UserService struct {
	repo      user.Repository
	edgeGuard *validators.UserEdgeGuard
	publisher eventbus.EventBus
}

func NewUserService(repo user.Repository, edgeGuard *validators.UserEdgeGuard, publisher eventbus.EventBus) *UserService {
	return &UserService{
		repo:      repo,
		edgeGuard: edgeGuard,
		publisher: publisher,
	}
}

// List returns the users the caller may see. Explicit filters narrow the
// scoped set, never widen it.
func (s *UserService) List(ctx context.Context, caller user.User, params ListUsersParams) ([]user.User, int64, error) {
	return s.repo.GetPaginated(ctx, &user.FindParams{
		Scope:     access.ResolveUserScope(caller.Caller()),
		Role:      params.Role,
		FactoryID: params.FactoryID,
		DealerID:  params.DealerID,
		Search:    params.Search,
		Limit:     params.Limit,
		Offset:    params.Offset,
	})
}

// Dealers lists the dealers visible to the caller.
func (s *UserService) Dealers(ctx context.Context, caller user.User, limit, offset int) ([]user.User, int64, error) {
	role := access.RoleDealer
	return s.List(ctx, caller, ListUsersParams{Role: &role, Limit: limit, Offset: offset})
}

// GetByID loads a user and checks visibility. Out-of-scope targets read as
// not found, not as forbidden, so existence never leaks across the hierarchy.
func (s *UserService) GetByID(ctx context.Context, caller user.User, id uuid.UUID) (user.User, error) {
	target, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, user.ErrNotFound) {
		return user.User{}, serrors.NewNotFoundError("user")
	}
	if err != nil {
		return user.User{}, err
	}
	lineage, err := s.lineageOf(ctx, target)
	if err != nil {
		return user.User{}, err
	}
	if !access.UserVisible(access.ResolveUserScope(caller.Caller()), lineage) {
		return user.User{}, serrors.NewNotFoundError("user")
	}
	return target, nil
}

// canManage decides create/update/delete rights over a target user: ADMIN
// manages everyone, a FACTORY manages its own dealers, a DEALER its own
// growers. Everything else is denied.
func canManage(caller user.User, targetRole access.Role, factoryID, dealerID *uuid.UUID) bool {
	switch caller.Role() {
	case access.RoleAdmin:
		return true
	case access.RoleFactory:
		return targetRole == access.RoleDealer && factoryID != nil && *factoryID == caller.ID()
	case access.RoleDealer:
		return targetRole == access.RoleGrower && dealerID != nil && *dealerID == caller.ID()
	default:
		return false
	}
}

// Create persists a new user with a generated temporary password and
// publishes the created event carrying that password for the mail subscriber.
func (s *UserService) Create(ctx context.Context, caller user.User, draft user.User) (user.User, error) {
	// A factory creating a dealer and a dealer creating a grower implicitly
	// attach the new user to themselves.
	switch caller.Role() {
	case access.RoleFactory:
		if draft.Role() == access.RoleDealer && draft.FactoryID() == nil {
			id := caller.ID()
			draft = draft.WithFactory(&id)
		}
	case access.RoleDealer:
		if draft.Role() == access.RoleGrower && draft.DealerID() == nil {
			id := caller.ID()
			draft = draft.WithDealer(&id)
		}
	}

	if !canManage(caller, draft.Role(), draft.FactoryID(), draft.DealerID()) {
		return user.User{}, serrors.NewPermissionDeniedError("you cannot create this user")
	}
	if err := s.edgeGuard.ValidateEdges(ctx, draft); err != nil {
		return user.User{}, err
	}

	tempPassword, err := generatePassword()
	if err != nil {
		return user.User{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		return user.User{}, err
	}
	draft = draft.WithPasswordHash(string(hash)).WithMustChangePassword(true)

	var created user.User
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		created, err = s.repo.Create(txCtx, draft)
		return err
	})
	if err != nil {
		return user.User{}, err
	}
	s.publisher.Publish(&user.CreatedEvent{Result: created, TempPassword: tempPassword})
	return created, nil
}

// Update applies a fully merged draft over an existing user. Role changes are
// reserved to ADMIN; hierarchy edges are validated before persisting.
func (s *UserService) Update(ctx context.Context, caller user.User, current, draft user.User) (user.User, error) {
	if draft.Role() != current.Role() && caller.Role() != access.RoleAdmin {
		return user.User{}, serrors.NewPermissionDeniedError("only an administrator may change a user's role")
	}
	selfEdit := caller.ID() == current.ID()
	if !selfEdit && !canManage(caller, current.Role(), current.FactoryID(), current.DealerID()) {
		return user.User{}, serrors.NewPermissionDeniedError("you cannot modify this user")
	}
	if selfEdit && caller.Role() != access.RoleAdmin {
		// Self-service edits cannot move the user in the hierarchy.
		draft = draft.WithFactory(current.FactoryID()).WithDealer(current.DealerID())
	}
	if err := s.edgeGuard.ValidateEdges(ctx, draft); err != nil {
		return user.User{}, err
	}

	var updated user.User
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		var err error
		updated, err = s.repo.Update(txCtx, draft)
		return err
	})
	if err != nil {
		return user.User{}, err
	}
	s.publisher.Publish(&user.UpdatedEvent{Result: updated})
	return updated, nil
}

func (s *UserService) Delete(ctx context.Context, caller user.User, id uuid.UUID) error {
	target, err := s.GetByID(ctx, caller, id)
	if err != nil {
		return err
	}
	if !canManage(caller, target.Role(), target.FactoryID(), target.DealerID()) {
		return serrors.NewPermissionDeniedError("you cannot delete this user")
	}
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, id)
	})
	if err != nil {
		return err
	}
	s.publisher.Publish(&user.DeletedEvent{Result: target})
	return nil
}

// SetDealer attaches a grower to a dealer. Allowed for ADMIN and for the
// dealer attaching the grower to itself.
func (s *UserService) SetDealer(ctx context.Context, caller user.User, growerID uuid.UUID, dealerID *uuid.UUID) (user.User, error) {
	if caller.Role() != access.RoleAdmin {
		if caller.Role() != access.RoleDealer || dealerID == nil || *dealerID != caller.ID() {
			return user.User{}, serrors.NewPermissionDeniedError("you cannot assign this dealer")
		}
	}
	target, err := s.repo.GetByID(ctx, growerID)
	if errors.Is(err, user.ErrNotFound) {
		return user.User{}, serrors.NewNotFoundError("user")
	}
	if err != nil {
		return user.User{}, err
	}
	if target.Role() != access.RoleGrower {
		return user.User{}, serrors.NewFieldError("grower", "target user is not a grower")
	}
	draft := target.WithDealer(dealerID)
	if err := s.edgeGuard.ValidateEdges(ctx, draft); err != nil {
		return user.User{}, err
	}

	var updated user.User
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		var err error
		updated, err = s.repo.Update(txCtx, draft)
		return err
	})
	if err != nil {
		return user.User{}, err
	}
	s.publisher.Publish(&user.UpdatedEvent{Result: updated})
	return updated, nil
}

// ChangePassword verifies the old password unless the account is still on a
// temporary one, then stores the new hash and clears the flag.
func (s *UserService) ChangePassword(ctx context.Context, caller user.User, targetID uuid.UUID, oldPassword, newPassword string) error {
	if caller.ID() != targetID && caller.Role() != access.RoleAdmin {
		return serrors.NewPermissionDeniedError("you cannot change this user's password")
	}
	target, err := s.repo.GetByID(ctx, targetID)
	if errors.Is(err, user.ErrNotFound) {
		return serrors.NewNotFoundError("user")
	}
	if err != nil {
		return err
	}
	if len(newPassword) < 8 {
		return serrors.NewFieldError("new_password", "must be at least 8 characters")
	}
	if !target.MustChangePassword() && caller.Role() != access.RoleAdmin {
		if bcrypt.CompareHashAndPassword([]byte(target.PasswordHash()), []byte(oldPassword)) != nil {
			return serrors.NewFieldError("old_password", "incorrect password")
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	draft := target.WithPasswordHash(string(hash)).WithMustChangePassword(false)
	return composables.InTx(ctx, func(txCtx context.Context) error {
		_, err := s.repo.Update(txCtx, draft)
		return err
	})
}

func (s *UserService) lineageOf(ctx context.Context, target user.User) (access.UserLineage, error) {
	lineage := access.UserLineage{
		ID:        target.ID(),
		Role:      target.Role(),
		FactoryID: target.FactoryID(),
		DealerID:  target.DealerID(),
	}
	if target.Role() == access.RoleGrower && target.DealerID() != nil {
		dealer, err := s.repo.GetByID(ctx, *target.DealerID())
		if err != nil && !errors.Is(err, user.ErrNotFound) {
			return access.UserLineage{}, err
		}
		if err == nil {
			lineage.DealerFactoryID = dealer.FactoryID()
		}
	}
	return lineage, nil
}

func generatePassword() (string, error) {
	buf := make([]byte, 9)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
