package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/irrigodev/irrigationdesign/modules/core/domain/access"
	"github.com/irrigodev/irrigationdesign/modules/core/domain/aggregates/user"
	"github.com/irrigodev/irrigationdesign/modules/plans/domain/aggregates/plan"
	"github.com/irrigodev/irrigationdesign/modules/plans/domain/entities/element"
	"github.com/irrigodev/irrigationdesign/pkg/composables"
	"github.com/irrigodev/irrigationdesign/pkg/eventbus"
	"github.com/irrigodev/irrigationdesign/pkg/serrors"
)

// TxRunner runs fn inside one atomic unit of work. The default commits on nil
// and rolls everything back on error; tests substitute their own.
type TxRunner func(ctx context.Context, fn func(context.Context) error) error

type ShapeUpsert struct {
	ID   *uuid.UUID
	Type element.ShapeType
	Data map[string]any
}

type ConnectionUpsert struct {
	ID       *uuid.UUID
	SourceID uuid.UUID
	TargetID uuid.UUID
	Geometry map[string]any
}

type AnnotationUpsert struct {
	ID       *uuid.UUID
	Text     string
	Position element.Position
	Rotation float64
}

// SyncBatch is one full content mutation of a plan. Preferences nil means
// "leave stored preferences untouched".
type SyncBatch struct {
	Shapes        []ShapeUpsert
	Connections   []ConnectionUpsert
	Annotations   []AnnotationUpsert
	DeleteIDs     []uuid.UUID
	ClearExisting bool
	Preferences   map[string]any
}

type SyncService struct {
	plans     plan.Repository
	elements  element.Repository
	users     user.Repository
	publisher eventbus.EventBus
	logger    *logrus.Logger
	tx        TxRunner
	now       func() time.Time
}

type SyncOption func(*SyncService)

func WithTxRunner(tx TxRunner) SyncOption {
	return func(s *SyncService) { s.tx = tx }
}

func WithClock(now func() time.Time) SyncOption {
	return func(s *SyncService) { s.now = now }
}

func NewSyncService(
	plans plan.Repository,
	elements element.Repository,
	users user.Repository,
	publisher eventbus.EventBus,
	logger *logrus.Logger,
	opts ...SyncOption,
) *SyncService {
	s := &SyncService{
		plans:     plans,
		elements:  elements,
		users:     users,
		publisher: publisher,
		logger:    logger,
		tx:        composables.InTx,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synchronize applies the batch to the plan as one all-or-nothing operation
// and returns the resulting snapshot. Any validation failure anywhere in the
// batch discards every step; a concurrent reader only ever sees the plan
// fully-old or fully-new.
func (s *SyncService) Synchronize(ctx context.Context, caller user.User, planID uuid.UUID, batch SyncBatch) (*plan.Snapshot, error) {
	var snapshot *plan.Snapshot
	err := s.tx(ctx, func(txCtx context.Context) error {
		p, err := s.plans.GetByID(txCtx, planID)
		if errors.Is(err, plan.ErrNotFound) {
			return serrors.NewNotFoundError("plan")
		}
		if err != nil {
			return err
		}

		lineage, err := planLineage(txCtx, s.users, p)
		if err != nil {
			return err
		}
		if !access.CanMutatePlan(caller.Caller(), lineage) {
			return serrors.NewPermissionDeniedError("you cannot modify this plan")
		}

		if batch.ClearExisting {
			if err := s.elements.DeleteAllByPlan(txCtx, planID); err != nil {
				return err
			}
		}
		// Deletes are scoped to the plan: a foreign id is a silent no-op,
		// never a cross-plan delete.
		if len(batch.DeleteIDs) > 0 {
			if err := s.elements.DeleteByIDs(txCtx, planID, batch.DeleteIDs); err != nil {
				return err
			}
		}

		errs := serrors.NewValidationErrors()

		for i, su := range batch.Shapes {
			if verr := element.ValidatePayload(su.Type, su.Data); verr != nil {
				var fieldErrs serrors.ValidationErrors
				if !errors.As(verr, &fieldErrs) {
					return verr
				}
				for field, messages := range fieldErrs {
					for _, msg := range messages {
						errs.Add(fmt.Sprintf("shapes[%d].%s", i, field), msg)
					}
				}
				continue
			}
			data := element.EnsureStyle(su.Data)
			// A stale client id degrades to an insert that keeps the id, so
			// replaying the same batch updates in place instead of
			// duplicating.
			id := uuid.New()
			if su.ID != nil {
				id = *su.ID
			}
			shape := element.NewShape(id, planID, su.Type, data, element.ComputeArea(su.Type, data))
			if _, err := s.elements.SaveShape(txCtx, shape); err != nil {
				return err
			}
		}

		for i, cu := range batch.Connections {
			_, srcOK, err := s.elements.GetShape(txCtx, planID, cu.SourceID)
			if err != nil {
				return err
			}
			_, tgtOK, err := s.elements.GetShape(txCtx, planID, cu.TargetID)
			if err != nil {
				return err
			}
			if !srcOK {
				errs.Add(fmt.Sprintf("connections[%d].source", i), "source shape does not belong to this plan")
			}
			if !tgtOK {
				errs.Add(fmt.Sprintf("connections[%d].target", i), "target shape does not belong to this plan")
			}
			if !srcOK || !tgtOK {
				continue
			}
			id := uuid.New()
			if cu.ID != nil {
				id = *cu.ID
			}
			conn := element.NewConnection(id, planID, cu.SourceID, cu.TargetID, cu.Geometry)
			if _, err := s.elements.SaveConnection(txCtx, conn); err != nil {
				return err
			}
		}

		for _, au := range batch.Annotations {
			id := uuid.New()
			if au.ID != nil {
				id = *au.ID
			}
			ann := element.NewAnnotation(id, planID, au.Text, au.Position, au.Rotation)
			if _, err := s.elements.SaveAnnotation(txCtx, ann); err != nil {
				return err
			}
		}

		if errs.Any() {
			return errs
		}

		if batch.Preferences != nil {
			p = p.WithPreferences(batch.Preferences)
		}
		// The plan is touched even when no other step changed data.
		now := s.now()
		p = p.Touched(now).WithHistoryEntry(plan.HistoryEntry{
			Action: plan.HistoryContentSynced,
			UserID: caller.ID(),
			At:     now,
		})
		p, err = s.plans.Update(txCtx, p)
		if err != nil {
			return err
		}

		shapes, err := s.elements.ShapesByPlan(txCtx, planID)
		if err != nil {
			return err
		}
		connections, err := s.elements.ConnectionsByPlan(txCtx, planID)
		if err != nil {
			return err
		}
		annotations, err := s.elements.AnnotationsByPlan(txCtx, planID)
		if err != nil {
			return err
		}
		snapshot = &plan.Snapshot{
			Plan:        p,
			Shapes:      shapes,
			Connections: connections,
			Annotations: annotations,
		}
		return nil
	})
	if err != nil {
		return nil, s.classify(err, planID)
	}

	s.publisher.Publish(&plan.ContentSyncedEvent{Result: *snapshot})
	return snapshot, nil
}

// classify passes structured failures through untouched and redacts anything
// unexpected into an opaque transient fault. The rollback already happened.
func (s *SyncService) classify(err error, planID uuid.UUID) error {
	var verrs serrors.ValidationErrors
	var base *serrors.BaseError
	if errors.As(err, &verrs) || errors.As(err, &base) {
		return err
	}
	s.logger.WithError(err).WithField("plan", planID).Error("plan synchronization aborted")
	return serrors.NewTransientFaultError("plan synchronization failed, no changes were applied")
}
