package services_test

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/irrigodev/irrigationdesign/modules/core/domain/access"
	"github.com/irrigodev/irrigationdesign/modules/core/domain/aggregates/user"
	"github.com/irrigodev/irrigationdesign/modules/plans/domain/aggregates/plan"
	"github.com/irrigodev/irrigationdesign/modules/plans/domain/entities/element"
	"github.com/irrigodev/irrigationdesign/modules/plans/services"
)

func ptr(id uuid.UUID) *uuid.UUID { return &id }

func mkUser(id uuid.UUID, role access.Role, factoryID, dealerID *uuid.UUID) user.User {
	return user.Hydrate(
		id, "u-"+id.String()[:8], id.String()[:8]+"@example.com",
		"", "", "", "", "hash", role, factoryID, dealerID, false,
		time.Now(), time.Now(),
	)
}

func mkPlan(id, creatorID uuid.UUID, factoryID, dealerID, growerID *uuid.UUID) plan.Plan {
	return plan.Hydrate(
		id, "plan-"+id.String()[:8], "", nil, nil,
		creatorID, factoryID, dealerID, growerID,
		time.Now(), time.Now(),
	)
}

// ---- users ----

type fakeUsers struct {
	byID map[uuid.UUID]user.User
}

func newFakeUsers(users ...user.User) *fakeUsers {
	f := &fakeUsers{byID: make(map[uuid.UUID]user.User)}
	for _, u := range users {
		f.byID[u.ID()] = u
	}
	return f
}

func (f *fakeUsers) GetPaginated(context.Context, *user.FindParams) ([]user.User, int64, error) {
	panic("not used")
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (user.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetByUsername(context.Context, string) (user.User, error) {
	panic("not used")
}

func (f *fakeUsers) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := f.byID[id]
	return ok, nil
}

func (f *fakeUsers) Create(_ context.Context, u user.User) (user.User, error) {
	f.byID[u.ID()] = u
	return u, nil
}

func (f *fakeUsers) Update(_ context.Context, u user.User) (user.User, error) {
	f.byID[u.ID()] = u
	return u, nil
}

func (f *fakeUsers) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.byID, id)
	return nil
}

// ---- plans ----

type fakePlans struct {
	byID map[uuid.UUID]plan.Plan
}

func newFakePlans(plans ...plan.Plan) *fakePlans {
	f := &fakePlans{byID: make(map[uuid.UUID]plan.Plan)}
	for _, p := range plans {
		f.byID[p.ID()] = p
	}
	return f
}

func (f *fakePlans) GetPaginated(context.Context, *plan.FindParams) ([]plan.Plan, int64, error) {
	panic("not used")
}

func (f *fakePlans) GetByID(_ context.Context, id uuid.UUID) (plan.Plan, error) {
	p, ok := f.byID[id]
	if !ok {
		return plan.Plan{}, plan.ErrNotFound
	}
	return p, nil
}

func (f *fakePlans) Create(_ context.Context, p plan.Plan) (plan.Plan, error) {
	id := p.ID()
	if id == uuid.Nil {
		id = uuid.New()
	}
	stored := plan.Hydrate(
		id, p.Name(), p.Description(), p.Preferences(), p.History(),
		p.CreatorID(), p.FactoryID(), p.DealerID(), p.GrowerID(),
		time.Now(), p.DateModified(),
	)
	f.byID[id] = stored
	return stored, nil
}

func (f *fakePlans) Update(_ context.Context, p plan.Plan) (plan.Plan, error) {
	if _, ok := f.byID[p.ID()]; !ok {
		return plan.Plan{}, plan.ErrNotFound
	}
	f.byID[p.ID()] = p
	return p, nil
}

func (f *fakePlans) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.byID, id)
	return nil
}

func (f *fakePlans) clone() map[uuid.UUID]plan.Plan {
	out := make(map[uuid.UUID]plan.Plan, len(f.byID))
	for k, v := range f.byID {
		out[k] = v
	}
	return out
}

// ---- elements ----

type fakeElements struct {
	shapes      map[uuid.UUID]element.Shape
	connections map[uuid.UUID]element.Connection
	annotations map[uuid.UUID]element.Annotation
}

func newFakeElements() *fakeElements {
	return &fakeElements{
		shapes:      make(map[uuid.UUID]element.Shape),
		connections: make(map[uuid.UUID]element.Connection),
		annotations: make(map[uuid.UUID]element.Annotation),
	}
}

func (f *fakeElements) ShapesByPlan(_ context.Context, planID uuid.UUID) ([]element.Shape, error) {
	var out []element.Shape
	for _, s := range f.shapes {
		if s.PlanID() == planID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID().String() < out[j].ID().String() })
	return out, nil
}

func (f *fakeElements) ConnectionsByPlan(_ context.Context, planID uuid.UUID) ([]element.Connection, error) {
	var out []element.Connection
	for _, c := range f.connections {
		if c.PlanID() == planID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID().String() < out[j].ID().String() })
	return out, nil
}

func (f *fakeElements) AnnotationsByPlan(_ context.Context, planID uuid.UUID) ([]element.Annotation, error) {
	var out []element.Annotation
	for _, a := range f.annotations {
		if a.PlanID() == planID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID().String() < out[j].ID().String() })
	return out, nil
}

func (f *fakeElements) GetShape(_ context.Context, planID, id uuid.UUID) (element.Shape, bool, error) {
	s, ok := f.shapes[id]
	if !ok || s.PlanID() != planID {
		return element.Shape{}, false, nil
	}
	return s, true, nil
}

func (f *fakeElements) SaveShape(_ context.Context, s element.Shape) (element.Shape, error) {
	f.shapes[s.ID()] = s
	return s, nil
}

func (f *fakeElements) SaveConnection(_ context.Context, c element.Connection) (element.Connection, error) {
	f.connections[c.ID()] = c
	return c, nil
}

func (f *fakeElements) SaveAnnotation(_ context.Context, a element.Annotation) (element.Annotation, error) {
	f.annotations[a.ID()] = a
	return a, nil
}

func (f *fakeElements) DeleteByIDs(_ context.Context, planID uuid.UUID, ids []uuid.UUID) error {
	for _, id := range ids {
		if s, ok := f.shapes[id]; ok && s.PlanID() == planID {
			delete(f.shapes, id)
		}
		if c, ok := f.connections[id]; ok && c.PlanID() == planID {
			delete(f.connections, id)
		}
		if a, ok := f.annotations[id]; ok && a.PlanID() == planID {
			delete(f.annotations, id)
		}
	}
	return nil
}

func (f *fakeElements) DeleteAllByPlan(_ context.Context, planID uuid.UUID) error {
	for id, s := range f.shapes {
		if s.PlanID() == planID {
			delete(f.shapes, id)
		}
	}
	for id, c := range f.connections {
		if c.PlanID() == planID {
			delete(f.connections, id)
		}
	}
	for id, a := range f.annotations {
		if a.PlanID() == planID {
			delete(f.annotations, id)
		}
	}
	return nil
}

func (f *fakeElements) clone() (map[uuid.UUID]element.Shape, map[uuid.UUID]element.Connection, map[uuid.UUID]element.Annotation) {
	shapes := make(map[uuid.UUID]element.Shape, len(f.shapes))
	for k, v := range f.shapes {
		shapes[k] = v
	}
	connections := make(map[uuid.UUID]element.Connection, len(f.connections))
	for k, v := range f.connections {
		connections[k] = v
	}
	annotations := make(map[uuid.UUID]element.Annotation, len(f.annotations))
	for k, v := range f.annotations {
		annotations[k] = v
	}
	return shapes, connections, annotations
}

// fakeTxRunner mimics transactional semantics over the in-memory stores: on
// error every store is restored to its pre-call state.
func fakeTxRunner(plans *fakePlans, elements *fakeElements) services.TxRunner {
	return func(ctx context.Context, fn func(context.Context) error) error {
		planSnap := plans.clone()
		shapeSnap, connSnap, annSnap := elements.clone()
		if err := fn(ctx); err != nil {
			plans.byID = planSnap
			elements.shapes = shapeSnap
			elements.connections = connSnap
			elements.annotations = annSnap
			return err
		}
		return nil
	}
}
