package persistence

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/irrigodev/irrigationdesign/modules/core/domain/access"
	"github.com/irrigodev/irrigationdesign/modules/plans/domain/aggregates/plan"
	"github.com/irrigodev/irrigationdesign/pkg/composables"
	"github.com/irrigodev/irrigationdesign/pkg/repo"
)

const (
	planSelectQuery = `
		SELECT
			p.id,
			p.name,
			p.description,
			p.preferences,
			p.history,
			p.creator_id,
			p.factory_id,
			p.dealer_id,
			p.grower_id,
			p.created_at,
			p.date_modified
		FROM plans p`

	planCountQuery = `SELECT COUNT(p.id) FROM plans p`

	planInsertQuery = `
		INSERT INTO plans (
			name, description, preferences, history,
			creator_id, factory_id, dealer_id, grower_id, date_modified
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	planUpdateQuery = `
		UPDATE plans SET
			name = $1,
			description = $2,
			preferences = $3,
			history = $4,
			factory_id = $5,
			dealer_id = $6,
			grower_id = $7,
			date_modified = $8
		WHERE id = $9
		RETURNING created_at`

	planDeleteQuery = `DELETE FROM plans WHERE id = $1`
)

type PgPlanRepository struct{}

func NewPlanRepository() plan.Repository {
	return &PgPlanRepository{}
}

// planScopeCondition renders a visibility scope into a SQL predicate over the
// aliased plans row. A factory sees every plan attached to its subtree at any
// level, directly or through the dealer and grower chains.
func planScopeCondition(s access.PlanScope, args *[]interface{}) string {
	switch s.Kind {
	case access.ScopeAll:
		return ""
	case access.ScopeFactory:
		*args = append(*args, s.CallerID)
		n := len(*args)
		return fmt.Sprintf(
			`(p.factory_id = $%d OR
			  p.dealer_id IN (SELECT d.id FROM users d WHERE d.factory_id = $%d) OR
			  p.grower_id IN (
				SELECT g.id FROM users g
				JOIN users d ON g.dealer_id = d.id
				WHERE d.factory_id = $%d))`,
			n, n, n,
		)
	case access.ScopeDealer:
		*args = append(*args, s.CallerID)
		return fmt.Sprintf("p.dealer_id = $%d", len(*args))
	case access.ScopeOwn:
		*args = append(*args, s.CallerID)
		return fmt.Sprintf("p.grower_id = $%d", len(*args))
	default:
		return "FALSE"
	}
}

func (g *PgPlanRepository) buildFilters(params *plan.FindParams) (string, []interface{}) {
	var args []interface{}
	var conds []string

	if c := planScopeCondition(params.Scope, &args); c != "" {
		conds = append(conds, c)
	}
	if params.FactoryID != nil {
		args = append(args, *params.FactoryID)
		conds = append(conds, fmt.Sprintf("p.factory_id = $%d", len(args)))
	}
	if params.DealerID != nil {
		args = append(args, *params.DealerID)
		conds = append(conds, fmt.Sprintf("p.dealer_id = $%d", len(args)))
	}
	if params.GrowerID != nil {
		args = append(args, *params.GrowerID)
		conds = append(conds, fmt.Sprintf("p.grower_id = $%d", len(args)))
	}
	return repo.JoinWhere(conds...), args
}

func (g *PgPlanRepository) GetPaginated(ctx context.Context, params *plan.FindParams) ([]plan.Plan, int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, 0, err
	}

	where, args := g.buildFilters(params)

	var total int64
	if err := tx.QueryRow(ctx, repo.Join(planCountQuery, where), args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "failed to count plans")
	}

	q := repo.Join(
		planSelectQuery,
		where,
		"ORDER BY p.date_modified DESC",
		repo.FormatLimitOffset(params.Limit, params.Offset),
	)
	rows, err := tx.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to query plans")
	}
	defer rows.Close()

	plans, err := scanPlans(rows)
	if err != nil {
		return nil, 0, err
	}
	return plans, total, nil
}

func (g *PgPlanRepository) GetByID(ctx context.Context, id uuid.UUID) (plan.Plan, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return plan.Plan{}, err
	}
	row := tx.QueryRow(ctx, repo.Join(planSelectQuery, "WHERE p.id = $1"), id)
	p, err := scanPlan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return plan.Plan{}, plan.ErrNotFound
	}
	if err != nil {
		return plan.Plan{}, errors.Wrap(err, "failed to query plan")
	}
	return p, nil
}

func (g *PgPlanRepository) Create(ctx context.Context, p plan.Plan) (plan.Plan, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return plan.Plan{}, err
	}
	m, err := toDBPlan(p)
	if err != nil {
		return plan.Plan{}, err
	}
	row := tx.QueryRow(
		ctx,
		planInsertQuery,
		m.Name, m.Description, m.Preferences, m.History,
		m.CreatorID, m.FactoryID, m.DealerID, m.GrowerID, m.DateModified,
	)
	if err := row.Scan(&m.ID, &m.CreatedAt); err != nil {
		return plan.Plan{}, errors.Wrap(err, "failed to insert plan")
	}
	return toDomainPlan(m)
}

func (g *PgPlanRepository) Update(ctx context.Context, p plan.Plan) (plan.Plan, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return plan.Plan{}, err
	}
	m, err := toDBPlan(p)
	if err != nil {
		return plan.Plan{}, err
	}
	row := tx.QueryRow(
		ctx,
		planUpdateQuery,
		m.Name, m.Description, m.Preferences, m.History,
		m.FactoryID, m.DealerID, m.GrowerID, m.DateModified,
		m.ID,
	)
	if err := row.Scan(&m.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return plan.Plan{}, plan.ErrNotFound
		}
		return plan.Plan{}, errors.Wrap(err, "failed to update plan")
	}
	return toDomainPlan(m)
}

func (g *PgPlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, planDeleteQuery, id); err != nil {
		return errors.Wrap(err, "failed to delete plan")
	}
	return nil
}
