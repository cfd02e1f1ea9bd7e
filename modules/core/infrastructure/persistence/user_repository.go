package persistence

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/irrigodev/irrigationdesign/modules/core/domain/access"
	"github.com/irrigodev/irrigationdesign/modules/core/domain/aggregates/user"
	"github.com/irrigodev/irrigationdesign/pkg/composables"
	"github.com/irrigodev/irrigationdesign/pkg/repo"
)

const (
	userSelectQuery = `
		SELECT
			u.id,
			u.username,
			u.email,
			u.first_name,
			u.last_name,
			u.company_name,
			u.phone,
			u.password_hash,
			u.role,
			u.factory_id,
			u.dealer_id,
			u.must_change_password,
			u.created_at,
			u.updated_at
		FROM users u`

	userCountQuery = `SELECT COUNT(u.id) FROM users u`

	userInsertQuery = `
		INSERT INTO users (
			username, email, first_name, last_name, company_name, phone,
			password_hash, role, factory_id, dealer_id, must_change_password
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`

	userUpdateQuery = `
		UPDATE users SET
			username = $1,
			email = $2,
			first_name = $3,
			last_name = $4,
			company_name = $5,
			phone = $6,
			password_hash = $7,
			role = $8,
			factory_id = $9,
			dealer_id = $10,
			must_change_password = $11,
			updated_at = now()
		WHERE id = $12
		RETURNING updated_at`

	userDeleteQuery = `DELETE FROM users WHERE id = $1`
	userExistsQuery = `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`
)

type PgUserRepository struct{}

func NewUserRepository() user.Repository {
	return &PgUserRepository{}
}

// userScopeCondition renders a visibility scope into a SQL predicate over the
// aliased users row. Unknown scope kinds match nothing.
func userScopeCondition(s access.UserScope, args *[]interface{}) string {
	switch s.Kind {
	case access.ScopeAll:
		return ""
	case access.ScopeFactory:
		*args = append(*args, s.CallerID)
		n := len(*args)
		return fmt.Sprintf(
			`((u.role = 'DEALER' AND u.factory_id = $%d) OR
			  (u.role = 'GROWER' AND u.dealer_id IN (
				SELECT d.id FROM users d WHERE d.role = 'DEALER' AND d.factory_id = $%d)))`,
			n, n,
		)
	case access.ScopeDealer:
		*args = append(*args, s.CallerID)
		n := len(*args)
		return fmt.Sprintf("(u.dealer_id = $%d OR u.id = $%d)", n, n)
	case access.ScopeOwn:
		*args = append(*args, s.CallerID)
		return fmt.Sprintf("u.id = $%d", len(*args))
	default:
		return "FALSE"
	}
}

func (g *PgUserRepository) buildFilters(params *user.FindParams) (string, []interface{}) {
	var args []interface{}
	var conds []string

	if c := userScopeCondition(params.Scope, &args); c != "" {
		conds = append(conds, c)
	}
	if params.Role != nil {
		args = append(args, params.Role.String())
		conds = append(conds, fmt.Sprintf("u.role = $%d", len(args)))
	}
	if params.FactoryID != nil {
		args = append(args, *params.FactoryID)
		conds = append(conds, fmt.Sprintf("u.factory_id = $%d", len(args)))
	}
	if params.DealerID != nil {
		args = append(args, *params.DealerID)
		conds = append(conds, fmt.Sprintf("u.dealer_id = $%d", len(args)))
	}
	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(u.username ILIKE $%d OR u.email ILIKE $%d OR u.first_name ILIKE $%d OR u.last_name ILIKE $%d)",
			n, n, n, n,
		))
	}
	return repo.JoinWhere(conds...), args
}

func (g *PgUserRepository) GetPaginated(ctx context.Context, params *user.FindParams) ([]user.User, int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, 0, err
	}

	where, args := g.buildFilters(params)

	var total int64
	if err := tx.QueryRow(ctx, repo.Join(userCountQuery, where), args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "failed to count users")
	}

	q := repo.Join(
		userSelectQuery,
		where,
		"ORDER BY u.username",
		repo.FormatLimitOffset(params.Limit, params.Offset),
	)
	rows, err := tx.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to query users")
	}
	defer rows.Close()

	users, err := scanUsers(rows)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (g *PgUserRepository) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	return g.getOne(ctx, "WHERE u.id = $1", id)
}

func (g *PgUserRepository) GetByUsername(ctx context.Context, username string) (user.User, error) {
	return g.getOne(ctx, "WHERE u.username = $1", username)
}

func (g *PgUserRepository) getOne(ctx context.Context, where string, args ...interface{}) (user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return user.User{}, err
	}
	row := tx.QueryRow(ctx, repo.Join(userSelectQuery, where), args...)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return user.User{}, user.ErrNotFound
	}
	if err != nil {
		return user.User{}, errors.Wrap(err, "failed to query user")
	}
	return u, nil
}

func (g *PgUserRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := tx.QueryRow(ctx, userExistsQuery, id).Scan(&exists); err != nil {
		return false, errors.Wrap(err, "failed to check user existence")
	}
	return exists, nil
}

func (g *PgUserRepository) Create(ctx context.Context, u user.User) (user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return user.User{}, err
	}
	m := toDBUser(u)
	row := tx.QueryRow(
		ctx,
		userInsertQuery,
		m.Username, m.Email, m.FirstName, m.LastName, m.CompanyName, m.Phone,
		m.PasswordHash, m.Role, m.FactoryID, m.DealerID, m.MustChangePassword,
	)
	if err := row.Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return user.User{}, errors.Wrap(err, "failed to insert user")
	}
	return toDomainUser(m)
}

func (g *PgUserRepository) Update(ctx context.Context, u user.User) (user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return user.User{}, err
	}
	m := toDBUser(u)
	row := tx.QueryRow(
		ctx,
		userUpdateQuery,
		m.Username, m.Email, m.FirstName, m.LastName, m.CompanyName, m.Phone,
		m.PasswordHash, m.Role, m.FactoryID, m.DealerID, m.MustChangePassword,
		m.ID,
	)
	if err := row.Scan(&m.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "failed to update user")
	}
	return toDomainUser(m)
}

func (g *PgUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, userDeleteQuery, id); err != nil {
		return errors.Wrap(err, "failed to delete user")
	}
	return nil
}
