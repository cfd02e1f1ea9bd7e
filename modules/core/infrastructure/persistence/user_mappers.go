package persistence

import (
	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/irrigodev/irrigationdesign/modules/core/domain/access"
	"github.com/irrigodev/irrigationdesign/modules/core/domain/aggregates/user"
	"github.com/irrigodev/irrigationdesign/modules/core/infrastructure/persistence/models"
)

func toDBUser(u user.User) models.User {
	return models.User{
		ID:                 u.ID(),
		Username:           u.Username(),
		Email:              u.Email(),
		FirstName:          u.FirstName(),
		LastName:           u.LastName(),
		CompanyName:        u.CompanyName(),
		Phone:              u.Phone(),
		PasswordHash:       u.PasswordHash(),
		Role:               u.Role().String(),
		FactoryID:          u.FactoryID(),
		DealerID:           u.DealerID(),
		MustChangePassword: u.MustChangePassword(),
		CreatedAt:          u.CreatedAt(),
		UpdatedAt:          u.UpdatedAt(),
	}
}

func toDomainUser(m models.User) (user.User, error) {
	role, err := access.ParseRole(m.Role)
	if err != nil {
		return user.User{}, errors.Wrapf(err, "user %s has invalid role", m.ID)
	}
	return user.Hydrate(
		m.ID,
		m.Username,
		m.Email,
		m.FirstName,
		m.LastName,
		m.CompanyName,
		m.Phone,
		m.PasswordHash,
		role,
		m.FactoryID,
		m.DealerID,
		m.MustChangePassword,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func scanUser(row pgx.Row) (user.User, error) {
	var m models.User
	if err := row.Scan(
		&m.ID,
		&m.Username,
		&m.Email,
		&m.FirstName,
		&m.LastName,
		&m.CompanyName,
		&m.Phone,
		&m.PasswordHash,
		&m.Role,
		&m.FactoryID,
		&m.DealerID,
		&m.MustChangePassword,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		return user.User{}, err
	}
	return toDomainUser(m)
}

func scanUsers(rows pgx.Rows) ([]user.User, error) {
	var users []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate users")
	}
	return users, nil
}
