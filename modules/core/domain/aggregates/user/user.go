package user

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/irrigodev/irrigationdesign/modules/core/domain/access"
)

type User struct {
	id                 uuid.UUID
	username           string
	email              string
	firstName          string
	lastName           string
	companyName        string
	phone              string
	passwordHash       string
	role               access.Role
	factoryID          *uuid.UUID // set for dealers
	dealerID           *uuid.UUID // set for growers
	mustChangePassword bool
	createdAt          time.Time
	updatedAt          time.Time
}

func New(username, email string, role access.Role) User {
	return User{
		username:           strings.TrimSpace(username),
		email:              strings.TrimSpace(email),
		role:               role,
		mustChangePassword: true,
	}
}

func Hydrate(
	id uuid.UUID,
	username string,
	email string,
	firstName string,
	lastName string,
	companyName string,
	phone string,
	passwordHash string,
	role access.Role,
	factoryID *uuid.UUID,
	dealerID *uuid.UUID,
	mustChangePassword bool,
	createdAt time.Time,
	updatedAt time.Time,
) User {
	return User{
		id:                 id,
		username:           username,
		email:              email,
		firstName:          firstName,
		lastName:           lastName,
		companyName:        companyName,
		phone:              phone,
		passwordHash:       passwordHash,
		role:               role,
		factoryID:          factoryID,
		dealerID:           dealerID,
		mustChangePassword: mustChangePassword,
		createdAt:          createdAt,
		updatedAt:          updatedAt,
	}
}

func (u User) ID() uuid.UUID            { return u.id }
func (u User) Username() string         { return u.username }
func (u User) Email() string            { return u.email }
func (u User) FirstName() string        { return u.firstName }
func (u User) LastName() string         { return u.lastName }
func (u User) CompanyName() string      { return u.companyName }
func (u User) Phone() string            { return u.phone }
func (u User) PasswordHash() string     { return u.passwordHash }
func (u User) Role() access.Role        { return u.role }
func (u User) FactoryID() *uuid.UUID    { return u.factoryID }
func (u User) DealerID() *uuid.UUID     { return u.dealerID }
func (u User) MustChangePassword() bool { return u.mustChangePassword }
func (u User) CreatedAt() time.Time     { return u.createdAt }
func (u User) UpdatedAt() time.Time     { return u.updatedAt }
func (u User) IsZero() bool             { return u.id == uuid.Nil && u.username == "" }

// Caller flattens the aggregate into the identity value the access rules
// operate on.
func (u User) Caller() access.Caller {
	return access.Caller{
		ID:        u.id,
		Role:      u.role,
		FactoryID: u.factoryID,
		DealerID:  u.dealerID,
	}
}

func (u User) WithName(first, last string) User {
	u.firstName = strings.TrimSpace(first)
	u.lastName = strings.TrimSpace(last)
	return u
}

func (u User) WithContact(companyName, phone string) User {
	u.companyName = strings.TrimSpace(companyName)
	u.phone = strings.TrimSpace(phone)
	return u
}

func (u User) WithEmail(email string) User {
	u.email = strings.TrimSpace(email)
	return u
}

func (u User) WithPasswordHash(hash string) User {
	u.passwordHash = hash
	return u
}

func (u User) WithMustChangePassword(v bool) User {
	u.mustChangePassword = v
	return u
}

func (u User) WithRole(role access.Role) User {
	u.role = role
	return u
}

func (u User) WithFactory(factoryID *uuid.UUID) User {
	u.factoryID = factoryID
	return u
}

func (u User) WithDealer(dealerID *uuid.UUID) User {
	u.dealerID = dealerID
	return u
}
