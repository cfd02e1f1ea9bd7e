package dtos

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/irrigodev/irrigationdesign/modules/core/domain/access"
	"github.com/irrigodev/irrigationdesign/modules/core/domain/aggregates/user"
	"github.com/irrigodev/irrigationdesign/pkg/constants"
	"github.com/irrigodev/irrigationdesign/pkg/serrors"
)

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type UserResponse struct {
	ID                 uuid.UUID  `json:"id"`
	Username           string     `json:"username"`
	Email              string     `json:"email"`
	FirstName          string     `json:"firstName"`
	LastName           string     `json:"lastName"`
	CompanyName        string     `json:"companyName"`
	Phone              string     `json:"phone"`
	Role               string     `json:"role"`
	FactoryID          *uuid.UUID `json:"factoryId"`
	DealerID           *uuid.UUID `json:"dealerId"`
	MustChangePassword bool       `json:"mustChangePassword"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

func ToUserResponse(u user.User) UserResponse {
	return UserResponse{
		ID:                 u.ID(),
		Username:           u.Username(),
		Email:              u.Email(),
		FirstName:          u.FirstName(),
		LastName:           u.LastName(),
		CompanyName:        u.CompanyName(),
		Phone:              u.Phone(),
		Role:               u.Role().String(),
		FactoryID:          u.FactoryID(),
		DealerID:           u.DealerID(),
		MustChangePassword: u.MustChangePassword(),
		CreatedAt:          u.CreatedAt(),
		UpdatedAt:          u.UpdatedAt(),
	}
}

type ListResponse[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
}

type CreateUserRequest struct {
	Username    string     `json:"username" validate:"required,min=3,max=64"`
	Email       string     `json:"email" validate:"required,email"`
	FirstName   string     `json:"firstName" validate:"max=128"`
	LastName    string     `json:"lastName" validate:"max=128"`
	CompanyName string     `json:"companyName" validate:"max=255"`
	Phone       string     `json:"phone" validate:"max=32"`
	Role        string     `json:"role" validate:"required"`
	FactoryID   *uuid.UUID `json:"factoryId"`
	DealerID    *uuid.UUID `json:"dealerId"`
}

func (d *CreateUserRequest) ToEntity() (user.User, error) {
	if err := constants.Validate.Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return user.User{}, serrors.ProcessValidatorErrors(verrs)
		}
		return user.User{}, err
	}
	role, err := access.ParseRole(d.Role)
	if err != nil {
		return user.User{}, serrors.NewFieldError("role", "must be one of ADMIN, FACTORY, DEALER, GROWER")
	}
	u := user.New(d.Username, d.Email, role).
		WithName(d.FirstName, d.LastName).
		WithContact(d.CompanyName, d.Phone).
		WithFactory(d.FactoryID).
		WithDealer(d.DealerID)
	return u, nil
}

type UpdateUserRequest struct {
	Email       *string    `json:"email" validate:"omitempty,email"`
	FirstName   *string    `json:"firstName"`
	LastName    *string    `json:"lastName"`
	CompanyName *string    `json:"companyName"`
	Phone       *string    `json:"phone"`
	Role        *string    `json:"role"`
	FactoryID   *uuid.UUID `json:"factoryId"`
	DealerID    *uuid.UUID `json:"dealerId"`

	// ClearFactory / ClearDealer explicitly detach a hierarchy edge; a nil id
	// alone means "leave unchanged" under patch semantics.
	ClearFactory bool `json:"clearFactory"`
	ClearDealer  bool `json:"clearDealer"`
}

// Apply merges the patch over the current aggregate.
func (d *UpdateUserRequest) Apply(current user.User) (user.User, error) {
	if err := constants.Validate.Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return user.User{}, serrors.ProcessValidatorErrors(verrs)
		}
		return user.User{}, err
	}
	u := current
	if d.Email != nil {
		u = u.WithEmail(*d.Email)
	}
	first, last := u.FirstName(), u.LastName()
	if d.FirstName != nil {
		first = *d.FirstName
	}
	if d.LastName != nil {
		last = *d.LastName
	}
	u = u.WithName(first, last)

	company, phone := u.CompanyName(), u.Phone()
	if d.CompanyName != nil {
		company = *d.CompanyName
	}
	if d.Phone != nil {
		phone = *d.Phone
	}
	u = u.WithContact(company, phone)

	if d.Role != nil {
		role, err := access.ParseRole(*d.Role)
		if err != nil {
			return user.User{}, serrors.NewFieldError("role", "must be one of ADMIN, FACTORY, DEALER, GROWER")
		}
		u = u.WithRole(role)
	}
	switch {
	case d.ClearFactory:
		u = u.WithFactory(nil)
	case d.FactoryID != nil:
		u = u.WithFactory(d.FactoryID)
	}
	switch {
	case d.ClearDealer:
		u = u.WithDealer(nil)
	case d.DealerID != nil:
		u = u.WithDealer(d.DealerID)
	}
	return u, nil
}

type SetDealerRequest struct {
	DealerID *uuid.UUID `json:"dealerId"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}
