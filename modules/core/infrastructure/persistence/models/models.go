package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID                 uuid.UUID
	Username           string
	Email              string
	FirstName          string
	LastName           string
	CompanyName        string
	Phone              string
	PasswordHash       string
	Role               string
	FactoryID          *uuid.UUID
	DealerID           *uuid.UUID
	MustChangePassword bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
