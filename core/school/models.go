package school

import (
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trezcool/shule/core"
)

// Stored fields
const (
	FieldEmail   core.Field = "email"
	FieldPhone   core.Field = "phone"
	FieldAddress core.Field = "address"
	FieldOwner   core.Field = "owner"
	FieldLogo    core.Field = "logo"
)

type School struct {
	ID          primitive.ObjectID  `bson:"_id"`
	Name        string              `bson:"name"`
	Username    string              `bson:"username"`
	Email       string              `bson:"email,omitempty"`
	Phone       string              `bson:"phone,omitempty"`
	Address     string              `bson:"address,omitempty"`
	Description string              `bson:"description"`
	Owner       *primitive.ObjectID `bson:"owner,omitempty"`
	Logo        *primitive.ObjectID `bson:"logo,omitempty"`
	CreatedAt   time.Time           `bson:"created_at"` // UTC
	UpdatedAt   time.Time           `bson:"updated_at"` // UTC
}

func (s School) DocID() primitive.ObjectID { return s.ID }

func (s School) DisplayName() string {
	if s.Username != "" {
		return s.Username
	}
	return s.Name
}

// NewSchool contains information needed to create a new School.
// Owner defaults to the authenticated user.
type NewSchool struct {
	Name        string `json:"name" validate:"required,max=255"`
	Username    string `json:"username" validate:"omitempty,username"`
	Email       string `json:"email" validate:"omitempty,email"`
	Phone       string `json:"phone" validate:"omitempty,max=20"`
	Address     string `json:"address"`
	Description string `json:"description"`
	Owner       string `json:"owner"`
	Logo        string `json:"logo"`
}

func (ns *NewSchool) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Username = core.CleanString(ns.Username, true /* lower */)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.Phone = core.CleanString(ns.Phone)
	ns.Address = core.CleanString(ns.Address)
	ns.Description = core.CleanString(ns.Description)
	ns.Owner = core.CleanString(ns.Owner)
	ns.Logo = core.CleanString(ns.Logo)
	return validate.Struct(ns)
}

// UpdateSchool defines what information may be provided to modify an existing School.
// An empty Owner or Logo detaches it from the school.
type UpdateSchool struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Username    *string `json:"username" validate:"omitempty,username"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Phone       *string `json:"phone" validate:"omitempty,max=20"`
	Address     *string `json:"address"`
	Description *string `json:"description"`
	Owner       *string `json:"owner"`
	Logo        *string `json:"logo"`
}

func (us *UpdateSchool) Validate(validate *validator.Validate) error {
	us.Name = core.CleanStringPtr(us.Name)
	us.Username = core.CleanStringPtr(us.Username, true /* lower */)
	us.Email = core.CleanStringPtr(us.Email, true /* lower */)
	us.Phone = core.CleanStringPtr(us.Phone)
	us.Address = core.CleanStringPtr(us.Address)
	us.Description = core.CleanStringPtr(us.Description)
	us.Owner = core.CleanStringPtr(us.Owner)
	us.Logo = core.CleanStringPtr(us.Logo)
	return validate.Struct(us)
}

type SchoolView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Address     string    `json:"address"`
	Description string    `json:"description"`
	Owner       string    `json:"owner"`
	Logo        string    `json:"logo"` // URL
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
