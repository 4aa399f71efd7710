package request

import (
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trezcool/shule/core"
)

// Stored fields
const (
	FieldRole    core.Field = "role"
	FieldEmail   core.Field = "email"
	FieldPhone   core.Field = "phone"
	FieldMessage core.Field = "message"
)

// Request is an inbound contact or sign-up request left by a visitor.
type Request struct {
	ID        primitive.ObjectID `bson:"_id"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Phone     string             `bson:"phone,omitempty"`
	Message   string             `bson:"message"`
	Role      primitive.ObjectID `bson:"role"` // request type
	CreatedAt time.Time          `bson:"created_at"` // UTC
	UpdatedAt time.Time          `bson:"updated_at"` // UTC
}

func (r Request) DocID() primitive.ObjectID { return r.ID }
func (r Request) DisplayName() string       { return r.Name }

type NewRequest struct {
	Name    string `json:"name" validate:"required,max=255"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"omitempty,max=20"`
	Message string `json:"message" validate:"max=5000"`
	Role    string `json:"role" validate:"required"`
}

func (nr *NewRequest) Validate(validate *validator.Validate) error {
	nr.Name = core.CleanString(nr.Name)
	nr.Email = core.CleanString(nr.Email, true /* lower */)
	nr.Phone = core.CleanString(nr.Phone)
	nr.Message = core.CleanString(nr.Message)
	nr.Role = core.CleanString(nr.Role)
	return validate.Struct(nr)
}

type UpdateRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=255"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Phone   *string `json:"phone" validate:"omitempty,max=20"`
	Message *string `json:"message" validate:"omitempty,max=5000"`
	Role    *string `json:"role" validate:"omitempty,min=1"`
}

func (ur *UpdateRequest) Validate(validate *validator.Validate) error {
	ur.Name = core.CleanStringPtr(ur.Name)
	ur.Email = core.CleanStringPtr(ur.Email, true /* lower */)
	ur.Phone = core.CleanStringPtr(ur.Phone)
	ur.Message = core.CleanStringPtr(ur.Message)
	ur.Role = core.CleanStringPtr(ur.Role)
	return validate.Struct(ur)
}

type RequestView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Message   string    `json:"message"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Type struct {
	ID          primitive.ObjectID `bson:"_id"`
	Role        string             `bson:"role"`
	Description string             `bson:"description"`
	CreatedAt   time.Time          `bson:"created_at"` // UTC
	UpdatedAt   time.Time          `bson:"updated_at"` // UTC
}

func (t Type) DocID() primitive.ObjectID { return t.ID }
func (t Type) DisplayName() string       { return t.Role }

type NewType struct {
	Role        string `json:"role" validate:"required,username"`
	Description string `json:"description"`
}

func (nt *NewType) Validate(validate *validator.Validate) error {
	nt.Role = core.CleanString(nt.Role, true /* lower */)
	nt.Description = core.CleanString(nt.Description)
	return validate.Struct(nt)
}

type UpdateType struct {
	Role        *string `json:"role" validate:"omitempty,username"`
	Description *string `json:"description"`
}

func (ut *UpdateType) Validate(validate *validator.Validate) error {
	ut.Role = core.CleanStringPtr(ut.Role, true /* lower */)
	ut.Description = core.CleanStringPtr(ut.Description)
	return validate.Struct(ut)
}

type TypeView struct {
	ID          string    `json:"id"`
	Role        string    `json:"role"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func formatType(t Type) TypeView {
	return TypeView{
		ID:          t.ID.Hex(),
		Role:        t.Role,
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
