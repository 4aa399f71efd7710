package user

import (
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/shule/core"
)

// RoleAdmin is the name of the role granting access to the admin endpoints.
const RoleAdmin = "admin"

// Stored fields
const (
	FieldEmail     core.Field = "email"
	FieldRole      core.Field = "role"
	FieldPhone     core.Field = "phone"
	FieldIsActive  core.Field = "is_active"
	FieldImages    core.Field = "images"
	FieldPassword  core.Field = "password_hash"
	FieldLastLogin core.Field = "last_login"

	FieldRoleName core.Field = "role" // on roles
)

type User struct {
	ID           primitive.ObjectID   `bson:"_id"`
	Name         string               `bson:"name"`
	Username     string               `bson:"username,omitempty"`
	Email        string               `bson:"email"`
	Phone        string               `bson:"phone,omitempty"`
	Role         *primitive.ObjectID  `bson:"role,omitempty"`
	IsActive     bool                 `bson:"is_active"`
	Images       []primitive.ObjectID `bson:"images"` // most recent first
	PasswordHash []byte               `bson:"password_hash"`
	CreatedAt    time.Time            `bson:"created_at"`           // UTC
	UpdatedAt    time.Time            `bson:"updated_at"`           // UTC
	LastLogin    *time.Time           `bson:"last_login,omitempty"` // UTC
}

func (u User) DocID() primitive.ObjectID { return u.ID }

func (u User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	return u.Name
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name            string `json:"name" validate:"required"`
	Username        string `json:"username" validate:"omitempty,min=3,username"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"omitempty,max=20"`
	Role            string `json:"role"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Phone = core.CleanString(nu.Phone)
	nu.Role = core.CleanString(nu.Role)
	return validate.Struct(nu)
}

// UpdateUser defines what information may be provided to modify an existing User.
// An empty Role detaches the user from its role.
type UpdateUser struct {
	Name            *string `json:"name" validate:"omitempty,min=1"`
	Username        *string `json:"username" validate:"omitempty,min=3,username"`
	Email           *string `json:"email" validate:"omitempty,email"`
	Phone           *string `json:"phone" validate:"omitempty,max=20"`
	Role            *string `json:"role"`
	IsActive        *bool   `json:"is_active"`
	Password        string  `json:"password"`
	PasswordConfirm string  `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`
}

func (uu *UpdateUser) Validate(validate *validator.Validate) error {
	uu.Name = core.CleanStringPtr(uu.Name)
	uu.Username = core.CleanStringPtr(uu.Username, true /* lower */)
	uu.Email = core.CleanStringPtr(uu.Email, true /* lower */)
	uu.Phone = core.CleanStringPtr(uu.Phone)
	uu.Role = core.CleanStringPtr(uu.Role)
	return validate.Struct(uu)
}

type ResetUserPassword struct {
	Token           string `json:"token" validate:"required"`
	UID             string `json:"uid" validate:"required"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (rp *ResetUserPassword) Validate(validate *validator.Validate) error {
	return validate.Struct(rp)
}

type UserView struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	Role      string     `json:"role"`
	IsActive  bool       `json:"is_active"`
	Image     string     `json:"image"`  // latest profile image URL
	Images    []string   `json:"images"` // most recent first
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	LastLogin *time.Time `json:"last_login"`
}

type Role struct {
	ID          primitive.ObjectID `bson:"_id"`
	Role        string             `bson:"role"`
	Description string             `bson:"description"`
	CreatedAt   time.Time          `bson:"created_at"` // UTC
	UpdatedAt   time.Time          `bson:"updated_at"` // UTC
}

func (r Role) DocID() primitive.ObjectID { return r.ID }
func (r Role) DisplayName() string       { return r.Role }

type NewRole struct {
	Role        string `json:"role" validate:"required,username"`
	Description string `json:"description"`
}

func (nr *NewRole) Validate(validate *validator.Validate) error {
	nr.Role = core.CleanString(nr.Role, true /* lower */)
	nr.Description = core.CleanString(nr.Description)
	return validate.Struct(nr)
}

type UpdateRole struct {
	Role        *string `json:"role" validate:"omitempty,username"`
	Description *string `json:"description"`
}

func (ur *UpdateRole) Validate(validate *validator.Validate) error {
	ur.Role = core.CleanStringPtr(ur.Role, true /* lower */)
	ur.Description = core.CleanStringPtr(ur.Description)
	return validate.Struct(ur)
}

type RoleView struct {
	ID          string    `json:"id"`
	Role        string    `json:"role"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func formatRole(r Role) RoleView {
	return RoleView{
		ID:          r.ID.Hex(),
		Role:        r.Role,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
