package subject

import (
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trezcool/shule/core"
)

// Stored reference fields
const (
	FieldClassRoom   core.Field = "class_room"
	FieldSubjectType core.Field = "subject_type"
	FieldBooks       core.Field = "books"
)

type Subject struct {
	ID          primitive.ObjectID   `bson:"_id"`
	Name        string               `bson:"name"`
	Username    string               `bson:"username"`
	Description string               `bson:"description"`
	ClassRoom   *primitive.ObjectID  `bson:"class_room,omitempty"`
	SubjectType *primitive.ObjectID  `bson:"subject_type,omitempty"`
	Books       []primitive.ObjectID `bson:"books"` // files
	CreatedAt   time.Time            `bson:"created_at"` // UTC
	UpdatedAt   time.Time            `bson:"updated_at"` // UTC
}

func (s Subject) DocID() primitive.ObjectID { return s.ID }
func (s Subject) DisplayName() string       { return displayName(s.Username, s.Name) }

type NewSubject struct {
	Name        string   `json:"name" validate:"required,max=100"`
	Username    string   `json:"username" validate:"omitempty,username"`
	Description string   `json:"description"`
	ClassRoom   string   `json:"class_room"`
	SubjectType string   `json:"subject_type"`
	Books       []string `json:"books"`
}

func (ns *NewSubject) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Username = core.CleanString(ns.Username, true /* lower */)
	ns.Description = core.CleanString(ns.Description)
	ns.ClassRoom = core.CleanString(ns.ClassRoom)
	ns.SubjectType = core.CleanString(ns.SubjectType)
	return validate.Struct(ns)
}

// UpdateSubject defines what information may be provided to modify an existing Subject.
// Books are changed through the dedicated add/remove operations.
type UpdateSubject struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Username    *string `json:"username" validate:"omitempty,username"`
	Description *string `json:"description"`
	ClassRoom   *string `json:"class_room"`
	SubjectType *string `json:"subject_type"`
}

func (us *UpdateSubject) Validate(validate *validator.Validate) error {
	us.Name = core.CleanStringPtr(us.Name)
	us.Username = core.CleanStringPtr(us.Username, true /* lower */)
	us.Description = core.CleanStringPtr(us.Description)
	us.ClassRoom = core.CleanStringPtr(us.ClassRoom)
	us.SubjectType = core.CleanStringPtr(us.SubjectType)
	return validate.Struct(us)
}

type SubjectView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Username    string    `json:"username"`
	Description string    `json:"description"`
	ClassRoom   string    `json:"class_room"`
	SubjectType string    `json:"subject_type"`
	Books       []string  `json:"books"` // URLs
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Type struct {
	ID          primitive.ObjectID `bson:"_id"`
	Name        string             `bson:"name"`
	Username    string             `bson:"username"`
	Description string             `bson:"description"`
	CreatedAt   time.Time          `bson:"created_at"` // UTC
	UpdatedAt   time.Time          `bson:"updated_at"` // UTC
}

func (t Type) DocID() primitive.ObjectID { return t.ID }
func (t Type) DisplayName() string       { return displayName(t.Username, t.Name) }

type NewType struct {
	Name        string `json:"name" validate:"required,alphanum_"`
	Username    string `json:"username" validate:"omitempty,username"`
	Description string `json:"description"`
}

func (nt *NewType) Validate(validate *validator.Validate) error {
	nt.Name = core.CleanString(nt.Name)
	nt.Username = core.CleanString(nt.Username, true /* lower */)
	nt.Description = core.CleanString(nt.Description)
	return validate.Struct(nt)
}

type UpdateType struct {
	Name        *string `json:"name" validate:"omitempty,alphanum_"`
	Username    *string `json:"username" validate:"omitempty,username"`
	Description *string `json:"description"`
}

func (ut *UpdateType) Validate(validate *validator.Validate) error {
	ut.Name = core.CleanStringPtr(ut.Name)
	ut.Username = core.CleanStringPtr(ut.Username, true /* lower */)
	ut.Description = core.CleanStringPtr(ut.Description)
	return validate.Struct(ut)
}

type TypeView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Username    string    `json:"username"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func formatType(t Type) TypeView {
	return TypeView{
		ID:          t.ID.Hex(),
		Name:        t.Name,
		Username:    t.Username,
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func displayName(username, name string) string {
	if username != "" {
		return username
	}
	return name
}
