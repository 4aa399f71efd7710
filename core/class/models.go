package class

import (
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trezcool/shule/core"
)

// Stored reference fields
const (
	FieldSchool   core.Field = "school"
	FieldTeacher  core.Field = "teacher"
	FieldTeachers core.Field = "teachers"
	FieldStudents core.Field = "students"
	FieldClass    core.Field = "class"
)

type Class struct {
	ID          primitive.ObjectID   `bson:"_id"`
	Name        string               `bson:"name"`
	Username    string               `bson:"username"`
	Description string               `bson:"description"`
	School      *primitive.ObjectID  `bson:"school,omitempty"`
	Teacher     primitive.ObjectID   `bson:"teacher"` // main teacher
	Teachers    []primitive.ObjectID `bson:"teachers"`
	Students    []primitive.ObjectID `bson:"students"`
	CreatedAt   time.Time            `bson:"created_at"` // UTC
	UpdatedAt   time.Time            `bson:"updated_at"` // UTC
}

func (c Class) DocID() primitive.ObjectID { return c.ID }

func (c Class) DisplayName() string {
	if c.Username != "" {
		return c.Username
	}
	return c.Name
}

// NewClass contains information needed to create a new Class.
// Teachers and Students seed its rosters; duplicates are dropped.
type NewClass struct {
	Name        string   `json:"name" validate:"required,max=100"`
	Username    string   `json:"username" validate:"omitempty,username"`
	Description string   `json:"description"`
	School      string   `json:"school"`
	Teacher     string   `json:"teacher" validate:"required"`
	Teachers    []string `json:"teachers"`
	Students    []string `json:"students"`
}

func (nc *NewClass) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Username = core.CleanString(nc.Username, true /* lower */)
	nc.Description = core.CleanString(nc.Description)
	nc.School = core.CleanString(nc.School)
	nc.Teacher = core.CleanString(nc.Teacher)
	return validate.Struct(nc)
}

// UpdateClass defines what information may be provided to modify an existing Class.
// Rosters are changed through the dedicated add/remove operations.
type UpdateClass struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Username    *string `json:"username" validate:"omitempty,username"`
	Description *string `json:"description"`
	School      *string `json:"school"`
	Teacher     *string `json:"teacher" validate:"omitempty,min=1"`
}

func (uc *UpdateClass) Validate(validate *validator.Validate) error {
	uc.Name = core.CleanStringPtr(uc.Name)
	uc.Username = core.CleanStringPtr(uc.Username, true /* lower */)
	uc.Description = core.CleanStringPtr(uc.Description)
	uc.School = core.CleanStringPtr(uc.School)
	uc.Teacher = core.CleanStringPtr(uc.Teacher)
	return validate.Struct(uc)
}

type ClassView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Username    string    `json:"username"`
	Description string    `json:"description"`
	School      string    `json:"school"`
	Teacher     string    `json:"teacher"`
	Teachers    []string  `json:"teachers"`
	Students    []string  `json:"students"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Group struct {
	ID          primitive.ObjectID   `bson:"_id"`
	Name        string               `bson:"name"`
	Description string               `bson:"description"`
	Class       primitive.ObjectID   `bson:"class"`
	Students    []primitive.ObjectID `bson:"students"`
	CreatedAt   time.Time            `bson:"created_at"` // UTC
	UpdatedAt   time.Time            `bson:"updated_at"` // UTC
}

func (g Group) DocID() primitive.ObjectID { return g.ID }
func (g Group) DisplayName() string       { return g.Name }

type NewGroup struct {
	Name        string   `json:"name" validate:"required,max=100"`
	Description string   `json:"description"`
	Class       string   `json:"class" validate:"required"`
	Students    []string `json:"students"`
}

func (ng *NewGroup) Validate(validate *validator.Validate) error {
	ng.Name = core.CleanString(ng.Name)
	ng.Description = core.CleanString(ng.Description)
	ng.Class = core.CleanString(ng.Class)
	return validate.Struct(ng)
}

type UpdateGroup struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description"`
	Class       *string `json:"class" validate:"omitempty,min=1"`
}

func (ug *UpdateGroup) Validate(validate *validator.Validate) error {
	ug.Name = core.CleanStringPtr(ug.Name)
	ug.Description = core.CleanStringPtr(ug.Description)
	ug.Class = core.CleanStringPtr(ug.Class)
	return validate.Struct(ug)
}

type GroupView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Class       string    `json:"class"`
	Students    []string  `json:"students"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
