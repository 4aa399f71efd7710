package file

import (
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trezcool/shule/core"
)

// FieldType references the FileType of a File.
const FieldType core.Field = "type"

type File struct {
	ID          primitive.ObjectID  `bson:"_id"`
	Name        string              `bson:"name"`
	Key         string              `bson:"key"` // blob store key
	URL         string              `bson:"url"`
	ContentType string              `bson:"content_type"`
	Size        int64               `bson:"size"`
	Type        *primitive.ObjectID `bson:"type,omitempty"`
	CreatedAt   time.Time           `bson:"created_at"` // UTC
	UpdatedAt   time.Time           `bson:"updated_at"` // UTC
}

func (f File) DocID() primitive.ObjectID { return f.ID }
func (f File) DisplayName() string       { return f.Name }

// NewFile holds the metadata sent along an uploaded file.
type NewFile struct {
	Name string `json:"name" form:"name" validate:"omitempty,max=255"`
	Type string `json:"type" form:"type"`
}

func (nf *NewFile) Validate(validate *validator.Validate) error {
	nf.Name = core.CleanString(nf.Name)
	nf.Type = core.CleanString(nf.Type)
	return validate.Struct(nf)
}

// UpdateFile defines what information may be provided to modify an existing File.
// An empty Type detaches the file from its type.
type UpdateFile struct {
	Name *string `json:"name" validate:"omitempty,min=1,max=255"`
	Type *string `json:"type"`
}

func (uf *UpdateFile) Validate(validate *validator.Validate) error {
	uf.Name = core.CleanStringPtr(uf.Name)
	uf.Type = core.CleanStringPtr(uf.Type)
	return validate.Struct(uf)
}

type FileView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Type        string    `json:"type"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type FileType struct {
	ID          primitive.ObjectID `bson:"_id"`
	Name        string             `bson:"name"`
	Username    string             `bson:"username"`
	Description string             `bson:"description"`
	CreatedAt   time.Time          `bson:"created_at"` // UTC
	UpdatedAt   time.Time          `bson:"updated_at"` // UTC
}

func (ft FileType) DocID() primitive.ObjectID { return ft.ID }
func (ft FileType) DisplayName() string       { return ft.Username }

// NewFileType contains information needed to create a new FileType.
// Username is generated from Name when absent.
type NewFileType struct {
	Name        string `json:"name" validate:"required,alphanum_"`
	Username    string `json:"username" validate:"omitempty,username"`
	Description string `json:"description"`
}

func (nt *NewFileType) Validate(validate *validator.Validate) error {
	nt.Name = core.CleanString(nt.Name)
	nt.Username = core.CleanString(nt.Username, true /* lower */)
	nt.Description = core.CleanString(nt.Description)
	return validate.Struct(nt)
}

type UpdateFileType struct {
	Name        *string `json:"name" validate:"omitempty,alphanum_"`
	Username    *string `json:"username" validate:"omitempty,username"`
	Description *string `json:"description"`
}

func (ut *UpdateFileType) Validate(validate *validator.Validate) error {
	ut.Name = core.CleanStringPtr(ut.Name)
	ut.Username = core.CleanStringPtr(ut.Username, true /* lower */)
	ut.Description = core.CleanStringPtr(ut.Description)
	return validate.Struct(ut)
}

type FileTypeView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Username    string    `json:"username"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func formatFileType(ft FileType) FileTypeView {
	return FileTypeView{
		ID:          ft.ID.Hex(),
		Name:        ft.Name,
		Username:    ft.Username,
		Description: ft.Description,
		CreatedAt:   ft.CreatedAt,
		UpdatedAt:   ft.UpdatedAt,
	}
}
