package academics

import (
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trezcool/shule/core"
)

// Stored reference fields
const (
	FieldEducation     core.Field = "education"
	FieldSector        core.Field = "sector"
	FieldTrade         core.Field = "trade"
	FieldClassRoomType core.Field = "class_room_type"
	FieldSymbol        core.Field = "symbol"
	FieldClassRooms    core.Field = "class_rooms"
)

type Education struct {
	ID          primitive.ObjectID `bson:"_id"`
	Name        string             `bson:"name"`
	Username    string             `bson:"username"`
	Description string             `bson:"description"`
	CreatedAt   time.Time          `bson:"created_at"` // UTC
	UpdatedAt   time.Time          `bson:"updated_at"` // UTC
}

func (e Education) DocID() primitive.ObjectID { return e.ID }
func (e Education) DisplayName() string       { return displayName(e.Username, e.Name) }

// NewEducation contains information needed to create a new Education.
// Username is generated from Name when absent.
type NewEducation struct {
	Name        string `json:"name" validate:"required,max=100"`
	Username    string `json:"username" validate:"omitempty,username"`
	Description string `json:"description"`
}

func (ne *NewEducation) Validate(validate *validator.Validate) error {
	ne.Name = core.CleanString(ne.Name)
	ne.Username = core.CleanString(ne.Username, true /* lower */)
	ne.Description = core.CleanString(ne.Description)
	return validate.Struct(ne)
}

type UpdateEducation struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Username    *string `json:"username" validate:"omitempty,username"`
	Description *string `json:"description"`
}

func (ue *UpdateEducation) Validate(validate *validator.Validate) error {
	ue.Name = core.CleanStringPtr(ue.Name)
	ue.Username = core.CleanStringPtr(ue.Username, true /* lower */)
	ue.Description = core.CleanStringPtr(ue.Description)
	return validate.Struct(ue)
}

type EducationView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Username    string    `json:"username"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func formatEducation(e Education) EducationView {
	return EducationView{
		ID:          e.ID.Hex(),
		Name:        e.Name,
		Username:    e.Username,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

type Sector struct {
	ID          primitive.ObjectID `bson:"_id"`
	Name        string             `bson:"name"`
	Username    string             `bson:"username"`
	Description string             `bson:"description"`
	Education   primitive.ObjectID `bson:"education"`
	CreatedAt   time.Time          `bson:"created_at"` // UTC
	UpdatedAt   time.Time          `bson:"updated_at"` // UTC
}

func (s Sector) DocID() primitive.ObjectID { return s.ID }
func (s Sector) DisplayName() string       { return displayName(s.Username, s.Name) }

type NewSector struct {
	Name        string `json:"name" validate:"required,max=100"`
	Username    string `json:"username" validate:"omitempty,username"`
	Description string `json:"description"`
	Education   string `json:"education" validate:"required"`
}

func (ns *NewSector) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Username = core.CleanString(ns.Username, true /* lower */)
	ns.Description = core.CleanString(ns.Description)
	ns.Education = core.CleanString(ns.Education)
	return validate.Struct(ns)
}

// UpdateSector defines what information may be provided to modify an existing Sector.
// The education of a sector can be changed, never removed.
type UpdateSector struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Username    *string `json:"username" validate:"omitempty,username"`
	Description *string `json:"description"`
	Education   *string `json:"education" validate:"omitempty,min=1"`
}

func (us *UpdateSector) Validate(validate *validator.Validate) error {
	us.Name = core.CleanStringPtr(us.Name)
	us.Username = core.CleanStringPtr(us.Username, true /* lower */)
	us.Description = core.CleanStringPtr(us.Description)
	us.Education = core.CleanStringPtr(us.Education)
	return validate.Struct(us)
}

type SectorView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Username    string    `json:"username"`
	Description string    `json:"description"`
	Education   string    `json:"education"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Trade struct {
	ID          primitive.ObjectID `bson:"_id"`
	Name        string             `bson:"name"`
	Username    string             `bson:"username"`
	Description string             `bson:"description"`
	Sector      primitive.ObjectID `bson:"sector"`
	ClassRooms  *int               `bson:"class_rooms,omitempty"` // max number of class rooms, unbounded if nil
	CreatedAt   time.Time          `bson:"created_at"`            // UTC
	UpdatedAt   time.Time          `bson:"updated_at"`            // UTC
}

func (t Trade) DocID() primitive.ObjectID { return t.ID }
func (t Trade) DisplayName() string       { return displayName(t.Username, t.Name) }

type NewTrade struct {
	Name        string `json:"name" validate:"required,max=100"`
	Username    string `json:"username" validate:"omitempty,username"`
	Description string `json:"description"`
	Sector      string `json:"sector" validate:"required"`
	ClassRooms  *int   `json:"class_rooms" validate:"omitempty,min=0"`
}

func (nt *NewTrade) Validate(validate *validator.Validate) error {
	nt.Name = core.CleanString(nt.Name)
	nt.Username = core.CleanString(nt.Username, true /* lower */)
	nt.Description = core.CleanString(nt.Description)
	nt.Sector = core.CleanString(nt.Sector)
	return validate.Struct(nt)
}

type UpdateTrade struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Username    *string `json:"username" validate:"omitempty,username"`
	Description *string `json:"description"`
	Sector      *string `json:"sector" validate:"omitempty,min=1"`
	ClassRooms  *int    `json:"class_rooms" validate:"omitempty,min=0"`
}

func (ut *UpdateTrade) Validate(validate *validator.Validate) error {
	ut.Name = core.CleanStringPtr(ut.Name)
	ut.Username = core.CleanStringPtr(ut.Username, true /* lower */)
	ut.Description = core.CleanStringPtr(ut.Description)
	ut.Sector = core.CleanStringPtr(ut.Sector)
	return validate.Struct(ut)
}

type TradeView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Username    string    `json:"username"`
	Description string    `json:"description"`
	Sector      string    `json:"sector"`
	ClassRooms  *int      `json:"class_rooms"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ClassRoomType struct {
	ID          primitive.ObjectID `bson:"_id"`
	Name        string             `bson:"name"`
	Username    string             `bson:"username"`
	Description string             `bson:"description"`
	CreatedAt   time.Time          `bson:"created_at"` // UTC
	UpdatedAt   time.Time          `bson:"updated_at"` // UTC
}

func (t ClassRoomType) DocID() primitive.ObjectID { return t.ID }
func (t ClassRoomType) DisplayName() string       { return displayName(t.Username, t.Name) }

type NewClassRoomType struct {
	Name        string `json:"name" validate:"required,alphanum_"`
	Username    string `json:"username" validate:"omitempty,username"`
	Description string `json:"description"`
}

func (nt *NewClassRoomType) Validate(validate *validator.Validate) error {
	nt.Name = core.CleanString(nt.Name)
	nt.Username = core.CleanString(nt.Username, true /* lower */)
	nt.Description = core.CleanString(nt.Description)
	return validate.Struct(nt)
}

type UpdateClassRoomType struct {
	Name        *string `json:"name" validate:"omitempty,alphanum_"`
	Username    *string `json:"username" validate:"omitempty,username"`
	Description *string `json:"description"`
}

func (ut *UpdateClassRoomType) Validate(validate *validator.Validate) error {
	ut.Name = core.CleanStringPtr(ut.Name)
	ut.Username = core.CleanStringPtr(ut.Username, true /* lower */)
	ut.Description = core.CleanStringPtr(ut.Description)
	return validate.Struct(ut)
}

type ClassRoomTypeView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Username    string    `json:"username"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func formatClassRoomType(t ClassRoomType) ClassRoomTypeView {
	return ClassRoomTypeView{
		ID:          t.ID.Hex(),
		Name:        t.Name,
		Username:    t.Username,
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

type ClassRoom struct {
	ID            primitive.ObjectID  `bson:"_id"`
	Name          string              `bson:"name"`
	Username      string              `bson:"username"`
	Description   string              `bson:"description"`
	Symbol        *primitive.ObjectID `bson:"symbol,omitempty"`
	ClassRoomType *primitive.ObjectID `bson:"class_room_type,omitempty"`
	Trade         *primitive.ObjectID `bson:"trade,omitempty"`
	Sector        *primitive.ObjectID `bson:"sector,omitempty"`
	CreatedAt     time.Time           `bson:"created_at"` // UTC
	UpdatedAt     time.Time           `bson:"updated_at"` // UTC
}

func (c ClassRoom) DocID() primitive.ObjectID { return c.ID }
func (c ClassRoom) DisplayName() string       { return displayName(c.Username, c.Name) }

// NewClassRoom contains information needed to create a new ClassRoom.
// Symbol references an existing File; an uploaded symbol takes precedence over it.
type NewClassRoom struct {
	Name          string `json:"name" form:"name" validate:"required,max=100"`
	Username      string `json:"username" form:"username" validate:"omitempty,username"`
	Description   string `json:"description" form:"description"`
	Symbol        string `json:"symbol" form:"symbol"`
	ClassRoomType string `json:"class_room_type" form:"class_room_type"`
	Trade         string `json:"trade" form:"trade"`
	Sector        string `json:"sector" form:"sector"`
}

func (nc *NewClassRoom) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Username = core.CleanString(nc.Username, true /* lower */)
	nc.Description = core.CleanString(nc.Description)
	nc.Symbol = core.CleanString(nc.Symbol)
	nc.ClassRoomType = core.CleanString(nc.ClassRoomType)
	nc.Trade = core.CleanString(nc.Trade)
	nc.Sector = core.CleanString(nc.Sector)
	return validate.Struct(nc)
}

// UpdateClassRoom defines what information may be provided to modify an existing ClassRoom.
// An empty reference detaches the class room from the referenced document.
type UpdateClassRoom struct {
	Name          *string `json:"name" form:"name" validate:"omitempty,min=1,max=100"`
	Username      *string `json:"username" form:"username" validate:"omitempty,username"`
	Description   *string `json:"description" form:"description"`
	Symbol        *string `json:"symbol" form:"symbol"`
	ClassRoomType *string `json:"class_room_type" form:"class_room_type"`
	Trade         *string `json:"trade" form:"trade"`
	Sector        *string `json:"sector" form:"sector"`
}

func (uc *UpdateClassRoom) Validate(validate *validator.Validate) error {
	uc.Name = core.CleanStringPtr(uc.Name)
	uc.Username = core.CleanStringPtr(uc.Username, true /* lower */)
	uc.Description = core.CleanStringPtr(uc.Description)
	uc.Symbol = core.CleanStringPtr(uc.Symbol)
	uc.ClassRoomType = core.CleanStringPtr(uc.ClassRoomType)
	uc.Trade = core.CleanStringPtr(uc.Trade)
	uc.Sector = core.CleanStringPtr(uc.Sector)
	return validate.Struct(uc)
}

type ClassRoomView struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Username      string    `json:"username"`
	Description   string    `json:"description"`
	Symbol        string    `json:"symbol"` // URL
	ClassRoomType string    `json:"class_room_type"`
	Trade         string    `json:"trade"`
	Sector        string    `json:"sector"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func displayName(username, name string) string {
	if username != "" {
		return username
	}
	return name
}
