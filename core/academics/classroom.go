package academics

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/file"
)

var errUsernameMissing = core.NewValidationError(nil, core.FieldError{Field: "username", Error: "username is missing"})

type ClassRoomService struct {
	classrooms    core.Collection[ClassRoom]
	classRoomType core.Ref[ClassRoomType]
	trade         core.Ref[Trade]
	sector        core.Ref[Sector]
	symbol        core.Ref[file.File]
	files         *file.Service
	validate      *validator.Validate
	deps          []core.Dependent
}

func NewClassRoomService(
	classrooms core.Collection[ClassRoom],
	types core.Collection[ClassRoomType],
	trades core.Collection[Trade],
	sectors core.Collection[Sector],
	files core.Collection[file.File],
	fileSvc *file.Service,
	validate *validator.Validate,
	deps ...core.Dependent,
) *ClassRoomService {
	return &ClassRoomService{
		classrooms:    classrooms,
		classRoomType: core.NewRef(string(FieldClassRoomType), types),
		trade:         core.NewRef(string(FieldTrade), trades),
		sector:        core.NewRef(string(FieldSector), sectors),
		symbol:        core.NewRef(string(FieldSymbol), files),
		files:         fileSvc,
		validate:      validate,
		deps:          deps,
	}
}

// Create stores a new class room. An uploaded symbol is stored through the file service
// before the other references are resolved, so a failed create may leave it behind.
func (svc *ClassRoomService) Create(ctx context.Context, nc NewClassRoom, symbol *core.Blob) (ClassRoomView, error) {
	if core.CleanString(nc.Username) == "" {
		return ClassRoomView{}, errUsernameMissing
	}
	if err := nc.Validate(svc.validate); err != nil {
		return ClassRoomView{}, err
	}
	if err := core.ValidateUnique(ctx, svc.classrooms, core.FieldUsername, nc.Username, primitive.NilObjectID); err != nil {
		return ClassRoomView{}, err
	}

	symbolID, err := svc.resolveSymbol(ctx, nc.Symbol, symbol)
	if err != nil {
		return ClassRoomView{}, err
	}
	typeID, err := svc.classRoomType.ResolveOptional(ctx, nc.ClassRoomType)
	if err != nil {
		return ClassRoomView{}, err
	}
	var tradeID *primitive.ObjectID
	if nc.Trade != "" {
		trade, err := svc.trade.Resolve(ctx, nc.Trade)
		if err != nil {
			return ClassRoomView{}, err
		}
		if err = core.CheckCapacity(ctx, svc.classrooms, FieldTrade, trade, trade.ClassRooms); err != nil {
			return ClassRoomView{}, err
		}
		tradeID = &trade.ID
	}
	sectorID, err := svc.sector.ResolveOptional(ctx, nc.Sector)
	if err != nil {
		return ClassRoomView{}, err
	}

	now := time.Now().UTC()
	c, err := core.Insert(ctx, svc.classrooms, ClassRoom{
		ID:            primitive.NewObjectID(),
		Name:          nc.Name,
		Username:      nc.Username,
		Description:   nc.Description,
		Symbol:        symbolID,
		ClassRoomType: typeID,
		Trade:         tradeID,
		Sector:        sectorID,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return ClassRoomView{}, err
	}
	return svc.format(ctx, c)
}

// resolveSymbol stores the uploaded symbol, if any, or resolves the referenced one.
func (svc *ClassRoomService) resolveSymbol(ctx context.Context, raw string, upload *core.Blob) (*primitive.ObjectID, error) {
	if upload == nil {
		return svc.symbol.ResolveOptional(ctx, raw)
	}
	f, err := svc.files.Store(ctx, file.NewFile{}, *upload)
	if err != nil {
		return nil, errors.Wrap(err, "storing symbol")
	}
	return &f.ID, nil
}

func (svc *ClassRoomService) Get(ctx context.Context, id string) (ClassRoomView, error) {
	c, err := core.Fetch(ctx, svc.classrooms, id)
	if err != nil {
		return ClassRoomView{}, err
	}
	return svc.format(ctx, c)
}

func (svc *ClassRoomService) List(ctx context.Context) ([]ClassRoomView, error) {
	classrooms, err := svc.classrooms.GetMany(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying class rooms")
	}
	return core.FormatAll(ctx, classrooms, svc.format)
}

func (svc *ClassRoomService) ListByTrade(ctx context.Context, tradeID string) ([]ClassRoomView, error) {
	classrooms, err := core.ListBy(ctx, svc.classrooms, FieldTrade, svc.trade, tradeID)
	if err != nil {
		return nil, err
	}
	return core.FormatAll(ctx, classrooms, svc.format)
}

func (svc *ClassRoomService) ListBySector(ctx context.Context, sectorID string) ([]ClassRoomView, error) {
	classrooms, err := core.ListBy(ctx, svc.classrooms, FieldSector, svc.sector, sectorID)
	if err != nil {
		return nil, err
	}
	return core.FormatAll(ctx, classrooms, svc.format)
}

func (svc *ClassRoomService) ListByType(ctx context.Context, typeID string) ([]ClassRoomView, error) {
	classrooms, err := core.ListBy(ctx, svc.classrooms, FieldClassRoomType, svc.classRoomType, typeID)
	if err != nil {
		return nil, err
	}
	return core.FormatAll(ctx, classrooms, svc.format)
}

// Update modifies a class room. The trade capacity is only checked when the class room
// moves to another trade.
func (svc *ClassRoomService) Update(ctx context.Context, id string, uc UpdateClassRoom, symbol *core.Blob) (ClassRoomView, error) {
	c, err := core.Fetch(ctx, svc.classrooms, id)
	if err != nil {
		return ClassRoomView{}, err
	}
	if err = uc.Validate(svc.validate); err != nil {
		return ClassRoomView{}, err
	}
	if uc.Username != nil {
		if *uc.Username == "" {
			return ClassRoomView{}, errUsernameMissing
		}
		if err = core.ValidateUnique(ctx, svc.classrooms, core.FieldUsername, *uc.Username, c.ID); err != nil {
			return ClassRoomView{}, err
		}
	}

	patch := core.NewPatch().
		SetString(core.FieldName, uc.Name).
		SetString(core.FieldUsername, uc.Username).
		SetString(core.FieldDescription, uc.Description)
	if _, err = svc.classRoomType.Apply(ctx, patch, FieldClassRoomType, uc.ClassRoomType); err != nil {
		return ClassRoomView{}, err
	}
	trade, err := svc.trade.Apply(ctx, patch, FieldTrade, uc.Trade)
	if err != nil {
		return ClassRoomView{}, err
	}
	if trade != nil && (c.Trade == nil || *c.Trade != trade.ID) {
		if err = core.CheckCapacity(ctx, svc.classrooms, FieldTrade, *trade, trade.ClassRooms); err != nil {
			return ClassRoomView{}, err
		}
	}
	if _, err = svc.sector.Apply(ctx, patch, FieldSector, uc.Sector); err != nil {
		return ClassRoomView{}, err
	}
	if symbol != nil {
		symbolID, err := svc.resolveSymbol(ctx, "", symbol)
		if err != nil {
			return ClassRoomView{}, err
		}
		patch.Set(FieldSymbol, *symbolID)
	} else if _, err = svc.symbol.Apply(ctx, patch, FieldSymbol, uc.Symbol); err != nil {
		return ClassRoomView{}, err
	}

	if c, err = core.ApplyPatch(ctx, svc.classrooms, c.ID, patch); err != nil {
		return ClassRoomView{}, err
	}
	return svc.format(ctx, c)
}

func (svc *ClassRoomService) Delete(ctx context.Context, id string) (ClassRoomView, error) {
	c, err := core.Remove(ctx, svc.classrooms, id, svc.deps...)
	if err != nil {
		return ClassRoomView{}, err
	}
	return svc.format(ctx, c)
}

func (svc *ClassRoomService) format(ctx context.Context, c ClassRoom) (ClassRoomView, error) {
	symbol, err := svc.files.URL(ctx, c.Symbol)
	if err != nil {
		return ClassRoomView{}, err
	}
	classRoomType, err := svc.classRoomType.Name(ctx, c.ClassRoomType)
	if err != nil {
		return ClassRoomView{}, err
	}
	trade, err := svc.trade.Name(ctx, c.Trade)
	if err != nil {
		return ClassRoomView{}, err
	}
	sector, err := svc.sector.Name(ctx, c.Sector)
	if err != nil {
		return ClassRoomView{}, err
	}
	return ClassRoomView{
		ID:            c.ID.Hex(),
		Name:          c.Name,
		Username:      c.Username,
		Description:   c.Description,
		Symbol:        symbol,
		ClassRoomType: classRoomType,
		Trade:         trade,
		Sector:        sector,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}, nil
}
