package academics

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trezcool/shule/core"
)

type ClassRoomTypeService struct {
	types    core.Collection[ClassRoomType]
	validate *validator.Validate
	deps     []core.Dependent
}

func NewClassRoomTypeService(types core.Collection[ClassRoomType], validate *validator.Validate, deps ...core.Dependent) *ClassRoomTypeService {
	return &ClassRoomTypeService{types: types, validate: validate, deps: deps}
}

func (svc *ClassRoomTypeService) Create(ctx context.Context, nt NewClassRoomType) (ClassRoomTypeView, error) {
	if err := nt.Validate(svc.validate); err != nil {
		return ClassRoomTypeView{}, err
	}
	uname, err := core.ClaimUsername(ctx, svc.types, nt.Username, nt.Name)
	if err != nil {
		return ClassRoomTypeView{}, err
	}

	now := time.Now().UTC()
	t, err := core.Insert(ctx, svc.types, ClassRoomType{
		ID:          primitive.NewObjectID(),
		Name:        nt.Name,
		Username:    uname,
		Description: nt.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return ClassRoomTypeView{}, err
	}
	return formatClassRoomType(t), nil
}

func (svc *ClassRoomTypeService) Get(ctx context.Context, id string) (ClassRoomTypeView, error) {
	t, err := core.Fetch(ctx, svc.types, id)
	if err != nil {
		return ClassRoomTypeView{}, err
	}
	return formatClassRoomType(t), nil
}

func (svc *ClassRoomTypeService) List(ctx context.Context) ([]ClassRoomTypeView, error) {
	types, err := svc.types.GetMany(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying class room types")
	}
	views := make([]ClassRoomTypeView, 0, len(types))
	for _, t := range types {
		views = append(views, formatClassRoomType(t))
	}
	return views, nil
}

func (svc *ClassRoomTypeService) Update(ctx context.Context, id string, ut UpdateClassRoomType) (ClassRoomTypeView, error) {
	t, err := core.Fetch(ctx, svc.types, id)
	if err != nil {
		return ClassRoomTypeView{}, err
	}
	if err = ut.Validate(svc.validate); err != nil {
		return ClassRoomTypeView{}, err
	}
	if ut.Username != nil {
		if err = core.ValidateUnique(ctx, svc.types, core.FieldUsername, *ut.Username, t.ID); err != nil {
			return ClassRoomTypeView{}, err
		}
	}

	patch := core.NewPatch().
		SetString(core.FieldName, ut.Name).
		SetString(core.FieldUsername, ut.Username).
		SetString(core.FieldDescription, ut.Description)
	if t, err = core.ApplyPatch(ctx, svc.types, t.ID, patch); err != nil {
		return ClassRoomTypeView{}, err
	}
	return formatClassRoomType(t), nil
}

func (svc *ClassRoomTypeService) Delete(ctx context.Context, id string) (ClassRoomTypeView, error) {
	t, err := core.Remove(ctx, svc.types, id, svc.deps...)
	if err != nil {
		return ClassRoomTypeView{}, err
	}
	return formatClassRoomType(t), nil
}
