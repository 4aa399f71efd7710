package request

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trezcool/shule/core"
)

type TypeService struct {
	types    core.Collection[Type]
	validate *validator.Validate
	deps     []core.Dependent
}

func NewTypeService(types core.Collection[Type], validate *validator.Validate, deps ...core.Dependent) *TypeService {
	return &TypeService{types: types, validate: validate, deps: deps}
}

func (svc *TypeService) Create(ctx context.Context, nt NewType) (TypeView, error) {
	if err := nt.Validate(svc.validate); err != nil {
		return TypeView{}, err
	}
	if err := core.ValidateUnique(ctx, svc.types, FieldRole, nt.Role, primitive.NilObjectID); err != nil {
		return TypeView{}, err
	}

	now := time.Now().UTC()
	t, err := core.Insert(ctx, svc.types, Type{
		ID:          primitive.NewObjectID(),
		Role:        nt.Role,
		Description: nt.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return TypeView{}, err
	}
	return formatType(t), nil
}

func (svc *TypeService) Get(ctx context.Context, id string) (TypeView, error) {
	t, err := core.Fetch(ctx, svc.types, id)
	if err != nil {
		return TypeView{}, err
	}
	return formatType(t), nil
}

func (svc *TypeService) List(ctx context.Context) ([]TypeView, error) {
	types, err := svc.types.GetMany(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying request types")
	}
	views := make([]TypeView, 0, len(types))
	for _, t := range types {
		views = append(views, formatType(t))
	}
	return views, nil
}

func (svc *TypeService) Update(ctx context.Context, id string, ut UpdateType) (TypeView, error) {
	t, err := core.Fetch(ctx, svc.types, id)
	if err != nil {
		return TypeView{}, err
	}
	if err = ut.Validate(svc.validate); err != nil {
		return TypeView{}, err
	}
	if ut.Role != nil {
		if err = core.ValidateUnique(ctx, svc.types, FieldRole, *ut.Role, t.ID); err != nil {
			return TypeView{}, err
		}
	}

	patch := core.NewPatch().
		SetString(FieldRole, ut.Role).
		SetString(core.FieldDescription, ut.Description)
	if t, err = core.ApplyPatch(ctx, svc.types, t.ID, patch); err != nil {
		return TypeView{}, err
	}
	return formatType(t), nil
}

func (svc *TypeService) Delete(ctx context.Context, id string) (TypeView, error) {
	t, err := core.Remove(ctx, svc.types, id, svc.deps...)
	if err != nil {
		return TypeView{}, err
	}
	return formatType(t), nil
}
