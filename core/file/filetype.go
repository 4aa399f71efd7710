package file

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trezcool/shule/core"
)

type TypeService struct {
	types    core.Collection[FileType]
	validate *validator.Validate
	deps     []core.Dependent
}

func NewTypeService(types core.Collection[FileType], validate *validator.Validate, deps ...core.Dependent) *TypeService {
	return &TypeService{types: types, validate: validate, deps: deps}
}

func (svc *TypeService) Create(ctx context.Context, nt NewFileType) (FileTypeView, error) {
	if err := nt.Validate(svc.validate); err != nil {
		return FileTypeView{}, err
	}
	uname, err := core.ClaimUsername(ctx, svc.types, nt.Username, nt.Name)
	if err != nil {
		return FileTypeView{}, err
	}

	now := time.Now().UTC()
	ft, err := core.Insert(ctx, svc.types, FileType{
		ID:          primitive.NewObjectID(),
		Name:        nt.Name,
		Username:    uname,
		Description: nt.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return FileTypeView{}, err
	}
	return formatFileType(ft), nil
}

func (svc *TypeService) Get(ctx context.Context, id string) (FileTypeView, error) {
	ft, err := core.Fetch(ctx, svc.types, id)
	if err != nil {
		return FileTypeView{}, err
	}
	return formatFileType(ft), nil
}

func (svc *TypeService) List(ctx context.Context) ([]FileTypeView, error) {
	types, err := svc.types.GetMany(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying file types")
	}
	views := make([]FileTypeView, 0, len(types))
	for _, ft := range types {
		views = append(views, formatFileType(ft))
	}
	return views, nil
}

func (svc *TypeService) Update(ctx context.Context, id string, ut UpdateFileType) (FileTypeView, error) {
	ft, err := core.Fetch(ctx, svc.types, id)
	if err != nil {
		return FileTypeView{}, err
	}
	if err = ut.Validate(svc.validate); err != nil {
		return FileTypeView{}, err
	}
	if ut.Username != nil {
		if err = core.ValidateUnique(ctx, svc.types, core.FieldUsername, *ut.Username, ft.ID); err != nil {
			return FileTypeView{}, err
		}
	}

	patch := core.NewPatch().
		SetString(core.FieldName, ut.Name).
		SetString(core.FieldUsername, ut.Username).
		SetString(core.FieldDescription, ut.Description)
	if ft, err = core.ApplyPatch(ctx, svc.types, ft.ID, patch); err != nil {
		return FileTypeView{}, err
	}
	return formatFileType(ft), nil
}

func (svc *TypeService) Delete(ctx context.Context, id string) (FileTypeView, error) {
	ft, err := core.Remove(ctx, svc.types, id, svc.deps...)
	if err != nil {
		return FileTypeView{}, err
	}
	return formatFileType(ft), nil
}
