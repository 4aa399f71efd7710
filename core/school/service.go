package school

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/file"
	"github.com/trezcool/shule/core/user"
)

type Service struct {
	schools  core.Collection[School]
	owner    core.Ref[user.User]
	logo     core.Ref[file.File]
	files    *file.Service
	validate *validator.Validate
	deps     []core.Dependent
}

func NewService(
	schools core.Collection[School],
	users core.Collection[user.User],
	files core.Collection[file.File],
	fileSvc *file.Service,
	validate *validator.Validate,
	deps ...core.Dependent,
) *Service {
	return &Service{
		schools:  schools,
		owner:    core.NewRef(string(FieldOwner), users),
		logo:     core.NewRef(string(FieldLogo), files),
		files:    fileSvc,
		validate: validate,
		deps:     deps,
	}
}

func (svc *Service) Create(ctx context.Context, ns NewSchool) (SchoolView, error) {
	if err := ns.Validate(svc.validate); err != nil {
		return SchoolView{}, err
	}
	uname, err := core.ClaimUsername(ctx, svc.schools, ns.Username, ns.Name)
	if err != nil {
		return SchoolView{}, err
	}
	ownerID, err := svc.owner.ResolveOptional(ctx, ns.Owner)
	if err != nil {
		return SchoolView{}, err
	}
	logoID, err := svc.logo.ResolveOptional(ctx, ns.Logo)
	if err != nil {
		return SchoolView{}, err
	}

	now := time.Now().UTC()
	s, err := core.Insert(ctx, svc.schools, School{
		ID:          primitive.NewObjectID(),
		Name:        ns.Name,
		Username:    uname,
		Email:       ns.Email,
		Phone:       ns.Phone,
		Address:     ns.Address,
		Description: ns.Description,
		Owner:       ownerID,
		Logo:        logoID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return SchoolView{}, err
	}
	return svc.format(ctx, s)
}

func (svc *Service) Get(ctx context.Context, id string) (SchoolView, error) {
	s, err := core.Fetch(ctx, svc.schools, id)
	if err != nil {
		return SchoolView{}, err
	}
	return svc.format(ctx, s)
}

func (svc *Service) List(ctx context.Context) ([]SchoolView, error) {
	schools, err := svc.schools.GetMany(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying schools")
	}
	return core.FormatAll(ctx, schools, svc.format)
}

func (svc *Service) ListByOwner(ctx context.Context, ownerID string) ([]SchoolView, error) {
	schools, err := core.ListBy(ctx, svc.schools, FieldOwner, svc.owner, ownerID)
	if err != nil {
		return nil, err
	}
	return core.FormatAll(ctx, schools, svc.format)
}

func (svc *Service) Update(ctx context.Context, id string, us UpdateSchool) (SchoolView, error) {
	s, err := core.Fetch(ctx, svc.schools, id)
	if err != nil {
		return SchoolView{}, err
	}
	if err = us.Validate(svc.validate); err != nil {
		return SchoolView{}, err
	}
	if us.Username != nil {
		if err = core.ValidateUnique(ctx, svc.schools, core.FieldUsername, *us.Username, s.ID); err != nil {
			return SchoolView{}, err
		}
	}

	patch := core.NewPatch().
		SetString(core.FieldName, us.Name).
		SetString(core.FieldUsername, us.Username).
		SetString(FieldEmail, us.Email).
		SetString(FieldPhone, us.Phone).
		SetString(FieldAddress, us.Address).
		SetString(core.FieldDescription, us.Description)
	if _, err = svc.owner.Apply(ctx, patch, FieldOwner, us.Owner); err != nil {
		return SchoolView{}, err
	}
	if _, err = svc.logo.Apply(ctx, patch, FieldLogo, us.Logo); err != nil {
		return SchoolView{}, err
	}
	if s, err = core.ApplyPatch(ctx, svc.schools, s.ID, patch); err != nil {
		return SchoolView{}, err
	}
	return svc.format(ctx, s)
}

// SetLogo uploads a new logo for the school. The previous logo file is kept.
func (svc *Service) SetLogo(ctx context.Context, id string, nf file.NewFile, blob core.Blob) (SchoolView, error) {
	s, err := core.Fetch(ctx, svc.schools, id)
	if err != nil {
		return SchoolView{}, err
	}
	f, err := svc.files.Store(ctx, nf, blob)
	if err != nil {
		return SchoolView{}, err
	}
	if s, err = core.ApplyPatch(ctx, svc.schools, s.ID, core.NewPatch().Set(FieldLogo, f.ID)); err != nil {
		return SchoolView{}, err
	}
	return svc.format(ctx, s)
}

func (svc *Service) Delete(ctx context.Context, id string) (SchoolView, error) {
	s, err := core.Remove(ctx, svc.schools, id, svc.deps...)
	if err != nil {
		return SchoolView{}, err
	}
	return svc.format(ctx, s)
}

func (svc *Service) format(ctx context.Context, s School) (SchoolView, error) {
	owner, err := svc.owner.Name(ctx, s.Owner)
	if err != nil {
		return SchoolView{}, err
	}
	logo, err := svc.files.URL(ctx, s.Logo)
	if err != nil {
		return SchoolView{}, err
	}
	return SchoolView{
		ID:          s.ID.Hex(),
		Name:        s.Name,
		Username:    s.Username,
		Email:       s.Email,
		Phone:       s.Phone,
		Address:     s.Address,
		Description: s.Description,
		Owner:       owner,
		Logo:        logo,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}, nil
}
