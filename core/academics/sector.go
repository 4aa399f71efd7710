package academics

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trezcool/shule/core"
)

type SectorService struct {
	sectors   core.Collection[Sector]
	education core.Ref[Education]
	validate  *validator.Validate
	deps      []core.Dependent
}

func NewSectorService(
	sectors core.Collection[Sector],
	educations core.Collection[Education],
	validate *validator.Validate,
	deps ...core.Dependent,
) *SectorService {
	return &SectorService{
		sectors:   sectors,
		education: core.NewRef(string(FieldEducation), educations),
		validate:  validate,
		deps:      deps,
	}
}

func (svc *SectorService) Create(ctx context.Context, ns NewSector) (SectorView, error) {
	if err := ns.Validate(svc.validate); err != nil {
		return SectorView{}, err
	}
	uname, err := core.ClaimUsername(ctx, svc.sectors, ns.Username, ns.Name)
	if err != nil {
		return SectorView{}, err
	}
	educationID, err := svc.education.ResolveID(ctx, ns.Education)
	if err != nil {
		return SectorView{}, err
	}

	now := time.Now().UTC()
	s, err := core.Insert(ctx, svc.sectors, Sector{
		ID:          primitive.NewObjectID(),
		Name:        ns.Name,
		Username:    uname,
		Description: ns.Description,
		Education:   educationID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return SectorView{}, err
	}
	return svc.format(ctx, s)
}

func (svc *SectorService) Get(ctx context.Context, id string) (SectorView, error) {
	s, err := core.Fetch(ctx, svc.sectors, id)
	if err != nil {
		return SectorView{}, err
	}
	return svc.format(ctx, s)
}

func (svc *SectorService) List(ctx context.Context) ([]SectorView, error) {
	sectors, err := svc.sectors.GetMany(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying sectors")
	}
	return core.FormatAll(ctx, sectors, svc.format)
}

func (svc *SectorService) ListByEducation(ctx context.Context, educationID string) ([]SectorView, error) {
	sectors, err := core.ListBy(ctx, svc.sectors, FieldEducation, svc.education, educationID)
	if err != nil {
		return nil, err
	}
	return core.FormatAll(ctx, sectors, svc.format)
}

func (svc *SectorService) Update(ctx context.Context, id string, us UpdateSector) (SectorView, error) {
	s, err := core.Fetch(ctx, svc.sectors, id)
	if err != nil {
		return SectorView{}, err
	}
	if err = us.Validate(svc.validate); err != nil {
		return SectorView{}, err
	}
	if us.Username != nil {
		if err = core.ValidateUnique(ctx, svc.sectors, core.FieldUsername, *us.Username, s.ID); err != nil {
			return SectorView{}, err
		}
	}

	patch := core.NewPatch().
		SetString(core.FieldName, us.Name).
		SetString(core.FieldUsername, us.Username).
		SetString(core.FieldDescription, us.Description)
	if _, err = svc.education.Apply(ctx, patch, FieldEducation, us.Education); err != nil {
		return SectorView{}, err
	}
	if s, err = core.ApplyPatch(ctx, svc.sectors, s.ID, patch); err != nil {
		return SectorView{}, err
	}
	return svc.format(ctx, s)
}

func (svc *SectorService) Delete(ctx context.Context, id string) (SectorView, error) {
	s, err := core.Remove(ctx, svc.sectors, id, svc.deps...)
	if err != nil {
		return SectorView{}, err
	}
	return svc.format(ctx, s)
}

func (svc *SectorService) format(ctx context.Context, s Sector) (SectorView, error) {
	education, err := svc.education.Name(ctx, &s.Education)
	if err != nil {
		return SectorView{}, err
	}
	return SectorView{
		ID:          s.ID.Hex(),
		Name:        s.Name,
		Username:    s.Username,
		Description: s.Description,
		Education:   education,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}, nil
}
