package academics

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trezcool/shule/core"
)

type EducationService struct {
	educations core.Collection[Education]
	validate   *validator.Validate
	deps       []core.Dependent
}

func NewEducationService(educations core.Collection[Education], validate *validator.Validate, deps ...core.Dependent) *EducationService {
	return &EducationService{educations: educations, validate: validate, deps: deps}
}

func (svc *EducationService) Create(ctx context.Context, ne NewEducation) (EducationView, error) {
	if err := ne.Validate(svc.validate); err != nil {
		return EducationView{}, err
	}
	uname, err := core.ClaimUsername(ctx, svc.educations, ne.Username, ne.Name)
	if err != nil {
		return EducationView{}, err
	}

	now := time.Now().UTC()
	e, err := core.Insert(ctx, svc.educations, Education{
		ID:          primitive.NewObjectID(),
		Name:        ne.Name,
		Username:    uname,
		Description: ne.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return EducationView{}, err
	}
	return formatEducation(e), nil
}

func (svc *EducationService) Get(ctx context.Context, id string) (EducationView, error) {
	e, err := core.Fetch(ctx, svc.educations, id)
	if err != nil {
		return EducationView{}, err
	}
	return formatEducation(e), nil
}

func (svc *EducationService) List(ctx context.Context) ([]EducationView, error) {
	educations, err := svc.educations.GetMany(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying educations")
	}
	views := make([]EducationView, 0, len(educations))
	for _, e := range educations {
		views = append(views, formatEducation(e))
	}
	return views, nil
}

func (svc *EducationService) Update(ctx context.Context, id string, ue UpdateEducation) (EducationView, error) {
	e, err := core.Fetch(ctx, svc.educations, id)
	if err != nil {
		return EducationView{}, err
	}
	if err = ue.Validate(svc.validate); err != nil {
		return EducationView{}, err
	}
	if ue.Username != nil {
		if err = core.ValidateUnique(ctx, svc.educations, core.FieldUsername, *ue.Username, e.ID); err != nil {
			return EducationView{}, err
		}
	}

	patch := core.NewPatch().
		SetString(core.FieldName, ue.Name).
		SetString(core.FieldUsername, ue.Username).
		SetString(core.FieldDescription, ue.Description)
	if e, err = core.ApplyPatch(ctx, svc.educations, e.ID, patch); err != nil {
		return EducationView{}, err
	}
	return formatEducation(e), nil
}

// Delete removes an education no sector belongs to.
func (svc *EducationService) Delete(ctx context.Context, id string) (EducationView, error) {
	e, err := core.Remove(ctx, svc.educations, id, svc.deps...)
	if err != nil {
		return EducationView{}, err
	}
	return formatEducation(e), nil
}
