package subject

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/academics"
	"github.com/trezcool/shule/core/file"
)

type Service struct {
	subjects    core.Collection[Subject]
	classRoom   core.Ref[academics.ClassRoom]
	subjectType core.Ref[Type]
	book        core.Ref[file.File]
	files       *file.Service
	validate    *validator.Validate
}

func NewService(
	subjects core.Collection[Subject],
	classrooms core.Collection[academics.ClassRoom],
	types core.Collection[Type],
	files core.Collection[file.File],
	fileSvc *file.Service,
	validate *validator.Validate,
) *Service {
	return &Service{
		subjects:    subjects,
		classRoom:   core.NewRef(string(FieldClassRoom), classrooms),
		subjectType: core.NewRef(string(FieldSubjectType), types),
		book:        core.NewRef("book", files),
		files:       fileSvc,
		validate:    validate,
	}
}

func (svc *Service) Create(ctx context.Context, ns NewSubject) (SubjectView, error) {
	if err := ns.Validate(svc.validate); err != nil {
		return SubjectView{}, err
	}
	uname, err := core.ClaimUsername(ctx, svc.subjects, ns.Username, ns.Name)
	if err != nil {
		return SubjectView{}, err
	}
	classRoomID, err := svc.classRoom.ResolveOptional(ctx, ns.ClassRoom)
	if err != nil {
		return SubjectView{}, err
	}
	typeID, err := svc.subjectType.ResolveOptional(ctx, ns.SubjectType)
	if err != nil {
		return SubjectView{}, err
	}
	books, err := svc.book.ResolveIDs(ctx, ns.Books)
	if err != nil {
		return SubjectView{}, err
	}

	now := time.Now().UTC()
	s, err := core.Insert(ctx, svc.subjects, Subject{
		ID:          primitive.NewObjectID(),
		Name:        ns.Name,
		Username:    uname,
		Description: ns.Description,
		ClassRoom:   classRoomID,
		SubjectType: typeID,
		Books:       books,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return SubjectView{}, err
	}
	return svc.format(ctx, s)
}

func (svc *Service) Get(ctx context.Context, id string) (SubjectView, error) {
	s, err := core.Fetch(ctx, svc.subjects, id)
	if err != nil {
		return SubjectView{}, err
	}
	return svc.format(ctx, s)
}

func (svc *Service) List(ctx context.Context) ([]SubjectView, error) {
	subjects, err := svc.subjects.GetMany(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	return core.FormatAll(ctx, subjects, svc.format)
}

func (svc *Service) ListByClassRoom(ctx context.Context, classRoomID string) ([]SubjectView, error) {
	subjects, err := core.ListBy(ctx, svc.subjects, FieldClassRoom, svc.classRoom, classRoomID)
	if err != nil {
		return nil, err
	}
	return core.FormatAll(ctx, subjects, svc.format)
}

func (svc *Service) ListByType(ctx context.Context, typeID string) ([]SubjectView, error) {
	subjects, err := core.ListBy(ctx, svc.subjects, FieldSubjectType, svc.subjectType, typeID)
	if err != nil {
		return nil, err
	}
	return core.FormatAll(ctx, subjects, svc.format)
}

func (svc *Service) Update(ctx context.Context, id string, us UpdateSubject) (SubjectView, error) {
	s, err := core.Fetch(ctx, svc.subjects, id)
	if err != nil {
		return SubjectView{}, err
	}
	if err = us.Validate(svc.validate); err != nil {
		return SubjectView{}, err
	}
	if us.Username != nil {
		if err = core.ValidateUnique(ctx, svc.subjects, core.FieldUsername, *us.Username, s.ID); err != nil {
			return SubjectView{}, err
		}
	}

	patch := core.NewPatch().
		SetString(core.FieldName, us.Name).
		SetString(core.FieldUsername, us.Username).
		SetString(core.FieldDescription, us.Description)
	if _, err = svc.classRoom.Apply(ctx, patch, FieldClassRoom, us.ClassRoom); err != nil {
		return SubjectView{}, err
	}
	if _, err = svc.subjectType.Apply(ctx, patch, FieldSubjectType, us.SubjectType); err != nil {
		return SubjectView{}, err
	}
	if s, err = core.ApplyPatch(ctx, svc.subjects, s.ID, patch); err != nil {
		return SubjectView{}, err
	}
	return svc.format(ctx, s)
}

func (svc *Service) AddBooks(ctx context.Context, id string, ids core.IDList) (SubjectView, error) {
	if err := ids.Validate(svc.validate); err != nil {
		return SubjectView{}, err
	}
	s, err := core.AddRefs(ctx, svc.subjects, id, FieldBooks, svc.book, ids.IDs)
	if err != nil {
		return SubjectView{}, err
	}
	return svc.format(ctx, s)
}

func (svc *Service) RemoveBooks(ctx context.Context, id string, ids core.IDList) (SubjectView, error) {
	if err := ids.Validate(svc.validate); err != nil {
		return SubjectView{}, err
	}
	s, err := core.RemoveRefs(ctx, svc.subjects, id, FieldBooks, ids.IDs)
	if err != nil {
		return SubjectView{}, err
	}
	return svc.format(ctx, s)
}

func (svc *Service) Delete(ctx context.Context, id string) (SubjectView, error) {
	s, err := core.Remove(ctx, svc.subjects, id)
	if err != nil {
		return SubjectView{}, err
	}
	return svc.format(ctx, s)
}

func (svc *Service) format(ctx context.Context, s Subject) (SubjectView, error) {
	classRoom, err := svc.classRoom.Name(ctx, s.ClassRoom)
	if err != nil {
		return SubjectView{}, err
	}
	subjectType, err := svc.subjectType.Name(ctx, s.SubjectType)
	if err != nil {
		return SubjectView{}, err
	}
	books, err := svc.files.URLs(ctx, s.Books)
	if err != nil {
		return SubjectView{}, err
	}
	return SubjectView{
		ID:          s.ID.Hex(),
		Name:        s.Name,
		Username:    s.Username,
		Description: s.Description,
		ClassRoom:   classRoom,
		SubjectType: subjectType,
		Books:       books,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}, nil
}
