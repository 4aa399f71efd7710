package class

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/school"
	"github.com/trezcool/shule/core/user"
)

type Service struct {
	classes  core.Collection[Class]
	school   core.Ref[school.School]
	teacher  core.Ref[user.User]
	member   core.Ref[user.User]
	validate *validator.Validate
	deps     []core.Dependent
}

func NewService(
	classes core.Collection[Class],
	schools core.Collection[school.School],
	users core.Collection[user.User],
	validate *validator.Validate,
	deps ...core.Dependent,
) *Service {
	return &Service{
		classes:  classes,
		school:   core.NewRef(string(FieldSchool), schools),
		teacher:  core.NewRef(string(FieldTeacher), users),
		member:   core.NewRef("user", users),
		validate: validate,
		deps:     deps,
	}
}

func (svc *Service) Create(ctx context.Context, nc NewClass) (ClassView, error) {
	if err := nc.Validate(svc.validate); err != nil {
		return ClassView{}, err
	}
	uname, err := core.ClaimUsername(ctx, svc.classes, nc.Username, nc.Name)
	if err != nil {
		return ClassView{}, err
	}
	schoolID, err := svc.school.ResolveOptional(ctx, nc.School)
	if err != nil {
		return ClassView{}, err
	}
	teacherID, err := svc.teacher.ResolveID(ctx, nc.Teacher)
	if err != nil {
		return ClassView{}, err
	}
	teachers, err := svc.member.ResolveIDs(ctx, nc.Teachers)
	if err != nil {
		return ClassView{}, err
	}
	students, err := svc.member.ResolveIDs(ctx, nc.Students)
	if err != nil {
		return ClassView{}, err
	}

	now := time.Now().UTC()
	c, err := core.Insert(ctx, svc.classes, Class{
		ID:          primitive.NewObjectID(),
		Name:        nc.Name,
		Username:    uname,
		Description: nc.Description,
		School:      schoolID,
		Teacher:     teacherID,
		Teachers:    teachers,
		Students:    students,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return ClassView{}, err
	}
	return svc.format(ctx, c)
}

func (svc *Service) Get(ctx context.Context, id string) (ClassView, error) {
	c, err := core.Fetch(ctx, svc.classes, id)
	if err != nil {
		return ClassView{}, err
	}
	return svc.format(ctx, c)
}

func (svc *Service) List(ctx context.Context) ([]ClassView, error) {
	classes, err := svc.classes.GetMany(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}
	return core.FormatAll(ctx, classes, svc.format)
}

// ListByTeacher returns the classes the user is the main teacher of.
func (svc *Service) ListByTeacher(ctx context.Context, teacherID string) ([]ClassView, error) {
	classes, err := core.ListBy(ctx, svc.classes, FieldTeacher, svc.teacher, teacherID)
	if err != nil {
		return nil, err
	}
	return core.FormatAll(ctx, classes, svc.format)
}

func (svc *Service) ListBySchool(ctx context.Context, schoolID string) ([]ClassView, error) {
	classes, err := core.ListBy(ctx, svc.classes, FieldSchool, svc.school, schoolID)
	if err != nil {
		return nil, err
	}
	return core.FormatAll(ctx, classes, svc.format)
}

func (svc *Service) ListByStudent(ctx context.Context, studentID string) ([]ClassView, error) {
	classes, err := core.ListBy(ctx, svc.classes, FieldStudents, svc.member, studentID)
	if err != nil {
		return nil, err
	}
	return core.FormatAll(ctx, classes, svc.format)
}

func (svc *Service) Update(ctx context.Context, id string, uc UpdateClass) (ClassView, error) {
	c, err := core.Fetch(ctx, svc.classes, id)
	if err != nil {
		return ClassView{}, err
	}
	if err = uc.Validate(svc.validate); err != nil {
		return ClassView{}, err
	}
	if uc.Username != nil {
		if err = core.ValidateUnique(ctx, svc.classes, core.FieldUsername, *uc.Username, c.ID); err != nil {
			return ClassView{}, err
		}
	}

	patch := core.NewPatch().
		SetString(core.FieldName, uc.Name).
		SetString(core.FieldUsername, uc.Username).
		SetString(core.FieldDescription, uc.Description)
	if _, err = svc.school.Apply(ctx, patch, FieldSchool, uc.School); err != nil {
		return ClassView{}, err
	}
	if _, err = svc.teacher.Apply(ctx, patch, FieldTeacher, uc.Teacher); err != nil {
		return ClassView{}, err
	}
	if c, err = core.ApplyPatch(ctx, svc.classes, c.ID, patch); err != nil {
		return ClassView{}, err
	}
	return svc.format(ctx, c)
}

func (svc *Service) AddStudents(ctx context.Context, id string, ids core.IDList) (ClassView, error) {
	return svc.addUsers(ctx, id, FieldStudents, ids)
}

func (svc *Service) RemoveStudents(ctx context.Context, id string, ids core.IDList) (ClassView, error) {
	return svc.removeUsers(ctx, id, FieldStudents, ids)
}

func (svc *Service) AddTeachers(ctx context.Context, id string, ids core.IDList) (ClassView, error) {
	return svc.addUsers(ctx, id, FieldTeachers, ids)
}

func (svc *Service) RemoveTeachers(ctx context.Context, id string, ids core.IDList) (ClassView, error) {
	return svc.removeUsers(ctx, id, FieldTeachers, ids)
}

func (svc *Service) addUsers(ctx context.Context, id string, field core.Field, ids core.IDList) (ClassView, error) {
	if err := ids.Validate(svc.validate); err != nil {
		return ClassView{}, err
	}
	c, err := core.AddRefs(ctx, svc.classes, id, field, svc.member, ids.IDs)
	if err != nil {
		return ClassView{}, err
	}
	return svc.format(ctx, c)
}

func (svc *Service) removeUsers(ctx context.Context, id string, field core.Field, ids core.IDList) (ClassView, error) {
	if err := ids.Validate(svc.validate); err != nil {
		return ClassView{}, err
	}
	c, err := core.RemoveRefs(ctx, svc.classes, id, field, ids.IDs)
	if err != nil {
		return ClassView{}, err
	}
	return svc.format(ctx, c)
}

func (svc *Service) Delete(ctx context.Context, id string) (ClassView, error) {
	c, err := core.Remove(ctx, svc.classes, id, svc.deps...)
	if err != nil {
		return ClassView{}, err
	}
	return svc.format(ctx, c)
}

func (svc *Service) format(ctx context.Context, c Class) (ClassView, error) {
	schoolName, err := svc.school.Name(ctx, c.School)
	if err != nil {
		return ClassView{}, err
	}
	teacher, err := svc.teacher.Name(ctx, &c.Teacher)
	if err != nil {
		return ClassView{}, err
	}
	teachers, err := svc.member.Names(ctx, c.Teachers)
	if err != nil {
		return ClassView{}, err
	}
	students, err := svc.member.Names(ctx, c.Students)
	if err != nil {
		return ClassView{}, err
	}
	return ClassView{
		ID:          c.ID.Hex(),
		Name:        c.Name,
		Username:    c.Username,
		Description: c.Description,
		School:      schoolName,
		Teacher:     teacher,
		Teachers:    teachers,
		Students:    students,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}, nil
}
