package class

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/user"
)

// GroupService manages the groups students of a class are split into.
type GroupService struct {
	groups   core.Collection[Group]
	class    core.Ref[Class]
	student  core.Ref[user.User]
	validate *validator.Validate
}

func NewGroupService(
	groups core.Collection[Group],
	classes core.Collection[Class],
	users core.Collection[user.User],
	validate *validator.Validate,
) *GroupService {
	return &GroupService{
		groups:   groups,
		class:    core.NewRef(string(FieldClass), classes),
		student:  core.NewRef("student", users),
		validate: validate,
	}
}

func (svc *GroupService) Create(ctx context.Context, ng NewGroup) (GroupView, error) {
	if err := ng.Validate(svc.validate); err != nil {
		return GroupView{}, err
	}
	classID, err := svc.class.ResolveID(ctx, ng.Class)
	if err != nil {
		return GroupView{}, err
	}
	students, err := svc.student.ResolveIDs(ctx, ng.Students)
	if err != nil {
		return GroupView{}, err
	}

	now := time.Now().UTC()
	g, err := core.Insert(ctx, svc.groups, Group{
		ID:          primitive.NewObjectID(),
		Name:        ng.Name,
		Description: ng.Description,
		Class:       classID,
		Students:    students,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return GroupView{}, err
	}
	return svc.format(ctx, g)
}

func (svc *GroupService) Get(ctx context.Context, id string) (GroupView, error) {
	g, err := core.Fetch(ctx, svc.groups, id)
	if err != nil {
		return GroupView{}, err
	}
	return svc.format(ctx, g)
}

func (svc *GroupService) List(ctx context.Context) ([]GroupView, error) {
	groups, err := svc.groups.GetMany(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying class groups")
	}
	return core.FormatAll(ctx, groups, svc.format)
}

func (svc *GroupService) ListByClass(ctx context.Context, classID string) ([]GroupView, error) {
	groups, err := core.ListBy(ctx, svc.groups, FieldClass, svc.class, classID)
	if err != nil {
		return nil, err
	}
	return core.FormatAll(ctx, groups, svc.format)
}

func (svc *GroupService) Update(ctx context.Context, id string, ug UpdateGroup) (GroupView, error) {
	g, err := core.Fetch(ctx, svc.groups, id)
	if err != nil {
		return GroupView{}, err
	}
	if err = ug.Validate(svc.validate); err != nil {
		return GroupView{}, err
	}

	patch := core.NewPatch().
		SetString(core.FieldName, ug.Name).
		SetString(core.FieldDescription, ug.Description)
	if _, err = svc.class.Apply(ctx, patch, FieldClass, ug.Class); err != nil {
		return GroupView{}, err
	}
	if g, err = core.ApplyPatch(ctx, svc.groups, g.ID, patch); err != nil {
		return GroupView{}, err
	}
	return svc.format(ctx, g)
}

func (svc *GroupService) AddStudents(ctx context.Context, id string, ids core.IDList) (GroupView, error) {
	if err := ids.Validate(svc.validate); err != nil {
		return GroupView{}, err
	}
	g, err := core.AddRefs(ctx, svc.groups, id, FieldStudents, svc.student, ids.IDs)
	if err != nil {
		return GroupView{}, err
	}
	return svc.format(ctx, g)
}

func (svc *GroupService) RemoveStudents(ctx context.Context, id string, ids core.IDList) (GroupView, error) {
	if err := ids.Validate(svc.validate); err != nil {
		return GroupView{}, err
	}
	g, err := core.RemoveRefs(ctx, svc.groups, id, FieldStudents, ids.IDs)
	if err != nil {
		return GroupView{}, err
	}
	return svc.format(ctx, g)
}

func (svc *GroupService) Delete(ctx context.Context, id string) (GroupView, error) {
	g, err := core.Remove(ctx, svc.groups, id)
	if err != nil {
		return GroupView{}, err
	}
	return svc.format(ctx, g)
}

func (svc *GroupService) format(ctx context.Context, g Group) (GroupView, error) {
	class, err := svc.class.Name(ctx, &g.Class)
	if err != nil {
		return GroupView{}, err
	}
	students, err := svc.student.Names(ctx, g.Students)
	if err != nil {
		return GroupView{}, err
	}
	return GroupView{
		ID:          g.ID.Hex(),
		Name:        g.Name,
		Description: g.Description,
		Class:       class,
		Students:    students,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}, nil
}
