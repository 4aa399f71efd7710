package user

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trezcool/shule/core"
)

type RoleService struct {
	roles    core.Collection[Role]
	validate *validator.Validate
	deps     []core.Dependent
}

func NewRoleService(roles core.Collection[Role], validate *validator.Validate, deps ...core.Dependent) *RoleService {
	return &RoleService{roles: roles, validate: validate, deps: deps}
}

func (svc *RoleService) Create(ctx context.Context, nr NewRole) (RoleView, error) {
	if err := nr.Validate(svc.validate); err != nil {
		return RoleView{}, err
	}
	if err := core.ValidateUnique(ctx, svc.roles, FieldRoleName, nr.Role, primitive.NilObjectID); err != nil {
		return RoleView{}, err
	}

	now := time.Now().UTC()
	r, err := core.Insert(ctx, svc.roles, Role{
		ID:          primitive.NewObjectID(),
		Role:        nr.Role,
		Description: nr.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return RoleView{}, err
	}
	return formatRole(r), nil
}

// Ensure returns the ID of the role named name, creating it when missing.
func (svc *RoleService) Ensure(ctx context.Context, name string) (string, error) {
	r, err := svc.roles.FindOne(ctx, core.Where(FieldRoleName, name))
	if err == nil {
		return r.ID.Hex(), nil
	}
	if !core.IsNotFound(err) {
		return "", errors.Wrap(err, "finding role")
	}
	view, err := svc.Create(ctx, NewRole{Role: name})
	if err != nil {
		return "", err
	}
	return view.ID, nil
}

func (svc *RoleService) Get(ctx context.Context, id string) (RoleView, error) {
	r, err := core.Fetch(ctx, svc.roles, id)
	if err != nil {
		return RoleView{}, err
	}
	return formatRole(r), nil
}

func (svc *RoleService) List(ctx context.Context) ([]RoleView, error) {
	roles, err := svc.roles.GetMany(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying roles")
	}
	views := make([]RoleView, 0, len(roles))
	for _, r := range roles {
		views = append(views, formatRole(r))
	}
	return views, nil
}

func (svc *RoleService) Update(ctx context.Context, id string, ur UpdateRole) (RoleView, error) {
	r, err := core.Fetch(ctx, svc.roles, id)
	if err != nil {
		return RoleView{}, err
	}
	if err = ur.Validate(svc.validate); err != nil {
		return RoleView{}, err
	}
	if ur.Role != nil {
		if err = core.ValidateUnique(ctx, svc.roles, FieldRoleName, *ur.Role, r.ID); err != nil {
			return RoleView{}, err
		}
	}

	patch := core.NewPatch().
		SetString(FieldRoleName, ur.Role).
		SetString(core.FieldDescription, ur.Description)
	if r, err = core.ApplyPatch(ctx, svc.roles, r.ID, patch); err != nil {
		return RoleView{}, err
	}
	return formatRole(r), nil
}

func (svc *RoleService) Delete(ctx context.Context, id string) (RoleView, error) {
	r, err := core.Remove(ctx, svc.roles, id, svc.deps...)
	if err != nil {
		return RoleView{}, err
	}
	return formatRole(r), nil
}
