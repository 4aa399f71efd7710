package main

import (
	"context"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/user"
)

// addUser creates an active user, or reactivates and updates the user owning email or uname.
func (cli *commandLine) addUser(ctx context.Context, name, uname, email, pwd string, isAdmin bool) error {
	var role string
	if isAdmin {
		var err error
		if role, err = cli.roleSvc.Ensure(ctx, user.RoleAdmin); err != nil {
			return err
		}
	}

	usr, err := cli.usrSvc.GetByEmailOrUsername(ctx, email)
	if core.IsNotFound(err) && uname != "" {
		usr, err = cli.usrSvc.GetByEmailOrUsername(ctx, uname)
	}
	switch {
	case core.IsNotFound(err):
		_, err = cli.usrSvc.Create(ctx, user.NewUser{
			Name:            name,
			Username:        uname,
			Email:           email,
			Role:            role,
			Password:        pwd,
			PasswordConfirm: pwd,
		})
		return err
	case err != nil:
		return err
	}

	active := true
	uu := user.UpdateUser{
		Name:            &name,
		Email:           &email,
		IsActive:        &active,
		Password:        pwd,
		PasswordConfirm: pwd,
	}
	if uname != "" {
		uu.Username = &uname
	}
	if isAdmin {
		uu.Role = &role
	}
	_, err = cli.usrSvc.Update(ctx, usr.ID.Hex(), uu)
	return err
}
