package main

import (
	"context"

	"github.com/trezcool/shule/core/user"
)

func (cli *commandLine) resetPassword(ctx context.Context, login, pwd string) error {
	usr, err := cli.usrSvc.GetByEmailOrUsername(ctx, login)
	if err != nil {
		return err
	}
	_, err = cli.usrSvc.Update(ctx, usr.ID.Hex(), user.UpdateUser{Password: pwd, PasswordConfirm: pwd})
	return err
}
