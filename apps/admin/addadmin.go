package main

import (
	"context"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/studysitare/portal/core"
	"github.com/studysitare/portal/core/user"
)

// addAdmin updates or creates an admin account.
func (cli *commandLine) addAdmin(name, email, pwd string) error {
	var usr user.User
	var err error
	ctx := context.Background()
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)

	if usr, err = cli.usrRepo.GetUserByEmail(ctx, email); err != nil {
		if err != user.ErrNotFound {
			return err
		}
		usr = user.User{
			Email:     null.StringFrom(email),
			CreatedAt: time.Now().UTC(),
		}
	}
	usr.Name = name
	usr.IsAdmin = true
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	if _, err := cli.usrRepo.UpdateOrCreateUser(ctx, usr); err != nil {
		return err
	}
	return nil
}
