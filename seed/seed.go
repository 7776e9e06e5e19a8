// Package seed ensures the fixed bootstrap records exist: one admin account
// and the initial subject list. It only ever inserts missing rows; existing
// data is never dropped or overwritten.
package seed

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/studysitare/portal/core"
	"github.com/studysitare/portal/core/catalog"
	"github.com/studysitare/portal/core/user"
)

// Subjects is the fixed subject list inserted at bootstrap.
var Subjects = []catalog.Subject{
	{Name: "Mathematics", Semester: 1, Description: null.StringFrom("Basic mathematics and calculus")},
	{Name: "Physics", Semester: 1, Description: null.StringFrom("Classical mechanics and thermodynamics")},
	{Name: "Programming", Semester: 2, Description: null.StringFrom("Introduction to programming concepts")},
	{Name: "Database Systems", Semester: 2, Description: null.StringFrom("Database design and SQL")},
}

// Ensure is idempotent: running it any number of times leaves exactly one
// seed admin and one row per seed subject.
func Ensure(ctx context.Context, usrRepo user.Repository, subjRepo catalog.Repository) error {
	if err := ensureAdmin(ctx, usrRepo); err != nil {
		return errors.Wrap(err, "seeding admin")
	}
	if err := ensureSubjects(ctx, subjRepo); err != nil {
		return errors.Wrap(err, "seeding subjects")
	}
	return nil
}

func ensureAdmin(ctx context.Context, repo user.Repository) error {
	email := core.Conf.GetString("seedAdminEmail")
	if _, err := repo.GetUserByEmail(ctx, email); err == nil {
		return nil
	} else if err != user.ErrNotFound {
		return err
	}

	admin := user.User{
		Name:      "Admin",
		Email:     null.StringFrom(email),
		IsAdmin:   true,
		CreatedAt: time.Now().UTC(),
	}
	if err := admin.SetPassword(core.Conf.GetString("seedAdminPassword")); err != nil {
		return err
	}
	_, err := repo.CreateUser(ctx, admin)
	if err == user.ErrEmailExists { // lost the race to a concurrent seeder
		return nil
	}
	return err
}

func ensureSubjects(ctx context.Context, repo catalog.Repository) error {
	for _, sub := range Subjects {
		if _, err := repo.GetSubjectByNameAndSemester(ctx, sub.Name, sub.Semester); err == nil {
			continue
		} else if err != catalog.ErrNotFound {
			return err
		}
		sub.CreatedAt = time.Now().UTC()
		if _, err := repo.CreateSubject(ctx, sub); err != nil && err != catalog.ErrSubjectExists {
			return err
		}
	}
	return nil
}
