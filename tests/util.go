package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/studysitare/portal/core/catalog"
	"github.com/studysitare/portal/core/progress"
	"github.com/studysitare/portal/core/user"
	"github.com/studysitare/portal/storage/database"
)

// PrepareDB opens a fresh in-memory SQLite DB with all migrations applied.
// The single-connection pool keeps the in-memory DB alive for the test's
// duration.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	return db
}

func CreateStudent(t *testing.T, repo user.Repository, name, studentID string, semester int, pwd string) user.User {
	t.Helper()

	usr := user.User{
		Name:      name,
		StudentID: null.StringFrom(studentID),
		Semester:  null.IntFrom(semester),
		CreatedAt: time.Now().UTC(),
	}
	return createUser(t, repo, usr, pwd)
}

func CreateAdmin(t *testing.T, repo user.Repository, name, email, pwd string) user.User {
	t.Helper()

	usr := user.User{
		Name:      name,
		Email:     null.StringFrom(email),
		IsAdmin:   true,
		CreatedAt: time.Now().UTC(),
	}
	return createUser(t, repo, usr, pwd)
}

func createUser(t *testing.T, repo user.Repository, usr user.User, pwd string) user.User {
	t.Helper()

	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	} else {
		usr.PasswordHash = []byte("!")
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

func CreateSubject(t *testing.T, repo catalog.Repository, name string, semester int, description string) catalog.Subject {
	t.Helper()

	sub := catalog.Subject{
		Name:      name,
		Semester:  semester,
		CreatedAt: time.Now().UTC(),
	}
	if description != "" {
		sub.Description = null.StringFrom(description)
	}
	sub, err := repo.CreateSubject(context.Background(), sub)
	if err != nil {
		t.Fatalf("CreateSubject() failed: %v", err)
	}
	return sub
}

func CreateProgress(t *testing.T, repo progress.Repository, userID, subjectID int64, completed, total int) progress.Progress {
	t.Helper()

	prog, err := repo.UpsertProgress(context.Background(), progress.Progress{
		UserID:          userID,
		SubjectID:       subjectID,
		CompletedTopics: completed,
		TotalTopics:     total,
		LastUpdated:     time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateProgress() failed: %v", err)
	}
	return prog
}
