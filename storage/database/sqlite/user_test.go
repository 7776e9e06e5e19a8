package sqliterepos

import (
	"context"
	"testing"

	"github.com/studysitare/portal/core/user"
	testutil "github.com/studysitare/portal/tests"
)

func TestUserRepository_uniqueKeys(t *testing.T) {
	db := testutil.PrepareDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	testutil.CreateStudent(t, repo, "Jane", "s-001", 1, "pwd123")

	// a second student with the same student ID must be rejected by the store
	dup := testutil.CreateAdmin(t, repo, "Copycat", "copy@test.cd", "pwd123")
	dup.ID = 0
	dup.IsAdmin = false
	dup.Email.Valid = false
	dup.StudentID.SetValid("s-001")
	if _, err := repo.CreateUser(ctx, dup); err != user.ErrStudentIDExists {
		t.Errorf("CreateUser() err = %v; want ErrStudentIDExists", err)
	}

	students, err := repo.QueryStudents(ctx)
	if err != nil {
		t.Fatalf("QueryStudents() failed: %v", err)
	}
	if len(students) != 1 {
		t.Errorf("QueryStudents() = %d rows; want 1 (no row written on duplicate)", len(students))
	}

	// same story for admin emails
	admin := testutil.CreateAdmin(t, repo, "Root", "root@test.cd", "pwd123")
	admin.ID = 0
	if _, err := repo.CreateUser(ctx, admin); err != user.ErrEmailExists {
		t.Errorf("CreateUser() err = %v; want ErrEmailExists", err)
	}
}

func TestUserRepository_lookups(t *testing.T) {
	db := testutil.PrepareDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	student := testutil.CreateStudent(t, repo, "Jane", "s-001", 2, "pwd123")
	admin := testutil.CreateAdmin(t, repo, "Root", "root@test.cd", "pwd123")

	got, err := repo.GetStudentByStudentID(ctx, "s-001")
	if err != nil {
		t.Fatalf("GetStudentByStudentID() failed: %v", err)
	}
	if got.ID != student.ID || got.Semester.Int != 2 {
		t.Errorf("GetStudentByStudentID() = %+v; want %+v", got, student)
	}

	if _, err = repo.GetStudentByStudentID(ctx, "nope"); err != user.ErrNotFound {
		t.Errorf("GetStudentByStudentID(unknown) err = %v; want ErrNotFound", err)
	}

	// admins are invisible to the student lookup even with a student_id-less match
	if _, err = repo.GetAdminByEmail(ctx, "root@test.cd"); err != nil {
		t.Errorf("GetAdminByEmail() failed: %v", err)
	}
	if _, err = repo.GetAdminByEmail(ctx, "jane@test.cd"); err != user.ErrNotFound {
		t.Errorf("GetAdminByEmail(unknown) err = %v; want ErrNotFound", err)
	}

	byID, err := repo.GetUserByID(ctx, admin.ID)
	if err != nil {
		t.Fatalf("GetUserByID() failed: %v", err)
	}
	if !byID.IsAdmin {
		t.Error("GetUserByID() dropped the admin flag")
	}
}
