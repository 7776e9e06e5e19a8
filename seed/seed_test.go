package seed

import (
	"context"
	"testing"

	"github.com/studysitare/portal/core"
	sqliterepos "github.com/studysitare/portal/storage/database/sqlite"
	testutil "github.com/studysitare/portal/tests"
)

func TestEnsure_idempotent(t *testing.T) {
	db := testutil.PrepareDB(t)
	usrRepo := sqliterepos.NewUserRepository(db)
	subjRepo := sqliterepos.NewSubjectRepository(db)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := Ensure(ctx, usrRepo, subjRepo); err != nil {
			t.Fatalf("Ensure() run %d failed: %v", i+1, err)
		}
	}

	admin, err := usrRepo.GetAdminByEmail(ctx, core.Conf.GetString("seedAdminEmail"))
	if err != nil {
		t.Fatalf("seed admin missing: %v", err)
	}
	if err = admin.CheckPassword(core.Conf.GetString("seedAdminPassword")); err != nil {
		t.Errorf("seed admin password check failed: %v", err)
	}

	subjects, err := subjRepo.QueryAllSubjects(ctx)
	if err != nil {
		t.Fatalf("QueryAllSubjects() failed: %v", err)
	}
	if len(subjects) != len(Subjects) {
		t.Errorf("seeded %d subjects; want %d", len(subjects), len(Subjects))
	}
}

func TestEnsure_leavesExistingDataAlone(t *testing.T) {
	db := testutil.PrepareDB(t)
	usrRepo := sqliterepos.NewUserRepository(db)
	subjRepo := sqliterepos.NewSubjectRepository(db)
	ctx := context.Background()

	student := testutil.CreateStudent(t, usrRepo, "Jane", "s-001", 1, "pwd123")
	extra := testutil.CreateSubject(t, subjRepo, "Chemistry", 3, "")

	if err := Ensure(ctx, usrRepo, subjRepo); err != nil {
		t.Fatalf("Ensure() failed: %v", err)
	}

	if _, err := usrRepo.GetUserByID(ctx, student.ID); err != nil {
		t.Errorf("pre-existing student gone after seeding: %v", err)
	}
	if _, err := subjRepo.GetSubjectByID(ctx, extra.ID); err != nil {
		t.Errorf("pre-existing subject gone after seeding: %v", err)
	}

	subjects, err := subjRepo.QueryAllSubjects(ctx)
	if err != nil {
		t.Fatalf("QueryAllSubjects() failed: %v", err)
	}
	if want := len(Subjects) + 1; len(subjects) != want {
		t.Errorf("got %d subjects; want %d", len(subjects), want)
	}

	var dupCheck int
	if err = db.Get(&dupCheck, `SELECT COUNT(*) FROM users WHERE email = ?`, core.Conf.GetString("seedAdminEmail")); err != nil {
		t.Fatalf("counting seed admins failed: %v", err)
	}
	if dupCheck != 1 {
		t.Errorf("got %d seed admins; want exactly 1", dupCheck)
	}
}
