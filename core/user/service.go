package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/studysitare/portal/core"
)

var (
	// errors
	ErrNotFound        = errors.New("user not found")
	ErrEmailExists     = errors.New("a user with this email already exists")
	ErrStudentIDExists = errors.New("a user with this student ID already exists")
)

type (
	Repository interface {
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id int64) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		GetStudentByStudentID(ctx context.Context, studentID string) (User, error)
		GetAdminByEmail(ctx context.Context, email string) (User, error)
		QueryStudents(ctx context.Context) ([]User, error)
		SetLastLogin(ctx context.Context, usr User) (User, error)
		UpdateOrCreateUser(ctx context.Context, usr User) (User, error)
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
	}
)

func NewService(repo Repository, mailSvc core.EmailService) *Service {
	return &Service{repo: repo, mailSvc: mailSvc}
}

func (svc *Service) checkStudentIDUniqueness(studentID string) error {
	if _, err := svc.repo.GetStudentByStudentID(context.Background(), studentID); err == nil {
		return core.NewValidationError(ErrStudentIDExists, core.FieldError{Field: "student_id", Error: ErrStudentIDExists.Error()})
	} else if err != ErrNotFound {
		return err
	}
	return nil
}

func (svc *Service) checkEmailUniqueness(email string) error {
	if _, err := svc.repo.GetUserByEmail(context.Background(), email); err == nil {
		return core.NewValidationError(ErrEmailExists, core.FieldError{Field: "email", Error: ErrEmailExists.Error()})
	} else if err != ErrNotFound {
		return err
	}
	return nil
}

// CreateStudent registers a new student account.
// The DB's unique constraint is authoritative: two concurrent registrations
// with the same student ID cannot both insert.
func (svc *Service) CreateStudent(ctx context.Context, ns NewStudent) (User, error) {
	usr := User{
		Name:      ns.Name,
		StudentID: null.StringFrom(ns.StudentID),
		Semester:  null.IntFrom(ns.Semester),
		CreatedAt: time.Now().UTC(),
	}
	if err := usr.SetPassword(ns.Password); err != nil {
		return User{}, err
	}
	return svc.repo.CreateUser(ctx, usr)
}

// CreateAdmin registers a new admin account and sends a welcome email.
func (svc *Service) CreateAdmin(ctx context.Context, na NewAdmin) (User, error) {
	usr := User{
		Name:      na.Name,
		Email:     null.StringFrom(na.Email),
		IsAdmin:   true,
		CreatedAt: time.Now().UTC(),
	}
	if err := usr.SetPassword(na.Password); err != nil {
		return User{}, err
	}
	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, err
	}
	svc.sendWelcomeEmail(usr)
	return usr, nil
}

func (svc *Service) sendWelcomeEmail(usr User) {
	if svc.mailSvc == nil || !usr.Email.Valid {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: usr.Name, Address: usr.Email.String}},
		Subject: "Your admin account",
		BodyStr: fmt.Sprintf("Hi %s,\n\nAn admin account has been created for you on %s.\n", usr.Name, core.Conf.GetString("appName")),
	})
}

func (svc *Service) GetByID(ctx context.Context, id int64) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetStudentByStudentID(ctx context.Context, studentID string) (User, error) {
	return svc.repo.GetStudentByStudentID(ctx, core.CleanString(studentID, true /* lower */))
}

func (svc *Service) GetAdminByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetAdminByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) QueryStudents(ctx context.Context) ([]User, error) {
	return svc.repo.QueryStudents(ctx)
}

func (svc *Service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	usr.LastLogin = null.TimeFrom(time.Now().UTC())
	return svc.repo.SetLastLogin(ctx, usr)
}
