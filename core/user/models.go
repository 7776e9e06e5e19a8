package user

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/studysitare/portal/core"
)

type User struct {
	ID           int64       `db:"id" json:"id"`
	Name         string      `db:"name" json:"name"`
	Email        null.String `db:"email" json:"email,omitempty"`
	StudentID    null.String `db:"student_id" json:"student_id,omitempty"`
	PasswordHash []byte      `db:"password_hash" json:"-"`
	IsAdmin      bool        `db:"is_admin" json:"is_admin"`
	Semester     null.Int    `db:"semester" json:"semester,omitempty"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"` // UTC
	LastLogin    null.Time   `db:"last_login" json:"last_login,omitempty"`
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsStudent() bool {
	return !u.IsAdmin
}

// NewStudent contains information needed to register a new student account.
type NewStudent struct {
	Name            string `json:"name" form:"name" validate:"required"`
	StudentID       string `json:"student_id" form:"student_id" validate:"required,student_id"`
	Semester        int    `json:"semester" form:"semester" validate:"required,min=1,max=8"`
	Password        string `json:"password" form:"password" validate:"required,min=6"`
	PasswordConfirm string `json:"password_confirm" form:"password_confirm" validate:"required_with=Password,eqfield=Password"`
}

func (ns *NewStudent) Validate(validate *validator.Validate, svc *Service) error {
	ns.Name = core.CleanString(ns.Name)
	ns.StudentID = core.CleanString(ns.StudentID, true /* lower */)

	if err := validate.Struct(ns); err != nil {
		return err
	}
	return svc.checkStudentIDUniqueness(ns.StudentID)
}

// NewAdmin contains information needed to register a new admin account.
type NewAdmin struct {
	Name            string `json:"name" form:"name" validate:"required"`
	Email           string `json:"email" form:"email" validate:"required,email"`
	Password        string `json:"password" form:"password" validate:"required,min=6"`
	PasswordConfirm string `json:"password_confirm" form:"password_confirm" validate:"required_with=Password,eqfield=Password"`
}

func (na *NewAdmin) Validate(validate *validator.Validate, svc *Service) error {
	na.Name = core.CleanString(na.Name)
	na.Email = core.CleanString(na.Email, true /* lower */)

	if err := validate.Struct(na); err != nil {
		return err
	}
	return svc.checkEmailUniqueness(na.Email)
}
