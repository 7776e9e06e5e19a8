package sqliterepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/studysitare/portal/core/user"
)

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

// trapNoRowsErr maps sqlite "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

// trapConstraintErr maps a unique-constraint violation to the typed duplicate
// error for the column involved, so callers can tell a duplicate key from a
// storage failure.
func (repo userRepository) trapConstraintErr(err error, msg string) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		switch {
		case strings.Contains(sqliteErr.Error(), "users.student_id"):
			return user.ErrStudentIDExists
		case strings.Contains(sqliteErr.Error(), "users.email"):
			return user.ErrEmailExists
		}
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	res, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO users (name, email, student_id, password_hash, is_admin, semester, created_at, last_login)
		VALUES (:name, :email, :student_id, :password_hash, :is_admin, :semester, :created_at, :last_login)`,
		usr,
	)
	if err != nil {
		return user.User{}, repo.trapConstraintErr(err, "inserting user")
	}
	usr.ID, err = res.LastInsertId()
	if err != nil {
		return user.User{}, errors.Wrap(err, "getting inserted user ID")
	}
	return usr, nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id int64) (user.User, error) {
	var usr user.User
	if err := repo.db.GetContext(ctx, &usr, `SELECT * FROM users WHERE id = ?`, id); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "finding user by ID")
	}
	return usr, nil
}

func (repo userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var usr user.User
	if err := repo.db.GetContext(ctx, &usr, `SELECT * FROM users WHERE email = ?`, email); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "finding user by email")
	}
	return usr, nil
}

func (repo userRepository) GetStudentByStudentID(ctx context.Context, studentID string) (user.User, error) {
	var usr user.User
	err := repo.db.GetContext(ctx, &usr, `SELECT * FROM users WHERE student_id = ? AND NOT is_admin`, studentID)
	if err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "finding student by student ID")
	}
	return usr, nil
}

func (repo userRepository) GetAdminByEmail(ctx context.Context, email string) (user.User, error) {
	var usr user.User
	err := repo.db.GetContext(ctx, &usr, `SELECT * FROM users WHERE email = ? AND is_admin`, email)
	if err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "finding admin by email")
	}
	return usr, nil
}

func (repo userRepository) QueryStudents(ctx context.Context) ([]user.User, error) {
	var users []user.User
	err := repo.db.SelectContext(ctx, &users, `SELECT * FROM users WHERE NOT is_admin ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	return users, nil
}

func (repo userRepository) SetLastLogin(ctx context.Context, usr user.User) (user.User, error) {
	_, err := repo.db.ExecContext(ctx, `UPDATE users SET last_login = ? WHERE id = ?`, usr.LastLogin, usr.ID)
	if err != nil {
		return user.User{}, errors.Wrap(err, "setting last login")
	}
	return usr, nil
}

func (repo userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if usr.ID == 0 {
		return repo.CreateUser(ctx, usr)
	}
	_, err := repo.db.NamedExecContext(ctx, `
		UPDATE users SET name = :name, email = :email, student_id = :student_id,
			password_hash = :password_hash, is_admin = :is_admin, semester = :semester
		WHERE id = :id`,
		usr,
	)
	if err != nil {
		return user.User{}, repo.trapConstraintErr(err, "updating user")
	}
	return usr, nil
}
