package sqliterepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/studysitare/portal/core/catalog"
)

type subjectRepository struct {
	db *sqlx.DB
}

var _ catalog.Repository = (*subjectRepository)(nil) // interface compliance check

func NewSubjectRepository(db *sqlx.DB) *subjectRepository {
	return &subjectRepository{db: db}
}

func (repo subjectRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return catalog.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo subjectRepository) CreateSubject(ctx context.Context, sub catalog.Subject) (catalog.Subject, error) {
	res, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO subjects (name, semester, description, created_at)
		VALUES (:name, :semester, :description, :created_at)`,
		sub,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return catalog.Subject{}, catalog.ErrSubjectExists
		}
		return catalog.Subject{}, errors.Wrap(err, "inserting subject")
	}
	sub.ID, err = res.LastInsertId()
	if err != nil {
		return catalog.Subject{}, errors.Wrap(err, "getting inserted subject ID")
	}
	return sub, nil
}

func (repo subjectRepository) GetSubjectByID(ctx context.Context, id int64) (catalog.Subject, error) {
	var sub catalog.Subject
	if err := repo.db.GetContext(ctx, &sub, `SELECT * FROM subjects WHERE id = ?`, id); err != nil {
		return catalog.Subject{}, repo.trapNoRowsErr(err, "finding subject by ID")
	}
	return sub, nil
}

func (repo subjectRepository) GetSubjectByNameAndSemester(ctx context.Context, name string, semester int) (catalog.Subject, error) {
	var sub catalog.Subject
	err := repo.db.GetContext(ctx, &sub, `SELECT * FROM subjects WHERE name = ? AND semester = ?`, name, semester)
	if err != nil {
		return catalog.Subject{}, repo.trapNoRowsErr(err, "finding subject by name and semester")
	}
	return sub, nil
}

func (repo subjectRepository) FilterSubjectsBySemester(ctx context.Context, semester int) ([]catalog.Subject, error) {
	var subjects []catalog.Subject
	err := repo.db.SelectContext(ctx, &subjects, `SELECT * FROM subjects WHERE semester = ? ORDER BY name`, semester)
	if err != nil {
		return nil, errors.Wrap(err, "filtering subjects by semester")
	}
	return subjects, nil
}

func (repo subjectRepository) QueryAllSubjects(ctx context.Context) ([]catalog.Subject, error) {
	var subjects []catalog.Subject
	err := repo.db.SelectContext(ctx, &subjects, `SELECT * FROM subjects ORDER BY semester, name`)
	if err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	return subjects, nil
}
