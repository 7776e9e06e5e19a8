package sqliterepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/studysitare/portal/core/progress"
)

type progressRepository struct {
	db *sqlx.DB
}

var _ progress.Repository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(db *sqlx.DB) *progressRepository {
	return &progressRepository{db: db}
}

func (repo progressRepository) UpsertProgress(ctx context.Context, prog progress.Progress) (progress.Progress, error) {
	// the unique (user_id, subject_id) index makes the upsert atomic;
	// last write wins
	res, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO progress (user_id, subject_id, completed_topics, total_topics, last_updated)
		VALUES (:user_id, :subject_id, :completed_topics, :total_topics, :last_updated)
		ON CONFLICT (user_id, subject_id) DO UPDATE SET
			completed_topics = excluded.completed_topics,
			total_topics = excluded.total_topics,
			last_updated = excluded.last_updated`,
		prog,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintCheck {
			return progress.Progress{}, progress.ErrInvalidRange
		}
		return progress.Progress{}, errors.Wrap(err, "upserting progress")
	}
	if id, err := res.LastInsertId(); err == nil && id > 0 {
		prog.ID = id
	}
	return prog, nil
}

func (repo progressRepository) FilterProgressByUser(ctx context.Context, userID int64) ([]progress.Progress, error) {
	var rows []progress.Progress
	err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM progress WHERE user_id = ? ORDER BY subject_id`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "filtering progress by user")
	}
	return rows, nil
}
