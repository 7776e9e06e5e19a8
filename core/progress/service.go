package progress

import (
	"context"
	"errors"
	"time"

	"github.com/studysitare/portal/core/catalog"
	"github.com/studysitare/portal/core/user"
)

var (
	// errors
	ErrNotFound     = errors.New("progress not found")
	ErrInvalidRange = errors.New("completed topics may not exceed total topics")
)

type (
	Repository interface {
		// UpsertProgress inserts the row or, if one already exists for
		// (user, subject), overwrites its counters. Last write wins.
		UpsertProgress(ctx context.Context, prog Progress) (Progress, error)
		FilterProgressByUser(ctx context.Context, userID int64) ([]Progress, error)
	}

	Service struct {
		repo        Repository
		catalogRepo catalog.Repository
	}
)

func NewService(repo Repository, catalogRepo catalog.Repository) *Service {
	return &Service{repo: repo, catalogRepo: catalogRepo}
}

func (svc *Service) Upsert(ctx context.Context, up UpsertProgress) (Progress, error) {
	if up.CompletedTopics > up.TotalTopics {
		return Progress{}, ErrInvalidRange
	}
	prog := Progress{
		UserID:          up.UserID,
		SubjectID:       up.SubjectID,
		CompletedTopics: up.CompletedTopics,
		TotalTopics:     up.TotalTopics,
		LastUpdated:     time.Now().UTC(),
	}
	return svc.repo.UpsertProgress(ctx, prog)
}

func (svc *Service) FilterByUser(ctx context.Context, userID int64) ([]Progress, error) {
	return svc.repo.FilterProgressByUser(ctx, userID)
}

// Overview assembles the dashboard for a student: the subjects of their
// semester, their progress rows and the overall completion aggregates.
func (svc *Service) Overview(ctx context.Context, usr user.User) (Overview, error) {
	subjects, err := svc.catalogRepo.FilterSubjectsBySemester(ctx, int(usr.Semester.Int))
	if err != nil {
		return Overview{}, err
	}
	rows, err := svc.repo.FilterProgressByUser(ctx, usr.ID)
	if err != nil {
		return Overview{}, err
	}
	return NewOverview(subjects, rows), nil
}
