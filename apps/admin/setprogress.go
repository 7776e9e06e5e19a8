package main

import (
	"context"
	"time"

	"github.com/studysitare/portal/core"
	"github.com/studysitare/portal/core/progress"
)

// setProgress records (or overwrites) a student's progress on a subject.
func (cli *commandLine) setProgress(studentID string, subjectID int64, completed, total int) error {
	if completed < 0 || total < 0 || completed > total {
		return progress.ErrInvalidRange
	}

	ctx := context.Background()
	usr, err := cli.usrRepo.GetStudentByStudentID(ctx, core.CleanString(studentID, true /* lower */))
	if err != nil {
		return err
	}
	if _, err := cli.subjRepo.GetSubjectByID(ctx, subjectID); err != nil {
		return err
	}

	_, err = cli.progRepo.UpsertProgress(ctx, progress.Progress{
		UserID:          usr.ID,
		SubjectID:       subjectID,
		CompletedTopics: completed,
		TotalTopics:     total,
		LastUpdated:     time.Now().UTC(),
	})
	return err
}
