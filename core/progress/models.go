package progress

import (
	"math"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/studysitare/portal/core/catalog"
)

// Progress is a completion counter pair for one student on one subject.
// At most one row exists per (user, subject) pair.
type Progress struct {
	ID              int64     `db:"id" json:"id"`
	UserID          int64     `db:"user_id" json:"user_id"`
	SubjectID       int64     `db:"subject_id" json:"subject_id"`
	CompletedTopics int       `db:"completed_topics" json:"completed_topics"`
	TotalTopics     int       `db:"total_topics" json:"total_topics"`
	LastUpdated     time.Time `db:"last_updated" json:"last_updated"` // UTC
}

// UpsertProgress contains information needed to record a student's progress
// on a subject. CompletedTopics may never exceed TotalTopics.
type UpsertProgress struct {
	UserID          int64 `json:"user_id" form:"user_id" validate:"required"`
	SubjectID       int64 `json:"subject_id" form:"subject_id" validate:"required"`
	CompletedTopics int   `json:"completed_topics" form:"completed_topics" validate:"min=0"`
	TotalTopics     int   `json:"total_topics" form:"total_topics" validate:"min=0,gtefield=CompletedTopics"`
}

func (up *UpsertProgress) Validate(validate *validator.Validate) error {
	return validate.Struct(up)
}

// Overview is a student's dashboard payload: the subjects of their semester,
// their progress rows and the overall completion aggregates.
type Overview struct {
	Subjects        []catalog.Subject `json:"subjects"`
	Progress        []Progress        `json:"progress"`
	CompletedTopics int               `json:"completed_topics"`
	TotalTopics     int               `json:"total_topics"`
	OverallProgress int               `json:"overall_progress"`
}

// NewOverview computes the dashboard aggregates over a student's progress rows.
// A student with no progress rows has an overall progress of 0; there is no
// division by zero.
func NewOverview(subjects []catalog.Subject, rows []Progress) Overview {
	ov := Overview{Subjects: subjects, Progress: rows}
	if ov.Subjects == nil {
		ov.Subjects = []catalog.Subject{}
	}
	if ov.Progress == nil {
		ov.Progress = []Progress{}
	}
	for _, p := range rows {
		ov.CompletedTopics += p.CompletedTopics
		ov.TotalTopics += p.TotalTopics
	}
	if ov.TotalTopics > 0 {
		ov.OverallProgress = int(math.Round(float64(ov.CompletedTopics) / float64(ov.TotalTopics) * 100))
	}
	return ov
}
