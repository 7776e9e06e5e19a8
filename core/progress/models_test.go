package progress

import (
	"testing"

	"github.com/studysitare/portal/core/catalog"
)

func TestNewOverview(t *testing.T) {
	subjects := []catalog.Subject{
		{ID: 1, Name: "Mathematics", Semester: 1},
		{ID: 2, Name: "Physics", Semester: 1},
	}

	tests := []struct {
		name          string
		rows          []Progress
		wantCompleted int
		wantTotal     int
		wantOverall   int
	}{
		{name: "no rows", rows: nil, wantCompleted: 0, wantTotal: 0, wantOverall: 0},
		{
			name:          "half done",
			rows:          []Progress{{CompletedTopics: 3, TotalTopics: 10}, {CompletedTopics: 7, TotalTopics: 10}},
			wantCompleted: 10, wantTotal: 20, wantOverall: 50,
		},
		{
			name:          "all done",
			rows:          []Progress{{CompletedTopics: 10, TotalTopics: 10}},
			wantCompleted: 10, wantTotal: 10, wantOverall: 100,
		},
		{
			name:          "rounds to nearest",
			rows:          []Progress{{CompletedTopics: 1, TotalTopics: 3}},
			wantCompleted: 1, wantTotal: 3, wantOverall: 33,
		},
		{
			name:          "rounds up",
			rows:          []Progress{{CompletedTopics: 2, TotalTopics: 3}},
			wantCompleted: 2, wantTotal: 3, wantOverall: 67,
		},
		{
			// all-zero counter rows must not divide by zero
			name:          "zero totals",
			rows:          []Progress{{CompletedTopics: 0, TotalTopics: 0}},
			wantCompleted: 0, wantTotal: 0, wantOverall: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ov := NewOverview(subjects, tt.rows)
			if ov.CompletedTopics != tt.wantCompleted {
				t.Errorf("CompletedTopics = %d; want %d", ov.CompletedTopics, tt.wantCompleted)
			}
			if ov.TotalTopics != tt.wantTotal {
				t.Errorf("TotalTopics = %d; want %d", ov.TotalTopics, tt.wantTotal)
			}
			if ov.OverallProgress != tt.wantOverall {
				t.Errorf("OverallProgress = %d; want %d", ov.OverallProgress, tt.wantOverall)
			}
			if len(ov.Subjects) != len(subjects) {
				t.Errorf("Subjects = %d; want %d", len(ov.Subjects), len(subjects))
			}
		})
	}
}

func TestNewOverview_nilSlices(t *testing.T) {
	ov := NewOverview(nil, nil)
	if ov.Subjects == nil || ov.Progress == nil {
		t.Error("nil inputs must yield empty, non-nil slices")
	}
}
