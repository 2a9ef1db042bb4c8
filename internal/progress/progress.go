// Package progress tracks per-task completion for the active roadmap,
// independently of the roadmap content.
package progress

import (
	"fmt"
	"math"
	"time"

	"github.com/isdelr/stratum-be/internal/models"
)

// Record maps task keys to completion flags. Only true entries are kept.
type Record struct {
	AccountID string          `json:"accountId"`
	RoadmapID string          `json:"roadmapId"`
	Tasks     map[string]bool `json:"tasks"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// New returns an empty record bound to a roadmap.
func New(accountID, roadmapID string) *Record {
	return &Record{
		AccountID: accountID,
		RoadmapID: roadmapID,
		Tasks:     make(map[string]bool),
	}
}

// TaskKey builds the composite key for (week, taskIndex).
func TaskKey(week, taskIndex int) string {
	return fmt.Sprintf("w%d-t%d", week, taskIndex)
}

// Done reports whether a task is complete.
func (r *Record) Done(week, taskIndex int) bool {
	return r.Tasks[TaskKey(week, taskIndex)]
}

// Toggle flips completion and returns the new state.
func (r *Record) Toggle(week, taskIndex int) bool {
	if r.Tasks == nil {
		r.Tasks = make(map[string]bool)
	}
	key := TaskKey(week, taskIndex)
	if r.Tasks[key] {
		delete(r.Tasks, key)
		return false
	}
	r.Tasks[key] = true
	return true
}

// PercentComplete is completed tasks / total tasks * 100. Steps without tasks are 0.
func (r *Record) PercentComplete(step models.RoadmapStep) float64 {
	total := len(step.Tasks)
	if total == 0 {
		return 0
	}
	done := 0
	for i := range step.Tasks {
		if r.Done(step.Week, i) {
			done++
		}
	}
	return float64(done) / float64(total) * 100
}

// Complete reports whether every task of step is done.
func (r *Record) Complete(step models.RoadmapStep) bool {
	return len(step.Tasks) > 0 && r.PercentComplete(step) == 100
}

// IsCurrentPhase is true iff phase i is incomplete and it is the first phase
// or phase i-1 is fully complete.
func (r *Record) IsCurrentPhase(steps []models.RoadmapStep, i int) bool {
	if i < 0 || i >= len(steps) {
		return false
	}
	if r.Complete(steps[i]) {
		return false
	}
	return i == 0 || r.Complete(steps[i-1])
}

// Round rounds a percentage for display.
func Round(pct float64) int {
	return int(math.Round(pct))
}

// PhaseView is the display model for one roadmap phase.
type PhaseView struct {
	Step      models.RoadmapStep `json:"step"`
	Percent   int                `json:"percent"`
	Current   bool               `json:"current"`
	Completed bool               `json:"completed"`
	TasksDone []bool             `json:"tasksDone"`
}

// Phases builds display state for every step in order.
func (r *Record) Phases(steps []models.RoadmapStep) []PhaseView {
	views := make([]PhaseView, len(steps))
	for i, step := range steps {
		done := make([]bool, len(step.Tasks))
		for t := range step.Tasks {
			done[t] = r.Done(step.Week, t)
		}
		views[i] = PhaseView{
			Step:      step,
			Percent:   Round(r.PercentComplete(step)),
			Current:   r.IsCurrentPhase(steps, i),
			Completed: r.Complete(step),
			TasksDone: done,
		}
	}
	return views
}

// Overall is the share of all roadmap tasks that are done.
func (r *Record) Overall(steps []models.RoadmapStep) float64 {
	total, done := 0, 0
	for _, step := range steps {
		for t := range step.Tasks {
			total++
			if r.Done(step.Week, t) {
				done++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(done) / float64(total) * 100
}
