// Package assessment implements the multi-step profile collector. A Draft
// accumulates answers step by step and only yields a Profile on Submit.
package assessment

import (
	"errors"
	"fmt"
	"strings"

	"github.com/isdelr/stratum-be/internal/models"
)

var (
	// ErrIncompleteProfile is returned by Submit when required answers are missing.
	ErrIncompleteProfile = errors.New("incomplete profile")
	ErrInvalidSector     = errors.New("unknown sector")
	ErrInvalidLevel      = errors.New("unknown proficiency level")
	ErrInvalidStudyHours = fmt.Errorf("study hours must be between %d and %d", models.MinStudyHours, models.MaxStudyHours)
	ErrUnknownStep       = errors.New("unknown assessment step")
)

// Step names the stages of the collector, in order.
type Step string

const (
	StepSector Step = "sector"
	StepSkills Step = "skills"
	StepLevel  Step = "level"
	StepGoal   Step = "goal"
	StepReview Step = "review"
)

// Mode selects how strictly Submit validates the draft.
type Mode int

const (
	// Strict requires name, goal and at least one skill.
	Strict Mode = iota
	// Lenient only requires at least one skill.
	Lenient
)

// Draft is the in-progress assessment. The zero value is not usable; call NewDraft.
type Draft struct {
	Name             string        `json:"name"`
	Goal             string        `json:"goal"`
	Skills           []string      `json:"skills"`
	Sector           models.Sector `json:"sector"`
	Level            models.Level  `json:"level"`
	StudyHoursPerDay int           `json:"studyHoursPerDay"`
	Step             Step          `json:"step"`
}

// NewDraft seeds a draft from the account's current name and sector.
func NewDraft(name string, sector models.Sector) *Draft {
	if !sector.Valid() {
		sector = models.SectorHealthcare
	}
	return &Draft{
		Name:             strings.TrimSpace(name),
		Sector:           sector,
		Level:            models.LevelBeginner,
		StudyHoursPerDay: 2,
		Skills:           []string{},
		Step:             StepSector,
	}
}

func (d *Draft) SelectSector(s models.Sector) error {
	if !s.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSector, s)
	}
	d.Sector = s
	d.advance(StepSkills)
	return nil
}

// AddSkill appends a trimmed skill. Blank input and duplicates are ignored.
// It reports whether the skill was added.
func (d *Draft) AddSkill(skill string) bool {
	skill = strings.TrimSpace(skill)
	if skill == "" || d.HasSkill(skill) {
		return false
	}
	d.Skills = append(d.Skills, skill)
	return true
}

func (d *Draft) RemoveSkill(skill string) bool {
	skill = strings.TrimSpace(skill)
	for i, s := range d.Skills {
		if s == skill {
			d.Skills = append(d.Skills[:i], d.Skills[i+1:]...)
			return true
		}
	}
	return false
}

// ToggleSkill removes the skill if selected and adds it otherwise.
func (d *Draft) ToggleSkill(skill string) {
	if !d.RemoveSkill(skill) {
		d.AddSkill(skill)
	}
}

// HasSkill compares case-sensitively.
func (d *Draft) HasSkill(skill string) bool {
	for _, s := range d.Skills {
		if s == skill {
			return true
		}
	}
	return false
}

func (d *Draft) SetLevel(l models.Level) error {
	if !l.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidLevel, l)
	}
	d.Level = l
	return nil
}

func (d *Draft) SetStudyHours(h int) error {
	if h < models.MinStudyHours || h > models.MaxStudyHours {
		return ErrInvalidStudyHours
	}
	d.StudyHoursPerDay = h
	return nil
}

func (d *Draft) SetGoal(goal string) {
	d.Goal = strings.TrimSpace(goal)
	d.advance(StepReview)
}

func (d *Draft) SetName(name string) {
	d.Name = strings.TrimSpace(name)
}

// CompleteSkills moves the draft past the skills step.
func (d *Draft) CompleteSkills() { d.advance(StepLevel) }

// CompleteLevel moves the draft past the level step.
func (d *Draft) CompleteLevel() { d.advance(StepGoal) }

// Submit validates the draft and returns an independent Profile snapshot.
func (d *Draft) Submit(mode Mode) (models.Profile, error) {
	var missing []string
	if len(d.Skills) == 0 {
		missing = append(missing, "skills")
	}
	if mode == Strict {
		if d.Name == "" {
			missing = append(missing, "name")
		}
		if d.Goal == "" {
			missing = append(missing, "goal")
		}
	}
	if len(missing) > 0 {
		return models.Profile{}, fmt.Errorf("%w: missing %s", ErrIncompleteProfile, strings.Join(missing, ", "))
	}

	p := models.Profile{
		Name:             d.Name,
		Goal:             d.Goal,
		Skills:           d.Skills,
		Sector:           d.Sector,
		Level:            d.Level,
		StudyHoursPerDay: d.StudyHoursPerDay,
	}
	return p.Clone(), nil
}

var stepOrder = map[Step]int{StepSector: 0, StepSkills: 1, StepLevel: 2, StepGoal: 3, StepReview: 4}

// advance never moves the cursor backwards, so revisiting an earlier step keeps progress.
func (d *Draft) advance(to Step) {
	if stepOrder[to] > stepOrder[d.Step] {
		d.Step = to
	}
}
