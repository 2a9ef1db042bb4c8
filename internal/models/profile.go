package models

// Level is the self-assessed proficiency picked during the assessment.
type Level string

const (
	LevelBeginner     Level = "Beginner"
	LevelIntermediate Level = "Intermediate"
	LevelAdvanced     Level = "Advanced"
)

// Levels lists every proficiency level in ascending order.
var Levels = []Level{LevelBeginner, LevelIntermediate, LevelAdvanced}

func (l Level) Valid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

// Score maps a level onto the 0-100 scale used by the dashboard.
func (l Level) Score() int {
	switch l {
	case LevelIntermediate:
		return 55
	case LevelAdvanced:
		return 85
	default:
		return 25
	}
}

const (
	MinStudyHours = 1
	MaxStudyHours = 12
)

// Profile is the immutable snapshot produced by a completed assessment.
type Profile struct {
	Name             string   `json:"name"`
	Goal             string   `json:"goal"`
	Skills           []string `json:"skills"`
	Sector           Sector   `json:"sector"`
	Level            Level    `json:"level"`
	StudyHoursPerDay int      `json:"studyHoursPerDay"`
}

// Clone returns a deep copy so callers can never mutate a submitted profile.
func (p Profile) Clone() Profile {
	p.Skills = append([]string(nil), p.Skills...)
	return p
}
