package assessment

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/isdelr/stratum-be/internal/models"
)

func TestDraftDeduplicatesSkillsInFirstSeenOrder(t *testing.T) {
	d := NewDraft("Ada", models.SectorFintech)

	require.True(t, d.AddSkill("Go"))
	require.True(t, d.AddSkill("  SQL "))
	require.False(t, d.AddSkill("Go"))
	require.False(t, d.AddSkill("   "))
	require.True(t, d.AddSkill("go")) // case-sensitive
	d.ToggleSkill("Blockchain")

	require.Equal(t, []string{"Go", "SQL", "go", "Blockchain"}, d.Skills)

	d.ToggleSkill("SQL")
	require.Equal(t, []string{"Go", "go", "Blockchain"}, d.Skills)
}

func TestDraftStrictSubmitRequiresNameGoalAndSkills(t *testing.T) {
	d := NewDraft("", models.SectorHealthcare)
	d.SetGoal("")

	_, err := d.Submit(Strict)
	require.ErrorIs(t, err, ErrIncompleteProfile)
	require.Contains(t, err.Error(), "skills")
	require.Contains(t, err.Error(), "name")
	require.Contains(t, err.Error(), "goal")
}

func TestDraftLenientSubmitNeedsOnlyOneSkill(t *testing.T) {
	d := NewDraft("", models.SectorSmartCity)

	_, err := d.Submit(Lenient)
	require.ErrorIs(t, err, ErrIncompleteProfile)

	d.AddSkill("Edge Computing")
	p, err := d.Submit(Lenient)
	require.NoError(t, err)
	require.Equal(t, []string{"Edge Computing"}, p.Skills)
	require.Equal(t, models.SectorSmartCity, p.Sector)
}

func TestDraftSubmitReturnsIndependentSnapshot(t *testing.T) {
	d := NewDraft("Ada", models.SectorHealthcare)
	d.AddSkill("Python")
	d.SetGoal("Clinical data engineer")

	p, err := d.Submit(Strict)
	require.NoError(t, err)

	d.AddSkill("SQL")
	p.Skills[0] = "mutated"

	require.Equal(t, []string{"Python", "SQL"}, d.Skills)
	require.Equal(t, "Ada", p.Name)
	require.Equal(t, "Clinical data engineer", p.Goal)
	require.Equal(t, models.LevelBeginner, p.Level)
	require.Equal(t, 2, p.StudyHoursPerDay)
}

func TestDraftValidatesStepInputs(t *testing.T) {
	d := NewDraft("Ada", "not-a-sector")
	require.Equal(t, models.SectorHealthcare, d.Sector)

	require.ErrorIs(t, d.SelectSector("Space Mining"), ErrInvalidSector)
	require.NoError(t, d.SelectSector(models.SectorRenewableEnergy))
	require.Equal(t, StepSkills, d.Step)

	require.ErrorIs(t, d.SetLevel("Guru"), ErrInvalidLevel)
	require.NoError(t, d.SetLevel(models.LevelAdvanced))

	require.ErrorIs(t, d.SetStudyHours(0), ErrInvalidStudyHours)
	require.ErrorIs(t, d.SetStudyHours(13), ErrInvalidStudyHours)
	require.NoError(t, d.SetStudyHours(12))
}

func TestDraftStepNeverMovesBackwards(t *testing.T) {
	d := NewDraft("Ada", models.SectorHealthcare)
	d.SetGoal("Lead engineer")
	require.Equal(t, StepReview, d.Step)

	require.NoError(t, d.SelectSector(models.SectorFintech))
	require.Equal(t, StepReview, d.Step)
}
