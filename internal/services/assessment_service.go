package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/isdelr/stratum-be/internal/assessment"
	"github.com/isdelr/stratum-be/internal/models"
	"github.com/isdelr/stratum-be/internal/storage"
)

// StepInput is the answer for one assessment step. Only the fields relevant
// to the step are read.
type StepInput struct {
	Sector     models.Sector `json:"sector"`
	Add        []string      `json:"add"`
	Remove     []string      `json:"remove"`
	Toggle     []string      `json:"toggle"`
	Done       bool          `json:"done"`
	Level      models.Level  `json:"level"`
	StudyHours *int          `json:"studyHoursPerDay"`
	Goal       string        `json:"goal"`
	Name       *string       `json:"name"`
}

// AssessmentServiceProvider defines the interface for the assessment collector.
type AssessmentServiceProvider interface {
	GetDraft(ctx context.Context, account models.Account) (*assessment.Draft, error)
	ApplyStep(ctx context.Context, account models.Account, step assessment.Step, in StepInput) (*assessment.Draft, error)
	Submit(ctx context.Context, account models.Account, mode assessment.Mode) (models.Profile, error)
	Discard(ctx context.Context, accountID string) error
}

// AssessmentService keeps one draft per account in storage.
type AssessmentService struct {
	store storage.Store
}

// NewAssessmentService creates a new AssessmentService.
func NewAssessmentService(store storage.Store) *AssessmentService {
	return &AssessmentService{store: store}
}

// GetDraft loads the account's draft, starting a fresh one seeded from the
// account when none exists.
func (s *AssessmentService) GetDraft(ctx context.Context, account models.Account) (*assessment.Draft, error) {
	var draft assessment.Draft
	err := storage.GetJSON(ctx, s.store, storage.DraftKey(account.ID), &draft)
	switch {
	case err == nil:
		if draft.Skills == nil {
			draft.Skills = []string{}
		}
		return &draft, nil
	case errors.Is(err, storage.ErrCorrupt):
		log.Warn().Err(err).Str("account_id", account.ID).Str("reason", "StorageCorrupt").Msg("Discarding unreadable assessment draft")
	case !errors.Is(err, storage.ErrNotFound):
		return nil, err
	}
	return assessment.NewDraft(account.Name, account.Sector), nil
}

// ApplyStep records the answer for one step and persists the draft.
func (s *AssessmentService) ApplyStep(ctx context.Context, account models.Account, step assessment.Step, in StepInput) (*assessment.Draft, error) {
	draft, err := s.GetDraft(ctx, account)
	if err != nil {
		return nil, err
	}

	switch step {
	case assessment.StepSector:
		if err := draft.SelectSector(in.Sector); err != nil {
			return nil, err
		}
	case assessment.StepSkills:
		for _, skill := range in.Remove {
			draft.RemoveSkill(skill)
		}
		for _, skill := range in.Add {
			draft.AddSkill(skill)
		}
		for _, skill := range in.Toggle {
			draft.ToggleSkill(skill)
		}
		if in.Done {
			draft.CompleteSkills()
		}
	case assessment.StepLevel:
		if in.Level != "" {
			if err := draft.SetLevel(in.Level); err != nil {
				return nil, err
			}
		}
		if in.StudyHours != nil {
			if err := draft.SetStudyHours(*in.StudyHours); err != nil {
				return nil, err
			}
		}
		if in.Done {
			draft.CompleteLevel()
		}
	case assessment.StepGoal:
		if in.Name != nil {
			draft.SetName(*in.Name)
		}
		draft.SetGoal(in.Goal)
	default:
		return nil, fmt.Errorf("%w: %q", assessment.ErrUnknownStep, step)
	}

	if err := storage.PutJSON(ctx, s.store, storage.DraftKey(account.ID), draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// Submit validates the draft and returns the Profile snapshot. The draft is
// left in place; callers discard it once a roadmap is stored.
func (s *AssessmentService) Submit(ctx context.Context, account models.Account, mode assessment.Mode) (models.Profile, error) {
	draft, err := s.GetDraft(ctx, account)
	if err != nil {
		return models.Profile{}, err
	}
	return draft.Submit(mode)
}

func (s *AssessmentService) Discard(ctx context.Context, accountID string) error {
	return s.store.Delete(ctx, storage.DraftKey(accountID))
}
