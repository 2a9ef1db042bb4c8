package models

import "time"

// Account represents a registered user together with their career profile.
type Account struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Email           string          `json:"email"`
	PasswordHash    string          `json:"passwordHash,omitempty"` // stripped by Sanitized before leaving the service layer
	Sector          Sector          `json:"sector"`
	Skills          []string        `json:"skills"`
	AssessmentScore *int            `json:"assessmentScore,omitempty"`
	Roadmaps        []RoadmapResult `json:"roadmaps"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// Sanitized returns a copy of the account without credential material.
func (a Account) Sanitized() Account {
	a.PasswordHash = ""
	return a
}

// ActiveRoadmap returns the roadmap in the single active slot, if any.
func (a *Account) ActiveRoadmap() *RoadmapResult {
	if len(a.Roadmaps) == 0 {
		return nil
	}
	return &a.Roadmaps[0]
}

// SetActiveRoadmap overwrites the active slot. Older roadmaps are discarded.
func (a *Account) SetActiveRoadmap(r RoadmapResult) {
	a.Roadmaps = []RoadmapResult{r}
}
