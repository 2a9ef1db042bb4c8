package models

import "time"

// RoadmapResult is the synthesized career plan for one profile.
// It is replaced wholesale on regeneration, never merged.
type RoadmapResult struct {
	ID               string            `json:"id"`
	Goal             string            `json:"goal"`
	MissingSkills    []string          `json:"missingSkills"`
	Recommendation   string            `json:"recommendation"`
	Steps            []RoadmapStep     `json:"roadmap"`
	FeaturedProjects []FeaturedProject `json:"featuredProjects,omitempty"`
	SkillAnalysis    []SkillScore      `json:"skillAnalysis,omitempty"`
	ReadinessScore   float64           `json:"readinessScore"`
	BaselineScore    float64           `json:"baselineScore"`
	GeneratedAt      time.Time         `json:"generatedAt"`
}

// RoadmapStep is one phase of a roadmap. Week is 1-based and strictly increasing.
type RoadmapStep struct {
	Week             int      `json:"week"`
	Topic            string   `json:"topic"`
	Description      string   `json:"description"`
	Tasks            []string `json:"tasks"`
	Resources        []string `json:"resources"`
	EstimatedWeeks   int      `json:"estimatedWeeks"`
	CourseLink       string   `json:"courseLink,omitempty"`
	SuggestedCourses []Course `json:"suggestedCourses,omitempty"`
}

type Course struct {
	Title    string `json:"title"`
	Platform string `json:"platform"`
	URL      string `json:"url,omitempty"`
}

type FeaturedProject struct {
	Title       string   `json:"title"`
	Difficulty  string   `json:"difficulty"`
	Description string   `json:"description"`
	Milestones  []string `json:"milestones,omitempty"`
}

// SkillScore is one axis of the skill-gap radar.
type SkillScore struct {
	Subject  string  `json:"subject"`
	Current  float64 `json:"current"`
	Required float64 `json:"required"`
	FullMark float64 `json:"fullMark"`
}
