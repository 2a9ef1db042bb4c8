package synthesis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/isdelr/stratum-be/internal/models"
)

// Wire shapes returned by the model. Pointer fields distinguish "absent" from
// zero so required numbers can be enforced. Nothing here reaches the data model
// until validate has accepted it.
//
// roadmap:
// {
//   "missingSkills": ["string"],
//   "recommendation": "string",
//   "roadmap": [{"week": 1, "topic": "string", "description": "string",
//                "tasks": ["string"], "resources": ["string"], "estimatedWeeks": 1,
//                "courseLink": "string", "suggestedCourses": [{"title", "platform", "url"}]}],
//   "featuredProjects": [{"title", "difficulty", "description", "milestones": []}],
//   "readinessScore": 0-100,
//   "baselineScore": 0-100
// }
type roadmapPayload struct {
	MissingSkills    []string         `json:"missingSkills" validate:"required"`
	Recommendation   string           `json:"recommendation" validate:"required"`
	Roadmap          []stepPayload    `json:"roadmap" validate:"required,min=1,dive"`
	FeaturedProjects []projectPayload `json:"featuredProjects" validate:"omitempty,dive"`
	ReadinessScore   *float64         `json:"readinessScore" validate:"required,gte=0,lte=100"`
	BaselineScore    *float64         `json:"baselineScore" validate:"required,gte=0,lte=100"`
}

type stepPayload struct {
	Week             *float64        `json:"week" validate:"required,gte=1"`
	Topic            string          `json:"topic" validate:"required_without=Title"`
	Title            string          `json:"title"`
	Description      string          `json:"description" validate:"required"`
	Tasks            []string        `json:"tasks" validate:"required,min=1,dive,required"`
	Resources        []string        `json:"resources"`
	EstimatedWeeks   *float64        `json:"estimatedWeeks" validate:"omitempty,gte=0"`
	CourseLink       string          `json:"courseLink"`
	SuggestedCourses []coursePayload `json:"suggestedCourses" validate:"omitempty,dive"`
}

type coursePayload struct {
	Title    string `json:"title" validate:"required"`
	Platform string `json:"platform" validate:"required"`
	URL      string `json:"url"`
}

type projectPayload struct {
	Title       string   `json:"title" validate:"required"`
	Difficulty  string   `json:"difficulty" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Milestones  []string `json:"milestones"`
}

type analysisPayload struct {
	Skills []skillPayload `json:"skills" validate:"required,min=1,dive"`
}

type skillPayload struct {
	Subject  string   `json:"subject" validate:"required"`
	Current  *float64 `json:"current" validate:"required,gte=0,lte=100"`
	Required *float64 `json:"required" validate:"omitempty,gte=0,lte=100"`
}

type portfolioPayload struct {
	Tagline              string           `json:"tagline" validate:"required"`
	Sections             []sectionPayload `json:"sections" validate:"required,min=1,dive"`
	PersonalBrandAdvice  string           `json:"personalBrandAdvice" validate:"required"`
	SuggestedCaseStudies []string         `json:"suggestedCaseStudies" validate:"required"`
}

type sectionPayload struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description"`
	Items       []string `json:"items"`
}

type quizPayload struct {
	Questions []questionPayload `json:"questions" validate:"required,min=1,dive"`
}

type questionPayload struct {
	Question     string   `json:"question" validate:"required"`
	Options      []string `json:"options" validate:"len=4,dive,required"`
	CorrectIndex *int     `json:"correctIndex" validate:"required,gte=0,lte=3"`
}

type opportunitiesPayload struct {
	Items []opportunityPayload `json:"items" validate:"required,min=1,dive"`
}

type opportunityPayload struct {
	Title        string `json:"title" validate:"required"`
	Organization string `json:"organization" validate:"required"`
	Type         string `json:"type" validate:"required,oneof=Job Internship Program"`
	Description  string `json:"description"`
	URL          string `json:"url" validate:"omitempty,url"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// decode extracts, decodes and validates a payload. A bare array is accepted
// in place of an object whose only list lives under wrapKey.
func decode[T any](text string, kind Kind, wrapKey string) (*T, error) {
	raw, err := ExtractJSON(text, kind)
	if err != nil {
		return nil, err
	}
	if wrapKey != "" && bytes.HasPrefix(bytes.TrimSpace(raw), []byte("[")) {
		raw = []byte(fmt.Sprintf("{%q:%s}", wrapKey, raw))
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := validate.Struct(&out); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	return &out, nil
}

func (p *roadmapPayload) toResult() (models.RoadmapResult, error) {
	steps := make([]models.RoadmapStep, len(p.Roadmap))
	prevWeek := 0
	for i, s := range p.Roadmap {
		week := *s.Week
		if week != math.Trunc(week) {
			return models.RoadmapResult{}, fmt.Errorf("roadmap[%d]: week %v is not a whole number", i, week)
		}
		if int(week) <= prevWeek {
			return models.RoadmapResult{}, fmt.Errorf("roadmap[%d]: week %d does not follow week %d", i, int(week), prevWeek)
		}
		prevWeek = int(week)

		topic := strings.TrimSpace(s.Topic)
		if topic == "" {
			topic = strings.TrimSpace(s.Title)
		}
		estimated := 1
		if s.EstimatedWeeks != nil && *s.EstimatedWeeks >= 1 {
			estimated = int(math.Round(*s.EstimatedWeeks))
		}

		var courses []models.Course
		for _, c := range s.SuggestedCourses {
			courses = append(courses, models.Course(c))
		}
		steps[i] = models.RoadmapStep{
			Week:             prevWeek,
			Topic:            topic,
			Description:      s.Description,
			Tasks:            s.Tasks,
			Resources:        nonNil(s.Resources),
			EstimatedWeeks:   estimated,
			CourseLink:       s.CourseLink,
			SuggestedCourses: courses,
		}
	}

	// Empty optional lists stay nil so they match what storage gives back.
	var projects []models.FeaturedProject
	for _, fp := range p.FeaturedProjects {
		if len(fp.Milestones) == 0 {
			fp.Milestones = nil
		}
		projects = append(projects, models.FeaturedProject(fp))
	}

	return models.RoadmapResult{
		MissingSkills:    nonNil(p.MissingSkills),
		Recommendation:   p.Recommendation,
		Steps:            steps,
		FeaturedProjects: projects,
		ReadinessScore:   *p.ReadinessScore,
		BaselineScore:    *p.BaselineScore,
	}, nil
}

func (p *analysisPayload) toScores() []models.SkillScore {
	out := make([]models.SkillScore, len(p.Skills))
	for i, s := range p.Skills {
		required := 100.0
		if s.Required != nil {
			required = *s.Required
		}
		out[i] = models.SkillScore{
			Subject:  s.Subject,
			Current:  *s.Current,
			Required: required,
			FullMark: 100,
		}
	}
	return out
}

func (p *portfolioPayload) toStrategy() models.PortfolioStrategy {
	sections := make([]models.PortfolioSection, len(p.Sections))
	for i, s := range p.Sections {
		sections[i] = models.PortfolioSection{Title: s.Title, Description: s.Description, Items: nonNil(s.Items)}
	}
	return models.PortfolioStrategy{
		Tagline:              p.Tagline,
		Sections:             sections,
		PersonalBrandAdvice:  p.PersonalBrandAdvice,
		SuggestedCaseStudies: p.SuggestedCaseStudies,
	}
}

func (p *quizPayload) toQuestions() []models.QuizQuestion {
	out := make([]models.QuizQuestion, len(p.Questions))
	for i, q := range p.Questions {
		out[i] = models.QuizQuestion{Question: q.Question, Options: q.Options, CorrectIndex: *q.CorrectIndex}
	}
	return out
}

func (p *opportunitiesPayload) toOpportunities() []models.Opportunity {
	out := make([]models.Opportunity, len(p.Items))
	for i, o := range p.Items {
		out[i] = models.Opportunity(o)
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
