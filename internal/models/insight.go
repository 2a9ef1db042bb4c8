package models

import "time"

// PortfolioStrategy describes how a user should present their work.
type PortfolioStrategy struct {
	Tagline              string             `json:"tagline"`
	Sections             []PortfolioSection `json:"sections"`
	PersonalBrandAdvice  string             `json:"personalBrandAdvice"`
	SuggestedCaseStudies []string           `json:"suggestedCaseStudies"`
}

type PortfolioSection struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Items       []string `json:"items"`
}

type QuizQuestion struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
}

// Opportunity is a live job, internship or program found via grounded search.
type Opportunity struct {
	Title        string `json:"title"`
	Organization string `json:"organization"`
	Type         string `json:"type"`
	Description  string `json:"description"`
	URL          string `json:"url"`
}

type ChatRole string

const (
	RoleUser  ChatRole = "user"
	RoleModel ChatRole = "model"
)

type ChatMessage struct {
	Role      ChatRole  `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}
