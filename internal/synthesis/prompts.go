package synthesis

import (
	"fmt"
	"strings"

	"github.com/isdelr/stratum-be/internal/models"
)

const jsonOnly = "Return only valid JSON. Do not include explanations, markdown, or text before or after the JSON."

func roadmapPrompt(p models.Profile) (system, user string) {
	system = `You are a senior career architect who designs concrete, week-by-week learning roadmaps.
Base all reasoning only on the provided profile. Do not invent experience the user did not state.
` + jsonOnly

	user = fmt.Sprintf(`Generate a professional mastery roadmap for %s.

Context:
- Sector: %s
- Target goal: %s
- Current proficiency: %s
- Daily time commitment: %d hours
- Existing skills: %s

Return a JSON object with:
- "missingSkills": skills the user lacks for the goal
- "recommendation": one paragraph of strategic advice
- "roadmap": 4 to 6 phases, each with "week" (1-based, increasing), "topic", "description",
  "tasks" (3-5 concrete tasks), "resources", "estimatedWeeks", optional "courseLink"
  and optional "suggestedCourses" ({"title","platform","url"})
- "featuredProjects": 2-3 portfolio projects with "title", "difficulty", "description", "milestones"
- "readinessScore": 0-100 readiness for the goal after completing the roadmap
- "baselineScore": 0-100 readiness today`,
		p.Name, p.Sector, p.Goal, p.Level, p.StudyHoursPerDay, strings.Join(p.Skills, ", "))
	return system, user
}

func analysisPrompt(sector models.Sector, summary string) (system, user string) {
	system = "You are a technical talent analyst. " + jsonOnly
	user = fmt.Sprintf(`Analyze skill gaps for a professional in %s.
Profile: %s

Return a JSON object with a key "skills" containing an array of 6 objects.
Each object must have "subject" (string), "current" (number 0-100) and "required" (number 0-100).`,
		sector, summary)
	return system, user
}

// ProfileSummary condenses a profile for the skill-analysis prompt.
func ProfileSummary(p models.Profile) string {
	return fmt.Sprintf("Skills: %s. Level: %s (%d%%). Goal: %s",
		strings.Join(p.Skills, ", "), p.Level, p.Level.Score(), p.Goal)
}

func portfolioPrompt(p models.Profile) (system, user string) {
	system = "You are a personal-brand strategist for technical professionals. " + jsonOnly
	user = fmt.Sprintf(`Design a high-impact portfolio strategy for %s in %s.
Goal: %s
Skills: %s

Return a JSON object with "tagline", "sections" (each with "title", "description", "items"),
"personalBrandAdvice" and "suggestedCaseStudies".`,
		p.Name, p.Sector, p.Goal, strings.Join(p.Skills, ", "))
	return system, user
}

func quizPrompt(sector models.Sector) (system, user string) {
	system = "You are a technical examiner. " + jsonOnly
	user = fmt.Sprintf(`Generate 10 advanced technical multiple-choice questions for %s.
Return a JSON object with a key "questions" containing an array.
Each item has "question", "options" (exactly 4 strings) and "correctIndex" (0-3).`, sector)
	return system, user
}

func opportunitiesPrompt(sector models.Sector) (system, user string) {
	system = "You are a career research assistant with access to live web search."
	user = fmt.Sprintf(`Search for 5 active career opportunities (internships, roles, or fellowships) in the %s industry.
For each, provide:
- title: name of the role
- organization: the company
- type: "Job", "Internship", or "Program"
- description: brief summary
- url: direct link to the source or application

Return the results as a JSON array.`, sector)
	return system, user
}

func rewritePrompt(text string) (system, user string) {
	system = "You are a professional resume writer. Rewrite text to be corporate and impactful. No emojis. Reply with the rewritten text only."
	user = fmt.Sprintf("Rewrite: %q", text)
	return system, user
}

var mentorPersonas = map[models.Sector]string{
	models.SectorHealthcare:      "Dr. Cypher, a senior health-tech lead who gives technical, evidence-based guidance",
	models.SectorAgriculture:     "Gaia, an agtech innovator focused on data, sustainability and scalable IoT architectures",
	models.SectorSmartCity:       "Civis, an urban infrastructure expert focused on connectivity, public safety and smart grids",
	models.SectorFintech:         "Quant, a fintech engineer who is direct, analytical and focused on security and efficiency",
	models.SectorRenewableEnergy: "Solara, a systems engineer focused on energy physics, grid integration and hardware-software synergy",
}

func mentorPrompt(sector models.Sector, name string) string {
	persona, ok := mentorPersonas[sector]
	if !ok {
		persona = "a senior technical mentor"
	}
	return fmt.Sprintf(`You are %s.
You are mentoring %s.
Rules:
1. Be logical and technically specific.
2. Provide step-by-step solutions.
3. If a question is vague, ask for technical specifics.
4. Always link answers back to the career goal in %s.`, persona, name, sector)
}

func conciergePrompt() string {
	return `You are the Stratum concierge.
Help users find their way around the app: the assessment, their roadmap and task progress, skill insights, portfolio strategy and the sector mentor.
Answer in short, logical steps and point to the screen or feature that does what they ask.
Do not invent features the app does not have.`
}
