package synthesis

// Response schemas sent to providers that support structured output.

func str() *Schema { return &Schema{Type: TypeString} }
func num() *Schema { return &Schema{Type: TypeNumber} }
func strList() *Schema { return &Schema{Type: TypeArray, Items: str()} }
func score() *Schema { return &Schema{Type: TypeNumber, Minimum: ptr(0.0), Maximum: ptr(100.0)} }
func obj(required []string, props map[string]*Schema) *Schema {
	return &Schema{Type: TypeObject, Properties: props, Required: required}
}

var roadmapSchema = obj(
	[]string{"missingSkills", "recommendation", "roadmap", "featuredProjects", "readinessScore", "baselineScore"},
	map[string]*Schema{
		"missingSkills":  strList(),
		"recommendation": str(),
		"roadmap": {
			Type:     TypeArray,
			MinItems: ptr(int64(1)),
			Items: obj(
				[]string{"week", "topic", "description", "tasks"},
				map[string]*Schema{
					"week":           {Type: TypeInteger, Minimum: ptr(1.0)},
					"topic":          str(),
					"description":    str(),
					"tasks":          {Type: TypeArray, Items: str(), MinItems: ptr(int64(1))},
					"resources":      strList(),
					"estimatedWeeks": num(),
					"courseLink":     str(),
					"suggestedCourses": {
						Type: TypeArray,
						Items: obj([]string{"title", "platform"}, map[string]*Schema{
							"title":    str(),
							"platform": str(),
							"url":      str(),
						}),
					},
				},
			),
		},
		"featuredProjects": {
			Type: TypeArray,
			Items: obj([]string{"title", "difficulty", "description"}, map[string]*Schema{
				"title":       str(),
				"difficulty":  str(),
				"description": str(),
				"milestones":  strList(),
			}),
		},
		"readinessScore": score(),
		"baselineScore":  score(),
	},
)

var analysisSchema = obj([]string{"skills"}, map[string]*Schema{
	"skills": {
		Type:     TypeArray,
		MinItems: ptr(int64(1)),
		Items: obj([]string{"subject", "current", "required"}, map[string]*Schema{
			"subject":  str(),
			"current":  score(),
			"required": score(),
		}),
	},
})

var portfolioSchema = obj(
	[]string{"tagline", "sections", "personalBrandAdvice", "suggestedCaseStudies"},
	map[string]*Schema{
		"tagline": str(),
		"sections": {
			Type:     TypeArray,
			MinItems: ptr(int64(1)),
			Items: obj([]string{"title"}, map[string]*Schema{
				"title":       str(),
				"description": str(),
				"items":       strList(),
			}),
		},
		"personalBrandAdvice":  str(),
		"suggestedCaseStudies": strList(),
	},
)

var quizSchema = obj([]string{"questions"}, map[string]*Schema{
	"questions": {
		Type:     TypeArray,
		MinItems: ptr(int64(1)),
		Items: obj([]string{"question", "options", "correctIndex"}, map[string]*Schema{
			"question":     str(),
			"options":      {Type: TypeArray, Items: str(), MinItems: ptr(int64(4)), MaxItems: ptr(int64(4))},
			"correctIndex": {Type: TypeInteger, Minimum: ptr(0.0), Maximum: ptr(3.0)},
		}),
	},
})
