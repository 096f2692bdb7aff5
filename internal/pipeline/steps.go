package pipeline

// Step names reported in progress events.
const (
	StepClassify = "classify"
	StepScrape   = "scrape"
	StepBuild    = "build"
	StepGenerate = "generate"
	StepValidate = "validate"
)

// Step categories.
const (
	CategoryInput      = "input"
	CategoryGeneration = "generation"
)

// StepDefinition describes one pipeline step.
type StepDefinition struct {
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	Dependencies []string `json:"dependencies"`
}

var stepDefinitions = []StepDefinition{
	{Name: StepClassify, Category: CategoryInput, Dependencies: []string{}},
	{Name: StepScrape, Category: CategoryInput, Dependencies: []string{}},
	{Name: StepBuild, Category: CategoryGeneration, Dependencies: []string{StepClassify, StepScrape}},
	{Name: StepGenerate, Category: CategoryGeneration, Dependencies: []string{StepBuild}},
	{Name: StepValidate, Category: CategoryGeneration, Dependencies: []string{StepGenerate}},
}

// Steps returns the pipeline steps in execution order.
func Steps() []StepDefinition {
	out := make([]StepDefinition, len(stepDefinitions))
	for i, s := range stepDefinitions {
		deps := make([]string, len(s.Dependencies))
		copy(deps, s.Dependencies)
		out[i] = StepDefinition{Name: s.Name, Category: s.Category, Dependencies: deps}
	}
	return out
}

// GetStep returns a step definition by name.
func GetStep(name string) (StepDefinition, bool) {
	for _, s := range Steps() {
		if s.Name == name {
			return s, true
		}
	}
	return StepDefinition{}, false
}
