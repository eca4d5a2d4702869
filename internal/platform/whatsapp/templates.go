package whatsapp

// Logical template names used by the rest of the service. The registry maps
// them to the identifiers the ADA template catalogue knows.
const (
	TemplateGreetings     = "Greetings"
	TemplateDiet          = "Diet"
	TemplateExercise      = "Exercise"
	TemplateRoutine       = "Routine"
	TemplateHealthSummary = "HealthSummary"
)

// TemplateRegistry is an immutable mapping from logical plan/message names to
// provider template identifiers. It is built once at process start.
type TemplateRegistry struct {
	templates map[string]string
}

// NewTemplateRegistry returns the registry pre-loaded with the ADA templates.
func NewTemplateRegistry() *TemplateRegistry {
	return &TemplateRegistry{
		templates: map[string]string{
			TemplateGreetings:     "welcome_journey",
			TemplateDiet:          "diet_plan_temp",
			TemplateExercise:      "exercise_plan_temp",
			TemplateRoutine:       "routine_plan_temp",
			TemplateHealthSummary: "summary",
			"summary1":            "summary1",
		},
	}
}

// Resolve returns the provider template identifier for a logical name.
// Callers must check ok before using the identifier; an unknown name is not
// an error here, but sending with an empty template will fail downstream.
func (r *TemplateRegistry) Resolve(name string) (string, bool) {
	id, ok := r.templates[name]
	return id, ok
}
