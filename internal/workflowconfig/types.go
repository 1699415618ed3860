// Package workflowconfig parses and validates workflow documents from YAML.
// Nothing in internal/dag, internal/stream, or internal/matrix imports this
// package; internal/orchestrator takes a *Workflow and builds their plain
// structs from it.
package workflowconfig

// LogLevel enumerates the step-level log_level override values.
type LogLevel string

const (
	LogLevelDebug   LogLevel = "DEBUG"
	LogLevelInfo    LogLevel = "INFO"
	LogLevelWarning LogLevel = "WARNING"
	LogLevelError   LogLevel = "ERROR"
)

// Step is one step definition within a Workflow document.
type Step struct {
	ID        string         `yaml:"id" validate:"required"`
	Module    string         `yaml:"module" validate:"required"`
	Config    map[string]any `yaml:"config"`
	DependsOn []string       `yaml:"depends_on"`
	LogLevel  string         `yaml:"log_level" validate:"omitempty,oneof=DEBUG INFO WARNING ERROR"`
}

// Strategy carries the optional matrix expansion list.
type Strategy struct {
	Matrix []map[string]any `yaml:"matrix"`
}

// Workflow is the parsed, validated workflow document.
type Workflow struct {
	Name        string   `yaml:"name" validate:"required"`
	Description string   `yaml:"description"`
	Version     string   `yaml:"version"`
	Strategy    Strategy `yaml:"strategy"`
	Steps       []Step   `yaml:"steps" validate:"required,min=1,dive"`
}

// HasMatrix reports whether this workflow expands into more than the single
// implicit pipeline.
func (w *Workflow) HasMatrix() bool {
	return w != nil && len(w.Strategy.Matrix) > 0
}
