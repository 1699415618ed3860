package workflowconfig

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	stacerrors "github.com/stacflow/stacflow/pkg/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads, env-substitutes, parses, and validates a workflow document
// from path.
func Load(path string) (*Workflow, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, stacerrors.NewParseError(path, 0, err)
	}

	expanded := expandEnv(string(raw))

	var wf Workflow
	if err := yaml.Unmarshal([]byte(expanded), &wf); err != nil {
		return nil, stacerrors.NewParseError(path, 0, err)
	}

	if wf.Version == "" {
		wf.Version = "1.0"
	}

	if err := Validate(&wf); err != nil {
		return nil, stacerrors.NewParseError(path, 0, err)
	}

	return &wf, nil
}

// Validate runs struct-tag validation plus the cross-field checks struct
// tags cannot express (unique step ids, depends_on references).
func Validate(wf *Workflow) error {
	if err := validate.Struct(wf); err != nil {
		return err
	}

	seen := make(map[string]bool, len(wf.Steps))
	for _, step := range wf.Steps {
		if seen[step.ID] {
			return fmt.Errorf("duplicate step id %q", step.ID)
		}
		seen[step.ID] = true
	}

	for _, step := range wf.Steps {
		for _, dep := range step.DependsOn {
			if !seen[dep] {
				return fmt.Errorf("step %q depends on undeclared step %q", step.ID, dep)
			}
		}
	}

	return nil
}
