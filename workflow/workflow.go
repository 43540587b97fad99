// Package workflow loads declarative workflow definitions from YAML and
// converts them into the core.Workflow form executed by the orchestrator.
//
// Definitions are validated on parse: structural rules via struct tags and
// cross-field rules (unique step ids, resolvable step names) in code, so an
// invalid file fails fast instead of halting mid-run.
package workflow

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/nxtg-ai/forge/core"
)

// Definition is the YAML representation of a workflow.
type Definition struct {
	ID    string           `yaml:"id" validate:"required"`
	Name  string           `yaml:"name"`
	Steps []StepDefinition `yaml:"steps" validate:"required,min=1,dive"`
}

// StepDefinition is one YAML workflow step.
type StepDefinition struct {
	ID              string         `yaml:"id" validate:"required"`
	Name            string         `yaml:"name"`
	Agent           string         `yaml:"agent" validate:"required"`
	Task            TaskDefinition `yaml:"task"`
	RequiresSignOff bool           `yaml:"requires_sign_off"`
	RetryOnFailure  bool           `yaml:"retry_on_failure"`
}

// TaskDefinition describes the step's unit of work. An empty title falls
// back to the step name.
type TaskDefinition struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Priority    int    `yaml:"priority"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Parse unmarshals and validates a YAML workflow definition.
func Parse(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parsing workflow: %w", err)
	}

	if err := validate.Struct(&def); err != nil {
		return nil, fmt.Errorf("invalid workflow %q: %w", def.ID, err)
	}

	seen := make(map[string]bool, len(def.Steps))
	for _, step := range def.Steps {
		if seen[step.ID] {
			return nil, fmt.Errorf("invalid workflow %q: duplicate step id %q", def.ID, step.ID)
		}
		seen[step.ID] = true
	}

	return &def, nil
}

// Load reads and parses a workflow definition file.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading workflow file: %w", err)
	}
	return Parse(data)
}

// Workflow converts the definition into its executable form.
func (d *Definition) Workflow() *core.Workflow {
	wf := &core.Workflow{ID: d.ID, Name: d.Name}
	for _, step := range d.Steps {
		title := step.Task.Title
		if title == "" {
			title = step.Name
		}
		if title == "" {
			title = step.ID
		}

		task := core.NewTask(title, step.Task.Description)
		task.Priority = step.Task.Priority

		wf.Steps = append(wf.Steps, core.WorkflowStep{
			ID:              step.ID,
			Name:            step.Name,
			AgentID:         step.Agent,
			Task:            task,
			RequiresSignOff: step.RequiresSignOff,
			RetryOnFailure:  step.RetryOnFailure,
		})
	}
	return wf
}
