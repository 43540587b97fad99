package workflow

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
id: release
name: Release pipeline
steps:
  - id: build
    name: Build service
    agent: backend-1
    task:
      title: Build the service
      description: Compile and package
      priority: 2
  - id: verify
    name: Verify build
    agent: qa-1
    requires_sign_off: true
    retry_on_failure: true
`

func TestParseValidDefinition(t *testing.T) {
	def, err := Parse([]byte(validYAML))

	require.NoError(t, err)
	assert.Equal(t, "release", def.ID)
	require.Len(t, def.Steps, 2)
	assert.Equal(t, "backend-1", def.Steps[0].Agent)
	assert.True(t, def.Steps[1].RequiresSignOff)
	assert.True(t, def.Steps[1].RetryOnFailure)
}

func TestParseRejectsMissingFields(t *testing.T) {
	cases := map[string]string{
		"missing id":         "name: x\nsteps:\n  - id: a\n    agent: b\n",
		"missing steps":      "id: x\nname: y\n",
		"step without agent": "id: x\nsteps:\n  - id: a\n",
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(input))
			assert.Error(t, err)
		})
	}
}

func TestParseRejectsDuplicateStepIDs(t *testing.T) {
	input := `
id: dup
steps:
  - id: a
    agent: x
  - id: a
    agent: y
`
	_, err := Parse([]byte(input))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate step id")
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("id: [unclosed"))
	assert.Error(t, err)
}

func TestWorkflowConversion(t *testing.T) {
	def, err := Parse([]byte(validYAML))
	require.NoError(t, err)

	wf := def.Workflow()

	assert.Equal(t, "release", wf.ID)
	require.Len(t, wf.Steps, 2)

	first := wf.Steps[0]
	assert.Equal(t, "build", first.ID)
	require.NotNil(t, first.Task)
	assert.Equal(t, "Build the service", first.Task.Title)
	assert.Equal(t, 2, first.Task.Priority)

	// Task title falls back to the step name when unset.
	second := wf.Steps[1]
	require.NotNil(t, second.Task)
	assert.Equal(t, "Verify build", second.Task.Title)
	assert.True(t, second.RequiresSignOff)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wf.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validYAML), 0o644))

	def, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "release", def.ID)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
