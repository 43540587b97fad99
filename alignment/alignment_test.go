package alignment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nxtg-ai/forge/core"
)

func newChecker() *RuleChecker {
	return NewRuleChecker("ship a single-process coordination engine",
		Rule{Name: "no-external-db", Forbidden: "postgres", Message: "decisions must not introduce external databases", Weight: 0.6},
		Rule{Name: "mention-testing", Expected: "test", Message: "consider how the change will be tested"},
	)
}

func TestCheckAlignmentClean(t *testing.T) {
	checker := newChecker()

	report, err := checker.CheckAlignment(context.Background(), core.Decision{
		Description: "cache task results in memory",
		Rationale:   "covered by unit tests",
	})

	require.NoError(t, err)
	assert.True(t, report.Aligned)
	assert.Equal(t, 1.0, report.Score)
	assert.Empty(t, report.Violations)
	assert.Empty(t, report.Suggestions)
}

func TestCheckAlignmentViolation(t *testing.T) {
	checker := newChecker()

	report, err := checker.CheckAlignment(context.Background(), core.Decision{
		Description: "store queue state in postgres",
	})

	require.NoError(t, err)
	assert.False(t, report.Aligned)
	assert.InDelta(t, 0.4, report.Score, 1e-9)
	require.Len(t, report.Violations, 1)
	assert.Contains(t, report.Violations[0], "external databases")
}

func TestCheckAlignmentSuggestions(t *testing.T) {
	checker := newChecker()

	report, err := checker.CheckAlignment(context.Background(), core.Decision{
		Description: "refactor the delivery loop",
	})

	require.NoError(t, err)
	assert.True(t, report.Aligned, "missing expected terms do not break alignment")
	require.Len(t, report.Suggestions, 1)
	assert.Contains(t, report.Suggestions[0], "tested")
}

func TestScoreNeverNegative(t *testing.T) {
	checker := NewRuleChecker("vision",
		Rule{Forbidden: "bad", Message: "one", Weight: 0.7},
		Rule{Forbidden: "bad", Message: "two", Weight: 0.7},
	)

	report, err := checker.CheckAlignment(context.Background(), core.Decision{Description: "bad idea"})

	require.NoError(t, err)
	assert.Equal(t, 0.0, report.Score)
	assert.Len(t, report.Violations, 2)
}

func TestAddRule(t *testing.T) {
	checker := NewRuleChecker("vision")
	checker.AddRule(Rule{Forbidden: "yolo", Message: "no unattended changes"})

	report, err := checker.CheckAlignment(context.Background(), core.Decision{Description: "yolo deploy"})

	require.NoError(t, err)
	assert.False(t, report.Aligned)
}
