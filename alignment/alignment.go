// Package alignment implements a rule based core.AlignmentChecker that
// scores decisions against a project vision and explicit constraints.
//
// The checker is deliberately deterministic: constraints are plain keyword
// rules, so the same decision always yields the same report. Deployments
// wanting model-graded alignment can implement core.AlignmentChecker on top
// of the model package instead.
package alignment

import (
	"context"
	"strings"
	"sync"

	"github.com/nxtg-ai/forge/core"
)

// Rule is one constraint checked against a decision's text. A matched
// Forbidden term records a violation; a missing Expected term records a
// suggestion. Weight scales how much a violation costs; zero means 0.25.
type Rule struct {
	Name      string  `json:"name"`
	Forbidden string  `json:"forbidden,omitempty"`
	Expected  string  `json:"expected,omitempty"`
	Message   string  `json:"message"`
	Weight    float64 `json:"weight,omitempty"`
}

const defaultWeight = 0.25

// RuleChecker evaluates decisions against a fixed rule set. Safe for
// concurrent use; rules can be added at runtime.
type RuleChecker struct {
	mu     sync.RWMutex
	vision string
	rules  []Rule
}

var _ core.AlignmentChecker = (*RuleChecker)(nil)

// NewRuleChecker creates a checker with a vision statement and initial
// rules.
func NewRuleChecker(vision string, rules ...Rule) *RuleChecker {
	return &RuleChecker{vision: vision, rules: rules}
}

// AddRule appends a constraint to the rule set.
func (c *RuleChecker) AddRule(rule Rule) {
	c.mu.Lock()
	c.rules = append(c.rules, rule)
	c.mu.Unlock()
}

// Vision returns the project vision statement the checker was built with.
func (c *RuleChecker) Vision() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vision
}

// CheckAlignment scores the decision in [0,1]. The score starts at 1 and
// each violated rule subtracts its weight; Aligned is true when no rule is
// violated. Expected-term rules never reduce the score, they only add
// suggestions.
func (c *RuleChecker) CheckAlignment(_ context.Context, decision core.Decision) (*core.AlignmentReport, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	text := strings.ToLower(decision.Type + " " + decision.Description + " " + decision.Rationale)
	report := &core.AlignmentReport{Score: 1}

	for _, rule := range c.rules {
		weight := rule.Weight
		if weight == 0 {
			weight = defaultWeight
		}

		if rule.Forbidden != "" && strings.Contains(text, strings.ToLower(rule.Forbidden)) {
			report.Violations = append(report.Violations, rule.Message)
			report.Score -= weight
			continue
		}
		if rule.Expected != "" && !strings.Contains(text, strings.ToLower(rule.Expected)) {
			report.Suggestions = append(report.Suggestions, rule.Message)
		}
	}

	if report.Score < 0 {
		report.Score = 0
	}
	report.Aligned = len(report.Violations) == 0
	return report, nil
}
