// internal/conditions/evaluate.go
package conditions

import (
	"github.com/flowbuilder/branchkeeper/internal/types"
)

/*
 * Condition evaluation.
 *
 * Evaluates a CompiledConfig against a record:
 *   1. Per rule: resolve field path -> apply condition -> bool
 *   2. Per group: combine rule results with the group's logic
 *   3. Top level: combine group results with GroupLogic
 *
 * Every rule is evaluated, even once a group's outcome is decided, so the
 * trace shows the editor which rules fired. Evaluation is pure: no state,
 * no I/O, no mutation of the config or the record.
 */

// RuleResult is the outcome of one rule.
type RuleResult struct {
	RuleID string `json:"ruleId"`
	Result bool   `json:"result"`
}

// GroupResult is the outcome of one group and its rules, in authoring order.
type GroupResult struct {
	GroupID string       `json:"groupId"`
	Result  bool         `json:"result"`
	Rules   []RuleResult `json:"ruleResults"`
}

// Result is the verdict plus the trace that produced it.
type Result struct {
	Verdict bool          `json:"verdict"`
	Groups  []GroupResult `json:"groupResults"`
}

// Handle names the If/Else output a verdict routes to.
type Handle string

const (
	HandleTrue  Handle = "true"
	HandleFalse Handle = "false"
)

// Handle returns the output handle the workflow executor should follow.
func (r Result) Handle() Handle {
	if r.Verdict {
		return HandleTrue
	}
	return HandleFalse
}

// RuleCount returns the number of rule results in the trace.
func (r Result) RuleCount() int {
	n := 0
	for _, g := range r.Groups {
		n += len(g.Rules)
	}
	return n
}

// Evaluate compiles config and evaluates it against record.
// The only error is *types.ConfigError for structurally invalid configs.
func Evaluate(config types.ConditionsConfig, record types.Record) (Result, error) {
	compiled, err := Compile(config)
	if err != nil {
		return Result{}, err
	}
	return compiled.Evaluate(record), nil
}

// Evaluate runs the compiled configuration against record.
func (c *CompiledConfig) Evaluate(record types.Record) Result {
	result := Result{
		Groups: make([]GroupResult, len(c.Groups)),
	}

	groupResults := make([]bool, len(c.Groups))
	for i, group := range c.Groups {
		gr := evaluateGroup(group, record)
		result.Groups[i] = gr
		groupResults[i] = gr.Result
	}

	result.Verdict = combine(c.GroupLogic, groupResults)
	return result
}

// evaluateGroup evaluates every rule of the group and combines the results.
func evaluateGroup(group CompiledGroup, record types.Record) GroupResult {
	gr := GroupResult{
		GroupID: group.ID,
		Rules:   make([]RuleResult, len(group.Rules)),
	}

	ruleResults := make([]bool, len(group.Rules))
	for i, rule := range group.Rules {
		matched := evaluateRule(rule, record)
		gr.Rules[i] = RuleResult{RuleID: rule.ID, Result: matched}
		ruleResults[i] = matched
	}

	gr.Result = combine(group.Logic, ruleResults)
	return gr
}

// evaluateRule resolves the field and applies the rule's condition.
func evaluateRule(rule CompiledRule, record types.Record) bool {
	resolved := resolveSegments(rule.Path, record)
	return rule.Condition.Match(resolved.Value, resolved.Found)
}

// combine folds results with logic. Callers guarantee results is non-empty.
func combine(logic types.Logic, results []bool) bool {
	if logic == types.LogicOr {
		for _, r := range results {
			if r {
				return true
			}
		}
		return false
	}
	for _, r := range results {
		if !r {
			return false
		}
	}
	return true
}
