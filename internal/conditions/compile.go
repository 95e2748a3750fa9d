// internal/conditions/compile.go
package conditions

import (
	"github.com/flowbuilder/branchkeeper/internal/types"
)

/*
 * Condition compilation and structural validation.
 *
 * Compiles types.ConditionsConfig into CompiledConfig: field paths split once,
 * operators turned into Condition values, logic normalized. Compile is the
 * only place a configuration can be rejected.
 *
 * Rejection rules (ConfigError):
 *   - no groups
 *   - a group with no conditions
 *
 * Everything else (unknown operators, empty fields, non-numeric operands)
 * compiles and evaluates to a boolean. Validate reports those as issues.
 *
 * Rule order is preserved exactly. The trace is reported in authoring order
 * and every rule is evaluated, so no cost-based reordering happens here.
 */

// CompiledRule is a rule ready for evaluation.
type CompiledRule struct {
	ID        string
	Field     string
	Path      []string
	Condition Condition
}

// CompiledGroup is a group ready for evaluation.
type CompiledGroup struct {
	ID    string
	Logic types.Logic
	Rules []CompiledRule
}

// CompiledConfig is a validated configuration. It is immutable after
// Compile and safe to evaluate from many goroutines.
type CompiledConfig struct {
	GroupLogic types.Logic
	Groups     []CompiledGroup
}

// Compile validates config and pre-processes it for repeated evaluation.
// Returns *types.ConfigError for configurations with no truth value.
func Compile(config types.ConditionsConfig) (*CompiledConfig, error) {
	if len(config.Groups) == 0 {
		return nil, &types.ConfigError{Group: -1, Reason: "no condition groups"}
	}

	compiled := &CompiledConfig{
		GroupLogic: config.GroupLogic.Normalize(),
		Groups:     make([]CompiledGroup, 0, len(config.Groups)),
	}

	for i, group := range config.Groups {
		if len(group.Conditions) == 0 {
			return nil, &types.ConfigError{Group: i, GroupID: group.ID, Reason: "no conditions"}
		}

		cg := CompiledGroup{
			ID:    group.ID,
			Logic: group.Logic.Normalize(),
			Rules: make([]CompiledRule, 0, len(group.Conditions)),
		}
		for _, rule := range group.Conditions {
			cg.Rules = append(cg.Rules, compileRule(rule))
		}
		compiled.Groups = append(compiled.Groups, cg)
	}

	return compiled, nil
}

// compileRule splits the field path and builds the operator condition.
func compileRule(rule types.ConditionRule) CompiledRule {
	return CompiledRule{
		ID:        rule.ID,
		Field:     rule.Field,
		Path:      SplitPath(rule.Field),
		Condition: NewCondition(rule),
	}
}

// RuleCount returns the number of rules across all groups.
func (c *CompiledConfig) RuleCount() int {
	n := 0
	for _, g := range c.Groups {
		n += len(g.Rules)
	}
	return n
}
