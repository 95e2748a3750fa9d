// internal/conditions/validate.go
package conditions

import (
	"fmt"
	"strings"

	"github.com/flowbuilder/branchkeeper/internal/types"
)

/*
 * Editor-side lint for condition configurations.
 *
 * Validate never fails. It reports what Compile would reject (severity
 * error) and what compiles but probably is not what the author meant
 * (severity warning): unknown operators, empty fields, operands that a
 * numeric operator cannot parse, operands on presence operators, duplicate
 * ids, and sizes beyond the service limits.
 */

// Severity classifies a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one finding. Group and Rule are -1 when not applicable.
type Issue struct {
	Severity Severity `json:"severity"`
	Group    int      `json:"group"`
	GroupID  string   `json:"groupId,omitempty"`
	Rule     int      `json:"rule"`
	RuleID   string   `json:"ruleId,omitempty"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	var loc []string
	if i.Group >= 0 {
		loc = append(loc, fmt.Sprintf("group %d", i.Group))
	}
	if i.Rule >= 0 {
		loc = append(loc, fmt.Sprintf("rule %d", i.Rule))
	}
	if len(loc) == 0 {
		return fmt.Sprintf("%s: %s", i.Severity, i.Message)
	}
	return fmt.Sprintf("%s: %s: %s", i.Severity, strings.Join(loc, " "), i.Message)
}

// HasErrors reports whether any issue would make Compile fail.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate lints config.
func Validate(config types.ConditionsConfig) []Issue {
	var issues []Issue
	add := func(sev Severity, group int, groupID string, rule int, ruleID, format string, args ...any) {
		issues = append(issues, Issue{
			Severity: sev,
			Group:    group,
			GroupID:  groupID,
			Rule:     rule,
			RuleID:   ruleID,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	if len(config.Groups) == 0 {
		add(SeverityError, -1, "", -1, "", "no condition groups")
		return issues
	}
	if len(config.Groups) > types.MaxGroups {
		add(SeverityWarning, -1, "", -1, "", "%d groups exceeds limit of %d", len(config.Groups), types.MaxGroups)
	}
	if config.GroupLogic != "" && !config.GroupLogic.Known() {
		add(SeverityWarning, -1, "", -1, "", "unknown groupLogic %q, treated as and", config.GroupLogic)
	}

	groupIDs := make(map[string]bool)
	for gi, group := range config.Groups {
		if group.ID != "" {
			if groupIDs[group.ID] {
				add(SeverityWarning, gi, group.ID, -1, "", "duplicate group id %q", group.ID)
			}
			groupIDs[group.ID] = true
		}
		if group.Logic != "" && !group.Logic.Known() {
			add(SeverityWarning, gi, group.ID, -1, "", "unknown logic %q, treated as and", group.Logic)
		}
		if len(group.Conditions) == 0 {
			add(SeverityError, gi, group.ID, -1, "", "no conditions")
			continue
		}
		if len(group.Conditions) > types.MaxConditionsPerGroup {
			add(SeverityWarning, gi, group.ID, -1, "", "%d conditions exceeds limit of %d", len(group.Conditions), types.MaxConditionsPerGroup)
		}

		ruleIDs := make(map[string]bool)
		for ri, rule := range group.Conditions {
			if rule.ID != "" {
				if ruleIDs[rule.ID] {
					add(SeverityWarning, gi, group.ID, ri, rule.ID, "duplicate rule id %q", rule.ID)
				}
				ruleIDs[rule.ID] = true
			}
			for _, msg := range lintRule(rule) {
				add(SeverityWarning, gi, group.ID, ri, rule.ID, "%s", msg)
			}
		}
	}

	return issues
}

// lintRule returns warnings for a single rule.
func lintRule(rule types.ConditionRule) []string {
	var msgs []string

	if strings.TrimSpace(rule.Field) == "" {
		msgs = append(msgs, "empty field path, value is always undefined")
	} else if n := len(SplitPath(rule.Field)); n > types.MaxFieldPathDepth {
		msgs = append(msgs, fmt.Sprintf("field path has %d segments, limit is %d", n, types.MaxFieldPathDepth))
	}

	if !KnownOperator(rule.Operator) {
		return append(msgs, fmt.Sprintf("unknown operator %q never matches", rule.Operator))
	}

	switch cond := NewCondition(rule).(type) {
	case NumericComparison:
		if _, ok := cond.Operand(); !ok {
			msgs = append(msgs, fmt.Sprintf("value %q is not a number, %s never matches", rule.Value, rule.Operator))
		}
	case Presence:
		if rule.Value != "" {
			msgs = append(msgs, fmt.Sprintf("value %q is ignored by %s", rule.Value, rule.Operator))
		}
	}

	return msgs
}
