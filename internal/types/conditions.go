// internal/types/conditions.go
package types

import "strings"

/*
 * Domain types for branch condition evaluation.
 *
 * Mirrors the condition document authored by the workflow editor for
 * If/Else nodes. Field names in JSON and YAML match the editor so documents
 * round-trip unchanged.
 *
 * Key types:
 *   - ConditionsConfig: groups combined by GroupLogic
 *   - ConditionGroup: rules combined by Logic
 *   - ConditionRule: single field/operator/value comparison
 */

// Logic combines boolean results within a group or across groups.
type Logic string

const (
	LogicAnd Logic = "and"
	LogicOr  Logic = "or"
)

// Normalize returns the canonical lowercase form. Empty and unknown values
// become LogicAnd, the editor's default for new groups.
func (l Logic) Normalize() Logic {
	switch strings.ToLower(strings.TrimSpace(string(l))) {
	case "or":
		return LogicOr
	default:
		return LogicAnd
	}
}

// Known reports whether l is "and" or "or" in any letter case.
func (l Logic) Known() bool {
	switch strings.ToLower(strings.TrimSpace(string(l))) {
	case "and", "or":
		return true
	default:
		return false
	}
}

// OperatorName is the operator as authored in the editor.
type OperatorName string

const (
	OpEquals      OperatorName = "equals"
	OpNotEquals   OperatorName = "not_equals"
	OpContains    OperatorName = "contains"
	OpNotContains OperatorName = "not_contains"
	OpGreaterThan OperatorName = "greater_than"
	OpLessThan    OperatorName = "less_than"
	OpIsEmpty     OperatorName = "is_empty"
	OpIsNotEmpty  OperatorName = "is_not_empty"
)

// OperatorNames lists every operator the editor offers, in menu order.
var OperatorNames = []OperatorName{
	OpEquals,
	OpNotEquals,
	OpContains,
	OpNotContains,
	OpGreaterThan,
	OpLessThan,
	OpIsEmpty,
	OpIsNotEmpty,
}

// ConditionRule is a single comparison. Value is ignored for is_empty and
// is_not_empty.
type ConditionRule struct {
	ID       string       `json:"id" yaml:"id"`
	Field    string       `json:"field" yaml:"field"`
	Operator OperatorName `json:"operator" yaml:"operator"`
	Value    string       `json:"value" yaml:"value"`
}

// ConditionGroup combines its rules with Logic.
type ConditionGroup struct {
	ID         string          `json:"id" yaml:"id"`
	Logic      Logic           `json:"logic" yaml:"logic"`
	Conditions []ConditionRule `json:"conditions" yaml:"conditions"`
}

// ConditionsConfig combines its groups with GroupLogic.
type ConditionsConfig struct {
	Groups     []ConditionGroup `json:"groups" yaml:"groups"`
	GroupLogic Logic            `json:"groupLogic" yaml:"groupLogic"`
}
