// internal/conditions/operators.go
package conditions

import (
	"strings"

	"github.com/flowbuilder/branchkeeper/internal/types"
)

/*
 * Operator comparison logic.
 *
 * Operators are compiled into one of three condition shapes, so an operand
 * can only exist where the operator uses one:
 *
 *   - Presence: is_empty / is_not_empty (no operand)
 *   - TextComparison: equals / not_equals / contains / not_contains
 *     (string operand, compared against the value's TextForm)
 *   - NumericComparison: greater_than / less_than (operand parsed once at
 *     compile time; an unparseable operand makes the condition always false)
 *
 * Unknown operator names compile to UnknownOperator, which never matches.
 * An editor mid-edit can hold any string in the operator field and the
 * evaluator must still produce a verdict.
 *
 * Negated operators are exact complements of their base operator, including
 * for undefined and null values.
 */

// Condition is a compiled comparison applied to a resolved field value.
// found is false when the field path is undefined in the record.
type Condition interface {
	Operator() types.OperatorName
	Match(value any, found bool) bool
}

// Presence tests whether the value is empty. It carries no operand.
type Presence struct {
	negate bool
}

// IsEmpty matches undefined, null, "", and empty records or sequences.
func IsEmpty() Presence { return Presence{} }

// IsNotEmpty is the complement of IsEmpty.
func IsNotEmpty() Presence { return Presence{negate: true} }

func (p Presence) Operator() types.OperatorName {
	if p.negate {
		return types.OpIsNotEmpty
	}
	return types.OpIsEmpty
}

func (p Presence) Match(value any, found bool) bool {
	return IsEmptyValue(value, found) != p.negate
}

type textMode int

const (
	textEquals textMode = iota
	textContains
)

// TextComparison compares the value's textual form against a string operand.
type TextComparison struct {
	mode    textMode
	negate  bool
	operand string
}

// Equals matches when the value's textual form equals operand.
// Undefined and null never equal anything, including "".
func Equals(operand string) TextComparison {
	return TextComparison{mode: textEquals, operand: operand}
}

// NotEquals is the complement of Equals.
func NotEquals(operand string) TextComparison {
	return TextComparison{mode: textEquals, negate: true, operand: operand}
}

// Contains matches when the value's textual form includes operand.
func Contains(operand string) TextComparison {
	return TextComparison{mode: textContains, operand: operand}
}

// NotContains is the complement of Contains; undefined yields true.
func NotContains(operand string) TextComparison {
	return TextComparison{mode: textContains, negate: true, operand: operand}
}

func (c TextComparison) Operator() types.OperatorName {
	switch {
	case c.mode == textEquals && !c.negate:
		return types.OpEquals
	case c.mode == textEquals:
		return types.OpNotEquals
	case !c.negate:
		return types.OpContains
	default:
		return types.OpNotContains
	}
}

// Operand returns the string the value is compared against.
func (c TextComparison) Operand() string { return c.operand }

func (c TextComparison) Match(value any, found bool) bool {
	return c.base(value, found) != c.negate
}

func (c TextComparison) base(value any, found bool) bool {
	if !found {
		return false
	}
	text, ok := TextForm(value)
	if !ok {
		return false
	}
	if c.mode == textContains {
		return strings.Contains(text, c.operand)
	}
	return text == c.operand
}

// NumericComparison orders the value against a numeric operand.
type NumericComparison struct {
	greater bool
	operand float64
	valid   bool
}

// GreaterThan matches when both sides are numeric and value > operand.
func GreaterThan(operand string) NumericComparison {
	return newNumeric(true, operand)
}

// LessThan matches when both sides are numeric and value < operand.
func LessThan(operand string) NumericComparison {
	return newNumeric(false, operand)
}

func newNumeric(greater bool, operand string) NumericComparison {
	f, ok := ParseNumber(operand)
	return NumericComparison{greater: greater, operand: f, valid: ok}
}

func (c NumericComparison) Operator() types.OperatorName {
	if c.greater {
		return types.OpGreaterThan
	}
	return types.OpLessThan
}

// Operand returns the parsed operand and whether it was numeric.
func (c NumericComparison) Operand() (float64, bool) { return c.operand, c.valid }

func (c NumericComparison) Match(value any, found bool) bool {
	if !c.valid || !found {
		return false
	}
	left, ok := NumberForm(value)
	if !ok {
		return false
	}
	// NaN on either side makes both comparisons false
	if c.greater {
		return left > c.operand
	}
	return left < c.operand
}

// UnknownOperator is compiled for operator names the engine does not know.
type UnknownOperator struct {
	name types.OperatorName
}

func (u UnknownOperator) Operator() types.OperatorName { return u.name }

func (u UnknownOperator) Match(any, bool) bool { return false }

// NewCondition builds the condition for an authored rule.
// The rule's value is dropped for presence operators.
func NewCondition(rule types.ConditionRule) Condition {
	switch rule.Operator {
	case types.OpEquals:
		return Equals(rule.Value)
	case types.OpNotEquals:
		return NotEquals(rule.Value)
	case types.OpContains:
		return Contains(rule.Value)
	case types.OpNotContains:
		return NotContains(rule.Value)
	case types.OpGreaterThan:
		return GreaterThan(rule.Value)
	case types.OpLessThan:
		return LessThan(rule.Value)
	case types.OpIsEmpty:
		return IsEmpty()
	case types.OpIsNotEmpty:
		return IsNotEmpty()
	default:
		return UnknownOperator{name: rule.Operator}
	}
}

// KnownOperator reports whether name is one of the editor's operators.
func KnownOperator(name types.OperatorName) bool {
	_, unknown := NewCondition(types.ConditionRule{Operator: name}).(UnknownOperator)
	return !unknown
}
