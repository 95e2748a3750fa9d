package conditions

import (
	"math"
	"testing"

	"github.com/flowbuilder/branchkeeper/internal/types"
)

// undefined marks a value whose field path did not resolve.
type undefinedValue struct{}

var undefined = undefinedValue{}

func match(c Condition, value any) bool {
	if value == undefined {
		return c.Match(nil, false)
	}
	return c.Match(value, true)
}

func TestOperators_Table(t *testing.T) {
	tests := []struct {
		name     string
		operator types.OperatorName
		operand  string
		value    any
		want     bool
	}{
		// equals
		{name: "equals string", operator: types.OpEquals, operand: "active", value: "active", want: true},
		{name: "equals is case sensitive", operator: types.OpEquals, operand: "Active", value: "active", want: false},
		{name: "equals number via text form", operator: types.OpEquals, operand: "123456", value: float64(123456), want: true},
		{name: "equals int", operator: types.OpEquals, operand: "42", value: 42, want: true},
		{name: "equals bool", operator: types.OpEquals, operand: "true", value: true, want: true},
		{name: "equals does not normalize numbers", operator: types.OpEquals, operand: "1.0", value: float64(1), want: false},
		{name: "equals empty string to empty", operator: types.OpEquals, operand: "", value: "", want: true},
		{name: "equals undefined never matches empty", operator: types.OpEquals, operand: "", value: undefined, want: false},
		{name: "equals null never matches", operator: types.OpEquals, operand: "null", value: nil, want: false},
		{name: "equals record as JSON", operator: types.OpEquals, operand: `{"id":1}`, value: map[string]any{"id": 1}, want: true},

		// not_equals
		{name: "not_equals different", operator: types.OpNotEquals, operand: "a", value: "b", want: true},
		{name: "not_equals same", operator: types.OpNotEquals, operand: "a", value: "a", want: false},
		{name: "not_equals undefined", operator: types.OpNotEquals, operand: "", value: undefined, want: true},
		{name: "not_equals null", operator: types.OpNotEquals, operand: "x", value: nil, want: true},

		// contains
		{name: "contains substring", operator: types.OpContains, operand: "kopi", value: "beli kopi 15000", want: true},
		{name: "contains missing substring", operator: types.OpContains, operand: "total", value: "beli kopi 15000", want: false},
		{name: "contains in number text", operator: types.OpContains, operand: "500", value: float64(15000), want: true},
		{name: "contains empty operand", operator: types.OpContains, operand: "", value: "abc", want: true},
		{name: "contains in sequence JSON", operator: types.OpContains, operand: `"vip"`, value: []any{"vip", "new"}, want: true},
		{name: "contains undefined", operator: types.OpContains, operand: "", value: undefined, want: false},
		{name: "contains null", operator: types.OpContains, operand: "", value: nil, want: false},

		// not_contains
		{name: "not_contains absent", operator: types.OpNotContains, operand: "total", value: "beli kopi", want: true},
		{name: "not_contains present", operator: types.OpNotContains, operand: "kopi", value: "beli kopi", want: false},
		{name: "not_contains undefined", operator: types.OpNotContains, operand: "x", value: undefined, want: true},

		// greater_than
		{name: "greater_than number", operator: types.OpGreaterThan, operand: "10000", value: float64(15000), want: true},
		{name: "greater_than equal", operator: types.OpGreaterThan, operand: "15000", value: float64(15000), want: false},
		{name: "greater_than numeric string", operator: types.OpGreaterThan, operand: "5", value: " 7 ", want: true},
		{name: "greater_than decimal operand", operator: types.OpGreaterThan, operand: "0.5", value: 1, want: true},
		{name: "greater_than non-numeric value", operator: types.OpGreaterThan, operand: "1", value: "abc", want: false},
		{name: "greater_than non-numeric operand", operator: types.OpGreaterThan, operand: "abc", value: float64(5), want: false},
		{name: "greater_than empty operand", operator: types.OpGreaterThan, operand: "", value: float64(5), want: false},
		{name: "greater_than bool", operator: types.OpGreaterThan, operand: "0", value: true, want: false},
		{name: "greater_than record", operator: types.OpGreaterThan, operand: "0", value: map[string]any{"a": 1}, want: false},
		{name: "greater_than undefined", operator: types.OpGreaterThan, operand: "0", value: undefined, want: false},
		{name: "greater_than null", operator: types.OpGreaterThan, operand: "-1", value: nil, want: false},
		{name: "greater_than NaN", operator: types.OpGreaterThan, operand: "0", value: math.NaN(), want: false},

		// less_than
		{name: "less_than number", operator: types.OpLessThan, operand: "10000", value: float64(500), want: true},
		{name: "less_than equal", operator: types.OpLessThan, operand: "500", value: 500, want: false},
		{name: "less_than negative", operator: types.OpLessThan, operand: "0", value: "-3", want: true},
		{name: "less_than non-numeric value", operator: types.OpLessThan, operand: "1", value: "", want: false},
		{name: "less_than undefined", operator: types.OpLessThan, operand: "100", value: undefined, want: false},

		// is_empty / is_not_empty
		{name: "is_empty undefined", operator: types.OpIsEmpty, value: undefined, want: true},
		{name: "is_empty null", operator: types.OpIsEmpty, value: nil, want: true},
		{name: "is_empty empty string", operator: types.OpIsEmpty, value: "", want: true},
		{name: "is_empty zero", operator: types.OpIsEmpty, value: float64(0), want: false},
		{name: "is_empty false", operator: types.OpIsEmpty, value: false, want: false},
		{name: "is_empty empty sequence", operator: types.OpIsEmpty, value: []any{}, want: true},
		{name: "is_empty ignores operand", operator: types.OpIsEmpty, operand: "ignored", value: "", want: true},
		{name: "is_not_empty text", operator: types.OpIsNotEmpty, value: "x", want: true},
		{name: "is_not_empty undefined", operator: types.OpIsNotEmpty, value: undefined, want: false},
		{name: "is_not_empty ignores operand", operator: types.OpIsNotEmpty, operand: "", value: float64(0), want: true},

		// unknown
		{name: "unknown operator", operator: "starts_with", operand: "a", value: "abc", want: false},
		{name: "blank operator", operator: "", operand: "", value: undefined, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond := NewCondition(types.ConditionRule{Operator: tt.operator, Value: tt.operand})
			if got := match(cond, tt.value); got != tt.want {
				t.Errorf("%s(%v, %q) = %v, want %v", tt.operator, tt.value, tt.operand, got, tt.want)
			}
		})
	}
}

func TestNewCondition_Shapes(t *testing.T) {
	for _, name := range types.OperatorNames {
		cond := NewCondition(types.ConditionRule{Operator: name, Value: "1"})
		if cond.Operator() != name {
			t.Errorf("NewCondition(%s).Operator() = %s", name, cond.Operator())
		}
		if !KnownOperator(name) {
			t.Errorf("KnownOperator(%s) = false", name)
		}
	}

	if _, ok := NewCondition(types.ConditionRule{Operator: types.OpIsEmpty, Value: "x"}).(Presence); !ok {
		t.Errorf("is_empty did not compile to Presence")
	}
	if c, ok := NewCondition(types.ConditionRule{Operator: types.OpGreaterThan, Value: "10"}).(NumericComparison); !ok {
		t.Errorf("greater_than did not compile to NumericComparison")
	} else if f, valid := c.Operand(); !valid || f != 10 {
		t.Errorf("Operand() = %v, %v; want 10, true", f, valid)
	}
	if c, ok := NewCondition(types.ConditionRule{Operator: types.OpContains, Value: "kopi"}).(TextComparison); !ok {
		t.Errorf("contains did not compile to TextComparison")
	} else if c.Operand() != "kopi" {
		t.Errorf("Operand() = %q, want kopi", c.Operand())
	}
	if KnownOperator("between") {
		t.Errorf("KnownOperator(between) = true")
	}
}
