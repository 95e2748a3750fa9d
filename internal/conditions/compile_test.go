// internal/conditions/compile_test.go
package conditions

import (
	"testing"

	"github.com/flowbuilder/branchkeeper/internal/types"
)

func TestCompile_SimpleConfig(t *testing.T) {
	config := types.ConditionsConfig{
		GroupLogic: "OR",
		Groups: []types.ConditionGroup{
			group("group-1", "", rule("condition-1", "message.chat.id", types.OpEquals, "123456")),
		},
	}

	compiled, err := Compile(config)
	if err != nil {
		t.Fatalf("Compile() error = %v, want nil", err)
	}

	if compiled.GroupLogic != types.LogicOr {
		t.Errorf("GroupLogic = %v, want %v", compiled.GroupLogic, types.LogicOr)
	}
	if len(compiled.Groups) != 1 {
		t.Fatalf("len(Groups) = %v, want 1", len(compiled.Groups))
	}
	g := compiled.Groups[0]
	if g.ID != "group-1" {
		t.Errorf("group ID = %v, want group-1", g.ID)
	}
	if g.Logic != types.LogicAnd {
		t.Errorf("empty logic compiled to %v, want %v", g.Logic, types.LogicAnd)
	}
	if len(g.Rules) != 1 {
		t.Fatalf("len(Rules) = %v, want 1", len(g.Rules))
	}
	r := g.Rules[0]
	if r.ID != "condition-1" || r.Field != "message.chat.id" {
		t.Errorf("rule = %+v", r)
	}
	if len(r.Path) != 3 || r.Path[0] != "message" || r.Path[2] != "id" {
		t.Errorf("Path = %v, want [message chat id]", r.Path)
	}
	if r.Condition.Operator() != types.OpEquals {
		t.Errorf("Operator = %v, want equals", r.Condition.Operator())
	}
}

func TestCompile_PreservesOrder(t *testing.T) {
	config := types.ConditionsConfig{
		Groups: []types.ConditionGroup{
			group("g1", types.LogicAnd,
				rule("slow", "a.b.c.d", types.OpContains, "x"),
				rule("fast", "a", types.OpIsEmpty, ""),
			),
			group("g2", types.LogicOr, rule("only", "b", types.OpLessThan, "1")),
		},
	}

	compiled, err := Compile(config)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	if compiled.Groups[0].Rules[0].ID != "slow" || compiled.Groups[0].Rules[1].ID != "fast" {
		t.Errorf("rule order changed: %s, %s", compiled.Groups[0].Rules[0].ID, compiled.Groups[0].Rules[1].ID)
	}
	if compiled.Groups[1].ID != "g2" {
		t.Errorf("group order changed")
	}
	if compiled.RuleCount() != 3 {
		t.Errorf("RuleCount() = %d, want 3", compiled.RuleCount())
	}
}

func TestCompile_UnknownOperatorCompiles(t *testing.T) {
	config := types.ConditionsConfig{
		Groups: []types.ConditionGroup{
			group("g", types.LogicAnd, rule("r", "a", "regex", ".*")),
		},
	}

	compiled, err := Compile(config)
	if err != nil {
		t.Fatalf("Compile() error = %v, want nil for unknown operator", err)
	}
	if _, ok := compiled.Groups[0].Rules[0].Condition.(UnknownOperator); !ok {
		t.Errorf("Condition = %T, want UnknownOperator", compiled.Groups[0].Rules[0].Condition)
	}
	if compiled.Evaluate(types.Record{"a": "anything"}).Verdict {
		t.Errorf("unknown operator matched")
	}
}

func TestCompile_RejectsEmptyStructure(t *testing.T) {
	if _, err := Compile(types.ConditionsConfig{}); !types.IsConfigError(err) {
		t.Errorf("Compile(no groups) error = %v, want ConfigError", err)
	}

	_, err := Compile(types.ConditionsConfig{
		Groups: []types.ConditionGroup{{ID: "empty", Logic: types.LogicAnd}},
	})
	if !types.IsConfigError(err) {
		t.Fatalf("Compile(empty group) error = %v, want ConfigError", err)
	}
	want := "invalid conditions config: group 0 (empty): no conditions"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
