package condfile

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/flowbuilder/branchkeeper/internal/types"
	"github.com/google/go-cmp/cmp"
)

const yamlConfig = `groupLogic: or
groups:
  - id: group-1
    logic: and
    conditions:
      - id: condition-1
        field: type
        operator: equals
        value: expense
      - id: condition-2
        field: amount
        operator: greater_than
        value: 10000
`

const jsonConfig = `{
  "groupLogic": "or",
  "groups": [
    {
      "id": "group-1",
      "logic": "and",
      "conditions": [
        {"id": "condition-1", "field": "type", "operator": "equals", "value": "expense"},
        {"id": "condition-2", "field": "amount", "operator": "greater_than", "value": "10000"}
      ]
    }
  ]
}`

func wantConfig() types.ConditionsConfig {
	return types.ConditionsConfig{
		GroupLogic: types.LogicOr,
		Groups: []types.ConditionGroup{{
			ID:    "group-1",
			Logic: types.LogicAnd,
			Conditions: []types.ConditionRule{
				{ID: "condition-1", Field: "type", Operator: types.OpEquals, Value: "expense"},
				{ID: "condition-2", Field: "amount", Operator: types.OpGreaterThan, Value: "10000"},
			},
		}},
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"yaml", "conditions.yaml", yamlConfig},
		{"yml", "conditions.YML", yamlConfig},
		{"json", "conditions.json", jsonConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(writeFile(t, tt.file, tt.content))
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if diff := cmp.Diff(wantConfig(), got); diff != "" {
				t.Errorf("Load() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(writeFile(t, "conditions.toml", "x = 1")); !errors.Is(err, types.ErrUnsupportedFormat) {
		t.Errorf("Load(.toml) error = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("Load(missing) error = nil")
	}
	if _, err := Load(writeFile(t, "broken.json", "{")); err == nil {
		t.Errorf("Load(broken json) error = nil")
	}
	if _, err := Load(writeFile(t, "broken.yaml", "groups: [")); err == nil {
		t.Errorf("Load(broken yaml) error = nil")
	}
}

func TestLoad_EmptyDocumentIsNotAnError(t *testing.T) {
	// Structural problems are reported by Compile, not the loader.
	got, err := Load(writeFile(t, "empty.yaml", ""))
	if err != nil {
		t.Fatalf("Load(empty) error = %v", err)
	}
	if len(got.Groups) != 0 {
		t.Errorf("Load(empty) groups = %v", got.Groups)
	}
}

func TestLoadRecord(t *testing.T) {
	record, err := LoadRecord(strings.NewReader(`{"amount": 12345678901234567890, "user": {"name": "A"}, "tags": ["x"], "note": null}`))
	if err != nil {
		t.Fatalf("LoadRecord() error = %v", err)
	}

	if got, ok := record["amount"].(json.Number); !ok || got.String() != "12345678901234567890" {
		t.Errorf("amount = %#v, want json.Number literal", record["amount"])
	}
	if _, ok := record["user"].(map[string]any); !ok {
		t.Errorf("user = %T, want map[string]any", record["user"])
	}
	if v, ok := record["note"]; !ok || v != nil {
		t.Errorf("note = %v (present %v), want present nil", v, ok)
	}
}

func TestLoadRecord_Errors(t *testing.T) {
	for _, in := range []string{"", "null", "[1,2]", `"text"`, `{"a":1} {"b":2}`, "{"} {
		if _, err := LoadRecord(strings.NewReader(in)); err == nil {
			t.Errorf("LoadRecord(%q) error = nil, want error", in)
		}
	}
}

func TestFormatFor(t *testing.T) {
	tests := map[string]Format{
		"a.yaml":      FormatYAML,
		"dir/b.yml":   FormatYAML,
		"C.JSON":      FormatJSON,
		"conditions":  "",
		"archive.tar": "",
	}
	for path, want := range tests {
		got, err := FormatFor(path)
		if got != want || (want == "") != (err != nil) {
			t.Errorf("FormatFor(%q) = %q, %v; want %q", path, got, err, want)
		}
	}
}
