package api

import (
	"encoding/json"
	"fmt"

	"github.com/flowbuilder/branchkeeper/internal/conditions"
	"github.com/flowbuilder/branchkeeper/internal/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// toStruct converts any JSON-encodable value into a Struct. Numbers become
// float64, as in every Struct.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

// fromStruct decodes a Struct into dest through its JSON form.
func fromStruct(s *structpb.Struct, dest any) error {
	data, err := json.Marshal(s.AsMap())
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func invalidArgument(format string, args ...any) error {
	return status.Errorf(codes.InvalidArgument, format, args...)
}

// stringField returns req[key] if it is a string.
func stringField(req *structpb.Struct, key string) string {
	return req.GetFields()[key].GetStringValue()
}

// conditionsField decodes a ConditionsConfig from req.config (object) or
// req.config_json (the editor's document as a string). The second return is
// the JSON to store; config_json is kept byte for byte.
func conditionsField(req *structpb.Struct) (types.ConditionsConfig, types.RawConfig, error) {
	var config types.ConditionsConfig

	if raw := stringField(req, "config_json"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &config); err != nil {
			return config, nil, invalidArgument("config_json: %v", err)
		}
		return config, types.RawConfig(raw), nil
	}

	obj := req.GetFields()["config"].GetStructValue()
	if obj == nil {
		return config, nil, invalidArgument("config or config_json required")
	}
	if err := fromStruct(obj, &config); err != nil {
		return config, nil, invalidArgument("config: %v", err)
	}
	raw, err := json.Marshal(obj.AsMap())
	if err != nil {
		return config, nil, invalidArgument("config: %v", err)
	}
	return config, types.RawConfig(raw), nil
}

// branchIDField parses req.branch_id. ok is false when the field is absent.
func branchIDField(req *structpb.Struct) (id types.BranchID, ok bool, err error) {
	raw := stringField(req, "branch_id")
	if raw == "" {
		return "", false, nil
	}
	id, err = types.ParseBranchID(raw)
	if err != nil {
		return "", true, invalidArgument("branch_id %q: %v", raw, err)
	}
	return id, true, nil
}

// recordValue converts one record Struct, enforcing the size limit.
func recordValue(s *structpb.Struct, maxBytes int) (types.Record, error) {
	if s == nil {
		return types.Record{}, nil
	}
	if maxBytes > 0 && proto.Size(s) > maxBytes {
		return nil, invalidArgument("record exceeds %d bytes", maxBytes)
	}
	return s.AsMap(), nil
}

// resultStruct renders a Result with the editor's trace field names.
func resultStruct(result conditions.Result, extra map[string]any) (*structpb.Struct, error) {
	groups := make([]any, 0, len(result.Groups))
	for _, g := range result.Groups {
		rules := make([]any, 0, len(g.Rules))
		for _, r := range g.Rules {
			rules = append(rules, map[string]any{
				"ruleId": r.RuleID,
				"result": r.Result,
			})
		}
		groups = append(groups, map[string]any{
			"groupId":     g.GroupID,
			"result":      g.Result,
			"ruleResults": rules,
		})
	}

	m := map[string]any{
		"verdict":      result.Verdict,
		"handle":       string(result.Handle()),
		"groupResults": groups,
	}
	for k, v := range extra {
		m[k] = v
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return s, nil
}
