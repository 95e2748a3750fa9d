package api

import (
	"context"

	"github.com/flowbuilder/branchkeeper/internal/conditions"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Lint reports Validate issues for a configuration. It never stores anything
// and succeeds even when the configuration would be rejected.
func (s *ConditionService) Lint(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if _, err := tenant(ctx); err != nil {
		return nil, err
	}

	config, _, err := conditionsField(req)
	if err != nil {
		return nil, err
	}

	issues := conditions.Validate(config)
	if issues == nil {
		issues = []conditions.Issue{}
	}
	out, err := toStruct(map[string]any{
		"valid":  !conditions.HasErrors(issues),
		"issues": issues,
	})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}
