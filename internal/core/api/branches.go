package api

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/flowbuilder/branchkeeper/internal/core/db"
	"github.com/flowbuilder/branchkeeper/internal/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// PutBranch creates the named branch or replaces its configuration.
// Configurations that Compile rejects are never stored.
func (s *ConditionService) PutBranch(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	tenantID, err := tenant(ctx)
	if err != nil {
		return nil, err
	}

	name := stringField(req, "name")
	config, raw, err := conditionsField(req)
	if err != nil {
		return nil, err
	}
	if _, err := s.engine.Compile(config); err != nil {
		return nil, toStatus(err)
	}

	created := false
	branch, err := s.store.GetBranchByName(ctx, tenantID, name)
	switch {
	case err == nil:
		branch, err = s.store.UpdateBranch(ctx, tenantID, branch.ID, raw)
	case errors.Is(err, types.ErrBranchNotFound):
		branch, err = s.store.CreateBranch(ctx, tenantID, name, raw)
		created = true
	}
	if err != nil {
		return nil, toStatus(err)
	}

	return structpb.NewStruct(map[string]any{
		"branch_id":  string(branch.ID),
		"name":       branch.Name,
		"created":    created,
		"updated_at": formatTime(branch.UpdatedAt),
	})
}

// GetBranch returns the stored branch, its config as an object and as the
// stored JSON text.
func (s *ConditionService) GetBranch(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	tenantID, err := tenant(ctx)
	if err != nil {
		return nil, err
	}

	id, ok, err := branchIDField(req)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, invalidArgument("branch_id required")
	}

	branch, err := s.store.GetBranch(ctx, tenantID, id)
	if err != nil {
		return nil, toStatus(err)
	}

	var config map[string]any
	if err := json.Unmarshal(branch.Config, &config); err != nil {
		return nil, status.Errorf(codes.Internal, "decode stored config: %v", err)
	}

	return structpb.NewStruct(map[string]any{
		"branch_id":   string(branch.ID),
		"name":        branch.Name,
		"config":      config,
		"config_json": string(branch.Config),
		"created_at":  formatTime(branch.CreatedAt),
		"updated_at":  formatTime(branch.UpdatedAt),
	})
}

// ListBranches returns the caller's branches ordered by name.
func (s *ConditionService) ListBranches(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	tenantID, err := tenant(ctx)
	if err != nil {
		return nil, err
	}

	branches, err := s.store.ListBranches(ctx, tenantID)
	if err != nil {
		return nil, toStatus(err)
	}

	items := make([]any, 0, len(branches))
	for _, b := range branches {
		items = append(items, map[string]any{
			"branch_id":  string(b.ID),
			"name":       b.Name,
			"updated_at": formatTime(b.UpdatedAt),
		})
	}
	return structpb.NewStruct(map[string]any{"branches": items})
}

// ListEvaluations returns recorded evaluations of a branch, newest first.
func (s *ConditionService) ListEvaluations(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	tenantID, err := tenant(ctx)
	if err != nil {
		return nil, err
	}

	id, ok, err := branchIDField(req)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, invalidArgument("branch_id required")
	}
	if _, err := s.store.GetBranch(ctx, tenantID, id); err != nil {
		return nil, toStatus(err)
	}

	limit := int(req.GetFields()["limit"].GetNumberValue())
	evaluations, err := s.store.ListEvaluations(ctx, tenantID, id, limit)
	if err != nil {
		return nil, toStatus(err)
	}

	items := make([]*structpb.Value, 0, len(evaluations))
	for _, e := range evaluations {
		item, err := evaluationStruct(e)
		if err != nil {
			return nil, status.Error(codes.Internal, err.Error())
		}
		items = append(items, structpb.NewStructValue(item))
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"evaluations": structpb.NewListValue(&structpb.ListValue{Values: items}),
	}}, nil
}

func evaluationStruct(e db.Evaluation) (*structpb.Struct, error) {
	return resultStruct(e.Result, map[string]any{
		"evaluation_id": string(e.ID),
		"branch_id":     string(e.BranchID),
		"created_at":    formatTime(e.CreatedAt),
	})
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
