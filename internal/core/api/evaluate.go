package api

import (
	"context"
	"runtime"

	"github.com/flowbuilder/branchkeeper/internal/conditions"
	"github.com/flowbuilder/branchkeeper/internal/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Evaluate decides one record. Evaluations of stored branches are recorded
// best-effort: a failed write is logged and the verdict is still returned.
func (s *ConditionService) Evaluate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	tenantID, err := tenant(ctx)
	if err != nil {
		return nil, err
	}

	compiled, branchID, err := s.resolveConditions(ctx, tenantID, req)
	if err != nil {
		return nil, toStatus(err)
	}

	recordField, ok := req.GetFields()["record"]
	if !ok || recordField.GetStructValue() == nil {
		return nil, invalidArgument("record object required")
	}
	record, err := recordValue(recordField.GetStructValue(), s.cfg.MaxRecordBytes)
	if err != nil {
		return nil, err
	}

	result := s.engine.EvaluateCompiled(compiled, record)

	extra := map[string]any{}
	if branchID != "" {
		extra["branch_id"] = string(branchID)
		if id := s.recordEvaluation(ctx, tenantID, branchID, result); id != "" {
			extra["evaluation_id"] = string(id)
		}
	}
	out, err := resultStruct(result, extra)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// Filter keeps the records that satisfy the conditions, in input order.
// Records are evaluated in parallel; evaluations are not recorded.
func (s *ConditionService) Filter(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	tenantID, err := tenant(ctx)
	if err != nil {
		return nil, err
	}

	list := req.GetFields()["records"].GetListValue()
	if list == nil {
		return nil, invalidArgument("records list required")
	}
	// Prevents memory exhaustion from oversized batches
	if len(list.GetValues()) > s.cfg.MaxBatchSize {
		return nil, invalidArgument("batch size exceeds maximum of %d records", s.cfg.MaxBatchSize)
	}

	compiled, _, err := s.resolveConditions(ctx, tenantID, req)
	if err != nil {
		return nil, toStatus(err)
	}

	records := make([]types.Record, len(list.GetValues()))
	for i, v := range list.GetValues() {
		obj := v.GetStructValue()
		if obj == nil {
			return nil, invalidArgument("records[%d] is not an object", i)
		}
		if records[i], err = recordValue(obj, s.cfg.MaxRecordBytes); err != nil {
			return nil, invalidArgument("records[%d]: %v", i, status.Convert(err).Message())
		}
	}

	verdicts := make([]bool, len(records))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, record := range records {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			verdicts[i] = s.engine.EvaluateCompiled(compiled, record).Verdict
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, toStatus(err)
	}

	kept := make([]*structpb.Value, 0, len(records))
	indexes := make([]*structpb.Value, 0, len(records))
	for i, ok := range verdicts {
		if ok {
			kept = append(kept, list.GetValues()[i])
			indexes = append(indexes, structpb.NewNumberValue(float64(i)))
		}
	}

	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"records": structpb.NewListValue(&structpb.ListValue{Values: kept}),
		"indexes": structpb.NewListValue(&structpb.ListValue{Values: indexes}),
	}}, nil
}

// resolveConditions compiles either the inline config or the stored branch.
// branchID is empty for inline configs.
func (s *ConditionService) resolveConditions(ctx context.Context, tenantID types.TenantID, req *structpb.Struct) (*conditions.CompiledConfig, types.BranchID, error) {
	branchID, hasBranch, err := branchIDField(req)
	if err != nil {
		return nil, "", err
	}
	_, hasConfig := req.GetFields()["config"]
	_, hasConfigJSON := req.GetFields()["config_json"]
	if hasBranch && (hasConfig || hasConfigJSON) {
		return nil, "", invalidArgument("branch_id and config are mutually exclusive")
	}

	var config types.ConditionsConfig
	if hasBranch {
		branch, err := s.store.GetBranch(ctx, tenantID, branchID)
		if err != nil {
			return nil, "", err
		}
		if config, err = branch.Conditions(); err != nil {
			return nil, "", status.Error(codes.Internal, err.Error())
		}
	} else {
		if config, _, err = conditionsField(req); err != nil {
			return nil, "", err
		}
	}

	compiled, err := s.engine.Compile(config)
	if err != nil {
		return nil, "", err
	}
	return compiled, branchID, nil
}

// recordEvaluation stores the evaluation and appends it to the audit log.
// Returns the evaluation id, or "" when the store write failed.
func (s *ConditionService) recordEvaluation(ctx context.Context, tenantID types.TenantID, branchID types.BranchID, result conditions.Result) types.EvaluationID {
	id, err := s.store.RecordEvaluation(ctx, tenantID, branchID, result)
	if err != nil {
		s.logger.Warn("failed to record evaluation",
			zap.String("tenant_id", string(tenantID)),
			zap.String("branch_id", string(branchID)),
			zap.Error(err),
		)
		return ""
	}

	err = s.audit.append(auditEntry{
		EvaluationID: id,
		TenantID:     tenantID,
		BranchID:     branchID,
		Verdict:      result.Verdict,
		Groups:       result.Groups,
	})
	if err != nil {
		s.logger.Warn("failed to append evaluation audit log", zap.Error(err))
	}
	return id
}
