// Package api provides the gRPC condition service.
package api

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/flowbuilder/branchkeeper/internal/conditions"
	"github.com/flowbuilder/branchkeeper/internal/core/config"
	"github.com/flowbuilder/branchkeeper/internal/core/db"
	"github.com/flowbuilder/branchkeeper/internal/core/logging"
	"github.com/flowbuilder/branchkeeper/internal/types"
	"go.uber.org/zap"
)

// Store is the persistence the service needs. Implemented by *db.BranchStore.
type Store interface {
	CreateBranch(ctx context.Context, tenant types.TenantID, name string, config types.RawConfig) (db.Branch, error)
	UpdateBranch(ctx context.Context, tenant types.TenantID, id types.BranchID, config types.RawConfig) (db.Branch, error)
	GetBranch(ctx context.Context, tenant types.TenantID, id types.BranchID) (db.Branch, error)
	GetBranchByName(ctx context.Context, tenant types.TenantID, name string) (db.Branch, error)
	ListBranches(ctx context.Context, tenant types.TenantID) ([]db.Branch, error)
	RecordEvaluation(ctx context.Context, tenant types.TenantID, branch types.BranchID, result conditions.Result) (types.EvaluationID, error)
	ListEvaluations(ctx context.Context, tenant types.TenantID, branch types.BranchID, limit int) ([]db.Evaluation, error)
}

// ConditionService implements ConditionServiceServer.
// Thin orchestration layer delegating to the conditions engine and the store.
type ConditionService struct {
	engine *conditions.Engine
	store  Store
	cfg    *config.ServiceConfig
	audit  *auditLog
	logger *zap.Logger
}

var _ ConditionServiceServer = (*ConditionService)(nil)

// NewConditionService creates service instance with dependencies.
// Auto-creates the evaluation audit directory if not exists.
func NewConditionService(engine *conditions.Engine, store Store, cfg *config.ServiceConfig, logger *zap.Logger) (*ConditionService, error) {
	if engine == nil {
		return nil, fmt.Errorf("engine cannot be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if cfg == nil {
		return nil, fmt.Errorf("cfg cannot be nil")
	}
	logger = logging.OrNop(logger)

	auditDir := filepath.Join(cfg.DataDir, "evaluations")
	if err := os.MkdirAll(auditDir, 0o755); err != nil {
		return nil, err
	}

	return &ConditionService{
		engine: engine,
		store:  store,
		cfg:    cfg,
		audit:  newAuditLog(auditDir),
		logger: logger,
	}, nil
}

// tenant returns the authenticated tenant or an Internal error.
func tenant(ctx context.Context) (types.TenantID, error) {
	id := tenantFromContext(ctx)
	if id == "" {
		return "", errMissingTenant
	}
	return id, nil
}
