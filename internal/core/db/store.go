package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/flowbuilder/branchkeeper/internal/conditions"
	"github.com/flowbuilder/branchkeeper/internal/types"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// Branch is a named condition configuration registered by a tenant.
// Config is stored exactly as submitted.
type Branch struct {
	ID        types.BranchID
	TenantID  types.TenantID
	Name      string
	Config    types.RawConfig
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Conditions decodes the stored configuration.
func (b Branch) Conditions() (types.ConditionsConfig, error) {
	var config types.ConditionsConfig
	if err := json.Unmarshal(b.Config, &config); err != nil {
		return types.ConditionsConfig{}, fmt.Errorf("decode branch %s config: %w", b.ID, err)
	}
	return config, nil
}

// Evaluation is a recorded verdict with its trace.
type Evaluation struct {
	ID        types.EvaluationID
	TenantID  types.TenantID
	BranchID  types.BranchID
	Result    conditions.Result
	CreatedAt time.Time
}

type branchRow struct {
	BranchID  string    `db:"branch_id"`
	TenantID  string    `db:"tenant_id"`
	Name      string    `db:"name"`
	Config    string    `db:"config"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r branchRow) branch() Branch {
	return Branch{
		ID:        types.BranchID(r.BranchID),
		TenantID:  types.TenantID(r.TenantID),
		Name:      r.Name,
		Config:    types.RawConfig(r.Config),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type evaluationRow struct {
	EvaluationID string    `db:"evaluation_id"`
	TenantID     string    `db:"tenant_id"`
	BranchID     string    `db:"branch_id"`
	Verdict      bool      `db:"verdict"`
	Trace        string    `db:"trace"`
	CreatedAt    time.Time `db:"created_at"`
}

// BranchStore persists branches and their evaluations.
// All operations are scoped to a tenant.
type BranchStore struct {
	queries *Queries
	now     func() time.Time
}

// NewBranchStore creates a store over loaded queries.
func NewBranchStore(queries *Queries) *BranchStore {
	return &BranchStore{
		queries: queries,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// EnsureTenant creates the tenant if it does not exist.
func (s *BranchStore) EnsureTenant(ctx context.Context, tenant types.TenantID, name string) error {
	if name == "" {
		name = string(tenant)
	}
	if _, err := s.queries.ExecContext(ctx, "ensure-tenant", string(tenant), name, s.now()); err != nil {
		return fmt.Errorf("ensure tenant %s: %w", tenant, err)
	}
	return nil
}

// CreateBranch stores a new branch under a fresh UUIDv7 id.
func (s *BranchStore) CreateBranch(ctx context.Context, tenant types.TenantID, name string, config types.RawConfig) (Branch, error) {
	if err := checkBranchName(name); err != nil {
		return Branch{}, err
	}
	if err := s.EnsureTenant(ctx, tenant, ""); err != nil {
		return Branch{}, err
	}

	now := s.now()
	b := Branch{
		ID:        types.NewBranchID(),
		TenantID:  tenant,
		Name:      name,
		Config:    config,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.queries.ExecContext(ctx, "insert-branch",
		string(b.ID), string(tenant), name, string(config), now, now)
	if isUniqueViolation(err) {
		return Branch{}, fmt.Errorf("%w: %q", types.ErrBranchExists, name)
	}
	if err != nil {
		return Branch{}, fmt.Errorf("insert branch: %w", err)
	}
	return b, nil
}

// UpdateBranch replaces the configuration of an existing branch.
func (s *BranchStore) UpdateBranch(ctx context.Context, tenant types.TenantID, id types.BranchID, config types.RawConfig) (Branch, error) {
	res, err := s.queries.ExecContext(ctx, "update-branch-config", string(config), s.now(), string(id), string(tenant))
	if err != nil {
		return Branch{}, fmt.Errorf("update branch: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return Branch{}, types.ErrBranchNotFound
	}
	return s.GetBranch(ctx, tenant, id)
}

// GetBranch returns types.ErrBranchNotFound when the tenant has no such branch.
func (s *BranchStore) GetBranch(ctx context.Context, tenant types.TenantID, id types.BranchID) (Branch, error) {
	return s.getBranch(ctx, "get-branch", string(id), tenant)
}

// GetBranchByName looks a branch up by its tenant-unique name.
func (s *BranchStore) GetBranchByName(ctx context.Context, tenant types.TenantID, name string) (Branch, error) {
	return s.getBranch(ctx, "get-branch-by-name", name, tenant)
}

func (s *BranchStore) getBranch(ctx context.Context, query, key string, tenant types.TenantID) (Branch, error) {
	var row branchRow
	err := s.queries.GetContext(ctx, query, &row, key, string(tenant))
	if errors.Is(err, sql.ErrNoRows) {
		return Branch{}, types.ErrBranchNotFound
	}
	if err != nil {
		return Branch{}, fmt.Errorf("get branch: %w", err)
	}
	return row.branch(), nil
}

// ListBranches returns the tenant's branches ordered by name.
func (s *BranchStore) ListBranches(ctx context.Context, tenant types.TenantID) ([]Branch, error) {
	var rows []branchRow
	if err := s.queries.SelectContext(ctx, "list-branches", &rows, string(tenant)); err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	branches := make([]Branch, 0, len(rows))
	for _, r := range rows {
		branches = append(branches, r.branch())
	}
	return branches, nil
}

// RecordEvaluation stores the verdict and trace of one evaluation.
func (s *BranchStore) RecordEvaluation(ctx context.Context, tenant types.TenantID, branch types.BranchID, result conditions.Result) (types.EvaluationID, error) {
	trace, err := json.Marshal(result.Groups)
	if err != nil {
		return "", fmt.Errorf("encode trace: %w", err)
	}

	id := types.NewEvaluationID()
	_, err = s.queries.ExecContext(ctx, "insert-evaluation",
		string(id), string(tenant), string(branch), result.Verdict, string(trace), s.now())
	if err != nil {
		return "", fmt.Errorf("insert evaluation: %w", err)
	}
	return id, nil
}

// ListEvaluations returns the most recent evaluations of a branch, newest first.
func (s *BranchStore) ListEvaluations(ctx context.Context, tenant types.TenantID, branch types.BranchID, limit int) ([]Evaluation, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	var rows []evaluationRow
	if err := s.queries.SelectContext(ctx, "list-evaluations", &rows, string(branch), string(tenant), limit); err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}

	evaluations := make([]Evaluation, 0, len(rows))
	for _, r := range rows {
		var groups []conditions.GroupResult
		if err := json.Unmarshal([]byte(r.Trace), &groups); err != nil {
			return nil, fmt.Errorf("decode evaluation %s trace: %w", r.EvaluationID, err)
		}
		evaluations = append(evaluations, Evaluation{
			ID:        types.EvaluationID(r.EvaluationID),
			TenantID:  types.TenantID(r.TenantID),
			BranchID:  types.BranchID(r.BranchID),
			Result:    conditions.Result{Verdict: r.Verdict, Groups: groups},
			CreatedAt: r.CreatedAt,
		})
	}
	return evaluations, nil
}

func checkBranchName(name string) error {
	if strings.TrimSpace(name) == "" {
		return types.ErrEmptyBranchName
	}
	if len(name) > types.MaxBranchNameLength {
		return fmt.Errorf("%w: %d bytes, limit is %d", types.ErrBranchNameTooLong, len(name), types.MaxBranchNameLength)
	}
	return nil
}

// isUniqueViolation recognizes unique constraint errors from either driver.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
