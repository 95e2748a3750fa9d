package api

import (
	"context"
	"fmt"

	"github.com/flowbuilder/branchkeeper/internal/conditions"
	"github.com/flowbuilder/branchkeeper/internal/types"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client calls ConditionService for a workflow executor.
type Client struct {
	conn   grpc.ClientConnInterface
	apiKey string
}

// NewClient creates a client that authenticates every call with apiKey.
func NewClient(conn grpc.ClientConnInterface, apiKey string) *Client {
	return &Client{conn: conn, apiKey: apiKey}
}

func (c *Client) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if c.apiKey != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "x-api-key", c.apiKey)
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, "/"+ConditionServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Evaluate evaluates an inline configuration.
func (c *Client) Evaluate(ctx context.Context, config types.ConditionsConfig, record types.Record) (conditions.Result, error) {
	req, err := toStruct(map[string]any{"config": config, "record": record})
	if err != nil {
		return conditions.Result{}, fmt.Errorf("encode request: %w", err)
	}
	resp, err := c.invoke(ctx, "Evaluate", req)
	if err != nil {
		return conditions.Result{}, err
	}
	return decodeResult(resp)
}

// EvaluateBranch evaluates a stored branch. The evaluation id is empty when
// the server could not record it.
func (c *Client) EvaluateBranch(ctx context.Context, branch types.BranchID, record types.Record) (conditions.Result, types.EvaluationID, error) {
	req, err := toStruct(map[string]any{"branch_id": branch, "record": record})
	if err != nil {
		return conditions.Result{}, "", fmt.Errorf("encode request: %w", err)
	}
	resp, err := c.invoke(ctx, "Evaluate", req)
	if err != nil {
		return conditions.Result{}, "", err
	}
	result, err := decodeResult(resp)
	return result, types.EvaluationID(stringField(resp, "evaluation_id")), err
}

// Filter returns the indexes of records that satisfy config.
func (c *Client) Filter(ctx context.Context, config types.ConditionsConfig, records []types.Record) ([]int, error) {
	req, err := toStruct(map[string]any{"config": config, "records": records})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	resp, err := c.invoke(ctx, "Filter", req)
	if err != nil {
		return nil, err
	}
	var out struct {
		Indexes []int `json:"indexes"`
	}
	if err := fromStruct(resp, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if out.Indexes == nil {
		out.Indexes = []int{}
	}
	return out.Indexes, nil
}

// PutBranch stores config under name and returns the branch id.
func (c *Client) PutBranch(ctx context.Context, name string, config types.ConditionsConfig) (types.BranchID, error) {
	req, err := toStruct(map[string]any{"name": name, "config": config})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}
	resp, err := c.invoke(ctx, "PutBranch", req)
	if err != nil {
		return "", err
	}
	return types.BranchID(stringField(resp, "branch_id")), nil
}

// Lint returns the server's validation issues for config.
func (c *Client) Lint(ctx context.Context, config types.ConditionsConfig) ([]conditions.Issue, error) {
	req, err := toStruct(map[string]any{"config": config})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	resp, err := c.invoke(ctx, "Lint", req)
	if err != nil {
		return nil, err
	}
	var out struct {
		Issues []conditions.Issue `json:"issues"`
	}
	if err := fromStruct(resp, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out.Issues, nil
}

func decodeResult(resp *structpb.Struct) (conditions.Result, error) {
	var result conditions.Result
	if err := fromStruct(resp, &result); err != nil {
		return conditions.Result{}, fmt.Errorf("decode result: %w", err)
	}
	return result, nil
}
