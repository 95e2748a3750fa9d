// Package types provides domain models shared across BranchKeeper components.
//
// Zero-dependency design: conditions.go, types.go and errors.go use only the
// standard library so the evaluator can be embedded by a workflow executor
// without pulling in the service stack. ID utilities in ids.go import uuid
// but are isolated for selective inclusion.
package types

import "encoding/json"

// BranchID represents a UUIDv7 identifier of a registered branch condition.
// String alias enables type safety while maintaining JSON string serialization.
type BranchID string

// EvaluationID represents a UUIDv7 identifier of a recorded evaluation.
type EvaluationID string

// TenantID identifies the workspace that owns branches and API keys.
type TenantID string

// Record is the input an evaluation runs against: the resolved execution
// context of a branch node. Values are strings, numbers, booleans, nil,
// nested records or sequences.
type Record = map[string]any

// RawConfig preserves a ConditionsConfig document exactly as the editor wrote it.
// Stored verbatim; the store never rewrites editor output.
type RawConfig json.RawMessage

// MarshalJSON implements json.Marshaler.
func (c RawConfig) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("null"), nil
	}
	return json.RawMessage(c).MarshalJSON()
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *RawConfig) UnmarshalJSON(data []byte) error {
	return (*json.RawMessage)(c).UnmarshalJSON(data)
}

// Resource limits enforced at the service boundary.
const (
	// MaxGroups bounds the number of groups in one configuration.
	MaxGroups = 64

	// MaxConditionsPerGroup bounds rules per group.
	MaxConditionsPerGroup = 128

	// MaxFieldPathDepth bounds the number of dot-separated segments accepted
	// by Validate. Resolution itself is bounded by the segment count.
	MaxFieldPathDepth = 16

	// MaxBranchNameLength limits branch names stored by the service.
	MaxBranchNameLength = 256
)
