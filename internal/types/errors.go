package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for BranchKeeper operations.
var (
	// ErrInvalidConfig indicates a configuration that has no truth value
	// (no groups, or a group without conditions). Match with errors.Is.
	ErrInvalidConfig = errors.New("invalid conditions config")

	// ErrBranchNotFound indicates no branch with the requested ID exists for the tenant.
	ErrBranchNotFound = errors.New("branch not found")

	// ErrBranchExists indicates the tenant already has a branch with that name.
	ErrBranchExists = errors.New("branch already exists")

	// ErrEmptyBranchName indicates a branch without a name.
	ErrEmptyBranchName = errors.New("branch name required")

	// ErrBranchNameTooLong indicates a branch name exceeds MaxBranchNameLength.
	ErrBranchNameTooLong = errors.New("branch name too long")

	// ErrUnsupportedFormat indicates a condition file with an unknown extension.
	ErrUnsupportedFormat = errors.New("unsupported condition file format")
)

// ConfigError reports why a ConditionsConfig cannot be evaluated.
// Group is -1 when the problem is the group list itself.
type ConfigError struct {
	Group   int
	GroupID string
	Reason  string
}

func (e *ConfigError) Error() string {
	if e.Group < 0 {
		return fmt.Sprintf("%s: %s", ErrInvalidConfig, e.Reason)
	}
	if e.GroupID != "" {
		return fmt.Sprintf("%s: group %d (%s): %s", ErrInvalidConfig, e.Group, e.GroupID, e.Reason)
	}
	return fmt.Sprintf("%s: group %d: %s", ErrInvalidConfig, e.Group, e.Reason)
}

// Unwrap lets errors.Is(err, ErrInvalidConfig) match.
func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// IsConfigError reports whether err is, or wraps, a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
