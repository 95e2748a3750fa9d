package types

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestConfigError(t *testing.T) {
	tests := []struct {
		name string
		err  *ConfigError
		want string
	}{
		{"list level", &ConfigError{Group: -1, Reason: "no condition groups"}, "invalid conditions config: no condition groups"},
		{"with id", &ConfigError{Group: 2, GroupID: "g3", Reason: "no conditions"}, "invalid conditions config: group 2 (g3): no conditions"},
		{"without id", &ConfigError{Group: 0, Reason: "no conditions"}, "invalid conditions config: group 0: no conditions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
			wrapped := fmt.Errorf("load: %w", tt.err)
			if !errors.Is(wrapped, ErrInvalidConfig) {
				t.Errorf("errors.Is(wrapped, ErrInvalidConfig) = false")
			}
			if !IsConfigError(wrapped) {
				t.Errorf("IsConfigError(wrapped) = false")
			}
		})
	}

	if IsConfigError(ErrBranchNotFound) {
		t.Errorf("IsConfigError(ErrBranchNotFound) = true")
	}
}

func TestLogic_Normalize(t *testing.T) {
	tests := []struct {
		in   Logic
		want Logic
	}{
		{"and", LogicAnd},
		{"AND", LogicAnd},
		{"or", LogicOr},
		{"Or", LogicOr},
		{"", LogicAnd},
		{"xor", LogicAnd},
	}

	for _, tt := range tests {
		if got := tt.in.Normalize(); got != tt.want {
			t.Errorf("Logic(%q).Normalize() = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestIDs(t *testing.T) {
	before := time.Now().Add(-time.Second)
	id := NewEvaluationID()
	ts := EvaluationIDTime(id)
	if ts.Before(before) || ts.After(time.Now().Add(time.Second)) {
		t.Errorf("EvaluationIDTime() = %v, want around now", ts)
	}
	if !EvaluationIDTime("not-a-uuid").IsZero() {
		t.Errorf("EvaluationIDTime(invalid) should be zero")
	}

	bid := NewBranchID()
	parsed, err := ParseBranchID(string(bid))
	if err != nil || parsed != bid {
		t.Errorf("ParseBranchID(%q) = %q, %v", bid, parsed, err)
	}
	if _, err := ParseBranchID("nope"); err == nil {
		t.Errorf("ParseBranchID(nope) error = nil, want error")
	}
}
