package types

import (
	"time"

	"github.com/google/uuid"
)

// NewBranchID generates a UUIDv7 branch identifier.
// Time-ordered IDs ensure sequential inserts cluster in B-tree pages.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewBranchID() BranchID {
	return BranchID(uuid.Must(uuid.NewV7()).String())
}

// NewEvaluationID generates a UUIDv7 evaluation identifier.
func NewEvaluationID() EvaluationID {
	return EvaluationID(uuid.Must(uuid.NewV7()).String())
}

// ParseBranchID validates and converts a string to BranchID.
// Rejects malformed UUIDs to prevent invalid IDs from reaching the store.
func ParseBranchID(s string) (BranchID, error) {
	_, err := uuid.Parse(s)
	if err != nil {
		return "", err
	}
	return BranchID(s), nil
}

// EvaluationIDTime extracts the timestamp embedded in a UUIDv7 ID.
// Returns zero time for invalid UUIDs; caller should check IsZero().
func EvaluationIDTime(id EvaluationID) time.Time {
	u, err := uuid.Parse(string(id))
	if err != nil {
		return time.Time{}
	}
	sec, nsec := u.Time().UnixTime()
	return time.Unix(sec, nsec)
}
