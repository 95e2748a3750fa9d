package api

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/flowbuilder/branchkeeper/internal/conditions"
	"github.com/flowbuilder/branchkeeper/internal/types"
)

// auditEntry is one line of the daily evaluation log.
type auditEntry struct {
	EvaluationID types.EvaluationID       `json:"evaluation_id"`
	TenantID     types.TenantID           `json:"tenant_id"`
	BranchID     types.BranchID           `json:"branch_id"`
	Verdict      bool                     `json:"verdict"`
	Groups       []conditions.GroupResult `json:"groupResults"`
	At           time.Time                `json:"at"`
}

// auditLog appends evaluations of stored branches to daily JSONL files.
// Best-effort debugging aid; the evaluations table is authoritative.
type auditLog struct {
	dir     string
	now     func() time.Time
	mu      sync.Mutex
	fileMus map[string]*sync.Mutex
}

func newAuditLog(dir string) *auditLog {
	return &auditLog{
		dir:     dir,
		now:     func() time.Time { return time.Now().UTC() },
		fileMus: make(map[string]*sync.Mutex),
	}
}

// fileMutex returns mutex for given filename, creating if not exists.
// Map grows by one entry per day.
func (a *auditLog) fileMutex(filename string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.fileMus[filename]; !ok {
		a.fileMus[filename] = &sync.Mutex{}
	}
	return a.fileMus[filename]
}

// append writes entry to the file of the day its evaluation id was minted,
// so audit lines and evaluation rows agree on time.
func (a *auditLog) append(entry auditEntry) error {
	entry.At = types.EvaluationIDTime(entry.EvaluationID).UTC()
	if entry.At.IsZero() {
		entry.At = a.now()
	}
	filename := filepath.Join(a.dir, entry.At.Format("2006-01-02.jsonl"))

	line, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	line = append(line, '\n')

	mu := a.fileMutex(filename)
	mu.Lock()
	defer mu.Unlock()

	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(line); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
