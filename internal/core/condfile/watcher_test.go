package condfile

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/flowbuilder/branchkeeper/internal/types"
	"go.uber.org/goleak"
)

type reload struct {
	config types.ConditionsConfig
	err    error
}

func startWatcher(t *testing.T, path string) (<-chan reload, context.CancelFunc, <-chan error) {
	t.Helper()
	w, err := NewWatcher(path, 20*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	reloads := make(chan reload, 16)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(config types.ConditionsConfig, err error) {
			reloads <- reload{config, err}
		})
	}()
	// Let Run enter its loop before the test writes.
	time.Sleep(50 * time.Millisecond)
	return reloads, cancel, done
}

func waitReload(t *testing.T, reloads <-chan reload) reload {
	t.Helper()
	select {
	case r := <-reloads:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
		return reload{}
	}
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := writeFile(t, "conditions.yaml", yamlConfig)
	reloads, cancel, done := startWatcher(t, path)

	updated := `groups:
  - id: g
    conditions:
      - id: c
        field: status
        operator: is_not_empty
`
	if err := os.WriteFile(path, []byte(updated), 0o600); err != nil {
		t.Fatal(err)
	}

	r := waitReload(t, reloads)
	if r.err != nil {
		t.Fatalf("reload error = %v", r.err)
	}
	if len(r.config.Groups) != 1 || r.config.Groups[0].Conditions[0].Field != "status" {
		t.Errorf("reloaded config = %+v", r.config)
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run() error = %v", err)
	}
}

func TestWatcher_ReportsLoadErrors(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := writeFile(t, "conditions.json", jsonConfig)
	reloads, cancel, done := startWatcher(t, path)

	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if r := waitReload(t, reloads); r.err == nil {
		t.Errorf("reload error = nil, want decode error")
	}

	cancel()
	<-done
}

func TestWatcher_IgnoresSiblingFiles(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := writeFile(t, "conditions.yaml", yamlConfig)
	reloads, cancel, done := startWatcher(t, path)

	if err := os.WriteFile(path+".bak", []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	select {
	case r := <-reloads:
		t.Errorf("unexpected reload: %+v", r)
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	<-done
}

func TestNewWatcher_RejectsUnknownFormat(t *testing.T) {
	if _, err := NewWatcher(writeFile(t, "conditions.txt", ""), 0, nil); err == nil {
		t.Errorf("NewWatcher(.txt) error = nil")
	}
}
