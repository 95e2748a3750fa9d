package conditions

import (
	"sync"
	"testing"
	"time"

	"github.com/flowbuilder/branchkeeper/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recordingObserver struct {
	mu           sync.Mutex
	verdicts     []bool
	configErrors int
}

func (o *recordingObserver) ObserveEvaluation(result Result, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.verdicts = append(o.verdicts, result.Verdict)
}

func (o *recordingObserver) ObserveConfigError() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.configErrors++
}

func expenseConfig() types.ConditionsConfig {
	return types.ConditionsConfig{
		Groups: []types.ConditionGroup{
			group("g", types.LogicAnd, rule("r", "type", types.OpEquals, "expense")),
		},
	}
}

func TestEngine_EvaluateObservesAndLogs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	obs := &recordingObserver{}
	engine := NewEngine(WithLogger(zap.New(core)), WithObserver(obs))

	result, err := engine.Evaluate(expenseConfig(), types.Record{"type": "expense"})
	require.NoError(t, err)
	assert.True(t, result.Verdict)

	assert.Equal(t, []bool{true}, obs.verdicts)
	entries := logs.FilterMessage("evaluated conditions").All()
	require.Len(t, entries, 1)
	assert.Equal(t, true, entries[0].ContextMap()["verdict"])
	assert.Equal(t, int64(1), entries[0].ContextMap()["rules"])
}

func TestEngine_CompileErrorCounted(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	obs := &recordingObserver{}
	engine := NewEngine(WithLogger(zap.New(core)), WithObserver(obs))

	_, err := engine.Evaluate(types.ConditionsConfig{}, types.Record{})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrInvalidConfig)

	assert.Equal(t, 1, obs.configErrors)
	assert.Empty(t, obs.verdicts)
	assert.Equal(t, 1, logs.FilterMessage("rejected conditions config").Len())
}

func TestEngine_FilterObservesEveryRecord(t *testing.T) {
	obs := &recordingObserver{}
	engine := NewEngine(WithObserver(obs))

	records := []types.Record{{"type": "expense"}, {"type": "income"}, {"type": "expense"}}
	got, err := engine.Filter(expenseConfig(), records)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 2}, got.Indexes)
	assert.Equal(t, []bool{true, false, true}, obs.verdicts)
}

func TestEngine_NilOptionsKeepDefaults(t *testing.T) {
	engine := NewEngine(WithLogger(nil), WithObserver(nil))

	result, err := engine.Evaluate(expenseConfig(), nil)
	require.NoError(t, err)
	assert.False(t, result.Verdict)
}
