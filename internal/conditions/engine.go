package conditions

import (
	"time"

	"github.com/flowbuilder/branchkeeper/internal/types"
	"go.uber.org/zap"
)

// Observer receives evaluation outcomes. Implemented by the metrics package.
type Observer interface {
	ObserveEvaluation(result Result, elapsed time.Duration)
	ObserveConfigError()
}

type nopObserver struct{}

func (nopObserver) ObserveEvaluation(Result, time.Duration) {}
func (nopObserver) ObserveConfigError()                     {}

// Engine wraps the pure evaluator with logging and metrics for the service.
// It holds no evaluation state and is safe for concurrent use.
type Engine struct {
	logger   *zap.Logger
	observer Observer
	now      func() time.Time
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *zap.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithObserver sets the evaluation observer.
func WithObserver(observer Observer) EngineOption {
	return func(e *Engine) {
		if observer != nil {
			e.observer = observer
		}
	}
}

// NewEngine creates a condition engine. Defaults to a no-op logger and observer.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		logger:   zap.NewNop(),
		observer: nopObserver{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compile compiles config, logging and counting structural rejections.
func (e *Engine) Compile(config types.ConditionsConfig) (*CompiledConfig, error) {
	compiled, err := Compile(config)
	if err != nil {
		e.observer.ObserveConfigError()
		e.logger.Warn("rejected conditions config", zap.Error(err))
		return nil, err
	}
	return compiled, nil
}

// Evaluate compiles and evaluates config against record.
func (e *Engine) Evaluate(config types.ConditionsConfig, record types.Record) (Result, error) {
	compiled, err := e.Compile(config)
	if err != nil {
		return Result{}, err
	}
	return e.EvaluateCompiled(compiled, record), nil
}

// EvaluateCompiled evaluates an already compiled configuration.
func (e *Engine) EvaluateCompiled(compiled *CompiledConfig, record types.Record) Result {
	start := e.now()
	result := compiled.Evaluate(record)
	elapsed := e.now().Sub(start)

	e.observer.ObserveEvaluation(result, elapsed)
	e.logger.Debug("evaluated conditions",
		zap.Bool("verdict", result.Verdict),
		zap.Int("groups", len(result.Groups)),
		zap.Int("rules", result.RuleCount()),
		zap.Duration("elapsed", elapsed),
	)
	return result
}

// Filter keeps the records that satisfy config, observing every evaluation.
func (e *Engine) Filter(config types.ConditionsConfig, records []types.Record) (FilterResult, error) {
	compiled, err := e.Compile(config)
	if err != nil {
		return FilterResult{}, err
	}
	out := FilterResult{
		Records: []types.Record{},
		Indexes: []int{},
	}
	for i, record := range records {
		if e.EvaluateCompiled(compiled, record).Verdict {
			out.Records = append(out.Records, record)
			out.Indexes = append(out.Indexes, i)
		}
	}
	return out, nil
}
