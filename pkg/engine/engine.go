package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"mercator-hq/ganymede/pkg/audit"
	"mercator-hq/ganymede/pkg/history"
	"mercator-hq/ganymede/pkg/interceptor"
	"mercator-hq/ganymede/pkg/mutation"
	"mercator-hq/ganymede/pkg/policy"
	"mercator-hq/ganymede/pkg/telemetry/metrics"
)

// Identifiable lets a state value supply the stable id used for audit and
// history. States that never commit may omit it; committing a mutation
// against a state without an id fails the history append.
type Identifiable interface {
	StateID() string
}

// Statistics summarizes the executions recorded by the engine's metrics
// collector.
type Statistics struct {
	TotalExecuted        int           `json:"total_executed"`
	AverageExecutionTime time.Duration `json:"average_execution_time"`
	MedianExecutionTime  time.Duration `json:"median_execution_time"`
	P95ExecutionTime     time.Duration `json:"p95_execution_time"`
	LastUpdatedAt        time.Time     `json:"last_updated_at"`
}

// Engine orchestrates the mutation pipeline for one state type S: before
// hook, policy evaluation, validation, apply, after hooks, audit, history,
// and metrics. It is stateless between executions except for its registries
// and stores, and is safe for concurrent use.
type Engine[S any] struct {
	options      *Options
	policies     *policy.Registry[S]
	interceptors *interceptor.Pipeline
	executor     *Executor[S]
	ledger       audit.Ledger
	history      history.Store
	collector    *metrics.Collector
	logger       *slog.Logger
}

// New creates an engine with in-memory stores and a fresh metrics
// collector. Nil options fall back to DefaultOptions.
func New[S any](opts *Options) (*Engine[S], error) {
	return NewWithStores[S](opts, audit.NewMemoryLedger(), history.NewMemoryStore(), metrics.NewCollector(nil, nil))
}

// NewWithStores creates an engine over caller-provided stores. The stores
// must be safe for concurrent use; durable backends are substituted here.
func NewWithStores[S any](opts *Options, ledger audit.Ledger, store history.Store, collector *metrics.Collector) (*Engine[S], error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine options: %w", err)
	}
	if ledger == nil {
		return nil, errors.New("audit ledger is required")
	}
	if store == nil {
		return nil, errors.New("history store is required")
	}
	if collector == nil {
		collector = metrics.NewCollector(nil, nil)
	}

	logger := slog.Default().With("component", "engine")

	return &Engine[S]{
		options:      opts,
		policies:     policy.NewRegistry[S](logger),
		interceptors: interceptor.NewPipeline(logger),
		executor:     NewExecutor[S](),
		ledger:       ledger,
		history:      store,
		collector:    collector,
		logger:       logger,
	}, nil
}

// RegisterPolicy adds a policy to the engine's registry.
func (e *Engine[S]) RegisterPolicy(p policy.Policy[S]) {
	e.policies.Register(p)
}

// UnregisterPolicy removes a policy by name.
func (e *Engine[S]) UnregisterPolicy(name string) bool {
	return e.policies.Unregister(name)
}

// RegisterInterceptor adds an interceptor to the engine's pipeline.
func (e *Engine[S]) RegisterInterceptor(i interceptor.Interceptor) {
	e.interceptors.Register(i)
}

// UnregisterInterceptor removes an interceptor by name.
func (e *Engine[S]) UnregisterInterceptor(name string) bool {
	return e.interceptors.Unregister(name)
}

// Policies exposes the policy registry.
func (e *Engine[S]) Policies() *policy.Registry[S] {
	return e.policies
}

// Interceptors exposes the interceptor pipeline.
func (e *Engine[S]) Interceptors() *interceptor.Pipeline {
	return e.interceptors
}

// Collector exposes the metrics collector.
func (e *Engine[S]) Collector() *metrics.Collector {
	return e.collector
}

// GetHistory returns the full chronological history for a state id. A state
// id that was never committed yields an empty history, not an error.
func (e *Engine[S]) GetHistory(ctx context.Context, stateID string) (*history.History, error) {
	return e.history.Get(ctx, stateID)
}

// QueryAudit returns the audit entries matching the query.
func (e *Engine[S]) QueryAudit(ctx context.Context, q audit.Query) ([]*audit.Entry, error) {
	return e.ledger.Query(ctx, q)
}

// Statistics summarizes all executions in the collector's sample window.
func (e *Engine[S]) Statistics() *Statistics {
	agg := e.collector.Statistics()
	return &Statistics{
		TotalExecuted:        agg.Total,
		AverageExecutionTime: agg.Average,
		MedianExecutionTime:  agg.P50,
		P95ExecutionTime:     agg.P95,
		LastUpdatedAt:        agg.To,
	}
}

// execState carries the per-call values threaded through the pipeline
// phases. It is created per ExecuteSingle call and discarded on return.
type execState[S any] struct {
	id        string
	scope     *metrics.Scope
	intent    mutation.Intent
	mctx      mutation.Context
	stateID   string
	state     S
	decisions []*mutation.PolicyDecision
}

// ExecuteSingle runs the full pipeline for one mutation against one state.
//
// Validation failures and policy denials are recovered locally and returned
// as structured results with a nil error. Timeouts, cancellations, and
// execution errors are audited and then returned as the error; timeouts
// arrive as *TimeoutError, cancellations unwrapped, everything else wrapped
// in *ExecutionError carrying the execution id.
func (e *Engine[S]) ExecuteSingle(ctx context.Context, m mutation.Mutation[S], state S) (*mutation.Result[S], error) {
	es := &execState[S]{
		id:      uuid.NewString(),
		intent:  m.Intent(),
		mctx:    m.Context(),
		stateID: e.stateIDOf(state),
		state:   state,
	}
	es.scope = e.collector.BeginScope(es.id)

	logger := e.logger.With(
		"execution_id", es.id,
		"operation", es.intent.Operation,
		"mode", es.mctx.Mode,
	)
	logger.Debug("execution started", "state_id", es.stateID)

	// Before hook
	if err := e.interceptors.OnBefore(ctx, interceptor.BeforeEvent{
		ExecutionID: es.id,
		Intent:      es.intent,
		Context:     es.mctx,
		State:       state,
	}); err != nil {
		return nil, e.raise(ctx, es, err)
	}

	// Policy phase
	effective := e.evaluatePolicies(ctx, es, m)

	// Block path
	if !effective.IsAllowed {
		logger.Info("mutation blocked by policy",
			"policy", effective.PolicyName,
			"reason", effective.Reason,
		)
		result := mutation.PolicyBlocked[S](effective)
		result.PolicyDecisions = es.decisions

		if err := e.interceptors.OnPolicyBlocked(ctx, interceptor.PolicyBlockedEvent{
			ExecutionID: es.id,
			Intent:      es.intent,
			Context:     es.mctx,
			State:       state,
			Decision:    effective,
		}); err != nil {
			return nil, e.raise(ctx, es, err)
		}

		e.audit(ctx, es, result.Changes, false, "blocked by policy "+effective.PolicyName)
		e.collector.ObserveBlocked(effective.PolicyName)
		e.finalize(es, result, metrics.OutcomePolicyBlocked)
		return result, nil
	}

	// Validation phase
	var validated *mutation.ValidationResult
	if es.mctx.Mode == mutation.ModeCommit || e.options.AlwaysValidate {
		validated = e.validate(es, m)
		if !validated.IsValid() {
			logger.Info("mutation failed validation", "issues", validated.IssueCount())
			result := mutation.Failure[S](validated)
			result.PolicyDecisions = es.decisions

			e.audit(ctx, es, result.Changes, false, "validation failed")
			e.finalize(es, result, metrics.OutcomeValidationFailed)
			return result, nil
		}
	}

	// Execution phase
	result, err := e.execute(ctx, es, m, validated)
	if err != nil {
		return nil, e.raise(ctx, es, err)
	}
	result.PolicyDecisions = es.decisions

	if !result.Success {
		// Structured failure surfaced by the mutation itself.
		if err := e.interceptors.OnFailed(ctx, interceptor.FailedEvent{
			ExecutionID: es.id,
			Intent:      es.intent,
			Context:     es.mctx,
			State:       state,
			Err:         result.Err,
		}); err != nil {
			return nil, e.raise(ctx, es, err)
		}

		e.audit(ctx, es, result.Changes, false, errorMessage(result))
		e.finalize(es, result, metrics.OutcomeError)
		return result, nil
	}

	// Modification merge. The modifications schema is reserved; the engine
	// records decisions on the result and does not interpret the map.

	// After hook
	if err := e.interceptors.OnAfter(ctx, interceptor.AfterEvent{
		ExecutionID: es.id,
		Intent:      es.intent,
		Context:     es.mctx,
		OldState:    state,
		NewState:    derefState(result.NewState),
		Changes:     result.Changes,
	}); err != nil {
		return nil, e.raise(ctx, es, err)
	}

	// Audit, then history for committed successes only.
	e.audit(ctx, es, result.Changes, true, "")

	if es.mctx.Mode == mutation.ModeCommit {
		entry := &history.Entry{
			ExecutionID:   es.id,
			StateID:       es.stateID,
			Intent:        es.intent,
			Context:       es.mctx,
			Changes:       result.Changes,
			SideEffects:   result.SideEffects,
			Timestamp:     time.Now(),
			ExecutionTime: time.Since(es.scope.StartedAt()),
		}
		if err := e.history.Append(ctx, entry); err != nil {
			logger.Error("history append failed", "error", err)
			e.finalize(es, result, metrics.OutcomeError)
			return result, NewExecutionError(es.id, err)
		}
	}

	e.finalize(es, result, metrics.OutcomeSuccess)
	logger.Debug("execution completed",
		"changes", result.Changes.Len(),
		"duration", result.Metrics.ExecutionTime,
	)
	return result, nil
}

// evaluatePolicies runs the policy phase and returns the effective
// decision: the first deny in descending-priority order short-circuits
// evaluation; otherwise the first decision carrying modifications wins;
// otherwise a synthetic allow.
func (e *Engine[S]) evaluatePolicies(ctx context.Context, es *execState[S], m mutation.Mutation[S]) *mutation.PolicyDecision {
	start := time.Now()

	var effective *mutation.PolicyDecision
	for _, p := range e.policies.Policies() {
		d := p.Evaluate(ctx, m, es.state)
		if d == nil {
			continue
		}
		if d.PolicyName == "" {
			// Record under the policy's name without touching the
			// decision the policy handed back.
			named := *d
			named.PolicyName = p.Name()
			d = &named
		}
		es.decisions = append(es.decisions, d)

		if !d.IsAllowed {
			effective = d
			break
		}
		if effective == nil && d.HasModifications() {
			effective = d
		}
	}

	es.scope.SetPolicyEvaluationTime(time.Since(start))
	es.scope.SetEvaluatedPolicies(len(es.decisions))

	if effective == nil {
		effective = policy.Allow()
		if len(es.decisions) == 0 {
			es.decisions = append(es.decisions, effective)
		}
	}
	return effective
}

// validate runs the mutation's validation and records its timing.
func (e *Engine[S]) validate(es *execState[S], m mutation.Mutation[S]) *mutation.ValidationResult {
	start := time.Now()
	v := m.Validate(es.state)
	if v == nil {
		v = mutation.Valid()
	}
	es.scope.SetValidationTime(time.Since(start))
	es.scope.SetValidatedRules(v.IssueCount())
	return v
}

// execute branches by mode: simulate runs inline, validate synthesizes a
// result without a transition, commit goes through the executor.
func (e *Engine[S]) execute(ctx context.Context, es *execState[S], m mutation.Mutation[S], validated *mutation.ValidationResult) (*mutation.Result[S], error) {
	switch es.mctx.Mode {
	case mutation.ModeSimulate:
		// Simulate runs inline; a failing simulation is a structured
		// result, never a raised executor error.
		result, err := m.Simulate(es.state)
		if err != nil {
			result = &mutation.Result[S]{
				Success:     false,
				Changes:     mutation.NewChangeSet(),
				Err:         err,
				CompletedAt: time.Now(),
			}
		}
		if result.Changes == nil {
			result.Changes = mutation.NewChangeSet()
		}
		return result, nil

	case mutation.ModeValidate:
		if validated == nil {
			validated = e.validate(es, m)
		}
		if !validated.IsValid() {
			return mutation.Failure[S](validated), nil
		}
		result := mutation.Success(es.state, mutation.NewChangeSet())
		result.Validation = validated
		return result, nil

	case mutation.ModeCommit:
		result, err := e.executor.Execute(ctx, m, es.state, ExecContext{
			ExecutionID: es.id,
			StartedAt:   es.scope.StartedAt(),
			Timeout:     e.options.ExecutionTimeout,
		})
		if err != nil {
			return nil, err
		}
		if result == nil {
			return nil, errors.New("apply returned no result")
		}
		if result.Changes == nil {
			result.Changes = mutation.NewChangeSet()
		}
		result.Validation = validated
		return result, nil

	default:
		return nil, fmt.Errorf("unrecognized mode %q", es.mctx.Mode)
	}
}

// raise handles the exception envelope: the failed hook runs, the attempt
// is audited, metrics finalize, and the classified error returns to the
// caller. Cancellation and timeouts pass through unwrapped; everything
// else is wrapped with the execution id.
func (e *Engine[S]) raise(ctx context.Context, es *execState[S], cause error) error {
	err := cause
	var timeoutErr *TimeoutError
	var execErr *ExecutionError
	switch {
	case errors.Is(cause, context.Canceled), errors.Is(cause, context.DeadlineExceeded):
		// propagated without wrapping
	case errors.As(cause, &timeoutErr), errors.As(cause, &execErr):
		// already classified
	default:
		err = NewExecutionError(es.id, cause)
	}

	e.logger.Error("execution failed",
		"execution_id", es.id,
		"operation", es.intent.Operation,
		"error", err,
	)

	if hookErr := e.interceptors.OnFailed(ctx, interceptor.FailedEvent{
		ExecutionID: es.id,
		Intent:      es.intent,
		Context:     es.mctx,
		State:       es.state,
		Err:         err,
	}); hookErr != nil {
		e.logger.Error("failed hook errored", "execution_id", es.id, "error", hookErr)
	}

	e.audit(ctx, es, mutation.NewChangeSet(), false, err.Error())

	built := es.scope.Build()
	e.collector.Record(es.id, built)
	e.collector.ObserveOutcome(metrics.OutcomeError)

	return err
}

// audit records the attempt in the ledger. Ledger failures are logged, not
// propagated; the execution outcome stands on its own.
func (e *Engine[S]) audit(ctx context.Context, es *execState[S], changes *mutation.ChangeSet, success bool, errMsg string) {
	if changes == nil {
		changes = mutation.NewChangeSet()
	}
	entry := &audit.Entry{
		ExecutionID:     es.id,
		StateID:         es.stateID,
		StateType:       fmt.Sprintf("%T", es.state),
		Intent:          es.intent,
		Context:         es.mctx,
		Changes:         changes,
		IsSuccess:       success,
		ErrorMessage:    errMsg,
		PolicyDecisions: es.decisions,
		Timestamp:       time.Now(),
		Duration:        time.Since(es.scope.StartedAt()),
		SourceIP:        es.mctx.SourceIP,
		UserAgent:       es.mctx.UserAgent,
	}
	if err := e.ledger.Record(ctx, entry); err != nil {
		e.logger.Error("audit record failed", "execution_id", es.id, "error", err)
	}
}

// finalize builds the metrics for the execution, attaches them to the
// result, and records them with the outcome.
func (e *Engine[S]) finalize(es *execState[S], result *mutation.Result[S], outcome string) {
	es.scope.SetChangesCount(result.Changes.Len())
	built := es.scope.Build()
	result.Metrics = built
	e.collector.Record(es.id, built)
	e.collector.ObserveOutcome(outcome)
}

// stateIDOf resolves the stable state id, if the state supplies one.
func (e *Engine[S]) stateIDOf(state S) string {
	if ident, ok := any(state).(Identifiable); ok {
		return ident.StateID()
	}
	return ""
}

// derefState unwraps the optional new state for interceptor events.
func derefState[S any](s *S) any {
	if s == nil {
		return nil
	}
	return *s
}

// errorMessage extracts the failure message from a structured result.
func errorMessage[S any](r *mutation.Result[S]) string {
	if r.Err != nil {
		return r.Err.Error()
	}
	if r.Validation != nil && !r.Validation.IsValid() {
		return "validation failed"
	}
	return "mutation reported failure"
}
