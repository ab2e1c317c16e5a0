// Package interceptor provides the cross-cutting observer pipeline invoked
// on mutation lifecycle events.
//
// Interceptors are named and ordered: lower order runs first, registration
// order decides within equal order. Before each phase the pipeline takes a
// snapshot and filters it through ShouldRun, so registrations made during an
// execution are invisible to that execution. Hooks run sequentially; an
// error from a hook propagates to the engine and fails the execution.
//
// Interceptors observe; they must not mutate the state or alter mutation
// outcomes. States are surfaced as untyped values so one interceptor can be
// shared across engines of different state types.
package interceptor
