package pipeline

import (
	om "github.com/cevaris/ordered_map"
)

// Exit statuses for a run, also used as the process exit code.
const (
	ExitSuccess      = 0 // all tables succeeded
	ExitPartial      = 1 // some tables succeeded, some failed
	ExitTotalFailure = 2 // no table succeeded (or pre-flight config error)
)

// RunResult accumulates per-table outcomes in catalogue order. It is only
// appended to by the single orchestrating goroutine.
type RunResult struct {
	outcomes *om.OrderedMap
}

func NewRunResult() *RunResult {
	return &RunResult{outcomes: om.NewOrderedMap()}
}

func (r *RunResult) Set(table string, success bool) {
	r.outcomes.Set(table, success)
}

// Get returns the outcome for a table and whether the table was attempted.
func (r *RunResult) Get(table string) (success bool, attempted bool) {
	v, ok := r.outcomes.Get(table)
	if !ok {
		return false, false
	}
	return v.(bool), true
}

func (r *RunResult) Len() int {
	return r.outcomes.Len()
}

// Successful returns the names of tables that succeeded, in run order.
func (r *RunResult) Successful() []string {
	return r.names(true)
}

// Failed returns the names of tables that failed, in run order.
func (r *RunResult) Failed() []string {
	return r.names(false)
}

func (r *RunResult) names(wantSuccess bool) []string {
	retval := make([]string, 0, r.outcomes.Len())
	iter := r.outcomes.IterFunc()
	for kv, ok := iter(); ok; kv, ok = iter() {
		if kv.Value.(bool) == wantSuccess {
			retval = append(retval, kv.Key.(string))
		}
	}
	return retval
}

// ExitCode maps the aggregate outcome onto the process exit status.
// An empty run (nothing attempted) counts as success.
func (r *RunResult) ExitCode() int {
	failed := len(r.Failed())
	if failed == 0 {
		return ExitSuccess
	}
	if failed < r.outcomes.Len() {
		return ExitPartial
	}
	return ExitTotalFailure
}
