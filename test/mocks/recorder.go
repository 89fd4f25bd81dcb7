package mocks

import "sync"

// Call is a single recorded invocation
type Call struct {
	Method string
	Input  interface{}
}

// CallRecorder records invocations of a double. It is safe for concurrent use.
type CallRecorder struct {
	mu    sync.Mutex
	calls []Call
}

// NewCallRecorder creates an empty recorder
func NewCallRecorder() *CallRecorder {
	return &CallRecorder{}
}

// Record appends an invocation
func (r *CallRecorder) Record(method string, input interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Method: method, Input: input})
}

// Count returns how many times method was invoked
func (r *CallRecorder) Count(method string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// Total returns the number of recorded invocations
func (r *CallRecorder) Total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// Calls returns a copy of every recorded invocation in order
func (r *CallRecorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Inputs returns the inputs passed to method in order
func (r *CallRecorder) Inputs(method string) []interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []interface{}
	for _, c := range r.calls {
		if c.Method == method {
			out = append(out, c.Input)
		}
	}
	return out
}

// Clear drops every recorded invocation
func (r *CallRecorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}
