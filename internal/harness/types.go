package harness

import "github.com/roach88/appdom/internal/dom"

// TraceEvent records one executed step.
type TraceEvent struct {
	// Seq is the session clock after the step.
	Seq int64 `json:"seq"`

	Op string `json:"op"`

	// Node is the id the step produced or targeted, if any.
	Node string `json:"node,omitempty"`

	// Entries is the number of records the step's patch touched.
	Entries int `json:"entries"`

	// Error is the code the step failed with, if any.
	Error string `json:"error,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every step behaved as expected and every
	// assertion held.
	Pass bool `json:"pass"`

	// Trace contains one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Final is the document after the last step.
	Final *dom.Dom `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a step event.
func (r *Result) AddTrace(ev TraceEvent) {
	r.Trace = append(r.Trace, ev)
}
