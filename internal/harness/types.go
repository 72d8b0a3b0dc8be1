package harness

// TraceEvent records one lexem event fed into the machine during a
// scenario run and the names of any matches it caused to publish
// (spec §8 "concrete end-to-end scenarios").
type TraceEvent struct {
	Ordpos     int64    `json:"ordpos"`
	Term       uint32   `json:"term"`
	NewResults []string `json:"new_results,omitempty"`
}

// Match is one published result, reduced to the fields a scenario
// asserts on.
type Match struct {
	Name        string `json:"name"`
	StartOrdpos int64  `json:"start_ordpos"`
	EndOrdpos   int64  `json:"end_ordpos"`
}

// Result is the outcome of running one scenario.
type Result struct {
	// Pass is true when every expected match was produced and no
	// unexpected one was.
	Pass bool `json:"pass"`

	// Trace records, per fed event, what newly published.
	Trace []TraceEvent `json:"trace"`

	// Matches holds every result the machine published by the end of
	// the run.
	Matches []Match `json:"matches"`

	// Errors holds assertion-failure messages. Empty when Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{Pass: true}
}

// AddError records an assertion failure and marks the result as failed.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Pass = false
}

// AddTrace appends one fed event's trace entry.
func (r *Result) AddTrace(ordpos int64, term uint32, newResults []string) {
	r.Trace = append(r.Trace, TraceEvent{Ordpos: ordpos, Term: term, NewResults: newResults})
}
