package ingest

// OutcomeStatus is the result of one best-effort side effect.
type OutcomeStatus string

const (
	OutcomeOK      OutcomeStatus = "ok"
	OutcomeFailed  OutcomeStatus = "failed"
	OutcomeSkipped OutcomeStatus = "skipped"
)

// Outcome records what happened to a side effect, for the response body.
type Outcome struct {
	Status   OutcomeStatus `json:"status"`
	Location string        `json:"location,omitempty"`
	Reason   string        `json:"reason,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// Succeeded is an ok outcome, optionally with where the effect landed.
func Succeeded(location string) Outcome { return Outcome{Status: OutcomeOK, Location: location} }

func Skipped(reason string) Outcome { return Outcome{Status: OutcomeSkipped, Reason: reason} }

func Failed(err error) Outcome { return Outcome{Status: OutcomeFailed, Error: err.Error()} }

// Diagnostics collects the outcome of every side effect of one request.
type Diagnostics struct {
	Notification Outcome `json:"notification"`
	Archive      Outcome `json:"archive"`
	Hook         Outcome `json:"hook"`
}
