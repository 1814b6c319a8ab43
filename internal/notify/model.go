package notify

import "time"

// Target names.
const (
	TargetMailingList = "mailing_list"
	TargetSpreadsheet = "spreadsheet"
	TargetPlanEmail   = "plan_email"
)

// Status is the observed result of one target call.
type Status string

const (
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// LeadDetails are the submission fields some targets log alongside the address.
type LeadDetails struct {
	JobTitle   string
	Skills     string
	Savings    string
	Goal       string
	HustlePath string
}

// Lead is everything a target may forward about one export.
type Lead struct {
	Contact
	SessionID    string
	SubmissionID string
	PlanText     string
	Details      LeadDetails
	SubmittedAt  time.Time
}

// Outcome is one target's result.
type Outcome struct {
	Target     string        `json:"target"`
	Status     Status        `json:"status"`
	StatusCode int           `json:"statusCode,omitempty"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"-"`
}

// Result collects every target's outcome. It is observed, never acted on.
type Result struct {
	Outcomes map[string]Outcome `json:"outcomes"`
}

// Get returns the outcome for a target, or skipped when the target never ran.
func (r Result) Get(target string) Outcome {
	if o, ok := r.Outcomes[target]; ok {
		return o
	}
	return Outcome{Target: target, Status: StatusSkipped}
}

// MailingList returns the mailing-list outcome.
func (r Result) MailingList() Outcome { return r.Get(TargetMailingList) }

// Spreadsheet returns the spreadsheet outcome.
func (r Result) Spreadsheet() Outcome { return r.Get(TargetSpreadsheet) }
