package plans

import "time"

// Form is the raw submission as posted by the page, the API or the terminal form.
type Form struct {
	JobTitle      string `json:"jobTitle" form:"job"`
	MonthlyIncome string `json:"monthlyIncome" form:"income"`
	Skills        string `json:"skills" form:"skills"`
	Savings       string `json:"savings" form:"savings"`
	Goal          string `json:"goal" form:"goal"`
}

// SubmissionInput is a complete submission. Values are kept exactly as entered.
type SubmissionInput struct {
	JobTitle      string `json:"jobTitle"`
	MonthlyIncome string `json:"monthlyIncome"`
	Skills        string `json:"skills"`
	Savings       string `json:"savings"`
	Goal          string `json:"goal"`
}

// GeneratedPlan is the text returned by the generator, shown once and reused for export.
type GeneratedPlan struct {
	Text        string    `json:"text"`
	Model       string    `json:"model,omitempty"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// ExportedDocument is the printable rendering of a GeneratedPlan.
type ExportedDocument struct {
	Bytes    []byte
	Filename string
	MimeType string
	Pages    int
	// Replaced counts characters the document font could not encode.
	Replaced int
}

// ContactInput is the address a user gives to receive the document.
type ContactInput struct {
	Email string `json:"email" form:"email"`
	Name  string `json:"name" form:"name"`
}

// NotifySummary is the last observed notification outcome for a session.
type NotifySummary struct {
	MailingList string    `json:"mailingList"`
	Spreadsheet string    `json:"spreadsheet"`
	CompletedAt time.Time `json:"completedAt"`
}

// Session is the per-visitor context carried between requests.
type Session struct {
	ID           string           `json:"id"`
	SubmissionID string           `json:"submissionId,omitempty"`
	State        State            `json:"state"`
	Input        *SubmissionInput `json:"input,omitempty"`
	Plan         *GeneratedPlan   `json:"plan,omitempty"`
	FailureKind  string           `json:"failureKind,omitempty"`
	NotifyID     string           `json:"notifyId,omitempty"`
	Notify       *NotifySummary   `json:"notify,omitempty"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

// HasPlan reports whether the session holds a plan that can be exported.
func (s Session) HasPlan() bool {
	return s.Plan != nil && s.Plan.Text != ""
}
