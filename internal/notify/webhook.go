package notify

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// SpreadsheetWebhookTarget logs the lead to a spreadsheet through a script webhook.
type SpreadsheetWebhookTarget struct {
	URL        string
	HTTPClient *http.Client
}

type spreadsheetPayload struct {
	Email      string `json:"email"`
	Name       string `json:"name,omitempty"`
	Timestamp  string `json:"timestamp"`
	Job        string `json:"job,omitempty"`
	Skills     string `json:"skills,omitempty"`
	Savings    string `json:"savings,omitempty"`
	Goal       string `json:"goal,omitempty"`
	HustlePath string `json:"hustle_path,omitempty"`
}

// Name implements Target.
func (t *SpreadsheetWebhookTarget) Name() string { return TargetSpreadsheet }

// Configured implements Target.
func (t *SpreadsheetWebhookTarget) Configured() bool {
	return t != nil && strings.TrimSpace(t.URL) != ""
}

// Send posts the row. Only 200 counts as success.
func (t *SpreadsheetWebhookTarget) Send(ctx context.Context, lead Lead) (int, error) {
	return postJSON(ctx, defaultHTTPClient(t.HTTPClient), strings.TrimSpace(t.URL), nil, spreadsheetRow(lead), http.StatusOK)
}

func spreadsheetRow(lead Lead) spreadsheetPayload {
	ts := lead.SubmittedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	return spreadsheetPayload{
		Email:      lead.Email,
		Name:       lead.Name,
		Timestamp:  ts.UTC().Format(time.RFC3339),
		Job:        lead.Details.JobTitle,
		Skills:     lead.Details.Skills,
		Savings:    lead.Details.Savings,
		Goal:       lead.Details.Goal,
		HustlePath: lead.Details.HustlePath,
	}
}
