package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"golang.org/x/oauth2/google"
)

const (
	sheetsScope          = "https://www.googleapis.com/auth/spreadsheets"
	defaultSheetsBaseURL = "https://sheets.googleapis.com"
)

// SheetsTarget appends the lead as a row through the Google Sheets API with a service account.
type SheetsTarget struct {
	SpreadsheetID string
	Range         string
	BaseURL       string
	// HTTPClient must attach credentials; NewSheetsTarget builds one from a service-account key.
	HTTPClient *http.Client
}

// NewSheetsTarget loads a service-account key file and returns a target whose client signs
// requests with it.
func NewSheetsTarget(ctx context.Context, credentialsFile, spreadsheetID, rng string) (*SheetsTarget, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read sheets credentials: %w", err)
	}
	conf, err := google.JWTConfigFromJSON(data, sheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse sheets credentials: %w", err)
	}
	return &SheetsTarget{
		SpreadsheetID: spreadsheetID,
		Range:         rng,
		HTTPClient:    conf.Client(ctx),
	}, nil
}

type appendValuesPayload struct {
	Values [][]string `json:"values"`
}

// Name implements Target.
func (t *SheetsTarget) Name() string { return TargetSpreadsheet }

// Configured implements Target.
func (t *SheetsTarget) Configured() bool {
	return t != nil && t.HTTPClient != nil && strings.TrimSpace(t.SpreadsheetID) != ""
}

// Send appends one row: timestamp, email, name, skills, savings, goal, hustle path.
func (t *SheetsTarget) Send(ctx context.Context, lead Lead) (int, error) {
	row := spreadsheetRow(lead)
	payload := appendValuesPayload{Values: [][]string{{
		row.Timestamp, row.Email, row.Name, row.Skills, row.Savings, row.Goal, row.HustlePath,
	}}}
	return postJSON(ctx, t.HTTPClient, t.endpoint(), nil, payload, http.StatusOK)
}

func (t *SheetsTarget) endpoint() string {
	base := strings.TrimRight(strings.TrimSpace(t.BaseURL), "/")
	if base == "" {
		base = defaultSheetsBaseURL
	}
	rng := strings.TrimSpace(t.Range)
	if rng == "" {
		rng = "A:G"
	}
	return fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s:append?valueInputOption=USER_ENTERED&insertDataOption=INSERT_ROWS",
		base, url.PathEscape(t.SpreadsheetID), url.PathEscape(rng))
}
