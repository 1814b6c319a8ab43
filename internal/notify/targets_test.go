package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLead() Lead {
	return Lead{
		Contact:      Contact{Email: "nurse@example.com", Name: "Sam"},
		SessionID:    "s-1",
		SubmissionID: "sub-1",
		PlanText:     "Week 1: ...",
		Details: LeadDetails{
			JobTitle:   "Nurse",
			Skills:     "Writing, Teaching",
			Savings:    "2000",
			Goal:       "Freelance writing",
			HustlePath: "Writing",
		},
		SubmittedAt: time.Date(2026, time.January, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestMailingListTargetPostsSubscriber(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/groups/grp-9/subscribers", r.URL.Path)
		assert.Equal(t, "ml-key", r.Header.Get("X-MailerLite-ApiKey"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "nurse@example.com", body["email"])
		assert.Equal(t, "Sam", body["name"])
		assert.Len(t, body, 2)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	target := &MailingListTarget{BaseURL: srv.URL, APIKey: "ml-key", GroupID: "grp-9"}
	require.True(t, target.Configured())
	code, err := target.Send(context.Background(), testLead())
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, code)
}

func TestMailingListTargetWithoutGroup(t *testing.T) {
	target := &MailingListTarget{APIKey: "k"}
	assert.Equal(t, DefaultMailingListBaseURL+"/api/v2/subscribers", target.endpoint())
	assert.False(t, (&MailingListTarget{}).Configured())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/subscribers", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]any{"email": "nurse@example.com", "name": "Sam"}, body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	target.BaseURL = srv.URL
	code, err := target.Send(context.Background(), testLead())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, code)
}

func TestMailingListTargetRejectsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("down"))
	}))
	defer srv.Close()

	target := &MailingListTarget{BaseURL: srv.URL, APIKey: "k"}
	code, err := target.Send(context.Background(), testLead())
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, code)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, "down", statusErr.Body)
}

func TestSpreadsheetWebhookTargetPostsRow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "nurse@example.com", body["email"])
		assert.Equal(t, "2026-01-02T03:04:05Z", body["timestamp"])
		assert.Equal(t, "Writing, Teaching", body["skills"])
		assert.Equal(t, "2000", body["savings"])
		assert.Equal(t, "Freelance writing", body["goal"])
		assert.Equal(t, "Writing", body["hustle_path"])
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	target := &SpreadsheetWebhookTarget{URL: srv.URL}
	code, err := target.Send(context.Background(), testLead())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, code)
}

func TestSpreadsheetWebhookTargetOnly200IsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	_, err := (&SpreadsheetWebhookTarget{URL: srv.URL}).Send(context.Background(), testLead())
	assert.Error(t, err)
}

func TestSheetsTargetAppendsValues(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v4/spreadsheets/sheet-1/values/Leads!A:G:append", r.URL.Path)
		assert.Equal(t, "USER_ENTERED", r.URL.Query().Get("valueInputOption"))
		var body appendValuesPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Values, 1)
		assert.Equal(t, "nurse@example.com", body.Values[0][1])
		assert.Equal(t, "Writing", body.Values[0][6])
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	target := &SheetsTarget{SpreadsheetID: "sheet-1", Range: "Leads!A:G", BaseURL: srv.URL, HTTPClient: srv.Client()}
	require.True(t, target.Configured())
	_, err := target.Send(context.Background(), testLead())
	require.NoError(t, err)
}

func TestNewSheetsTargetMissingFile(t *testing.T) {
	_, err := NewSheetsTarget(context.Background(), "/nonexistent/creds.json", "id", "A:G")
	assert.Error(t, err)
}

type mockSES struct {
	input *ses.SendEmailInput
	err   error
}

func (m *mockSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.input = params
	if m.err != nil {
		return nil, m.err
	}
	return &ses.SendEmailOutput{}, nil
}

func TestPlanEmailTargetSendsPlan(t *testing.T) {
	client := &mockSES{}
	target := &PlanEmailTarget{Sender: "plans@example.com", Client: client}
	require.True(t, target.Configured())

	code, err := target.Send(context.Background(), testLead())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, code)
	require.NotNil(t, client.input)
	assert.Equal(t, []string{"nurse@example.com"}, client.input.Destination.ToAddresses)
	assert.Contains(t, *client.input.Message.Body.Text.Data, "Week 1: ...")
	assert.Equal(t, "plans@example.com", *client.input.Source)
}

func TestPlanEmailTargetError(t *testing.T) {
	target := &PlanEmailTarget{Sender: "plans@example.com", Client: &mockSES{err: errors.New("throttled")}}
	code, err := target.Send(context.Background(), testLead())
	assert.Error(t, err)
	assert.Zero(t, code)
	assert.False(t, (&PlanEmailTarget{Sender: "x"}).Configured())
}
