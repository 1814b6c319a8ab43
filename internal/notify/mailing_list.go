package notify

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// DefaultMailingListBaseURL is the MailerLite API host.
const DefaultMailingListBaseURL = "https://api.mailerlite.com"

// MailingListTarget subscribes the lead to a MailerLite-style audience.
type MailingListTarget struct {
	BaseURL    string
	APIKey     string
	GroupID    string
	HTTPClient *http.Client
}

// The group travels in the URL path, never in the body.
type subscriberPayload struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Name implements Target.
func (t *MailingListTarget) Name() string { return TargetMailingList }

// Configured implements Target.
func (t *MailingListTarget) Configured() bool {
	return t != nil && strings.TrimSpace(t.APIKey) != ""
}

// Send posts the subscriber. 200 and 201 count as success.
func (t *MailingListTarget) Send(ctx context.Context, lead Lead) (int, error) {
	payload := subscriberPayload{Email: lead.Email, Name: lead.Name}
	headers := map[string]string{"X-MailerLite-ApiKey": t.APIKey}
	return postJSON(ctx, defaultHTTPClient(t.HTTPClient), t.endpoint(), headers, payload, http.StatusOK, http.StatusCreated)
}

func (t *MailingListTarget) endpoint() string {
	base := strings.TrimRight(strings.TrimSpace(t.BaseURL), "/")
	if base == "" {
		base = DefaultMailingListBaseURL
	}
	if group := strings.TrimSpace(t.GroupID); group != "" {
		return base + "/api/v2/groups/" + url.PathEscape(group) + "/subscribers"
	}
	return base + "/api/v2/subscribers"
}
