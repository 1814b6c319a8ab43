package notify

import (
	"context"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

const planEmailSubject = "Your 90-day escape plan"

// SESAPI is the subset of the SES client the plan email uses.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// PlanEmailTarget mails the plan text to the lead through SES.
type PlanEmailTarget struct {
	Sender string
	Client SESAPI
}

// NewPlanEmailTarget loads the default AWS configuration for region.
func NewPlanEmailTarget(ctx context.Context, region, sender string) (*PlanEmailTarget, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &PlanEmailTarget{Sender: sender, Client: ses.NewFromConfig(cfg)}, nil
}

// Name implements Target.
func (t *PlanEmailTarget) Name() string { return TargetPlanEmail }

// Configured implements Target.
func (t *PlanEmailTarget) Configured() bool {
	return t != nil && t.Client != nil && strings.TrimSpace(t.Sender) != ""
}

// Send emails the plan. SES reports no HTTP status, so success is recorded as 200.
func (t *PlanEmailTarget) Send(ctx context.Context, lead Lead) (int, error) {
	greeting := "Hi,"
	if lead.Name != "" {
		greeting = "Hi " + lead.Name + ","
	}
	body := greeting + "\n\nHere is the escape plan you generated:\n\n" + lead.PlanText + "\n"
	_, err := t.Client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{lead.Email},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(planEmailSubject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(t.Sender),
	})
	if err != nil {
		return 0, err
	}
	return http.StatusOK, nil
}
