package cli

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"

	"escape-planner/internal/plans"
)

func required(label string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(label + " is required")
		}
		return nil
	}
}

// submissionForm asks only for the fields that are still blank.
func submissionForm(form *plans.Form) *huh.Form {
	var fields []huh.Field
	if strings.TrimSpace(form.JobTitle) == "" {
		fields = append(fields, huh.NewInput().Title("Current job title").Placeholder("Nurse").
			Value(&form.JobTitle).Validate(required("job title")))
	}
	if strings.TrimSpace(form.MonthlyIncome) == "" {
		fields = append(fields, huh.NewInput().Title("Monthly income").Placeholder("4000").
			Value(&form.MonthlyIncome).Validate(required("income")))
	}
	if strings.TrimSpace(form.Skills) == "" {
		fields = append(fields, huh.NewInput().Title("Skills").Description("Comma separated").
			Placeholder("Writing, Teaching").Value(&form.Skills).Validate(required("skills")))
	}
	if strings.TrimSpace(form.Savings) == "" {
		fields = append(fields, huh.NewInput().Title("Savings").Placeholder("2000").
			Value(&form.Savings).Validate(required("savings")))
	}
	if strings.TrimSpace(form.Goal) == "" {
		fields = append(fields, huh.NewText().Title("Dream goal").Placeholder("Freelance writing").
			Value(&form.Goal).Validate(required("goal")))
	}
	if len(fields) == 0 {
		return nil
	}
	return huh.NewForm(huh.NewGroup(fields...)).WithTheme(plannerTheme()).WithShowHelp(false)
}

func contactForm(in *plans.ContactInput) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Email").Description("Where should we send your plan?").
				Value(&in.Email).Validate(required("email")),
			huh.NewInput().Title("Name").Description("Optional").Value(&in.Name),
		),
	).WithTheme(plannerTheme()).WithShowHelp(false)
}
