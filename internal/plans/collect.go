package plans

import "strings"

// Collect turns a form into a SubmissionInput. Any blank field yields an *InputError
// wrapping ErrInputIncomplete. Values are returned verbatim, without parsing.
func Collect(form Form) (SubmissionInput, error) {
	var missing []string
	check := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	check("jobTitle", form.JobTitle)
	check("monthlyIncome", form.MonthlyIncome)
	check("skills", form.Skills)
	check("savings", form.Savings)
	check("goal", form.Goal)
	if len(missing) > 0 {
		return SubmissionInput{}, &InputError{Missing: missing}
	}
	return SubmissionInput{
		JobTitle:      form.JobTitle,
		MonthlyIncome: form.MonthlyIncome,
		Skills:        form.Skills,
		Savings:       form.Savings,
		Goal:          form.Goal,
	}, nil
}

// HustlePath returns the first listed skill, the suggested first side income.
func (in SubmissionInput) HustlePath() string {
	for _, part := range strings.Split(in.Skills, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
