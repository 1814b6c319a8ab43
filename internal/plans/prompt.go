package plans

import "strings"

const promptTemplate = `You are a career transition coach and financial strategist. A user wants to quit their job and leave their 9-5 life behind.

Create a detailed, 90-day personalized escape plan based on these details:
- Current Job: {{JOB}}
- Monthly Income: {{INCOME}}
- Skills: {{SKILLS}}
- Savings: {{SAVINGS}}
- Goal: {{GOAL}}

The plan should include:
1. Side hustle or income source ideas based on their skills
2. Weekly action steps
3. Budget recommendations
4. Motivation tips
5. Tools and resources to use

Respond in a motivational and encouraging tone.
`

// BuildPrompt renders the plan prompt. Replacement is single-pass, so user text that
// looks like a placeholder is left alone.
func BuildPrompt(in SubmissionInput) string {
	r := strings.NewReplacer(
		"{{JOB}}", in.JobTitle,
		"{{INCOME}}", in.MonthlyIncome,
		"{{SKILLS}}", in.Skills,
		"{{SAVINGS}}", in.Savings,
		"{{GOAL}}", in.Goal,
	)
	return r.Replace(promptTemplate)
}
