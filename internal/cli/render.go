package cli

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

const wrapWidth = 80

// renderPlan formats the plan as markdown for a terminal, falling back to a plain box.
func renderPlan(text string, rich bool) string {
	if rich {
		r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(wrapWidth))
		if err == nil {
			if out, err := r.Render(text); err == nil {
				return out
			}
		}
	}
	return stylePlan.Render(strings.TrimRight(text, "\n"))
}
