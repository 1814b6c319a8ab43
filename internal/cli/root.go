package cli

import (
	"github.com/spf13/cobra"

	"escape-planner/internal/plans"
)

// App holds what the terminal commands need.
type App struct {
	Service *plans.Service
	// IsInteractive reports whether stdin is a terminal that can host forms.
	IsInteractive func() bool
	// RunForm runs a huh form; tests replace it.
	RunForm func(form formRunner) error
}

type formRunner interface {
	Run() error
}

// NewRootCmd creates the top-level "planner" command.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "planner",
		Short:         "Draft a plan for leaving your 9-to-5",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newPlanCmd(app))
	return root
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) runForm(f formRunner) error {
	if a.RunForm != nil {
		return a.RunForm(f)
	}
	return f.Run()
}
