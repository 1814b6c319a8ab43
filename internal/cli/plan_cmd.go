package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"escape-planner/internal/exports"
	"escape-planner/internal/llm"
	"escape-planner/internal/notify"
	"escape-planner/internal/plans"
)

// sessionID is the fixed session used by the terminal front-end.
const sessionID = "cli"

type planOptions struct {
	form     plans.Form
	contact  plans.ContactInput
	pdfPath  string
	verify   bool
	noRender bool
}

func newPlanCmd(app *App) *cobra.Command {
	var opts planOptions
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Generate an escape plan and optionally export it as a PDF",
		Long: `Generate an escape plan from your job, income, skills, savings and goal.

Missing fields are asked for interactively when running in a terminal.
Pass --email to receive the plan as a PDF and join the mailing list.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, app, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.form.JobTitle, "job", "", "current job title")
	f.StringVar(&opts.form.MonthlyIncome, "income", "", "monthly income")
	f.StringVar(&opts.form.Skills, "skills", "", "comma-separated skills")
	f.StringVar(&opts.form.Savings, "savings", "", "savings")
	f.StringVar(&opts.form.Goal, "goal", "", "dream goal")
	f.StringVar(&opts.contact.Email, "email", "", "email address for the PDF")
	f.StringVar(&opts.contact.Name, "name", "", "name for the mailing list")
	f.StringVar(&opts.pdfPath, "pdf", "", "where to write the PDF (default ./"+exports.Filename+")")
	f.BoolVar(&opts.verify, "verify", false, "read the written PDF back and report its page count")
	f.BoolVar(&opts.noRender, "no-render", false, "print the plan without markdown styling")
	return cmd
}

func runPlan(cmd *cobra.Command, app *App, opts planOptions) error {
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	if app.interactive() {
		if form := submissionForm(&opts.form); form != nil {
			if err := app.runForm(form); err != nil {
				return fmt.Errorf("form: %w", err)
			}
		}
	}

	fmt.Fprintln(out, styleDim.Render("Drafting your plan..."))
	sess, err := app.Service.Submit(ctx, sessionID, opts.form)
	if err != nil {
		return describe(err)
	}

	fmt.Fprintln(out, styleHeader.Render("Your escape plan"))
	fmt.Fprintln(out, renderPlan(sess.Plan.Text, !opts.noRender && app.interactive()))

	wantExport := opts.contact.Email != "" || opts.pdfPath != ""
	if !wantExport {
		return nil
	}
	if strings.TrimSpace(opts.contact.Email) == "" {
		if !app.interactive() {
			return errors.New("--email is required to export the plan")
		}
		if err := app.runForm(contactForm(&opts.contact)); err != nil {
			return fmt.Errorf("form: %w", err)
		}
	}

	res, err := app.Service.Export(ctx, sessionID, opts.contact)
	if err != nil {
		return describe(err)
	}

	path := opts.pdfPath
	if path == "" {
		if path, err = exports.DefaultPath(".", res.Document); err != nil {
			return err
		}
	}
	if err := exports.WriteFile(path, res.Document); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s %s (%d pages)\n", styleOK.Render("Saved"), path, res.Document.Pages)
	if res.Document.Replaced > 0 {
		fmt.Fprintln(out, styleDim.Render(fmt.Sprintf("%d characters could not be printed and were replaced.", res.Document.Replaced)))
	}

	if opts.verify {
		info, err := exports.Inspect(res.Document.Bytes)
		if err != nil {
			return fmt.Errorf("verify pdf: %w", err)
		}
		fmt.Fprintf(out, "Verified: %d pages, %d characters of text\n", info.Pages, len(info.Text))
	}

	printNotify(out, res)
	return nil
}

func printNotify(out io.Writer, res plans.ExportOutcome) {
	if !res.NotifyDispatched || res.Notify == nil {
		fmt.Fprintln(out, styleDim.Render("Notifications: not configured"))
		return
	}
	for _, target := range []string{notify.TargetMailingList, notify.TargetSpreadsheet, notify.TargetPlanEmail} {
		o := res.Notify.Get(target)
		label := styleDim.Render(string(o.Status))
		switch o.Status {
		case notify.StatusOK:
			label = styleOK.Render(string(o.Status))
		case notify.StatusFailed:
			label = styleErr.Render(string(o.Status))
		}
		fmt.Fprintf(out, "  %-13s %s\n", target, label)
	}
}

// describe turns pipeline errors into the same plain messages the page shows.
func describe(err error) error {
	var inputErr *plans.InputError
	if errors.As(err, &inputErr) {
		return fmt.Errorf("missing %s", strings.Join(inputErr.Missing, ", "))
	}
	if kind := llm.KindOf(err); kind != "" {
		return fmt.Errorf("%s (%w)", llm.UserMessage(kind), err)
	}
	_, _, message, _ := plans.Classify(err)
	return fmt.Errorf("%s (%w)", message, err)
}
