package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/harrisonrobin/smartflow/pkg/config"
	"github.com/harrisonrobin/smartflow/pkg/model"
	"github.com/harrisonrobin/smartflow/pkg/render"
	"github.com/harrisonrobin/smartflow/pkg/session"
	"github.com/spf13/cobra"
)

const prompt = "smartflow> "

var errQuit = errors.New("quit")

func newShellCmd(a *app) *cobra.Command {
	var sf sessionFlags
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Run an interactive triage session",
		Long: `shell keeps one session open and reads commands from stdin, one per
line. Type help for the list of commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.openSession(cmd.Context(), sf)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			a.sync(cmd.Context(), out, sess)
			return a.repl(cmd.Context(), cmd.InOrStdin(), out, sess)
		},
	}
	sf.register(cmd)
	return cmd
}

// repl runs one command per input line until quit or end of input.
func (a *app) repl(ctx context.Context, in io.Reader, out io.Writer, sess *session.Session) error {
	palette := render.NewPalette()
	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, prompt)
	for scanner.Scan() {
		args := strings.Fields(scanner.Text())
		if len(args) > 0 {
			tree := newShellTree(a, sess, palette)
			tree.SetArgs(args)
			tree.SetIn(in)
			tree.SetOut(out)
			tree.SetErr(out)
			err := tree.ExecuteContext(ctx)
			if errors.Is(err, errQuit) {
				return nil
			}
			if err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
			}
		}
		fmt.Fprint(out, prompt)
	}
	fmt.Fprintln(out)
	return scanner.Err()
}

// newShellTree builds the commands available inside the shell. A fresh tree
// is built for every line so no flag value leaks into the next command.
func newShellTree(a *app, sess *session.Session, palette *render.Palette) *cobra.Command {
	root := &cobra.Command{
		Use:           "smartflow",
		Short:         "Commands of the triage shell",
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	root.AddCommand(
		newAddCmd(a, sess),
		newSetCompletedCmd(sess, "done", "Mark an action as done", true),
		newSetCompletedCmd(sess, "undo", "Move a completed action back to pending", false),
		newListCmd(a, sess, palette, false),
		newListCmd(a, sess, palette, true),
		&cobra.Command{
			Use:   "fetch",
			Short: "Fetch unread demands from the configured mailbox",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				if sess.Config().Source == config.SourceNone {
					fmt.Fprintln(cmd.OutOrStdout(), "No mail source configured.")
					return
				}
				a.sync(cmd.Context(), cmd.OutOrStdout(), sess)
			},
		},
		newShellExportCmd(a, sess),
		&cobra.Command{
			Use:   "contexts",
			Short: "List the enabled contexts",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				for _, c := range sess.Config().Contexts {
					fmt.Fprintln(cmd.OutOrStdout(), c)
				}
			},
		},
		&cobra.Command{
			Use:   "projects",
			Short: "List the project catalog",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				for i, p := range sess.Config().Projects {
					fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, p)
				}
			},
		},
		&cobra.Command{
			Use:   "links",
			Short: "List the reference links",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				if len(sess.Config().Links) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No reference links configured.")
					return
				}
				render.Links(cmd.OutOrStdout(), sess.Config().Links)
			},
		},
		&cobra.Command{
			Use:     "quit",
			Aliases: []string{"exit"},
			Short:   "Leave the shell",
			Args:    cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return errQuit
			},
		},
	)
	return root
}

// newListCmd prints the agenda, or only the completed actions. Stored tiers
// are restamped first so ids and exports agree with what is shown.
func newListCmd(a *app, sess *session.Session, palette *render.Palette, completedOnly bool) *cobra.Command {
	var af agendaFilter
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the ranked agenda",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			today := a.today()
			sess.Refresh(today)
			pending, completed, err := af.apply(sess, today)
			if err != nil {
				return err
			}
			if !completedOnly {
				return render.Agenda(cmd.OutOrStdout(), pending, completed, render.Options{Palette: palette, ShowIDs: true})
			}

			if len(completed) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No completed tasks in this filter yet.")
				return nil
			}
			for _, t := range completed {
				fmt.Fprintf(cmd.OutOrStdout(), "✓ %s  %s\n", render.ShortID(t.ID), t.Action)
			}
			return nil
		},
	}
	if completedOnly {
		cmd.Use = "completed"
		cmd.Short = "List completed actions"
	}
	af.register(cmd)
	return cmd
}

func newShellExportCmd(a *app, sess *session.Session) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Write every task as CSV or JSON to a file or stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			return a.export(cmd.OutOrStdout(), sess, path, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatCSV, "output format: csv or json")
	return cmd
}

func newAddCmd(a *app, sess *session.Session) *cobra.Command {
	var (
		due        string
		priority   int
		gtdContext string
		project    string
	)
	cmd := &cobra.Command{
		Use:   "add <action...>",
		Short: "Capture a next action",
		Example: `  add Call supplier X about invoice --context phone --due 2026-10-21 -p 2
  add Draft KPI summary --project 2`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := sess.Config()
			f := model.Fields{
				Action:   strings.Join(args, " "),
				Context:  cfg.DefaultContext,
				Priority: cfg.DefaultPriority,
			}
			if cmd.Flags().Changed("priority") {
				f.Priority = priority
			}
			if gtdContext != "" {
				c, err := model.ParseContext(gtdContext)
				if err != nil {
					return err
				}
				f.Context = c
			}
			if project != "" {
				p, err := resolveProject(cfg.Projects, project)
				if err != nil {
					return err
				}
				f.Project = p
			}
			if due != "" {
				d, err := civil.ParseDate(due)
				if err != nil {
					return fmt.Errorf("invalid due date %q, expected YYYY-MM-DD", due)
				}
				f.Due = &d
			}

			t, ok, err := sess.Add(f, a.today())
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing added: the action is blank.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Added %s (%s)\n", t.Tier.Symbol(), t.Action, render.ShortID(t.ID))
			return nil
		},
	}
	cmd.Flags().StringVar(&due, "due", "", "due date, YYYY-MM-DD")
	cmd.Flags().IntVarP(&priority, "priority", "p", 0, "priority, 1 (highest) to 4")
	cmd.Flags().StringVar(&gtdContext, "context", "", "context, e.g. @phone")
	cmd.Flags().StringVar(&project, "project", "", "project name or its number from projects")
	return cmd
}

// resolveProject accepts a catalog name or its 1-based position.
func resolveProject(catalog []string, v string) (string, error) {
	if n, err := strconv.Atoi(v); err == nil {
		if n < 1 || n > len(catalog) {
			return "", fmt.Errorf("no project number %d", n)
		}
		return catalog[n-1], nil
	}
	for _, p := range catalog {
		if strings.EqualFold(p, v) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown project %q", v)
}

func newSetCompletedCmd(sess *session.Session, use, short string, completed bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := sess.SetCompleted(args[0], completed)
			if err != nil {
				return err
			}
			state := "pending"
			if t.Completed {
				state = "done"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is %s\n", t.Action, state)
			return nil
		},
	}
}
