package cli

import (
	"cloud.google.com/go/civil"
	"github.com/harrisonrobin/smartflow/pkg/config"
	"github.com/harrisonrobin/smartflow/pkg/model"
	"github.com/harrisonrobin/smartflow/pkg/render"
	"github.com/harrisonrobin/smartflow/pkg/session"
	"github.com/harrisonrobin/smartflow/pkg/store"
	"github.com/harrisonrobin/smartflow/pkg/urgency"
	"github.com/spf13/cobra"
)

func newAgendaCmd(a *app) *cobra.Command {
	var (
		sf      sessionFlags
		af      agendaFilter
		showIDs bool
	)
	cmd := &cobra.Command{
		Use:   "agenda",
		Short: "Fetch demands and print the ranked agenda",
		Example: `  smartflow agenda --seed
  smartflow agenda --source imap --context @phone
  smartflow agenda --project 2 --min-tier warning`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.openSession(cmd.Context(), sf)
			if err != nil {
				return err
			}
			a.sync(cmd.Context(), cmd.ErrOrStderr(), sess)

			pending, completed, err := af.apply(sess, a.today())
			if err != nil {
				return err
			}
			return render.Agenda(cmd.OutOrStdout(), pending, completed, render.Options{
				ShowIDs: showIDs,
				Links:   sess.Config().Links,
			})
		},
	}
	sf.register(cmd)
	af.register(cmd)
	cmd.Flags().BoolVar(&showIDs, "ids", false, "print short task ids")
	return cmd
}

// agendaFilter holds the filter flags shared by agenda and the shell lists.
type agendaFilter struct {
	context string
	project string
	minTier tierFlag
}

func (f *agendaFilter) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.context, "context", "", "only actions in this context, e.g. @phone or phone")
	cmd.Flags().StringVar(&f.project, "project", "", "only actions of this project, by name or number")
	cmd.Flags().Var(&f.minTier, "min-tier", "only pending actions at least this urgent: critical, warning, ok")
}

// resolve turns flag values into a store filter. Empty values match all.
func (f *agendaFilter) resolve(cfg *config.Config) (store.Filter, error) {
	filter := store.Filter{Context: store.AllContexts, Project: store.AllProjects}
	if f.context != "" {
		c, err := model.ParseContext(f.context)
		if err != nil {
			return store.Filter{}, err
		}
		filter.Context = c
	}
	if f.project != "" {
		p, err := resolveProject(cfg.Projects, f.project)
		if err != nil {
			return store.Filter{}, err
		}
		filter.Project = p
	}
	return filter, nil
}

func (f *agendaFilter) apply(sess *session.Session, today civil.Date) (pending, completed []model.Task, err error) {
	filter, err := f.resolve(sess.Config())
	if err != nil {
		return nil, nil, err
	}
	pending, completed = sess.Agenda(filter, today)
	return store.AtLeast(pending, f.minTier.tier), completed, nil
}

// tierFlag parses an urgency tier by name or semaphore label.
type tierFlag struct {
	tier urgency.Tier
}

func (f *tierFlag) String() string { return f.tier.String() }

func (f *tierFlag) Set(s string) error { return f.tier.UnmarshalText([]byte(s)) }

func (f *tierFlag) Type() string { return "tier" }
