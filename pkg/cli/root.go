// Package cli is the smartflow command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/civil"
	"github.com/harrisonrobin/smartflow/pkg/config"
	"github.com/harrisonrobin/smartflow/pkg/mail"
	"github.com/harrisonrobin/smartflow/pkg/model"
	"github.com/harrisonrobin/smartflow/pkg/session"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// app carries what every command needs. Tests replace now and newFetcher.
type app struct {
	cfgPath    string
	now        func() time.Time
	newFetcher func(ctx context.Context, cfg *config.Config) (mail.Fetcher, error)
}

func newApp() *app {
	return &app{
		now:        time.Now,
		newFetcher: session.NewFetcher,
	}
}

func (a *app) today() civil.Date {
	return civil.DateOf(a.now())
}

// Execute runs the root command against os.Args.
func Execute() error {
	return newRootCmd(newApp()).Execute()
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "smartflow",
		Short: "Triage next actions and inbound demands by urgency",
		Long: `smartflow keeps a GTD agenda of next actions for one session.
Unread demands are captured from IMAP or Gmail and every pending action is
ranked by urgency tier, priority and due date.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// A missing .env is fine; secrets may come from the environment.
			_ = godotenv.Load()
		},
	}
	cmd.PersistentFlags().StringVarP(&a.cfgPath, "config", "c", a.cfgPath, "config file (default is $HOME/.config/smartflow/config.json)")

	cmd.AddCommand(
		newAgendaCmd(a),
		newExportCmd(a),
		newShellCmd(a),
		newAuthCmd(a),
		newConfigCmd(a),
	)
	return cmd
}

// sessionFlags are shared by the commands that open a session.
type sessionFlags struct {
	seed   bool
	source string
}

func (f *sessionFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.seed, "seed", false, "start with the example actions")
	cmd.Flags().StringVar(&f.source, "source", "", "mail source: none, imap or gmail (overrides config)")
}

// openSession loads the config, builds the fetcher and seeds the session
// when asked.
func (a *app) openSession(ctx context.Context, f sessionFlags) (*session.Session, error) {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return nil, err
	}
	if f.source != "" {
		cfg.Source = f.source
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	fetcher, err := a.newFetcher(ctx, cfg)
	if err != nil {
		return nil, err
	}

	source := model.SourceManual
	if cfg.Source != config.SourceNone {
		source = cfg.Source
	}
	sess := session.New(cfg, fetcher, source)
	if f.seed {
		sess.Seed(a.today())
	}
	return sess, nil
}

// sync fetches demands into sess. A failed fetch is reported and the
// command carries on with what the session already holds.
func (a *app) sync(ctx context.Context, w io.Writer, sess *session.Session) {
	if sess.Config().Source == config.SourceNone {
		return
	}
	res, err := sess.Sync(ctx, a.today())
	if err != nil {
		fmt.Fprintf(w, "Warning: could not fetch demands: %v\n", err)
		return
	}
	fmt.Fprintf(w, "Inbox: %s\n", res)
}
