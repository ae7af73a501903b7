package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/harrisonrobin/smartflow/pkg/export"
	"github.com/harrisonrobin/smartflow/pkg/model"
	"github.com/harrisonrobin/smartflow/pkg/session"
	"github.com/spf13/cobra"
)

const (
	formatCSV  = "csv"
	formatJSON = "json"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		sf     sessionFlags
		out    string
		format string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every task of the session as CSV or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.openSession(cmd.Context(), sf)
			if err != nil {
				return err
			}
			a.sync(cmd.Context(), cmd.ErrOrStderr(), sess)
			return a.export(cmd.OutOrStdout(), sess, out, format)
		},
	}
	sf.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output file, - for stdout")
	cmd.Flags().StringVarP(&format, "format", "f", formatCSV, "output format: csv or json")
	return cmd
}

func writerFor(format string) (func(io.Writer, []model.Task) error, error) {
	switch format {
	case formatCSV, "":
		return export.WriteCSV, nil
	case formatJSON:
		return export.WriteJSON, nil
	default:
		return nil, fmt.Errorf("unknown export format %q, expected csv or json", format)
	}
}

// export writes the session snapshot to path, or to stdout when path is "-".
func (a *app) export(stdout io.Writer, sess *session.Session, path, format string) error {
	write, err := writerFor(format)
	if err != nil {
		return err
	}
	tasks := sess.Snapshot(a.today())
	if path == "" || path == "-" {
		return write(stdout, tasks)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f, tasks); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Exported %d tasks to %s\n", len(tasks), path)
	return nil
}
