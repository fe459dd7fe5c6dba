// Package pipeline provides the commands driving the reconciliation
// pipeline: import, match, merge, report and run.
package pipeline

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mieux-choisir/foodmap"
	"github.com/mieux-choisir/foodmap/internal/appcontext"
	"github.com/mieux-choisir/foodmap/internal/cmd/output"
	"github.com/mieux-choisir/foodmap/pkg/errors"
	"github.com/mieux-choisir/foodmap/pkg/logging"
)

// NewCommands creates the pipeline commands with app dependencies.
func NewCommands(app appcontext.Interface) []*cobra.Command {
	return []*cobra.Command{
		NewImportCommand(app),
		NewMatchCommand(app),
		NewMergeCommand(app),
		NewReportCommand(app),
		NewRunCommand(app),
	}
}

// commandContext returns the command context carrying the app logger.
func commandContext(cmd *cobra.Command, app appcontext.Interface) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return logging.WithLogger(ctx, app.Logger())
}

// getClient returns the app client.
func getClient(app appcontext.Interface, opts ...foodmap.Option) (foodmap.Client, error) {
	var (
		c   foodmap.Client
		err error
	)
	if len(opts) > 0 {
		c, err = app.ClientWithOptions(opts...)
	} else {
		c, err = app.Client()
	}
	if err != nil {
		return nil, errors.WrapResource("get", "client", "", err)
	}
	if c == nil {
		return nil, errors.NewConfigError("client", "no client available", nil)
	}
	return c, nil
}

// render writes full in the structured formats and view in the table and
// text formats.
func render(cmd *cobra.Command, app appcontext.Interface, full, view any) error {
	format := output.DetectFormat(app.OutputFormat())
	data := full
	if format == output.FormatTable || format == output.FormatText {
		data = view
	}
	return output.Write(cmd.OutOrStdout(), string(format), data)
}
