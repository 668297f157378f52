// Package cli is the console's command line: it loads the configuration,
// wires the application and exposes the controllers as cobra commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"

	"github.com/usermgmt/admin-console/internal/infrastructure/config"
	"github.com/usermgmt/admin-console/pkg/logger"
)

// runtime is the state shared by the commands of one invocation.
type runtime struct {
	lookuper envconfig.Lookuper
	app      *App
	notes    *printer
}

// Option customises the root command.
type Option func(*runtime)

// WithLookuper reads configuration from l instead of the process environment.
func WithLookuper(l envconfig.Lookuper) Option {
	return func(rt *runtime) { rt.lookuper = l }
}

// newRootCommand builds the console command tree. The application is wired
// before any subcommand runs; the caller releases it with rt.stop.
func newRootCommand(opts ...Option) (*cobra.Command, *runtime) {
	rt := &runtime{lookuper: envconfig.OsLookuper()}
	for _, opt := range opts {
		opt(rt)
	}

	root := &cobra.Command{
		Use:           "console",
		Short:         "User management console",
		Long:          `Admin console for the user-management backend: sessions, users and profile images.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return rt.start(cmd.Context(), cmd.OutOrStdout())
		},
	}

	root.AddCommand(
		newServeCommand(rt),
		newLoginCommand(rt),
		newRegisterCommand(rt),
		newLogoutCommand(rt),
		newStatusCommand(rt),
		newUsersCommand(rt),
	)
	return root, rt
}

// Run executes the console with args, writing command output to out.
func Run(ctx context.Context, args []string, out io.Writer, opts ...Option) error {
	root, rt := newRootCommand(opts...)
	root.SetArgs(args)
	root.SetOut(out)

	err := root.ExecuteContext(ctx)
	if stopErr := rt.stop(ctx); err == nil {
		err = stopErr
	}
	return err
}

// Execute runs the console with the process arguments and exits non-zero on
// failure.
func Execute() {
	if err := Run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func (rt *runtime) start(ctx context.Context, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.LoadFrom(ctx, rt.lookuper)
	if err != nil {
		return err
	}

	logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.IsDevelopment(),
	})

	rt.notes = newPrinter(out)
	app, err := NewApp(ctx, cfg, rt.notes)
	if err != nil {
		return err
	}
	rt.app = app
	return nil
}

func (rt *runtime) stop(ctx context.Context) error {
	if rt.app == nil {
		return nil
	}
	err := rt.app.Close(ctx)
	rt.app = nil
	return err
}
