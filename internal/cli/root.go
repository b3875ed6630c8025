// Package cli implements the entitymap command line.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/heartmarshall/entitymap/internal/app"
	"github.com/heartmarshall/entitymap/internal/config"
	"github.com/heartmarshall/entitymap/pkg/ctxutil"
)

// RootOptions holds global flags and the application factory shared by all
// commands.
type RootOptions struct {
	Config string
	User   string
	Format string // "text" | "json" | "yaml"

	// Open wires the application. Commands call it lazily so that --help
	// never touches the database.
	Open func(ctx context.Context) (*app.App, error)
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml"}

// NewRootCommand creates the root command wired to PostgreSQL.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	opts.Open = func(ctx context.Context) (*app.App, error) { return openApp(ctx, opts.Config) }
	return NewRootCommandWith(opts)
}

// NewRootCommandWith creates the root command with the given options.
func NewRootCommandWith(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entitymap",
		Short: "entitymap - dictionary entries through the translation engine",
		Long: `Translate dictionary entries between their transfer form and the
persisted entity graph: import and save them, preview the staged
operations, export and list them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.Config, "config", "c", "", "config file (default $CONFIG_PATH or ./config.yaml)")
	cmd.PersistentFlags().StringVarP(&opts.User, "user", "u", os.Getenv("ENTITYMAP_USER"), "acting user id (env ENTITYMAP_USER)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSaveCommand(opts))
	cmd.AddCommand(NewPlanCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

// session opens the application and a context acting as the --user.
func (o *RootOptions) session(ctx context.Context) (context.Context, *app.App, error) {
	if o.User == "" {
		return nil, nil, fmt.Errorf("no user: pass --user or set ENTITYMAP_USER")
	}
	userID, err := uuid.Parse(o.User)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid user id %q: %w", o.User, err)
	}

	a, err := o.Open(ctx)
	if err != nil {
		return nil, nil, err
	}

	ctx = ctxutil.WithUserID(ctx, userID)
	ctx = ctxutil.WithRequestID(ctx, uuid.NewString())
	return ctx, a, nil
}

func loadConfig(path string) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	return cfg, app.NewLogger(os.Stderr, cfg.Log), nil
}

func openApp(ctx context.Context, path string) (*app.App, error) {
	cfg, logger, err := loadConfig(path)
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg, logger)
}
