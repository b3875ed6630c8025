package cli

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewExportCommand creates the export command.
func NewExportCommand(opts *RootOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export [version-id...]",
		Short: "Export entries as transfer objects",
		Long: `Export the named entry versions, or the latest version of every
entry of the user when no id is given. The output can be fed back to import.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]uuid.UUID, 0, len(args))
			for _, arg := range args {
				id, err := uuid.Parse(arg)
				if err != nil {
					return fmt.Errorf("invalid version id %q: %w", arg, err)
				}
				ids = append(ids, id)
			}

			ctx, a, err := opts.session(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Dictionary.ExportEntries(ctx, ids)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}
			return encode(w, opts.Format, res.Items)
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "write to file instead of stdout")
	return cmd
}
