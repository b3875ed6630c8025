package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewListCommand creates the list command.
func NewListCommand(opts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the latest version of each entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, a, err := opts.session(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			rows, err := a.Dictionary.ListEntries(ctx, limit)
			if err != nil {
				return err
			}

			if opts.Format != "text" {
				return encode(cmd.OutOrStdout(), opts.Format, rows)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "VERSION\t#\tSTATUS\tLANG\tSENSES\tTEXT")
			for _, r := range rows {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%d\t%s\n",
					r.VersionID, r.Number, r.Status, r.Language, r.SenseCount, r.Text)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of entries (0: configured export limit)")
	return cmd
}
