package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/entitymap/internal/service/dictionary"
)

// NewImportCommand creates the import command.
func NewImportCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <entries-file>",
		Short: "Import a list of entries from a JSON or YAML file",
		Long: `Import entries in chunks, one transaction per chunk. Entries whose
text already exists for the user are skipped; failed entries are reported
with their position in the file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := readEntries(args[0])
			if err != nil {
				return err
			}

			ctx, a, err := opts.session(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Dictionary.ImportEntries(ctx, dictionary.ImportInput{Items: items})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if opts.Format != "text" {
				return encode(w, opts.Format, res)
			}
			for _, e := range res.Errors {
				fmt.Fprintf(w, "line %d %q: %s\n", e.LineNumber, e.Text, e.Reason)
			}
			_, err = fmt.Fprintf(w, "imported %d, updated %d, skipped %d\n", res.Imported, res.Updated, res.Skipped)
			return err
		},
	}
}
