package cli

import (
	"fmt"
	"io"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/heartmarshall/entitymap/internal/mapping"
	"github.com/heartmarshall/entitymap/internal/service/dictionary"
)

// NewSaveCommand creates the save command.
func NewSaveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "save <entry-file>",
		Short: "Save one entry from a JSON or YAML file",
		Long: `Save one entry. Without a version_id the entry is created with its
first version; with one, that version is updated in place.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := readEntry(args[0])
			if err != nil {
				return err
			}

			ctx, a, err := opts.session(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Dictionary.SaveEntry(ctx, in)
			if err != nil {
				return err
			}

			if opts.Format != "text" {
				return encode(cmd.OutOrStdout(), opts.Format, res)
			}
			verb := "updated"
			if res.Created {
				verb = "created"
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s entry %s version %s (#%d): %d inserted, %d updated, %d deleted\n",
				verb, res.EntryID, res.VersionID, res.Number, res.Inserted, res.Updated, res.Deleted)
			return err
		},
	}
}

// NewPlanCommand creates the plan command.
func NewPlanCommand(opts *RootOptions) *cobra.Command {
	var dump bool

	cmd := &cobra.Command{
		Use:   "plan <entry-file>",
		Short: "Show the operations saving an entry would stage",
		Long: `Translate one entry exactly as save does and print the staged
operations in flush order. Nothing is committed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := readEntry(args[0])
			if err != nil {
				return err
			}

			ctx, a, err := opts.session(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			plan, err := a.Dictionary.PlanEntry(ctx, in)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			switch {
			case dump:
				spew.Fdump(w, plan.Ops)
				return nil
			case opts.Format != "text":
				return encode(w, opts.Format, planView(plan))
			}
			return writePlan(w, plan)
		},
	}

	cmd.Flags().BoolVar(&dump, "dump", false, "dump the staged entities in full")
	return cmd
}

type opView struct {
	Action string `json:"action" yaml:"action"`
	Kind   string `json:"kind" yaml:"kind"`
	ID     string `json:"id" yaml:"id"`
}

type planJSON struct {
	EntryID   string   `json:"entry_id" yaml:"entry_id"`
	VersionID string   `json:"version_id" yaml:"version_id"`
	Created   bool     `json:"created" yaml:"created"`
	Ops       []opView `json:"ops" yaml:"ops"`
}

func planView(p *dictionary.Plan) planJSON {
	out := planJSON{
		EntryID:   p.EntryID.String(),
		VersionID: p.VersionID.String(),
		Created:   p.Created,
		Ops:       make([]opView, 0, len(p.Ops)),
	}
	for _, op := range p.Ops {
		out.Ops = append(out.Ops, viewOp(op))
	}
	return out
}

func viewOp(op mapping.Op) opView {
	return opView{
		Action: op.Action.String(),
		Kind:   op.Entity.EntityKind(),
		ID:     op.Entity.EntityID().String(),
	}
}

func writePlan(w io.Writer, p *dictionary.Plan) error {
	for _, op := range p.Ops {
		v := viewOp(op)
		if _, err := fmt.Fprintf(w, "%-7s %-14s %s\n", v.Action, v.Kind, v.ID); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%d operation(s)\n", len(p.Ops))
	return err
}
