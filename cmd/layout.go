package cmd

import (
	"fmt"
	"os"

	"github.com/TFMV/notegraph/ingest"
	"github.com/TFMV/notegraph/render"
	"github.com/TFMV/notegraph/ui"
	"github.com/spf13/cobra"
)

func layoutCmd(root *rootOptions) *cobra.Command {
	var (
		dataPath  string
		format    string
		output    string
		maxTicks  int
		timestamp bool
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Settle a graph headlessly and write the final positions",
		Example: "  notegraph layout --data notes.json --format dot --output notes.dot\n" +
			"  notegraph layout --data notes.db --format ascii",
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer, err := render.GetRenderer(format)
			if err != nil {
				return err
			}

			g, err := ingest.LoadFile(dataPath)
			if err != nil {
				return err
			}

			simOpts, err := root.simulationOptions()
			if err != nil {
				return err
			}

			opts := render.NewDefaultOptions(format)
			opts.Timestamp = timestamp
			opts.MaxTicks = root.cfg.Layout.MaxTicks
			if maxTicks > 0 {
				opts.MaxTicks = maxTicks
			}

			l, err := render.Settle(cmd.Context(), g, opts.MaxTicks, simOpts...)
			if err != nil {
				return err
			}

			out, err := renderer.Render(l, opts)
			if err != nil {
				return fmt.Errorf("rendering failed: %w", err)
			}

			if output == "" || output == "-" {
				if _, err := cmd.OutOrStdout().Write(out); err != nil {
					return err
				}
			} else if err := os.WriteFile(output, out, 0o644); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}

			w := cmd.ErrOrStderr()
			ui.Banner(w, "layout")
			ui.Field(w, "graph", g.Name)
			ui.Field(w, "nodes", len(l.Nodes))
			ui.Field(w, "edges", len(l.ResolvedEdges()))
			ui.Field(w, "ticks", l.Tick)
			ui.Field(w, "converged", ui.StatusIcon(l.Converged))
			if output != "" && output != "-" {
				ui.Field(w, "output", output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "Snapshot file (.json, .csv, .db)")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json, dot, ascii")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (stdout when empty)")
	cmd.Flags().IntVar(&maxTicks, "max-ticks", 0, "Tick cap (config layout.max_ticks when 0)")
	cmd.Flags().BoolVar(&timestamp, "timestamp", false, "Stamp the output with the render time")
	_ = cmd.MarkFlagRequired("data")

	return cmd
}
