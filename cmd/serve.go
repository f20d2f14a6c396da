package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/TFMV/notegraph/ingest"
	"github.com/TFMV/notegraph/models"
	"github.com/TFMV/notegraph/server"
	"github.com/TFMV/notegraph/ui"
	"github.com/spf13/cobra"
)

func serveCmd(root *rootOptions) *cobra.Command {
	var (
		dataPath string
		dbPath   string
		host     string
		port     int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Host a live layout simulation over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, err := loadSnapshot(ctx, dataPath, dbPath)
			if err != nil {
				return err
			}

			srv, err := root.newServer(g, host, port)
			if err != nil {
				return err
			}

			w := cmd.ErrOrStderr()
			ui.Banner(w, "serve")
			ui.Field(w, "graph", g.Name)
			ui.Field(w, "nodes", len(g.Nodes))
			ui.Field(w, "session", srv.Session())
			ui.Field(w, "listen", ui.Info.Sprintf("http://%s:%d", root.cfg.Server.Host, root.cfg.Server.Port))

			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "Snapshot file (.json, .csv, .db)")
	cmd.Flags().StringVar(&dbPath, "db", "", "Notes SQLite database")
	cmd.Flags().StringVar(&host, "host", "", "Listen host (config server.host when empty)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Listen port (config server.port when 0)")
	cmd.MarkFlagsMutuallyExclusive("data", "db")

	return cmd
}

// loadSnapshot reads the initial graph from a file or a notes database.
func loadSnapshot(ctx context.Context, dataPath, dbPath string) (*models.Graph, error) {
	switch {
	case dbPath != "":
		src, err := ingest.OpenSQLite(dbPath)
		if err != nil {
			return nil, err
		}
		defer src.Close()
		return src.Load(ctx)
	case dataPath != "":
		return ingest.LoadFile(dataPath)
	default:
		return nil, errors.New("one of --data or --db is required")
	}
}

// newServer builds the HTTP host from the config, with flag overrides.
func (o *rootOptions) newServer(g *models.Graph, host string, port int) (*server.Server, error) {
	if host != "" {
		o.cfg.Server.Host = host
	}
	if port > 0 {
		o.cfg.Server.Port = port
	}

	simOpts, err := o.simulationOptions()
	if err != nil {
		return nil, err
	}
	startDelay, err := o.cfg.StartDelay()
	if err != nil {
		return nil, err
	}
	settleDelay, err := o.cfg.SettleDelay()
	if err != nil {
		return nil, err
	}

	return server.New(g, server.Config{
		Host:        o.cfg.Server.Host,
		Port:        o.cfg.Server.Port,
		StartDelay:  startDelay,
		SettleDelay: settleDelay,
		DebugMode:   o.debug,
	}, simOpts...), nil
}
