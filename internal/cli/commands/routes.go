package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/devis-portal/gateway/internal/config"
	"github.com/devis-portal/gateway/internal/proxy"
)

// NewRoutesCmd creates the routes command
func NewRoutesCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Print the effective proxy route table",
		RunE: func(cmd *cobra.Command, args []string) error {
			backendURL := ""
			if file == "" {
				cfg, err := config.Load()
				if err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}
				file = cfg.Backend.RoutesFile
				backendURL = cfg.Backend.URL
			}
			return runRoutes(cmd.OutOrStdout(), file, backendURL)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Route table YAML (defaults to ROUTES_FILE, then built-in routes)")

	return cmd
}

func runRoutes(out io.Writer, file, backendURL string) error {
	routes := proxy.DefaultRoutes()
	source := "built-in"
	if file != "" {
		loaded, err := proxy.LoadRoutes(file, proxy.NewValidator())
		if err != nil {
			return err
		}
		routes = loaded
		source = file
	}

	if backendURL != "" {
		fmt.Fprintf(out, "Routes (%s) -> %s:\n\n", source, backendURL)
	} else {
		fmt.Fprintf(out, "Routes (%s):\n\n", source)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tMETHOD\tPATH\tUPSTREAM\tAUTH\tBODY")
	fmt.Fprintln(w, "────\t──────\t────\t────────\t────\t────")

	for _, r := range routes {
		body := r.Body
		if body == "" {
			body = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\t%s\n",
			r.Name,
			r.Method,
			r.Path,
			r.Upstream,
			r.Auth,
			body,
		)
	}

	return w.Flush()
}
