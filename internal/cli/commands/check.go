package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/devis-portal/gateway/internal/config"
	"github.com/devis-portal/gateway/internal/probe"
)

// NewCheckCmd creates the check command
func NewCheckCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Probe the backend API once",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return runCheck(cmd.Context(), cmd.OutOrStdout(), cfg.Backend.URL, cfg.Probe.Path, timeout)
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "Probe timeout")

	return cmd
}

func runCheck(ctx context.Context, out io.Writer, backendURL, path string, timeout time.Duration) error {
	if ctx == nil {
		ctx = context.Background()
	}

	p := probe.New(backendURL, path, timeout, nil, zerolog.Nop())
	status := p.Check(ctx)

	if !status.Up {
		if status.Error != "" {
			return fmt.Errorf("backend %s is down: %s", backendURL+path, status.Error)
		}
		return fmt.Errorf("backend %s is down: status %d", backendURL+path, status.StatusCode)
	}

	fmt.Fprintf(out, "✓ Backend %s is up (status %d)\n", backendURL+path, status.StatusCode)
	return nil
}
