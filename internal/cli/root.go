package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/devis-portal/gateway/internal/cli/commands"
)

var version = "dev" // Will be set during build

var rootCmd = &cobra.Command{
	Use:   "devisctl",
	Short: "devisctl - operate the devis portal gateway",
	Long: `devisctl inspects the gateway's configuration without starting it.

It reads the same environment (.env, .env.local, BACKEND_URL, ROUTES_FILE...)
as the gateway server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "devisctl version %s\n", version)
		},
	})

	rootCmd.AddCommand(commands.NewRoutesCmd())
	rootCmd.AddCommand(commands.NewCheckCmd())
}

// Execute runs the root command
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
