// Package cmd - hilljump CLI commands
package cmd

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "hilljump",
	Short: "Hilljump DRIP Engine - CLI",
	Long: `Hilljump DRIP Engine - CLI

Usage:
    go run ./cmd/hilljump [command]

Commands:
    server      start/stop    - DRIP API Server (Port 8090)
    compute                   - Run the DRIP batch over all active tickers
`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(computeCmd)
}

// initConfig reads in config file and ENV variables if set
func initConfig() error {
	if err := godotenv.Load(); err != nil {
		// Missing .env is fine; environment variables still apply
		if verbose {
			fmt.Println("Warning: .env file not found, using environment variables")
		}
	}

	return nil
}
