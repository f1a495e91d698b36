package cmd

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
)

var computeCmd = &cobra.Command{
	Use:   "compute",
	Short: "Run the DRIP batch job",
	Long: `Runs a one-shot DRIP batch over all active tickers and exits.

Examples:
  go run ./cmd/hilljump compute`,
	RunE: runCompute,
}

func runCompute(cmd *cobra.Command, args []string) error {
	fmt.Println("Running DRIP batch...")

	batchCmd := exec.Command("go", "run", "./cmd/compute-drip")
	batchCmd.Stdout = os.Stdout
	batchCmd.Stderr = os.Stderr
	batchCmd.Env = os.Environ()

	if err := batchCmd.Run(); err != nil {
		return fmt.Errorf("batch run failed: %w", err)
	}

	fmt.Println("DRIP batch completed")
	return nil
}
