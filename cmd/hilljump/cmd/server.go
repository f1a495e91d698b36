package cmd

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Manage the DRIP API server",
	Long: `Manage the DRIP API server process.

Examples:
  go run ./cmd/hilljump server start    # Start the API server
  go run ./cmd/hilljump server stop     # Stop a running API server`,
}

var serverStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the API server",
	Long:  `Starts the DRIP API server. Press Ctrl+C to stop.`,
	RunE:  runServerStart,
}

var serverStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the API server",
	Long:  `Stops a running DRIP API server.`,
	RunE:  runServerStop,
}

func init() {
	serverCmd.AddCommand(serverStartCmd)
	serverCmd.AddCommand(serverStopCmd)
}

func runServerStart(cmd *cobra.Command, args []string) error {
	killExistingServer()

	fmt.Println("Starting DRIP API server...")

	apiCmd := exec.Command("go", "run", "./cmd/api")
	apiCmd.Stdout = os.Stdout
	apiCmd.Stderr = os.Stderr
	apiCmd.Env = os.Environ()

	if err := apiCmd.Start(); err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	fmt.Println("API server running (port 8090 by default)")
	fmt.Println("Press Ctrl+C to stop")

	<-sigCh
	fmt.Println("\nShutdown signal received, stopping server...")

	if err := apiCmd.Process.Kill(); err != nil {
		fmt.Printf("Failed to stop API server: %v\n", err)
	}

	fmt.Println("API server stopped")
	return nil
}

func runServerStop(cmd *cobra.Command, args []string) error {
	fmt.Println("Stopping DRIP API server...")

	killExistingServer()

	fmt.Println("API server stopped")
	return nil
}

// killExistingServer terminates any running API server processes
func killExistingServer() {
	patterns := []string{"cmd/api", "hilljump server start"}

	for _, pattern := range patterns {
		cmd := exec.Command("pgrep", "-f", pattern)
		var out bytes.Buffer
		cmd.Stdout = &out

		if err := cmd.Run(); err != nil {
			continue // no matching process
		}

		pids := strings.TrimSpace(out.String())
		if pids == "" {
			continue
		}

		currentPID := os.Getpid()
		for _, pidStr := range strings.Split(pids, "\n") {
			pidStr = strings.TrimSpace(pidStr)
			if pidStr == "" {
				continue
			}

			pid, err := strconv.Atoi(pidStr)
			if err != nil {
				continue
			}

			// Skip the current process and its parent
			if pid == currentPID || pid == os.Getppid() {
				continue
			}

			if proc, err := os.FindProcess(pid); err == nil {
				fmt.Printf("Stopping existing server process (PID: %d)\n", pid)
				proc.Signal(syscall.SIGTERM)

				go func(p *os.Process) {
					exec.Command("sleep", "0.1").Run()
					p.Signal(syscall.SIGKILL)
				}(proc)
			}
		}
	}

	// Give the port a moment to free up
	exec.Command("sleep", "0.5").Run()
}
