package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "eyelhekaya",
		Short: "Score and rank story ideas from news, video and search-interest signals",
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")

	root.AddCommand(discoverCmd())
	root.AddCommand(rescoreCmd())
	root.AddCommand(pickCmd())
	root.AddCommand(refreshCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(runCmd())

	return root
}

func discoverCmd() *cobra.Command {
	var (
		format     string
		windowDays int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Discover ranked story candidates for today",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiscover(format, windowDays, jsonOutput)
		},
	}

	cmd.Flags().StringVar(&format, "format", "long", "production format: long or short")
	cmd.Flags().IntVar(&windowDays, "window-days", 0, "recency window in days (default: from config)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func rescoreCmd() *cobra.Command {
	var (
		input      string
		maxResults int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "rescore",
		Short: "Re-rank an existing story list against fresh trend signals",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRescore(input, maxResults, jsonOutput)
		},
	}

	cmd.Flags().StringVar(&input, "input", "-", "story list JSON file (- for stdin)")
	cmd.Flags().IntVar(&maxResults, "max-results", 0, "max stories to return (default: from config)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func pickCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Pick one candidate, weighted by score",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPick()
		},
	}
	return cmd
}

func refreshCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Drop today's cached discovery results",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRefresh()
		},
	}
	return cmd
}

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "server port (default: from config)")
	return cmd
}

func runCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start daemon with cache pre-warm scheduler and HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "server port (default: from config)")
	return cmd
}
