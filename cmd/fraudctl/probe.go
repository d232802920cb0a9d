package main

import (
	"fmt"
	"runtime"

	"github.com/okian/fraudboard/internal/probe"
	"github.com/spf13/cobra"
)

func probeCmd() *cobra.Command {
	cfg := &probe.Config{}
	var logFile string

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Submit generated transactions to a running dashboard",
		Long: `Generate random transactions and post them concurrently to the
dashboard's /api/predict. Reports ok, failed, superseded, alert and
rate-limited counts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			closer, err := probe.SetupLogging(logFile, cfg.Verbose)
			if err != nil {
				return err
			}
			defer func() { _ = closer.Close() }()

			stats, err := probe.Run(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "submitted %d: ok %d, failed %d, superseded %d, alerts %d, rate limited %d\n",
				stats.Submitted, stats.OK, stats.Failed, stats.Superseded, stats.Alerts, stats.RateLimited)
			return nil
		},
	}

	cmd.Flags().StringVarP(&cfg.BaseURL, "url", "u", probe.DefaultBaseURL, "Base URL of the dashboard")
	cmd.Flags().IntVarP(&cfg.Requests, "requests", "n", probe.DefaultRequests, "Number of transactions to submit")
	cmd.Flags().IntVarP(&cfg.Workers, "workers", "w", runtime.NumCPU(), "Number of concurrent workers")
	cmd.Flags().DurationVar(&cfg.Timeout, "timeout", probe.DefaultTimeout, "HTTP request timeout")
	cmd.Flags().DurationVar(&cfg.Wait, "wait", 0, "Retry the health check for up to this long")
	cmd.Flags().Float64Var(&cfg.FraudRatio, "fraud-ratio", probe.DefaultFraudRatio, "Share of suspicious transactions (0..1)")
	cmd.Flags().StringVarP(&cfg.OutputFile, "output", "o", "", "Write generated transactions to this JSON file")
	cmd.Flags().StringVar(&logFile, "log", "", "Also write logs to this file")
	cmd.Flags().BoolVarP(&cfg.Verbose, "verbose", "v", false, "Log every response")

	return cmd
}
