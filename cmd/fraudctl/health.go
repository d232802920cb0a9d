package main

import (
	"fmt"
	"time"

	"github.com/okian/fraudboard/internal/adapters/scoring"
	"github.com/spf13/cobra"
)

const defaultHealthTimeout = 5 * time.Second

func healthCmd() *cobra.Command {
	var (
		url     string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check the scoring service health endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := scoring.NewClient(url, scoring.WithTimeout(timeout))
			if err != nil {
				return err
			}
			if err := client.Health(cmd.Context()); err != nil {
				return fmt.Errorf("%s: %w", client.HealthURL(), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: healthy\n", client.HealthURL())
			return nil
		},
	}

	cmd.Flags().StringVarP(&url, "url", "u", scoring.DefaultURL, "Scoring service prediction endpoint")
	cmd.Flags().DurationVar(&timeout, "timeout", defaultHealthTimeout, "Request timeout")

	return cmd
}
