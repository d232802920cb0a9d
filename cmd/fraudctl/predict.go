package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/fraudboard/internal/adapters/render"
	"github.com/okian/fraudboard/internal/adapters/scoring"
	"github.com/okian/fraudboard/internal/domain/cycle"
	"github.com/okian/fraudboard/internal/domain/feature"
	"github.com/okian/fraudboard/pkg/logger"
	"github.com/spf13/cobra"
)

func predictCmd() *cobra.Command {
	var (
		url      string
		timeout  time.Duration
		policy   string
		alertAt  float64
		features []string
		amount   string
		txTime   string
	)

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Run one prediction cycle against the scoring service",
		Long: `Send one transaction straight to the scoring service and paint the
result in the terminal. Components default to 0 and are set with
--set V<n>=<value>, e.g. --set V3=-1.2 --set V14=-4.5.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := logger.InitWithOptions(logger.Options{Level: "warn", Output: cmd.ErrOrStderr()}); err != nil {
				return err
			}

			in := feature.DefaultInput()
			in.Time = feature.Value(txTime)
			in.Amount = feature.Value(amount)
			for _, kv := range features {
				name, value, ok := strings.Cut(kv, "=")
				if !ok || name == "" {
					return fmt.Errorf("invalid --set %q, want NAME=VALUE", kv)
				}
				if err := in.Set(name, feature.Value(value)); err != nil {
					return err
				}
			}

			p, err := cycle.ParsePolicy(policy)
			if err != nil {
				return err
			}
			client, err := scoring.NewClient(url, scoring.WithTimeout(timeout))
			if err != nil {
				return err
			}
			c := cycle.New(client, cycle.WithInputPolicy(p), cycle.WithAlertLevel(alertAt))

			ctx := cmd.Context()
			start := time.Now()
			result, _ := c.Run(ctx, in, cycle.NewState(0))
			result.LatencyMS = time.Since(start).Milliseconds()

			if err := (render.Terminal{W: cmd.OutOrStdout()}).Render(ctx, result); err != nil {
				return err
			}
			if !result.OK {
				return fmt.Errorf("prediction failed: %s", result.FailureKind)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&url, "url", "u", scoring.DefaultURL, "Scoring service prediction endpoint")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Exchange timeout (0 waits indefinitely)")
	cmd.Flags().StringVar(&policy, "input-policy", string(cycle.PolicyReject), "Non-numeric input policy (reject, passthrough)")
	cmd.Flags().Float64Var(&alertAt, "alert-threshold", 80, "Risk score above which alert mode activates")
	cmd.Flags().StringVarP(&amount, "amount", "a", "0", "Transaction amount")
	cmd.Flags().StringVarP(&txTime, "time", "t", "0", "Transaction time")
	cmd.Flags().StringArrayVar(&features, "set", nil, "Set a component, e.g. V7=0.25 (repeatable)")

	return cmd
}
