package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tradepulse/backend/pkg/client"
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Trading statistics",
	}

	cmd.AddCommand(newStatsOverviewCmd())
	cmd.AddCommand(newStatsMineCmd())
	cmd.AddCommand(newStatsOriginsCmd())

	return cmd
}

func newStatsOverviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "overview",
		Short: "Public track record over all trades",
		RunE: func(cmd *cobra.Command, args []string) error {
			overview, err := apiClient.Stats().GlobalOverview(context.Background())
			if err != nil {
				return err
			}
			return renderOverview(overview)
		},
	}
}

func newStatsMineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "Your personal trading overview",
		RunE: func(cmd *cobra.Command, args []string) error {
			overview, err := apiClient.Stats().MyOverview(context.Background())
			if err != nil {
				return err
			}
			return renderOverview(overview)
		},
	}
}

func newStatsOriginsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "origins",
		Short: "Your overview split into signal and manual trades",
		RunE: func(cmd *cobra.Command, args []string) error {
			breakdown, err := apiClient.Stats().MyOrigins(context.Background())
			if err != nil {
				return err
			}

			if getOutputFormat() != "table" {
				return printOutput(breakdown)
			}

			t := NewTable("ORIGIN", "TRADES", "WIN RATE", "PROFIT FACTOR", "NET %")
			for _, row := range []struct {
				name string
				o    client.Overview
			}{
				{"signal", breakdown.Signal},
				{"manual", breakdown.Manual},
			} {
				t.AddRow(
					row.name,
					strconv.Itoa(row.o.Total),
					formatPct(row.o.WinRate),
					fmt.Sprintf("%.2f", row.o.ProfitFactor),
					fmt.Sprintf("%+.2f", row.o.NetProfitPct),
				)
			}
			t.Render()
			return nil
		},
	}
}

func renderOverview(o *client.Overview) error {
	if getOutputFormat() != "table" {
		return printOutput(o)
	}

	fmt.Printf("Trades:        %d (%dW / %dL / %dB)\n", o.Total, o.Wins, o.Losses, o.Breakevens)
	fmt.Printf("Win rate:      %s (Wilson low %s)\n", formatPct(o.WinRate), formatPct(o.WilsonLow))
	if o.NoLosses {
		fmt.Printf("Profit factor: n/a (no losing trades)\n")
	} else {
		fmt.Printf("Profit factor: %.2f\n", o.ProfitFactor)
	}
	fmt.Printf("Expectancy:    %+.2f%% per trade\n", o.Expectancy)
	fmt.Printf("Net profit:    %+.2f%%\n", o.NetProfitPct)
	fmt.Printf("Best/Worst:    %+.2f%% / %+.2f%%\n", o.BestPct, o.WorstPct)
	fmt.Printf("Streaks:       %d wins, %d losses\n", o.LongestWinRun, o.LongestLossRun)
	return nil
}
