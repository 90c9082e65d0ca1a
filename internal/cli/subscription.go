package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newSubscriptionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "subscription",
		Aliases: []string{"sub"},
		Short:   "Manage your subscription",
	}

	cmd.AddCommand(newSubPlansCmd())
	cmd.AddCommand(newSubCurrentCmd())
	cmd.AddCommand(newSubUpgradeCmd())
	cmd.AddCommand(newSubDowngradeCmd())
	cmd.AddCommand(newSubCancelCmd())

	return cmd
}

func newSubPlansCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plans",
		Short: "List available plans",
		RunE: func(cmd *cobra.Command, args []string) error {
			plans, err := apiClient.Subscriptions().Plans(context.Background())
			if err != nil {
				return err
			}

			if getOutputFormat() != "table" {
				return printOutput(plans)
			}

			t := NewTable("TIER", "PRICE/MONTH", "REQUESTS/MIN")
			for _, p := range plans {
				t.AddRow(p.Tier, formatCents(p.MonthlyPriceCents), strconv.Itoa(p.RequestsPerMinute))
			}
			t.Render()
			return nil
		},
	}
}

func newSubCurrentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show your current subscription",
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := apiClient.Subscriptions().Current(context.Background())
			if err != nil {
				return err
			}

			if getOutputFormat() != "table" {
				return printOutput(sub)
			}

			fmt.Printf("Tier:       %s\n", sub.Tier)
			fmt.Printf("Status:     %s\n", sub.Status)
			if sub.ExpiresAt != nil {
				fmt.Printf("Expires:    %s\n", sub.ExpiresAt.Format("2006-01-02"))
			}
			fmt.Printf("Auto-renew: %t\n", sub.AutoRenew)
			if sub.PendingTier != "" {
				fmt.Printf("Pending:    %s at period end\n", sub.PendingTier)
			}
			return nil
		},
	}
}

func newSubUpgradeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upgrade <tier>",
		Short: "Upgrade to a higher tier immediately",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tier := strings.ToUpper(args[0])
			sub, err := apiClient.Subscriptions().Upgrade(context.Background(), tier)
			if err != nil {
				return err
			}

			fmt.Printf("Upgraded to %s", sub.Tier)
			if sub.ExpiresAt != nil {
				fmt.Printf(", active until %s", sub.ExpiresAt.Format("2006-01-02"))
			}
			fmt.Println()
			return nil
		},
	}
}

func newSubDowngradeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "downgrade <tier>",
		Short: "Switch to a lower tier at period end",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tier := strings.ToUpper(args[0])
			sub, err := apiClient.Subscriptions().Downgrade(context.Background(), tier)
			if err != nil {
				return err
			}

			fmt.Printf("Will switch to %s when the current period ends\n", sub.PendingTier)
			return nil
		},
	}
}

func newSubCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel",
		Short: "Turn off auto-renewal",
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := apiClient.Subscriptions().Cancel(context.Background())
			if err != nil {
				return err
			}

			if sub.ExpiresAt != nil {
				fmt.Printf("Auto-renewal off. Access until %s\n", sub.ExpiresAt.Format("2006-01-02"))
			} else {
				fmt.Println("Auto-renewal off")
			}
			return nil
		},
	}
}
