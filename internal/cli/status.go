package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check API availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := apiClient.Health(context.Background()); err != nil {
				return fmt.Errorf("API unreachable: %w", err)
			}
			fmt.Println("API is up")
			return nil
		},
	}
}
