package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newPaymentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "payment",
		Aliases: []string{"pay"},
		Short:   "Payments and invoices",
	}

	cmd.AddCommand(newPaymentListCmd())
	cmd.AddCommand(newPaymentInvoiceCmd())

	return cmd
}

func newPaymentListCmd() *cobra.Command {
	var page, pageSize int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your payments",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := apiClient.Payments().List(context.Background(), page, pageSize)
			if err != nil {
				return err
			}

			if getOutputFormat() != "table" {
				return printOutput(result)
			}

			t := NewTable("ID", "AMOUNT", "STATUS", "PROVIDER", "CREATED")
			for _, p := range result.Data {
				t.AddRow(
					p.ID,
					formatCents(p.AmountCents),
					p.Status,
					p.Provider,
					p.CreatedAt.Format("2006-01-02"),
				)
			}
			t.Render()
			fmt.Printf("\nPage %d of %d (%d payments)\n", result.Page, result.TotalPages, result.TotalItems)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 20, "page size")

	return cmd
}

func newPaymentInvoiceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "invoice <tier>",
		Short: "Create a checkout for a paid tier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tier := strings.ToUpper(args[0])
			p, err := apiClient.Payments().CreateInvoice(context.Background(), tier, "stripe")
			if err != nil {
				return err
			}

			fmt.Printf("Invoice %s for %s created\n", p.ID, formatCents(p.AmountCents))
			if p.CheckoutURL != "" {
				fmt.Printf("Pay at: %s\n", p.CheckoutURL)
			}
			return nil
		},
	}
}
