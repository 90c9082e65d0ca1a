package client_test

import (
	"context"
	"fmt"
	"log"

	"github.com/tradepulse/backend/pkg/client"
)

// Example demonstrates basic usage of the TradePulse client
func Example() {
	c := client.NewClient(client.Config{
		BaseURL: "https://api.tradepulse.app",
	})

	ctx := context.Background()

	resp, err := c.Login(ctx, "user@example.com", "password")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Logged in as: %s\n", resp.User.Email)

	sub, err := c.Subscriptions().Current(ctx)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Current tier: %s\n", sub.Tier)
}

// ExampleStatsService_GlobalOverview shows the public track record,
// which needs no authentication.
func ExampleStatsService_GlobalOverview() {
	c := client.NewClient(client.Config{
		BaseURL: "https://api.tradepulse.app",
	})

	overview, err := c.Stats().GlobalOverview(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Win rate: %.1f%% over %d trades\n", overview.WinRate*100, overview.Total)
}

// ExamplePaymentService_CreateInvoice starts a checkout for a paid tier
func ExamplePaymentService_CreateInvoice() {
	c := client.NewClient(client.Config{
		BaseURL: "https://api.tradepulse.app",
	})

	if _, err := c.Login(context.Background(), "user@example.com", "password"); err != nil {
		log.Fatal(err)
	}

	p, err := c.Payments().CreateInvoice(context.Background(), "PREMIUM", "stripe")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Pay at: %s\n", p.CheckoutURL)
}

// ExampleTradeService_Record ingests a closed trade using the service
// API key instead of a user token.
func ExampleTradeService_Record() {
	c := client.NewClient(client.Config{
		BaseURL: "https://api.tradepulse.app",
		APIKey:  "service-key",
	})

	t, err := c.Trades().Record(context.Background(), client.RecordTradeRequest{
		UserID:    42,
		Origin:    "signal",
		Result:    "win",
		ProfitPct: 3.5,
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Recorded trade %d\n", t.ID)
}
