package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tradepulse/backend/pkg/client"
)

var (
	cfgFile      string
	outputFormat string
	serverURL    string
	apiClient    *client.Client
)

var rootCmd = &cobra.Command{
	Use:   "tradepulse",
	Short: "TradePulse CLI - trading signals subscription service",
	Long: `TradePulse CLI provides command-line access to the TradePulse backend
for managing your subscription, checking trading statistics, and
inspecting payments.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Config and login commands work without stored credentials
		if cmd.Parent() != nil && cmd.Parent().Name() == "config" {
			return nil
		}
		switch cmd.Name() {
		case "login", "register", "status", "plans", "overview":
			return initClient()
		}
		return initAuthenticatedClient()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.tradepulse/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "output format: table, json, yaml")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "server URL (overrides config)")

	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("server_url", rootCmd.PersistentFlags().Lookup("server"))

	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newSubscriptionCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newPaymentCmd())
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return
		}
		configDir := home + "/.tradepulse"
		_ = os.MkdirAll(configDir, 0700)
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("TRADEPULSE")
	viper.AutomaticEnv()

	viper.SetDefault("server_url", "http://localhost:8080")
	viper.SetDefault("output", "table")

	_ = viper.ReadInConfig()
}

func initClient() error {
	url := viper.GetString("server_url")
	if serverURL != "" {
		url = serverURL
	}

	apiClient = client.NewClient(client.Config{
		BaseURL: url,
	})
	return nil
}

func initAuthenticatedClient() error {
	if err := initClient(); err != nil {
		return err
	}

	token := viper.GetString("auth.token")
	if token == "" {
		return fmt.Errorf("not authenticated. Run 'tradepulse auth login' first")
	}

	apiClient.SetToken(token)
	return nil
}

func getOutputFormat() string {
	if outputFormat != "" && outputFormat != "table" {
		return outputFormat
	}
	return viper.GetString("output")
}
