package main

import (
	"log"
	"time"

	"github.com/absmach/flaudit/cli"
	"github.com/absmach/flaudit/pkg/sdk"
	"github.com/spf13/cobra"
)

const defTimeout = 10 * time.Second

func main() {
	var (
		dashboardURL    string
		tlsVerification bool
	)

	rootCmd := &cobra.Command{
		Use:   "flaudit",
		Short: "Federated learning audit dashboard",
		Long:  `flaudit renders the round ledger written by a federated learning aggregator as a live dashboard.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			cli.SetSDK(sdk.NewSDK(sdk.Config{
				DashboardURL:    dashboardURL,
				TLSVerification: tlsVerification,
				Timeout:         defTimeout,
			}))
		},
	}
	rootCmd.PersistentFlags().StringVarP(&dashboardURL, "url", "u", cli.DefDashboardURL, "Dashboard API URL")
	rootCmd.PersistentFlags().BoolVar(&tlsVerification, "tls-verification", true, "Verify the dashboard TLS certificate")

	rootCmd.AddCommand(
		cli.NewServeCmd(),
		cli.NewSnapshotCmd(),
		cli.NewInitCmd(),
		cli.NewSettingsCmd(),
		cli.NewRefreshCmd(),
		cli.NewFrameCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
