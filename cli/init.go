package cli

import (
	"errors"
	"os"

	"github.com/0x6flab/namegenerator"
	"github.com/absmach/flaudit"
	"github.com/absmach/flaudit/pkg/view"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var errAborted = errors.New("config was not saved")

var (
	nonInteractive bool
	force          bool
)

// defaultConfig is what init writes when every prompt is accepted as is.
func defaultConfig() flaudit.Config {
	return flaudit.Config{
		Dashboard: flaudit.DashboardConfig{
			Name:             namegenerator.NewGenerator().Generate(),
			LedgerPath:       "data/ledger.json",
			ExplorerTemplate: view.DefExplorerTemplate,
		},
		MQTT: flaudit.MQTTConfig{
			Topic: "flaudit",
		},
	}
}

func configForm(cfg *flaudit.Config, confirm *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Dashboard name").
				Value(&cfg.Dashboard.Name),
			huh.NewInput().
				Title("Ledger path").
				Description("JSON ledger written by the aggregator").
				Value(&cfg.Dashboard.LedgerPath),
			huh.NewInput().
				Title("Explorer template").
				Description("Transaction URL, %s is replaced by the hash").
				Value(&cfg.Dashboard.ExplorerTemplate),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("MQTT broker address").
				Description("Leave empty to disable MQTT").
				Placeholder("tcp://localhost:1883").
				Value(&cfg.MQTT.Address),
			huh.NewInput().
				Title("MQTT client ID").
				Value(&cfg.MQTT.ClientID),
			huh.NewInput().
				Title("MQTT client key").
				EchoMode(huh.EchoModePassword).
				Value(&cfg.MQTT.ClientKey),
			huh.NewInput().
				Title("MQTT base topic").
				Value(&cfg.MQTT.Topic),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Write configuration?").
				Value(confirm),
		),
	)
}

func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a config file",
		Long: `Write the TOML config file read by serve and snapshot.

Examples:
  flaudit init
  flaudit init /etc/flaudit/config.toml --yes`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) > 1 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}
			path := flaudit.DefConfigPath
			if len(args) == 1 {
				path = args[0]
			}

			if !force {
				if _, err := os.Stat(path); err == nil {
					logErrorCmd(*cmd, errors.New("config file already exists, use --force to overwrite"))

					return
				}
			}

			cfg := defaultConfig()
			if !nonInteractive {
				confirm := true
				if err := configForm(&cfg, &confirm).Run(); err != nil {
					logErrorCmd(*cmd, err)

					return
				}
				if !confirm {
					logErrorCmd(*cmd, errAborted)

					return
				}
			}

			if err := flaudit.SaveConfig(path, cfg); err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logSuccessCmd(*cmd, "Successfully wrote "+path)
			logJSONCmd(*cmd, cfg)
		},
	}

	cmd.Flags().BoolVarP(&nonInteractive, "yes", "y", false, "Accept the defaults without prompting")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	return cmd
}
