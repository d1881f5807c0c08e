package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/0x6flab/namegenerator"
	"github.com/absmach/flaudit"
	"github.com/absmach/flaudit/cmd/server"
	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	configPath  string
	ledgerPath  string
	window      int
	focusRound  int
	noAuto      bool
	noTerminal  bool
	httpPort    string
	snapshotFmt string
)

// LoadServerConfig resolves settings from, lowest to highest precedence,
// struct defaults, the TOML file, FLAUDIT_* variables and command flags.
func LoadServerConfig(cmd *cobra.Command) (server.Config, error) {
	cfg := server.Config{}
	if err := env.Parse(&cfg); err != nil {
		return server.Config{}, err
	}

	if cmd.Flags().Changed("config") {
		cfg.ConfigPath = configPath
	}
	file, err := flaudit.LoadConfigIfExists(cfg.ConfigPath)
	if err != nil {
		return server.Config{}, err
	}
	mergeFile(&cfg, *file)

	flags := cmd.Flags()
	if flags.Changed("ledger") {
		cfg.LedgerPath = ledgerPath
	}
	if flags.Changed("window") {
		cfg.Window = window
	}
	if flags.Changed("focus-round") {
		cfg.FocusRound = focusRound
	}
	if flags.Changed("no-auto-refresh") {
		cfg.AutoRefresh = !noAuto
	}
	if flags.Changed("no-terminal") {
		cfg.Terminal = !noTerminal
	}
	if flags.Changed("port") {
		cfg.HTTPPort = httpPort
	}

	if cfg.InstanceID == "" {
		cfg.InstanceID = uuid.NewString()
	}
	if cfg.Name == "" {
		cfg.Name = namegenerator.NewGenerator().Generate()
	}

	return cfg, nil
}

// mergeFile fills values from the config file that the environment left unset.
func mergeFile(cfg *server.Config, file flaudit.Config) {
	fill := func(dst *string, key, value string) {
		if value == "" {
			return
		}
		if _, ok := os.LookupEnv(key); ok {
			return
		}
		*dst = value
	}

	fill(&cfg.Name, "FLAUDIT_NAME", file.Dashboard.Name)
	fill(&cfg.LedgerPath, "FLAUDIT_LEDGER_PATH", file.Dashboard.LedgerPath)
	fill(&cfg.ExplorerTemplate, "FLAUDIT_EXPLORER_TEMPLATE", file.Dashboard.ExplorerTemplate)
	fill(&cfg.MQTTAddress, "FLAUDIT_MQTT_ADDRESS", file.MQTT.Address)
	fill(&cfg.MQTTClientID, "FLAUDIT_MQTT_CLIENT_ID", file.MQTT.ClientID)
	fill(&cfg.MQTTClientKey, "FLAUDIT_MQTT_CLIENT_KEY", file.MQTT.ClientKey)
	fill(&cfg.MQTTTopic, "FLAUDIT_MQTT_TOPIC", file.MQTT.Topic)
}

func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&configPath, "config", "c", flaudit.DefConfigPath, "TOML config file")
	cmd.Flags().StringVarP(&ledgerPath, "ledger", "l", "", "Ledger document path")
	cmd.Flags().IntVarP(&window, "window", "w", 0, "Number of trailing rounds to show")
	cmd.Flags().IntVarP(&focusRound, "focus-round", "r", 0, "Round shown in the node performance view")
}

func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the live dashboard",
		Long: `Run the live dashboard: the poll loop, the terminal view, the HTTP API and,
when a broker is configured, the MQTT frame publisher and control topic.

Examples:
  # Serve the default ledger with a 20 round window
  flaudit serve --window 20

  # Headless, API only
  flaudit serve --no-terminal --port 9099`,
		Run: func(cmd *cobra.Command, _ []string) {
			cfg, err := LoadServerConfig(cmd)
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}

			logger, closer, err := server.NewLogger(cfg)
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			defer closer.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := server.Start(ctx, cfg, logger); err != nil {
				logErrorCmd(*cmd, err)
			}
		},
	}

	addPipelineFlags(cmd)
	cmd.Flags().BoolVar(&noAuto, "no-auto-refresh", false, "Render a single frame and keep serving the API")
	cmd.Flags().BoolVar(&noTerminal, "no-terminal", false, "Disable the terminal display")
	cmd.Flags().StringVarP(&httpPort, "port", "p", "", "HTTP port")

	return cmd
}

func NewSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Render the dashboard once",
		Long: `Render a single frame of the dashboard and exit.

Examples:
  flaudit snapshot
  flaudit snapshot --format json --window 5`,
		Run: func(cmd *cobra.Command, _ []string) {
			cfg, err := LoadServerConfig(cmd)
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}

			logger, closer, err := server.NewLogger(cfg)
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			defer closer.Close()

			if err := server.Snapshot(cmd.Context(), cfg, snapshotFmt, cmd.OutOrStdout(), logger); err != nil {
				logErrorCmd(*cmd, err)
			}
		},
	}

	addPipelineFlags(cmd)
	cmd.Flags().StringVarP(&snapshotFmt, "format", "f", server.FormatTerminal, "Output format: terminal or json")

	return cmd
}
