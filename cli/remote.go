package cli

import (
	"errors"
	"strconv"

	"github.com/absmach/flaudit/dashboard"
	"github.com/absmach/flaudit/pkg/sdk"
	"github.com/spf13/cobra"
)

const DefDashboardURL = "http://localhost:9099"

var errNoChange = errors.New("nothing to update, set at least one flag")

var fsdk sdk.SDK

// SetSDK sets the client used by the commands that talk to a running dashboard.
func SetSDK(s sdk.SDK) {
	fsdk = s
}

func NewSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings [get|set]",
		Short: "Dashboard settings",
		Long:  `View or change the settings of a running dashboard.`,
	}

	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Get settings",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 0 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			s, err := fsdk.Settings(cmd.Context())
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, s)
		},
	}

	setCmd := &cobra.Command{
		Use:   "set [--auto-refresh=<bool>] [--window=<n>] [--focus-round=<n>]",
		Short: "Update settings",
		Long: `Update settings. Flags that are not given keep their value.

Examples:
  # Pause the live refresh
  flaudit settings set --auto-refresh=false

  # Show the last 20 rounds and focus on round 12
  flaudit settings set --window 20 --focus-round 12`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 0 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			patch, err := patchFromFlags(cmd)
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}

			s, err := fsdk.UpdateSettings(cmd.Context(), patch)
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, s)
		},
	}
	setCmd.Flags().String("auto-refresh", "", "Enable or disable the live refresh")
	setCmd.Flags().Int("window", 0, "Number of trailing rounds to show")
	setCmd.Flags().Int("focus-round", 0, "Round shown in the node performance view")

	cmd.AddCommand(getCmd, setCmd)

	return cmd
}

func patchFromFlags(cmd *cobra.Command) (dashboard.SettingsPatch, error) {
	var patch dashboard.SettingsPatch
	flags := cmd.Flags()

	if flags.Changed("auto-refresh") {
		raw, _ := flags.GetString("auto-refresh")
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return dashboard.SettingsPatch{}, err
		}
		patch.AutoRefresh = &v
	}
	if flags.Changed("window") {
		v, _ := flags.GetInt("window")
		patch.Window = &v
	}
	if flags.Changed("focus-round") {
		v, _ := flags.GetInt("focus-round")
		patch.FocusRound = &v
	}

	if patch.AutoRefresh == nil && patch.Window == nil && patch.FocusRound == nil {
		return dashboard.SettingsPatch{}, errNoChange
	}

	return patch, patch.Validate()
}

func NewRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Force a refresh",
		Long:  `Drop the cached ledger of a running dashboard and render a new frame.`,
		Run: func(cmd *cobra.Command, _ []string) {
			s, err := fsdk.Refresh(cmd.Context())
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logSuccessCmd(*cmd, "Refresh requested at "+s.LastReset.Format("15:04:05"))
		},
	}
}

func NewFrameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "frame",
		Short: "Print the current frame",
		Long:  `Fetch the current frame of a running dashboard and print it as JSON.`,
		Run: func(cmd *cobra.Command, _ []string) {
			f, err := fsdk.Frame(cmd.Context())
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, f)
		},
	}
}
