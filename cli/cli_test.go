package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/absmach/flaudit"
	"github.com/absmach/flaudit/cli"
	"github.com/absmach/flaudit/cmd/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ledgerDoc = `[{"round": 1, "timestamp": "2025-05-01T09:00:00.000001", "global_accuracy": 0.5,
"ipfs_hash": "QmT5NvUtoM5nWFfrQdVrFtvGfKFmG7AHE8P34isapyhCxX", "block_tx": "0xbeef",
"node_accuracies": {"s1": 0.5}}]`

func TestLoadServerConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	require.NoError(t, flaudit.SaveConfig(cfgPath, flaudit.Config{
		Dashboard: flaudit.DashboardConfig{Name: "from-file", LedgerPath: "file.json"},
		MQTT:      flaudit.MQTTConfig{Address: "tcp://broker:1883", ClientID: "c1", Topic: "file/topic"},
	}))

	t.Setenv("FLAUDIT_CONFIG", cfgPath)
	t.Setenv("FLAUDIT_MQTT_TOPIC", "env/topic")
	t.Setenv("FLAUDIT_WINDOW", "25")

	cmd := cli.NewServeCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--focus-round", "3", "--no-auto-refresh"}))

	cfg, err := cli.LoadServerConfig(cmd)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.Name)
	assert.Equal(t, "file.json", cfg.LedgerPath)
	assert.Equal(t, "tcp://broker:1883", cfg.MQTTAddress)
	assert.Equal(t, "c1", cfg.MQTTClientID)
	assert.Equal(t, "env/topic", cfg.MQTTTopic)
	assert.Equal(t, 25, cfg.Window)
	assert.Equal(t, 3, cfg.FocusRound)
	assert.False(t, cfg.AutoRefresh)
	assert.True(t, cfg.Terminal)
	assert.NotEmpty(t, cfg.InstanceID)
}

func TestLoadServerConfigDefaults(t *testing.T) {
	t.Setenv("FLAUDIT_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := cli.LoadServerConfig(cli.NewSnapshotCmd())
	require.NoError(t, err)

	assert.Equal(t, "data/ledger.json", cfg.LedgerPath)
	assert.Equal(t, 50, cfg.Window)
	assert.Equal(t, 10, cfg.FocusRound)
	assert.True(t, cfg.AutoRefresh)
	assert.Equal(t, "9099", cfg.HTTPPort)
	assert.NotEmpty(t, cfg.Name)
}

func TestSnapshotCmd(t *testing.T) {
	dir := t.TempDir()
	ledgerPath := filepath.Join(dir, "ledger.json")
	require.NoError(t, os.WriteFile(ledgerPath, []byte(ledgerDoc), 0o600))
	t.Setenv("FLAUDIT_CONFIG", filepath.Join(dir, "missing.toml"))
	t.Setenv("FLAUDIT_LOG_LEVEL", "error")

	var out bytes.Buffer
	cmd := cli.NewSnapshotCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--ledger", ledgerPath, "--format", server.FormatJSON})
	require.NoError(t, cmd.Execute())

	var frame map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &frame))
	assert.Contains(t, frame, "view")
	assert.Contains(t, frame, "table")
}

func TestInitCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	var out, errOut bytes.Buffer
	cmd := cli.NewInitCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{path, "--yes"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Successfully wrote "+path)

	cfg, err := flaudit.LoadConfig(path)
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.Dashboard.Name)
	assert.Equal(t, "data/ledger.json", cfg.Dashboard.LedgerPath)
	assert.Equal(t, "flaudit", cfg.MQTT.Topic)

	again := cli.NewInitCmd()
	again.SetOut(&out)
	again.SetErr(&errOut)
	again.SetArgs([]string{path, "--yes"})
	require.NoError(t, again.Execute())
	assert.Contains(t, errOut.String(), "already exists")
}
