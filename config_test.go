package flaudit_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/absmach/flaudit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	cases := []struct {
		desc    string
		content string
		want    flaudit.Config
		err     bool
	}{
		{
			desc: "full config",
			content: `
[dashboard]
name = "brave-turing"
ledger_path = "/var/lib/flaudit/ledger.json"
explorer_template = "https://etherscan.io/tx/%s"

[mqtt]
address = "tcp://localhost:1883"
client_id = "c1"
client_key = "secret"
topic = "m/domain/c/channel/flaudit"
`,
			want: flaudit.Config{
				Dashboard: flaudit.DashboardConfig{
					Name:             "brave-turing",
					LedgerPath:       "/var/lib/flaudit/ledger.json",
					ExplorerTemplate: "https://etherscan.io/tx/%s",
				},
				MQTT: flaudit.MQTTConfig{
					Address:   "tcp://localhost:1883",
					ClientID:  "c1",
					ClientKey: "secret",
					Topic:     "m/domain/c/channel/flaudit",
				},
			},
		},
		{
			desc:    "dashboard only",
			content: "[dashboard]\nname = \"solo\"\n",
			want:    flaudit.Config{Dashboard: flaudit.DashboardConfig{Name: "solo"}},
		},
		{
			desc:    "broker without client id",
			content: "[mqtt]\naddress = \"tcp://localhost:1883\"\n",
			err:     true,
		},
		{
			desc:    "invalid toml",
			content: "[dashboard\nname = ",
			err:     true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "config.toml")
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0o600))

			cfg, err := flaudit.LoadConfig(path)
			if tc.err {
				assert.Error(t, err)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, *cfg)
		})
	}
}

func TestLoadConfigIfExists(t *testing.T) {
	t.Parallel()

	cfg, err := flaudit.LoadConfigIfExists(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, flaudit.Config{}, *cfg)

	_, err = flaudit.LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestSaveConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := flaudit.Config{
		Dashboard: flaudit.DashboardConfig{Name: "brave-turing", LedgerPath: "data/ledger.json"},
		MQTT:      flaudit.MQTTConfig{Address: "tcp://localhost:1883", ClientID: "c1", Topic: "flaudit"},
	}

	require.NoError(t, flaudit.SaveConfig(path, cfg))

	loaded, err := flaudit.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, *loaded)

	err = flaudit.SaveConfig(path, flaudit.Config{MQTT: flaudit.MQTTConfig{Address: "tcp://localhost:1883"}})
	assert.ErrorIs(t, err, flaudit.ErrMissingClientID)
}
