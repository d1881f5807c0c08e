package terminal_test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/absmach/flaudit/dashboard"
	"github.com/absmach/flaudit/pkg/ledger"
	"github.com/absmach/flaudit/pkg/render/terminal"
	"github.com/absmach/flaudit/pkg/view"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	pterm.DisableStyling()
	os.Exit(m.Run())
}

func frameOf(records []ledger.RoundRecord, focus int) dashboard.Frame {
	table := ledger.Reshape(records)

	return dashboard.Frame{
		Settings: dashboard.Settings{
			AutoRefresh: true,
			Window:      50,
			FocusRound:  focus,
			LastReset:   time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC),
		},
		Table:       table,
		View:        view.Build(table, view.Options{FocusRound: focus}),
		GeneratedAt: time.Date(2025, 5, 1, 9, 0, 1, 0, time.UTC),
	}
}

func TestRender(t *testing.T) {
	records := []ledger.RoundRecord{
		{
			Round:          1,
			Timestamp:      "2025-05-01T09:00:00.000001",
			GlobalAccuracy: 0.50,
			IPFSHash:       "QmT5NvUtoM5nWFfrQdVrFtvGfKFmG7AHE8P34isapyhCxX",
			NodeAccuracies: ledger.NodeAccuracies{{Node: "s1", Accuracy: 0.5}},
			Notes:          "warmup",
		},
		{
			Round:          2,
			Timestamp:      "2025-05-01T09:05:00.000001",
			GlobalAccuracy: 0.62,
			IPFSHash:       "QmZ4tDuvesekSs4qM5ZBKpXiZGun7S2CYtEZRB3DYXkjGx",
			BlockTx:        "0x008a3e1d2c4b5a69788796a5b4c3d2e1f0a1b2c3d4e5f60718293a4b5a25722a",
			NodeAccuracies: ledger.NodeAccuracies{{Node: "s1", Accuracy: 0.60}, {Node: "s2", Accuracy: 0.64}},
		},
	}

	cases := []struct {
		desc     string
		frame    dashboard.Frame
		contains []string
		excludes []string
	}{
		{
			desc:  "empty ledger",
			frame: frameOf(nil, 10),
			contains: []string{
				"Federated Learning Audit Dashboard",
				view.NoticeNoRounds,
			},
			excludes: []string{"Training Round Details"},
		},
		{
			desc:  "populated ledger with missing focus round",
			frame: frameOf(records, 10),
			contains: []string{
				"Auto-refresh: live",
				"62.00%",
				"+12.00%",
				"09:05:00",
				"Round 10 data not yet available in the ledger.",
				"QmT5NvUt...sapyhCxX",
				"0x008a3e...5a25722a",
				"warmup",
				"Store_A",
				"Store_B",
				"https://sepolia.etherscan.io/tx/0x008a3e",
			},
		},
		{
			desc:  "focus round with node data",
			frame: frameOf(records, 2),
			contains: []string{
				"Node Performance (Round 2)",
				"Store_A",
				"Store_B",
			},
			excludes: []string{"not yet available"},
		},
		{
			desc:  "latest round without transaction",
			frame: frameOf(records[:1], 1),
			contains: []string{
				view.NoticeNoTransaction,
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			out, err := terminal.Render(tc.frame)
			require.NoError(t, err)
			for _, s := range tc.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tc.excludes {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestRenderPaused(t *testing.T) {
	frame := frameOf(nil, 10)
	frame.Settings.AutoRefresh = false

	out, err := terminal.Render(frame)
	require.NoError(t, err)
	assert.Contains(t, out, "Auto-refresh: paused")
}

func TestStaticDisplay(t *testing.T) {
	var out strings.Builder
	static := terminal.NewStatic(&out)

	require.NoError(t, static.Display(context.Background(), frameOf(nil, 10)))
	assert.Contains(t, out.String(), view.NoticeNoRounds)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, static.Display(ctx, frameOf(nil, 10)), context.Canceled)
}
