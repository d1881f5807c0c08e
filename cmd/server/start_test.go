package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/absmach/flaudit/cmd/server"
	"github.com/absmach/flaudit/pkg/ledger"
	"github.com/absmach/flaudit/pkg/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ledgerDoc = `[
  {"round": 2, "timestamp": "2025-05-01T09:05:00.000001", "global_accuracy": 0.62,
   "ipfs_hash": "QmZ4tDuvesekSs4qM5ZBKpXiZGun7S2CYtEZRB3DYXkjGx", "block_tx": "0xbeef",
   "node_accuracies": {"s1": 0.6, "s2": 0.64}},
  {"round": 1, "timestamp": "2025-05-01T09:00:00.000001", "global_accuracy": 0.5,
   "ipfs_hash": "QmT5NvUtoM5nWFfrQdVrFtvGfKFmG7AHE8P34isapyhCxX", "block_tx": "",
   "node_accuracies": {"s1": 0.5}, "notes": "warmup"}
]`

func testConfig(ledgerPath string) server.Config {
	return server.Config{
		LogLevel:        "debug",
		LedgerPath:      ledgerPath,
		RetryDelay:      10 * time.Millisecond,
		CacheTTL:        time.Second,
		RefreshInterval: 20 * time.Millisecond,
		AutoRefresh:     true,
		Window:          50,
		FocusRound:      10,
		HTTPHost:        "127.0.0.1",
		HTTPPort:        "0",
		InstanceID:      "test",
	}
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeLedger(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "ledger.json")
	require.NoError(t, os.WriteFile(path, []byte(ledgerDoc), 0o600))

	return path
}

func TestSnapshotJSON(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	err := server.Snapshot(context.Background(), testConfig(writeLedger(t)), server.FormatJSON, &out, discard())
	require.NoError(t, err)

	var frame struct {
		Table []map[string]any `json:"table"`
		View  view.View        `json:"view"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &frame))
	require.Len(t, frame.Table, 2)
	assert.InDelta(t, 1, frame.Table[0][ledger.ColRound], 1e-9)
	assert.Equal(t, "+12.00%", frame.View.KPIs.AccuracyDelta)
	assert.Equal(t, 2, frame.View.KPIs.ActiveNodes)
}

func TestSnapshotTerminal(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	err := server.Snapshot(context.Background(), testConfig(writeLedger(t)), server.FormatTerminal, &out, discard())
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Training Round Details")
	assert.Contains(t, out.String(), "warmup")
}

func TestSnapshotMissingLedger(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	cfg := testConfig(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, server.Snapshot(context.Background(), cfg, server.FormatTerminal, &out, discard()))
	assert.Contains(t, out.String(), view.NoticeNoRounds)
}

func TestSnapshotErrors(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	err := server.Snapshot(context.Background(), testConfig(writeLedger(t)), "yaml", &out, discard())
	assert.ErrorIs(t, err, server.ErrUnknownFormat)

	err = server.Snapshot(context.Background(), testConfig(""), server.FormatJSON, &out, discard())
	assert.ErrorIs(t, err, ledger.ErrEmptyPath)
}

func TestStartStopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- server.Start(ctx, testConfig(writeLedger(t)), discard())
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	cfg := server.Config{LogLevel: "debug", LogFile: filepath.Join(t.TempDir(), "flaudit.log")}
	logger, closer, err := server.NewLogger(cfg)
	require.NoError(t, err)
	logger.Info("hello")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(cfg.LogFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)

	_, _, err = server.NewLogger(server.Config{LogLevel: "loud"})
	assert.Error(t, err)
}
