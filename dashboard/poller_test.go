package dashboard_test

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/absmach/flaudit/dashboard"
	dmocks "github.com/absmach/flaudit/dashboard/mocks"
	"github.com/absmach/flaudit/pkg/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var errDisplay = errors.New("display unavailable")

type recordingDisplay struct {
	frames chan dashboard.Frame
	calls  atomic.Int32
	fail   bool
	panics bool
}

func newRecordingDisplay() *recordingDisplay {
	return &recordingDisplay{frames: make(chan dashboard.Frame, 64)}
}

func (d *recordingDisplay) Display(_ context.Context, frame dashboard.Frame) error {
	n := d.calls.Add(1)
	select {
	case d.frames <- frame:
	default:
	}
	if d.panics && n == 1 {
		panic("renderer blew up")
	}
	if d.fail {
		return errDisplay
	}

	return nil
}

func (d *recordingDisplay) await(t *testing.T) dashboard.Frame {
	t.Helper()

	select {
	case f := <-d.frames:
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a frame")

		return dashboard.Frame{}
	}
}

func newPollerService(t *testing.T, autoRefresh bool) (dashboard.Service, *dashboard.State) {
	t.Helper()

	svc, _, state := newService(t, e2eRecords(), dashboard.Settings{AutoRefresh: autoRefresh})

	return svc, state
}

func TestNewPollerRequiresDisplay(t *testing.T) {
	t.Parallel()

	svc, state := newPollerService(t, true)
	_, err := dashboard.NewPoller(svc, state, time.Second, slog.Default())
	assert.ErrorIs(t, err, dashboard.ErrNoDisplay)
}

func TestPollerIdleRendersOnce(t *testing.T) {
	t.Parallel()

	svc, state := newPollerService(t, false)
	display := dmocks.NewDisplay(t)
	display.On("Display", mock.Anything, mock.MatchedBy(func(f dashboard.Frame) bool {
		return f.Table.Len() == 2
	})).Return(nil).Once()

	p, err := dashboard.NewPoller(svc, state, time.Millisecond, slog.Default(), display)
	require.NoError(t, err)

	assert.NoError(t, p.Run(context.Background()))
}

func TestPollerIdleReturnsAndResumes(t *testing.T) {
	t.Parallel()

	svc, state := newPollerService(t, false)
	display := newRecordingDisplay()

	p, err := dashboard.NewPoller(svc, state, 5*time.Millisecond, slog.Default(), display)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("idle poller did not return after one render")
	}
	assert.Equal(t, int32(1), display.calls.Load())

	awaited := make(chan error, 1)
	go func() { awaited <- p.AwaitActive(ctx) }()

	window := 1
	_, err = state.Apply(dashboard.SettingsPatch{Window: &window})
	require.NoError(t, err)
	select {
	case <-awaited:
		t.Fatal("non toggle change must not wake an idle poller")
	case <-time.After(20 * time.Millisecond):
	}

	on := true
	_, err = state.Apply(dashboard.SettingsPatch{AutoRefresh: &on})
	require.NoError(t, err)
	select {
	case err := <-awaited:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not wake when auto refresh was enabled")
	}

	go func() { _ = p.Run(ctx) }()
	display.await(t)
	f := display.await(t)
	assert.True(t, f.Settings.AutoRefresh)
	display.await(t)
}

func TestPollerAwaitActiveCancelled(t *testing.T) {
	t.Parallel()

	svc, state := newPollerService(t, false)
	p, err := dashboard.NewPoller(svc, state, time.Second, slog.Default(), newRecordingDisplay())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, p.AwaitActive(ctx), context.Canceled)
}

func TestPollerActiveUntilCancelled(t *testing.T) {
	t.Parallel()

	svc, state := newPollerService(t, true)
	display := newRecordingDisplay()

	p, err := dashboard.NewPoller(svc, state, 5*time.Millisecond, slog.Default(), display)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	for range 3 {
		f := display.await(t)
		assert.Equal(t, 2, f.Table.Len())
	}
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop on cancel")
	}
}

func TestPollerSurvivesDisplayFailures(t *testing.T) {
	t.Parallel()

	cases := []struct {
		desc    string
		display *recordingDisplay
	}{
		{desc: "display returns error", display: &recordingDisplay{frames: make(chan dashboard.Frame, 64), fail: true}},
		{desc: "display panics", display: &recordingDisplay{frames: make(chan dashboard.Frame, 64), panics: true}},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()

			svc, state := newPollerService(t, true)
			p, err := dashboard.NewPoller(svc, state, 5*time.Millisecond, slog.Default(), tc.display)
			require.NoError(t, err)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go func() { _ = p.Run(ctx) }()

			tc.display.await(t)
			tc.display.await(t)
			tc.display.await(t)
		})
	}
}

func TestPollerRendersOnSettingsChange(t *testing.T) {
	t.Parallel()

	svc, state := newPollerService(t, true)
	display := newRecordingDisplay()

	p, err := dashboard.NewPoller(svc, state, time.Hour, slog.Default(), display)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = p.Run(ctx) }()

	display.await(t)

	window := 1
	_, err = state.Apply(dashboard.SettingsPatch{Window: &window})
	require.NoError(t, err)

	f := display.await(t)
	assert.Equal(t, 1, f.Table.Len())
	assert.Equal(t, 1, f.Settings.Window)
}

func TestPollerPausedWhenToggledOff(t *testing.T) {
	t.Parallel()

	svc, state := newPollerService(t, true)
	display := newRecordingDisplay()

	p, err := dashboard.NewPoller(svc, state, 5*time.Millisecond, slog.Default(), display)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = p.Run(ctx) }()

	display.await(t)

	off := false
	_, err = state.Apply(dashboard.SettingsPatch{AutoRefresh: &off})
	require.NoError(t, err)

	for f := display.await(t); f.Settings.AutoRefresh; f = display.await(t) {
	}
	time.Sleep(20 * time.Millisecond)

	paused := display.calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, paused, display.calls.Load(), "no frames while auto refresh is off")
}

func TestDisplaysFanOut(t *testing.T) {
	t.Parallel()

	ok := newRecordingDisplay()
	failing := &recordingDisplay{frames: make(chan dashboard.Frame, 1), fail: true}
	after := newRecordingDisplay()

	err := dashboard.Displays{ok, failing, after}.Display(context.Background(), dashboard.Frame{Table: ledger.EmptyTable})
	assert.ErrorIs(t, err, errDisplay)
	assert.Equal(t, int32(1), ok.calls.Load())
	assert.Equal(t, int32(1), after.calls.Load(), "later displays still render")
}
