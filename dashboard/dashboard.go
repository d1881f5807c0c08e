package dashboard

import (
	"context"
	"time"

	"github.com/absmach/flaudit/pkg/ledger"
	"github.com/absmach/flaudit/pkg/view"
)

// Service produces dashboard frames and exposes the operator toggles.
type Service interface {
	// Frame reads the cached ledger, applies the round window and derives the view.
	Frame(ctx context.Context) (Frame, error)

	Settings(ctx context.Context) (Settings, error)
	UpdateSettings(ctx context.Context, patch SettingsPatch) (Settings, error)

	// Refresh drops the cached table and asks the poll loop for an immediate frame.
	Refresh(ctx context.Context) (Settings, error)
}

// Frame is one consistent snapshot handed to the rendering surfaces. Table and
// View come from the same ledger read.
type Frame struct {
	Settings    Settings     `json:"settings"`
	Table       ledger.Table `json:"table"`
	View        view.View    `json:"view"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// Display is a rendering surface. An empty table is a valid frame.
type Display interface {
	Display(ctx context.Context, frame Frame) error
}

// TableSource is the cached ledger pipeline.
type TableSource interface {
	Get(ctx context.Context) ledger.Table
	Invalidate()
}

var _ TableSource = (*ledger.Cache)(nil)
