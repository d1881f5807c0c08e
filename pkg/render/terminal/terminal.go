// Package terminal renders dashboard frames as a live pterm area.
package terminal

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/absmach/flaudit/dashboard"
	"github.com/absmach/flaudit/pkg/view"
	"github.com/pterm/pterm"
)

const title = "Federated Learning Audit Dashboard"

var _ dashboard.Display = (*Terminal)(nil)

// Terminal redraws one pterm area in place on every frame.
type Terminal struct {
	mu   sync.Mutex
	area *pterm.AreaPrinter
}

func New() *Terminal {
	return &Terminal{}
}

func (t *Terminal) Display(ctx context.Context, frame dashboard.Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	content, err := Render(frame)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.area == nil {
		area, err := pterm.DefaultArea.Start()
		if err != nil {
			return err
		}
		t.area = area
	}
	t.area.Update(content)

	return nil
}

// Stop leaves the last frame on screen.
func (t *Terminal) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.area == nil {
		return nil
	}
	err := t.area.Stop()
	t.area = nil

	return err
}

// Render draws a frame into a string.
func Render(frame dashboard.Frame) (string, error) {
	var sb strings.Builder

	sb.WriteString(pterm.DefaultSection.Sprint(title))
	sb.WriteString(status(frame.Settings))
	sb.WriteString("\n\n")

	v := frame.View
	if v.Empty {
		sb.WriteString(pterm.Warning.Sprint(v.Notice))
		sb.WriteString("\n")

		return sb.String(), nil
	}

	sections := []func(view.View) (string, error){
		kpis,
		trend,
		nodePerformance,
		rounds,
		matrix,
		blockchain,
	}
	for _, section := range sections {
		out, err := section(v)
		if err != nil {
			return "", err
		}
		sb.WriteString(out)
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

func status(s dashboard.Settings) string {
	refresh := pterm.LightRed("paused")
	if s.AutoRefresh {
		refresh = pterm.LightGreen("live")
	}

	return fmt.Sprintf("Auto-refresh: %s | Window: %d rounds | Focus round: %d | Last reset: %s",
		refresh, s.Window, s.FocusRound, s.LastReset.Format("2006-01-02 15:04:05"))
}

func kpis(v view.View) (string, error) {
	k := v.KPIs
	box := pterm.DefaultBox.WithHorizontalPadding(2)

	panels := pterm.Panels{{
		{Data: box.WithTitle("Current Round").WithTitleTopLeft().Sprintf("%d (%s)", k.CurrentRound, k.RoundDelta)},
		{Data: box.WithTitle("Global Accuracy").WithTitleTopLeft().Sprintf("%s (%s)", k.Accuracy, k.AccuracyDelta)},
		{Data: box.WithTitle("Active Nodes").WithTitleTopLeft().Sprint(strconv.Itoa(k.ActiveNodes))},
		{Data: box.WithTitle("Last Update").WithTitleTopLeft().Sprint(k.LastUpdate)},
	}}

	return pterm.DefaultPanel.WithPanels(panels).WithPadding(1).Srender()
}

func trend(v view.View) (string, error) {
	data := pterm.TableData{{"Round", "Global Accuracy"}}
	for _, p := range v.Trend {
		data = append(data, []string{strconv.Itoa(p.Round), view.FormatPercent(p.GlobalAccuracy)})
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return "", err
	}

	return pterm.DefaultSection.WithLevel(2).Sprint("Global Model Accuracy Over Rounds") + table + "\n", nil
}

func nodePerformance(v view.View) (string, error) {
	np := v.NodePerformance
	header := pterm.DefaultSection.WithLevel(2).Sprintf("Node Performance (Round %d)", np.Round)
	if np.Notice != "" {
		return header + pterm.Info.Sprint(np.Notice) + "\n", nil
	}

	var bars pterm.Bars
	positive := false
	for _, b := range np.Bars {
		value := int(math.Round(b.Accuracy * 100))
		if value > 0 {
			positive = true
		}
		bars = append(bars, pterm.Bar{Label: b.Node, Value: value})
	}
	if !positive {
		data := pterm.TableData{{"Node", "Accuracy"}}
		for _, b := range np.Bars {
			data = append(data, []string{b.Node, view.FormatPercent(b.Accuracy)})
		}
		table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
		if err != nil {
			return "", err
		}

		return header + table + "\n", nil
	}

	chart, err := pterm.DefaultBarChart.WithHorizontal().WithShowValue().WithBars(bars).Srender()
	if err != nil {
		return "", err
	}

	return header + chart + "\n", nil
}

func rounds(v view.View) (string, error) {
	data := pterm.TableData{{"Round", "Timestamp", "Accuracy", "IPFS Hash", "Block Tx", "Notes"}}
	for _, r := range v.Rounds {
		data = append(data, []string{
			strconv.Itoa(r.Round),
			r.Timestamp,
			r.Accuracy,
			r.IPFSHash,
			r.BlockTx,
			r.Notes,
		})
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Srender()
	if err != nil {
		return "", err
	}

	return pterm.DefaultSection.WithLevel(2).Sprint("Training Round Details") + table + "\n", nil
}

func matrix(v view.View) (string, error) {
	header := append([]string{"Round"}, v.Matrix.Columns...)
	data := pterm.TableData{header}
	for _, row := range v.Matrix.Rows {
		line := []string{strconv.Itoa(row.Round)}
		for _, cell := range row.Cells {
			if cell == nil {
				line = append(line, "-")

				continue
			}
			line = append(line, strconv.FormatFloat(*cell, 'f', 4, 64))
		}
		data = append(data, line)
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return "", err
	}

	return pterm.DefaultSection.WithLevel(2).Sprint("Node Performance Matrix") + table + "\n", nil
}

func blockchain(v view.View) (string, error) {
	b := v.Blockchain
	header := pterm.DefaultSection.WithLevel(2).Sprint("Blockchain Info")
	if b.Notice != "" {
		return header + pterm.Warning.Sprint(b.Notice) + "\n", nil
	}

	box := pterm.DefaultBox.
		WithTitle(fmt.Sprintf("Round %d", b.Round)).
		WithTitleTopLeft().
		Sprintf("Transaction: %s\nExplorer: %s", b.Short, b.URL)

	return header + box + "\n", nil
}

var _ dashboard.Display = (*Static)(nil)

// Static appends every rendered frame to a writer.
type Static struct {
	mu  sync.Mutex
	out io.Writer
}

func NewStatic(out io.Writer) *Static {
	return &Static{out: out}
}

func (s *Static) Display(ctx context.Context, frame dashboard.Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	content, err := Render(frame)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = io.WriteString(s.out, content)

	return err
}
