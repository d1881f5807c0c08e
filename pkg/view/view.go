// Package view derives the presentation values of the dashboard from a
// reshaped ledger table. Everything here is pure.
package view

import (
	"fmt"

	"github.com/absmach/flaudit/pkg/ledger"
)

const DefFocusRound = 10

const (
	NoticeNoRounds      = "No rounds in ledger yet. Connect or turn on your aggregator."
	NoticeNoTransaction = "No transaction recorded for this round."

	noticeRoundMissingFmt = "Round %d data not yet available in the ledger."
	noticeNoNodeDataFmt   = "No node performance data available for Round %d."
)

type Options struct {
	// FocusRound selects the round shown in the node performance view.
	FocusRound       int
	ExplorerTemplate string
}

type View struct {
	Empty           bool            `json:"empty"`
	Notice          string          `json:"notice,omitempty"`
	KPIs            KPIs            `json:"kpis"`
	Trend           []TrendPoint    `json:"trend"`
	NodePerformance NodePerformance `json:"node_performance"`
	Rounds          []RoundDetail   `json:"rounds"`
	Matrix          Matrix          `json:"matrix"`
	Blockchain      Blockchain      `json:"blockchain"`
	Aliases         []Alias         `json:"aliases"`
}

// KPIs is the headline block. ActiveNodes counts the nodes that reported in
// the latest round, not every node column seen anywhere in the ledger.
type KPIs struct {
	CurrentRound   int     `json:"current_round"`
	RoundDelta     string  `json:"round_delta"`
	GlobalAccuracy float64 `json:"global_accuracy"`
	Accuracy       string  `json:"accuracy"`
	AccuracyDelta  string  `json:"accuracy_delta"`
	ActiveNodes    int     `json:"active_nodes"`
	LastUpdate     string  `json:"last_update"`
}

type TrendPoint struct {
	Round          int     `json:"round"`
	GlobalAccuracy float64 `json:"global_accuracy"`
}

type NodeBar struct {
	Node     string  `json:"node"`
	Accuracy float64 `json:"accuracy"`
}

type NodePerformance struct {
	Round  int       `json:"round"`
	Bars   []NodeBar `json:"bars,omitempty"`
	Notice string    `json:"notice,omitempty"`
}

type RoundDetail struct {
	Round          int     `json:"round"`
	Timestamp      string  `json:"timestamp"`
	GlobalAccuracy float64 `json:"global_accuracy"`
	Accuracy       string  `json:"accuracy"`
	IPFSHash       string  `json:"ipfs_hash"`
	BlockTx        string  `json:"block_tx"`
	Notes          string  `json:"notes"`
}

// Matrix is the per-node performance grid. A nil cell is a round without an
// entry for that node.
type Matrix struct {
	Columns []string    `json:"columns"`
	Rows    []MatrixRow `json:"rows"`
}

type MatrixRow struct {
	Round int        `json:"round"`
	Cells []*float64 `json:"cells"`
}

type Blockchain struct {
	Round  int    `json:"round,omitempty"`
	TxHash string `json:"tx_hash,omitempty"`
	Short  string `json:"short,omitempty"`
	URL    string `json:"url,omitempty"`
	Notice string `json:"notice,omitempty"`
}

// Build derives the view of an already windowed table. An empty table is a
// displayable state carrying the "no data yet" notice.
func Build(t ledger.Table, opts Options) View {
	if opts.FocusRound == 0 {
		opts.FocusRound = DefFocusRound
	}

	latest, previous, ok := PreviousOrLatest(t)
	if !ok {
		return View{Empty: true, Notice: NoticeNoRounds}
	}

	columns := t.NodeColumns()
	aliases := RelabelNodes(columns)

	return View{
		KPIs:            kpis(latest, previous, columns),
		Trend:           trend(t),
		NodePerformance: nodePerformance(t, opts.FocusRound, aliases),
		Rounds:          rounds(t),
		Matrix:          matrix(t, aliases),
		Blockchain:      blockchain(latest, opts.ExplorerTemplate),
		Aliases:         aliases,
	}
}

func kpis(latest, previous ledger.Row, columns []string) KPIs {
	active := 0
	for _, col := range columns {
		if _, ok := latest.Node(col); ok {
			active++
		}
	}

	return KPIs{
		CurrentRound:   latest.Round,
		RoundDelta:     "+1",
		GlobalAccuracy: latest.GlobalAccuracy,
		Accuracy:       FormatPercent(latest.GlobalAccuracy),
		AccuracyDelta:  FormatSignedPercent(Delta(latest.GlobalAccuracy, previous.GlobalAccuracy)),
		ActiveNodes:    active,
		LastUpdate:     ClockTime(latest.Timestamp),
	}
}

func trend(t ledger.Table) []TrendPoint {
	points := make([]TrendPoint, 0, t.Len())
	for _, r := range t.Rows() {
		points = append(points, TrendPoint{Round: r.Round, GlobalAccuracy: r.GlobalAccuracy})
	}

	return points
}

func nodePerformance(t ledger.Table, round int, aliases []Alias) NodePerformance {
	np := NodePerformance{Round: round}

	row, ok := t.FindLast(round)
	if !ok {
		np.Notice = fmt.Sprintf(noticeRoundMissingFmt, round)

		return np
	}

	for _, a := range aliases {
		if acc, ok := row.Node(a.Column); ok {
			np.Bars = append(np.Bars, NodeBar{Node: a.Name, Accuracy: acc})
		}
	}
	if len(np.Bars) == 0 {
		np.Notice = fmt.Sprintf(noticeNoNodeDataFmt, round)
	}

	return np
}

func rounds(t ledger.Table) []RoundDetail {
	details := make([]RoundDetail, 0, t.Len())
	for _, r := range t.Rows() {
		details = append(details, RoundDetail{
			Round:          r.Round,
			Timestamp:      r.Timestamp,
			GlobalAccuracy: r.GlobalAccuracy,
			Accuracy:       FormatPercent(r.GlobalAccuracy),
			IPFSHash:       TruncateHash(r.IPFSHash),
			BlockTx:        TruncateHash(r.BlockTx),
			Notes:          r.Notes,
		})
	}

	return details
}

func matrix(t ledger.Table, aliases []Alias) Matrix {
	m := Matrix{
		Columns: make([]string, 0, len(aliases)),
		Rows:    make([]MatrixRow, 0, t.Len()),
	}
	for _, a := range aliases {
		m.Columns = append(m.Columns, a.Name)
	}

	for _, r := range t.Rows() {
		cells := make([]*float64, len(aliases))
		for i, a := range aliases {
			if v, ok := r.Node(a.Column); ok {
				cells[i] = &v
			}
		}
		m.Rows = append(m.Rows, MatrixRow{Round: r.Round, Cells: cells})
	}

	return m
}

func blockchain(latest ledger.Row, template string) Blockchain {
	if latest.BlockTx == "" {
		return Blockchain{Round: latest.Round, Notice: NoticeNoTransaction}
	}

	return Blockchain{
		Round:  latest.Round,
		TxHash: latest.BlockTx,
		Short:  TruncateHash(latest.BlockTx),
		URL:    ExplorerURL(template, latest.BlockTx),
	}
}
