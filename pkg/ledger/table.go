package ledger

import (
	"encoding/json"
	"sort"
)

// NodeColumnPrefix namespaces node columns so the raw node identifier stays
// recoverable from the column name.
const NodeColumnPrefix = "Store_"

const (
	ColRound          = "round"
	ColTimestamp      = "timestamp"
	ColGlobalAccuracy = "global_accuracy"
	ColIPFSHash       = "ipfs_hash"
	ColBlockTx        = "block_tx"
	ColNotes          = "notes"
)

// FieldColumns are present in every table, in this order, ahead of node columns.
var FieldColumns = []string{ColRound, ColTimestamp, ColGlobalAccuracy, ColIPFSHash, ColBlockTx, ColNotes}

// EmptyTable is returned for an empty ledger. Check Empty before touching rows.
var EmptyTable = Table{}

// Row is one round of the reshaped ledger.
type Row struct {
	Round          int
	Timestamp      string
	GlobalAccuracy float64
	IPFSHash       string
	BlockTx        string
	Notes          string
	nodes          map[string]float64
}

// Node returns the cell for a node column. A round without an entry for the
// node reports ok == false; that is "no value", not zero.
func (r Row) Node(column string) (float64, bool) {
	v, ok := r.nodes[column]

	return v, ok
}

// Table is the ledger reshaped to one row per round and one column per node.
type Table struct {
	rows        []Row
	nodeColumns []string
}

// Reshape flattens records into a table sorted by round. The sort is stable:
// duplicate rounds are kept in input order.
func Reshape(records []RoundRecord) Table {
	if len(records) == 0 {
		return EmptyTable
	}

	seen := map[string]struct{}{}
	var columns []string
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		row := Row{
			Round:          rec.Round,
			Timestamp:      rec.Timestamp,
			GlobalAccuracy: rec.GlobalAccuracy,
			IPFSHash:       rec.IPFSHash,
			BlockTx:        rec.BlockTx,
			Notes:          rec.Notes,
			nodes:          make(map[string]float64, len(rec.NodeAccuracies)),
		}
		for _, na := range rec.NodeAccuracies {
			col := NodeColumnPrefix + na.Node
			row.nodes[col] = na.Accuracy
			if _, ok := seen[col]; !ok {
				seen[col] = struct{}{}
				columns = append(columns, col)
			}
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Round < rows[j].Round
	})

	return Table{rows: rows, nodeColumns: columns}
}

func (t Table) Empty() bool {
	return len(t.rows) == 0
}

func (t Table) Len() int {
	return len(t.rows)
}

// Rows returns a copy of the rows in round order.
func (t Table) Rows() []Row {
	return append([]Row(nil), t.rows...)
}

// Row returns the i-th row in round order.
func (t Table) Row(i int) Row {
	return t.rows[i]
}

// Last returns the row with the highest round.
func (t Table) Last() (Row, bool) {
	if t.Empty() {
		return Row{}, false
	}

	return t.rows[len(t.rows)-1], true
}

// NodeColumns lists node columns in order of first appearance in the ledger.
func (t Table) NodeColumns() []string {
	return append([]string(nil), t.nodeColumns...)
}

// Columns lists the full column set: fixed fields then node columns.
func (t Table) Columns() []string {
	cols := make([]string, 0, len(FieldColumns)+len(t.nodeColumns))
	cols = append(cols, FieldColumns...)

	return append(cols, t.nodeColumns...)
}

// Tail keeps the last n rows. Node columns are kept even when no remaining
// row has a value for them.
func (t Table) Tail(n int) Table {
	if n <= 0 || n >= len(t.rows) {
		return t
	}

	return Table{
		rows:        t.rows[len(t.rows)-n:],
		nodeColumns: t.nodeColumns,
	}
}

// FindLast returns the last row with the given round, matching the table
// order for duplicated rounds.
func (t Table) FindLast(round int) (Row, bool) {
	for i := len(t.rows) - 1; i >= 0; i-- {
		if t.rows[i].Round == round {
			return t.rows[i], true
		}
	}

	return Row{}, false
}

// MarshalJSON renders the table as a list of records keyed by column name,
// with null for empty node cells.
func (t Table) MarshalJSON() ([]byte, error) {
	out := make([]map[string]any, 0, len(t.rows))
	for _, r := range t.rows {
		m := map[string]any{
			ColRound:          r.Round,
			ColTimestamp:      r.Timestamp,
			ColGlobalAccuracy: r.GlobalAccuracy,
			ColIPFSHash:       r.IPFSHash,
			ColBlockTx:        r.BlockTx,
			ColNotes:          r.Notes,
		}
		for _, col := range t.nodeColumns {
			if v, ok := r.nodes[col]; ok {
				m[col] = v

				continue
			}
			m[col] = nil
		}
		out = append(out, m)
	}

	return json.Marshal(out)
}
