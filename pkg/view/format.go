package view

import (
	"fmt"
	"strings"

	"github.com/absmach/flaudit/pkg/ledger"
)

const (
	DefKeepStart = 8
	DefKeepEnd   = 8

	DefExplorerTemplate = "https://sepolia.etherscan.io/tx/%s"

	ellipsis = "..."
)

// Truncate shortens strings longer than keepStart+keepEnd to their head and
// tail joined by an ellipsis. Shorter strings and non-string values are
// returned as is.
func Truncate(value any, keepStart, keepEnd int) any {
	s, ok := value.(string)
	if !ok {
		return value
	}

	return TruncateString(s, keepStart, keepEnd)
}

// TruncateString is Truncate for strings. Negative keep counts are treated
// as zero, so (0, 0) reduces any non-empty string to the bare ellipsis.
func TruncateString(s string, keepStart, keepEnd int) string {
	keepStart, keepEnd = max(keepStart, 0), max(keepEnd, 0)
	r := []rune(s)
	if len(r) <= keepStart+keepEnd {
		return s
	}

	return string(r[:keepStart]) + ellipsis + string(r[len(r)-keepEnd:])
}

// TruncateHash truncates with the dashboard defaults.
func TruncateHash(s string) string {
	return TruncateString(s, DefKeepStart, DefKeepEnd)
}

// Alias maps a node column to its display name.
type Alias struct {
	Column string `json:"column"`
	Name   string `json:"name"`
}

// RelabelNodes assigns Store_A, Store_B, ... to columns by position. The alias
// depends only on the index, so the same node may get a different alias once
// the set of columns changes.
func RelabelNodes(columns []string) []Alias {
	aliases := make([]Alias, len(columns))
	for i, col := range columns {
		aliases[i] = Alias{Column: col, Name: ledger.NodeColumnPrefix + letters(i)}
	}

	return aliases
}

// AliasMap is RelabelNodes keyed by column.
func AliasMap(columns []string) map[string]string {
	m := make(map[string]string, len(columns))
	for _, a := range RelabelNodes(columns) {
		m[a.Column] = a.Name
	}

	return m
}

// letters returns the spreadsheet-style label for a zero based index:
// A..Z, AA, AB, ...
func letters(i int) string {
	var b []byte
	for i >= 0 {
		b = append([]byte{byte('A' + i%26)}, b...)
		i = i/26 - 1
	}

	return string(b)
}

// Delta is the change between two consecutive readings.
func Delta(latest, previous float64) float64 {
	return latest - previous
}

// PreviousOrLatest returns the reading before the last one, or the last one
// when the table has a single row, so the first round shows a neutral delta.
func PreviousOrLatest(t ledger.Table) (latest, previous ledger.Row, ok bool) {
	latest, ok = t.Last()
	if !ok {
		return ledger.Row{}, ledger.Row{}, false
	}
	if t.Len() < 2 {
		return latest, latest, true
	}

	return latest, t.Row(t.Len() - 2), true
}

func FormatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

func FormatSignedPercent(v float64) string {
	return fmt.Sprintf("%+.2f%%", v*100)
}

// ClockTime extracts the time of day from an ISO-8601 timestamp, dropping
// fractional seconds. Values without a date/time separator are returned unchanged.
func ClockTime(ts string) string {
	_, clock, ok := strings.Cut(ts, "T")
	if !ok {
		return ts
	}
	clock, _, _ = strings.Cut(clock, ".")

	return clock
}

// ExplorerURL interpolates a transaction id into an explorer template. The id
// is not validated.
func ExplorerURL(template, tx string) string {
	if template == "" {
		template = DefExplorerTemplate
	}

	return fmt.Sprintf(template, tx)
}
