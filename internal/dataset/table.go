package dataset

import "strings"

// table is a raw tabular input before typing: a header index plus string
// cells. Column lookups are case-insensitive and whitespace-tolerant.
type table struct {
	name    string
	columns map[string]int
	rows    [][]string
}

func newTable(name string, header []string, rows [][]string) *table {
	columns := make(map[string]int, len(header))
	for i, col := range header {
		columns[normalizeColumn(col)] = i
	}
	return &table{name: name, columns: columns, rows: rows}
}

// cell returns the value at the named column for a row, trying each alias
// in order. Missing columns and short rows yield an empty string.
func (t *table) cell(row []string, aliases ...string) string {
	for _, alias := range aliases {
		idx, ok := t.columns[alias]
		if !ok || idx >= len(row) {
			continue
		}
		return strings.TrimSpace(row[idx])
	}
	return ""
}

func normalizeColumn(col string) string {
	return strings.ToLower(strings.TrimSpace(col))
}
