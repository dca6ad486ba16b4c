// Package dataset loads the raw tabular inputs for the tip analysis:
// trip tables for the training and evaluation windows and the taxi
// zone lookup. Both CSV and Excel (.xlsx) sources are supported.
package dataset

// Table is an immutable, column-ordered table of string cells as read
// from the source file. Typed conversion happens downstream so that a
// mistyped cell can be reported with its column and row.
type Table struct {
	Columns []string
	Rows    [][]string

	index map[string]int
}

// NewTable builds a table from a header and data rows.
func NewTable(columns []string, rows [][]string) *Table {
	idx := make(map[string]int, len(columns))
	for i, c := range columns {
		idx[c] = i
	}
	return &Table{Columns: columns, Rows: rows, index: idx}
}

// Col returns the index of the named column and whether it exists.
func (t *Table) Col(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Cell returns the cell at the given row and column index. Short rows
// read as empty cells rather than panicking.
func (t *Table) Cell(row, col int) string {
	if col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// Drop returns a new table without the named columns. Absent names are
// ignored. The receiver is not modified.
func (t *Table) Drop(names ...string) *Table {
	dropped := make(map[string]bool, len(names))
	for _, n := range names {
		dropped[n] = true
	}

	var keep []int
	var cols []string
	for i, c := range t.Columns {
		if !dropped[c] {
			keep = append(keep, i)
			cols = append(cols, c)
		}
	}
	if len(keep) == len(t.Columns) {
		return t
	}

	rows := make([][]string, len(t.Rows))
	for r := range t.Rows {
		row := make([]string, len(keep))
		for j, i := range keep {
			row[j] = t.Cell(r, i)
		}
		rows[r] = row
	}
	return NewTable(cols, rows)
}
