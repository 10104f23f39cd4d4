package export

// Column is one exported column: Key reads the row, Label heads the column.
type Column struct {
	Key   string
	Label string
}

// Dataset defines tabular export content.
type Dataset struct {
	Columns []Column
	Rows    []map[string]string
}

// Labels returns the column headings in order.
func (d Dataset) Labels() []string {
	out := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		out[i] = c.Label
		if out[i] == "" {
			out[i] = c.Key
		}
	}
	return out
}

// Cells returns the row values in column order.
func (d Dataset) Cells(row map[string]string) []string {
	out := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		out[i] = row[c.Key]
	}
	return out
}
