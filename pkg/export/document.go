// Package export renders report documents as CSV or PDF.
package export

import "fmt"

// Field is one labelled metadata line.
type Field struct {
	Label string
	Value string
}

// Section groups rows under a heading. Every row has one cell per column.
type Section struct {
	Title string
	Rows  [][]string
}

// Document is a titled report made of metadata, sectioned rows sharing the
// same columns, and closing notes.
type Document struct {
	Title    string
	Meta     []Field
	Columns  []string
	Sections []Section
	Notes    string
}

func (d Document) validate() error {
	if len(d.Columns) == 0 {
		return fmt.Errorf("document requires at least one column")
	}
	for _, section := range d.Sections {
		for i, row := range section.Rows {
			if len(row) != len(d.Columns) {
				return fmt.Errorf("section %q row %d has %d cells, want %d", section.Title, i, len(row), len(d.Columns))
			}
		}
	}
	return nil
}
