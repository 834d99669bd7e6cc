// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package format renders reports as terminal or Markdown tables.
package format

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Mode selects the table rendering.
type Mode int

const (
	ASCII Mode = iota
	Markdown
)

// ParseMode maps "markdown" or "md" to Markdown and anything else to ASCII.
func ParseMode(s string) Mode {
	switch s {
	case "markdown", "md":
		return Markdown
	}
	return ASCII
}

// Align is a column's horizontal alignment.
type Align int

const (
	AlignDefault Align = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// Column configures one 1-based column.
type Column struct {
	Number   int
	Align    Align
	MaxWidth int // 0 is unlimited
}

// Table accumulates rows and renders them in one Mode.
type Table struct {
	w    table.Writer
	mode Mode
}

// NewTable returns an empty table.
func NewTable(m Mode) *Table {
	w := table.NewWriter()
	if m == ASCII {
		w.SetStyle(table.StyleLight)
	}
	return &Table{w: w, mode: m}
}

// Title sets a caption rendered above the table.
func (t *Table) Title(format string, args ...any) {
	t.w.SetTitle(fmt.Sprintf(format, args...))
}

// Header sets the column names.
func (t *Table) Header(cols ...string) {
	row := make(table.Row, len(cols))
	for i, c := range cols {
		row[i] = c
	}
	t.w.AppendHeader(row)
}

// Row appends a row.
func (t *Table) Row(vals ...any) {
	t.w.AppendRow(table.Row(vals))
}

// Footer appends a footer row.
func (t *Table) Footer(vals ...any) {
	t.w.AppendFooter(table.Row(vals))
}

// Columns applies per-column settings.
func (t *Table) Columns(cols ...Column) {
	cfgs := make([]table.ColumnConfig, len(cols))
	for i, c := range cols {
		cfgs[i] = table.ColumnConfig{
			Number:   c.Number,
			Align:    textAlign(c.Align),
			WidthMax: c.MaxWidth,
		}
	}
	t.w.SetColumnConfigs(cfgs)
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return t.w.Length()
}

// String renders the table.
func (t *Table) String() string {
	if t.mode == Markdown {
		return t.w.RenderMarkdown()
	}
	return t.w.Render()
}

func textAlign(a Align) text.Align {
	switch a {
	case AlignLeft:
		return text.AlignLeft
	case AlignCenter:
		return text.AlignCenter
	case AlignRight:
		return text.AlignRight
	}
	return text.AlignDefault
}
