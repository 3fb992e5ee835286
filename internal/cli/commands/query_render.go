package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/tiersql/pkg/results"
)

func renderResults(w io.Writer, rows []results.TableRow, format string) error {
	switch format {
	case "json":
		return renderJSON(w, rows)
	case "csv":
		return renderCSV(w, rows)
	case "md", "markdown":
		return renderMarkdown(w, rows)
	default:
		return renderTable(w, rows)
	}
}

func resultTable(w io.Writer, rows []results.TableRow) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)

	cols := rows[0].Columns()
	header := make(table.Row, len(cols))
	for i, col := range cols {
		header[i] = col.Name
	}
	t.AppendHeader(header)

	for _, row := range rows {
		out := make(table.Row, row.ColumnCount())
		for i, v := range row.Values() {
			out[i] = formatValue(v)
		}
		t.AppendRow(out)
	}
	return t
}

func renderTable(w io.Writer, rows []results.TableRow) error {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := resultTable(w, rows)
	t.SetStyle(table.StyleLight)
	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", len(rows))
	return nil
}

func renderMarkdown(w io.Writer, rows []results.TableRow) error {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}
	resultTable(w, rows).RenderMarkdown()
	return nil
}

func renderCSV(w io.Writer, rows []results.TableRow) error {
	if len(rows) == 0 {
		return nil
	}
	resultTable(w, rows).RenderCSV()
	return nil
}

func renderJSON(w io.Writer, rows []results.TableRow) error {
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		m := make(map[string]any, row.ColumnCount())
		for i, col := range row.Columns() {
			v, _ := row.ValueAt(i)
			m[col.Name] = v
		}
		out = append(out, m)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
