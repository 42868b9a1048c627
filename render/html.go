// Package render turns a dbexport.Table into the two report formats: an
// HTML table fragment for the mail body and an xlsx workbook for
// attachments.
package render

import (
	"html"
	"strings"

	"mailreport/dbexport"
)

const tableOpen = `<table border="1" cellpadding="4" cellspacing="0" style="border-collapse:collapse">`

// HTML renders t as a single <table> fragment with a header row built from
// the column names and one body row per table row. Every name and value is
// HTML-escaped. The output depends only on t.
func HTML(t *dbexport.Table) string {
	var b strings.Builder
	b.WriteString(tableOpen)
	b.WriteString("\n<thead>\n<tr>")
	for _, col := range t.Columns {
		b.WriteString("<th>")
		b.WriteString(html.EscapeString(col))
		b.WriteString("</th>")
	}
	b.WriteString("</tr>\n</thead>\n<tbody>\n")
	for _, row := range t.Rows {
		b.WriteString("<tr>")
		for i := range t.Columns {
			var v any
			if i < len(row) {
				v = row[i]
			}
			b.WriteString("<td>")
			b.WriteString(html.EscapeString(FormatValue(v)))
			b.WriteString("</td>")
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</tbody>\n</table>\n")
	return b.String()
}
