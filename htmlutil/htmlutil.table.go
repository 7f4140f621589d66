package htmlutil

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/itsatony/go-webtmpl/strutil"
)

// CSV table constants
const (
	CSVSeparator = ';'
	EntityQuote  = "&quot;"
)

// TableOptions configures CSVToTable.
type TableOptions struct {
	// ID is written on the <table> tag in both modes.
	ID string
	// Class is only written for enhanced tables.
	Class string
	// Enhanced adds a <tfoot>, the class and the extra attributes.
	Enhanced bool
	// Attributes are extra table attributes such as style or role.
	// Only written for enhanced tables.
	Attributes map[string]string
}

// CSVToTable converts ';'-separated data whose first row holds the column
// names into an HTML table. Empty input returns "".
func CSVToTable(data string, opts TableOptions) (string, error) {
	if strings.TrimSpace(data) == "" {
		return "", nil
	}

	data = strings.ReplaceAll(data, EntityQuote, `"`)

	reader := csv.NewReader(strings.NewReader(data))
	reader.Comma = CSVSeparator
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return "", err
	}

	var head strings.Builder
	for _, field := range header {
		head.WriteString("<th>")
		head.WriteString(strings.Trim(field, `"`))
		head.WriteString("</th>")
	}

	var b strings.Builder
	b.WriteString("<thead><tr>")
	b.WriteString(head.String())
	b.WriteString("</tr></thead>")
	if opts.Enhanced {
		b.WriteString("<tfoot><tr>")
		b.WriteString(head.String())
		b.WriteString("</tr></tfoot>")
	}
	b.WriteString("<tbody>")

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if isEmptyRow(row) {
			continue
		}
		b.WriteString("<tr>")
		for _, value := range row {
			b.WriteString("<td>")
			b.WriteString(strutil.Cleansing(value))
			b.WriteString("</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody>")

	var table strings.Builder
	table.WriteString("<table")
	if id := strings.ReplaceAll(strings.TrimSpace(opts.ID), `"`, ""); id != "" {
		table.WriteString(` id="` + id + `"`)
	}
	if opts.Enhanced {
		if class := strings.ReplaceAll(strings.TrimSpace(opts.Class), `"`, ""); class != "" {
			table.WriteString(` class="` + class + `"`)
		}
		table.WriteString(formatAttributes(opts.Attributes))
	}
	table.WriteString(">")
	table.WriteString(b.String())
	table.WriteString("</table>")

	return table.String(), nil
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
