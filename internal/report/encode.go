package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/tealeg/xlsx/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Format is an export serialization.
type Format string

const (
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatXLSX  Format = "xlsx"
)

// Formats lists every supported format.
var Formats = []Format{FormatTable, FormatCSV, FormatJSON, FormatYAML, FormatXLSX}

// ParseFormat validates a format name. "yml" is accepted for YAML.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "yml" {
		return FormatYAML, nil
	}
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// Extension returns the file extension used when writing the format to disk.
func (f Format) Extension() string {
	if f == FormatTable {
		return ".txt"
	}
	return "." + string(f)
}

// Table is a named export: a header, positional rows for the tabular
// formats, and the typed items for JSON and YAML.
type Table struct {
	Name   string
	Header []string
	Rows   [][]any
	Items  any
}

// VisitorTable wraps visitor rows as a table.
func VisitorTable(rows []VisitorRow) Table {
	if rows == nil {
		rows = []VisitorRow{}
	}
	t := Table{Name: "visitors", Header: visitorHeader, Items: rows}
	for _, r := range rows {
		t.Rows = append(t.Rows, r.values())
	}
	return t
}

// ActivityTable wraps activity rows as a table.
func ActivityTable(rows []ActivityRow) Table {
	if rows == nil {
		rows = []ActivityRow{}
	}
	t := Table{Name: "activity", Header: activityHeader, Items: rows}
	for _, r := range rows {
		t.Rows = append(t.Rows, r.values())
	}
	return t
}

// Encode writes the table to w in the given format. An empty table still
// produces a valid document: a header-only CSV, table or sheet, and an empty
// JSON or YAML list.
func Encode(w io.Writer, f Format, t Table) error {
	switch f {
	case FormatCSV:
		return encodeCSV(w, t)
	case FormatJSON:
		return encodeJSON(w, t)
	case FormatYAML:
		return encodeYAML(w, t)
	case FormatXLSX:
		return encodeXLSX(w, t)
	case FormatTable:
		return encodeTable(w, t)
	default:
		return fmt.Errorf("unknown export format %q", f)
	}
}

func encodeCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", t.Name, err)
	}
	record := make([]string, len(t.Header))
	for _, row := range t.Rows {
		for i, v := range row {
			record[i] = formatValue(v)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write %s row: %w", t.Name, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func encodeJSON(w io.Writer, t Table) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(t.Items); err != nil {
		return fmt.Errorf("failed to encode %s as JSON: %w", t.Name, err)
	}
	return nil
}

func encodeYAML(w io.Writer, t Table) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(t.Items); err != nil {
		return fmt.Errorf("failed to encode %s as YAML: %w", t.Name, err)
	}
	return enc.Close()
}

func encodeXLSX(w io.Writer, t Table) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(t.Name)
	if err != nil {
		return fmt.Errorf("failed to add sheet %s: %w", t.Name, err)
	}

	header := sheet.AddRow()
	for _, h := range t.Header {
		header.AddCell().SetString(h)
	}
	for _, row := range t.Rows {
		r := sheet.AddRow()
		for _, v := range row {
			setCell(r.AddCell(), v)
		}
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// setCell keeps numbers and booleans typed so spreadsheets can sort them.
func setCell(cell *xlsx.Cell, v any) {
	switch val := v.(type) {
	case int:
		cell.SetInt(val)
	case float64:
		cell.SetFloat(val)
	case bool:
		cell.SetBool(val)
	case *float64:
		if val != nil {
			cell.SetFloat(*val)
		}
	default:
		cell.SetString(formatValue(v))
	}
}

func encodeTable(w io.Writer, t Table) error {
	caser := cases.Upper(language.English)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	labels := make([]string, len(t.Header))
	for i, h := range t.Header {
		labels[i] = caser.String(strings.ReplaceAll(h, "_", " "))
	}
	if _, err := fmt.Fprintln(tw, strings.Join(labels, "\t")); err != nil {
		return err
	}

	cells := make([]string, len(t.Header))
	for _, row := range t.Rows {
		for i, v := range row {
			cells[i] = tableValue(v)
		}
		if _, err := fmt.Fprintln(tw, strings.Join(cells, "\t")); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// formatValue renders a cell for CSV and XLSX text cells.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		if val.IsZero() {
			return ""
		}
		return val.Format(time.RFC3339)
	case *time.Time:
		if val == nil {
			return ""
		}
		return formatValue(*val)
	case *float64:
		if val == nil {
			return ""
		}
		return formatValue(*val)
	default:
		return fmt.Sprint(val)
	}
}

// tableValue is formatValue shortened for terminals.
func tableValue(v any) string {
	switch val := v.(type) {
	case float64:
		return strconv.FormatFloat(val, 'f', 1, 64)
	case bool:
		if val {
			return "yes"
		}
		return "-"
	case time.Time:
		if val.IsZero() {
			return "-"
		}
		return val.Format("2006-01-02 15:04")
	case string:
		if val == "" {
			return "-"
		}
		if len([]rune(val)) > 40 {
			return string([]rune(val)[:37]) + "..."
		}
		return val
	default:
		if s := formatValue(v); s != "" {
			return s
		}
		return "-"
	}
}
