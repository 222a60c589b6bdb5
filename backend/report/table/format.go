package table

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

type Format string

const (
	FormatHTML Format = "html"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatHTML, nil
	case FormatHTML, FormatCSV, FormatXLSX, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format %q", s)
	}
}

// IsDownload reports whether the format is delivered as an attachment.
func (f Format) IsDownload() bool {
	return f == FormatCSV || f == FormatXLSX
}

func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatJSON:
		return "application/json"
	default:
		return "text/html; charset=utf-8"
	}
}

func (f Format) Filename(base string) string {
	return base + "." + string(f)
}

// Write renders t in one of the table formats. JSON is not a table format.
func Write(w io.Writer, t *Table, f Format) error {
	switch f {
	case FormatHTML:
		return WriteHTML(w, t)
	case FormatCSV:
		return WriteCSV(w, t)
	case FormatXLSX:
		return WriteXLSX(w, t)
	default:
		return fmt.Errorf("format %q cannot render a table", f)
	}
}

func Render(t *Table, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, t, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
