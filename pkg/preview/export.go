package preview

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned for an export format that is not supported
var ErrUnknownFormat = errors.New("unknown export format")

// Format is an export format for previews
type Format string

const (
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
	FormatTSV   Format = "tsv"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates a format name (case-insensitive)
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatTable, FormatCSV, FormatTSV, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// Tabular is a preview that can be flattened into a header and records
type Tabular interface {
	Headers() []string
	Records() [][]string
	Footer() []string
}

func (p RDFPreview) Headers() []string {
	return []string{"IRI", "Label", "Proposed New IRI", "Status"}
}

func (p RDFPreview) Records() [][]string {
	records := make([][]string, len(p.Rows))
	for i, r := range p.Rows {
		records[i] = []string{r.IRI, r.Label, r.ProposedNew, r.Status()}
	}
	return records
}

func (p RDFPreview) Footer() []string {
	return []string{fmt.Sprintf("Total IRIs %d", p.Summary.Total), "", p.Summary.String(), ""}
}

func (p SPARQLPreview) Headers() []string {
	return []string{"Token", "Kind", "Expanded IRI", "Proposed New IRI", "Status"}
}

func (p SPARQLPreview) Records() [][]string {
	records := make([][]string, len(p.Rows))
	for i, r := range p.Rows {
		records[i] = []string{r.Token, string(r.Kind), r.Expanded, r.ProposedNew, r.Status()}
	}
	return records
}

func (p SPARQLPreview) Footer() []string {
	return []string{fmt.Sprintf("Total Tokens %d", p.Summary.Total), "", "", p.Summary.String(), ""}
}

func (s Summary) String() string {
	return fmt.Sprintf("%d proposed (%d%%)", s.Proposed, s.Percent)
}

// Write exports p in the given format. JSON and YAML carry rows and summary;
// the delimited formats carry the rows only.
func Write(w io.Writer, format Format, p Tabular) error {
	switch format {
	case FormatCSV:
		return writeDelimited(w, ',', p)
	case FormatTSV:
		return writeDelimited(w, '\t', p)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(p); err != nil {
			return err
		}
		return enc.Close()
	case FormatTable:
		_, err := io.WriteString(w, RenderTable(p))
		return err
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func writeDelimited(w io.Writer, comma rune, p Tabular) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma

	if err := cw.Write(p.Headers()); err != nil {
		return err
	}
	for _, record := range p.Records() {
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// RenderTable renders p as an aligned text table with a summary footer
func RenderTable(p Tabular) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader(p.Headers())
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.AppendBulk(p.Records())
	table.SetFooter(p.Footer())
	table.Render()

	return tableBuffer.String()
}
