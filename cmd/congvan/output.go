package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/congvan/formats"
	"github.com/arthur-debert/congvan/types"
)

// OutputFormatter handles formatting command results for different output formats
type OutputFormatter struct {
	format string
	w      io.Writer
}

// NewOutputFormatter creates a new output formatter
func NewOutputFormatter(format string, w io.Writer) *OutputFormatter {
	return &OutputFormatter{format: format, w: w}
}

// documentList is the machine-readable form of a document table
type documentList struct {
	Title      string            `json:"title"`
	Pagination *types.Pagination `json:"pagination,omitempty"`
	Documents  []types.Document  `json:"documents"`
}

// Documents writes a table of docs. offset numbers the rows; pagination,
// when not nil, is printed under table output and included in json/yaml.
func (of *OutputFormatter) Documents(title string, docs []types.Document, columns types.ColumnSet, offset int, pagination *types.Pagination) error {
	switch of.format {
	case "json":
		return of.formatJSON(documentList{Title: title, Pagination: pagination, Documents: nonNil(docs)})
	case "yaml":
		return of.formatYAML(documentList{Title: title, Pagination: pagination, Documents: nonNil(docs)})
	case "csv":
		return of.formatCSV(formats.BuildTable(title, docs, columns, offset))
	default:
		return of.formatTable(formats.BuildTable(title, docs, columns, offset), pagination)
	}
}

// Document writes a single document
func (of *OutputFormatter) Document(title string, doc types.Document, columns types.ColumnSet) error {
	switch of.format {
	case "json":
		return of.formatJSON(doc)
	case "yaml":
		return of.formatYAML(doc)
	}
	return of.Documents(title, []types.Document{doc}, columns, 0, nil)
}

func nonNil(docs []types.Document) []types.Document {
	if docs == nil {
		return []types.Document{}
	}
	return docs
}

func (of *OutputFormatter) formatJSON(data any) error {
	enc := json.NewEncoder(of.w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(data)
}

// formatYAML goes through JSON so the keys match the API field names
func (of *OutputFormatter) formatYAML(data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	var plain any
	if err := json.Unmarshal(raw, &plain); err != nil {
		return err
	}
	enc := yaml.NewEncoder(of.w)
	enc.SetIndent(2)
	if err := enc.Encode(plain); err != nil {
		return err
	}
	return enc.Close()
}

func (of *OutputFormatter) formatCSV(t *formats.Table) error {
	cw := csv.NewWriter(of.w)
	if err := cw.Write(t.Headers); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}

func (of *OutputFormatter) formatTable(t *formats.Table, pagination *types.Pagination) error {
	if _, err := fmt.Fprintf(of.w, "%s\n\n", t.Title); err != nil {
		return err
	}
	if len(t.Rows) == 0 {
		_, err := fmt.Fprintln(of.w, "Không có văn bản")
		return err
	}

	tw := tabwriter.NewWriter(of.w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, strings.Join(t.Headers, "\t"))
	for _, row := range t.Rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = strings.ReplaceAll(c, "\t", " ")
		}
		_, _ = fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if pagination != nil && pagination.TotalPages > 0 {
		_, err := fmt.Fprintf(of.w, "\nTrang %d/%d · %d văn bản\n",
			pagination.CurrentPage, pagination.TotalPages, pagination.TotalItems)
		return err
	}
	return nil
}
