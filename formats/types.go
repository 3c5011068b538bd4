// Package formats renders a table of documents into the export formats the
// desk offers: spreadsheet, word document, CSV and markdown.
package formats

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"
)

// Table is an export-ready grid: a title, column headers and string cells
type Table struct {
	Title       string
	Headers     []string
	Rows        [][]string
	GeneratedAt time.Time
}

// ExportFormat defines how a table is written to a file
type ExportFormat struct {
	// Name is the format identifier (alphanumeric, dashes, underscores, lowercase)
	Name string

	// Label is the menu text
	Label string

	// Extension is the file extension including the dot (e.g., ".xlsx")
	Extension string

	// ContentType is the MIME type used when the export is served
	ContentType string

	// Write renders the table to w
	Write func(w io.Writer, t *Table) error
}

// registry holds all available export formats
var registry = make(map[string]*ExportFormat)

// Register adds a new export format to the registry
func Register(format *ExportFormat) error {
	if !isValidFormatName(format.Name) {
		return fmt.Errorf("invalid format name %q: must be lowercase alphanumeric with dashes and underscores only", format.Name)
	}
	if format.Write == nil {
		return fmt.Errorf("format %q has no writer", format.Name)
	}

	if !strings.HasPrefix(format.Extension, ".") {
		format.Extension = "." + format.Extension
	}

	if _, exists := registry[format.Name]; exists {
		return fmt.Errorf("format %q already registered", format.Name)
	}

	registry[format.Name] = format
	return nil
}

// Get returns an export format by name
func Get(name string) (*ExportFormat, error) {
	format, exists := registry[name]
	if !exists {
		return nil, fmt.Errorf("unknown format %q (available: %s)", name, strings.Join(List(), ", "))
	}
	return format, nil
}

// List returns all registered format names, sorted
func List() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// All returns every registered format, sorted by name
func All() []*ExportFormat {
	out := make([]*ExportFormat, 0, len(registry))
	for _, name := range List() {
		out = append(out, registry[name])
	}
	return out
}

func mustRegister(format *ExportFormat) {
	if err := Register(format); err != nil {
		panic(fmt.Sprintf("failed to register %s format: %v", format.Name, err))
	}
}

// isValidFormatName checks if a format name is valid
func isValidFormatName(name string) bool {
	if name == "" {
		return false
	}

	for _, r := range name {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' && r != '_' {
			return false
		}
	}
	return true
}
