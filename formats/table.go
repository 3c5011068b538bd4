package formats

import (
	"strconv"
	"strings"
	"time"

	"github.com/arthur-debert/congvan/internal/dates"
	"github.com/arthur-debert/congvan/types"
)

// Status labels shown in exports
var statusLabels = map[string]string{
	types.StatusWaiting:  "Chờ xử lý",
	types.StatusFinished: "Đã xử lý",
}

var optionFields = map[string][]types.Option{
	"priority":        types.PriorityOptions,
	"type":            types.KindOptions,
	"receivingMethod": types.ReceivingMethodOptions,
}

// BuildTable lays docs out under columns. offset is the running number of
// the row before the first document, so a page of results keeps its
// on-screen numbering.
func BuildTable(title string, docs []types.Document, columns types.ColumnSet, offset int) *Table {
	t := &Table{
		Title:       title,
		Headers:     columns.Headers(),
		Rows:        make([][]string, 0, len(docs)),
		GeneratedAt: time.Now(),
	}
	for i, d := range docs {
		row := make([]string, len(columns))
		for j, col := range columns {
			row[j] = Cell(d, col.Key, offset+i+1)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Cell renders one field of d for display. Dates become DD/MM/YYYY,
// attachments their short names and coded values their labels.
func Cell(d types.Document, key string, rowNumber int) string {
	switch key {
	case types.ColumnRowNumber:
		return strconv.Itoa(rowNumber)
	case "receivedDate", "issuedDate", "dueDate":
		return dates.Display(d.Field(key))
	case "attachments":
		return strings.Join(d.Attachments.DisplayNames(), "; ")
	case "status":
		if label, ok := statusLabels[d.Status]; ok {
			return label
		}
		return statusLabels[types.StatusFinished]
	}
	if options, ok := optionFields[key]; ok {
		return types.LabelOf(options, d.Field(key))
	}
	return d.Field(key)
}
