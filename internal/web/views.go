package web

import (
	"fmt"
	"html/template"
	"net/url"
	"strconv"

	"github.com/arthur-debert/congvan/formats"
	"github.com/arthur-debert/congvan/listing"
	"github.com/arthur-debert/congvan/notify"
	"github.com/arthur-debert/congvan/search"
	"github.com/arthur-debert/congvan/types"
)

var templateFuncs = template.FuncMap{
	"add": func(a, b int) int { return a + b },
	"severityClass": func(s notify.Severity) string {
		if s == notify.Warn {
			return "warning"
		}
		return string(s)
	},
}

// page carries what every page shows
type page struct {
	Title string
	Notes []notify.Notification
	Types []types.DocumentType
}

func newPage(ws *Workspace, title string) page {
	return page{Title: title, Notes: ws.Notes.Drain(), Types: types.DocumentTypes}
}

type link struct {
	Href  string
	Label string
}

// cell is one rendered table cell. Segments is set for search matches,
// Links for attachments; Text otherwise.
type cell struct {
	Key      string
	Text     string
	Segments []search.Segment
	Links    []link
}

type row struct {
	ID        types.Code
	Waiting   bool
	Highlight bool
	Cells     []cell
}

// table is one paginated document table
type table struct {
	Type       types.DocumentType
	Partition  types.Partition
	Title      string
	Headers    []string
	Rows       []row
	Pagination types.Pagination
	PageIndex  int
	PageSize   int
	Pages      []pageLink
	Sizes      []pageLink
	ExportLink string
	Exports    []*formats.ExportFormat
	// Actions shows the status buttons of dashboard rows
	Actions    bool
}

type pageLink struct {
	Label   string
	Href    string
	Current bool
}

func attachmentHref(t types.DocumentType, filename string) string {
	return "/attachments/" + url.PathEscape(string(t)) + "/" + url.PathEscape(filename)
}

// buildRows renders docs with the columns of a table. segments, when not
// nil, returns the highlighted text of a document's matching fields.
func buildRows(t types.DocumentType, docs []types.Document, columns types.ColumnSet, offset int,
	marked types.Code, segments func(types.Document) map[string][]search.Segment) []row {
	rows := make([]row, len(docs))
	for i, d := range docs {
		var matched map[string][]search.Segment
		if segments != nil {
			matched = segments(d)
		}
		r := row{
			ID:        d.ID,
			Waiting:   d.IsWaiting(),
			Highlight: marked != "" && d.ID == marked,
			Cells:     make([]cell, len(columns)),
		}
		for j, col := range columns {
			c := cell{Key: col.Key}
			switch {
			case col.Key == "attachments":
				for _, f := range d.Attachments {
					c.Links = append(c.Links, link{Href: attachmentHref(t, f), Label: types.ShortFileName(f)})
				}
			case matched[col.Key] != nil:
				c.Segments = matched[col.Key]
			default:
				c.Text = formats.Cell(d, col.Key, offset+i+1)
			}
			r.Cells[j] = c
		}
		rows[i] = r
	}
	return rows
}

// pageLinks builds the paginator of a table. base holds the query
// parameters every link keeps; prefix is put before the page and size keys.
func pageLinks(base url.Values, path, prefix string, p types.Pagination, index int) (pages, sizes []pageLink) {
	href := func(i, size int) string {
		q := url.Values{}
		for k, v := range base {
			q[k] = v
		}
		q.Set(prefix+"page", strconv.Itoa(i))
		q.Set(prefix+"size", strconv.Itoa(size))
		return path + "?" + q.Encode()
	}
	for i := 0; i < p.TotalPages; i++ {
		pages = append(pages, pageLink{Label: strconv.Itoa(i + 1), Href: href(i, p.PageSize), Current: i == index})
	}
	for _, size := range types.PageSizeOptions {
		sizes = append(sizes, pageLink{Label: strconv.Itoa(size), Href: href(0, size), Current: size == p.PageSize})
	}
	return pages, sizes
}

func dashboardTable(t types.DocumentType, p types.Partition, view listing.View, index int, marked types.Code) table {
	columns := types.DashboardColumns(t, p)
	base := url.Values{"type": {string(t)}}
	pages, sizes := pageLinks(base, "/", string(p)+"_", view.Pagination, index)
	return table{
		Type:       t,
		Partition:  p,
		Title:      formats.ScopeLabel(string(p)),
		Headers:    columns.Headers(),
		Rows:       buildRows(t, view.Items, columns, view.Offset, marked, nil),
		Pagination: view.Pagination,
		PageIndex:  index,
		PageSize:   view.Pagination.PageSize,
		Pages:      pages,
		Sizes:      sizes,
		ExportLink: fmt.Sprintf("/export/%s/", p),
		Exports:    formats.All(),
		Actions:    true,
	}
}

// formField is one input of the create/edit form
type formField struct {
	Name     string
	Label    string
	Value    string
	Error    string
	Input    string
	Options  []types.Option
	Required bool
}
