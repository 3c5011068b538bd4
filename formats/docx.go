package formats

import (
	"fmt"
	"io"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
)

// DOCX writes a Word document holding the title and the table
var DOCX = &ExportFormat{
	Name:        "docx",
	Label:       "Word",
	Extension:   ".docx",
	ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	Write:       writeDOCX,
}

func writeDOCX(w io.Writer, t *Table) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	if _, err := doc.AddHeading(t.Title, 1); err != nil {
		return fmt.Errorf("failed to add title: %w", err)
	}
	doc.AddParagraph("").AddText("Ngày xuất: " + t.GeneratedAt.Format("02/01/2006 15:04")).Italic(true)

	tbl := doc.AddTable()
	tbl.Style("LightList-Accent4")
	header := tbl.AddRow()
	for _, h := range t.Headers {
		header.AddCell().AddParagraph("").AddText(h).Bold(true)
	}
	for _, row := range t.Rows {
		r := tbl.AddRow()
		for _, cell := range row {
			writeCell(r.AddCell(), cell)
		}
	}

	if err := doc.Write(w); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

// writeCell puts each line of s in its own paragraph
func writeCell(c *docx.Cell, s string) {
	for _, line := range strings.Split(s, "\n") {
		c.AddParagraph(line)
	}
}

func init() {
	mustRegister(DOCX)
}
