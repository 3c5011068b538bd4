package formats

import (
	"encoding/csv"
	"io"
)

// utf8BOM makes spreadsheet programs read the Vietnamese text as UTF-8
const utf8BOM = "\ufeff"

// CSV writes the header and rows as comma separated values
var CSV = &ExportFormat{
	Name:        "csv",
	Label:       "CSV",
	Extension:   ".csv",
	ContentType: "text/csv; charset=utf-8",
	Write: func(w io.Writer, t *Table) error {
		if _, err := io.WriteString(w, utf8BOM); err != nil {
			return err
		}
		cw := csv.NewWriter(w)
		if err := cw.Write(t.Headers); err != nil {
			return err
		}
		if err := cw.WriteAll(t.Rows); err != nil {
			return err
		}
		return cw.Error()
	},
}

func init() {
	mustRegister(CSV)
}
