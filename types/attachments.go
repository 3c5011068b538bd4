package types

import (
	"encoding/json"
	"strings"
)

// Attachments is the list of stored attachment filenames of a document.
// Anything other than a JSON array decodes to an empty list; non-string
// array elements are dropped.
type Attachments []string

// UnmarshalJSON never fails: an unrecognised attachment value means the
// document has no downloadable attachments
func (a *Attachments) UnmarshalJSON(b []byte) error {
	var raw []any
	if err := json.Unmarshal(b, &raw); err != nil {
		*a = nil
		return nil
	}
	names := make(Attachments, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			names = append(names, s)
		}
	}
	*a = names
	return nil
}

// ShortFileName strips the upload timestamp the backend prefixes to stored
// filenames: "1742310337699-report.pdf" becomes "report.pdf". Only a
// leading run of ASCII digits counts as a timestamp; other names are
// returned unchanged.
func ShortFileName(filename string) string {
	head, rest, found := strings.Cut(filename, "-")
	if !found || head == "" || strings.TrimLeft(head, "0123456789") != "" {
		return filename
	}
	return rest
}

// DisplayNames returns the short names of all attachments
func (a Attachments) DisplayNames() []string {
	names := make([]string, len(a))
	for i, name := range a {
		names[i] = ShortFileName(name)
	}
	return names
}
