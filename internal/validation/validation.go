// Package validation checks form input before it is sent to the backend.
// Problems are reported per field, in the same shape the backend uses for
// its own validation errors, so both can be shown the same way.
package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/arthur-debert/congvan/internal/dates"
	"github.com/arthur-debert/congvan/types"
)

// Messages shown next to a failing field
const (
	msgRequired    = "Trường này là bắt buộc"
	msgInvalidDate = "Ngày không hợp lệ (DD/MM/YYYY)"
	msgUnknown     = "Giá trị không hợp lệ"
	msgDueBefore   = "Hạn xử lý phải sau ngày đến"
	msgRangeOrder  = "Ngày bắt đầu phải trước ngày kết thúc"
)

// Error is a failed client-side validation
type Error struct {
	Fields types.FieldErrors
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields.Fields() {
		parts = append(parts, fmt.Sprintf("%s: %s", f, e.Fields[f]))
	}
	return "invalid input: " + strings.Join(parts, ", ")
}

// FieldErrors returns the per-field messages
func (e *Error) FieldErrors() types.FieldErrors { return e.Fields }

// requiredFields lists the fields a draft must fill per register
var requiredFields = map[types.DocumentType][]string{
	types.Incoming: {"receivedDate", "issuedDate", "referenceNumber", "author", "summary"},
	types.Outgoing: {"issuedDate", "referenceNumber", "author", "summary"},
}

var dateFields = []string{"receivedDate", "issuedDate", "dueDate"}

var enumFields = map[string][]types.Option{
	"priority":        types.PriorityOptions,
	"type":            types.KindOptions,
	"receivingMethod": types.ReceivingMethodOptions,
}

// CheckDraft validates a create or edit form for register t
func CheckDraft(t types.DocumentType, d types.Draft) types.FieldErrors {
	errs := types.FieldErrors{}

	for _, f := range requiredFields[t] {
		if strings.TrimSpace(d.Get(f)) == "" {
			errs[f] = msgRequired
		}
	}

	for _, f := range dateFields {
		v := strings.TrimSpace(d.Get(f))
		if v == "" {
			continue
		}
		if _, ok := dates.Parse(v); !ok {
			errs[f] = msgInvalidDate
		}
	}

	for f, options := range enumFields {
		v := d.Get(f)
		if v != "" && !types.HasValue(options, v) {
			errs[f] = msgUnknown
		}
	}

	if _, failed := errs["dueDate"]; !failed {
		received, okR := dates.Parse(d.ReceivedDate)
		due, okD := dates.Parse(d.DueDate)
		if okR && okD && due.Before(received) {
			errs["dueDate"] = msgDueBefore
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Draft is CheckDraft returning an *Error, or nil when the draft is valid
func Draft(t types.DocumentType, d types.Draft) error {
	if errs := CheckDraft(t, d); errs != nil {
		return &Error{Fields: errs}
	}
	return nil
}

// Search validates the date range of a search form
func Search(p types.SearchParams) error {
	errs := types.FieldErrors{}
	if !p.DocumentType.Valid() {
		errs[types.FieldDocumentType] = msgUnknown
	}
	from, okFrom := parseOptional(p.IssuedDateFrom)
	if !okFrom {
		errs[types.FieldIssuedDateFrom] = msgInvalidDate
	}
	to, okTo := parseOptional(p.IssuedDateTo)
	if !okTo {
		errs[types.FieldIssuedDateTo] = msgInvalidDate
	}
	if okFrom && okTo && p.IssuedDateFrom != "" && p.IssuedDateTo != "" && to.Before(from) {
		errs[types.FieldIssuedDateTo] = msgRangeOrder
	}
	if len(errs) == 0 {
		return nil
	}
	return &Error{Fields: errs}
}

// parseOptional treats a blank date as valid and unset
func parseOptional(s string) (time.Time, bool) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, true
	}
	return dates.Parse(s)
}

// Required reports whether field must be filled for register t
func Required(t types.DocumentType, field string) bool {
	for _, f := range requiredFields[t] {
		if f == field {
			return true
		}
	}
	return false
}
