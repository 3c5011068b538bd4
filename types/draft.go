package types

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Draft is the create/edit form body
type Draft struct {
	DocumentNumber    string `json:"documentNumber,omitempty" yaml:"documentNumber,omitempty"`
	ReceivedDate      string `json:"receivedDate" yaml:"receivedDate"`
	IssuedDate        string `json:"issuedDate" yaml:"issuedDate"`
	ReferenceNumber   string `json:"referenceNumber" yaml:"referenceNumber"`
	Priority          string `json:"priority" yaml:"priority"`
	Type              string `json:"type" yaml:"type"`
	Author            string `json:"author" yaml:"author"`
	Summary           string `json:"summary" yaml:"summary"`
	ReceivingMethod   string `json:"receivingMethod" yaml:"receivingMethod"`
	DueDate           string `json:"dueDate" yaml:"dueDate"`
	ProcessingOpinion string `json:"processingOpinion" yaml:"processingOpinion"`
}

// DraftFields lists the editable fields in form order
var DraftFields = []string{
	"receivedDate",
	"issuedDate",
	"referenceNumber",
	"priority",
	"type",
	"author",
	"summary",
	"receivingMethod",
	"dueDate",
	"processingOpinion",
}

// DraftFrom prefills an edit form from an existing document
func DraftFrom(d Document) Draft {
	return Draft{
		DocumentNumber:    d.DocumentNumber.String(),
		ReceivedDate:      d.ReceivedDate,
		IssuedDate:        d.IssuedDate,
		ReferenceNumber:   d.ReferenceNumber,
		Priority:          d.Priority,
		Type:              d.Type,
		Author:            d.Author,
		Summary:           d.Summary,
		ReceivingMethod:   d.ReceivingMethod,
		DueDate:           d.DueDate,
		ProcessingOpinion: d.ProcessingOpinion,
	}
}

// Get returns a draft field by name
func (d Draft) Get(field string) string {
	switch field {
	case "documentNumber":
		return d.DocumentNumber
	case "receivedDate":
		return d.ReceivedDate
	case "issuedDate":
		return d.IssuedDate
	case "referenceNumber":
		return d.ReferenceNumber
	case "priority":
		return d.Priority
	case "type":
		return d.Type
	case "author":
		return d.Author
	case "summary":
		return d.Summary
	case "receivingMethod":
		return d.ReceivingMethod
	case "dueDate":
		return d.DueDate
	case "processingOpinion":
		return d.ProcessingOpinion
	}
	return ""
}

// Set replaces a draft field by name
func (d *Draft) Set(field, value string) error {
	switch field {
	case "documentNumber":
		d.DocumentNumber = value
	case "receivedDate":
		d.ReceivedDate = value
	case "issuedDate":
		d.IssuedDate = value
	case "referenceNumber":
		d.ReferenceNumber = value
	case "priority":
		d.Priority = value
	case "type":
		d.Type = value
	case "author":
		d.Author = value
	case "summary":
		d.Summary = value
	case "receivingMethod":
		d.ReceivingMethod = value
	case "dueDate":
		d.DueDate = value
	case "processingOpinion":
		d.ProcessingOpinion = value
	default:
		return fmt.Errorf("unknown document field %q", field)
	}
	return nil
}

// Fields returns the editable fields as a map, for merging into a document
func (d Draft) Fields() map[string]string {
	out := make(map[string]string, len(DraftFields))
	for _, f := range DraftFields {
		out[f] = d.Get(f)
	}
	return out
}

// FieldErrors maps a form field to its error message
type FieldErrors map[string]string

// UnmarshalJSON accepts messages as strings or lists of strings
func (fe *FieldErrors) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		*fe = nil
		return nil
	}
	out := make(FieldErrors, len(raw))
	for field, v := range raw {
		switch msg := v.(type) {
		case string:
			out[field] = msg
		case []any:
			parts := make([]string, 0, len(msg))
			for _, p := range msg {
				parts = append(parts, fmt.Sprint(p))
			}
			out[field] = strings.Join(parts, "; ")
		default:
			out[field] = fmt.Sprint(msg)
		}
	}
	*fe = out
	return nil
}

// Fields returns the names of the failing fields, sorted
func (fe FieldErrors) Fields() []string {
	return slices.Sorted(maps.Keys(fe))
}

// Merge returns the union of two error sets; other wins on conflicts
func (fe FieldErrors) Merge(other FieldErrors) FieldErrors {
	out := maps.Clone(fe)
	if out == nil {
		out = FieldErrors{}
	}
	maps.Copy(out, other)
	return out
}

// StatusUpdate is a PATCH body that moves a document to a new status
type StatusUpdate struct {
	Status            string
	InternalRecipient string
	Fields            map[string]string
}

// Body renders the JSON body. Status always wins over a same-named field.
func (u StatusUpdate) Body() map[string]any {
	body := make(map[string]any, len(u.Fields)+2)
	for k, v := range u.Fields {
		body[k] = v
	}
	if u.InternalRecipient != "" {
		body["internalRecipient"] = u.InternalRecipient
	}
	body["status"] = u.Status
	return body
}

// StatusOnly reports whether the body carries nothing but the status
func (u StatusUpdate) StatusOnly() bool {
	return u.InternalRecipient == "" && len(u.Fields) == 0
}

// LocalFields returns the fields to merge into the local copy after the
// backend confirms the update
func (u StatusUpdate) LocalFields() map[string]string {
	out := maps.Clone(u.Fields)
	if u.InternalRecipient != "" {
		if out == nil {
			out = map[string]string{}
		}
		out["internalRecipient"] = u.InternalRecipient
	}
	return out
}
