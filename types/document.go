package types

import (
	"encoding/json"
	"fmt"
	"maps"
	"time"
)

// Status values the desk gives meaning to. The backend may send others;
// every status that is not StatusWaiting counts as finished.
const (
	StatusWaiting  = "waiting"
	StatusFinished = "finished"
)

// Code is an identifier or display code that the backend sends either as a
// JSON string or as a JSON number
type Code string

// UnmarshalJSON accepts strings, numbers and null
func (c *Code) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*c = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = Code(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("code must be a string or a number: %w", err)
	}
	*c = Code(n.String())
	return nil
}

// String returns the code as a plain string
func (c Code) String() string { return string(c) }

// Document is one official document record as returned by the backend.
//
// Documents are values: every mutation helper returns a modified copy and
// leaves the receiver untouched, so holders of an older snapshot never see
// a change they did not ask for.
type Document struct {
	ID                Code        `json:"id"`
	DocumentNumber    Code        `json:"documentNumber,omitempty"`
	ReceivedDate      string      `json:"receivedDate,omitempty"`
	IssuedDate        string      `json:"issuedDate,omitempty"`
	DueDate           string      `json:"dueDate,omitempty"`
	ReferenceNumber   string      `json:"referenceNumber,omitempty"`
	Author            string      `json:"author,omitempty"`
	Summary           string      `json:"summary,omitempty"`
	Priority          string      `json:"priority,omitempty"`
	Type              string      `json:"type,omitempty"`
	ReceivingMethod   string      `json:"receivingMethod,omitempty"`
	ProcessingOpinion string      `json:"processingOpinion,omitempty"`
	InternalRecipient string      `json:"internalRecipient,omitempty"`
	Status            string      `json:"status"`
	Attachments       Attachments `json:"attachments,omitempty"`

	// IssuedAt is the parsed issue date used as a sort key. Nil when the
	// issue date is missing or unparseable.
	IssuedAt *time.Time `json:"-"`

	// Extra holds merged fields the model has no column for
	Extra map[string]string `json:"-"`
}

// UnmarshalJSON decodes a document, accepting "fileUrls" as an alias for
// the attachment list used by older outgoing-register responses
func (d *Document) UnmarshalJSON(b []byte) error {
	type plain Document
	aux := struct {
		*plain
		FileURLs Attachments `json:"fileUrls"`
	}{plain: (*plain)(d)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if len(d.Attachments) == 0 && len(aux.FileURLs) > 0 {
		d.Attachments = aux.FileURLs
	}
	return nil
}

// IsWaiting reports whether the document is pending processing
func (d Document) IsWaiting() bool {
	return d.Status == StatusWaiting
}

// Field returns the value of a field by its JSON name. Unknown names are
// looked up in Extra.
func (d Document) Field(key string) string {
	switch key {
	case "id":
		return d.ID.String()
	case "documentNumber":
		return d.DocumentNumber.String()
	case "receivedDate":
		return d.ReceivedDate
	case "issuedDate":
		return d.IssuedDate
	case "dueDate":
		return d.DueDate
	case "referenceNumber":
		return d.ReferenceNumber
	case "author":
		return d.Author
	case "summary":
		return d.Summary
	case "priority":
		return d.Priority
	case "type":
		return d.Type
	case "receivingMethod":
		return d.ReceivingMethod
	case "processingOpinion":
		return d.ProcessingOpinion
	case "internalRecipient":
		return d.InternalRecipient
	case "status":
		return d.Status
	default:
		return d.Extra[key]
	}
}

// WithFields returns a copy of d with the given fields shallow-merged in.
// The id cannot be changed this way.
func (d Document) WithFields(fields map[string]string) Document {
	out := d
	if len(d.Extra) > 0 {
		out.Extra = maps.Clone(d.Extra)
	}
	for key, value := range fields {
		out.set(key, value)
	}
	return out
}

// WithStatus returns a copy of d carrying the new status and fields
func (d Document) WithStatus(status string, fields map[string]string) Document {
	out := d.WithFields(fields)
	out.Status = status
	return out
}

func (d *Document) set(key, value string) {
	switch key {
	case "id":
		// identifiers are assigned by the backend
	case "documentNumber":
		d.DocumentNumber = Code(value)
	case "receivedDate":
		d.ReceivedDate = value
	case "issuedDate":
		d.IssuedDate = value
		d.IssuedAt = nil
	case "dueDate":
		d.DueDate = value
	case "referenceNumber":
		d.ReferenceNumber = value
	case "author":
		d.Author = value
	case "summary":
		d.Summary = value
	case "priority":
		d.Priority = value
	case "type":
		d.Type = value
	case "receivingMethod":
		d.ReceivingMethod = value
	case "processingOpinion":
		d.ProcessingOpinion = value
	case "internalRecipient":
		d.InternalRecipient = value
	case "status":
		d.Status = value
	default:
		if d.Extra == nil {
			d.Extra = make(map[string]string)
		}
		d.Extra[key] = value
	}
}

// Partition names one of the two dashboard tables
type Partition string

const (
	Waiting  Partition = "waiting"
	Finished Partition = "finished"
)

// PartitionOf maps a status onto the table that shows it
func PartitionOf(status string) Partition {
	if status == StatusWaiting {
		return Waiting
	}
	return Finished
}

// ParsePartition validates a partition name
func ParsePartition(s string) (Partition, error) {
	switch Partition(s) {
	case Waiting, Finished:
		return Partition(s), nil
	}
	return "", fmt.Errorf("invalid partition %q: expected %q or %q", s, Waiting, Finished)
}
