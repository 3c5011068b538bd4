package types

import (
	"errors"
	"fmt"
)

// ErrUnknownDocumentType is returned for a register name other than
// incoming or outgoing
var ErrUnknownDocumentType = errors.New("unknown document type")

// DocumentType selects one of the two registers the backend keeps
type DocumentType string

const (
	Incoming DocumentType = "incoming"
	Outgoing DocumentType = "outgoing"
)

// DocumentTypes lists the registers in display order
var DocumentTypes = []DocumentType{Incoming, Outgoing}

// ParseDocumentType validates a register name
func ParseDocumentType(s string) (DocumentType, error) {
	switch DocumentType(s) {
	case Incoming, Outgoing:
		return DocumentType(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDocumentType, s)
}

// Valid reports whether t names a known register
func (t DocumentType) Valid() bool {
	return t == Incoming || t == Outgoing
}

// Resource returns the REST collection segment for the register
func (t DocumentType) Resource() string {
	if t == Outgoing {
		return "outgoing-documents"
	}
	return "incoming-documents"
}

// Label returns the Vietnamese name shown in selectors and export titles
func (t DocumentType) Label() string {
	if t == Outgoing {
		return "Văn bản đi"
	}
	return "Văn bản đến"
}

func (t DocumentType) String() string { return string(t) }
