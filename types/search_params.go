package types

import (
	"fmt"
	"net/url"
)

// Search form field names, in form order
const (
	FieldDocumentType    = "documentType"
	FieldIssuedDateFrom  = "issuedDateFrom"
	FieldIssuedDateTo    = "issuedDateTo"
	FieldAuthor          = "author"
	FieldReferenceNumber = "referenceNumber"
	FieldSummary         = "summary"
)

// SearchFields lists every field SearchParams accepts
var SearchFields = []string{
	FieldDocumentType,
	FieldIssuedDateFrom,
	FieldIssuedDateTo,
	FieldAuthor,
	FieldReferenceNumber,
	FieldSummary,
}

// SearchParams is the search form record. It is the single source of truth
// for the form: resetting the form means replacing this value.
type SearchParams struct {
	DocumentType    DocumentType `json:"documentType" yaml:"documentType"`
	IssuedDateFrom  string       `json:"issuedDateFrom,omitempty" yaml:"issuedDateFrom,omitempty"`
	IssuedDateTo    string       `json:"issuedDateTo,omitempty" yaml:"issuedDateTo,omitempty"`
	Author          string       `json:"author,omitempty" yaml:"author,omitempty"`
	ReferenceNumber string       `json:"referenceNumber,omitempty" yaml:"referenceNumber,omitempty"`
	Summary         string       `json:"summary,omitempty" yaml:"summary,omitempty"`
}

// DefaultSearchParams returns the empty form: incoming register, no filters
func DefaultSearchParams() SearchParams {
	return SearchParams{DocumentType: Incoming}
}

// Get returns a field value by name
func (p SearchParams) Get(field string) (string, error) {
	switch field {
	case FieldDocumentType:
		return string(p.DocumentType), nil
	case FieldIssuedDateFrom:
		return p.IssuedDateFrom, nil
	case FieldIssuedDateTo:
		return p.IssuedDateTo, nil
	case FieldAuthor:
		return p.Author, nil
	case FieldReferenceNumber:
		return p.ReferenceNumber, nil
	case FieldSummary:
		return p.Summary, nil
	}
	return "", fmt.Errorf("unknown search field %q", field)
}

// With returns a copy of p with one field replaced
func (p SearchParams) With(field, value string) (SearchParams, error) {
	switch field {
	case FieldDocumentType:
		p.DocumentType = DocumentType(value)
	case FieldIssuedDateFrom:
		p.IssuedDateFrom = value
	case FieldIssuedDateTo:
		p.IssuedDateTo = value
	case FieldAuthor:
		p.Author = value
	case FieldReferenceNumber:
		p.ReferenceNumber = value
	case FieldSummary:
		p.Summary = value
	default:
		return p, fmt.Errorf("unknown search field %q", field)
	}
	return p, nil
}

// Values encodes the non-empty fields as query parameters
func (p SearchParams) Values() url.Values {
	v := url.Values{}
	for _, field := range SearchFields {
		value, _ := p.Get(field)
		if value != "" {
			v.Set(field, value)
		}
	}
	return v
}
