package types

import (
	"encoding/json"
	"fmt"
)

// Pagination describes one page of a list. CurrentPage is 1-based, as the
// backend reports it.
type Pagination struct {
	TotalItems  int `json:"totalItems"`
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage"`
	PageSize    int `json:"pageSize"`
}

// NewPagination derives the page record for a locally held list
func NewPagination(totalItems, pageIndex, pageSize int) Pagination {
	return Pagination{
		TotalItems:  totalItems,
		TotalPages:  PageCount(totalItems, pageSize),
		CurrentPage: pageIndex + 1,
		PageSize:    pageSize,
	}
}

// PageCount returns how many pages of size pageSize hold n items
func PageCount(n, pageSize int) int {
	if pageSize < 1 || n <= 0 {
		return 0
	}
	return (n + pageSize - 1) / pageSize
}

// PageSizeOptions are the page sizes offered by the paginators
var PageSizeOptions = []int{3, 25, 50, 100}

// MessageValidationFailed is the in-band sentinel the backend puts in
// "message" when a create or update body fails validation
const MessageValidationFailed = "VALIDATION_FAILED"

// Envelope is the outer shape of every JSON response
type Envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  FieldErrors     `json:"errors"`
}

// ValidationFailed reports whether the backend rejected the body in-band
func (e Envelope) ValidationFailed() bool {
	return e.Message == MessageValidationFailed
}

// ListResult is the decoded payload of a list or search response
type ListResult struct {
	Documents  []Document
	Pagination Pagination
}

// listData accepts every list field name the backend has used
type listData struct {
	Documents          []Document  `json:"documents"`
	PaginatedDocuments []Document  `json:"paginatedDocuments"`
	FilteredDocuments  []Document  `json:"filteredDocuments"`
	Pagination         *Pagination `json:"pagination"`
}

// DecodeListResult decodes the "data" member of a list or search envelope.
// The list may be named documents, paginatedDocuments or filteredDocuments;
// the first one present wins. A missing pagination object is derived from
// the list length.
func DecodeListResult(data json.RawMessage) (*ListResult, error) {
	if len(data) == 0 || string(data) == "null" {
		return &ListResult{}, nil
	}
	var ld listData
	if err := json.Unmarshal(data, &ld); err != nil {
		return nil, fmt.Errorf("failed to decode document list: %w", err)
	}

	docs := ld.Documents
	if docs == nil {
		docs = ld.PaginatedDocuments
	}
	if docs == nil {
		docs = ld.FilteredDocuments
	}

	result := &ListResult{Documents: docs}
	if ld.Pagination != nil {
		result.Pagination = *ld.Pagination
	} else {
		result.Pagination = NewPagination(len(docs), 0, len(docs))
	}
	return result, nil
}
