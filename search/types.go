package search

import (
	"context"
	"io"

	"github.com/arthur-debert/congvan/types"
)

// Backend is the part of the REST client the search screen needs. It is an
// interface so tests can substitute a mock.
type Backend interface {
	// SearchDocuments runs one server-side paginated search; page is 1-based
	SearchDocuments(ctx context.Context, params types.SearchParams, page, pageSize int) (*types.ListResult, error)

	// DownloadAttachment streams one stored attachment
	DownloadAttachment(ctx context.Context, t types.DocumentType, filename string) (io.ReadCloser, error)
}

// State is everything the search screen shows. Values returned by
// Controller.State are copies; changing them has no effect on the
// controller.
type State struct {
	// Params is the search form
	Params types.SearchParams

	// Columns is the result column set of Params.DocumentType
	Columns types.ColumnSet

	// Results is the current page of results, sorted by issue date
	Results []types.Document

	// HasSearched is true once a search has completed since the last
	// reset or register change
	HasSearched bool

	// PageIndex is the 0-based result page
	PageIndex int

	// PageSize is the number of results per page
	PageSize int

	// TotalItems is the number of matches the backend reported
	TotalItems int

	// Loading is true while a search is in flight
	Loading bool
}

// Pagination returns the page record of the state
func (s State) Pagination() types.Pagination {
	return types.NewPagination(s.TotalItems, s.PageIndex, s.PageSize)
}

// Offset returns the position of the first result row
func (s State) Offset() int {
	return s.PageIndex * s.PageSize
}

// SaveFunc stores a downloaded attachment under its display name
type SaveFunc func(name string, r io.Reader) error
