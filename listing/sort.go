package listing

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/arthur-debert/congvan/internal/dates"
	"github.com/arthur-debert/congvan/types"
)

// SortKey names an ordering of a document list
type SortKey string

const (
	ByDocumentNumber SortKey = "documentNumber"
	ByIssuedDate     SortKey = "issuedDate"
)

// Sort returns a sorted copy of docs. Unknown keys keep the input order.
func Sort(docs []types.Document, key SortKey) []types.Document {
	switch key {
	case ByDocumentNumber:
		return SortByDocumentNumber(docs)
	case ByIssuedDate:
		return SortByIssuedDate(docs)
	default:
		return slices.Clone(docs)
	}
}

// DocumentNumberKey extracts the numeric sort key of a display code: every
// non-digit is dropped and the rest parsed. Codes without digits sort as 0.
func DocumentNumberKey(code types.Code) int64 {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, code.String())
	if digits == "" {
		return 0
	}
	// ParseInt saturates on overflow, which still orders correctly
	n, _ := strconv.ParseInt(digits, 10, 64)
	return n
}

// SortByDocumentNumber returns a copy of docs ordered by ascending numeric
// document number. Equal keys keep their input order.
func SortByDocumentNumber(docs []types.Document) []types.Document {
	out := slices.Clone(docs)
	slices.SortStableFunc(out, func(a, b types.Document) int {
		return cmp.Compare(DocumentNumberKey(a.DocumentNumber), DocumentNumberKey(b.DocumentNumber))
	})
	return out
}

// WithIssuedAt returns a copy of docs with the issued-date sort key filled
// in from each issue date string
func WithIssuedAt(docs []types.Document) []types.Document {
	out := slices.Clone(docs)
	for i := range out {
		out[i].IssuedAt = dates.ParsePtr(out[i].IssuedDate)
	}
	return out
}

// SortByIssuedDate returns a copy of docs ordered by ascending issue date.
// Documents whose date is missing or unparseable go last; ties keep their
// input order.
func SortByIssuedDate(docs []types.Document) []types.Document {
	out := WithIssuedAt(docs)
	slices.SortStableFunc(out, func(a, b types.Document) int {
		return compareDates(a.IssuedAt, b.IssuedAt)
	})
	return out
}

func compareDates(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return a.Compare(*b)
}
