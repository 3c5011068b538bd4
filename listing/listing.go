// Package listing derives the views shown by the list screens: partitions by
// status, sorted copies and paginated windows. Every function is pure; the
// input slices are never modified.
package listing

import (
	"github.com/arthur-debert/congvan/types"
)

// Split partitions docs into waiting and finished documents, keeping the
// input order inside each part
func Split(docs []types.Document) (waiting, finished []types.Document) {
	for _, d := range docs {
		if d.IsWaiting() {
			waiting = append(waiting, d)
		} else {
			finished = append(finished, d)
		}
	}
	return waiting, finished
}

// Filter returns the documents of one partition, in input order
func Filter(docs []types.Document, p types.Partition) []types.Document {
	var out []types.Document
	for _, d := range docs {
		if types.PartitionOf(d.Status) == p {
			out = append(out, d)
		}
	}
	return out
}

// Page returns the window [index*size, index*size+size) of docs, clipped to
// the list. Out of range windows are empty.
func Page(docs []types.Document, index, size int) []types.Document {
	if size < 1 || index < 0 {
		return nil
	}
	start := index * size
	if start >= len(docs) {
		return nil
	}
	end := min(start+size, len(docs))
	return docs[start:end:end]
}

// ClampPage returns the nearest valid page index for a list of n items
func ClampPage(index, n, size int) int {
	last := types.PageCount(n, size) - 1
	if index > last {
		index = last
	}
	return max(index, 0)
}

// IndexOf returns the position of the document with the given id, or -1
func IndexOf(docs []types.Document, id types.Code) int {
	for i, d := range docs {
		if d.ID == id {
			return i
		}
	}
	return -1
}

// Locate returns the page holding the document with the given id
func Locate(docs []types.Document, id types.Code, size int) (int, bool) {
	i := IndexOf(docs, id)
	if i < 0 || size < 1 {
		return 0, false
	}
	return i / size, true
}

// ApplyTransition returns a copy of docs where the document with the given
// id carries the new status and fields. When the id is absent the input is
// returned as is and ok is false.
func ApplyTransition(docs []types.Document, id types.Code, status string, fields map[string]string) ([]types.Document, bool) {
	i := IndexOf(docs, id)
	if i < 0 {
		return docs, false
	}
	out := make([]types.Document, len(docs))
	copy(out, docs)
	out[i] = docs[i].WithStatus(status, fields)
	return out, true
}

// View is one rendered page of a partition
type View struct {
	Items      []types.Document
	Pagination types.Pagination
	// Offset is the position of Items[0] in the whole partition, used to
	// number rows
	Offset int
}

// Derive computes the page of one partition of docs, sorted by key
func Derive(docs []types.Document, p types.Partition, key SortKey, index, size int) View {
	sorted := Sort(Filter(docs, p), key)
	return View{
		Items:      Page(sorted, index, size),
		Pagination: types.NewPagination(len(sorted), index, size),
		Offset:     max(index, 0) * size,
	}
}

// Sorted returns the whole sorted partition, as used to locate a document
func Sorted(docs []types.Document, p types.Partition, key SortKey) []types.Document {
	return Sort(Filter(docs, p), key)
}
