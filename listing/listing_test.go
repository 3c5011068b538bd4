package listing

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/arthur-debert/congvan/types"
)

func doc(id, number, status, issued string) types.Document {
	return types.Document{
		ID:             types.Code(id),
		DocumentNumber: types.Code(number),
		Status:         status,
		IssuedDate:     issued,
	}
}

func ids(docs []types.Document) []types.Code {
	out := make([]types.Code, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ID)
	}
	return out
}

// randomDocs builds a reproducible list mixing statuses, numbers and dates
func randomDocs(r *rand.Rand, n int) []types.Document {
	statuses := []string{types.StatusWaiting, types.StatusFinished, "archived"}
	dateFor := func() string {
		switch r.Intn(4) {
		case 0:
			return ""
		case 1:
			return "31/02/2023"
		case 2:
			return fmt.Sprintf("%02d/%02d/2024", 1+r.Intn(28), 1+r.Intn(12))
		default:
			return fmt.Sprintf("2023-%02d-%02d", 1+r.Intn(12), 1+r.Intn(28))
		}
	}
	docs := make([]types.Document, n)
	for i := range docs {
		docs[i] = doc(
			fmt.Sprintf("id-%d", i),
			fmt.Sprintf("CV-%d", r.Intn(20)),
			statuses[r.Intn(len(statuses))],
			dateFor(),
		)
	}
	return docs
}

func TestSplitIsDisjointUnion(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for round := 0; round < 50; round++ {
		docs := randomDocs(r, r.Intn(40))
		waiting, finished := Split(docs)

		if len(waiting)+len(finished) != len(docs) {
			t.Fatalf("round %d: expected %d documents, got %d", round, len(docs), len(waiting)+len(finished))
		}
		seen := map[types.Code]bool{}
		for _, d := range waiting {
			if !d.IsWaiting() {
				t.Errorf("round %d: expected only waiting documents, got %s", round, d.Status)
			}
			seen[d.ID] = true
		}
		for _, d := range finished {
			if d.IsWaiting() {
				t.Errorf("round %d: waiting document %s in finished part", round, d.ID)
			}
			if seen[d.ID] {
				t.Errorf("round %d: document %s in both parts", round, d.ID)
			}
		}
	}
}

func TestSortByDocumentNumber(t *testing.T) {
	docs := []types.Document{
		doc("a", "CV-10", "waiting", ""),
		doc("b", "2", "waiting", ""),
		doc("c", "", "waiting", ""),
		doc("d", "CV-2/UBND", "waiting", ""),
		doc("e", "no digits", "waiting", ""),
	}
	got := ids(SortByDocumentNumber(docs))
	want := []types.Code{"c", "e", "b", "d", "a"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if docs[0].ID != "a" {
		t.Error("Expected input slice to be untouched")
	}
}

func TestSortByIssuedDate(t *testing.T) {
	docs := []types.Document{
		doc("missing", "", "waiting", ""),
		doc("late", "", "waiting", "20/12/2024"),
		doc("invalid", "", "waiting", "31/02/2023"),
		doc("iso", "", "waiting", "2024-03-01"),
		doc("early", "", "waiting", "15/03/2023"),
		doc("late-twin", "", "waiting", "2024-12-20"),
	}
	got := ids(SortByIssuedDate(docs))
	want := []types.Code{"early", "iso", "late", "late-twin", "missing", "invalid"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestSortByIssuedDateProperties(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	for round := 0; round < 50; round++ {
		docs := randomDocs(r, r.Intn(30))
		sorted := SortByIssuedDate(docs)

		seenNil := false
		for i, d := range sorted {
			if d.IssuedAt == nil {
				seenNil = true
				continue
			}
			if seenNil {
				t.Fatalf("round %d: dated document %s after an undated one", round, d.ID)
			}
			if i > 0 && sorted[i-1].IssuedAt != nil && sorted[i-1].IssuedAt.After(*d.IssuedAt) {
				t.Fatalf("round %d: documents out of order at %d", round, i)
			}
		}

		// stable: equal keys keep input order
		pos := map[types.Code]int{}
		for i, d := range docs {
			pos[d.ID] = i
		}
		for i := 1; i < len(sorted); i++ {
			a, b := sorted[i-1], sorted[i]
			equal := (a.IssuedAt == nil && b.IssuedAt == nil) ||
				(a.IssuedAt != nil && b.IssuedAt != nil && a.IssuedAt.Equal(*b.IssuedAt))
			if equal && pos[a.ID] > pos[b.ID] {
				t.Fatalf("round %d: sort not stable for %s and %s", round, a.ID, b.ID)
			}
		}
	}
}

func TestPagesReconstructList(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	for round := 0; round < 50; round++ {
		docs := randomDocs(r, r.Intn(50))
		size := 1 + r.Intn(7)

		var joined []types.Document
		pages := types.PageCount(len(docs), size)
		for i := 0; i < pages; i++ {
			joined = append(joined, Page(docs, i, size)...)
		}
		if diff := cmp.Diff(ids(docs), ids(joined)); diff != "" {
			t.Fatalf("round %d (size %d): pages do not reconstruct list:\n%s", round, size, diff)
		}
		if got := Page(docs, pages, size); len(got) != 0 {
			t.Errorf("round %d: expected empty page past the end, got %d items", round, len(got))
		}
	}
}

func TestPageBounds(t *testing.T) {
	docs := []types.Document{doc("1", "1", "waiting", ""), doc("2", "2", "waiting", "")}
	if got := Page(docs, -1, 3); got != nil {
		t.Errorf("Expected nil for negative index, got %v", got)
	}
	if got := Page(docs, 0, 0); got != nil {
		t.Errorf("Expected nil for zero size, got %v", got)
	}
	if got := Page(docs, 0, 3); len(got) != 2 {
		t.Errorf("Expected 2 items, got %d", len(got))
	}
}

func TestApplyTransition(t *testing.T) {
	docs := []types.Document{doc("1", "1", "waiting", ""), doc("2", "2", "waiting", "")}

	t.Run("known id", func(t *testing.T) {
		out, ok := ApplyTransition(docs, "2", types.StatusFinished, map[string]string{"internalRecipient": "Văn thư"})
		if !ok {
			t.Fatal("Expected transition to apply")
		}
		if out[1].Status != types.StatusFinished || out[1].InternalRecipient != "Văn thư" {
			t.Errorf("Expected merged document, got %+v", out[1])
		}
		if docs[1].Status != types.StatusWaiting {
			t.Error("Expected original snapshot to be untouched")
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		out, ok := ApplyTransition(docs, "404", types.StatusFinished, nil)
		if ok {
			t.Error("Expected no-op for unknown id")
		}
		if diff := cmp.Diff(docs, out); diff != "" {
			t.Errorf("snapshot changed (-want +got):\n%s", diff)
		}
	})
}

func TestLocateAndDerive(t *testing.T) {
	docs := []types.Document{
		doc("d5", "5", "finished", ""),
		doc("d1", "1", "waiting", ""),
		doc("d3", "3", "finished", ""),
		doc("d2", "2", "finished", ""),
		doc("d4", "4", "finished", ""),
	}
	sorted := Sorted(docs, types.Finished, ByDocumentNumber)
	page, ok := Locate(sorted, "d5", 3)
	if !ok || page != 1 {
		t.Errorf("Expected d5 on page 1, got %d (found %v)", page, ok)
	}
	if _, ok := Locate(sorted, "d1", 3); ok {
		t.Error("Expected waiting document not to be found among finished")
	}

	view := Derive(docs, types.Finished, ByDocumentNumber, 1, 3)
	if diff := cmp.Diff([]types.Code{"d5"}, ids(view.Items)); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
	want := types.Pagination{TotalItems: 4, TotalPages: 2, CurrentPage: 2, PageSize: 3}
	if diff := cmp.Diff(want, view.Pagination); diff != "" {
		t.Errorf("pagination mismatch (-want +got):\n%s", diff)
	}
	if view.Offset != 3 {
		t.Errorf("Expected offset 3, got %d", view.Offset)
	}
}

func TestClampPage(t *testing.T) {
	tests := []struct{ index, n, size, want int }{
		{0, 0, 3, 0},
		{5, 4, 3, 1},
		{-2, 4, 3, 0},
		{1, 6, 3, 1},
	}
	for _, tt := range tests {
		if got := ClampPage(tt.index, tt.n, tt.size); got != tt.want {
			t.Errorf("ClampPage(%d, %d, %d): expected %d, got %d", tt.index, tt.n, tt.size, tt.want, got)
		}
	}
}
