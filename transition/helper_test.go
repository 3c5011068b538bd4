package transition

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/arthur-debert/congvan/client"
	"github.com/arthur-debert/congvan/dashboard"
	"github.com/arthur-debert/congvan/notify"
	"github.com/arthur-debert/congvan/testutil"
	"github.com/arthur-debert/congvan/types"
)

// patchCall records one UpdateStatus invocation
type patchCall struct {
	Type   types.DocumentType
	Number types.Code
	Update types.StatusUpdate
}

// mockPatcher implements Patcher for testing
type mockPatcher struct {
	calls []patchCall
	err   error
}

func (m *mockPatcher) UpdateStatus(ctx context.Context, t types.DocumentType, number types.Code, update types.StatusUpdate) error {
	m.calls = append(m.calls, patchCall{Type: t, Number: number, Update: update})
	return m.err
}

// staticFetcher serves fixed documents
type staticFetcher []types.Document

func (f staticFetcher) ListDocuments(ctx context.Context, t types.DocumentType, page, pageSize int) (*types.ListResult, error) {
	return &types.ListResult{Documents: f}, nil
}

// registerFetcher serves each register its own documents
type registerFetcher map[types.DocumentType][]types.Document

func (f registerFetcher) ListDocuments(ctx context.Context, t types.DocumentType, page, pageSize int) (*types.ListResult, error) {
	return &types.ListResult{Documents: f[t]}, nil
}

// switchingPatcher accepts the update after the board has moved to
// another register
type switchingPatcher struct {
	mockPatcher
	board *dashboard.Controller
	to    types.DocumentType
}

func (p *switchingPatcher) UpdateStatus(ctx context.Context, t types.DocumentType, number types.Code, update types.StatusUpdate) error {
	if err := p.board.Load(ctx, p.to); err != nil {
		return err
	}
	return p.mockPatcher.UpdateStatus(ctx, t, number, update)
}

func loadedBoard(t *testing.T, typ types.DocumentType, docs []types.Document) *dashboard.Controller {
	t.Helper()
	board := dashboard.New(staticFetcher(docs), dashboard.WithPageSize(3))
	t.Cleanup(board.Close)
	if err := board.Load(context.Background(), typ); err != nil {
		t.Fatalf("failed to load board: %v", err)
	}
	return board
}

func fiveDocs() []types.Document {
	return testutil.Docs(
		[3]string{"a", "1", types.StatusFinished},
		[3]string{"b", "2", types.StatusWaiting},
		[3]string{"c", "3", types.StatusFinished},
		[3]string{"d", "4", types.StatusWaiting},
		[3]string{"e", "5", types.StatusFinished},
	)
}

func TestFinish(t *testing.T) {
	board := loadedBoard(t, types.Incoming, fiveDocs())
	patcher := &mockPatcher{}
	var queue notify.Queue
	h := New(patcher, board, WithNotifier(&queue), WithHighlight(time.Hour))

	out, err := h.Finish(context.Background(), "d")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Outcome{ID: "d", Partition: types.Finished, Page: 0, Applied: true}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("outcome mismatch (-want +got):\n%s", diff)
	}

	if len(patcher.calls) != 1 {
		t.Fatalf("Expected 1 patch, got %d", len(patcher.calls))
	}
	call := patcher.calls[0]
	if call.Number != "4" || call.Update.Status != types.StatusFinished || !call.Update.StatusOnly() {
		t.Errorf("Expected status-only finish of number 4, got %+v", call)
	}

	waiting, finished := board.Partition()
	if len(waiting) != 1 || len(finished) != 4 {
		t.Errorf("Expected 1 waiting and 4 finished, got %d and %d", len(waiting), len(finished))
	}
	if board.Highlight() != "d" {
		t.Errorf("Expected d highlighted, got %q", board.Highlight())
	}

	notes := queue.Drain()
	if len(notes) != 1 || notes[0].Detail != "Đã kết thúc văn bản số 4" {
		t.Errorf("Expected success notification, got %v", notes)
	}
}

func TestFailedPatchLeavesSnapshot(t *testing.T) {
	board := loadedBoard(t, types.Incoming, fiveDocs())
	patcher := &mockPatcher{err: errors.New("503 service unavailable")}
	var queue notify.Queue
	h := New(patcher, board, WithNotifier(&queue))

	before := board.Snapshot()
	if _, err := h.Finish(context.Background(), "b"); err == nil {
		t.Fatal("Expected error")
	}
	if diff := cmp.Diff(before, board.Snapshot()); diff != "" {
		t.Errorf("snapshot changed (-want +got):\n%s", diff)
	}
	if board.Highlight() != "" {
		t.Errorf("Expected no highlight, got %q", board.Highlight())
	}
	notes := queue.Drain()
	if len(notes) != 1 || notes[0].Severity != notify.Error {
		t.Errorf("Expected error notification, got %v", notes)
	}
}

func TestUnknownDocument(t *testing.T) {
	board := loadedBoard(t, types.Incoming, fiveDocs())
	patcher := &mockPatcher{}
	h := New(patcher, board)

	if _, err := h.Recover(context.Background(), "zzz"); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if len(patcher.calls) != 0 {
		t.Errorf("Expected no backend call, got %d", len(patcher.calls))
	}
}

func TestTransferAndRecover(t *testing.T) {
	board := loadedBoard(t, types.Incoming, fiveDocs())
	patcher := &mockPatcher{}
	h := New(patcher, board)
	ctx := context.Background()

	if _, err := h.Transfer(ctx, "b", "  "); !errors.Is(err, ErrNoRecipient) {
		t.Errorf("Expected ErrNoRecipient, got %v", err)
	}

	out, err := h.Transfer(ctx, "b", "Phòng Tổng hợp")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Partition != types.Finished || !out.Applied {
		t.Errorf("Expected applied finish, got %+v", out)
	}
	doc, _ := board.Lookup("b")
	if doc.InternalRecipient != "Phòng Tổng hợp" {
		t.Errorf("Expected recipient to be merged, got %q", doc.InternalRecipient)
	}

	out, err = h.Recover(ctx, "e")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Partition != types.Waiting {
		t.Errorf("Expected waiting, got %s", out.Partition)
	}
	// waiting is now d(4), e(5): e sits on page 0
	if out.Page != 0 {
		t.Errorf("Expected page 0, got %d", out.Page)
	}
	last := patcher.calls[len(patcher.calls)-1]
	if last.Update.Status != types.StatusWaiting {
		t.Errorf("Expected waiting update, got %s", last.Update.Status)
	}
}

func TestPublishOnlyOutgoing(t *testing.T) {
	incoming := loadedBoard(t, types.Incoming, fiveDocs())
	if _, err := New(&mockPatcher{}, incoming).Publish(context.Background(), "b"); !errors.Is(err, ErrWrongRegister) {
		t.Errorf("Expected ErrWrongRegister, got %v", err)
	}

	outgoing := loadedBoard(t, types.Outgoing, fiveDocs())
	patcher := &mockPatcher{}
	if _, err := New(patcher, outgoing).Publish(context.Background(), "b"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if patcher.calls[0].Type != types.Outgoing {
		t.Errorf("Expected outgoing register, got %s", patcher.calls[0].Type)
	}
}

func TestReturnValidatesAndOmitsRecipient(t *testing.T) {
	board := loadedBoard(t, types.Incoming, fiveDocs())
	patcher := &mockPatcher{}
	h := New(patcher, board)

	_, err := h.Return(context.Background(), "b", types.Draft{})
	if types.FieldErrorsOf(err) == nil {
		t.Fatalf("Expected field errors, got %v", err)
	}
	if len(patcher.calls) != 0 {
		t.Fatal("Expected invalid draft not to reach the backend")
	}

	draft := types.Draft{
		ReceivedDate:    "02/01/2024",
		IssuedDate:      "28/12/2023",
		ReferenceNumber: "125/UBND-VP",
		Author:          "UBND Thành phố",
		Summary:         "Nội dung đã sửa",
	}
	if _, err := h.Return(context.Background(), "b", draft); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body := patcher.calls[0].Update.Body()
	if _, ok := body["internalRecipient"]; ok {
		t.Error("Expected internalRecipient to be omitted")
	}
	if body["status"] != types.StatusFinished || body["summary"] != "Nội dung đã sửa" {
		t.Errorf("Expected edited fields with finished status, got %v", body)
	}
	doc, _ := board.Lookup("b")
	if doc.Summary != "Nội dung đã sửa" || doc.Status != types.StatusFinished {
		t.Errorf("Expected local copy to carry the edit, got %+v", doc)
	}
}

func TestAgainstFakeBackend(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	api, err := client.New(backend.URL)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	board := dashboard.New(api, dashboard.WithPageSize(3))
	defer board.Close()
	if err := board.Load(context.Background(), types.Incoming); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	h := New(api, board)
	out, err := h.Finish(context.Background(), "in-5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// finished by number: in-4(1), in-3(7), in-5(20)
	if out.Page != 0 || !out.Applied {
		t.Errorf("Expected applied on page 0, got %+v", out)
	}
	reqs := backend.RequestsFor(testutil.OpStatus)
	if len(reqs) != 1 || reqs[0].Path != "/incoming-documents/20/status" {
		t.Errorf("Expected status endpoint for number 20, got %+v", reqs)
	}

	backend.Fail(testutil.OpStatus, 500)
	if _, err := h.Finish(context.Background(), "in-1"); err == nil {
		t.Error("Expected error from failing backend")
	}
	if d, _ := board.Lookup("in-1"); d.Status != types.StatusWaiting {
		t.Errorf("Expected in-1 to stay waiting, got %s", d.Status)
	}
}

func TestRegisterSwitchDuringUpdate(t *testing.T) {
	fetcher := registerFetcher{
		types.Incoming: testutil.Docs([3]string{"1", "10", types.StatusWaiting}),
		types.Outgoing: testutil.Docs([3]string{"1", "99", types.StatusWaiting}),
	}
	board := dashboard.New(fetcher, dashboard.WithPageSize(3))
	defer board.Close()
	if err := board.Load(context.Background(), types.Incoming); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	patcher := &switchingPatcher{board: board, to: types.Outgoing}

	out, err := New(patcher, board).Finish(context.Background(), "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := patchCall{Type: types.Incoming, Number: "10", Update: types.StatusUpdate{Status: types.StatusFinished}}
	if diff := cmp.Diff([]patchCall{want}, patcher.calls); diff != "" {
		t.Errorf("patch calls mismatch (-want +got):\n%s", diff)
	}
	if out.Applied {
		t.Error("Expected the update not to be applied to the outgoing register")
	}
	if board.Type() != types.Outgoing {
		t.Fatalf("Expected outgoing register on screen, got %s", board.Type())
	}
	doc, _ := board.Lookup("1")
	if doc.DocumentNumber != "99" || doc.Status != types.StatusWaiting {
		t.Errorf("Expected outgoing 99 to stay waiting, got %s %s", doc.DocumentNumber, doc.Status)
	}
	if board.Highlight() != "" {
		t.Errorf("Expected no highlight, got %q", board.Highlight())
	}
}

func TestPinnedRegister(t *testing.T) {
	board := loadedBoard(t, types.Outgoing, fiveDocs())
	patcher := &mockPatcher{}
	h := New(patcher, board)

	if _, err := h.In(types.Incoming).Finish(context.Background(), "b"); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if len(patcher.calls) != 0 {
		t.Fatalf("Expected no backend call, got %d", len(patcher.calls))
	}

	out, err := h.In(types.Outgoing).Finish(context.Background(), "b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Applied || patcher.calls[0].Type != types.Outgoing {
		t.Errorf("Expected applied outgoing update, got %+v %+v", out, patcher.calls)
	}
}
