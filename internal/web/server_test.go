package web

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/arthur-debert/congvan/client"
	"github.com/arthur-debert/congvan/testutil"
	"github.com/arthur-debert/congvan/types"
)

type browser struct {
	t       *testing.T
	backend *testutil.FakeBackend
	server  *Server
	site    *httptest.Server
	http    *http.Client
}

func newBrowser(t *testing.T, opts ...Option) *browser {
	t.Helper()
	backend := testutil.NewFakeBackend(t)
	api, err := client.New(backend.URL)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	srv, err := New(api, opts...)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	site := httptest.NewServer(srv.Routes())
	t.Cleanup(site.Close)
	t.Cleanup(srv.Sessions().CloseAll)

	jar, _ := cookiejar.New(nil)
	return &browser{
		t:       t,
		backend: backend,
		server:  srv,
		site:    site,
		http: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (b *browser) get(path string) (*http.Response, string) {
	b.t.Helper()
	resp, err := b.http.Get(b.site.URL + path)
	if err != nil {
		b.t.Fatalf("GET %s failed: %v", path, err)
	}
	return resp, readBody(b.t, resp)
}

func (b *browser) post(path string, form url.Values) (*http.Response, string) {
	b.t.Helper()
	resp, err := b.http.PostForm(b.site.URL+path, form)
	if err != nil {
		b.t.Fatalf("POST %s failed: %v", path, err)
	}
	return resp, readBody(b.t, resp)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return string(data)
}

// section returns the part of a page rendering one table
func section(body, id string) string {
	start := strings.Index(body, `<section id="`+id+`">`)
	if start < 0 {
		return ""
	}
	end := strings.Index(body[start:], "</section>")
	if end < 0 {
		return body[start:]
	}
	return body[start : start+end]
}

// rowOrder returns the data-id values of a table in page order
func rowOrder(html string) []string {
	var ids []string
	for _, part := range strings.Split(html, `data-id="`)[1:] {
		ids = append(ids, part[:strings.Index(part, `"`)])
	}
	return ids
}

func TestDashboardRendersBothTables(t *testing.T) {
	b := newBrowser(t)
	resp, body := b.get("/")

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if len(resp.Cookies()) == 0 || resp.Cookies()[0].Name != SessionCookie {
		t.Error("Expected a session cookie")
	}

	waiting := rowOrder(section(body, "waiting"))
	if strings.Join(waiting, ",") != "in-2,in-1,in-5" {
		t.Errorf("Expected waiting order in-2,in-1,in-5, got %v", waiting)
	}
	finished := rowOrder(section(body, "finished"))
	if strings.Join(finished, ",") != "in-4,in-3" {
		t.Errorf("Expected finished order in-4,in-3, got %v", finished)
	}
	if !strings.Contains(section(body, "waiting"), "ke-hoach.pdf") {
		t.Error("Expected attachment short name in waiting table")
	}
}

func TestDashboardTypeToggleAndPaging(t *testing.T) {
	b := newBrowser(t)
	_, body := b.get("/?type=outgoing")
	if got := rowOrder(section(body, "waiting")); strings.Join(got, ",") != "out-1,out-3" {
		t.Errorf("Expected outgoing waiting out-1,out-3, got %v", got)
	}

	_, body = b.get("/?type=incoming&waiting_page=1&waiting_size=2")
	if got := rowOrder(section(body, "waiting")); strings.Join(got, ",") != "in-5" {
		t.Errorf("Expected second page [in-5], got %v", got)
	}
}

func TestFinishMovesAndHighlights(t *testing.T) {
	b := newBrowser(t)
	b.get("/")

	resp, _ := b.post("/documents/incoming/in-2/finish", nil)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("Expected 303, got %d", resp.StatusCode)
	}

	reqs := b.backend.RequestsFor(testutil.OpStatus)
	if len(reqs) != 1 || reqs[0].Path != "/incoming-documents/3/status" {
		t.Fatalf("Expected one status request for document 3, got %+v", reqs)
	}

	_, body := b.get(resp.Header.Get("Location"))
	finished := section(body, "finished")
	if got := rowOrder(finished); strings.Join(got, ",") != "in-4,in-2,in-3" {
		t.Errorf("Expected finished in-4,in-2,in-3, got %v", got)
	}
	if !strings.Contains(finished, `data-id="in-2" class="highlight"`) {
		t.Error("Expected finished document to be highlighted")
	}
	if !strings.Contains(body, "Đã kết thúc văn bản số 3") {
		t.Error("Expected success notification")
	}
}

func TestFailedActionKeepsDocument(t *testing.T) {
	b := newBrowser(t)
	b.get("/")
	b.backend.Fail(testutil.OpStatus, http.StatusInternalServerError)

	b.post("/documents/incoming/in-1/finish", nil)
	b.backend.Recover(testutil.OpStatus)

	_, body := b.get("/")
	if !strings.Contains(section(body, "waiting"), `data-id="in-1"`) {
		t.Error("Expected document to stay waiting")
	}
	if !strings.Contains(body, "Không thể kết thúc văn bản số 12") {
		t.Error("Expected failure notification")
	}
}

func TestTransferNeedsRecipient(t *testing.T) {
	b := newBrowser(t)
	b.get("/")
	b.post("/documents/incoming/in-1/transfer", url.Values{"recipient": {"  "}})

	if n := len(b.backend.RequestsFor(testutil.OpStatus)) + len(b.backend.RequestsFor(testutil.OpUpdate)); n != 0 {
		t.Errorf("Expected no backend update, got %d", n)
	}
	_, body := b.get("/")
	if !strings.Contains(body, "Vui lòng nhập người nhận") {
		t.Error("Expected recipient warning")
	}
}

func TestUnknownAction(t *testing.T) {
	b := newBrowser(t)
	resp, _ := b.post("/documents/incoming/in-1/shred", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", resp.StatusCode)
	}
}

func TestCreateValidation(t *testing.T) {
	b := newBrowser(t)
	resp, body := b.post("/documents", url.Values{
		"documentType": {"incoming"},
		"author":       {"Sở Xây dựng"},
		"issuedDate":   {"31/02/2024"},
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("Expected 422, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Trường này là bắt buộc") || !strings.Contains(body, "Ngày không hợp lệ") {
		t.Error("Expected field errors in form")
	}
	if !strings.Contains(body, `value="Sở Xây dựng"`) {
		t.Error("Expected entered values to be kept")
	}
	if n := len(b.backend.RequestsFor(testutil.OpCreate)); n != 0 {
		t.Errorf("Expected no create request, got %d", n)
	}
}

func validDraftForm() url.Values {
	return url.Values{
		"documentType":    {"incoming"},
		"receivedDate":    {"16/01/2024"},
		"issuedDate":      {"15/01/2024"},
		"referenceNumber": {"77/SXD"},
		"author":          {"Sở Xây dựng"},
		"summary":         {"Cấp phép xây dựng"},
		"priority":        {"normal"},
	}
}

func TestCreateDocument(t *testing.T) {
	b := newBrowser(t)
	resp, _ := b.post("/documents", validDraftForm())
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("Expected 303, got %d", resp.StatusCode)
	}
	reqs := b.backend.RequestsFor(testutil.OpCreate)
	if len(reqs) != 1 || reqs[0].Body["author"] != "Sở Xây dựng" {
		t.Fatalf("Expected one create request, got %+v", reqs)
	}

	_, body := b.get("/")
	if !strings.Contains(body, "Đã thêm văn bản số") {
		t.Error("Expected success notification")
	}
	if !strings.Contains(body, `data-id="101"`) {
		t.Error("Expected new document on the dashboard")
	}
}

func TestCreateBackendRejection(t *testing.T) {
	b := newBrowser(t)
	b.backend.Reject(testutil.OpCreate, types.FieldErrors{"referenceNumber": "Số ký hiệu đã tồn tại"})

	resp, body := b.post("/documents", validDraftForm())
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("Expected 422, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Số ký hiệu đã tồn tại") {
		t.Error("Expected backend field error in form")
	}
}

func TestEditAndReturn(t *testing.T) {
	b := newBrowser(t)
	b.get("/")

	resp, body := b.get("/documents/incoming/in-1/edit")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, `value="125/UBND-VP"`) {
		t.Error("Expected form prefilled from snapshot")
	}

	form := validDraftForm()
	form.Set("summary", "Nội dung đã chỉnh sửa")
	resp, _ = b.post("/documents/incoming/in-1/return", form)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("Expected 303, got %d", resp.StatusCode)
	}

	reqs := b.backend.RequestsFor(testutil.OpUpdate)
	if len(reqs) != 1 {
		t.Fatalf("Expected one update request, got %d", len(reqs))
	}
	if reqs[0].Body["status"] != types.StatusFinished || reqs[0].Body["summary"] != "Nội dung đã chỉnh sửa" {
		t.Errorf("Expected finished status with edited summary, got %v", reqs[0].Body)
	}
	if _, ok := reqs[0].Body["internalRecipient"]; ok {
		t.Error("Expected no internalRecipient in return body")
	}
}

func TestEditUnknownDocument(t *testing.T) {
	b := newBrowser(t)
	resp, _ := b.get("/documents/incoming/missing/edit")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", resp.StatusCode)
	}
}

func TestSearchFlow(t *testing.T) {
	b := newBrowser(t)

	resp, _ := b.post("/search", url.Values{"documentType": {"incoming"}, "author": {"ubnd"}})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("Expected 303, got %d", resp.StatusCode)
	}
	_, body := b.get("/search")
	results := section(body, "results")
	if got := rowOrder(results); len(got) != 3 {
		t.Fatalf("Expected 3 results, got %v", got)
	}
	if !strings.Contains(results, "<mark>UBND</mark>") {
		t.Error("Expected matched term to be marked")
	}

	b.post("/search/reset", nil)
	_, body = b.get("/search")
	if section(body, "results") != "" {
		t.Error("Expected no results after reset")
	}
}

func TestSearchRejectsBadRange(t *testing.T) {
	b := newBrowser(t)
	resp, body := b.post("/search", url.Values{
		"documentType":   {"incoming"},
		"issuedDateFrom": {"10/01/2024"},
		"issuedDateTo":   {"01/01/2024"},
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("Expected 422, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Ngày bắt đầu phải trước ngày kết thúc") {
		t.Error("Expected range error")
	}
	if n := len(b.backend.RequestsFor(testutil.OpSearch)); n != 0 {
		t.Errorf("Expected no search request, got %d", n)
	}
}

func TestAttachmentDownload(t *testing.T) {
	b := newBrowser(t)
	b.backend.SetAttachment("1704162000000-ke-hoach.pdf", []byte("%PDF"))

	resp, body := b.get("/attachments/incoming/1704162000000-ke-hoach.pdf")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if body != "%PDF" {
		t.Errorf("Expected file content, got %q", body)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, `filename=ke-hoach.pdf`) {
		t.Errorf("Expected short file name, got %q", cd)
	}
}

func TestAttachmentFailureRedirects(t *testing.T) {
	b := newBrowser(t)
	resp, _ := b.get("/attachments/incoming/missing.pdf")
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("Expected 303, got %d", resp.StatusCode)
	}
	_, body := b.get("/")
	if !strings.Contains(body, "Không thể tải tệp đính kèm") {
		t.Error("Expected download failure notification")
	}
}

func TestExport(t *testing.T) {
	now := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	b := newBrowser(t, WithClock(func() time.Time { return now }))
	b.get("/")

	resp, body := b.get("/export/waiting/csv")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if !strings.HasPrefix(body, "\ufeff") || !strings.Contains(body, "STT") {
		t.Error("Expected CSV with BOM and headers")
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "van-ban-den-cho-xu-ly-20240115.csv") {
		t.Errorf("Expected export filename, got %q", cd)
	}

	resp, _ = b.get("/export/waiting/pdf")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown format, got %d", resp.StatusCode)
	}
	resp, _ = b.get("/export/archive/csv")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown scope, got %d", resp.StatusCode)
	}
}
