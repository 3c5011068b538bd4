package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/arthur-debert/congvan/internal/dates"
	"github.com/arthur-debert/congvan/types"
)

// Op names one backend endpoint, for recording and failure injection
type Op string

const (
	OpList     Op = "list"
	OpSearch   Op = "search"
	OpUpdate   Op = "update"
	OpStatus   Op = "status"
	OpDownload Op = "download"
	OpCreate   Op = "create"
)

// Request is one request the fake backend received
type Request struct {
	Op       Op
	Method   string
	Path     string
	Resource string
	Number   string
	Query    url.Values
	Header   http.Header
	Body     map[string]any
}

// FakeBackend is an in-memory implementation of the document REST API
// served over httptest. It records every request and can be told to fail
// or reject specific endpoints.
type FakeBackend struct {
	*httptest.Server

	mu          sync.Mutex
	docs        map[string][]types.Document
	attachments map[string][]byte
	requests    []Request
	failures    map[Op]int
	rejections  map[Op]types.FieldErrors
	listName    string
	nextID      int
}

// NewFakeBackend starts a backend holding the fixture documents. The
// server is closed when the test ends.
func NewFakeBackend(t testing.TB) *FakeBackend {
	t.Helper()
	f := LoadFixture(t)
	b := &FakeBackend{
		docs: map[string][]types.Document{
			types.Incoming.Resource(): f.Incoming,
			types.Outgoing.Resource(): f.Outgoing,
		},
		attachments: map[string][]byte{},
		failures:    map[Op]int{},
		rejections:  map[Op]types.FieldErrors{},
		listName:    "documents",
		nextID:      100,
	}
	b.Server = httptest.NewServer(b.router())
	t.Cleanup(b.Close)
	return b
}

func (b *FakeBackend) router() http.Handler {
	r := chi.NewRouter()
	r.Get("/{resource}", b.handleList)
	r.Post("/{resource}", b.handleCreate)
	r.Get("/{resource}/search", b.handleSearch)
	r.Get("/{resource}/attachments/{filename}", b.handleDownload)
	r.Patch("/{resource}/{number}", b.handleUpdate)
	r.Patch("/{resource}/{number}/status", b.handleStatus)
	return r
}

// SetDocuments replaces one register
func (b *FakeBackend) SetDocuments(t types.DocumentType, docs []types.Document) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.docs[t.Resource()] = slices.Clone(docs)
}

// Documents returns a copy of one register as currently stored
func (b *FakeBackend) Documents(t types.DocumentType) []types.Document {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.docs[t.Resource()])
}

// SetAttachment makes a file downloadable from both registers
func (b *FakeBackend) SetAttachment(filename string, content []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.attachments[filename] = content
}

// SetListName changes the field name used for search result lists
func (b *FakeBackend) SetListName(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listName = name
}

// Fail makes every following call to op answer with status until Recover
func (b *FakeBackend) Fail(op Op, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[op] = status
}

// Recover clears an injected failure
func (b *FakeBackend) Recover(op Op) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.failures, op)
	delete(b.rejections, op)
}

// Reject makes op answer 200 with the validation sentinel and errors
func (b *FakeBackend) Reject(op Op, errs types.FieldErrors) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rejections[op] = errs
}

// Requests returns the recorded requests in arrival order
func (b *FakeBackend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.requests)
}

// RequestsFor returns the recorded requests of one endpoint
func (b *FakeBackend) RequestsFor(op Op) []Request {
	var out []Request
	for _, r := range b.Requests() {
		if r.Op == op {
			out = append(out, r)
		}
	}
	return out
}

// record stores the request and reports whether the handler should go on
func (b *FakeBackend) record(w http.ResponseWriter, r *http.Request, op Op) (Request, bool) {
	req := Request{
		Op:       op,
		Method:   r.Method,
		Path:     r.URL.Path,
		Resource: chi.URLParam(r, "resource"),
		Number:   chi.URLParam(r, "number"),
		Query:    r.URL.Query(),
		Header:   r.Header.Clone(),
	}
	if r.Body != nil {
		raw, _ := io.ReadAll(r.Body)
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &req.Body)
		}
	}

	b.mu.Lock()
	b.requests = append(b.requests, req)
	status, failing := b.failures[op]
	rejection, rejecting := b.rejections[op]
	_, known := b.docs[req.Resource]
	b.mu.Unlock()

	switch {
	case !known:
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "unknown resource"})
		return req, false
	case failing:
		writeJSON(w, status, map[string]any{"message": http.StatusText(status)})
		return req, false
	case rejecting:
		writeJSON(w, http.StatusOK, map[string]any{"message": types.MessageValidationFailed, "errors": rejection})
		return req, false
	}
	return req, true
}

func (b *FakeBackend) handleList(w http.ResponseWriter, r *http.Request) {
	req, ok := b.record(w, r, OpList)
	if !ok {
		return
	}
	docs := b.Documents(typeOf(req.Resource))
	writeList(w, "documents", docs, req.Query)
}

func (b *FakeBackend) handleSearch(w http.ResponseWriter, r *http.Request) {
	req, ok := b.record(w, r, OpSearch)
	if !ok {
		return
	}
	var matched []types.Document
	for _, d := range b.Documents(typeOf(req.Resource)) {
		if matches(d, req.Query) {
			matched = append(matched, d)
		}
	}
	b.mu.Lock()
	name := b.listName
	b.mu.Unlock()
	writeList(w, name, matched, req.Query)
}

func (b *FakeBackend) handleDownload(w http.ResponseWriter, r *http.Request) {
	if _, ok := b.record(w, r, OpDownload); !ok {
		return
	}
	b.mu.Lock()
	content, found := b.attachments[chi.URLParam(r, "filename")]
	b.mu.Unlock()
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "attachment not found"})
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(content)
}

func (b *FakeBackend) handleUpdate(w http.ResponseWriter, r *http.Request) {
	req, ok := b.record(w, r, OpUpdate)
	if !ok {
		return
	}
	b.patch(w, req)
}

func (b *FakeBackend) handleStatus(w http.ResponseWriter, r *http.Request) {
	req, ok := b.record(w, r, OpStatus)
	if !ok {
		return
	}
	b.patch(w, req)
}

func (b *FakeBackend) patch(w http.ResponseWriter, req Request) {
	fields := make(map[string]string, len(req.Body))
	for k, v := range req.Body {
		fields[k] = fmt.Sprint(v)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	docs := b.docs[req.Resource]
	for i, d := range docs {
		if d.DocumentNumber.String() == req.Number {
			docs[i] = d.WithFields(fields)
			writeJSON(w, http.StatusOK, map[string]any{"message": "OK", "data": map[string]any{"document": docs[i]}})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"message": "document not found"})
}

func (b *FakeBackend) handleCreate(w http.ResponseWriter, r *http.Request) {
	req, ok := b.record(w, r, OpCreate)
	if !ok {
		return
	}
	fields := make(map[string]string, len(req.Body))
	for k, v := range req.Body {
		fields[k] = fmt.Sprint(v)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	doc := types.Document{
		ID:     types.Code(strconv.Itoa(b.nextID)),
		Status: types.StatusWaiting,
	}.WithFields(fields)
	if doc.DocumentNumber == "" {
		doc.DocumentNumber = doc.ID
	}
	b.docs[req.Resource] = append(b.docs[req.Resource], doc)
	writeJSON(w, http.StatusCreated, map[string]any{"message": "CREATED", "data": map[string]any{"document": doc}})
}

func typeOf(resource string) types.DocumentType {
	if resource == types.Outgoing.Resource() {
		return types.Outgoing
	}
	return types.Incoming
}

// matches applies the search filters the way the backend does: text
// fields are case-insensitive substrings, dates an inclusive range
func matches(d types.Document, q url.Values) bool {
	for _, field := range []string{types.FieldAuthor, types.FieldReferenceNumber, types.FieldSummary} {
		want := strings.ToLower(q.Get(field))
		if want != "" && !strings.Contains(strings.ToLower(d.Field(field)), want) {
			return false
		}
	}
	from, hasFrom := dates.Parse(q.Get(types.FieldIssuedDateFrom))
	to, hasTo := dates.Parse(q.Get(types.FieldIssuedDateTo))
	if !hasFrom && !hasTo {
		return true
	}
	issued, ok := dates.Parse(d.IssuedDate)
	if !ok {
		return false
	}
	if hasFrom && issued.Before(from) {
		return false
	}
	if hasTo && issued.After(to) {
		return false
	}
	return true
}

func writeList(w http.ResponseWriter, name string, docs []types.Document, q url.Values) {
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(q.Get("pageSize"))
	if err != nil || size < 1 {
		size = 10
	}
	start := min((page-1)*size, len(docs))
	end := min(start+size, len(docs))
	window := docs[start:end]
	if window == nil {
		window = []types.Document{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "OK",
		"data": map[string]any{
			name:         window,
			"pagination": types.NewPagination(len(docs), page-1, size),
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
